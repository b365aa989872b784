package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/courserec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量和函数
func initCELEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		cel.Variable("item", cel.DynType),
		cel.Variable("label", cel.DynType),
		cel.Variable("meta", cel.DynType),
		cel.Variable("rctx", cel.DynType),
	)
	return env, err
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	var err error
	celEnvOnce.Do(func() {
		celEnv, err = initCELEnv()
	})
	return celEnv, err
}

// Eval 是候选课程的规则解释器，使用 CEL (Common Expression Language) 实现。
// 运营/实验侧可以不改代码下发过滤规则。
//
// 表达式语法（CEL 标准语法）：
//   - 基础：label.recall_source == "content" / meta.category == "Data Science"
//   - 数值：item.score > 0.7 / meta.duration_hours <= 8.0
//   - 逻辑：meta.difficulty == "beginner" && item.score > 0.5
//   - 存在性：label.recall_source != null
//   - 包含：label.recall_source.contains("content")
type Eval struct {
	item *core.Item
	rctx *core.RecommendContext
	env  *cel.Env
}

// NewEval 创建一个新的规则解释器。
func NewEval(item *core.Item, rctx *core.RecommendContext) *Eval {
	env, _ := getCELEnv()
	return &Eval{
		item: item,
		rctx: rctx,
		env:  env,
	}
}

// Evaluate 解析并执行规则表达式，返回布尔结果。
// 注意：has(label.key) 可以用 label.key != null 替代。
func (e *Eval) Evaluate(expr string) (bool, error) {
	if expr == "" {
		return true, nil
	}

	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return false, fmt.Errorf("compile error: %v", issues.Err())
	}

	prg, err := e.env.Program(ast)
	if err != nil {
		return false, fmt.Errorf("program error: %v", err)
	}

	out, _, err := prg.Eval(e.buildInput())
	if err != nil {
		// 对于不存在的 key，CEL 会返回错误；
		// 应使用 label.key != null 检查存在性，而不是直接访问
		return false, fmt.Errorf("eval error: %v", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}

	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func (e *Eval) buildInput() map[string]interface{} {
	labels := make(map[string]interface{})
	for k, v := range e.item.Labels {
		labels[k] = map[string]interface{}{
			"value":  v.Value,
			"source": v.Source,
		}
	}

	item := map[string]interface{}{
		"id":     e.item.ID,
		"score":  e.item.Score,
		"source": e.item.Source,
		"meta":   e.item.Meta,
		"labels": labels,
	}

	rctx := map[string]interface{}{}
	if e.rctx != nil {
		rctx["user_id"] = e.rctx.UserID
		rctx["scene"] = e.rctx.Scene
		rctx["limit"] = e.rctx.Limit
		rctx["params"] = e.rctx.Params
	}

	// label.key 直接取 value，便于写短表达式；
	// CEL 访问不存在的 key 会报错，所以存在性要用 label.key != null
	labelAccessor := make(map[string]interface{})
	for k, v := range labels {
		labelAccessor[k] = v.(map[string]interface{})["value"]
	}

	return map[string]interface{}{
		"item":  item,
		"label": labelAccessor,
		"meta":  e.item.Meta,
		"rctx":  rctx,
	}
}
