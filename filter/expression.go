package filter

import (
	"context"

	"github.com/rushteam/courserec/core"
	"github.com/rushteam/courserec/pkg/dsl"
)

// Expression 是基于 CEL 表达式的过滤器：表达式返回 true 时保留候选。
// 运营/实验侧可以不改代码下发规则，例如：
//
//	meta.difficulty == "beginner" && item.score > 0.5
//	label.recall_source != null && label.recall_source.contains("content")
type Expression struct {
	// Expr 是 CEL 规则；为空时不过滤
	Expr string
}

func (f *Expression) Name() string {
	return "filter.expression"
}

func (f *Expression) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if f.Expr == "" || item == nil {
		return false, nil
	}

	// 把课程属性填进 Meta，表达式里用 meta.category 这样的短路径访问
	if rctx != nil && rctx.Data != nil {
		if c := rctx.Data.Course(item.ID); c != nil {
			if item.Meta == nil {
				item.Meta = make(map[string]any)
			}
			item.Meta["category"] = c.Category
			item.Meta["difficulty"] = c.Difficulty
			item.Meta["content_type"] = c.ContentType
			item.Meta["duration_hours"] = c.DurationHours
			item.Meta["rating"] = c.Rating
		}
	}

	keep, err := dsl.NewEval(item, rctx).Evaluate(f.Expr)
	if err != nil {
		return false, err
	}
	return !keep, nil
}
