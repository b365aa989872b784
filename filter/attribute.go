package filter

import (
	"context"
	"strings"

	"github.com/rushteam/courserec/core"
)

// 课程难度的封闭取值
var knownDifficulties = map[string]struct{}{
	"beginner":     {},
	"intermediate": {},
	"advanced":     {},
}

// Attribute 按调用方传入的 FilterSpec 过滤候选课程。
//
// 匹配规则（全部大小写不敏感）：
//   - Difficulty / ContentType：等值匹配
//   - Categories：命中任意一个即保留（OR 语义）
//   - MaxDurationHours：课程时长 ≤ 上限
//
// 零值字段不构成约束；过滤掉全部候选是合法结果，不是错误。
type Attribute struct {
	Spec *core.FilterSpec
}

func (f *Attribute) Name() string {
	return "filter.attribute"
}

// Validate 校验过滤条件取值的合法性，应在进入召回前调用：
//   - 未知难度 → INVALID_FILTER
//   - 负时长上限 → INVALID_FILTER
//
// 返回 INVALID_FILTER 是硬错误：直接上抛给调用方，绝不静默忽略，
// 也绝不转入兜底（拼写错误的过滤条件返回热门课程只会掩盖问题）。
func (f *Attribute) Validate() error {
	spec := f.Spec
	if spec.Empty() {
		return nil
	}
	if spec.Difficulty != "" {
		if _, ok := knownDifficulties[strings.ToLower(spec.Difficulty)]; !ok {
			return core.NewDomainError(core.ModuleFilter, core.ErrorCodeInvalidFilter,
				"filter: unknown difficulty "+spec.Difficulty)
		}
	}
	if spec.MaxDurationHours < 0 {
		return core.NewDomainError(core.ModuleFilter, core.ErrorCodeInvalidFilter,
			"filter: max duration must be non-negative")
	}
	return nil
}

// ValidateAgainst 用目录快照校验开放取值（类别、内容形式）：
// 目录里任何课程都不认识的取值按 INVALID_FILTER 上报，
// 帮助上游尽早发现过滤条件里的拼写错误。大小写差异不算未知。
// 空目录不校验（此时任何取值都无从判断）。
func (f *Attribute) ValidateAgainst(snap *core.Snapshot) error {
	spec := f.Spec
	if spec.Empty() || snap == nil || len(snap.Courses) == 0 {
		return nil
	}

	categories := make(map[string]struct{}, 16)
	contentTypes := make(map[string]struct{}, 8)
	for i := range snap.Courses {
		c := &snap.Courses[i]
		if c.Category != "" {
			categories[strings.ToLower(c.Category)] = struct{}{}
		}
		if c.ContentType != "" {
			contentTypes[strings.ToLower(c.ContentType)] = struct{}{}
		}
	}

	for _, cat := range spec.Categories {
		if _, ok := categories[strings.ToLower(cat)]; !ok {
			return core.NewDomainError(core.ModuleFilter, core.ErrorCodeInvalidFilter,
				"filter: unknown category "+cat)
		}
	}
	if spec.ContentType != "" {
		if _, ok := contentTypes[strings.ToLower(spec.ContentType)]; !ok {
			return core.NewDomainError(core.ModuleFilter, core.ErrorCodeInvalidFilter,
				"filter: unknown content type "+spec.ContentType)
		}
	}
	return nil
}

func (f *Attribute) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	spec := f.Spec
	if spec.Empty() {
		return false, nil
	}
	if item == nil || rctx == nil || rctx.Data == nil {
		return true, nil
	}
	c := rctx.Data.Course(item.ID)
	if c == nil {
		return true, nil
	}

	if spec.Difficulty != "" && !strings.EqualFold(spec.Difficulty, c.Difficulty) {
		return true, nil
	}
	if spec.ContentType != "" && !strings.EqualFold(spec.ContentType, c.ContentType) {
		return true, nil
	}
	if spec.MaxDurationHours > 0 && c.DurationHours > spec.MaxDurationHours {
		return true, nil
	}
	if len(spec.Categories) > 0 {
		hit := false
		for _, cat := range spec.Categories {
			if strings.EqualFold(cat, c.Category) {
				hit = true
				break
			}
		}
		if !hit {
			return true, nil
		}
	}

	return false, nil
}
