package core

import "github.com/rushteam/courserec/pkg/utils"

// FilterSpec 是调用方传入的属性过滤条件。
// 所有字符串匹配大小写不敏感；零值字段不构成约束。
type FilterSpec struct {
	Difficulty       string
	Categories       []string
	MaxDurationHours float64
	ContentType      string
}

// Empty 判断是否没有任何生效的过滤条件。
func (f *FilterSpec) Empty() bool {
	if f == nil {
		return true
	}
	return f.Difficulty == "" && len(f.Categories) == 0 &&
		f.MaxDurationHours <= 0 && f.ContentType == ""
}

// RecommendContext 承载单次请求的用户/参数/快照信息，贯穿整个 Pipeline 透传。
type RecommendContext struct {
	UserID string
	Scene  string // feed / similar / onboarding 等，用于观测与策略

	// Limit 是调用方要求的最大返回条数
	Limit int

	// Filters 属性过滤条件（可为 nil）
	Filters *FilterSpec

	// Exclude 是调用方显式排除的课程 ID 集合
	Exclude map[string]struct{}

	// IncludeSeen 为 true 时不排除用户已交互过的课程（similar-courses 模式）
	IncludeSeen bool

	// Profile 是外部维护的用户画像（只读）
	Profile *UserLearningProfile

	// Data 是本次请求的一致性读快照：请求开始时取一次，打分全程只读这一份
	Data *Snapshot

	// Labels 是用户级标签，可驱动整个 Pipeline 行为
	Labels map[string]utils.Label

	// Params 请求级上下文参数（调试开关、实验参数等）
	Params map[string]any
}

// Excluded 判断课程是否在显式排除集内。
func (rctx *RecommendContext) Excluded(courseID string) bool {
	if rctx == nil || rctx.Exclude == nil {
		return false
	}
	_, ok := rctx.Exclude[courseID]
	return ok
}

// PutLabel 写入用户级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取用户级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
