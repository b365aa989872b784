package filter

import (
	"context"

	"github.com/rushteam/courserec/core"
	"github.com/rushteam/courserec/matrix"
)

// Seen 过滤用户已交互过的课程（含负反馈过的课程）。
// 召回源通常已在源头排除，这里是融合后的兜底防线；
// rctx.IncludeSeen 为 true 时整体放行。
//
// 非并发安全：按请求构造，不要跨请求复用。
type Seen struct {
	Matrix *matrix.Matrix

	seen    map[string]struct{}
	seenFor string
}

func (f *Seen) Name() string {
	return "filter.seen"
}

func (f *Seen) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if f.Matrix == nil || rctx == nil || rctx.IncludeSeen || rctx.UserID == "" || item == nil {
		return false, nil
	}
	if f.seen == nil || f.seenFor != rctx.UserID {
		f.seen = f.Matrix.Seen(rctx.UserID)
		f.seenFor = rctx.UserID
	}
	_, seen := f.seen[item.ID]
	return seen, nil
}
