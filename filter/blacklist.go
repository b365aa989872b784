package filter

import (
	"context"

	"github.com/rushteam/courserec/core"
)

// Blacklist 过滤掉黑名单中的课程。
// 除了内存列表，还会检查调用方在请求里显式排除的 Exclude 集合。
type Blacklist struct {
	// CourseIDs 是内存中的黑名单课程 ID 列表
	CourseIDs []string
}

func (f *Blacklist) Name() string {
	return "filter.blacklist"
}

func (f *Blacklist) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}

	for _, id := range f.CourseIDs {
		if item.ID == id {
			return true, nil
		}
	}

	if rctx != nil && rctx.Excluded(item.ID) {
		return true, nil
	}

	return false, nil
}
