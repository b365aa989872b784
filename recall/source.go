package recall

import (
	"context"
	"sort"

	"github.com/rushteam/courserec/core"
)

// Source 表示一个可复用的召回源（协同/内容/热门/...）。
// 你可以把它理解为“可并发 fan-out 的策略单元”。
//
// 约定：
//   - 空结果不是错误：无相似用户、无可用向量等返回 (nil, nil)
//   - 返回顺序确定：score 降序，同分按课程 ID 升序
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}

// sortItems 统一的确定性排序：score 降序，同分按 ID 升序。
func sortItems(items []*core.Item) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].ID < items[j].ID
	})
}

// topN 截断到前 n 条（n <= 0 表示不截断）。
func topN(items []*core.Item, n int) []*core.Item {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}

// candidate 判断课程是否可以作为召回候选：
// 在快照内、上架、未被调用方排除、（默认）未被用户交互过。
func candidate(rctx *core.RecommendContext, c *core.Course, seen map[string]struct{}) bool {
	if c == nil || !c.IsActive {
		return false
	}
	if rctx.Excluded(c.ID) {
		return false
	}
	if !rctx.IncludeSeen && seen != nil {
		if _, ok := seen[c.ID]; ok {
			return false
		}
	}
	return true
}
