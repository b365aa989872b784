// Package fusion 把多引擎的召回结果归一化后合并为单一候选列表。
package fusion

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/courserec/core"
	"github.com/rushteam/courserec/pipeline"
	"github.com/rushteam/courserec/pkg/utils"
	"github.com/rushteam/courserec/recall"
)

// 融合后的 reason 文案（最终透传给调用方）
const (
	reasonBoth        = "recommended by learners like you and matches your interests"
	reasonCollabOnly  = "learners with similar interests also took this"
	reasonContentOnly = "matches your learning profile"
)

// Hybrid 是融合 Node：并发执行协同与内容两路召回，归一化后合并。
//
// 合并规则：
//   - 两路都命中：score = (归一化协同分 + 归一化内容分) / 2
//     取平均而不是取大，是有意的抑制：单路的极端高分会被另一路的
//     中庸评价拉回来，只有两路一致看好的课程才能拿到高分
//   - 仅协同命中：score = 归一化协同分 × CollaborativeDiscount
//   - 仅内容命中：score = 归一化内容分 × ContentDiscount
//
// 归一化是各路内部的 min-max：最高分 → 1，最低分 → 0；
// 整路只有一个候选或全路同分时统一记 1。
type Hybrid struct {
	Collaborative recall.Source
	Content       recall.Source

	// CollaborativeDiscount/ContentDiscount 单路命中折扣，默认 0.8 / 0.9
	CollaborativeDiscount float64
	ContentDiscount       float64
}

func (n *Hybrid) Name() string        { return "fusion.hybrid" }
func (n *Hybrid) Kind() pipeline.Kind { return pipeline.KindFusion }

func (n *Hybrid) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	collabDiscount := n.CollaborativeDiscount
	if collabDiscount <= 0 {
		collabDiscount = 0.8
	}
	contentDiscount := n.ContentDiscount
	if contentDiscount <= 0 {
		contentDiscount = 0.9
	}

	var (
		collabItems  []*core.Item
		contentItems []*core.Item
	)

	// 单路出错只降级该路贡献为零，不让整个请求失败
	eg, egCtx := errgroup.WithContext(ctx)
	if n.Collaborative != nil {
		eg.Go(func() error {
			if items, err := n.Collaborative.Recall(egCtx, rctx); err == nil {
				collabItems = items
			}
			return nil
		})
	}
	if n.Content != nil {
		eg.Go(func() error {
			if items, err := n.Content.Recall(egCtx, rctx); err == nil {
				contentItems = items
			}
			return nil
		})
	}
	_ = eg.Wait()

	collabScore := normalize(collabItems)
	contentScore := normalize(contentItems)

	merged := make(map[string]*core.Item)
	keep := func(it *core.Item) *core.Item {
		if old, ok := merged[it.ID]; ok {
			for k, v := range it.Labels {
				old.PutLabel(k, v)
			}
			return old
		}
		merged[it.ID] = it
		return it
	}
	for _, it := range collabItems {
		keep(it)
	}
	for _, it := range contentItems {
		keep(it)
	}

	out := make([]*core.Item, 0, len(merged))
	for id, it := range merged {
		nc, inCollab := collabScore[id]
		nn, inContent := contentScore[id]

		switch {
		case inCollab && inContent:
			it.Score = (nc + nn) / 2
			it.Source = "hybrid"
			it.PutLabel("fusion", utils.Label{Value: "both", Source: "fusion"})
			it.PutLabel("reason", utils.Label{Value: reasonBoth, Source: "fusion"})
		case inCollab:
			it.Score = nc * collabDiscount
			it.Source = "collaborative"
			it.PutLabel("fusion", utils.Label{Value: "collaborative_only", Source: "fusion"})
			it.PutLabel("reason", utils.Label{Value: reasonCollabOnly, Source: "fusion"})
		default:
			it.Score = nn * contentDiscount
			it.Source = "content"
			it.PutLabel("fusion", utils.Label{Value: "content_only", Source: "fusion"})
			it.PutLabel("reason", utils.Label{Value: reasonContentOnly, Source: "fusion"})
		}
		out = append(out, it)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// normalize 对一路召回结果做 min-max 归一化，返回 id → 归一化分。
func normalize(items []*core.Item) map[string]float64 {
	out := make(map[string]float64, len(items))
	if len(items) == 0 {
		return out
	}

	min, max := items[0].Score, items[0].Score
	for _, it := range items {
		if it.Score < min {
			min = it.Score
		}
		if it.Score > max {
			max = it.Score
		}
	}

	for _, it := range items {
		if max > min {
			out[it.ID] = (it.Score - min) / (max - min)
		} else {
			out[it.ID] = 1.0
		}
	}
	return out
}
