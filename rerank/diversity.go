package rerank

import (
	"context"

	"github.com/rushteam/courserec/core"
	"github.com/rushteam/courserec/pipeline"
)

// Diversity 是类别多样性重排：限制单个类别在结果里的最大条数，
// 避免"全是 Python 课"的推荐页。超出上限的候选被跳过，顺序不变。
//
// 类别来源优先级：
//   - label["category"].Value
//   - meta["category"] (string)
//   - rctx.Data 里课程的 Category 字段
type Diversity struct {
	// MaxPerCategory 单类别上限；<= 0 时不做限制
	MaxPerCategory int

	// LabelKey 类别标签键，默认 "category"
	LabelKey string
}

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Diversity) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 || n.MaxPerCategory <= 0 {
		return items, nil
	}

	key := n.LabelKey
	if key == "" {
		key = "category"
	}

	counts := make(map[string]int, 16)
	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		cate := n.categoryOf(rctx, it, key)
		if cate == "" {
			out = append(out, it)
			continue
		}
		if counts[cate] >= n.MaxPerCategory {
			continue
		}
		counts[cate]++
		out = append(out, it)
	}
	return out, nil
}

func (n *Diversity) categoryOf(rctx *core.RecommendContext, it *core.Item, key string) string {
	if it.Labels != nil {
		if lbl, ok := it.Labels[key]; ok && lbl.Value != "" {
			return lbl.Value
		}
	}
	if it.Meta != nil {
		if v, ok := it.Meta[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	if rctx != nil && rctx.Data != nil {
		if c := rctx.Data.Course(it.ID); c != nil {
			return c.Category
		}
	}
	return ""
}
