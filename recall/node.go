package recall

import (
	"context"

	"github.com/rushteam/courserec/core"
	"github.com/rushteam/courserec/pipeline"
)

// 各召回源同时实现 Source 和 pipeline.Node 接口，可以直接挂进 Pipeline。

func (r *Collaborative) Kind() pipeline.Kind { return pipeline.KindRecall }
func (r *Collaborative) Process(
	ctx context.Context, rctx *core.RecommendContext, _ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

func (r *Content) Kind() pipeline.Kind { return pipeline.KindRecall }
func (r *Content) Process(
	ctx context.Context, rctx *core.RecommendContext, _ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

func (r *Popularity) Kind() pipeline.Kind { return pipeline.KindRecall }
func (r *Popularity) Process(
	ctx context.Context, rctx *core.RecommendContext, _ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

func (r *Similar) Kind() pipeline.Kind { return pipeline.KindRecall }
func (r *Similar) Process(
	ctx context.Context, rctx *core.RecommendContext, _ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

var (
	_ pipeline.Node = (*Collaborative)(nil)
	_ pipeline.Node = (*Content)(nil)
	_ pipeline.Node = (*Popularity)(nil)
	_ pipeline.Node = (*Similar)(nil)
)
