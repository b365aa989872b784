package recall

import (
	"context"
	"sort"

	"github.com/rushteam/courserec/core"
	"github.com/rushteam/courserec/matrix"
	"github.com/rushteam/courserec/pkg/utils"
)

// Popularity 是热门召回源，也是引擎的统一兜底：
// 数据不足 / 个性化超时 / 个性化结果为空时都落到它。
//
// 排序键：评分降序 → 报名数降序 → 课程 ID 升序（完全确定）。
// 产出分数被压缩到 [Floor, Ceil] 置信带内：
// score(i) = max(Floor, Ceil - Step×i)，向下游明确传达"非个性化"信号。
type Popularity struct {
	// Matrix 可选：提供时默认跳过用户已交互课程
	Matrix *matrix.Matrix

	// Floor/Ceil 置信带，默认 [0.5, 0.8]；Step 名次间递减量，默认 0.05
	Floor float64
	Ceil  float64
	Step  float64

	// TopKItems 最终返回的候选数（0 表示不截断）
	TopKItems int
}

func (r *Popularity) Name() string { return "recall.popularity" }

func (r *Popularity) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if rctx == nil || rctx.Data == nil {
		return nil, nil
	}

	floor, ceil := r.Floor, r.Ceil
	if ceil <= 0 {
		floor, ceil = 0.5, 0.8
	}
	step := r.Step
	if step <= 0 {
		step = 0.05
	}

	var seen map[string]struct{}
	if r.Matrix != nil && rctx.UserID != "" {
		seen = r.Matrix.Seen(rctx.UserID)
	}

	ranked := make([]*core.Course, 0, len(rctx.Data.Courses))
	for i := range rctx.Data.Courses {
		c := &rctx.Data.Courses[i]
		if !candidate(rctx, c, seen) {
			continue
		}
		ranked = append(ranked, c)
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Rating != ranked[j].Rating {
			return ranked[i].Rating > ranked[j].Rating
		}
		if ranked[i].EnrollmentCount != ranked[j].EnrollmentCount {
			return ranked[i].EnrollmentCount > ranked[j].EnrollmentCount
		}
		return ranked[i].ID < ranked[j].ID
	})

	out := make([]*core.Item, 0, len(ranked))
	for i, c := range ranked {
		score := ceil - step*float64(i)
		if score < floor {
			score = floor
		}

		it := core.NewItem(c.ID)
		it.Score = score
		it.Source = "popularity"
		it.PutLabel("recall_source", utils.Label{Value: "popularity", Source: "recall"})
		it.PutLabel("reason", utils.Label{Value: "popular among all learners", Source: "recall"})
		out = append(out, it)
	}

	return topN(out, r.TopKItems), nil
}
