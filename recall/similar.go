package recall

import (
	"context"
	"fmt"

	"github.com/rushteam/courserec/core"
	"github.com/rushteam/courserec/pkg/utils"
	"github.com/rushteam/courserec/profiler"
)

// Similar 是"相似课程"召回源（i2i 方向）：
// 给定锚点课程，按内容相似度 + 技能重合度找相邻课程。
//
// 与用户无关：相似关系只由课程内容决定，可用于详情页"相关课程"模块。
type Similar struct {
	Profiler *profiler.Profiler

	// CourseID 锚点课程
	CourseID string

	// SkillBlend 技能重合度占比，默认 0.3
	SkillBlend float64

	// TopKItems 最终返回的候选数（0 表示不截断）
	TopKItems int
}

func (r *Similar) Name() string { return "recall.similar" }

func (r *Similar) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Profiler == nil || r.CourseID == "" || rctx == nil || rctx.Data == nil {
		return nil, nil
	}

	anchor := rctx.Data.Course(r.CourseID)
	if anchor == nil {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeNotFound,
			"engine: course not found: "+r.CourseID)
	}

	blend := r.SkillBlend
	if blend <= 0 || blend > 1 {
		blend = 0.3
	}

	out := make([]*core.Item, 0)
	for i := range rctx.Data.Courses {
		c := &rctx.Data.Courses[i]
		if c.ID == r.CourseID {
			continue
		}
		if !candidate(rctx, c, nil) {
			continue
		}

		semantic := r.Profiler.Similarity(r.CourseID, c.ID)
		if semantic < 0 {
			semantic = 0
		}
		skills := skillJaccard(anchor.Skills, c.Skills)

		score := (1-blend)*semantic + blend*skills
		if score <= 0 {
			continue
		}

		it := core.NewItem(c.ID)
		it.Score = score
		it.Source = "content"
		it.PutLabel("recall_source", utils.Label{Value: "similar", Source: "recall"})
		it.PutLabel("anchor", utils.Label{Value: r.CourseID, Source: "recall"})
		if skills > 0 {
			it.PutLabel("skill_overlap", utils.Label{
				Value:  fmt.Sprintf("%.2f", skills),
				Source: "recall",
			})
		}
		out = append(out, it)
	}

	sortItems(out)
	return topN(out, r.TopKItems), nil
}
