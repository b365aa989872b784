package recall

import (
	"context"
	"fmt"
	"strings"

	"github.com/rushteam/courserec/core"
	"github.com/rushteam/courserec/matrix"
	"github.com/rushteam/courserec/pkg/utils"
	"github.com/rushteam/courserec/profiler"
)

// Content 是基于内容的召回源。
//
// 候选分 = (1 - SkillBlend) × 语义相似度 + SkillBlend × 技能重合度
//   - 语义相似度：用户兴趣向量与课程内容向量的余弦（负值截断为 0）
//   - 技能重合度：用户目标技能与课程技能的 Jaccard 系数（大小写不敏感）
//
// 用户兴趣向量来自正偏好课程内容向量的加权聚合；
// 既无兴趣向量又无目标技能时返回空结果。
type Content struct {
	Profiler *profiler.Profiler
	Matrix   *matrix.Matrix

	// SkillBlend 技能重合度占比，默认 0.3
	SkillBlend float64

	// TopKItems 最终返回的候选数（0 表示不截断）
	TopKItems int
}

func (r *Content) Name() string { return "recall.content" }

func (r *Content) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Profiler == nil || rctx == nil || rctx.UserID == "" || rctx.Data == nil {
		return nil, nil
	}

	blend := r.SkillBlend
	if blend <= 0 || blend > 1 {
		blend = 0.3
	}

	var (
		userVec profiler.Vector
		seen    map[string]struct{}
	)
	if r.Matrix != nil {
		userVec = r.Profiler.UserVector(r.Matrix.UserWeights(rctx.UserID))
		seen = r.Matrix.Seen(rctx.UserID)
	}

	var targetSkills []string
	if rctx.Profile != nil {
		targetSkills = rctx.Profile.TargetSkills
	}

	if userVec == nil && len(targetSkills) == 0 {
		return nil, nil
	}

	out := make([]*core.Item, 0)
	for i := range rctx.Data.Courses {
		c := &rctx.Data.Courses[i]
		if !candidate(rctx, c, seen) {
			continue
		}

		var semantic float64
		if userVec != nil {
			if cv, ok := r.Profiler.CourseVector(c.ID); ok {
				semantic = profiler.Dot(userVec, cv)
				if semantic < 0 {
					semantic = 0
				}
			}
		}
		skills := skillJaccard(targetSkills, c.Skills)

		score := (1-blend)*semantic + blend*skills
		if score <= 0 {
			continue
		}

		it := core.NewItem(c.ID)
		it.Score = score
		it.Source = "content"
		it.PutLabel("recall_source", utils.Label{Value: "content", Source: "recall"})
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

// skillJaccard 计算两个技能列表的 Jaccard 系数，大小写不敏感，空列表为 0。
func skillJaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := make(map[string]struct{}, len(a))
	for _, s := range a {
		setA[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, s := range b {
		setB[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}

	inter := 0
	for s := range setA {
		if _, ok := setB[s]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
