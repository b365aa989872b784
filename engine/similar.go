package engine

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/rushteam/courserec/core"
	"github.com/rushteam/courserec/recall"
)

// SimilarCourses 返回与锚点课程内容相邻的课程（详情页"相关课程"）。
// 与用户无关；锚点不存在时返回 NOT_FOUND。
func (e *Engine) SimilarCourses(ctx context.Context, courseID string, limit int) ([]core.Recommendation, error) {
	if courseID == "" {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput,
			"engine: course id is required")
	}
	if limit == 0 {
		limit = e.cfg.DefaultLimit
	}
	if limit < 0 {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput,
			"engine: limit must be non-negative")
	}

	snap, err := e.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	src := &recall.Similar{
		Profiler:   e.prof,
		CourseID:   courseID,
		SkillBlend: e.cfg.SkillBlend,
	}
	items, err := src.Recall(ctx, &core.RecommendContext{Data: snap.data})
	if err != nil {
		return nil, err
	}

	recs := toRecommendations(items, limit, true)
	e.log.WithFields(logrus.Fields{
		"course_id": courseID,
		"items":     len(recs),
	}).Debug("similar courses served")
	return recs, nil
}
