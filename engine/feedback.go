package engine

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/rushteam/courserec/core"
)

// RecordFeedback 落一条用户反馈到交互日志。
// 写入的交互参与下一次快照的矩阵折叠，引擎自身不做任何即时重算。
func (e *Engine) RecordFeedback(ctx context.Context, in core.Interaction) error {
	if e.feedback == nil {
		return core.NewDomainError(core.ModuleEngine, core.ErrorCodeNotSupported,
			"engine: feedback writer not configured")
	}
	if in.UserID == "" || in.CourseID == "" {
		return core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput,
			"engine: feedback requires user id and course id")
	}
	if !core.ValidInteractionType(in.Type) {
		return core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput,
			"engine: unknown interaction type "+string(in.Type))
	}
	if in.Type == core.InteractionRate && (in.Value < 1 || in.Value > 5) {
		return core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput,
			"engine: rating value must be in [1,5]")
	}
	if in.OccurredAt.IsZero() {
		in.OccurredAt = e.now()
	}

	if err := e.feedback.AppendInteraction(ctx, in); err != nil {
		return err
	}
	e.log.WithFields(logrus.Fields{
		"user_id":   in.UserID,
		"course_id": in.CourseID,
		"type":      in.Type,
	}).Debug("feedback recorded")
	return nil
}
