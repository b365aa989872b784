package core

import (
	"context"
	"time"
)

// InteractionType 是行为类型的封闭集合。
// 权重表（EngineConfig.TypeWeights）必须覆盖全部类型。
type InteractionType string

const (
	InteractionView     InteractionType = "view"
	InteractionLike     InteractionType = "like"
	InteractionUnlike   InteractionType = "unlike"
	InteractionEnroll   InteractionType = "enroll"
	InteractionUnenroll InteractionType = "unenroll"
	InteractionComplete InteractionType = "complete"
	InteractionRate     InteractionType = "rate" // Value ∈ [1,5]
)

// ValidInteractionType 判断行为类型是否属于封闭集合。
func ValidInteractionType(t InteractionType) bool {
	switch t {
	case InteractionView, InteractionLike, InteractionUnlike,
		InteractionEnroll, InteractionUnenroll, InteractionComplete, InteractionRate:
		return true
	}
	return false
}

// Interaction 是一条用户-课程行为记录。
// OccurredAt 参与时间衰减；Value 仅对 rate 有意义（评分 1~5）。
type Interaction struct {
	UserID     string          `json:"user_id"`
	CourseID   string          `json:"course_id"`
	Type       InteractionType `json:"type"`
	Value      float64         `json:"value,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// InteractionReader 是交互日志的读接口。
//
// 约定：
//   - since 之前的记录不返回（窗口裁剪在存储侧完成，减少传输量）
//   - 返回顺序不作保证，调用方（matrix）自行做确定性排序
type InteractionReader interface {
	// ListInteractions 返回窗口内的全部交互
	ListInteractions(ctx context.Context, since time.Time) ([]Interaction, error)

	// ListUserInteractions 返回窗口内指定用户的交互
	ListUserInteractions(ctx context.Context, userID string, since time.Time) ([]Interaction, error)
}

// InteractionWriter 是交互日志的写接口（feedback 落库用）。
type InteractionWriter interface {
	AppendInteraction(ctx context.Context, in Interaction) error
}
