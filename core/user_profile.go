package core

import (
	"context"
	"time"
)

// UserLearningProfile 是外部维护的用户学习画像聚合。
//
// 一句话定义：画像 = 数据充分性判定的输入 + 内容偏好的种子
//
// 引擎对它严格只读：
//   - 行为/报名计数只用于数据充分性门（gate）
//   - 偏好维度只用于内容引擎的候选过滤与解释
//   - 画像的计算与回写由外部分析任务负责，引擎绝不修改
type UserLearningProfile struct {
	UserID string

	// 行为统计（gate 的输入）
	InteractionCount int
	EnrollmentCount  int
	CompletedCount   int

	// 偏好画像（长期）
	// key: category/difficulty/content_type，value: 出现权重
	PreferredCategories   map[string]float64
	PreferredDifficulties map[string]float64
	PreferredContentTypes map[string]float64

	// TargetSkills 是用户声明的目标技能，用于内容引擎的技能重合度打分
	TargetSkills []string

	// 元数据
	UpdatedAt time.Time
}

// NewUserLearningProfile 创建一个空画像（零计数，gate 判定为数据不足）。
func NewUserLearningProfile(userID string) *UserLearningProfile {
	return &UserLearningProfile{
		UserID:                userID,
		PreferredCategories:   make(map[string]float64),
		PreferredDifficulties: make(map[string]float64),
		PreferredContentTypes: make(map[string]float64),
	}
}

// ProfileReader 是用户画像的领域接口。
// 画像缺失不是错误：返回零计数画像即可，gate 自然判定为不足。
type ProfileReader interface {
	GetProfile(ctx context.Context, userID string) (*UserLearningProfile, error)
}
