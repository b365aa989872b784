// Package matrix 把交互日志折叠为用户-课程偏好矩阵。
//
// 核心思想：偏好 = Σ(行为基础权重 × 时间衰减)
//   - 行为基础权重来自 EngineConfig.TypeWeights（rate 按 value/5 缩放）
//   - 时间衰减是以 HalfLifeDays 为半衰期的指数衰减
//   - 负向行为（unlike/unenroll）以负权重参与折叠，可抵消早期正向信号
package matrix

import (
	"math"
	"sort"
	"time"

	"github.com/rushteam/courserec/core"
)

// Matrix 是折叠后的用户-课程偏好矩阵（不可变，构建后只读）。
type Matrix struct {
	// weights[userID][courseID] = 折叠后的原始偏好（可为负）
	weights map[string]map[string]float64

	// 每用户的行为统计（gate 的运行时输入）
	interactions map[string]int
	enrollments  map[string]int

	builtAt time.Time
}

// Builder 按配置把一批交互折叠为 Matrix。
type Builder struct {
	Config *core.EngineConfig
}

// Build 折叠交互日志。
//
// 约定：
//   - now 之前 WindowDays 以外的记录直接丢弃
//   - 未知行为类型跳过（前向兼容：新类型上线期间旧引擎不崩）
//   - 折叠顺序确定：按 (UserID, CourseID, OccurredAt) 排序后求和，
//     保证同一份输入永远得到 bit 级相同的矩阵
func (b *Builder) Build(interactions []core.Interaction, now time.Time) *Matrix {
	cfg := b.Config
	if cfg == nil {
		cfg = core.DefaultEngineConfig()
	}

	cutoff := now.AddDate(0, 0, -cfg.WindowDays)

	kept := make([]core.Interaction, 0, len(interactions))
	for _, in := range interactions {
		if !core.ValidInteractionType(in.Type) {
			continue
		}
		if in.OccurredAt.Before(cutoff) || in.OccurredAt.After(now) {
			continue
		}
		kept = append(kept, in)
	}

	sort.Slice(kept, func(i, j int) bool {
		a, b := kept[i], kept[j]
		if a.UserID != b.UserID {
			return a.UserID < b.UserID
		}
		if a.CourseID != b.CourseID {
			return a.CourseID < b.CourseID
		}
		return a.OccurredAt.Before(b.OccurredAt)
	})

	m := &Matrix{
		weights:      make(map[string]map[string]float64),
		interactions: make(map[string]int),
		enrollments:  make(map[string]int),
		builtAt:      now,
	}

	for _, in := range kept {
		w := b.weightOf(cfg, in, now)

		row, ok := m.weights[in.UserID]
		if !ok {
			row = make(map[string]float64)
			m.weights[in.UserID] = row
		}
		row[in.CourseID] += w

		m.interactions[in.UserID]++
		if in.Type == core.InteractionEnroll {
			m.enrollments[in.UserID]++
		}
	}

	return m
}

// weightOf 计算单条交互的贡献：基础权重 × 2^(-ageDays/halfLife)。
func (b *Builder) weightOf(cfg *core.EngineConfig, in core.Interaction, now time.Time) float64 {
	base := cfg.TypeWeights[in.Type]
	if in.Type == core.InteractionRate {
		v := in.Value
		if v < 0 {
			v = 0
		}
		if v > 5 {
			v = 5
		}
		base *= v / 5.0
	}

	ageDays := now.Sub(in.OccurredAt).Hours() / 24.0
	if ageDays < 0 {
		ageDays = 0
	}
	decay := math.Exp2(-ageDays / cfg.HalfLifeDays)

	return base * decay
}

// Weight 返回用户对课程的偏好，负值截断为 0。
// 负值只在折叠过程中起抵消作用，读取侧永远看到非负偏好。
func (m *Matrix) Weight(userID, courseID string) float64 {
	row, ok := m.weights[userID]
	if !ok {
		return 0
	}
	w := row[courseID]
	if w < 0 {
		return 0
	}
	return w
}

// UserWeights 返回用户的全部正偏好（course → weight），无交互时返回空 map。
func (m *Matrix) UserWeights(userID string) map[string]float64 {
	row, ok := m.weights[userID]
	if !ok {
		return map[string]float64{}
	}
	out := make(map[string]float64, len(row))
	for courseID, w := range row {
		if w > 0 {
			out[courseID] = w
		}
	}
	return out
}

// Seen 返回用户交互过的全部课程（含被负向行为抵消为 0 的），
// 用于"排除已交互课程"的语义：unlike 过的课程同样算见过。
func (m *Matrix) Seen(userID string) map[string]struct{} {
	row, ok := m.weights[userID]
	if !ok {
		return map[string]struct{}{}
	}
	out := make(map[string]struct{}, len(row))
	for courseID := range row {
		out[courseID] = struct{}{}
	}
	return out
}

// Users 返回矩阵内的全部用户 ID（升序，遍历顺序确定）。
func (m *Matrix) Users() []string {
	out := make([]string, 0, len(m.weights))
	for userID := range m.weights {
		out = append(out, userID)
	}
	sort.Strings(out)
	return out
}

// InteractionCount 返回用户窗口内的有效交互条数。
func (m *Matrix) InteractionCount(userID string) int {
	return m.interactions[userID]
}

// EnrollmentCount 返回用户窗口内的报名次数。
func (m *Matrix) EnrollmentCount(userID string) int {
	return m.enrollments[userID]
}

// BuiltAt 返回矩阵的构建时间（衰减基准点）。
func (m *Matrix) BuiltAt() time.Time {
	return m.builtAt
}
