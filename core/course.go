package core

import "context"

// Course 是课程目录条目（引擎只读）。
type Course struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Skills      []string `json:"skills"`
	Category    string   `json:"category"`
	Difficulty  string   `json:"difficulty"` // beginner / intermediate / advanced
	ContentType string   `json:"content_type"`

	DurationHours   float64 `json:"duration_hours"`
	Rating          float64 `json:"rating"` // 均分 [0,5]
	RatingCount     int     `json:"rating_count"`
	EnrollmentCount int     `json:"enrollment_count"`

	// IsActive 为 false 的课程不进入任何候选集
	IsActive bool `json:"is_active"`
}

// CatalogReader 是课程目录的领域接口，由 store 实现。
type CatalogReader interface {
	// ListCourses 返回全部课程（含下架课程，过滤在引擎侧统一做）
	ListCourses(ctx context.Context) ([]Course, error)

	// GetCourse 按 ID 查询课程，不存在时返回 NOT_FOUND
	GetCourse(ctx context.Context, id string) (*Course, error)
}

// Snapshot 是单次请求的一致性读快照。
//
// 核心思想：请求开始时取一次目录 + 交互，整个打分过程只读这一份数据，
// 避免同一请求内协同分与内容分基于不同版本的数据（幻读）。
type Snapshot struct {
	Courses      []Course
	Interactions []Interaction

	byID map[string]*Course
}

// NewSnapshot 构建快照并建立课程索引。
func NewSnapshot(courses []Course, interactions []Interaction) *Snapshot {
	s := &Snapshot{
		Courses:      courses,
		Interactions: interactions,
		byID:         make(map[string]*Course, len(courses)),
	}
	for i := range s.Courses {
		s.byID[s.Courses[i].ID] = &s.Courses[i]
	}
	return s
}

// Course 按 ID 查找快照内的课程，不存在返回 nil。
func (s *Snapshot) Course(id string) *Course {
	if s == nil || s.byID == nil {
		return nil
	}
	return s.byID[id]
}
