package store

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/courserec/core"
)

// TestCatalog_Courses 验证课程的写入、单查与全量列表
func TestCatalog_Courses(t *testing.T) {
	ctx := context.Background()
	cat := NewCatalog(NewMemoryStore())

	courses := []core.Course{
		{ID: "c2", Title: "Advanced Go", Category: "Programming", IsActive: true},
		{ID: "c1", Title: "Intro to Go", Category: "Programming", IsActive: true},
	}
	for _, c := range courses {
		if err := cat.SaveCourse(ctx, c); err != nil {
			t.Fatalf("写入课程失败: %v", err)
		}
	}

	got, err := cat.ListCourses(ctx)
	if err != nil {
		t.Fatalf("列表失败: %v", err)
	}
	if len(got) != 2 || got[0].ID != "c1" || got[1].ID != "c2" {
		t.Errorf("列表应按 ID 升序: %+v", got)
	}

	c, err := cat.GetCourse(ctx, "c1")
	if err != nil {
		t.Fatalf("单查失败: %v", err)
	}
	if c.Title != "Intro to Go" {
		t.Errorf("课程内容错误: %+v", c)
	}

	if _, err := cat.GetCourse(ctx, "nope"); !core.IsNotFound(err) {
		t.Errorf("缺失课程应返回 NOT_FOUND，实际 %v", err)
	}
}

// TestCatalog_Interactions 验证交互的追加与窗口读取
func TestCatalog_Interactions(t *testing.T) {
	ctx := context.Background()
	cat := NewCatalog(NewMemoryStore())
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	ins := []core.Interaction{
		{UserID: "u1", CourseID: "c1", Type: core.InteractionView, OccurredAt: now.AddDate(0, 0, -2)},
		{UserID: "u1", CourseID: "c2", Type: core.InteractionLike, OccurredAt: now.AddDate(0, 0, -1)},
		{UserID: "u2", CourseID: "c1", Type: core.InteractionEnroll, OccurredAt: now.AddDate(-2, 0, 0)},
	}
	for _, in := range ins {
		if err := cat.AppendInteraction(ctx, in); err != nil {
			t.Fatalf("追加交互失败: %v", err)
		}
	}

	all, err := cat.ListInteractions(ctx, now.AddDate(-1, 0, 0))
	if err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("窗口内应有 2 条交互，实际 %d", len(all))
	}

	u1, err := cat.ListUserInteractions(ctx, "u1", now.AddDate(-1, 0, 0))
	if err != nil {
		t.Fatalf("按用户读取失败: %v", err)
	}
	if len(u1) != 2 {
		t.Errorf("u1 应有 2 条交互，实际 %d", len(u1))
	}
	for _, in := range u1 {
		if in.UserID != "u1" {
			t.Errorf("按用户读取混入了其他用户: %+v", in)
		}
	}
}
