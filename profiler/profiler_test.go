package profiler

import (
	"math"
	"testing"

	"github.com/rushteam/courserec/core"
)

func testCourses() []core.Course {
	return []core.Course{
		{ID: "c1", Title: "Python for Data Science", Description: "Learn pandas and numpy for data analysis",
			Skills: []string{"python", "pandas"}, Category: "Data Science", IsActive: true},
		{ID: "c2", Title: "Advanced Python Programming", Description: "Deep dive into python internals",
			Skills: []string{"python"}, Category: "Programming", IsActive: true},
		{ID: "c3", Title: "Watercolor Painting Basics", Description: "Brush techniques and color mixing for beginners",
			Skills: []string{"painting"}, Category: "Art", IsActive: true},
		{ID: "c4", Title: "Inactive Course", Description: "should not be vectorized",
			Skills: []string{"python"}, Category: "Programming", IsActive: false},
	}
}

// TestRebuild_VersionAndVectors 验证重建产生新版本，且只包含上架课程
func TestRebuild_VersionAndVectors(t *testing.T) {
	p := New(64)

	if p.Version() != "" {
		t.Errorf("初始版本应为空，实际 %q", p.Version())
	}

	v1 := p.Rebuild(testCourses())
	if v1 == "" || p.Version() != v1 {
		t.Errorf("重建后版本错误: %q / %q", v1, p.Version())
	}

	if _, ok := p.CourseVector("c1"); !ok {
		t.Error("上架课程应有向量")
	}
	if _, ok := p.CourseVector("c4"); ok {
		t.Error("下架课程不应有向量")
	}

	v2 := p.Rebuild(testCourses())
	if v2 == v1 {
		t.Error("每次重建应产生新版本号")
	}
}

// TestVectors_Normalized 验证向量已 L2 归一化
func TestVectors_Normalized(t *testing.T) {
	p := New(64)
	p.Rebuild(testCourses())

	v, _ := p.CourseVector("c1")
	if n := Norm(v); math.Abs(n-1) > 1e-9 {
		t.Errorf("向量范数应为 1，实际 %v", n)
	}
}

// TestSimilarity_Relative 验证相似度的相对大小：
// 两门 Python 课之间应比 Python 课与绘画课之间更相似
func TestSimilarity_Relative(t *testing.T) {
	p := New(128)
	p.Rebuild(testCourses())

	related := p.Similarity("c1", "c2")
	unrelated := p.Similarity("c1", "c3")
	if related <= unrelated {
		t.Errorf("同主题课程相似度应更高: related=%v unrelated=%v", related, unrelated)
	}
}

// TestSimilarity_Missing 验证缺失课程的相似度为 0
func TestSimilarity_Missing(t *testing.T) {
	p := New(64)
	p.Rebuild(testCourses())

	if got := p.Similarity("c1", "nope"); got != 0 {
		t.Errorf("缺失课程相似度应为 0，实际 %v", got)
	}
}

// TestUserVector 验证用户向量是正偏好课程向量的加权聚合
func TestUserVector(t *testing.T) {
	p := New(128)
	p.Rebuild(testCourses())

	uv := p.UserVector(map[string]float64{"c1": 1.0, "c2": 0.5})
	if uv == nil {
		t.Fatal("有正偏好时用户向量不应为 nil")
	}
	if n := Norm(uv); math.Abs(n-1) > 1e-9 {
		t.Errorf("用户向量应归一化，实际范数 %v", n)
	}

	// 用户兴趣在 Python 上，与 Python 课的相似度应高于绘画课
	c2, _ := p.CourseVector("c2")
	c3, _ := p.CourseVector("c3")
	if Dot(uv, c2) <= Dot(uv, c3) {
		t.Error("用户向量与同主题课程的相似度应更高")
	}

	// 没有可用向量时返回 nil
	if got := p.UserVector(map[string]float64{"nope": 1.0}); got != nil {
		t.Errorf("无可用向量时应返回 nil，实际 %v", got)
	}
	if got := p.UserVector(nil); got != nil {
		t.Errorf("空偏好应返回 nil，实际 %v", got)
	}
}

// TestRebuild_Deterministic 验证同一目录重建得到相同向量
func TestRebuild_Deterministic(t *testing.T) {
	p1 := New(64)
	p1.Rebuild(testCourses())
	p2 := New(64)
	p2.Rebuild(testCourses())

	v1, _ := p1.CourseVector("c1")
	v2, _ := p2.CourseVector("c1")
	for i := range v1 {
		if v1[i] != v2[i] {
			t.Fatalf("向量构建不确定: 维度 %d 不一致 (%v vs %v)", i, v1[i], v2[i])
		}
	}
}
