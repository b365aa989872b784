package engine

import (
	"context"
	"io"
	"math"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rushteam/courserec/core"
	"github.com/rushteam/courserec/store"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func seedCourses() []core.Course {
	return []core.Course{
		{ID: "c1", Title: "Python for Data Science", Skills: []string{"python", "pandas"},
			Category: "Data Science", Difficulty: "beginner", ContentType: "video",
			DurationHours: 6, Rating: 4.5, EnrollmentCount: 500, IsActive: true},
		{ID: "c2", Title: "Advanced Python Programming", Skills: []string{"python"},
			Category: "Programming", Difficulty: "advanced", ContentType: "video",
			DurationHours: 10, Rating: 4.8, EnrollmentCount: 300, IsActive: true},
		{ID: "c3", Title: "Machine Learning with Python", Skills: []string{"python", "ml"},
			Category: "Data Science", Difficulty: "intermediate", ContentType: "video",
			DurationHours: 12, Rating: 4.2, EnrollmentCount: 800, IsActive: true},
		{ID: "c4", Title: "Deep Learning Foundations in Python", Skills: []string{"python", "ml"},
			Category: "Data Science", Difficulty: "advanced", ContentType: "video",
			DurationHours: 15, Rating: 4.6, EnrollmentCount: 600, IsActive: true},
		{ID: "c5", Title: "Watercolor Painting Basics", Skills: []string{"painting"},
			Category: "Art", Difficulty: "beginner", ContentType: "video",
			DurationHours: 3, Rating: 4.9, EnrollmentCount: 100, IsActive: true},
		{ID: "c6", Title: "Statistics for Data Science", Skills: []string{"statistics", "python"},
			Category: "Data Science", Difficulty: "intermediate", ContentType: "text",
			DurationHours: 8, Rating: 4.0, EnrollmentCount: 200, IsActive: true},
		{ID: "c7", Title: "Retired Python Course", Skills: []string{"python"},
			Category: "Programming", Difficulty: "beginner", ContentType: "video",
			DurationHours: 5, Rating: 5.0, EnrollmentCount: 9999, IsActive: false},
	}
}

func seedInteractions() []core.Interaction {
	at := func(daysAgo int) time.Time { return now.AddDate(0, 0, -daysAgo) }
	return []core.Interaction{
		// u1: 5 次交互 / 2 次报名，过 gate
		{UserID: "u1", CourseID: "c1", Type: core.InteractionEnroll, OccurredAt: at(30)},
		{UserID: "u1", CourseID: "c1", Type: core.InteractionComplete, OccurredAt: at(10)},
		{UserID: "u1", CourseID: "c2", Type: core.InteractionEnroll, OccurredAt: at(20)},
		{UserID: "u1", CourseID: "c2", Type: core.InteractionLike, OccurredAt: at(15)},
		{UserID: "u1", CourseID: "c3", Type: core.InteractionView, OccurredAt: at(5)},
		// u2: 与 u1 共同喜欢 c1/c2，还喜欢 c4 → 给 u1 的协同候选
		{UserID: "u2", CourseID: "c1", Type: core.InteractionEnroll, OccurredAt: at(40)},
		{UserID: "u2", CourseID: "c2", Type: core.InteractionEnroll, OccurredAt: at(35)},
		{UserID: "u2", CourseID: "c2", Type: core.InteractionComplete, OccurredAt: at(25)},
		{UserID: "u2", CourseID: "c4", Type: core.InteractionLike, OccurredAt: at(12)},
		// u3: 口味无交集
		{UserID: "u3", CourseID: "c5", Type: core.InteractionLike, OccurredAt: at(8)},
		// loner: 过 gate，但相似用户的正向课程都已被 loner 交互过
		{UserID: "loner", CourseID: "c5", Type: core.InteractionEnroll, OccurredAt: at(50)},
		{UserID: "loner", CourseID: "c5", Type: core.InteractionView, OccurredAt: at(45)},
		{UserID: "loner", CourseID: "c6", Type: core.InteractionEnroll, OccurredAt: at(40)},
		{UserID: "loner", CourseID: "c6", Type: core.InteractionLike, OccurredAt: at(30)},
		{UserID: "loner", CourseID: "c6", Type: core.InteractionComplete, OccurredAt: at(20)},
	}
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestEngine(t *testing.T, cfg *core.EngineConfig) (*Engine, *store.Catalog) {
	t.Helper()
	ctx := context.Background()
	cat := store.NewCatalog(store.NewMemoryStore())
	for _, c := range seedCourses() {
		if err := cat.SaveCourse(ctx, c); err != nil {
			t.Fatalf("种子课程写入失败: %v", err)
		}
	}
	for _, in := range seedInteractions() {
		if err := cat.AppendInteraction(ctx, in); err != nil {
			t.Fatalf("种子交互写入失败: %v", err)
		}
	}

	e, err := New(Options{
		Config:       cfg,
		Catalog:      cat,
		Interactions: cat,
		Feedback:     cat,
		Logger:       quietLogger(),
	})
	if err != nil {
		t.Fatalf("装配引擎失败: %v", err)
	}
	e.now = func() time.Time { return now }
	return e, cat
}

// TestRecommend_NewUserFallback 验证数据不足的新用户转入热门兜底
func TestRecommend_NewUserFallback(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	res, err := e.Recommend(context.Background(), Request{UserID: "newbie"})
	if err != nil {
		t.Fatalf("推荐失败: %v", err)
	}
	if !res.Fallback {
		t.Error("新用户应走兜底")
	}
	if res.Algorithm != "popularity" {
		t.Errorf("兜底算法应为 popularity，实际 %q", res.Algorithm)
	}
	if len(res.Items) == 0 {
		t.Fatal("兜底应有结果")
	}
	// 置信度压缩在 [0.5, 0.8] 带内
	for _, r := range res.Items {
		if r.Confidence < 0.5 || r.Confidence > 0.8 {
			t.Errorf("兜底置信度应在 [0.5,0.8]，实际 %v (%s)", r.Confidence, r.CourseID)
		}
		if r.Reason == "" {
			t.Errorf("%s 缺少 reason", r.CourseID)
		}
	}
	// 评分最高的 c5 应排第一；下架的 c7 不出现
	if res.Items[0].CourseID != "c5" {
		t.Errorf("热门第一应为 c5，实际 %s", res.Items[0].CourseID)
	}
	for _, r := range res.Items {
		if r.CourseID == "c7" {
			t.Error("下架课程不应出现")
		}
	}
}

// TestRecommend_PersonalizedHybrid 验证过 gate 用户的个性化推荐
func TestRecommend_PersonalizedHybrid(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	res, err := e.Recommend(context.Background(), Request{UserID: "u1"})
	if err != nil {
		t.Fatalf("推荐失败: %v", err)
	}
	if res.Fallback {
		t.Fatalf("u1 数据充分，不应兜底（reason=%s）", res.FallbackReason)
	}
	if len(res.Items) == 0 {
		t.Fatal("应有个性化结果")
	}

	seen := map[string]struct{}{"c1": {}, "c2": {}, "c3": {}}
	ids := map[string]struct{}{}
	for i, r := range res.Items {
		if _, ok := seen[r.CourseID]; ok {
			t.Errorf("已交互课程 %s 不应出现", r.CourseID)
		}
		if _, dup := ids[r.CourseID]; dup {
			t.Errorf("结果中出现重复课程 %s", r.CourseID)
		}
		ids[r.CourseID] = struct{}{}
		if r.Confidence < 0 || r.Confidence > 1 {
			t.Errorf("置信度越界: %v", r.Confidence)
		}
		if r.Rank != i+1 {
			t.Errorf("Rank 应为稠密 1..N: 位置 %d 的 Rank=%d", i, r.Rank)
		}
		if i > 0 && res.Items[i-1].Confidence < r.Confidence {
			t.Error("结果应按置信度降序")
		}
	}
	// u2 喜欢的 c4 应该被协同召回
	if _, ok := ids["c4"]; !ok {
		t.Error("协同候选 c4 应出现在结果中")
	}
}

// TestRecommend_InvalidInput 验证调用方误用返回硬错误而非兜底
func TestRecommend_InvalidInput(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	ctx := context.Background()

	if _, err := e.Recommend(ctx, Request{}); !core.IsInvalidInput(err) {
		t.Errorf("空 user id 应返回 INVALID_INPUT，实际 %v", err)
	}
	if _, err := e.Recommend(ctx, Request{UserID: "u1", Limit: -1}); !core.IsInvalidInput(err) {
		t.Errorf("负 limit 应返回 INVALID_INPUT，实际 %v", err)
	}
	_, err := e.Recommend(ctx, Request{
		UserID:  "u1",
		Filters: &core.FilterSpec{Difficulty: "expert"},
	})
	if !core.IsInvalidFilter(err) {
		t.Errorf("未知难度应返回 INVALID_FILTER，实际 %v", err)
	}
	_, err = e.Recommend(ctx, Request{
		UserID:  "u1",
		Filters: &core.FilterSpec{Categories: []string{"Cooking"}},
	})
	if !core.IsInvalidFilter(err) {
		t.Errorf("目录里不存在的类别应返回 INVALID_FILTER，实际 %v", err)
	}
}

// TestRecommend_FiltersApply 验证属性过滤在兜底链路同样生效
func TestRecommend_FiltersApply(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	res, err := e.Recommend(context.Background(), Request{
		UserID:  "newbie",
		Filters: &core.FilterSpec{Categories: []string{"data science"}},
	})
	if err != nil {
		t.Fatalf("推荐失败: %v", err)
	}
	if len(res.Items) == 0 {
		t.Fatal("应有结果")
	}
	for _, r := range res.Items {
		switch r.CourseID {
		case "c1", "c3", "c4", "c6":
		default:
			t.Errorf("非 Data Science 课程 %s 不应出现", r.CourseID)
		}
	}
}

// TestRecommend_Exclude 验证显式排除集生效
func TestRecommend_Exclude(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	res, err := e.Recommend(context.Background(), Request{
		UserID:  "newbie",
		Exclude: []string{"c3", "c4"},
	})
	if err != nil {
		t.Fatalf("推荐失败: %v", err)
	}
	for _, r := range res.Items {
		if r.CourseID == "c3" || r.CourseID == "c4" {
			t.Errorf("被排除的课程 %s 不应出现", r.CourseID)
		}
	}
}

// TestRecommend_TimeoutFallback 验证个性化超时转入兜底而不是报错
func TestRecommend_TimeoutFallback(t *testing.T) {
	cfg := core.DefaultEngineConfig()
	cfg.TimeoutSeconds = -1 // 立即过期，确定性触发超时路径
	e, _ := newTestEngine(t, cfg)

	res, err := e.Recommend(context.Background(), Request{UserID: "u1"})
	if err != nil {
		t.Fatalf("超时应兜底而非报错: %v", err)
	}
	if !res.Fallback {
		t.Error("超时应标记 Fallback")
	}
	if res.FallbackReason != "personalized path timed out" {
		t.Errorf("兜底原因错误: %q", res.FallbackReason)
	}
	if len(res.Items) == 0 {
		t.Error("超时兜底应有结果")
	}
}

// TestRecommend_Limit 验证条数截断与默认值
func TestRecommend_Limit(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	res, err := e.Recommend(context.Background(), Request{UserID: "newbie", Limit: 2})
	if err != nil {
		t.Fatalf("推荐失败: %v", err)
	}
	if len(res.Items) != 2 {
		t.Errorf("期望 2 条，实际 %d", len(res.Items))
	}
}

// TestSimilarCourses 验证相似课程查询
func TestSimilarCourses(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	ctx := context.Background()

	recs, err := e.SimilarCourses(ctx, "c1", 5)
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(recs) == 0 {
		t.Fatal("应有相似课程")
	}
	for _, r := range recs {
		if r.CourseID == "c1" {
			t.Error("结果不应包含锚点自身")
		}
		if r.CourseID == "c7" {
			t.Error("下架课程不应出现")
		}
	}

	if _, err := e.SimilarCourses(ctx, "nope", 5); !core.IsNotFound(err) {
		t.Errorf("未知课程应返回 NOT_FOUND，实际 %v", err)
	}
	if _, err := e.SimilarCourses(ctx, "", 5); !core.IsInvalidInput(err) {
		t.Errorf("空课程 ID 应返回 INVALID_INPUT，实际 %v", err)
	}
}

// TestDataRequirements 验证数据达成进度
func TestDataRequirements(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	reqs, err := e.DataRequirements(context.Background(), "u3")
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(reqs.Reports) != 4 {
		t.Fatalf("应有 4 份报告，实际 %d", len(reqs.Reports))
	}

	byAlgo := map[string]bool{}
	for _, rep := range reqs.Reports {
		byAlgo[rep.Algorithm] = rep.Eligible
	}
	if byAlgo["hybrid"] {
		t.Error("u3 只有 1 次交互，hybrid 不应 eligible")
	}
	if !byAlgo["popularity"] {
		t.Error("popularity 应恒为 eligible")
	}

	// u1 数据充分
	reqs, err = e.DataRequirements(context.Background(), "u1")
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	for _, rep := range reqs.Reports {
		if !rep.Eligible {
			t.Errorf("u1 对 %s 应 eligible", rep.Algorithm)
		}
	}
}

// TestRecordFeedback 验证反馈校验与落库
func TestRecordFeedback(t *testing.T) {
	e, cat := newTestEngine(t, nil)
	ctx := context.Background()

	if err := e.RecordFeedback(ctx, core.Interaction{
		UserID: "u1", CourseID: "c4", Type: core.InteractionLike,
	}); err != nil {
		t.Fatalf("合法反馈失败: %v", err)
	}

	// 落库后可读回
	ins, err := cat.ListUserInteractions(ctx, "u1", now.AddDate(0, 0, -1))
	if err != nil {
		t.Fatalf("读回失败: %v", err)
	}
	found := false
	for _, in := range ins {
		if in.CourseID == "c4" && in.Type == core.InteractionLike {
			found = true
			if in.OccurredAt.IsZero() {
				t.Error("OccurredAt 应被补齐")
			}
		}
	}
	if !found {
		t.Error("反馈应已落库")
	}

	tests := []struct {
		name string
		in   core.Interaction
	}{
		{"missing_user", core.Interaction{CourseID: "c1", Type: core.InteractionLike}},
		{"missing_course", core.Interaction{UserID: "u1", Type: core.InteractionLike}},
		{"unknown_type", core.Interaction{UserID: "u1", CourseID: "c1", Type: "share"}},
		{"rating_out_of_range", core.Interaction{UserID: "u1", CourseID: "c1", Type: core.InteractionRate, Value: 9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := e.RecordFeedback(ctx, tt.in); !core.IsInvalidInput(err) {
				t.Errorf("应返回 INVALID_INPUT，实际 %v", err)
			}
		})
	}
}

// TestVectors_RebuildOnCourseTextChange 验证课程文本字段变更触发向量集重建
func TestVectors_RebuildOnCourseTextChange(t *testing.T) {
	e, cat := newTestEngine(t, nil)
	ctx := context.Background()

	if _, err := e.loadSnapshot(ctx); err != nil {
		t.Fatalf("加载快照失败: %v", err)
	}
	v1 := e.prof.Version()
	if v1 == "" {
		t.Fatal("首次加载应构建向量集")
	}

	// 目录未变 → 不重建
	if _, err := e.loadSnapshot(ctx); err != nil {
		t.Fatalf("加载快照失败: %v", err)
	}
	if e.prof.Version() != v1 {
		t.Error("目录未变更不应重建向量集")
	}

	// 只改描述与技能（ID/标题/上下架不变）→ 必须重建
	c := seedCourses()[0]
	c.Description = "now covers polars, duckdb and arrow"
	c.Skills = append(c.Skills, "duckdb")
	if err := cat.SaveCourse(ctx, c); err != nil {
		t.Fatalf("更新课程失败: %v", err)
	}
	if _, err := e.loadSnapshot(ctx); err != nil {
		t.Fatalf("加载快照失败: %v", err)
	}
	if e.prof.Version() == v1 {
		t.Error("课程描述/技能变更后应重建向量集")
	}
}

// TestRecommend_HybridKeepsFusedConfidence 验证混合置信度保留融合折扣，
// 不被 min-max 重新拉伸到 1/0
func TestRecommend_HybridKeepsFusedConfidence(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	// loner 过 gate 但协同路为空（相似用户的正向课程都已见过），
	// 混合结果全部来自内容单路：最高分应恰为 ContentDiscount 0.9
	res, err := e.Recommend(context.Background(), Request{UserID: "loner"})
	if err != nil {
		t.Fatalf("推荐失败: %v", err)
	}
	if res.Fallback {
		t.Fatalf("内容路有候选，不应兜底（reason=%s）", res.FallbackReason)
	}
	if len(res.Items) == 0 {
		t.Fatal("应有个性化结果")
	}
	if math.Abs(res.Items[0].Confidence-0.9) > 1e-9 {
		t.Errorf("内容单路最高置信度应恰为折扣 0.9，实际 %v", res.Items[0].Confidence)
	}
	for _, r := range res.Items {
		if r.Confidence > 0.9+1e-9 {
			t.Errorf("单路命中的置信度不应超过折扣上限: %s=%v", r.CourseID, r.Confidence)
		}
	}
}

// TestToRecommendations_ScorePreservation 验证已归一化分数按原值透出，
// 未归一化路径仍做 min-max
func TestToRecommendations_ScorePreservation(t *testing.T) {
	build := func() []*core.Item {
		a := core.NewItem("c1")
		a.Score, a.Source = 0.8, "hybrid"
		b := core.NewItem("c2")
		b.Score, b.Source = 0.36, "collaborative"
		return []*core.Item{a, b}
	}

	recs := toRecommendations(build(), 10, false)
	if math.Abs(recs[0].Confidence-0.8) > 1e-9 || math.Abs(recs[1].Confidence-0.36) > 1e-9 {
		t.Errorf("融合分应原样保留，实际 %v / %v", recs[0].Confidence, recs[1].Confidence)
	}

	recs = toRecommendations(build(), 10, true)
	if recs[0].Confidence != 1.0 || recs[1].Confidence != 0.0 {
		t.Errorf("归一化路径应 min-max 到 [0,1]，实际 %v / %v", recs[0].Confidence, recs[1].Confidence)
	}
}

// TestRecommend_CollaborativeEmptyIsLegal 验证显式协同请求的空结果原样返回
func TestRecommend_CollaborativeEmptyIsLegal(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	res, err := e.Recommend(context.Background(), Request{
		UserID:    "loner",
		Algorithm: core.AlgorithmCollaborative,
	})
	if err != nil {
		t.Fatalf("空结果不应报错: %v", err)
	}
	if res.Fallback {
		t.Error("显式 collaborative 的空结果不应转兜底")
	}
	if len(res.Items) != 0 {
		t.Errorf("期望空列表，实际 %d 条", len(res.Items))
	}
}

// TestRecommend_ExplicitPopularity 验证显式请求热门算法不过 gate
func TestRecommend_ExplicitPopularity(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	res, err := e.Recommend(context.Background(), Request{
		UserID:    "newbie",
		Algorithm: core.AlgorithmPopularity,
	})
	if err != nil {
		t.Fatalf("推荐失败: %v", err)
	}
	if res.Fallback {
		t.Error("显式 popularity 不算兜底")
	}
	if res.Algorithm != "popularity" {
		t.Errorf("算法应为 popularity，实际 %q", res.Algorithm)
	}
	if len(res.Items) == 0 {
		t.Error("应有结果")
	}
}
