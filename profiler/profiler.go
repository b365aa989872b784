// Package profiler 负责课程内容向量的构建与查询。
//
// 流程：课程文本 → TF-IDF 稀疏权重 → signed hashing 投影 → 归一化稠密向量。
// 向量集随目录快照整体重建、整体替换（atomic.Pointer），查询侧永远
// 看到同一版本的完整向量集，不存在半新半旧的中间态。
package profiler

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/rushteam/courserec/core"
)

// catalogVectors 是一个版本的完整向量集（不可变）。
type catalogVectors struct {
	version string
	vectors map[string]Vector
	builtAt time.Time
}

// Profiler 维护当前生效的课程向量集。并发安全：Rebuild 与查询可任意交错。
type Profiler struct {
	dims int
	snap atomic.Pointer[catalogVectors]
}

// New 创建 Profiler。dims <= 0 时使用默认 100 维。
func New(dims int) *Profiler {
	if dims <= 0 {
		dims = 100
	}
	p := &Profiler{dims: dims}
	p.snap.Store(&catalogVectors{
		version: "",
		vectors: map[string]Vector{},
	})
	return p
}

// Rebuild 对整个目录重建向量集并原子替换，返回新版本号。
// 下架课程不进入向量集（召回侧自然不会产出它们）。
func (p *Profiler) Rebuild(courses []core.Course) string {
	active := make([]core.Course, 0, len(courses))
	for _, c := range courses {
		if c.IsActive {
			active = append(active, c)
		}
	}

	weights := tfidfWeights(active)
	vectors := make(map[string]Vector, len(active))
	for i, c := range active {
		vectors[c.ID] = project(weights[i], p.dims)
	}

	next := &catalogVectors{
		version: uuid.NewString(),
		vectors: vectors,
		builtAt: time.Now(),
	}
	p.snap.Store(next)
	return next.version
}

// Version 返回当前生效的向量集版本（从未 Rebuild 过时为空串）。
func (p *Profiler) Version() string {
	return p.snap.Load().version
}

// CourseVector 返回课程的内容向量。
func (p *Profiler) CourseVector(courseID string) (Vector, bool) {
	v, ok := p.snap.Load().vectors[courseID]
	return v, ok
}

// UserVector 把用户的课程偏好聚合为用户兴趣向量：
// 正偏好课程向量的加权平均，再归一化。没有任何可用向量时返回 nil。
func (p *Profiler) UserVector(courseWeights map[string]float64) Vector {
	snap := p.snap.Load()

	var acc Vector
	for courseID, w := range courseWeights {
		if w <= 0 {
			continue
		}
		cv, ok := snap.vectors[courseID]
		if !ok {
			continue
		}
		if acc == nil {
			acc = make(Vector, len(cv))
		}
		for i := range cv {
			acc[i] += w * cv[i]
		}
	}
	if acc == nil {
		return nil
	}
	return Normalize(acc)
}

// Similarity 返回两门课程的余弦相似度，任一缺失时为 0。
func (p *Profiler) Similarity(a, b string) float64 {
	snap := p.snap.Load()
	va, ok := snap.vectors[a]
	if !ok {
		return 0
	}
	vb, ok := snap.vectors[b]
	if !ok {
		return 0
	}
	return Dot(va, vb) // 向量已归一化，点积即余弦
}
