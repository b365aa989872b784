package recall

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/rushteam/courserec/core"
	"github.com/rushteam/courserec/matrix"
	"github.com/rushteam/courserec/pkg/utils"
)

// Collaborative 是基于用户的协同过滤召回源（User-CF）。
//
// 核心思想："学习路径相似的用户，会对相似的课程感兴趣"
//
// 算法流程：
//  1. 从偏好矩阵取目标用户的课程偏好向量
//  2. 与其他用户逐一计算余弦相似度（稀疏向量，只遍历交集）
//  3. 取 TopK 相似用户
//  4. 候选分 = Σ(用户相似度 × 该用户对课程的偏好)，跳过目标用户已交互课程
//
// 边界：
//  - 目标用户无正偏好 → 空结果（数据充分性由上游 gate 保证，这里只兜底）
//  - 无正相似度用户 → 空结果
type Collaborative struct {
	Matrix *matrix.Matrix

	// TopKSimilarUsers 计算候选时考虑的相似用户数（默认 10）
	TopKSimilarUsers int

	// TopKItems 最终返回的候选数（0 表示不截断）
	TopKItems int
}

func (r *Collaborative) Name() string { return "recall.collaborative" }

func (r *Collaborative) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Matrix == nil || rctx == nil || rctx.UserID == "" || rctx.Data == nil {
		return nil, nil
	}

	target := r.Matrix.UserWeights(rctx.UserID)
	if len(target) == 0 {
		return nil, nil
	}
	targetNorm := vectorNorm(target)
	seen := r.Matrix.Seen(rctx.UserID)

	topK := r.TopKSimilarUsers
	if topK <= 0 {
		topK = 10
	}

	// 与其他用户逐一计算相似度；Users() 升序遍历保证结果可复现
	type userSim struct {
		userID string
		sim    float64
	}
	sims := make([]userSim, 0)
	for _, userID := range r.Matrix.Users() {
		if userID == rctx.UserID {
			continue
		}
		other := r.Matrix.UserWeights(userID)
		if len(other) == 0 {
			continue
		}
		sim := sparseCosine(target, targetNorm, other)
		if sim > 0 {
			sims = append(sims, userSim{userID: userID, sim: sim})
		}
	}
	if len(sims) == 0 {
		return nil, nil
	}

	sort.Slice(sims, func(i, j int) bool {
		if sims[i].sim != sims[j].sim {
			return sims[i].sim > sims[j].sim
		}
		return sims[i].userID < sims[j].userID
	})
	if len(sims) > topK {
		sims = sims[:topK]
	}

	// 候选分 = Σ(相似度 × 邻居偏好)
	scores := make(map[string]float64)
	for _, s := range sims {
		for courseID, w := range r.Matrix.UserWeights(s.userID) {
			if !candidate(rctx, rctx.Data.Course(courseID), seen) {
				continue
			}
			scores[courseID] += s.sim * w
		}
	}

	out := make([]*core.Item, 0, len(scores))
	for courseID, score := range scores {
		it := core.NewItem(courseID)
		it.Score = score
		it.Source = "collaborative"
		it.PutLabel("recall_source", utils.Label{Value: "collaborative", Source: "recall"})
		it.PutLabel("similar_users", utils.Label{
			Value:  fmt.Sprintf("%d", len(sims)),
			Source: "recall",
		})
		out = append(out, it)
	}
	sortItems(out)
	return topN(out, r.TopKItems), nil
}

// sparseCosine 计算两个稀疏偏好向量的余弦相似度。
// 只遍历较短一方的 key，点积只在交集上非零。
func sparseCosine(a map[string]float64, aNorm float64, b map[string]float64) float64 {
	bNorm := vectorNorm(b)
	if aNorm == 0 || bNorm == 0 {
		return 0
	}
	short, long := a, b
	if len(b) < len(a) {
		short, long = b, a
	}
	var dot float64
	for k, v := range short {
		if w, ok := long[k]; ok {
			dot += v * w
		}
	}
	return dot / (aNorm * bNorm)
}

func vectorNorm(v map[string]float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
