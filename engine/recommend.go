package engine

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rushteam/courserec/core"
	"github.com/rushteam/courserec/filter"
	"github.com/rushteam/courserec/fusion"
	"github.com/rushteam/courserec/pipeline"
	"github.com/rushteam/courserec/recall"
	"github.com/rushteam/courserec/rerank"
)

// Request 是一次推荐请求。
type Request struct {
	UserID string

	// Algorithm 指定引擎；零值为 hybrid
	Algorithm core.Algorithm

	// Limit 最大返回条数；0 用默认值，负数是 INVALID_INPUT
	Limit int

	// Filters 属性过滤条件（可选）
	Filters *core.FilterSpec

	// Exclude 显式排除的课程 ID（可选）
	Exclude []string

	// IncludeSeen 为 true 时不排除已交互课程
	IncludeSeen bool

	// Scene 调用场景（feed / onboarding 等），只用于观测
	Scene string
}

// Result 是推荐结果：实际执行的算法、是否兜底、排好序的推荐列表。
type Result struct {
	RequestID      string
	Algorithm      string
	Fallback       bool
	FallbackReason string
	ProfileVersion string
	Items          []core.Recommendation
	Elapsed        time.Duration
}

// Recommend 执行一次推荐。
//
// 错误语义：
//   - INVALID_INPUT / INVALID_FILTER 原样上抛（调用方误用）
//   - INSUFFICIENT_DATA / TIMEOUT 内部捕获，转热门兜底，Result.Fallback = true
//   - hybrid / content 个性化结果为空同样转兜底（冷语料场景）；
//     显式 collaborative 请求的空结果原样返回（无相似用户是合法结论）
func (e *Engine) Recommend(ctx context.Context, req Request) (*Result, error) {
	start := e.now()
	requestID := uuid.NewString()

	if req.UserID == "" {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput,
			"engine: user id is required")
	}
	limit := req.Limit
	if limit == 0 {
		limit = e.cfg.DefaultLimit
	}
	if limit < 0 {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput,
			"engine: limit must be non-negative")
	}

	attr := &filter.Attribute{Spec: req.Filters}
	if req.Filters != nil {
		if err := attr.Validate(); err != nil {
			return nil, err
		}
	}

	snap, err := e.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if req.Filters != nil {
		if err := attr.ValidateAgainst(snap.data); err != nil {
			return nil, err
		}
	}

	rctx := &core.RecommendContext{
		UserID:      req.UserID,
		Scene:       req.Scene,
		Limit:       limit,
		Filters:     req.Filters,
		Exclude:     excludeSet(req.Exclude),
		IncludeSeen: req.IncludeSeen,
		Data:        snap.data,
	}
	rctx.Profile = e.loadProfile(ctx, req.UserID, snap.mat)

	res := &Result{
		RequestID:      requestID,
		Algorithm:      req.Algorithm.String(),
		ProfileVersion: e.prof.Version(),
	}

	switch {
	case req.Algorithm == core.AlgorithmPopularity:
		res.Items, err = e.popularity(ctx, rctx, snap, attr, limit)
		if err != nil {
			return nil, err
		}

	default:
		if gateErr := e.gate.Check(req.Algorithm, rctx.Profile.InteractionCount, rctx.Profile.EnrollmentCount); gateErr != nil {
			res.Fallback = true
			res.FallbackReason = "insufficient data"
			res.Algorithm = core.AlgorithmPopularity.String()
			res.Items, err = e.popularity(ctx, rctx, snap, attr, limit)
			if err != nil {
				return nil, err
			}
			break
		}

		items, runErr := e.personalized(ctx, req.Algorithm, rctx, snap, attr)
		switch {
		case core.IsTimeout(runErr):
			res.Fallback = true
			res.FallbackReason = "personalized path timed out"
			res.Algorithm = core.AlgorithmPopularity.String()
			res.Items, err = e.popularity(ctx, rctx, snap, attr, limit)
			if err != nil {
				return nil, err
			}
		case runErr != nil:
			return nil, runErr
		case len(items) == 0 && req.Algorithm == core.AlgorithmCollaborative:
			// 显式协同请求下无相似用户是合法的空结果，不转兜底
			res.Items = []core.Recommendation{}
		case len(items) == 0:
			res.Fallback = true
			res.FallbackReason = "no personalized candidates"
			res.Algorithm = core.AlgorithmPopularity.String()
			res.Items, err = e.popularity(ctx, rctx, snap, attr, limit)
			if err != nil {
				return nil, err
			}
		default:
			// hybrid 的融合分已经各路归一化并施加过平均/折扣抑制，
			// 再做 min-max 会把首尾强行拉到 1/0、抹掉双路一致性信号；
			// 单引擎（协同/内容）的原始分无界，仍需归一化
			normalize := req.Algorithm == core.AlgorithmCollaborative ||
				req.Algorithm == core.AlgorithmContent
			res.Items = toRecommendations(items, limit, normalize)
		}
	}

	res.Elapsed = e.now().Sub(start)
	e.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"user_id":    req.UserID,
		"scene":      req.Scene,
		"algorithm":  res.Algorithm,
		"fallback":   res.Fallback,
		"items":      len(res.Items),
		"elapsed_ms": res.Elapsed.Milliseconds(),
	}).Info("recommend served")

	return res, nil
}

// personalized 组装并运行个性化链路，带整体超时。
func (e *Engine) personalized(
	ctx context.Context,
	algo core.Algorithm,
	rctx *core.RecommendContext,
	snap *snapshot,
	attr *filter.Attribute,
) ([]*core.Item, error) {
	collab := &recall.Collaborative{
		Matrix:           snap.mat,
		TopKSimilarUsers: e.cfg.TopKSimilarUsers,
	}
	content := &recall.Content{
		Profiler:   e.prof,
		Matrix:     snap.mat,
		SkillBlend: e.cfg.SkillBlend,
	}

	var head pipeline.Node
	switch algo {
	case core.AlgorithmCollaborative:
		head = collab
	case core.AlgorithmContent:
		head = content
	default:
		head = &fusion.Hybrid{
			Collaborative:         collab,
			Content:               content,
			CollaborativeDiscount: e.cfg.CollaborativeDiscount,
			ContentDiscount:       e.cfg.ContentDiscount,
		}
	}

	nodes := []pipeline.Node{
		head,
		&filter.Node{Filters: []filter.Filter{attr, &filter.Seen{Matrix: snap.mat}}},
	}
	if e.cfg.MaxPerCategory > 0 {
		nodes = append(nodes, &rerank.Diversity{MaxPerCategory: e.cfg.MaxPerCategory})
	}
	p := &pipeline.Pipeline{Nodes: nodes}

	runCtx := ctx
	if timeout := e.cfg.TimeoutDuration(); timeout != 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	// 超时先行检查：配置为负值或父 ctx 已过期时，直接走兜底
	select {
	case <-runCtx.Done():
		return nil, e.timeoutErr()
	default:
	}

	type result struct {
		items []*core.Item
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		items, err := p.Run(runCtx, rctx, nil)
		ch <- result{items: items, err: err}
	}()

	select {
	case r := <-ch:
		return r.items, r.err
	case <-runCtx.Done():
		return nil, e.timeoutErr()
	}
}

func (e *Engine) timeoutErr() error {
	return core.NewDomainError(core.ModuleEngine, core.ErrorCodeTimeout,
		"engine: personalized path exceeded deadline")
}

// popularity 运行热门兜底链路：属性过滤照常生效。
func (e *Engine) popularity(
	ctx context.Context,
	rctx *core.RecommendContext,
	snap *snapshot,
	attr *filter.Attribute,
	limit int,
) ([]core.Recommendation, error) {
	p := &pipeline.Pipeline{Nodes: []pipeline.Node{
		&recall.Popularity{
			Matrix: snap.mat,
			Floor:  e.cfg.PopularityFloor,
			Ceil:   e.cfg.PopularityCeil,
			Step:   e.cfg.PopularityStep,
		},
		&filter.Node{Filters: []filter.Filter{attr}},
	}}
	items, err := p.Run(ctx, rctx, nil)
	if err != nil {
		return nil, err
	}
	// 热门分已压缩在置信带内，不再归一化
	return toRecommendations(items, limit, false), nil
}

func excludeSet(ids []string) map[string]struct{} {
	if len(ids) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

// 按来源的默认 reason（融合链路会用更具体的文案覆盖）
var defaultReasons = map[string]string{
	"collaborative": "learners with similar interests also took this",
	"content":       "matches your learning profile",
	"popularity":    "popular among all learners",
	"hybrid":        "recommended by learners like you and matches your interests",
}

// toRecommendations 把候选转成最终推荐：
// 可选 min-max 归一化到 [0,1]，截断到 limit，产出稠密 Rank。
func toRecommendations(items []*core.Item, limit int, normalizeScores bool) []core.Recommendation {
	if len(items) == 0 {
		return []core.Recommendation{}
	}

	scores := make([]float64, len(items))
	if normalizeScores {
		min, max := items[0].Score, items[0].Score
		for _, it := range items {
			if it.Score < min {
				min = it.Score
			}
			if it.Score > max {
				max = it.Score
			}
		}
		for i, it := range items {
			if max > min {
				scores[i] = (it.Score - min) / (max - min)
			} else {
				scores[i] = 1.0
			}
		}
	} else {
		for i, it := range items {
			scores[i] = it.Score
		}
	}

	type scored struct {
		item  *core.Item
		score float64
	}
	all := make([]scored, len(items))
	for i, it := range items {
		s := scores[i]
		if s < 0 {
			s = 0
		}
		if s > 1 {
			s = 1
		}
		all[i] = scored{item: it, score: s}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].score != all[j].score {
			return all[i].score > all[j].score
		}
		return all[i].item.ID < all[j].item.ID
	})

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}

	out := make([]core.Recommendation, 0, len(all))
	for i, s := range all {
		reason := ""
		if lbl, ok := s.item.Labels["reason"]; ok {
			reason = lbl.Value
		}
		if reason == "" {
			reason = defaultReasons[s.item.Source]
		}
		out = append(out, core.Recommendation{
			CourseID:   s.item.ID,
			Confidence: s.score,
			Reason:     reason,
			Rank:       i + 1,
			Source:     s.item.Source,
		})
	}
	return out
}
