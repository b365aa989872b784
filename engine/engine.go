// Package engine 是推荐引擎的门面：对外只暴露少数几个操作
// （Recommend / SimilarCourses / DataRequirements / RecordFeedback），
// 内部把快照读取、矩阵折叠、召回、融合、过滤、兜底串成一条链路。
package engine

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rushteam/courserec/core"
	"github.com/rushteam/courserec/gate"
	"github.com/rushteam/courserec/matrix"
	"github.com/rushteam/courserec/profiler"
)

// Options 是引擎的装配参数。
type Options struct {
	// Config 引擎配置，nil 时使用默认配置
	Config *core.EngineConfig

	// Catalog 课程目录（必填）
	Catalog core.CatalogReader

	// Interactions 交互日志（必填）
	Interactions core.InteractionReader

	// Feedback 反馈写入端（可选，未配置时 RecordFeedback 返回 NOT_SUPPORTED）
	Feedback core.InteractionWriter

	// Profiles 用户画像（可选，未配置时画像视为零计数）
	Profiles core.ProfileReader

	// Logger 结构化日志（可选）
	Logger *logrus.Logger
}

// Engine 是无状态的推荐门面：每次请求取一份一致性快照，
// 打分全程只读这一份数据；引擎自身不持久化任何结果。
type Engine struct {
	cfg      *core.EngineConfig
	catalog  core.CatalogReader
	inter    core.InteractionReader
	feedback core.InteractionWriter
	profiles core.ProfileReader

	prof *profiler.Profiler
	gate *gate.Gate
	log  *logrus.Logger

	// 目录指纹：变化时才重建内容向量集
	mu         sync.Mutex
	catalogSig uint64

	// now 可注入的时钟（测试用）
	now func() time.Time
}

// New 装配引擎。
func New(opts Options) (*Engine, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = core.DefaultEngineConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Catalog == nil {
		return nil, fmt.Errorf("engine: catalog is required")
	}
	if opts.Interactions == nil {
		return nil, fmt.Errorf("engine: interaction reader is required")
	}

	log := opts.Logger
	if log == nil {
		log = logrus.New()
	}

	return &Engine{
		cfg:      cfg,
		catalog:  opts.Catalog,
		inter:    opts.Interactions,
		feedback: opts.Feedback,
		profiles: opts.Profiles,
		prof:     profiler.New(cfg.VectorDims),
		gate:     gate.New(cfg),
		log:      log,
		now:      time.Now,
	}, nil
}

// snapshot 是单次请求的工作集：一致性数据快照 + 折叠矩阵。
type snapshot struct {
	data *core.Snapshot
	mat  *matrix.Matrix
}

// loadSnapshot 读取目录与窗口内交互，折叠矩阵，并按需重建内容向量。
func (e *Engine) loadSnapshot(ctx context.Context) (*snapshot, error) {
	now := e.now()

	courses, err := e.catalog.ListCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("engine: load catalog: %w", err)
	}
	since := now.AddDate(0, 0, -e.cfg.WindowDays)
	ins, err := e.inter.ListInteractions(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("engine: load interactions: %w", err)
	}

	e.ensureVectors(courses)

	b := &matrix.Builder{Config: e.cfg}
	return &snapshot{
		data: core.NewSnapshot(courses, ins),
		mat:  b.Build(ins, now),
	}, nil
}

// ensureVectors 目录指纹变化时重建内容向量集（原子替换，请求侧无感知）。
// 指纹覆盖向量化用到的全部课程文本字段：任何一处变更都触发重建。
func (e *Engine) ensureVectors(courses []core.Course) {
	h := fnv.New64a()
	for _, c := range courses {
		h.Write([]byte(c.ID))
		h.Write([]byte{0})
		h.Write([]byte(c.Title))
		h.Write([]byte{0})
		h.Write([]byte(c.Description))
		h.Write([]byte{0})
		h.Write([]byte(c.Category))
		h.Write([]byte{0})
		for _, s := range c.Skills {
			h.Write([]byte(s))
			h.Write([]byte{0})
		}
		if c.IsActive {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{2})
		}
	}
	sig := h.Sum64()

	e.mu.Lock()
	defer e.mu.Unlock()
	if sig == e.catalogSig && e.prof.Version() != "" {
		return
	}
	version := e.prof.Rebuild(courses)
	e.catalogSig = sig
	e.log.WithFields(logrus.Fields{
		"courses": len(courses),
		"version": version,
	}).Info("course vectors rebuilt")
}

// loadProfile 读取用户画像；画像服务不可用时降级为零计数画像，
// 计数以画像与运行时矩阵两者的较大值为准。
func (e *Engine) loadProfile(ctx context.Context, userID string, mat *matrix.Matrix) *core.UserLearningProfile {
	var p *core.UserLearningProfile
	if e.profiles != nil {
		got, err := e.profiles.GetProfile(ctx, userID)
		if err != nil {
			e.log.WithError(err).WithField("user_id", userID).Warn("profile store unavailable, degrading")
		} else {
			p = got
		}
	}
	if p == nil {
		p = core.NewUserLearningProfile(userID)
	}

	if n := mat.InteractionCount(userID); n > p.InteractionCount {
		p.InteractionCount = n
	}
	if n := mat.EnrollmentCount(userID); n > p.EnrollmentCount {
		p.EnrollmentCount = n
	}
	return p
}
