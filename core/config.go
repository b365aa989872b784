package core

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Thresholds 是数据充分性门的阈值对。
type Thresholds struct {
	MinInteractions int `yaml:"min_interactions"`
	MinEnrollments  int `yaml:"min_enrollments"`
}

// EngineConfig 把原来散落在各处的权重/衰减/折扣常量收敛为一个显式的、
// 带版本号的配置结构，在引擎构造时传入。
//
// 设计要点：
//   - 所有数值都是可调参数，不是硬契约：换一版配置即可做可复现的 A/B 实验
//   - Version 随配置变更递增，打点与结果解释都带上它
//   - 默认值见 DefaultEngineConfig，与参考行为一致
type EngineConfig struct {
	Version string `yaml:"version"`

	// TypeWeights 是行为类型到基础权重的映射。
	// 约束（Validate 校验）：enroll/complete/rate 高于 view；unlike/unenroll 为负。
	// rate 的最终权重 = RateWeight × (value/5)。
	TypeWeights map[InteractionType]float64 `yaml:"type_weights"`

	// HalfLifeDays 指数衰减半衰期；WindowDays 交互读取窗口（更久的直接丢弃）
	HalfLifeDays float64 `yaml:"half_life_days"`
	WindowDays   int     `yaml:"window_days"`

	// VectorDims 内容向量维度（catalog 变更时重建）
	VectorDims int `yaml:"vector_dims"`

	// SkillBlend 技能重合度在内容分里的占比；语义相似度占 1-SkillBlend
	SkillBlend float64 `yaml:"skill_blend"`

	// 融合折扣：仅单引擎命中的候选按来源打折
	CollaborativeDiscount float64 `yaml:"collaborative_discount"`
	ContentDiscount       float64 `yaml:"content_discount"`

	// TopKSimilarUsers 协同过滤考虑的相似用户数
	TopKSimilarUsers int `yaml:"top_k_similar_users"`

	// Gate 默认阈值与按算法覆盖（更强的个性化算法可以要求更高阈值）
	Gate          Thresholds            `yaml:"gate"`
	GateOverrides map[string]Thresholds `yaml:"gate_overrides"`

	// 热门兜底的置信度压缩带，向下游传达"非个性化"信号；
	// Step 是名次间的分数递减量
	PopularityFloor float64 `yaml:"popularity_floor"`
	PopularityCeil  float64 `yaml:"popularity_ceil"`
	PopularityStep  float64 `yaml:"popularity_step"`

	// MaxPerCategory 单个类别在个性化结果里的最大条数；0 表示不限制
	MaxPerCategory int `yaml:"max_per_category"`

	// DefaultLimit 未指定 limit 时的条数；TimeoutSeconds 个性化链路的整体上限
	DefaultLimit   int `yaml:"default_limit"`
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// TimeoutDuration 返回个性化链路的超时上限。
func (c *EngineConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// DefaultEngineConfig 返回参考默认配置。
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		Version: "v1",
		TypeWeights: map[InteractionType]float64{
			InteractionView:     0.2,
			InteractionLike:     0.8,
			InteractionUnlike:   -0.8,
			InteractionEnroll:   0.6,
			InteractionUnenroll: -0.6,
			InteractionComplete: 1.0,
			InteractionRate:     1.0, // × value/5
		},
		HalfLifeDays:          90,
		WindowDays:            365,
		VectorDims:            100,
		SkillBlend:            0.3,
		CollaborativeDiscount: 0.8,
		ContentDiscount:       0.9,
		TopKSimilarUsers:      10,
		Gate:                  Thresholds{MinInteractions: 5, MinEnrollments: 2},
		PopularityFloor:       0.5,
		PopularityCeil:        0.8,
		PopularityStep:        0.05,
		DefaultLimit:          10,
		TimeoutSeconds:        120,
	}
}

// GateFor 返回指定算法生效的阈值（有覆盖用覆盖，否则用默认）。
func (c *EngineConfig) GateFor(algo Algorithm) Thresholds {
	if c.GateOverrides != nil {
		if t, ok := c.GateOverrides[algo.String()]; ok {
			return t
		}
	}
	return c.Gate
}

// Validate 校验配置自洽性。
func (c *EngineConfig) Validate() error {
	if c.HalfLifeDays <= 0 {
		return fmt.Errorf("engine config: half_life_days must be positive, got %v", c.HalfLifeDays)
	}
	if c.VectorDims <= 0 {
		return fmt.Errorf("engine config: vector_dims must be positive, got %d", c.VectorDims)
	}
	if c.SkillBlend < 0 || c.SkillBlend > 1 {
		return fmt.Errorf("engine config: skill_blend must be in [0,1], got %v", c.SkillBlend)
	}
	if c.PopularityFloor < 0 || c.PopularityCeil > 1 || c.PopularityFloor > c.PopularityCeil {
		return fmt.Errorf("engine config: popularity band [%v,%v] invalid", c.PopularityFloor, c.PopularityCeil)
	}
	if c.PopularityStep < 0 {
		return fmt.Errorf("engine config: popularity_step must be non-negative, got %v", c.PopularityStep)
	}
	w := c.TypeWeights
	if w == nil {
		return fmt.Errorf("engine config: type_weights is required")
	}
	// 权重表必须单调：强信号高于浏览，负向信号为负
	for _, t := range []InteractionType{InteractionEnroll, InteractionComplete, InteractionRate} {
		if w[t] <= w[InteractionView] {
			return fmt.Errorf("engine config: weight of %s must exceed view", t)
		}
	}
	for _, t := range []InteractionType{InteractionUnlike, InteractionUnenroll} {
		if w[t] > 0 {
			return fmt.Errorf("engine config: weight of %s must be non-positive", t)
		}
	}
	return nil
}

// LoadEngineConfig 从 YAML 文件加载配置；缺省字段用默认值补齐。
func LoadEngineConfig(path string) (*EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultEngineConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
