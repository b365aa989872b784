// Package gate 实现数据充分性门：个性化引擎只对行为数据足够的用户开放，
// 不足的用户在引擎入口就被拦下、转入热门兜底，而不是让算法在噪声上硬算。
package gate

import (
	"fmt"

	"github.com/rushteam/courserec/core"
)

// Gate 按配置阈值判定用户数据是否支撑个性化推荐。
type Gate struct {
	Config *core.EngineConfig
}

// New 创建 Gate，cfg 为 nil 时使用默认配置。
func New(cfg *core.EngineConfig) *Gate {
	if cfg == nil {
		cfg = core.DefaultEngineConfig()
	}
	return &Gate{Config: cfg}
}

// Check 判定算法对该用户是否可用。
//
// 规则：
//   - popularity 永远放行（它就是兜底）
//   - 其余算法要求 交互数 ≥ MinInteractions 且 报名数 ≥ MinEnrollments
//     （阈值可按算法覆盖，见 EngineConfig.GateOverrides）
//
// 不满足时返回 INSUFFICIENT_DATA，引擎捕获后转入兜底，不上抛给调用方。
func (g *Gate) Check(algo core.Algorithm, interactions, enrollments int) error {
	if algo == core.AlgorithmPopularity {
		return nil
	}
	t := g.Config.GateFor(algo)
	if interactions >= t.MinInteractions && enrollments >= t.MinEnrollments {
		return nil
	}
	return core.NewDomainError(core.ModuleGate, core.ErrorCodeInsufficientData,
		fmt.Sprintf("gate: user has %d/%d interactions and %d/%d enrollments for %s",
			interactions, t.MinInteractions, enrollments, t.MinEnrollments, algo))
}

// Requirement 是单个阈值的达成进度。
type Requirement struct {
	Name     string `json:"name"`
	Current  int    `json:"current"`
	Required int    `json:"required"`
	Met      bool   `json:"met"`
}

// Progress 输出形如 "3/5" 的进度串，便于前端直接展示。
func (r Requirement) Progress() string {
	return fmt.Sprintf("%d/%d", r.Current, r.Required)
}

// Report 是某个算法的数据充分性报告。
type Report struct {
	Algorithm    string        `json:"algorithm"`
	Eligible     bool          `json:"eligible"`
	Requirements []Requirement `json:"requirements"`
}

// ReportFor 生成指定算法的达成报告（popularity 无要求，恒为 eligible）。
func (g *Gate) ReportFor(algo core.Algorithm, interactions, enrollments int) Report {
	if algo == core.AlgorithmPopularity {
		return Report{Algorithm: algo.String(), Eligible: true}
	}
	t := g.Config.GateFor(algo)
	reqs := []Requirement{
		{
			Name:     "interactions",
			Current:  interactions,
			Required: t.MinInteractions,
			Met:      interactions >= t.MinInteractions,
		},
		{
			Name:     "enrollments",
			Current:  enrollments,
			Required: t.MinEnrollments,
			Met:      enrollments >= t.MinEnrollments,
		},
	}
	eligible := true
	for _, r := range reqs {
		if !r.Met {
			eligible = false
		}
	}
	return Report{Algorithm: algo.String(), Eligible: eligible, Requirements: reqs}
}
