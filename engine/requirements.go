package engine

import (
	"context"

	"github.com/rushteam/courserec/core"
	"github.com/rushteam/courserec/gate"
)

// Requirements 是用户的数据充分性总览：
// 每个算法一份达成报告，前端可直接渲染"再完成 X 次报名解锁个性化推荐"。
type Requirements struct {
	UserID  string        `json:"user_id"`
	Reports []gate.Report `json:"reports"`
}

// DataRequirements 返回用户对各算法的数据达成进度。
func (e *Engine) DataRequirements(ctx context.Context, userID string) (*Requirements, error) {
	if userID == "" {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput,
			"engine: user id is required")
	}

	snap, err := e.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	p := e.loadProfile(ctx, userID, snap.mat)

	algos := []core.Algorithm{
		core.AlgorithmHybrid,
		core.AlgorithmCollaborative,
		core.AlgorithmContent,
		core.AlgorithmPopularity,
	}
	reports := make([]gate.Report, 0, len(algos))
	for _, a := range algos {
		reports = append(reports, e.gate.ReportFor(a, p.InteractionCount, p.EnrollmentCount))
	}
	return &Requirements{UserID: userID, Reports: reports}, nil
}
