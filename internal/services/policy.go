package services

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"epol-dashboard/internal/repository"
)

// WorkHoursPolicy caches the backend's attendance policy, falling back to
// configuration until (or unless) /work-hours answers.
type WorkHoursPolicy struct {
	repo     repository.WorkHoursRepository
	fallback AttendancePolicy
	current  atomic.Pointer[AttendancePolicy]
	log      *zap.SugaredLogger
}

func NewWorkHoursPolicy(repo repository.WorkHoursRepository, fallback AttendancePolicy, log *zap.SugaredLogger) *WorkHoursPolicy {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &WorkHoursPolicy{repo: repo, fallback: fallback, log: log}
}

// Refresh reloads the policy; on failure the previous one stays in effect.
func (p *WorkHoursPolicy) Refresh(ctx context.Context) {
	wh, err := p.repo.Get(ctx)
	if err != nil {
		p.log.Warnw("work hours unavailable, keeping current policy", "error", err)
		return
	}
	policy := PolicyFromWorkHours(wh, p.fallback)
	p.current.Store(&policy)
}

func (p *WorkHoursPolicy) Policy() AttendancePolicy {
	if cur := p.current.Load(); cur != nil {
		return *cur
	}
	return p.fallback
}
