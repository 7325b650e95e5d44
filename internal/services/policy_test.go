package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"epol-dashboard/internal/models"
	"epol-dashboard/internal/repository"
)

type stubWorkHours struct {
	wh  *models.WorkHours
	err error
}

var _ repository.WorkHoursRepository = (*stubWorkHours)(nil)

func (s *stubWorkHours) Get(ctx context.Context) (*models.WorkHours, error) { return s.wh, s.err }

func TestWorkHoursPolicy(t *testing.T) {
	repo := &stubWorkHours{err: errors.New("404 Not Found")}
	fallback := DefaultAttendancePolicy()
	p := NewWorkHoursPolicy(repo, fallback, nil)

	if p.Policy() != fallback {
		t.Fatalf("Policy() before refresh = %+v", p.Policy())
	}

	p.Refresh(context.Background())
	if p.Policy() != fallback {
		t.Errorf("failed refresh should keep fallback, got %+v", p.Policy())
	}

	repo.err = nil
	repo.wh = &models.WorkHours{WorkStart: "09:00:00", GraceMinutes: 15}
	p.Refresh(context.Background())
	got := p.Policy()
	if got.WorkStartTime != "09:00:00" || got.GracePeriod != 15*time.Minute {
		t.Errorf("Policy() = %+v", got)
	}

	repo.err = errors.New("timeout")
	p.Refresh(context.Background())
	if p.Policy() != got {
		t.Errorf("failed refresh replaced the loaded policy: %+v", p.Policy())
	}
}
