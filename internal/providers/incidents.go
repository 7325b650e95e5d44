package providers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"epol-dashboard/internal/models"
	"epol-dashboard/internal/repository"
)

// Incidents is the incident-report provider plus its action sub-resources
type Incidents struct {
	*Provider[models.IncidentReport]
	actions repository.IncidentActionRepository
}

func NewIncidents(repo repository.CollectionRepository[models.IncidentReport], actions repository.IncidentActionRepository, policy SyncPolicy, log *zap.SugaredLogger) *Incidents {
	return &Incidents{
		Provider: New[models.IncidentReport]("incidents", repo, policy, log),
		actions:  actions,
	}
}

// MarkResolved resolves id on the backend, then syncs per policy.
func (p *Incidents) MarkResolved(ctx context.Context, id string) error {
	if err := p.actions.MarkResolved(ctx, id); err != nil {
		return p.fail("mark-resolved", err)
	}
	p.afterWrite(ctx, func() {
		if r, ok := p.items.GetOk(id); ok {
			r.Status = models.IncidentResolved
			p.items.Set(id, r)
		}
	})
	return nil
}

// AddAction appends text to id's action history.
func (p *Incidents) AddAction(ctx context.Context, id, text, actor string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("action text is required")
	}
	if err := p.actions.AddAction(ctx, id, text); err != nil {
		return p.fail("add-action", err)
	}
	p.afterWrite(ctx, func() {
		if r, ok := p.items.GetOk(id); ok {
			// copy so readers holding the old slice never see the append
			actions := make([]models.IncidentAction, len(r.Actions), len(r.Actions)+1)
			copy(actions, r.Actions)
			r.Actions = append(actions, models.IncidentAction{
				Timestamp: models.Timestamp{Time: time.Now()},
				Text:      text,
				Actor:     actor,
			})
			p.items.Set(id, r)
		}
	})
	return nil
}
