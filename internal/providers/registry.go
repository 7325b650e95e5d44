package providers

import (
	"context"
	"sync"

	"github.com/pocketbase/pocketbase/tools/routine"
	"go.uber.org/zap"

	"epol-dashboard/internal/models"
	"epol-dashboard/internal/repository"
	"epol-dashboard/internal/session"
)

// syncable is the type-erased view of a provider the registry fans out to
type syncable interface {
	Name() string
	Refresh(ctx context.Context)
	OnAuthChange(ctx context.Context, authenticated bool)
}

// Registry owns the six domain providers
type Registry struct {
	Inventory   *Provider[models.InventoryItem]
	Incidents   *Incidents
	Users       *Provider[models.User]
	Attendance  *Provider[models.AttendanceRecord]
	Locations   *Provider[models.WorkplaceLocation]
	Assignments *Provider[models.EmployeeAssignment]

	log *zap.SugaredLogger
}

// NewRegistry builds every provider on top of client. Locations and
// assignments patch locally since the backend computes nothing for them.
func NewRegistry(client repository.Requester, log *zap.SugaredLogger) *Registry {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Registry{
		Inventory: New[models.InventoryItem]("inventory",
			repository.NewREST[models.InventoryItem](client, repository.PathInventoryItems), Resync, log),
		Incidents: NewIncidents(
			repository.NewREST[models.IncidentReport](client, repository.PathIncidentReports),
			repository.NewIncidentActions(client), Resync, log),
		Users: New[models.User]("users",
			repository.NewREST[models.User](client, repository.PathUsers), Resync, log),
		Attendance: New[models.AttendanceRecord]("attendance",
			repository.NewREST[models.AttendanceRecord](client, repository.PathAttendanceRecords), Resync, log),
		Locations: New[models.WorkplaceLocation]("workplace-locations",
			repository.NewREST[models.WorkplaceLocation](client, repository.PathWorkplaceLocations), PatchLocal, log),
		Assignments: New[models.EmployeeAssignment]("employee-assignments",
			repository.NewREST[models.EmployeeAssignment](client, repository.PathEmployeeAssignments), PatchLocal, log),
		log: log,
	}
}

func (r *Registry) all() []syncable {
	return []syncable{r.Inventory, r.Incidents, r.Users, r.Attendance, r.Locations, r.Assignments}
}

// RefreshAll refreshes every provider concurrently and waits for all of them.
func (r *Registry) RefreshAll(ctx context.Context) {
	var wg sync.WaitGroup
	for _, p := range r.all() {
		wg.Add(1)
		go func(p syncable) {
			defer wg.Done()
			p.Refresh(ctx)
		}(p)
	}
	wg.Wait()
}

// AttachSession forwards session transitions to every provider without
// blocking the goroutine that logged in or out.
func (r *Registry) AttachSession(ctx context.Context, sess *session.Session) {
	sess.OnChange(func(ev session.Event) {
		r.log.Infow("session changed", "authenticated", ev.Authenticated, "reason", ev.Reason)
		for _, p := range r.all() {
			routine.FireAndForget(func() {
				p.OnAuthChange(ctx, ev.Authenticated)
			})
		}
	})
	if sess.Authenticated() {
		for _, p := range r.all() {
			routine.FireAndForget(func() {
				p.OnAuthChange(ctx, true)
			})
		}
	}
}
