package services

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"epol-dashboard/internal/models"
	"epol-dashboard/internal/repository"
)

// InventorySource is the read-only view of the inventory provider
type InventorySource interface {
	Items() []models.InventoryItem
}

type IncidentSource interface {
	Items() []models.IncidentReport
}

type UserSource interface {
	Items() []models.User
}

type AttendanceSource interface {
	Items() []models.AttendanceRecord
}

// ChangeNotifier is anything that reports collection changes
type ChangeNotifier interface {
	Subscribe(fn func())
}

// PolicySource supplies the attendance policy in effect
type PolicySource interface {
	Policy() AttendancePolicy
}

// AfterFunc schedules f after d and returns a function that cancels it.
// It matches time.AfterFunc and lets tests drive the clock.
type AfterFunc func(d time.Duration, f func()) (stop func() bool)

func realAfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// StatsConfig wires a StatsAggregator
type StatsConfig struct {
	Context    context.Context // used for the pending-requests call
	Inventory  InventorySource
	Incidents  IncidentSource
	Users      UserSource
	Attendance AttendanceSource
	Pending    repository.PendingRequestCounter // optional
	Policy     PolicySource                     // optional, defaults to DefaultAttendancePolicy
	Roles      []string                         // roles counted as employees
	Debounce   time.Duration
	Now        func() time.Time
	AfterFunc  AfterFunc
	Logger     *zap.SugaredLogger
}

// StatsAggregator recomputes the dashboard snapshot after the inputs have
// been quiet for the debounce window. Every Trigger bumps a generation;
// a timer carrying an older generation does nothing. At most one
// recomputation runs at a time and a timer firing during one is dropped.
type StatsAggregator struct {
	cfg StatsConfig
	log *zap.SugaredLogger

	mu         sync.Mutex
	generation uint64
	stopTimer  func() bool
	inFlight   bool
	stopped    bool
	runs       atomic.Uint64

	snapshot atomic.Pointer[models.DashboardStats]

	listenersMu sync.Mutex
	listeners   []func(prev, next *models.DashboardStats)
}

// NewStatsAggregator fills config defaults and creates the aggregator
func NewStatsAggregator(cfg StatsConfig) *StatsAggregator {
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.AfterFunc == nil {
		cfg.AfterFunc = realAfterFunc
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}
	return &StatsAggregator{cfg: cfg, log: cfg.Logger.With("component", "stats")}
}

// Watch schedules a recomputation whenever any source changes
func (a *StatsAggregator) Watch(sources ...ChangeNotifier) {
	for _, s := range sources {
		s.Subscribe(a.Trigger)
	}
}

// OnSnapshot registers fn to receive every published snapshot
func (a *StatsAggregator) OnSnapshot(fn func(prev, next *models.DashboardStats)) {
	a.listenersMu.Lock()
	a.listeners = append(a.listeners, fn)
	a.listenersMu.Unlock()
}

// Trigger (re)starts the debounce window
func (a *StatsAggregator) Trigger() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return
	}
	if a.stopTimer != nil {
		a.stopTimer()
	}
	a.generation++
	gen := a.generation
	a.stopTimer = a.cfg.AfterFunc(a.cfg.Debounce, func() { a.fire(gen) })
}

// Stop cancels any pending recomputation; later Triggers are ignored.
func (a *StatsAggregator) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopped = true
	if a.stopTimer != nil {
		a.stopTimer()
		a.stopTimer = nil
	}
}

// Snapshot returns the latest published stats, nil before the first run
func (a *StatsAggregator) Snapshot() *models.DashboardStats {
	return a.snapshot.Load()
}

// Runs is the number of recomputations executed so far
func (a *StatsAggregator) Runs() uint64 {
	return a.runs.Load()
}

func (a *StatsAggregator) fire(gen uint64) {
	a.mu.Lock()
	if a.stopped || gen != a.generation {
		a.mu.Unlock()
		return
	}
	if a.inFlight {
		a.mu.Unlock()
		a.log.Debugw("recomputation in flight, trigger dropped", "generation", gen)
		return
	}
	a.inFlight = true
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.inFlight = false
		a.mu.Unlock()
	}()

	a.runs.Add(1)
	a.publish(a.compute(a.cfg.Context, gen))
}

// publish swaps next in unless a newer generation is already there
func (a *StatsAggregator) publish(next *models.DashboardStats) {
	for {
		prev := a.snapshot.Load()
		if prev != nil && prev.Generation > next.Generation {
			a.log.Debugw("stale snapshot discarded", "generation", next.Generation, "current", prev.Generation)
			return
		}
		if a.snapshot.CompareAndSwap(prev, next) {
			a.notify(prev, next)
			return
		}
	}
}

func (a *StatsAggregator) notify(prev, next *models.DashboardStats) {
	a.listenersMu.Lock()
	listeners := append([]func(prev, next *models.DashboardStats){}, a.listeners...)
	a.listenersMu.Unlock()

	for _, fn := range listeners {
		fn(prev, next)
	}
}

func (a *StatsAggregator) compute(ctx context.Context, gen uint64) *models.DashboardStats {
	now := a.cfg.Now()
	policy := DefaultAttendancePolicy()
	if a.cfg.Policy != nil {
		policy = a.cfg.Policy.Policy()
	}

	stats := &models.DashboardStats{Generation: gen, ComputedAt: now}
	if a.cfg.Attendance != nil {
		stats.Attendance = SummarizeAttendance(a.cfg.Attendance.Items(), now, policy)
	}
	if a.cfg.Users != nil {
		stats.Employees = SummarizeUsers(a.cfg.Users.Items(), a.cfg.Roles)
	}
	if a.cfg.Inventory != nil {
		stats.Inventory = SummarizeInventory(a.cfg.Inventory.Items())
	}
	if a.cfg.Incidents != nil {
		stats.Incidents = SummarizeIncidents(a.cfg.Incidents.Items(), now)
	}

	if a.cfg.Pending != nil {
		n, err := a.cfg.Pending.CountPending(ctx)
		if err != nil {
			a.log.Warnw("pending requests unavailable, reporting 0", "error", err)
		} else {
			stats.PendingRequests = n
		}
	}

	a.log.Debugw("snapshot computed", "generation", gen)
	return stats
}

// SummarizeAttendance counts today's records (local date of now) and their derived statuses.
func SummarizeAttendance(records []models.AttendanceRecord, now time.Time, policy AttendancePolicy) models.AttendanceStats {
	today := now.Format("2006-01-02")
	out := models.AttendanceStats{ByStatus: map[models.AttendanceStatus]int{}}
	for _, rec := range records {
		day := rec.Date
		if len(day) > 10 {
			day = day[:10]
		}
		if day == "" && rec.ClockIn != nil && !rec.ClockIn.IsZero() {
			day = rec.ClockIn.Format("2006-01-02")
		}
		if day != today {
			continue
		}
		out.Today++
		out.ByStatus[ClassifyStatus(rec, now, policy)]++
	}
	return out
}

// SummarizeUsers counts users overall and per configured employee role.
// Role matching ignores case and surrounding blanks.
func SummarizeUsers(users []models.User, roles []string) models.EmployeeStats {
	out := models.EmployeeStats{TotalUsers: len(users), ByRole: map[string]int{}}
	canonical := make(map[string]string, len(roles))
	for _, r := range roles {
		canonical[strings.ToLower(strings.TrimSpace(r))] = r
		out.ByRole[r] = 0
	}
	for _, u := range users {
		if u.IsActive {
			out.ActiveUsers++
		}
		if role, ok := canonical[strings.ToLower(strings.TrimSpace(u.Role))]; ok {
			out.ByRole[role]++
			out.Employees++
		}
	}
	return out
}

func SummarizeInventory(items []models.InventoryItem) models.InventoryStats {
	out := models.InventoryStats{Total: len(items)}
	for _, it := range items {
		switch ClassifyStock(it) {
		case models.StockOut:
			out.OutOfStock++
		case models.StockLow:
			out.LowStock++
		default:
			out.InStock++
		}
	}
	return out
}

// SummarizeIncidents partitions by status and counts reports dated after now minus 7 days.
func SummarizeIncidents(reports []models.IncidentReport, now time.Time) models.IncidentStats {
	weekAgo := now.AddDate(0, 0, -7)
	out := models.IncidentStats{Total: len(reports)}
	for _, r := range reports {
		switch r.Status {
		case models.IncidentPending:
			out.Pending++
		case models.IncidentOngoing:
			out.Ongoing++
		case models.IncidentResolved:
			out.Resolved++
		default:
			out.Other++
		}
		if !r.Date.IsZero() && r.Date.After(weekAgo) {
			out.ThisWeek++
		}
	}
	return out
}
