package services

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"epol-dashboard/internal/models"
	"epol-dashboard/internal/session"
)

// AlertNotifier defines the interface for admin notifications
type AlertNotifier interface {
	SendNotification(message string)
}

// SnapshotAlerter compares consecutive snapshots and tells the admin chat
// when stock runs out, runs low or new incidents are reported this week.
type SnapshotAlerter struct {
	notifier AlertNotifier
	log      *zap.SugaredLogger
}

func NewSnapshotAlerter(notifier AlertNotifier, log *zap.SugaredLogger) *SnapshotAlerter {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &SnapshotAlerter{notifier: notifier, log: log}
}

// OnSnapshot has the signature StatsAggregator.OnSnapshot expects.
// The first snapshot only sets the baseline.
func (a *SnapshotAlerter) OnSnapshot(prev, next *models.DashboardStats) {
	if prev == nil || next == nil {
		return
	}
	message := SnapshotAlertMessage(prev, next)
	if message == "" {
		return
	}
	a.log.Infow("sending snapshot alert", "generation", next.Generation)
	a.notifier.SendNotification(message)
}

// SnapshotAlertMessage renders what got worse between prev and next, or "".
func SnapshotAlertMessage(prev, next *models.DashboardStats) string {
	var lines []string
	if d := next.Inventory.OutOfStock - prev.Inventory.OutOfStock; d > 0 {
		lines = append(lines, fmt.Sprintf("🔴 Out of stock: `%d` (+%d)", next.Inventory.OutOfStock, d))
	}
	if d := next.Inventory.LowStock - prev.Inventory.LowStock; d > 0 {
		lines = append(lines, fmt.Sprintf("🟠 Low stock: `%d` (+%d)", next.Inventory.LowStock, d))
	}
	if d := next.Incidents.ThisWeek - prev.Incidents.ThisWeek; d > 0 {
		lines = append(lines, fmt.Sprintf("🚨 New incidents this week: `%d` (+%d)", next.Incidents.ThisWeek, d))
	}
	if len(lines) == 0 {
		return ""
	}
	return "⚠️ *Dashboard alert*\n" + strings.Join(lines, "\n")
}

// SessionAlerter warns the admin chat when the backend session expires
type SessionAlerter struct {
	notifier AlertNotifier
}

func NewSessionAlerter(notifier AlertNotifier) *SessionAlerter {
	return &SessionAlerter{notifier: notifier}
}

// Attach subscribes to sess; only expiry is reported, not logout.
func (a *SessionAlerter) Attach(sess *session.Session) {
	sess.OnChange(func(ev session.Event) {
		if ev.Reason != session.ReasonExpired {
			return
		}
		a.notifier.SendNotification("🔒 *Session expired*\nDashboard data is cleared until the service logs in again.")
	})
}
