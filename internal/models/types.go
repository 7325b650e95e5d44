package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ID is an entity identifier. The backend sends either numbers or strings.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", b, err)
	}
	*id = ID(n.String())
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp accepts the handful of formats the backend emits.
// Values without an offset are read in the local zone.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) *Timestamp {
	return &Timestamp{Time: t}
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	// null decodes to ""
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339))
}

// ParseTimestamp parses raw using the first matching backend layout.
func ParseTimestamp(raw string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if parsed, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}

// IncidentStatus is the canonical incident lifecycle label
type IncidentStatus string

const (
	IncidentPending  IncidentStatus = "Pending"
	IncidentOngoing  IncidentStatus = "Ongoing"
	IncidentResolved IncidentStatus = "Resolved"
)

// NormalizeIncidentStatus maps the labels used across intake paths onto
// Pending/Ongoing/Resolved. Unknown labels come back unchanged.
func NormalizeIncidentStatus(label string) IncidentStatus {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "pending", "open", "new":
		return IncidentPending
	case "ongoing", "in progress", "in_progress", "in-progress":
		return IncidentOngoing
	case "resolved", "closed":
		return IncidentResolved
	default:
		return IncidentStatus(strings.TrimSpace(label))
	}
}

func (s *IncidentStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*s = NormalizeIncidentStatus(raw)
	return nil
}

// Known reports whether s is one of the canonical labels
func (s IncidentStatus) Known() bool {
	return s == IncidentPending || s == IncidentOngoing || s == IncidentResolved
}

type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

// User roles seen in the admin dashboard
const (
	RoleAdmin      = "Admin"
	RoleOfficer    = "Officer"
	RoleEPOL       = "EPOL"
	RoleTeamLeader = "Team Leader"
)

// StockStatus classifies an inventory item against its threshold
type StockStatus string

const (
	StockOut StockStatus = "out_of_stock"
	StockLow StockStatus = "low_stock"
	StockIn  StockStatus = "in_stock"
)

// AttendanceStatus is the derived status of one attendance record
type AttendanceStatus string

const (
	AttendanceAbsent       AttendanceStatus = "Absent"
	AttendanceOnDuty       AttendanceStatus = "On Duty"
	AttendanceStillWorking AttendanceStatus = "Still Working"
	AttendanceUndertime    AttendanceStatus = "Undertime"
	AttendanceLate         AttendanceStatus = "Late"
	AttendancePresent      AttendanceStatus = "Present"
)
