// Package models contains data structures for the application
package models

import (
	"encoding/json"
)

// Envelope is the backend's response wrapper
type Envelope struct {
	Data    json.RawMessage     `json:"data"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// Profile is the cached admin profile returned on login
type Profile struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// InventoryItem represents one equipment/inventory line
type InventoryItem struct {
	ID        ID         `json:"id"`
	Name      string     `json:"name"`
	Quantity  int        `json:"quantity"`
	Threshold int        `json:"threshold"`
	Category  string     `json:"category"`
	Unit      string     `json:"unit,omitempty"`
	CreatedAt *Timestamp `json:"created_at,omitempty"`
	UpdatedAt *Timestamp `json:"updated_at,omitempty"`
}

func (i InventoryItem) Key() string { return string(i.ID) }

// IncidentAction is one entry of an incident's append-only history
type IncidentAction struct {
	Timestamp Timestamp `json:"timestamp"`
	Text      string    `json:"text"`
	Actor     string    `json:"actor"`
}

// IncidentReport represents a safeguarding report
type IncidentReport struct {
	ID          ID               `json:"id"`
	Title       string           `json:"title"`
	Location    string           `json:"location"`
	Date        Timestamp        `json:"date"`
	Reporter    string           `json:"reporter"`
	Status      IncidentStatus   `json:"status"`
	Priority    Priority         `json:"priority"`
	Description string           `json:"description"`
	Media       []string         `json:"media,omitempty"`
	Latitude    *float64         `json:"latitude,omitempty"`
	Longitude   *float64         `json:"longitude,omitempty"`
	Actions     []IncidentAction `json:"actions,omitempty"`
}

func (r IncidentReport) Key() string { return string(r.ID) }

// User represents an employee account
type User struct {
	ID         ID         `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email,omitempty"`
	Role       string     `json:"role"`
	Department string     `json:"department,omitempty"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  *Timestamp `json:"created_at,omitempty"`
	UpdatedAt  *Timestamp `json:"updated_at,omitempty"`
}

func (u User) Key() string { return string(u.ID) }

// AttendanceRecord represents one subject's attendance for a day
type AttendanceRecord struct {
	ID       ID         `json:"id"`
	UserID   ID         `json:"user_id"`
	Subject  string     `json:"name"`
	Date     string     `json:"date"` // YYYY-MM-DD
	ClockIn  *Timestamp `json:"clock_in,omitempty"`
	ClockOut *Timestamp `json:"clock_out,omitempty"`
	Status   string     `json:"status,omitempty"`
}

func (a AttendanceRecord) Key() string { return string(a.ID) }

// WorkplaceLocation represents a geofenced place employees clock in at
type WorkplaceLocation struct {
	ID        ID      `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Radius    float64 `json:"radius"` // meters
	IsActive  bool    `json:"is_active"`
}

func (w WorkplaceLocation) Key() string { return string(w.ID) }

// EmployeeAssignment links a user to a workplace location.
// One active assignment per user is expected but not enforced.
type EmployeeAssignment struct {
	ID                  ID   `json:"id"`
	UserID              ID   `json:"user_id"`
	WorkplaceLocationID ID   `json:"workplace_location_id"`
	IsActive            bool `json:"is_active"`
}

func (e EmployeeAssignment) Key() string { return string(e.ID) }

// WorkHours is the backend's attendance policy configuration
type WorkHours struct {
	WorkStart      string `json:"work_start"` // HH:MM:SS
	GraceMinutes   int    `json:"grace_minutes"`
	EveningCutoff  string `json:"evening_cutoff"` // HH:MM:SS
	MinimumMinutes int    `json:"minimum_minutes"`
}
