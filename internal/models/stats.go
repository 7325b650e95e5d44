package models

import "time"

// DashboardStats is a derived snapshot. It is rebuilt wholesale on every
// recomputation and never persisted.
type DashboardStats struct {
	Generation uint64    `json:"generation"`
	ComputedAt time.Time `json:"computed_at"`

	Attendance AttendanceStats `json:"attendance"`
	Employees  EmployeeStats   `json:"employees"`
	Inventory  InventoryStats  `json:"inventory"`
	Incidents  IncidentStats   `json:"incidents"`

	PendingRequests int `json:"pending_requests"`
}

type AttendanceStats struct {
	Today    int                      `json:"today"`
	ByStatus map[AttendanceStatus]int `json:"by_status"`
}

type EmployeeStats struct {
	TotalUsers  int            `json:"total_users"`
	ActiveUsers int            `json:"active_users"`
	Employees   int            `json:"employees"` // users whose role is one of the employee roles
	ByRole      map[string]int `json:"by_role"`
}

type InventoryStats struct {
	Total      int `json:"total"`
	InStock    int `json:"in_stock"`
	LowStock   int `json:"low_stock"`
	OutOfStock int `json:"out_of_stock"`
}

type IncidentStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Ongoing  int `json:"ongoing"`
	Resolved int `json:"resolved"`
	Other    int `json:"other"`
	ThisWeek int `json:"this_week"`
}
