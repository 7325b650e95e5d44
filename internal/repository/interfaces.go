// Package repository defines repository interfaces for data access
package repository

import (
	"context"

	"epol-dashboard/internal/models"
)

// Requester is the subset of apiclient.Client the repositories need
type Requester interface {
	Do(ctx context.Context, method, endpoint string, body, out any) error
}

// CollectionRepository is CRUD access to one backend resource collection
type CollectionRepository[T any] interface {
	// List fetches the full collection
	List(ctx context.Context) ([]T, error)
	// Create posts input and returns the stored entity
	Create(ctx context.Context, input any) (T, error)
	// Update sends patch for id and returns the stored entity
	Update(ctx context.Context, id string, patch any) (T, error)
	// Delete removes id on the backend
	Delete(ctx context.Context, id string) error
}

// IncidentActionRepository covers the incident action sub-resources
type IncidentActionRepository interface {
	MarkResolved(ctx context.Context, id string) error
	AddAction(ctx context.Context, id, text string) error
}

// PendingRequestCounter reports the number of requests awaiting approval
type PendingRequestCounter interface {
	CountPending(ctx context.Context) (int, error)
}

// WorkHoursRepository reads the attendance policy configured on the backend
type WorkHoursRepository interface {
	Get(ctx context.Context) (*models.WorkHours, error)
}
