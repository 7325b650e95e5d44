package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"epol-dashboard/internal/models"
)

// Backend resource paths
const (
	PathInventoryItems      = "/inventory-items"
	PathIncidentReports     = "/incident-reports"
	PathUsers               = "/users"
	PathAttendanceRecords   = "/attendance/records"
	PathWorkplaceLocations  = "/workplace-locations"
	PathEmployeeAssignments = "/employee-assignments"
	PathWorkHours           = "/work-hours"
)

// REST implements CollectionRepository for one resource path
type REST[T any] struct {
	client Requester
	path   string
}

// NewREST creates a repository for the collection at path
func NewREST[T any](client Requester, path string) *REST[T] {
	return &REST[T]{client: client, path: path}
}

func (r *REST[T]) itemPath(id string) string {
	return r.path + "/" + url.PathEscape(id)
}

func (r *REST[T]) List(ctx context.Context) ([]T, error) {
	var items []T
	if err := r.client.Do(ctx, http.MethodGet, r.path, nil, &items); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.path, err)
	}
	return items, nil
}

func (r *REST[T]) Create(ctx context.Context, input any) (T, error) {
	var created T
	if err := r.client.Do(ctx, http.MethodPost, r.path, input, &created); err != nil {
		return created, fmt.Errorf("failed to create in %s: %w", r.path, err)
	}
	return created, nil
}

func (r *REST[T]) Update(ctx context.Context, id string, patch any) (T, error) {
	var updated T
	if err := r.client.Do(ctx, http.MethodPut, r.itemPath(id), patch, &updated); err != nil {
		return updated, fmt.Errorf("failed to update %s: %w", r.itemPath(id), err)
	}
	return updated, nil
}

func (r *REST[T]) Delete(ctx context.Context, id string) error {
	if err := r.client.Do(ctx, http.MethodDelete, r.itemPath(id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete %s: %w", r.itemPath(id), err)
	}
	return nil
}

// IncidentActions implements IncidentActionRepository
type IncidentActions struct {
	client Requester
}

func NewIncidentActions(client Requester) *IncidentActions {
	return &IncidentActions{client: client}
}

func (r *IncidentActions) MarkResolved(ctx context.Context, id string) error {
	endpoint := fmt.Sprintf("%s/%s/mark-resolved", PathIncidentReports, url.PathEscape(id))
	if err := r.client.Do(ctx, http.MethodPost, endpoint, nil, nil); err != nil {
		return fmt.Errorf("failed to resolve incident %s: %w", id, err)
	}
	return nil
}

func (r *IncidentActions) AddAction(ctx context.Context, id, text string) error {
	endpoint := fmt.Sprintf("%s/%s/actions", PathIncidentReports, url.PathEscape(id))
	body := map[string]string{"text": text}
	if err := r.client.Do(ctx, http.MethodPost, endpoint, body, nil); err != nil {
		return fmt.Errorf("failed to add action to incident %s: %w", id, err)
	}
	return nil
}

// PendingRequests implements PendingRequestCounter
type PendingRequests struct {
	client   Requester
	endpoint string
}

func NewPendingRequests(client Requester, endpoint string) *PendingRequests {
	return &PendingRequests{client: client, endpoint: endpoint}
}

// CountPending accepts a list, a bare number or an object with a count field.
func (r *PendingRequests) CountPending(ctx context.Context) (int, error) {
	var raw json.RawMessage
	if err := r.client.Do(ctx, http.MethodGet, r.endpoint, nil, &raw); err != nil {
		return 0, fmt.Errorf("failed to count pending requests: %w", err)
	}
	if len(raw) == 0 {
		return 0, nil
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		return len(list), nil
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var obj struct {
		Count *int `json:"count"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Count != nil {
		return *obj.Count, nil
	}
	return 0, fmt.Errorf("failed to count pending requests: unexpected payload %s", raw)
}

// WorkHours implements WorkHoursRepository
type WorkHours struct {
	client Requester
}

func NewWorkHours(client Requester) *WorkHours {
	return &WorkHours{client: client}
}

func (r *WorkHours) Get(ctx context.Context) (*models.WorkHours, error) {
	var wh models.WorkHours
	if err := r.client.Do(ctx, http.MethodGet, PathWorkHours, nil, &wh); err != nil {
		return nil, fmt.Errorf("failed to get work hours: %w", err)
	}
	return &wh, nil
}
