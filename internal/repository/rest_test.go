package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"epol-dashboard/internal/models"
)

type call struct {
	method   string
	endpoint string
	body     any
}

// fakeRequester replies with canned data per endpoint
type fakeRequester struct {
	calls   []call
	replies map[string]string
	err     error
}

func (f *fakeRequester) Do(ctx context.Context, method, endpoint string, body, out any) error {
	f.calls = append(f.calls, call{method, endpoint, body})
	if f.err != nil {
		return f.err
	}
	if out == nil {
		return nil
	}
	if reply, ok := f.replies[method+" "+endpoint]; ok {
		return json.Unmarshal([]byte(reply), out)
	}
	return nil
}

var _ Requester = (*fakeRequester)(nil)
var _ CollectionRepository[models.User] = (*REST[models.User])(nil)

func TestRESTList(t *testing.T) {
	f := &fakeRequester{replies: map[string]string{
		"GET /inventory-items": `[{"id":1,"name":"Radio","quantity":3,"threshold":5}]`,
	}}
	repo := NewREST[models.InventoryItem](f, PathInventoryItems)

	items, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(items) != 1 || items[0].Key() != "1" || items[0].Quantity != 3 {
		t.Errorf("items = %+v", items)
	}
}

func TestRESTMutationsUseItemPaths(t *testing.T) {
	f := &fakeRequester{}
	repo := NewREST[models.User](f, PathUsers)
	ctx := context.Background()

	repo.Create(ctx, map[string]string{"name": "Ana"})
	repo.Update(ctx, "u 1", map[string]bool{"is_active": false})
	repo.Delete(ctx, "u 1")

	want := []string{"POST /users", "PUT /users/u%201", "DELETE /users/u%201"}
	for i, w := range want {
		if got := f.calls[i].method + " " + f.calls[i].endpoint; got != w {
			t.Errorf("call %d = %q, want %q", i, got, w)
		}
	}
}

func TestRESTWrapsErrors(t *testing.T) {
	sentinel := errors.New("backend down")
	repo := NewREST[models.User](&fakeRequester{err: sentinel}, PathUsers)

	if _, err := repo.List(context.Background()); !errors.Is(err, sentinel) {
		t.Errorf("List() error = %v, want wrapped sentinel", err)
	}
}

func TestIncidentActions(t *testing.T) {
	f := &fakeRequester{}
	r := NewIncidentActions(f)
	ctx := context.Background()

	if err := r.MarkResolved(ctx, "9"); err != nil {
		t.Fatal(err)
	}
	if err := r.AddAction(ctx, "9", "Site visited"); err != nil {
		t.Fatal(err)
	}
	if f.calls[0].endpoint != "/incident-reports/9/mark-resolved" {
		t.Errorf("endpoint = %s", f.calls[0].endpoint)
	}
	if f.calls[1].endpoint != "/incident-reports/9/actions" {
		t.Errorf("endpoint = %s", f.calls[1].endpoint)
	}
}

func TestCountPendingPayloadShapes(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    int
		wantErr bool
	}{
		{"list", `[{"id":1},{"id":2}]`, 2, false},
		{"number", `5`, 5, false},
		{"object", `{"count": 3}`, 3, false},
		{"unexpected", `{"total": 3}`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeRequester{replies: map[string]string{"GET /pending": tt.reply}}
			got, err := NewPendingRequests(f, "/pending").CountPending(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("CountPending() = %d, want %d", got, tt.want)
			}
		})
	}
}
