package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"epol-dashboard/internal/session"
)

type item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestDoAttachesBearerAndDecodesEnvelope(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing X-Request-ID")
		}
		w.Write([]byte(`{"data":[{"id":"1","name":"Radio"}],"message":"ok"}`))
	})

	sess := session.New()
	sess.Login("secret", nil)
	c := New(srv.URL, sess)

	var items []item
	if err := c.Get(context.Background(), "/inventory-items", &items); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(items) != 1 || items[0].Name != "Radio" {
		t.Errorf("items = %+v", items)
	}
}

func TestDoWithoutTokenFailsFast(t *testing.T) {
	srv, hits := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})
	c := New(srv.URL, session.New())

	err := c.Get(context.Background(), "/users", nil)
	if !errors.Is(err, ErrAuthenticationRequired) {
		t.Fatalf("err = %v, want ErrAuthenticationRequired", err)
	}
	if atomic.LoadInt32(hits) != 0 {
		t.Errorf("server hit %d times, want 0", *hits)
	}
}

func TestUnauthorizedExpiresSessionOnce(t *testing.T) {
	srv, hits := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Unauthenticated."}`))
	})

	sess := session.New()
	sess.Login("stale", nil)
	redirects := 0
	sess.OnChange(func(ev session.Event) {
		if ev.Reason == session.ReasonExpired {
			redirects++
		}
	})
	c := New(srv.URL, sess)

	if err := c.Get(context.Background(), "/incident-reports", nil); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("err = %v, want ErrSessionExpired", err)
	}
	if sess.Authenticated() {
		t.Error("token should be cleared after 401")
	}

	if err := c.Get(context.Background(), "/incident-reports", nil); !errors.Is(err, ErrAuthenticationRequired) {
		t.Fatalf("second err = %v, want ErrAuthenticationRequired", err)
	}
	if got := atomic.LoadInt32(hits); got != 1 {
		t.Errorf("server hit %d times, want 1", got)
	}
	if redirects != 1 {
		t.Errorf("redirects = %d, want 1", redirects)
	}
}

func TestExpiredJWTFailsWithoutNetwork(t *testing.T) {
	srv, hits := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(-time.Minute).Unix(),
	}).SignedString([]byte("k"))
	if err != nil {
		t.Fatal(err)
	}
	sess := session.New()
	sess.Login(tok, nil)
	c := New(srv.URL, sess)

	if err := c.Get(context.Background(), "/users", nil); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("err = %v, want ErrSessionExpired", err)
	}
	if sess.Authenticated() {
		t.Error("expired token should be dropped")
	}
	if atomic.LoadInt32(hits) != 0 {
		t.Error("expired token should not reach the backend")
	}
}

func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    error
		message string
	}{
		{
			name:    "validation",
			status:  http.StatusUnprocessableEntity,
			body:    `{"message":"The name field is required.","errors":{"name":["The name field is required."]}}`,
			want:    ErrValidationFailed,
			message: "The name field is required.",
		},
		{
			name:    "server error with message",
			status:  http.StatusInternalServerError,
			body:    `{"message":"boom"}`,
			want:    ErrRequestFailed,
			message: "boom",
		},
		{
			name:    "not found without body",
			status:  http.StatusNotFound,
			body:    ``,
			want:    ErrRequestFailed,
			message: "404 Not Found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			sess := session.New()
			sess.Login("t", nil)
			c := New(srv.URL, sess)

			err := c.Post(context.Background(), "/inventory-items", map[string]string{"name": ""}, nil)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if got := Message(err); got != tt.message {
				t.Errorf("Message() = %q, want %q", got, tt.message)
			}
			if !sess.Authenticated() {
				t.Error("non-401 errors must keep the session")
			}
		})
	}
}

func TestNetworkFailureIsRequestFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	sess := session.New()
	sess.Login("t", nil)
	c := New(url, sess)

	err := c.Get(context.Background(), "/users", nil)
	if !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("err = %v, want ErrRequestFailed", err)
	}
}

func TestLogin(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/login" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("login must not send a bearer token")
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "admin@epol.test" {
			t.Errorf("email = %q", body["email"])
		}
		w.Write([]byte(`{"data":{"token":"fresh","user":{"id":1,"name":"Admin","role":"Admin"}}}`))
	})

	sess := session.New()
	c := New(srv.URL, sess)
	if err := c.Login(context.Background(), "admin@epol.test", "pw"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if tok, _ := sess.Token(); tok != "fresh" {
		t.Errorf("token = %q", tok)
	}
	if p := sess.Profile(); p == nil || p.ID != "1" {
		t.Errorf("profile = %+v", p)
	}
}

func TestRequestIDsAreUnique(t *testing.T) {
	ids := NewRequestIDs(1)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := ids.Next()
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}

	// node ids outside snowflake's range fall back to ksuid
	if got := NewRequestIDs(-1).Next(); len(got) != 27 {
		t.Errorf("ksuid fallback = %q", got)
	}
}
