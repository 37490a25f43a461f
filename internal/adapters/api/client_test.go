package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"signup/internal/adapters/perf"
)

// newTestClient starts handler behind httptest and returns a client for it.
func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL+"/", opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// TestNew_RejectsRelativeURL requires an absolute http(s) base URL.
func TestNew_RejectsRelativeURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:8000", "/api", "ftp://host"} {
		if _, err := New(raw); err == nil {
			t.Errorf("New(%q) expected error", raw)
		}
	}
}

// TestClient_Login sends JSON credentials and returns the identity.
func TestClient_Login(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/login" {
			t.Errorf("request = %s %s, want POST /login", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("login must not send a bearer credential")
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "teacher@mergington.edu" || body["password"] != "password" {
			t.Errorf("body = %v", body)
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"access_token": "tok", "token_type": "bearer", "email": "teacher@mergington.edu", "role": "teacher",
		})
	})

	got, err := c.Login(context.Background(), "teacher@mergington.edu", "password")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	want := LoginResult{Token: "tok", Email: "teacher@mergington.edu", Role: "teacher"}
	if got != want {
		t.Errorf("Login = %+v, want %+v", got, want)
	}
}

// TestClient_LoginRejected surfaces the server detail.
func TestClient_LoginRejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect email or password"})
	})

	_, err := c.Login(context.Background(), "x@x.com", "nope")
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error %v is not *Error", err)
	}
	if apiErr.Kind != ServerRejection || apiErr.Status != http.StatusUnauthorized {
		t.Errorf("kind=%v status=%d", apiErr.Kind, apiErr.Status)
	}
	if got := Message(err, "Login failed", "Login failed. Please try again."); got != "Incorrect email or password" {
		t.Errorf("Message = %q", got)
	}
}

// TestClient_LoginIncompleteResponse treats a 200 without identity as a failure.
func TestClient_LoginIncompleteResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"access_token": "tok"})
	})
	if _, err := c.Login(context.Background(), "x@x.com", "pw"); !IsNetworkFailure(err) {
		t.Fatalf("error = %v, want network failure", err)
	}
}

// TestClient_ListActivities keeps server order and normalizes participants.
func TestClient_ListActivities(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/activities" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"Zumba": {"description": "Dance", "schedule": "Mon", "max_participants": 5, "participants": null},
			"Chess Club": {"description": "Chess", "schedule": "Fri", "max_participants": 10, "participants": ["a@x.com", "b@x.com"]},
			"Art Club": {"description": "Art", "schedule": "Thu", "max_participants": 15, "participants": []}
		}`))
	})

	got, err := c.ListActivities(context.Background())
	if err != nil {
		t.Fatalf("ListActivities: %v", err)
	}
	var names []string
	for _, a := range got {
		names = append(names, a.Name)
	}
	if want := []string{"Zumba", "Chess Club", "Art Club"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	if got[0].Participants == nil || len(got[0].Participants) != 0 {
		t.Errorf("null participants = %#v, want empty slice", got[0].Participants)
	}
	if got[1].MaxParticipants != 10 || !reflect.DeepEqual(got[1].Participants, []string{"a@x.com", "b@x.com"}) {
		t.Errorf("Chess Club = %+v", got[1])
	}
}

// TestClient_ListActivitiesMalformed reports an unreadable body as a network failure.
func TestClient_ListActivitiesMalformed(t *testing.T) {
	for _, body := range []string{`[]`, `{"A": 3}`, `not json`, `{"A": {}`} {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		})
		if _, err := c.ListActivities(context.Background()); !IsNetworkFailure(err) {
			t.Errorf("body %q: error = %v, want network failure", body, err)
		}
	}
}

// TestClient_RegisterParticipantEncoding escapes reserved characters in name and email.
func TestClient_RegisterParticipantEncoding(t *testing.T) {
	const name = "Art & Design/2 ?100%"
	const email = "a+b@x.com"

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if got := r.URL.EscapedPath(); got != "/activities/Art%20&%20Design%2F2%20%3F100%25/signup" {
			t.Errorf("escaped path = %q", got)
		}
		if got := r.URL.Query().Get("email"); got != email {
			t.Errorf("email query = %q, want %q", got, email)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing X-Request-ID")
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Signed up a+b@x.com for " + name})
	})

	msg, err := c.RegisterParticipant(context.Background(), name, email, "tok")
	if err != nil {
		t.Fatalf("RegisterParticipant: %v", err)
	}
	if msg != "Signed up a+b@x.com for "+name {
		t.Errorf("message = %q", msg)
	}
}

// TestClient_UnregisterParticipant uses DELETE and surfaces rejections.
func TestClient_UnregisterParticipant(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/activities/Chess Club/unregister" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Not registered"})
	})

	_, err := c.UnregisterParticipant(context.Background(), "Chess Club", "a@x.com", "tok")
	if detail, ok := Detail(err); !ok || detail != "Not registered" {
		t.Fatalf("Detail = %q, %v (err=%v)", detail, ok, err)
	}
}

// TestClient_DetailUnchanged keeps surrounding whitespace in the detail.
func TestClient_DetailUnchanged(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "  Activity is full \n"})
	})

	_, err := c.RegisterParticipant(context.Background(), "Chess Club", "a@x.com", "tok")
	if detail, ok := Detail(err); !ok || detail != "  Activity is full \n" {
		t.Fatalf("Detail = %q, %v (err=%v)", detail, ok, err)
	}
}

// TestMessage_Fallbacks chooses the right text for each failure shape.
func TestMessage_Fallbacks(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"detail", &Error{Kind: ServerRejection, Status: 400, Detail: "Activity is full"}, "Activity is full"},
		{"rejection without detail", &Error{Kind: ServerRejection, Status: 500}, "rejected"},
		{"network", &Error{Kind: NetworkFailure, Err: errors.New("refused")}, "network"},
		{"foreign error", errors.New("boom"), "rejected"},
	}
	for _, tt := range tests {
		if got := Message(tt.err, "rejected", "network"); got != tt.want {
			t.Errorf("%s: Message = %q, want %q", tt.name, got, tt.want)
		}
	}
}

// TestClient_StructuredDetailIgnored falls back when detail is not a string.
func TestClient_StructuredDetailIgnored(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":[{"loc":["query","email"],"msg":"field required"}]}`))
	})
	_, err := c.RegisterParticipant(context.Background(), "Chess Club", "", "tok")
	if _, ok := Detail(err); ok {
		t.Fatalf("structured detail should not be surfaced: %v", err)
	}
	if got := Message(err, "An error occurred", "net"); got != "An error occurred" {
		t.Errorf("Message = %q", got)
	}
}

// TestClient_NetworkFailure reports a closed server as a network failure and records the call.
func TestClient_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	collector := perf.NewCollector(10)
	c, err := New(base, WithCollector(collector), WithHTTPClient(&http.Client{Timeout: 2 * time.Second}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = c.ListActivities(context.Background())
	if !IsNetworkFailure(err) {
		t.Fatalf("error = %v, want network failure", err)
	}
	if !strings.Contains(err.Error(), "client.ListActivities") {
		t.Errorf("error %q lacks op", err.Error())
	}
	if collector.TotalRecorded() != 1 {
		t.Errorf("collector recorded %d calls, want 1", collector.TotalRecorded())
	}
}
