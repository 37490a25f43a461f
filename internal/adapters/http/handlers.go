package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"signup/internal/adapters/http/middleware"
	"signup/internal/application/orchestrators"
	"signup/internal/domain/activity"
)

// perfWindow bounds the entries /debug/perf aggregates.
const perfWindow = 15 * time.Minute

// Response details for orchestrator errors.
const (
	detailIncorrectLogin  = "Incorrect email or password"
	detailSignUpForbidden = "Students can only sign up themselves"
	detailUnregForbidden  = "Students can only unregister themselves"
	detailNotFound        = "Activity not found"
	detailAlreadySignedUp = "Student is already signed up"
	detailActivityFull    = "Activity is full"
	detailNotSignedUp     = "Student is not signed up for this activity"
	detailInternal        = "Internal server error"
)

// validationIssue mirrors the 422 detail shape API clients already expect.
type validationIssue struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func writeValidation(w http.ResponseWriter, loc []string, msg string) {
	middleware.WriteJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"detail": []validationIssue{{Loc: loc, Msg: msg, Type: "value_error"}},
	})
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal_error", "error", err.Error(), "path", r.URL.Path)
	middleware.WriteDetail(w, http.StatusInternalServerError, detailInternal)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// activityName returns the decoded {name} path parameter. chi routes on the
// escaped path when one exists, so the parameter may still be escaped.
func activityName(r *http.Request) string {
	name := chi.URLParam(r, "name")
	if r.URL.RawPath == "" {
		return name
	}
	if decoded, err := url.PathUnescape(name); err == nil {
		return decoded
	}
	return name
}

// handleHealth handles GET /health
func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handlePerf handles GET /debug/perf
func (s *server) handlePerf(w http.ResponseWriter, _ *http.Request) {
	if s.deps.Collector == nil {
		middleware.WriteDetail(w, http.StatusNotFound, "Performance collection disabled")
		return
	}
	snap := s.deps.Collector.Snapshot(time.Now().Add(-perfWindow), 10)
	middleware.WriteJSON(w, http.StatusOK, snap)
}

// loginRequest uses pointers so a missing field is told apart from an empty one.
type loginRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Email       string `json:"email"`
	Role        string `json:"role"`
}

// handleLogin handles POST /login
func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := strictDecode(r, &req); err != nil {
		writeValidation(w, []string{"body"}, "Invalid login body")
		return
	}
	if req.Email == nil || req.Password == nil {
		writeValidation(w, []string{"body"}, "email and password are required")
		return
	}

	result, err := orchestrators.ExecuteLogin(r.Context(),
		orchestrators.LoginInput{Email: *req.Email, Password: *req.Password},
		orchestrators.LoginDeps{AccountStore: s.deps.Accounts},
	)
	if errors.Is(err, orchestrators.ErrInvalidCredentials) {
		w.Header().Set("WWW-Authenticate", "Bearer")
		middleware.WriteDetail(w, http.StatusUnauthorized, detailIncorrectLogin)
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}

	token, err := s.deps.Tokens.Issue(result.Email, result.Role)
	if err != nil {
		internalError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		Email:       result.Email,
		Role:        result.Role,
	})
}

type activityBody struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// handleListActivities handles GET /activities
// The response is a JSON object keyed by name, written in catalog order.
func (s *server) handleListActivities(w http.ResponseWriter, r *http.Request) {
	activities, err := s.deps.Activities.List(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}
	body, err := encodeActivities(activities)
	if err != nil {
		internalError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func encodeActivities(activities []activity.Activity) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, a := range activities {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(a.Name)
		if err != nil {
			return nil, err
		}
		participants := a.Participants
		if participants == nil {
			participants = []string{}
		}
		value, err := json.Marshal(activityBody{
			Description:     a.Description,
			Schedule:        a.Schedule,
			MaxParticipants: a.MaxParticipants,
			Participants:    participants,
		})
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// participantEmail returns the required ?email= query value.
func participantEmail(w http.ResponseWriter, r *http.Request) (string, bool) {
	q := r.URL.Query()
	if !q.Has("email") {
		writeValidation(w, []string{"query", "email"}, "Field required")
		return "", false
	}
	return q.Get("email"), true
}

// handleSignup handles POST /activities/{name}/signup?email=
func (s *server) handleSignup(w http.ResponseWriter, r *http.Request) {
	email, ok := participantEmail(w, r)
	if !ok {
		return
	}
	id, _ := middleware.GetIdentity(r.Context())

	msg, err := orchestrators.ExecuteSignUpParticipant(r.Context(),
		orchestrators.SignUpParticipantInput{
			ActorEmail:   id.Email,
			ActorRole:    id.Role,
			ActivityName: activityName(r),
			Email:        email,
		},
		orchestrators.SignUpParticipantDeps{ActivityStore: s.deps.Activities, Notify: s.deps.Notify},
	)
	if err != nil {
		s.writeRosterError(w, r, err)
		return
	}
	s.metrics.rosterChanges.WithLabelValues("signup").Inc()
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"message": msg})
}

// handleUnregister handles DELETE /activities/{name}/unregister?email=
func (s *server) handleUnregister(w http.ResponseWriter, r *http.Request) {
	email, ok := participantEmail(w, r)
	if !ok {
		return
	}
	id, _ := middleware.GetIdentity(r.Context())

	msg, err := orchestrators.ExecuteUnregisterParticipant(r.Context(),
		orchestrators.UnregisterParticipantInput{
			ActorEmail:   id.Email,
			ActorRole:    id.Role,
			ActivityName: activityName(r),
			Email:        email,
		},
		orchestrators.UnregisterParticipantDeps{ActivityStore: s.deps.Activities},
	)
	if err != nil {
		s.writeRosterError(w, r, err)
		return
	}
	s.metrics.rosterChanges.WithLabelValues("unregister").Inc()
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"message": msg})
}

func (s *server) writeRosterError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, orchestrators.ErrSignUpForbidden):
		middleware.WriteDetail(w, http.StatusForbidden, detailSignUpForbidden)
	case errors.Is(err, orchestrators.ErrUnregisterForbidden):
		middleware.WriteDetail(w, http.StatusForbidden, detailUnregForbidden)
	case errors.Is(err, activity.ErrActivityNotFound):
		middleware.WriteDetail(w, http.StatusNotFound, detailNotFound)
	case errors.Is(err, activity.ErrAlreadySignedUp):
		middleware.WriteDetail(w, http.StatusBadRequest, detailAlreadySignedUp)
	case errors.Is(err, activity.ErrActivityFull):
		middleware.WriteDetail(w, http.StatusBadRequest, detailActivityFull)
	case errors.Is(err, activity.ErrNotSignedUp):
		middleware.WriteDetail(w, http.StatusBadRequest, detailNotSignedUp)
	case errors.Is(err, activity.ErrEmptyParticipant):
		writeValidation(w, []string{"query", "email"}, "Email cannot be empty")
	default:
		internalError(w, r, err)
	}
}
