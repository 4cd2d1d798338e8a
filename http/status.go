package http

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/fuad-daoud/disma/logger/dlog"
	"github.com/fuad-daoud/disma/reconcile"
)

// Status holds the outcome of the latest drift check and serves it over HTTP.
//
//	200 the guild matches its document
//	409 changes are pending
//	503 no check finished yet, or the last one failed
type Status struct {
	mu     sync.RWMutex
	report *reconcile.DriftReport
	err    error
}

func NewStatus() *Status {
	return &Status{}
}

// Record matches the DriftWatcher callback signature.
func (s *Status) Record(report reconcile.DriftReport, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.report = &report
	s.err = err
}

type statusBody struct {
	State     string    `json:"state"`
	RunID     string    `json:"run_id,omitempty"`
	Guild     string    `json:"guild,omitempty"`
	CheckedAt time.Time `json:"checked_at,omitempty"`
	Changes   []string  `json:"changes,omitempty"`
	Error     string    `json:"error,omitempty"`
}

func (s *Status) snapshot() (int, statusBody) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.report == nil {
		return http.StatusServiceUnavailable, statusBody{State: "pending"}
	}
	body := statusBody{RunID: s.report.RunID, Guild: s.report.GuildID, CheckedAt: s.report.CheckedAt}
	switch {
	case s.err != nil:
		body.State = "error"
		body.Error = s.err.Error()
		return http.StatusServiceUnavailable, body
	case s.report.Drifted():
		body.State = "drifted"
		for _, change := range s.report.Changes {
			body.Changes = append(body.Changes, change.String())
		}
		return http.StatusConflict, body
	default:
		body.State = "in_sync"
		return http.StatusOK, body
	}
}

func (s *Status) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logRequest(r)
	code, body := s.snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		dlog.Warn("Could not write status", "error", err)
	}
}

func NewServer(addr string, status *Status) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/status", status)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		logRequest(r)
		http.NotFound(w, r)
	})
	return &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
}

func logRequest(r *http.Request) {
	dlog.Debug("Got request", "method", r.Method, "uri", r.RequestURI)
}
