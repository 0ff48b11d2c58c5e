package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

const (
	defaultRunLimit = 10
	maxRunLimit     = 100
)

type summaryItem struct {
	Series string   `json:"series"`
	Title  string   `json:"title"`
	Date   *string  `json:"date"`
	Value  *float64 `json:"value"`
}

type runItem struct {
	Timestamp        time.Time `json:"timestamp"`
	Status           string    `json:"status"`
	Records          int       `json:"records"`
	ErrorMessage     string    `json:"errorMessage,omitempty"`
	ExecutionSeconds float64   `json:"executionTimeSeconds"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	values, err := s.store.LatestValues(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "querying latest values", err)
		return
	}

	items := make([]summaryItem, 0, len(values))
	for _, v := range values {
		item := summaryItem{Series: v.Series, Title: v.Title, Value: v.Value}
		if v.Date != nil {
			d := v.Date.Format("2006-01-02")
			item.Date = &d
		}
		items = append(items, item)
	}
	s.writeJSON(w, items)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxRunLimit {
			s.writeError(w, http.StatusBadRequest, "limit must be an integer between 1 and 100", nil)
			return
		}
		limit = n
	}

	runs, err := s.store.RecentRuns(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "querying recent runs", err)
		return
	}

	items := make([]runItem, 0, len(runs))
	for _, run := range runs {
		items = append(items, runItem{
			Timestamp:        run.RunTimestamp,
			Status:           run.Status,
			Records:          run.Records,
			ErrorMessage:     run.ErrorMessage,
			ExecutionSeconds: run.ExecutionSeconds,
		})
	}
	s.writeJSON(w, items)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response", "error", err)
	}
}

// writeError logs the internal error and returns a sanitized JSON error to
// the client.
func (s *Server) writeError(w http.ResponseWriter, status int, msg string, err error) {
	if err != nil {
		s.logger.Error(msg, "error", err, "status", status)
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
