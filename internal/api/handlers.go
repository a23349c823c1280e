package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/campus-ai/tutor-core/internal/progress"
	"github.com/campus-ai/tutor-core/internal/report"
)

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Status: progress.StatusError, Message: message})
}

func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	defer s.collector.Time("get_course_outline", nil)()

	res, err := s.engine.CourseOutline()
	if err != nil {
		slog.Error("course outline failed", "error", err)
		writeError(w, http.StatusInternalServerError, "course outline unavailable")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	defer s.collector.Time("record_student_progress", nil)()

	var req progress.RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := s.engine.RecordProgress(req, s.session(r))
	if err != nil {
		slog.Error("record progress failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to record progress")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	defer s.collector.Time("get_progress_snapshot", nil)()

	res, err := s.engine.GetSnapshot(r.URL.Query().Get("student_id"), s.session(r))
	if err != nil {
		slog.Error("progress snapshot failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build snapshot")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	defer s.collector.Time("get_next_chapter_recommendation", nil)()

	res, err := s.engine.NextRecommendation(r.URL.Query().Get("student_id"), s.session(r))
	if err != nil {
		slog.Error("next recommendation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute recommendation")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	// The deferred stop fires after the summary is written, so a
	// summary never counts its own retrieval.
	defer s.collector.Time("get_metrics_summary", nil)()

	writeJSON(w, http.StatusOK, s.collector.Summary())
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if s.reportTokenHash == "" {
		writeError(w, http.StatusNotFound, "report export disabled")
		return
	}
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if token == "" || bcrypt.CompareHashAndPassword([]byte(s.reportTokenHash), []byte(token)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid report token")
		return
	}

	defer s.collector.Time("export_report", nil)()

	data, err := report.Bytes(s.engine, s.collector)
	if err != nil {
		slog.Error("report export failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build report")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="progress-report.xlsx"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
