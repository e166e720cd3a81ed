package httpapi

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/PoornimaChowdary560/email-classifier-backend/internal/core"
	"github.com/PoornimaChowdary560/email-classifier-backend/internal/ingest"
	"github.com/PoornimaChowdary560/email-classifier-backend/internal/report"
)

type createEmailRequest struct {
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

type reclassifyRequest struct {
	Label string `json:"label"`
}

type emailResponse struct {
	ID           string      `json:"id"`
	Owner        string      `json:"owner"`
	Sender       string      `json:"sender"`
	Recipient    string      `json:"recipient"`
	Subject      string      `json:"subject"`
	Body         string      `json:"body"`
	CleanedText  string      `json:"cleaned_text"`
	Label        string      `json:"label"`
	Confidence   interface{} `json:"confidence"`
	ModelVersion string      `json:"model_version"`
	Source       string      `json:"source"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

func toEmailResponse(record *core.EmailRecord) emailResponse {
	return emailResponse{
		ID:           record.ID,
		Owner:        record.Owner,
		Sender:       record.Sender,
		Recipient:    record.Recipient,
		Subject:      record.Subject,
		Body:         record.RawBody,
		CleanedText:  record.CleanedText,
		Label:        record.Label,
		Confidence:   confidenceJSON(record.Confidence),
		ModelVersion: record.ModelVersion,
		Source:       string(record.Source),
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.UpdatedAt,
	}
}

// confidenceJSON renders confidence as a number rounded to three decimals,
// or the string N/A when the model produced none
func confidenceJSON(confidence *float64) interface{} {
	if confidence == nil {
		return "N/A"
	}
	return math.Round(*confidence*1000) / 1000
}

// createEmail classifies and stores a single interactively submitted email
func (s *Server) createEmail(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.requireOwner(w, r)
	if !ok {
		return
	}

	var req createEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Body) == "" {
		s.respondError(w, http.StatusBadRequest, "body required")
		return
	}

	classification, err := s.service.Classify(r.Context(), req.Body)
	if err != nil {
		s.logger.Error("Classification unavailable", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	record := &core.EmailRecord{
		Owner:        owner,
		Sender:       req.Sender,
		Recipient:    req.Recipient,
		Subject:      req.Subject,
		RawBody:      req.Body,
		CleanedText:  classification.CleanedText,
		Label:        classification.Label,
		Confidence:   classification.Confidence,
		ModelVersion: classification.ModelVersion,
		Source:       core.SourceManual,
	}
	if err := s.repo.Create(r.Context(), record); err != nil {
		s.logger.Error("Failed to store email", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to store email")
		return
	}

	s.respondJSON(w, http.StatusCreated, toEmailResponse(record))
}

// listEmails lists the caller's records, optionally filtered by label
// (exact, case-insensitive) and sender (substring, case-insensitive)
func (s *Server) listEmails(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.requireOwner(w, r)
	if !ok {
		return
	}

	records, err := s.repo.List(r.Context(), core.ListFilter{
		Owner:  owner,
		Label:  r.URL.Query().Get("label"),
		Sender: r.URL.Query().Get("sender"),
	})
	if err != nil {
		s.logger.Error("Failed to list emails", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to list emails")
		return
	}

	responses := make([]emailResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, toEmailResponse(record))
	}
	s.respondJSON(w, http.StatusOK, responses)
}

func (s *Server) getEmail(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.requireOwner(w, r)
	if !ok {
		return
	}

	record, ok := s.fetchOwned(w, r, owner)
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, toEmailResponse(record))
}

// reclassify applies a manual label correction. Only the label changes;
// confidence and model version remain the last machine opinion.
func (s *Server) reclassify(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.requireOwner(w, r)
	if !ok {
		return
	}

	record, ok := s.fetchOwned(w, r, owner)
	if !ok {
		return
	}

	var req reclassifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Label == "" {
		s.respondError(w, http.StatusBadRequest, "label required")
		return
	}

	if err := s.repo.UpdateLabel(r.Context(), record.ID, req.Label); err != nil {
		s.logger.Error("Failed to update label", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to update label")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{
		"detail": "updated",
		"label":  req.Label,
	})
}

// bulkUpload imports a CSV of emails for the caller
func (s *Server) bulkUpload(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.requireOwner(w, r)
	if !ok {
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	summary, err := s.ingestor.Ingest(r.Context(), file, owner)
	if errors.Is(err, ingest.ErrParse) {
		s.respondError(w, http.StatusBadRequest, "failed to parse CSV")
		return
	}
	if err != nil {
		s.logger.Error("Bulk upload failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "bulk upload failed")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"created": len(summary.Created),
		"ids":     summary.Created,
		"errors":  summary.Errors,
	})
}

func (s *Server) labelDistribution(w http.ResponseWriter, r *http.Request) {
	distribution, err := s.reporter.LabelDistribution(r.Context(), "")
	if err != nil {
		s.logger.Error("Failed to compute label distribution", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to compute distribution")
		return
	}
	s.respondJSON(w, http.StatusOK, distribution)
}

func (s *Server) spamTrend(w http.ResponseWriter, r *http.Request) {
	trend, err := s.reporter.Trend(r.Context(), "")
	if err != nil {
		s.logger.Error("Failed to compute spam trend", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to compute trend")
		return
	}
	s.respondJSON(w, http.StatusOK, trend)
}

func (s *Server) exportCSV(w http.ResponseWriter, r *http.Request) {
	records, err := s.repo.List(r.Context(), core.ListFilter{})
	if err != nil {
		s.logger.Error("Failed to export emails", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to export emails")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="emails.csv"`)
	if err := report.WriteCSV(w, records); err != nil {
		s.logger.Error("Failed to write CSV export", zap.Error(err))
	}
}

// requireOwner resolves the calling user from the X-User header. Identity
// verification happens upstream; an absent identity is rejected outright.
func (s *Server) requireOwner(w http.ResponseWriter, r *http.Request) (string, bool) {
	owner := strings.TrimSpace(r.Header.Get("X-User"))
	if owner == "" {
		s.respondError(w, http.StatusUnauthorized, "authentication required")
		return "", false
	}
	return owner, true
}

// fetchOwned loads the record addressed by the URL and enforces ownership
func (s *Server) fetchOwned(w http.ResponseWriter, r *http.Request, owner string) (*core.EmailRecord, bool) {
	record, err := s.repo.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, core.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "email not found")
		return nil, false
	}
	if err != nil {
		s.logger.Error("Failed to load email", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to load email")
		return nil, false
	}
	if record.Owner != owner {
		s.respondError(w, http.StatusForbidden, "permission denied")
		return nil, false
	}
	return record, true
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, detail string) {
	s.respondJSON(w, status, map[string]string{"detail": detail})
}
