package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lawlawrd/polly/internal/annotate"
	"github.com/lawlawrd/polly/internal/entity"
	"github.com/lawlawrd/polly/internal/otel"
	"github.com/lawlawrd/polly/internal/pipeline"
	"github.com/lawlawrd/polly/internal/policy"
	"github.com/lawlawrd/polly/internal/signature"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{"code": code, "message": message},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.startTime).String(),
	})
}

type filterRequest struct {
	Text     string               `json:"text"`
	Model    string               `json:"model"`
	Entities json.RawMessage      `json:"entities"`
	Settings policy.SettingsInput `json:"settings"`
}

type filterResponse struct {
	CorrelationID string          `json:"correlation_id"`
	Language      string          `json:"language"`
	Entities      []entity.Entity `json:"entities"`
}

// handleFilter runs the full pipeline over raw detector output and returns
// the merged entity list the caller forwards to the anonymization service.
func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	correlationID := "req_" + uuid.New().String()[:8]

	var req filterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON: "+err.Error())
		return
	}

	var raw []entity.Entity
	if len(req.Entities) > 0 {
		decoded, err := entity.Decode(req.Entities)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		raw = decoded
	}

	settings := policy.NormalizeSettings(req.Settings)
	merged, err := s.pipeline.Run(r.Context(), raw, req.Text, settings)
	if err != nil {
		if errors.Is(err, pipeline.ErrNoSourceText) {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		log.Error().Err(err).Str("correlation_id", correlationID).Msg("filter_error")
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}

	model := req.Model
	if model == "" {
		model = s.model
	}

	log.Debug().
		Str("correlation_id", correlationID).
		Int("raw_count", len(raw)).
		Int("merged_count", len(merged)).
		Func(otel.LogTraceFields(r.Context())).
		Msg("entities_filtered")

	writeJSON(w, http.StatusOK, filterResponse{
		CorrelationID: correlationID,
		Language:      s.registry.LanguageFor(model),
		Entities:      merged,
	})
}

type annotateRequest struct {
	Markup    string          `json:"markup"`
	PlainText string          `json:"plain_text"`
	Entities  json.RawMessage `json:"entities"`
	// Disabled lists dedup keys the user toggled off; annotation restarts
	// from the original markup with the reduced set.
	Disabled []string `json:"disabled,omitempty"`
}

type annotateResponse struct {
	Markup string `json:"markup"`
}

// handleAnnotate rewrites the original markup with redaction placeholders
// for the supplied (possibly reduced) entity set.
func (s *Server) handleAnnotate(w http.ResponseWriter, r *http.Request) {
	var req annotateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON: "+err.Error())
		return
	}

	var entities []entity.Entity
	if len(req.Entities) > 0 {
		decoded, err := entity.Decode(req.Entities)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		entities = decoded
	}
	entities = entity.Without(entities, req.Disabled)

	plain := req.PlainText
	if plain == "" {
		plain = annotate.PlainText(req.Markup)
	}

	markup, err := s.annotator.Annotate(r.Context(), req.Markup, plain, entities)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, annotateResponse{Markup: markup})
}

type signatureResponse struct {
	Signature string `json:"signature"`
}

// handleSignature computes the canonical change-detection digest over a
// result-plus-settings payload. The persistence layer (external) compares
// digests to decide whether a result is worth saving.
func (s *Server) handleSignature(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var payload map[string]interface{}
	if err := dec.Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON: "+err.Error())
		return
	}

	canonical, err := signature.Canonical(payload)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	sig, err := signature.Signature(payload)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	log.Debug().
		Str("signature", sig).
		Str("canonical", canonical).
		Func(otel.LogTraceFields(r.Context())).
		Msg("signature_computed")

	writeJSON(w, http.StatusOK, signatureResponse{Signature: sig})
}
