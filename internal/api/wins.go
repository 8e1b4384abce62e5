package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/ashureev/winlog/internal/domain"
	"github.com/ashureev/winlog/internal/extract"
	"github.com/ashureev/winlog/internal/identity"
	"github.com/ashureev/winlog/internal/session"
	"github.com/ashureev/winlog/internal/store"
	"github.com/go-chi/chi/v5"
)

// Accumulator is the session protocol the handlers drive.
type Accumulator interface {
	Submit(ctx context.Context, key string, fields domain.Fields, finalize bool) (session.Result, error)
	Commit(ctx context.Context, key string) (session.Result, error)
}

// Handler serves the parse, submit and commit routes.
type Handler struct {
	extractor    extract.Extractor
	acc          Accumulator
	repo         store.Repository // nil when the journal is disabled
	entriesLimit int
}

// NewHandler creates a Handler. repo may be nil.
func NewHandler(extractor extract.Extractor, acc Accumulator, repo store.Repository, entriesLimit int) *Handler {
	if entriesLimit <= 0 {
		entriesLimit = 50
	}
	return &Handler{
		extractor:    extractor,
		acc:          acc,
		repo:         repo,
		entriesLimit: entriesLimit,
	}
}

// RegisterRoutes registers the API routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/parse-only", adapt(h.ParseOnly))
	r.Post("/send-to-sheets", adapt(h.SendToSheets))
	r.Post("/commit", adapt(h.Commit))
	r.Get("/entries", adapt(h.ListEntries))
}

// ParseRequest is the body of POST /parse-only.
type ParseRequest struct {
	Transcription string `json:"transcription"`
}

// ParseOnly extracts fields from a transcription without touching any session.
func (h *Handler) ParseOnly(w http.ResponseWriter, r *http.Request) (response, error) {
	var req ParseRequest
	if err := decode(w, r, &req, true); err != nil {
		return response{}, err
	}
	if strings.TrimSpace(req.Transcription) == "" {
		return response{}, badRequest("transcription is required")
	}

	return ok(h.extractor.Extract(r.Context(), req.Transcription)), nil
}

// SubmitRequest is the body of POST /send-to-sheets.
type SubmitRequest struct {
	Transcription       string `json:"transcription"`
	PhysicalAchievement string `json:"physical_achievement"`
	SocialWin           string `json:"social_win"`
	SessionID           string `json:"session_id"`
	Commit              bool   `json:"commit"`
}

// SubmitResponse reports what happened to the session.
type SubmitResponse struct {
	Message   string         `json:"message"`
	Complete  bool           `json:"complete"`
	SessionID string         `json:"session_id"`
	Row       []string       `json:"row,omitempty"`
	Pending   *domain.Fields `json:"pending,omitempty"`
}

// SendToSheets merges the request into the session and commits when ready.
// A transcription is extracted first and always finalizes the entry.
func (h *Handler) SendToSheets(w http.ResponseWriter, r *http.Request) (response, error) {
	var req SubmitRequest
	if err := decode(w, r, &req, false); err != nil {
		return response{}, err
	}

	fields := domain.Fields{PhysicalAchievement: req.PhysicalAchievement, SocialWin: req.SocialWin}
	hasTranscription := strings.TrimSpace(req.Transcription) != ""
	if !hasTranscription && fields.IsEmpty() && !req.Commit {
		return response{}, badRequest("transcription or physical_achievement/social_win is required")
	}

	key, err := identity.Resolve(r.Context(), req.SessionID)
	if err != nil {
		return response{}, badRequest(err.Error())
	}
	finalize := req.Commit
	if hasTranscription {
		extracted := h.extractor.Extract(r.Context(), req.Transcription)
		fields = fields.Merge(extracted.Fields())
		finalize = true
	}

	res, err := h.acc.Submit(r.Context(), key, fields, finalize)
	if err != nil {
		return response{}, fmt.Errorf("submit entry: %w", err)
	}

	slog.Info("Entry submitted", "session_id", key, "complete", res.Complete, "finalize", finalize)
	return ok(newSubmitResponse(key, res)), nil
}

// CommitRequest is the body of POST /commit.
type CommitRequest struct {
	SessionID string `json:"session_id"`
}

// Commit finalizes the session, writing whatever has been accumulated.
func (h *Handler) Commit(w http.ResponseWriter, r *http.Request) (response, error) {
	var req CommitRequest
	if err := decode(w, r, &req, true); err != nil {
		return response{}, err
	}

	key, err := identity.Resolve(r.Context(), req.SessionID)
	if err != nil {
		return response{}, badRequest(err.Error())
	}
	res, err := h.acc.Commit(r.Context(), key)
	if err != nil {
		return response{}, fmt.Errorf("commit entry: %w", err)
	}
	return ok(newSubmitResponse(key, res)), nil
}

// ListEntries returns recently journaled rows.
func (h *Handler) ListEntries(_ http.ResponseWriter, r *http.Request) (response, error) {
	if h.repo == nil {
		return response{}, notFound("journal is disabled")
	}

	limit := h.entriesLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return response{}, badRequest("limit must be a positive integer")
		}
		limit = min(n, 500)
	}

	entries, err := h.repo.ListEntries(r.Context(), limit)
	if err != nil {
		return response{}, fmt.Errorf("list entries: %w", err)
	}
	if entries == nil {
		entries = []*domain.Entry{}
	}
	return ok(map[string]any{"entries": entries}), nil
}

func newSubmitResponse(key string, res session.Result) SubmitResponse {
	out := SubmitResponse{Complete: res.Complete, SessionID: key}
	switch {
	case res.Complete:
		out.Message = "Data sent to Google Sheets"
		out.Row = res.Row.Cells()
	case res.Pending != nil:
		out.Message = "Partial entry saved"
		fields := res.Pending.Fields
		out.Pending = &fields
	default:
		out.Message = "Incomplete entry: no physical achievement or social win provided"
	}
	return out
}
