package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/entityretrieval/entityretrieval/internal/retrieval"
)

// handleLookup serves GET /lookup. Query parameters mirror the Query
// Normalizer's inputs: mention, context (repeatable), crosslink (repeatable),
// coarse, fine, top_k (1-100), include_top_k, exact_mode.
//
// An optional repeatable titles parameter supplies known-good reference
// titles (e.g. sitelink titles already on hand from an upstream OCR step);
// when present, each crosslink hint is reconciled against titles before the
// lookup runs, correcting noisy hint text that would otherwise fail to
// match anything.
func (srv *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	mention := q.Get("mention")
	if mention == "" {
		writeError(w, http.StatusBadRequest, "mention is required")
		return
	}

	crosslinks := q["crosslink"]
	if titles := q["titles"]; len(titles) > 0 {
		crosslinks = srv.reconcileCrosslinks(crosslinks, titles)
	}

	req := retrieval.LookupRequest{
		Mention:        mention,
		ContextHints:   q["context"],
		CrosslinkHints: crosslinks,
		CoarseHints:    q["coarse"],
		FineHints:      q["fine"],
		IncludeTopK:    parseBool(q.Get("include_top_k")),
		ExactMode:      parseBool(q.Get("exact_mode")),
	}

	if raw := q.Get("top_k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			writeError(w, http.StatusBadRequest, "top_k must be an integer between 1 and 100")
			return
		}
		req.Limit = n
	}

	resp, err := srv.svc.Lookup(r.Context(), req)
	if err != nil {
		var validationErr *retrieval.ValidationError
		if errors.As(err, &validationErr) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		srv.metrics.RecordStoreError(r.Context(), "lookup")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	srv.metrics.RecordLookup(r.Context(), resp.Strategy, resp.CacheHit)

	writeJSON(w, http.StatusOK, resp)
}

// reconcileCrosslinks runs each hint through [retrieval.CrosslinkReconciler],
// substituting the corrected title whenever a confident match is found and
// leaving the hint unchanged otherwise.
func (srv *Server) reconcileCrosslinks(hints, titles []string) []string {
	out := make([]string, len(hints))
	for i, hint := range hints {
		if corrected, _, matched := srv.reconcil.Reconcile(hint, titles); matched {
			out[i] = corrected
		} else {
			out[i] = hint
		}
	}
	return out
}

func parseBool(s string) bool {
	v, _ := strconv.ParseBool(s)
	return v
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error":"encode failure"}`, http.StatusInternalServerError)
	}
}
