package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/RafexStrike/eventment-server/internal/api/problem"
	"github.com/RafexStrike/eventment-server/internal/domain/events"
	"github.com/RafexStrike/eventment-server/internal/domain/ids"
	"github.com/RafexStrike/eventment-server/internal/domain/joined"
	"github.com/RafexStrike/eventment-server/internal/metrics"
)

var errBodyRequired = errors.New("request body must be a JSON object")

// alreadyJoinedDetail is the message the frontend shows on a duplicate join.
const alreadyJoinedDetail = "Already joined this event."

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// decodeDocument reads a JSON object body. A body over the request size limit
// is reported as *http.MaxBytesError.
func decodeDocument(r *http.Request) (events.Document, error) {
	var doc events.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errBodyRequired
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", errBodyRequired, err)
	}
	if doc == nil {
		return nil, errBodyRequired
	}
	return doc, nil
}

// writeError maps domain errors onto problem responses.
func writeError(w http.ResponseWriter, r *http.Request, err error, env string) {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		problem.Write(w, r, http.StatusRequestEntityTooLarge, problem.TypePayloadTooLarge,
			"Payload too large", err, env, problem.WithDetail(err.Error()))
	case errors.Is(err, joined.ErrAlreadyJoined):
		metrics.JoinConflictsTotal.Inc()
		problem.Write(w, r, http.StatusConflict, problem.TypeConflict, "Conflict", err, env,
			problem.WithDetail(alreadyJoinedDetail))
	case errors.Is(err, ids.ErrInvalidID),
		errors.Is(err, errBodyRequired),
		errors.Is(err, events.ErrEmptyUpdate),
		errors.Is(err, events.ErrMissingOwner),
		errors.Is(err, joined.ErrInvalidJoin):
		problem.Validation(w, r, err, env)
	default:
		problem.ServerError(w, r, err, env)
	}
}
