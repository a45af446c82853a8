package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/RafexStrike/eventment-server/internal/audit"
	"github.com/RafexStrike/eventment-server/internal/domain/events"
	"github.com/RafexStrike/eventment-server/internal/domain/joined"
)

type JoinedHandler struct {
	Service *joined.Service
	Env     string
	Audit   *audit.Logger
}

func NewJoinedHandler(service *joined.Service, env string, auditLog *audit.Logger) *JoinedHandler {
	return &JoinedHandler{Service: service, Env: env, Audit: auditLog}
}

// Join handles POST /joinedEvent.
func (h *JoinedHandler) Join(w http.ResponseWriter, r *http.Request) {
	doc, err := decodeDocument(r)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	group := fmt.Sprint(doc[events.FieldGroupID])
	result, err := h.Service.Join(r.Context(), doc)
	if err != nil {
		details := map[string]string{"group_id": group}
		if errors.Is(err, joined.ErrAlreadyJoined) {
			details["reason"] = "already_joined"
		}
		h.Audit.LogFromRequest(r, audit.ActionEventJoin, "joined_event", "", audit.StatusFailure, details)
		writeError(w, r, err, h.Env)
		return
	}
	h.Audit.LogFromRequest(r, audit.ActionEventJoin, "joined_event", result.InsertedID, audit.StatusSuccess,
		map[string]string{"group_id": group})
	writeJSON(w, http.StatusOK, result)
}

// List handles GET /joinedEvent?email=.
func (h *JoinedHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.Service.ListByEmail(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}
