package handlers

import (
	"net/http"
	"strconv"

	"github.com/RafexStrike/eventment-server/internal/audit"
	"github.com/RafexStrike/eventment-server/internal/domain/events"
)

const resourceEvent = "event"

type EventsHandler struct {
	Service *events.Service
	Env     string
	Audit   *audit.Logger
}

func NewEventsHandler(service *events.Service, env string, auditLog *audit.Logger) *EventsHandler {
	return &EventsHandler{Service: service, Env: env, Audit: auditLog}
}

// Create handles POST /events/post.
func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	doc, err := decodeDocument(r)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	result, err := h.Service.Create(r.Context(), doc)
	if err != nil {
		h.Audit.LogFromRequest(r, audit.ActionEventCreate, resourceEvent, "", audit.StatusFailure, nil)
		writeError(w, r, err, h.Env)
		return
	}
	h.Audit.LogFromRequest(r, audit.ActionEventCreate, resourceEvent, result.InsertedID, audit.StatusSuccess,
		map[string]string{"title": doc.String(events.FieldTitle)})
	writeJSON(w, http.StatusOK, result)
}

// ListPublic handles GET /events/get?type=&search=.
func (h *EventsHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	docs, err := h.Service.ListPublic(r.Context(), query.Get("type"), query.Get("search"))
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// ListMine handles GET /events?email=.
func (h *EventsHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	docs, err := h.Service.ListByOwner(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (h *EventsHandler) Featured(w http.ResponseWriter, r *http.Request) {
	docs, err := h.Service.Featured(r.Context())
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// Get handles GET /events/get/{eventID}. An unknown id answers 200 with null.
func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Service.Get(r.Context(), r.PathValue("eventID"))
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Delete handles DELETE /myEvent/delete/{myEventID}.
func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("myEventID")
	result, err := h.Service.Delete(r.Context(), id)
	if err != nil {
		h.Audit.LogFromRequest(r, audit.ActionEventDelete, resourceEvent, id, audit.StatusFailure, nil)
		writeError(w, r, err, h.Env)
		return
	}
	h.Audit.LogFromRequest(r, audit.ActionEventDelete, resourceEvent, id, audit.StatusSuccess,
		map[string]string{"deleted": strconv.FormatInt(result.DeletedCount, 10)})
	writeJSON(w, http.StatusOK, result)
}

// Update handles PUT /myEvent/put/{myEventID}.
func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeDocument(r)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	id := r.PathValue("myEventID")
	result, err := h.Service.Update(r.Context(), id, fields)
	if err != nil {
		h.Audit.LogFromRequest(r, audit.ActionEventUpdate, resourceEvent, id, audit.StatusFailure, nil)
		writeError(w, r, err, h.Env)
		return
	}
	h.Audit.LogFromRequest(r, audit.ActionEventUpdate, resourceEvent, id, audit.StatusSuccess,
		map[string]string{"upserted": strconv.FormatBool(result.UpsertedID != nil)})
	writeJSON(w, http.StatusOK, result)
}
