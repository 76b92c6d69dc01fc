package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dkravets/hearthledger/internal/api/middleware"
	"github.com/dkravets/hearthledger/internal/domain"
	"github.com/dkravets/hearthledger/internal/engine/calendar"
	"github.com/dkravets/hearthledger/internal/mutation"
	"github.com/dkravets/hearthledger/internal/store"
)

// CalendarHandler handles bill calendar endpoints.
type CalendarHandler struct {
	store store.Store
	log   zerolog.Logger
	now   func() time.Time
}

// NewCalendarHandler creates a new calendar handler.
func NewCalendarHandler(st store.Store, log zerolog.Logger) *CalendarHandler {
	return &CalendarHandler{store: st, log: log, now: time.Now}
}

// ListInstances handles GET /api/calendar
//
// from/to bound the expansion window [from, to); the default window is the
// thirty days starting today.
func (h *CalendarHandler) ListInstances(w http.ResponseWriter, r *http.Request) {
	from := domain.NewDateKey(h.now())
	to := from.AddDays(30)
	if q := r.URL.Query().Get("from"); q != "" {
		parsed, err := domain.ParseDateKey(q)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "from must be YYYY-MM-DD")
			return
		}
		from = parsed
		to = from.AddDays(30)
	}
	if q := r.URL.Query().Get("to"); q != "" {
		parsed, err := domain.ParseDateKey(q)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "to must be YYYY-MM-DD")
			return
		}
		to = parsed
	}

	snap, err := h.store.Snapshot(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read snapshot")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list calendar")
		return
	}

	instances := calendar.Expand(snap.CalendarItems, from, to)
	if instances == nil {
		instances = []domain.Instance{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"from":      from,
		"to":        to,
		"instances": instances,
		"count":     len(instances),
	})
}

// instanceRequest addresses one occurrence: a concrete item by id, or a
// template occurrence by template id plus date.
type instanceRequest struct {
	ID         string `json:"id"`
	TemplateID string `json:"template_id"`
	Date       string `json:"date"`
}

// PayInstance handles POST /api/calendar/pay
func (h *CalendarHandler) PayInstance(w http.ResponseWriter, r *http.Request) {
	var req instanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := r.Context()
	snap, err := h.store.Snapshot(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read snapshot")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to pay instance")
		return
	}

	// Concrete item: flip its paid flag in place.
	if req.ID != "" {
		item, ok := calendarItemByID(snap.CalendarItems, req.ID)
		if !ok {
			middleware.WriteError(w, http.StatusNotFound, "Calendar item not found")
			return
		}
		if item.IsTemplate() {
			middleware.WriteError(w, http.StatusBadRequest, "Templates are paid per occurrence; send template_id and date")
			return
		}
		item.IsPaid = true
		if err := h.store.Apply(ctx, []mutation.Mutation{mutation.Put(domain.ColCalendar, item.ID, item)}); err != nil {
			h.log.Error().Err(err).Str("item_id", item.ID).Msg("Failed to mark paid")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to pay instance")
			return
		}
		middleware.WriteJSON(w, http.StatusOK, item)
		return
	}

	// Template occurrence: create a paid override, never touch the template.
	tpl, date, ok := h.templateOccurrence(w, snap, req)
	if !ok {
		return
	}
	override := calendar.NewPaidOverride(tpl, date, uuid.New().String())
	if err := h.store.Apply(ctx, []mutation.Mutation{mutation.Put(domain.ColCalendar, override.ID, override)}); err != nil {
		h.log.Error().Err(err).Str("template_id", tpl.ID).Msg("Failed to store paid override")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to pay instance")
		return
	}

	h.log.Info().Str("template_id", tpl.ID).Str("date", string(date)).Msg("Occurrence marked paid")
	middleware.WriteJSON(w, http.StatusOK, override)
}

// DeleteInstance handles POST /api/calendar/delete-instance
func (h *CalendarHandler) DeleteInstance(w http.ResponseWriter, r *http.Request) {
	var req instanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := r.Context()
	snap, err := h.store.Snapshot(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read snapshot")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to delete instance")
		return
	}

	// Concrete item: remove the record.
	if req.ID != "" {
		if _, ok := calendarItemByID(snap.CalendarItems, req.ID); !ok {
			middleware.WriteError(w, http.StatusNotFound, "Calendar item not found")
			return
		}
		if err := h.store.Apply(ctx, []mutation.Mutation{mutation.Delete(domain.ColCalendar, req.ID)}); err != nil {
			h.log.Error().Err(err).Str("item_id", req.ID).Msg("Failed to delete item")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to delete instance")
			return
		}
		middleware.WriteJSON(w, http.StatusOK, map[string]string{"deleted": req.ID})
		return
	}

	// Template occurrence: tombstone it, never touch the template.
	tpl, date, ok := h.templateOccurrence(w, snap, req)
	if !ok {
		return
	}
	tombstone := calendar.NewTombstone(tpl, date, uuid.New().String())
	if err := h.store.Apply(ctx, []mutation.Mutation{mutation.Put(domain.ColCalendar, tombstone.ID, tombstone)}); err != nil {
		h.log.Error().Err(err).Str("template_id", tpl.ID).Msg("Failed to store tombstone")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to delete instance")
		return
	}

	h.log.Info().Str("template_id", tpl.ID).Str("date", string(date)).Msg("Occurrence tombstoned")
	middleware.WriteJSON(w, http.StatusOK, tombstone)
}

func (h *CalendarHandler) templateOccurrence(w http.ResponseWriter, snap *domain.Snapshot, req instanceRequest) (domain.CalendarItem, domain.DateKey, bool) {
	if req.TemplateID == "" || req.Date == "" {
		middleware.WriteError(w, http.StatusBadRequest, "id, or template_id and date, are required")
		return domain.CalendarItem{}, "", false
	}
	date, err := domain.ParseDateKey(req.Date)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return domain.CalendarItem{}, "", false
	}
	tpl, ok := calendarItemByID(snap.CalendarItems, req.TemplateID)
	if !ok || !tpl.IsTemplate() {
		middleware.WriteError(w, http.StatusNotFound, "Template not found")
		return domain.CalendarItem{}, "", false
	}
	return tpl, date, true
}

func calendarItemByID(items []domain.CalendarItem, id string) (domain.CalendarItem, bool) {
	for _, it := range items {
		if it.ID == id {
			return it, true
		}
	}
	return domain.CalendarItem{}, false
}
