// Package handlers implements the HTTP API. Every write handler follows
// the same shape: read a snapshot, call the pure engine function, apply the
// returned mutations atomically, respond with the updated state.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dkravets/hearthledger/internal/api/middleware"
	"github.com/dkravets/hearthledger/internal/domain"
	"github.com/dkravets/hearthledger/internal/engine/freezebank"
	"github.com/dkravets/hearthledger/internal/engine/habits"
	"github.com/dkravets/hearthledger/internal/store"
)

// HabitsHandler handles habit scoring endpoints.
type HabitsHandler struct {
	store store.Store
	log   zerolog.Logger
	now   func() time.Time
}

// NewHabitsHandler creates a new habits handler.
func NewHabitsHandler(st store.Store, log zerolog.Logger) *HabitsHandler {
	return &HabitsHandler{store: st, log: log, now: time.Now}
}

// ListHabits handles GET /api/habits
func (h *HabitsHandler) ListHabits(w http.ResponseWriter, r *http.Request) {
	snap, err := h.store.Snapshot(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read snapshot")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list habits")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"habits": snap.Habits,
		"count":  len(snap.Habits),
	})
}

// Toggle handles POST /api/habits/{id}/toggle
func (h *HabitsHandler) Toggle(w http.ResponseWriter, r *http.Request, habitID string) {
	var req struct {
		Direction string `json:"direction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := r.Context()
	snap, err := h.store.Snapshot(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read snapshot")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to toggle habit")
		return
	}
	habit, ok := snap.HabitByID(habitID)
	if !ok {
		middleware.WriteError(w, http.StatusNotFound, "Habit not found")
		return
	}

	member := middleware.MemberFromContext(ctx)
	res, err := habits.Toggle(habit, snap.Submissions, habits.Direction(req.Direction), h.now(),
		snap.Household.ID, member, uuid.New().String())
	if err != nil {
		if errors.Is(err, habits.ErrUnknownDirection) {
			middleware.WriteError(w, http.StatusBadRequest, "direction must be up or down")
			return
		}
		h.log.Error().Err(err).Str("habit_id", habitID).Msg("Toggle rejected")
		middleware.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := h.store.Apply(ctx, res.Mutations); err != nil {
		h.log.Error().Err(err).Str("habit_id", habitID).Msg("Failed to apply toggle")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to toggle habit")
		return
	}

	h.log.Info().
		Str("habit_id", habitID).
		Str("direction", req.Direction).
		Int("points_delta", res.PointsDelta).
		Bool("no_op", res.NoOp).
		Msg("Habit toggled")

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"habit":        res.Habit,
		"points_delta": res.PointsDelta,
		"completed":    res.Completed,
		"no_op":        res.NoOp,
	})
}

// Reset handles POST /api/habits/{id}/reset
func (h *HabitsHandler) Reset(w http.ResponseWriter, r *http.Request, habitID string) {
	ctx := r.Context()
	snap, err := h.store.Snapshot(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read snapshot")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to reset habit")
		return
	}
	habit, ok := snap.HabitByID(habitID)
	if !ok {
		middleware.WriteError(w, http.StatusNotFound, "Habit not found")
		return
	}

	res, err := habits.Reset(habit, snap.Submissions, h.now(), snap.Household.ID)
	if err != nil {
		h.log.Error().Err(err).Str("habit_id", habitID).Msg("Reset rejected")
		middleware.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := h.store.Apply(ctx, res.Mutations); err != nil {
		h.log.Error().Err(err).Str("habit_id", habitID).Msg("Failed to apply reset")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to reset habit")
		return
	}

	h.log.Info().Str("habit_id", habitID).Int("points_delta", res.PointsDelta).Msg("Habit reset")

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"habit":        res.Habit,
		"points_delta": res.PointsDelta,
	})
}

// Freeze handles POST /api/habits/{id}/freeze
func (h *HabitsHandler) Freeze(w http.ResponseWriter, r *http.Request, habitID string) {
	var req struct {
		Date string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	date, err := domain.ParseDateKey(req.Date)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	ctx := r.Context()
	snap, err := h.store.Snapshot(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read snapshot")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to apply freeze")
		return
	}
	habit, ok := snap.HabitByID(habitID)
	if !ok {
		middleware.WriteError(w, http.StatusNotFound, "Habit not found")
		return
	}
	if snap.FreezeBank == nil {
		middleware.WriteError(w, http.StatusConflict, "Freeze bank not initialized; run migrations")
		return
	}

	member := middleware.MemberFromContext(ctx)
	res, err := freezebank.ApplyToken(habit, *snap.FreezeBank, date, h.now(), member, uuid.New().String())
	if err != nil {
		middleware.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := h.store.Apply(ctx, res.Mutations); err != nil {
		h.log.Error().Err(err).Str("habit_id", habitID).Msg("Failed to apply freeze")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to apply freeze")
		return
	}

	h.log.Info().
		Str("habit_id", habitID).
		Str("date", string(date)).
		Int("tokens_left", res.Bank.Tokens).
		Msg("Freeze token applied")

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"habit":       res.Habit,
		"freeze_bank": res.Bank,
	})
}

// AddSubmission handles POST /api/habits/{id}/submissions
func (h *HabitsHandler) AddSubmission(w http.ResponseWriter, r *http.Request, habitID string) {
	var req struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := r.Context()
	snap, err := h.store.Snapshot(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read snapshot")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to log submission")
		return
	}
	habit, ok := snap.HabitByID(habitID)
	if !ok {
		middleware.WriteError(w, http.StatusNotFound, "Habit not found")
		return
	}

	member := middleware.MemberFromContext(ctx)
	res, err := habits.AddSubmission(habit, req.Count, h.now(), snap.Household.ID, member, uuid.New().String())
	if err != nil {
		middleware.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := h.store.Apply(ctx, res.Mutations); err != nil {
		h.log.Error().Err(err).Str("habit_id", habitID).Msg("Failed to apply submission")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to log submission")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"habit":        res.Habit,
		"submission":   res.Submission,
		"points_delta": res.PointsDelta,
	})
}

// RemoveSubmission handles DELETE /api/habits/{id}/submissions/{submissionId}
func (h *HabitsHandler) RemoveSubmission(w http.ResponseWriter, r *http.Request, habitID, submissionID string) {
	ctx := r.Context()
	snap, err := h.store.Snapshot(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read snapshot")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to remove submission")
		return
	}
	habit, ok := snap.HabitByID(habitID)
	if !ok {
		middleware.WriteError(w, http.StatusNotFound, "Habit not found")
		return
	}
	var sub *domain.HabitSubmission
	for i := range snap.Submissions {
		if snap.Submissions[i].ID == submissionID {
			sub = &snap.Submissions[i]
			break
		}
	}
	if sub == nil {
		middleware.WriteError(w, http.StatusNotFound, "Submission not found")
		return
	}

	res, err := habits.RemoveSubmission(habit, *sub, snap.Submissions, h.now(), snap.Household.ID)
	if err != nil {
		if errors.Is(err, habits.ErrSubmissionMismatch) {
			middleware.WriteError(w, http.StatusConflict, "Submission belongs to a different habit")
			return
		}
		middleware.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := h.store.Apply(ctx, res.Mutations); err != nil {
		h.log.Error().Err(err).Str("submission_id", submissionID).Msg("Failed to remove submission")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to remove submission")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"habit":        res.Habit,
		"points_delta": res.PointsDelta,
	})
}
