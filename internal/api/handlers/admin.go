package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dkravets/hearthledger/internal/api/middleware"
	"github.com/dkravets/hearthledger/internal/engine/migrate"
	"github.com/dkravets/hearthledger/internal/engine/reconcile"
	"github.com/dkravets/hearthledger/internal/store"
)

// AdminHandler handles maintenance endpoints.
type AdminHandler struct {
	store store.Store
	log   zerolog.Logger
	now   func() time.Time
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(st store.Store, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{store: st, log: log, now: time.Now}
}

// RunMigrations handles POST /api/admin/migrate
//
// Safe to call repeatedly: every migration's predicate is false once its
// mutations have been applied.
func (h *AdminHandler) RunMigrations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	snap, err := h.store.Snapshot(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read snapshot")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to run migrations")
		return
	}

	res := migrate.Run(snap, h.now())
	if err := h.store.Apply(ctx, res.Mutations); err != nil {
		h.log.Error().Err(err).Msg("Failed to apply migration mutations")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to run migrations")
		return
	}

	for _, name := range res.Applied {
		h.log.Info().Str("migration", name).Msg("Migration applied")
	}
	for _, name := range res.Skipped {
		h.log.Debug().Str("migration", name).Msg("Migration skipped")
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"applied":   res.Applied,
		"skipped":   res.Skipped,
		"mutations": len(res.Mutations),
	})
}

// Reconcile handles POST /api/admin/reconcile
func (h *AdminHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	snap, err := h.store.Snapshot(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read snapshot")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to reconcile")
		return
	}

	points, muts := reconcile.Reconcile(snap.Household, snap.Habits, snap.Submissions, h.now())
	if err := h.store.Apply(ctx, muts); err != nil {
		h.log.Error().Err(err).Msg("Failed to apply reconciliation")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to reconcile")
		return
	}

	if len(muts) > 0 {
		h.log.Warn().
			Int("total", points.Total).
			Msg("Point counters drifted from history; overwritten")
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"points":    points,
		"corrected": len(muts) > 0,
	})
}
