package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dkravets/hearthledger/internal/api/middleware"
	"github.com/dkravets/hearthledger/internal/domain"
	"github.com/dkravets/hearthledger/internal/engine/challenge"
	"github.com/dkravets/hearthledger/internal/store"
)

// ChallengesHandler handles time-boxed challenge endpoints.
type ChallengesHandler struct {
	store store.Store
	log   zerolog.Logger
	now   func() time.Time
}

// NewChallengesHandler creates a new challenges handler.
func NewChallengesHandler(st store.Store, log zerolog.Logger) *ChallengesHandler {
	return &ChallengesHandler{store: st, log: log, now: time.Now}
}

// challengeView pairs a challenge with its derived progress.
type challengeView struct {
	Challenge domain.Challenge         `json:"challenge"`
	Progress  domain.ChallengeProgress `json:"progress"`
}

// ListChallenges handles GET /api/challenges
func (h *ChallengesHandler) ListChallenges(w http.ResponseWriter, r *http.Request) {
	snap, err := h.store.Snapshot(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read snapshot")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list challenges")
		return
	}

	now := h.now()
	views := make([]challengeView, 0, len(snap.Challenges))
	for _, c := range snap.Challenges {
		views = append(views, challengeView{
			Challenge: c,
			Progress:  challenge.Progress(c, snap.Habits, now),
		})
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"challenges": views,
		"count":      len(views),
	})
}

// GetProgress handles GET /api/challenges/{id}/progress
func (h *ChallengesHandler) GetProgress(w http.ResponseWriter, r *http.Request, challengeID string) {
	snap, err := h.store.Snapshot(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read snapshot")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to compute progress")
		return
	}

	for _, c := range snap.Challenges {
		if c.ID == challengeID {
			middleware.WriteJSON(w, http.StatusOK, challengeView{
				Challenge: c,
				Progress:  challenge.Progress(c, snap.Habits, h.now()),
			})
			return
		}
	}
	middleware.WriteError(w, http.StatusNotFound, "Challenge not found")
}
