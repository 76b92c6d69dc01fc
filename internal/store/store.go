// Package store defines the document store the engine's mutations are
// applied against. The engine never sees a store: callers read a snapshot,
// call the pure engine functions, and hand the returned mutations back to
// the store as one atomic unit.
package store

import (
	"context"
	"errors"

	"github.com/dkravets/hearthledger/internal/domain"
	"github.com/dkravets/hearthledger/internal/mutation"
)

var (
	// ErrDocumentNotFound is returned for increments or deletes aimed at a
	// document the store does not hold.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrUnknownCollection is returned for mutations naming a collection
	// the store does not manage.
	ErrUnknownCollection = errors.New("unknown collection")
	// ErrUnknownField is returned for increments on a field that is not an
	// atomic counter.
	ErrUnknownField = errors.New("unknown counter field")
)

// Store is one household's document store.
//
// Apply is all-or-nothing: either every mutation in the list lands or none
// do, which is what lets a habit toggle's count update and its point
// increments stay consistent under concurrent callers.
type Store interface {
	// Snapshot returns an immutable copy of every document. Mutating the
	// returned value never affects the store.
	Snapshot(ctx context.Context) (*domain.Snapshot, error)

	// Apply atomically applies the mutation list.
	Apply(ctx context.Context, muts []mutation.Mutation) error

	// Close releases the store's resources.
	Close() error
}
