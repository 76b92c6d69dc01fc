// Package mutation defines the persistence instructions the engine emits.
// The engine never writes anywhere itself; every operation returns a list
// of mutations and the store applies the whole list atomically.
package mutation

import "fmt"

// Kind is the mutation operation.
type Kind string

const (
	// KindPut replaces (or creates) a whole document.
	KindPut Kind = "put"
	// KindDelete removes a document.
	KindDelete Kind = "delete"
	// KindIncrement atomically adds Delta to a numeric counter field. It
	// maps onto the store's atomic-increment primitive so concurrent
	// togglers never lose point updates.
	KindIncrement Kind = "increment"
)

// Mutation is one desired state change, addressed by collection and
// document id.
type Mutation struct {
	Kind       Kind
	Collection string
	ID         string
	Doc        any    // KindPut: the full updated record
	Field      string // KindIncrement: counter field name
	Delta      int    // KindIncrement: amount to add
}

// Put builds a whole-document replacement.
func Put(collection, id string, doc any) Mutation {
	return Mutation{Kind: KindPut, Collection: collection, ID: id, Doc: doc}
}

// Delete builds a document removal.
func Delete(collection, id string) Mutation {
	return Mutation{Kind: KindDelete, Collection: collection, ID: id}
}

// Increment builds an atomic counter bump.
func Increment(collection, id, field string, delta int) Mutation {
	return Mutation{Kind: KindIncrement, Collection: collection, ID: id, Field: field, Delta: delta}
}

func (m Mutation) String() string {
	switch m.Kind {
	case KindIncrement:
		return fmt.Sprintf("increment %s/%s.%s by %d", m.Collection, m.ID, m.Field, m.Delta)
	case KindDelete:
		return fmt.Sprintf("delete %s/%s", m.Collection, m.ID)
	default:
		return fmt.Sprintf("put %s/%s", m.Collection, m.ID)
	}
}
