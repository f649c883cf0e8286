package ecs

import "iter"

// Query is a View whose matching archetypes and per-frame results are cached.
// Systems declare Query fields and the Scheduler initialises and refreshes them.
type Query[T any] struct {
	view       *View[T]
	storage    *Storage
	archetypes []*Archetype
	seen       int

	entities   []EntityId
	components []T
	valid      bool
}

func NewQuery[T any](storage *Storage) *Query[T] {
	q := &Query[T]{}
	q.Init(storage)
	return q
}

// Init binds the query to storage. Called by the Scheduler on registration.
func (q *Query[T]) Init(storage *Storage) {
	q.view = NewView[T](storage)
	q.storage = storage
	q.archetypes = nil
	q.seen = 0
	q.valid = false
}

// Execute snapshots the matching entities. The Scheduler calls it before every
// system run; callers outside a scheduler call it themselves before iterating.
func (q *Query[T]) Execute() {
	// Archetypes are never removed, so new ones are always at the tail.
	for _, a := range q.storage.order[q.seen:] {
		if q.view.matchesArchetype(a) {
			q.archetypes = append(q.archetypes, a)
		}
	}
	q.seen = len(q.storage.order)

	q.entities = q.entities[:0]
	q.components = q.components[:0]
	for _, a := range q.archetypes {
		q.view.iterArchetype(a, func(id EntityId, item T) bool {
			q.entities = append(q.entities, id)
			q.components = append(q.components, item)
			return true
		})
	}
	q.valid = true
}

// Len returns the number of entities captured by the last Execute.
func (q *Query[T]) Len() int {
	return len(q.entities)
}

// Iter panics if Execute has not been called.
func (q *Query[T]) Iter() iter.Seq2[EntityId, T] {
	if !q.valid {
		panic("Query.Iter() called before Query.Execute()")
	}

	return func(yield func(EntityId, T) bool) {
		for i := range q.entities {
			if !yield(q.entities[i], q.components[i]) {
				return
			}
		}
	}
}

// Values panics if Execute has not been called.
func (q *Query[T]) Values() iter.Seq[T] {
	if !q.valid {
		panic("Query.Values() called before Query.Execute()")
	}

	return func(yield func(T) bool) {
		for _, c := range q.components {
			if !yield(c) {
				return
			}
		}
	}
}

// First returns the first captured entity, for queries that match a single entity.
func (q *Query[T]) First() (EntityId, T, bool) {
	if !q.valid || len(q.entities) == 0 {
		var zero T
		return 0, zero, false
	}
	return q.entities[0], q.components[0], true
}
