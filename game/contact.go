package game

import (
	"github.com/plus3/shelfmaze/ecs"
	"github.com/zyedidia/generic/mapset"
)

//go:generate go run golang.org/x/tools/cmd/stringer -type=ContactKind -trimprefix=Contact

// ContactKind classifies a touch between the player and something else.
type ContactKind int

const (
	ContactPlayerWall ContactKind = iota + 1
	ContactPlayerCollectible
	ContactPlayerHazard
)

// Contact is one touch observed during a tick. Other is the shelf, page or book.
type Contact struct {
	Kind  ContactKind
	Other ecs.EntityId
}

// ContactBuffer accumulates contacts between the systems that detect them and
// the router that acts on them.
type ContactBuffer struct {
	contacts []Contact
}

func (b *ContactBuffer) Add(kind ContactKind, other ecs.EntityId) {
	b.contacts = append(b.contacts, Contact{Kind: kind, Other: other})
}

func (b *ContactBuffer) Drain() []Contact {
	c := b.contacts
	b.contacts = nil
	return c
}

// ContactHandler reacts to one contact.
type ContactHandler func(frame *ecs.UpdateFrame, other ecs.EntityId)

// CollisionRouter dispatches contacts to the handler registered for their kind.
type CollisionRouter struct {
	handlers map[ContactKind]ContactHandler
}

func NewCollisionRouter() *CollisionRouter {
	return &CollisionRouter{handlers: make(map[ContactKind]ContactHandler)}
}

// Handle registers h for kind, replacing any earlier handler.
func (r *CollisionRouter) Handle(kind ContactKind, h ContactHandler) {
	r.handlers[kind] = h
}

// Route dispatches contacts in order. A (kind, entity) pair repeated within the
// batch is dispatched once and kinds without a handler are ignored. It returns
// the number of handler calls.
func (r *CollisionRouter) Route(frame *ecs.UpdateFrame, contacts []Contact) int {
	seen := mapset.New[Contact]()
	dispatched := 0
	for _, c := range contacts {
		h, ok := r.handlers[c.Kind]
		if !ok || seen.Has(c) {
			continue
		}
		seen.Put(c)
		h(frame, c.Other)
		dispatched++
	}
	return dispatched
}
