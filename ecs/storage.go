package ecs

import (
	"reflect"
	"slices"
	"unsafe"

	"github.com/kamstrup/intmap"
)

// Storage holds every entity of a world grouped by archetype, plus singleton
// components that belong to no entity.
//
// Archetypes are looked up by id and iterated in creation order, so two storages
// fed the same spawn sequence yield entities in the same order.
type Storage struct {
	archetypes *intmap.Map[uint32, *Archetype]
	order      []*Archetype
	singletons map[reflect.Type]*singletonEntry
	registry   *ComponentRegistry
}

// NewStorage creates an empty storage bound to the given component registry.
func NewStorage(registry *ComponentRegistry) *Storage {
	return &Storage{
		archetypes: intmap.New[uint32, *Archetype](32),
		singletons: make(map[reflect.Type]*singletonEntry),
		registry:   registry,
	}
}

func (s *Storage) archetype(id uint32) (*Archetype, bool) {
	return s.archetypes.Get(id)
}

// archetypeFor returns the archetype for sorted types, creating it on first use.
func (s *Storage) archetypeFor(id uint32, types []reflect.Type) *Archetype {
	if a, ok := s.archetypes.Get(id); ok {
		return a
	}
	a := NewArchetype(id, types, s.registry)
	s.archetypes.Put(id, a)
	s.order = append(s.order, a)
	return a
}

// GetArchetype returns the archetype holding exactly the given component values' types.
func (s *Storage) GetArchetype(components ...any) *Archetype {
	a, _ := s.archetype(hashTypesToUint32(extractComponentTypes(components)))
	return a
}

// Spawn creates an entity from the given component values.
func (s *Storage) Spawn(components ...any) EntityId {
	if len(components) == 0 {
		panic("cannot spawn entity without components")
	}

	types := extractComponentTypes(components)
	id := hashTypesToUint32(types)
	index := s.archetypeFor(id, types).Spawn(components)
	return NewEntityId(id, index)
}

// Delete removes the entity. Deleting an unknown or already deleted id is a no-op.
func (s *Storage) Delete(id EntityId) {
	if a, ok := s.archetype(id.ArchetypeId()); ok {
		a.Delete(id.Index())
	}
}

// Alive reports whether the entity still has its components.
func (s *Storage) Alive(id EntityId) bool {
	a, ok := s.archetype(id.ArchetypeId())
	return ok && a.Alive(id.Index())
}

// Clear deletes every entity while keeping archetypes and singletons, so cached
// queries stay valid across a world rebuild.
func (s *Storage) Clear() {
	for _, a := range s.order {
		a.Reset(s.registry)
	}
}

// Count returns the number of live entities.
func (s *Storage) Count() int {
	n := 0
	for _, a := range s.order {
		n += a.Len()
	}
	return n
}

// GetComponent returns a pointer to the entity's component of the given type, or nil.
func (s *Storage) GetComponent(id EntityId, compType reflect.Type) any {
	a, ok := s.archetype(id.ArchetypeId())
	if !ok {
		return nil
	}
	return a.GetComponent(id.Index(), compType)
}

// HasComponent reports whether the entity's archetype carries the component type.
func (s *Storage) HasComponent(id EntityId, compType reflect.Type) bool {
	a, ok := s.archetype(id.ArchetypeId())
	return ok && a.HasComponent(compType)
}

// ComponentTypes lists the component types of the entity's archetype, or nil
// for an unknown entity.
func (s *Storage) ComponentTypes(id EntityId) []reflect.Type {
	a, ok := s.archetype(id.ArchetypeId())
	if !ok || !a.Alive(id.Index()) {
		return nil
	}
	return a.Types()
}

// extractComponentTypes returns the sorted value types of the given components.
func extractComponentTypes(components []any) []reflect.Type {
	types := make([]reflect.Type, 0, len(components))
	for _, comp := range components {
		types = append(types, componentType(comp))
	}
	sortTypes(types)
	return types
}

func componentType(comp any) reflect.Type {
	t := reflect.TypeOf(comp)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func:
		panic("components cannot be pointers, maps, channels, or functions")
	}
	return t
}

func sortTypes(types []reflect.Type) {
	slices.SortFunc(types, func(a, b reflect.Type) int {
		switch as, bs := a.String(), b.String(); {
		case as < bs:
			return -1
		case as > bs:
			return 1
		}
		return 0
	})
}

// hashTypesToUint32 is FNV-1a over the runtime type pointers of sorted types.
func hashTypesToUint32(types []reflect.Type) uint32 {
	const prime uint32 = 16777619
	h := uint32(2166136261)

	for _, t := range types {
		ptr := uintptr((*iface)(unsafe.Pointer(&t)).data)
		val := uint32(ptr)
		if unsafe.Sizeof(uintptr(0)) == 8 {
			val ^= uint32(uint64(ptr) >> 32)
		}
		h ^= val
		h *= prime
	}
	return h
}

type ComponentReader interface {
	GetComponent(EntityId, reflect.Type) any
}

// ReadComponent returns the entity's T component, or nil when it has none.
func ReadComponent[T any](reader ComponentReader, entityId EntityId) *T {
	c, _ := reader.GetComponent(entityId, reflect.TypeFor[T]()).(*T)
	return c
}
