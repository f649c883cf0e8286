package ecs

import (
	"reflect"
	"slices"
)

// Archetype stores all entities that share one exact set of component types.
type Archetype struct {
	id       uint32
	types    []reflect.Type
	storages []iComponentStorage
}

// NewArchetype creates an archetype for sorted component types. Every type must
// be registered.
func NewArchetype(id uint32, types []reflect.Type, registry *ComponentRegistry) *Archetype {
	a := &Archetype{id: id, types: types}
	a.Reset(registry)
	return a
}

// Reset drops every entity by replacing the component storages.
func (a *Archetype) Reset(registry *ComponentRegistry) {
	a.storages = make([]iComponentStorage, len(a.types))
	for i, typ := range a.types {
		factory := registry.getFactory(typ)
		if factory == nil {
			panic("component type " + typ.String() + " not registered")
		}
		a.storages[i] = factory()
	}
}

func (a *Archetype) column(compType reflect.Type) int {
	return slices.Index(a.types, compType)
}

// Spawn appends one entity and returns its slot index.
func (a *Archetype) Spawn(components []any) uint32 {
	slot := -1
	for _, comp := range components {
		if col := a.column(componentType(comp)); col >= 0 {
			slot = a.storages[col].Append(comp)
		}
	}
	return uint32(slot)
}

// GetComponent returns a pointer to the component in the slot, or nil.
func (a *Archetype) GetComponent(entityIndex uint32, compType reflect.Type) any {
	col := a.column(compType)
	if col < 0 {
		return nil
	}
	return a.storages[col].Get(int(entityIndex))
}

// Delete empties the slot. Slots are reused by later spawns.
func (a *Archetype) Delete(entityIndex uint32) {
	for _, storage := range a.storages {
		storage.Delete(int(entityIndex))
	}
}

// Alive reports whether the slot holds an entity.
func (a *Archetype) Alive(entityIndex uint32) bool {
	return len(a.storages) > 0 && a.storages[0].Has(int(entityIndex))
}

// Len returns the number of live entities.
func (a *Archetype) Len() int {
	if len(a.storages) == 0 {
		return 0
	}
	return a.storages[0].Len()
}

func (a *Archetype) HasComponent(compType reflect.Type) bool {
	return a.column(compType) >= 0
}

func (a *Archetype) ID() uint32 {
	return a.id
}

// Types returns the sorted component types.
func (a *Archetype) Types() []reflect.Type {
	return a.types
}

// Iter yields the id of every live entity in slot order.
func (a *Archetype) Iter() func(yield func(EntityId) bool) {
	return func(yield func(EntityId) bool) {
		if len(a.storages) == 0 {
			return
		}
		for index := range a.storages[0].Iter() {
			if !yield(NewEntityId(a.id, uint32(index))) {
				return
			}
		}
	}
}
