package ecs

import (
	"iter"
	"reflect"
	"unsafe"
)

// View reads and spawns entities through a struct of component pointers.
//
// Every field of T must be a pointer to a component type. Embedded fields are
// required; named fields tagged `ecs:"optional"` may be nil.
type View[T any] struct {
	storage     *Storage
	types       []reflect.Type
	optional    []bool
	fieldOffset []uintptr
}

// NewView inspects T once and returns a view over storage.
func NewView[T any](storage *Storage) *View[T] {
	structType := reflect.TypeFor[T]()
	if structType.Kind() != reflect.Struct {
		panic("View type parameter must be a struct")
	}

	v := &View[T]{storage: storage}
	for i := range structType.NumField() {
		field := structType.Field(i)
		if field.Type.Kind() != reflect.Pointer {
			panic("View struct fields must be pointer types")
		}

		optional := false
		if tag := field.Tag.Get("ecs"); tag != "" && !field.Anonymous {
			if tag != "optional" {
				panic("invalid ecs tag value: \"" + tag + "\" (only \"optional\" is supported)")
			}
			optional = true
		}

		v.types = append(v.types, field.Type.Elem())
		v.optional = append(v.optional, optional)
		v.fieldOffset = append(v.fieldOffset, field.Offset)
	}
	return v
}

func setField(base unsafe.Pointer, offset uintptr, component any) {
	fieldPtr := (*unsafe.Pointer)(unsafe.Add(base, offset))
	if component == nil {
		*fieldPtr = nil
		return
	}
	*fieldPtr = (*iface)(unsafe.Pointer(&component)).data
}

// Fill points ptr's fields at the entity's components. It returns false when a
// required component is missing.
func (v *View[T]) Fill(id EntityId, ptr *T) bool {
	archetype, ok := v.storage.archetype(id.ArchetypeId())
	if !ok {
		return false
	}
	return v.populateResult(unsafe.Pointer(ptr), archetype, int(id.Index()), v.buildStorageIndices(archetype))
}

// Get returns the filled view for the entity, or nil.
func (v *View[T]) Get(id EntityId) *T {
	var result T
	if !v.Fill(id, &result) {
		return nil
	}
	return &result
}

func (v *View[T]) matchesArchetype(archetype *Archetype) bool {
	for i, t := range v.types {
		if !v.optional[i] && !archetype.HasComponent(t) {
			return false
		}
	}
	return true
}

// buildStorageIndices maps each view field to its archetype column, or -1.
func (v *View[T]) buildStorageIndices(archetype *Archetype) []int {
	cols := make([]int, len(v.types))
	for i, t := range v.types {
		cols[i] = archetype.column(t)
	}
	return cols
}

func (v *View[T]) populateResult(base unsafe.Pointer, archetype *Archetype, entityIndex int, cols []int) bool {
	for i, col := range cols {
		var component any
		if col >= 0 {
			component = archetype.storages[col].Get(entityIndex)
		}
		if component == nil && !v.optional[i] {
			return false
		}
		setField(base, v.fieldOffset[i], component)
	}
	return true
}

func (v *View[T]) iterArchetype(archetype *Archetype, yield func(EntityId, T) bool) bool {
	if len(archetype.storages) == 0 {
		return true
	}

	cols := v.buildStorageIndices(archetype)
	var result T
	for entityIndex := range archetype.storages[0].Iter() {
		if !v.populateResult(unsafe.Pointer(&result), archetype, entityIndex, cols) {
			continue
		}
		if !yield(NewEntityId(archetype.id, uint32(entityIndex)), result) {
			return false
		}
	}
	return true
}

// Iter yields every entity carrying the view's required components, in
// archetype creation order and then slot order.
func (v *View[T]) Iter() iter.Seq2[EntityId, T] {
	return func(yield func(EntityId, T) bool) {
		for _, archetype := range v.storage.order {
			if v.matchesArchetype(archetype) && !v.iterArchetype(archetype, yield) {
				return
			}
		}
	}
}

// Values is Iter without the ids.
func (v *View[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, value := range v.Iter() {
			if !yield(value) {
				return
			}
		}
	}
}

// Components returns the component values referenced by data, skipping nil optional fields.
func (v *View[T]) Components(data T) []any {
	base := unsafe.Pointer(&data)

	components := make([]any, 0, len(v.types))
	for i, t := range v.types {
		ptr := *(*unsafe.Pointer)(unsafe.Add(base, v.fieldOffset[i]))
		if ptr == nil {
			if !v.optional[i] {
				panic("required component is nil in View.Spawn")
			}
			continue
		}
		components = append(components, reflect.NewAt(t, ptr).Elem().Interface())
	}
	return components
}

// Spawn creates an entity from the components referenced by data.
func (v *View[T]) Spawn(data T) EntityId {
	return v.storage.Spawn(v.Components(data)...)
}
