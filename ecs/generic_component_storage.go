package ecs

import (
	"iter"
	"reflect"
)

// ComponentRegistry maps component types to storage factories. Each Storage owns one.
type ComponentRegistry struct {
	factories map[reflect.Type]func() iComponentStorage
}

func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		factories: make(map[reflect.Type]func() iComponentStorage),
	}
}

// RegisterComponent makes T usable as a component. Registering twice is harmless.
func RegisterComponent[T any](r *ComponentRegistry) {
	r.factories[reflect.TypeFor[T]()] = func() iComponentStorage {
		return &genericComponentStorage[T]{}
	}
}

func (r *ComponentRegistry) getFactory(t reflect.Type) func() iComponentStorage {
	return r.factories[t]
}

const genericBlockSize = 64

// genericComponentStorage keeps components of type T in fixed-size blocks so
// pointers handed out by Get stay valid while the storage grows.
type genericComponentStorage[T any] struct {
	blocks    [][genericBlockSize]T
	filled    [][genericBlockSize]bool
	freeSlots []int
	nextIndex int
	live      int
}

func (cs *genericComponentStorage[T]) locate(index int) (block, slot int, ok bool) {
	if index < 0 {
		return 0, 0, false
	}
	block, slot = index/genericBlockSize, index%genericBlockSize
	return block, slot, block < len(cs.blocks)
}

// Append stores item (a T or *T) and returns its slot, or -1 for a foreign type.
func (cs *genericComponentStorage[T]) Append(item any) int {
	var value T
	switch v := item.(type) {
	case *T:
		value = *v
	case T:
		value = v
	default:
		return -1
	}

	var index int
	if n := len(cs.freeSlots); n > 0 {
		index = cs.freeSlots[n-1]
		cs.freeSlots = cs.freeSlots[:n-1]
	} else {
		index = cs.nextIndex
		cs.nextIndex++
		if index/genericBlockSize >= len(cs.blocks) {
			cs.blocks = append(cs.blocks, [genericBlockSize]T{})
			cs.filled = append(cs.filled, [genericBlockSize]bool{})
		}
	}

	block, slot, _ := cs.locate(index)
	cs.blocks[block][slot] = value
	cs.filled[block][slot] = true
	cs.live++
	return index
}

func (cs *genericComponentStorage[T]) Get(index int) any {
	block, slot, ok := cs.locate(index)
	if !ok || !cs.filled[block][slot] {
		return nil
	}
	return &cs.blocks[block][slot]
}

func (cs *genericComponentStorage[T]) Delete(index int) {
	block, slot, ok := cs.locate(index)
	if !ok || !cs.filled[block][slot] {
		return
	}

	var zero T
	cs.blocks[block][slot] = zero
	cs.filled[block][slot] = false
	cs.freeSlots = append(cs.freeSlots, index)
	cs.live--
}

func (cs *genericComponentStorage[T]) Has(index int) bool {
	block, slot, ok := cs.locate(index)
	return ok && cs.filled[block][slot]
}

func (cs *genericComponentStorage[T]) Len() int {
	return cs.live
}

func (cs *genericComponentStorage[T]) Iter() iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := 0; i < cs.nextIndex; i++ {
			if cs.filled[i/genericBlockSize][i%genericBlockSize] && !yield(i) {
				return
			}
		}
	}
}
