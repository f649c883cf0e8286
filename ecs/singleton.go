package ecs

import (
	"reflect"
	"unsafe"
)

// Singleton gives typed access to the one component of type T that lives
// outside any entity: session state, inputs, buffers shared between systems.
type Singleton[T any] struct {
	storage *Storage
	ptr     unsafe.Pointer
}

// NewSingleton returns an accessor for T, storing initializer (or the zero value)
// first when storage has no T yet.
func NewSingleton[T any](storage *Storage, initializer ...T) *Singleton[T] {
	if storage.getSingletonEntry(reflect.TypeFor[T]()) == nil {
		var value T
		if len(initializer) > 0 {
			value = initializer[0]
		}
		storage.AddSingleton(value)
	}

	s := &Singleton[T]{}
	s.Init(storage)
	return s
}

// Init binds the accessor to storage. Called by the Scheduler on registration.
func (s *Singleton[T]) Init(storage *Storage) {
	s.storage = storage
	s.ptr = nil
	s.refresh()
}

func (s *Singleton[T]) refresh() {
	if s.storage == nil {
		return
	}
	if entry := s.storage.getSingletonEntry(reflect.TypeFor[T]()); entry != nil {
		s.ptr = entry.dataPtr
	}
}

// Get returns the stored value, or nil when storage holds no T.
func (s *Singleton[T]) Get() *T {
	if s.ptr == nil {
		s.refresh()
	}
	return (*T)(s.ptr)
}

// Set overwrites the stored value, creating it when missing.
func (s *Singleton[T]) Set(value T) {
	if p := s.Get(); p != nil {
		*p = value
		return
	}
	s.storage.AddSingleton(value)
	s.refresh()
}

func (s *Singleton[T]) Exists() bool {
	return s.Get() != nil
}
