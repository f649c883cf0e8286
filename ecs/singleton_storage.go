package ecs

import (
	"reflect"
	"unsafe"
)

type singletonEntry struct {
	value   reflect.Value
	dataPtr unsafe.Pointer
}

// AddSingleton stores value as the singleton of its type, replacing any previous one.
// A pointer argument stores a copy of the pointed-to value.
func (s *Storage) AddSingleton(value any) {
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}

	if entry, ok := s.singletons[v.Type()]; ok {
		entry.value.Elem().Set(v)
		return
	}

	ptr := reflect.New(v.Type())
	ptr.Elem().Set(v)
	s.singletons[v.Type()] = &singletonEntry{
		value:   ptr,
		dataPtr: ptr.UnsafePointer(),
	}
}

func (s *Storage) getSingletonEntry(t reflect.Type) *singletonEntry {
	return s.singletons[t]
}

// ReadSingleton points *target at the stored singleton of type T.
// target must be a **T. It reports false when no singleton of that type exists.
func (s *Storage) ReadSingleton(target any) bool {
	out := reflect.ValueOf(target)
	if out.Kind() != reflect.Pointer || out.Elem().Kind() != reflect.Pointer {
		panic("ReadSingleton target must be a pointer to a pointer")
	}

	entry := s.singletons[out.Elem().Type().Elem()]
	if entry == nil {
		return false
	}
	out.Elem().Set(entry.value)
	return true
}
