package ecs

import (
	"reflect"
	"strings"
	"time"
)

// SchedulerStats summarises how often and how long each system ran.
type SchedulerStats struct {
	SystemCount     int
	TotalExecutions int64
	Systems         []SystemStats
}

type SystemStats struct {
	Name           string
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type systemEntry struct {
	system  System
	queries []queryExecutor

	name          string
	executions    int64
	minDuration   time.Duration
	maxDuration   time.Duration
	lastDuration  time.Duration
	totalDuration time.Duration
}

type queryExecutor interface {
	Execute()
}

// Scheduler runs registered systems in registration order against one storage.
type Scheduler struct {
	storage *Storage
	systems []*systemEntry
}

func NewScheduler(storage *Storage) *Scheduler {
	return &Scheduler{storage: storage}
}

// Storage returns the storage systems run against.
func (s *Scheduler) Storage() *Storage {
	return s.storage
}

// Register appends a system and initialises its exported Query and Singleton fields.
func (s *Scheduler) Register(system System) {
	t := reflect.TypeOf(system)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	s.systems = append(s.systems, &systemEntry{
		system:      system,
		queries:     s.bindFields(system),
		name:        t.Name(),
		minDuration: time.Duration(1<<63 - 1),
	})
}

func (s *Scheduler) bindFields(system System) []queryExecutor {
	v := reflect.ValueOf(system)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}

	var queries []queryExecutor
	storageArg := []reflect.Value{reflect.ValueOf(s.storage)}
	for i := range v.NumField() {
		field := v.Field(i)
		if !field.CanSet() || field.Kind() != reflect.Struct {
			continue
		}

		name := field.Type().Name()
		isQuery := strings.HasPrefix(name, "Query[")
		if !isQuery && !strings.HasPrefix(name, "Singleton[") {
			continue
		}

		init := field.Addr().MethodByName("Init")
		if !init.IsValid() {
			panic("Init method not found on field: " + v.Type().Field(i).Name)
		}
		init.Call(storageArg)

		if isQuery {
			queries = append(queries, field.Addr().Interface().(queryExecutor))
		}
	}
	return queries
}

// Once runs every system with the given delta time, then applies the frame's
// deferred commands. Queries are refreshed right before their system runs, so a
// system sees component writes made by earlier systems in the same frame.
func (s *Scheduler) Once(dt float64) {
	frame := newUpdateFrame(dt, s.storage)

	for _, entry := range s.systems {
		start := time.Now()
		for _, q := range entry.queries {
			q.Execute()
		}
		entry.system.Execute(frame)
		entry.record(time.Since(start))
	}

	frame.Commands.Flush(s.storage)
}

func (e *systemEntry) record(d time.Duration) {
	e.executions++
	e.lastDuration = d
	e.totalDuration += d
	e.minDuration = min(e.minDuration, d)
	e.maxDuration = max(e.maxDuration, d)
}

// GetStats returns a copy of the per-system execution statistics.
func (s *Scheduler) GetStats() *SchedulerStats {
	stats := &SchedulerStats{
		SystemCount: len(s.systems),
		Systems:     make([]SystemStats, len(s.systems)),
	}

	for i, e := range s.systems {
		var avg time.Duration
		if e.executions > 0 {
			avg = e.totalDuration / time.Duration(e.executions)
		}
		stats.Systems[i] = SystemStats{
			Name:           e.name,
			ExecutionCount: e.executions,
			MinDuration:    e.minDuration,
			MaxDuration:    e.maxDuration,
			AvgDuration:    avg,
			LastDuration:   e.lastDuration,
			TotalDuration:  e.totalDuration,
		}
		stats.TotalExecutions += e.executions
	}
	return stats
}
