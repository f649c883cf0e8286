package main

import (
	"fmt"
	"io"
	"runtime"
	"text/template"
	"time"
)

type Report struct {
	// Configuration
	Duration time.Duration
	Sessions int
	Workers  int
	Step     float64

	// Results
	TotalTicks     int64
	TotalTime      time.Duration
	SimulatedTime  float64
	Entities       int
	TickTime       Stats
	PagesCollected int
	BooksDropped   int
	LevelUps       int
	MaxLevel       int
	GameOvers      map[string]int
	GCPauseMetrics bool
	MemStatsStart  runtime.MemStats
	MemStatsEnd    runtime.MemStats
}

type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	Samples []time.Duration
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	var total time.Duration
	s.Min = s.Samples[0]
	s.Max = s.Samples[0]

	for _, sample := range s.Samples {
		s.Min = min(s.Min, sample)
		s.Max = max(s.Max, sample)
		total += sample
	}
	s.Avg = total / time.Duration(len(s.Samples))
}

// Merge adds the results of a worker shard.
func (r *Report) Merge(shard *Report) {
	r.TotalTicks += shard.TotalTicks
	r.SimulatedTime += shard.SimulatedTime
	r.TickTime.Samples = append(r.TickTime.Samples, shard.TickTime.Samples...)
	r.PagesCollected += shard.PagesCollected
	r.BooksDropped += shard.BooksDropped
	r.LevelUps += shard.LevelUps
	r.MaxLevel = max(r.MaxLevel, shard.MaxLevel)
	for reason, n := range shard.GameOvers {
		r.GameOvers[reason] += n
	}
}

// Speedup is simulated seconds per wall-clock second.
func (r *Report) Speedup() float64 {
	if r.TotalTime <= 0 {
		return 0
	}
	return r.SimulatedTime / r.TotalTime.Seconds()
}

func (r *Report) Generate(w io.Writer) error {
	const reportTemplate = `
# Maze Stress Test Report

## Test Configuration
- **Run Duration:** {{.Duration}}
- **Sessions:** {{.Sessions}}
- **Workers:** {{.Workers}}
- **Tick Step:** {{printf "%.4f" .Step}}s

## Performance Results
- **Total Ticks:** {{.TotalTicks}}
- **Total Test Time:** {{.TotalTime}}
- **Simulated Time:** {{printf "%.1f" .SimulatedTime}}s ({{printf "%.0f" .Speedup}}x real time)
- **Live Entities:** {{.Entities}}
- **Tick Time:**
  - **Avg:** {{.TickTime.Avg}}
  - **Min:** {{.TickTime.Min}}
  - **Max:** {{.TickTime.Max}}

## Gameplay
- **Pages Collected:** {{.PagesCollected}}
- **Books Dropped:** {{.BooksDropped}}
- **Level Ups:** {{.LevelUps}}
- **Highest Level:** {{.MaxLevel}}
- **Game Overs:**{{range $reason, $count := .GameOvers}}
  - **{{$reason}}:** {{$count}}{{else}} none{{end}}

## Memory Usage (MB)
- Heap Alloc:     {{mb .MemStatsStart.HeapAlloc}} (start) -> {{mb .MemStatsEnd.HeapAlloc}} (end) -> delta: {{mb (bsub .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc)}}
- Total Alloc:    {{mb .MemStatsStart.TotalAlloc}} (start) -> {{mb .MemStatsEnd.TotalAlloc}} (end) -> delta: {{mb (bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc)}}
- Sys Memory:     {{mb .MemStatsStart.Sys}} (start) -> {{mb .MemStatsEnd.Sys}} (end) -> delta: {{mb (bsub .MemStatsEnd.Sys .MemStatsStart.Sys)}}
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}

{{if .GCPauseMetrics}}
## GC Pause Durations
- **Total GC Pause:** {{.MemStatsEnd.PauseTotalNs | ns}}
- **Num GC Cycles:** {{ usub .MemStatsEnd.NumGC .MemStatsStart.NumGC }}
{{end}}
`

	fm := template.FuncMap{
		"mb": func(v any) string {
			switch val := v.(type) {
			case uint64:
				return fmt.Sprintf("%.2f", float64(val)/1024/1024)
			case int64:
				return fmt.Sprintf("%.2f", float64(val)/1024/1024)
			default:
				return "N/A"
			}
		},
		"bsub": func(a, b uint64) int64 {
			return int64(a) - int64(b)
		},
		"usub": func(a, b uint32) uint32 {
			return a - b
		},
		"ns": func(ns uint64) string {
			return time.Duration(ns).String()
		},
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, r)
}
