package profiler

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-gltf/engine/logx"
)

// StageTiming is the measured cost of one import stage.
type StageTiming struct {
	Name     string
	Duration time.Duration

	// AllocBytes is the heap allocated while the stage ran (TotalAlloc delta).
	AllocBytes uint64

	// GCs is the number of collections that completed while the stage ran.
	GCs uint32
}

// Profiler times the stages of a single import and reports them at the PERF log level.
// A disabled Profiler records nothing and costs nothing beyond the call.
// A Profiler is not safe for concurrent use; each import owns its own.
type Profiler struct {
	enabled  bool
	start    time.Time
	memStats runtime.MemStats
	stages   []StageTiming
}

// NewProfiler creates a new Profiler.
//
// Parameters:
//   - enabled: whether stage timings and heap statistics are collected
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(enabled bool) *Profiler {
	return &Profiler{
		enabled: enabled,
		start:   time.Now(),
	}
}

// Enabled reports whether the profiler is collecting.
func (p *Profiler) Enabled() bool {
	return p != nil && p.enabled
}

// Stage starts timing a stage and returns the function that ends it.
// ReadMemStats stops the world, so heap statistics are only read when enabled.
//
// Parameters:
//   - name: the stage name reported in the log
//
// Returns:
//   - func(): call when the stage has finished
func (p *Profiler) Stage(name string) func() {
	if !p.Enabled() {
		return func() {}
	}

	runtime.ReadMemStats(&p.memStats)
	startAlloc := p.memStats.TotalAlloc
	startGC := p.memStats.NumGC
	started := time.Now()

	return func() {
		elapsed := time.Since(started)
		runtime.ReadMemStats(&p.memStats)
		p.stages = append(p.stages, StageTiming{
			Name:       name,
			Duration:   elapsed,
			AllocBytes: p.memStats.TotalAlloc - startAlloc,
			GCs:        p.memStats.NumGC - startGC,
		})
	}
}

// Stages returns the timings recorded so far, in completion order.
func (p *Profiler) Stages() []StageTiming {
	if p == nil {
		return nil
	}
	return p.stages
}

// Report logs every recorded stage and a total line for the import.
//
// Parameters:
//   - logger: the destination logger
//   - label: identifies the import, usually its file name
func (p *Profiler) Report(logger *slog.Logger, label string) {
	if !p.Enabled() {
		return
	}

	var totalAlloc uint64
	for _, s := range p.stages {
		totalAlloc += s.AllocBytes
		logx.Perf(logger, "import stage",
			"file", label,
			"stage", s.Name,
			"duration", s.Duration,
			"alloc_kb", float64(s.AllocBytes)/1024,
			"gc", s.GCs,
		)
	}

	heapMB := float64(p.memStats.Alloc) / 1024 / 1024
	logx.Perf(logger, "import total",
		"file", label,
		"duration", time.Since(p.start),
		"alloc_mb", float64(totalAlloc)/1024/1024,
		"heap_mb", heapMB,
	)
}
