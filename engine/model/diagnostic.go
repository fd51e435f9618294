package model

import "fmt"

// Severity classifies a problem found during import.
type Severity int

const (
	// SeverityWarn means the entry was kept with a default or partial value.
	SeverityWarn Severity = iota
	// SeveritySkip means the affected entry was dropped or left empty.
	SeveritySkip
	// SeverityFatal aborts the whole import.
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityWarn:
		return "warn"
	case SeveritySkip:
		return "skip"
	case SeverityFatal:
		return "fatal"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Stage names the pipeline stage, and the document table, a Diagnostic belongs to.
type Stage string

const (
	StageContainer   Stage = "container"
	StageBuffers     Stage = "buffers"
	StageBufferViews Stage = "bufferViews"
	StageAccessors   Stage = "accessors"
	StageImages      Stage = "images"
	StageSamplers    Stage = "samplers"
	StageTextures    Stage = "textures"
	StageMaterials   Stage = "materials"
	StageMeshes      Stage = "meshes"
	StageNodes       Stage = "nodes"
)

// Diagnostic is a non-fatal problem attached to one table entry. It wraps the underlying error,
// so errors.Is works against the loader's sentinel errors.
type Diagnostic struct {
	Stage    Stage
	Severity Severity

	// Index is the entry's position in its table, -1 when the problem is not tied to one entry.
	Index int

	Err error
}

func (d Diagnostic) Error() string {
	if d.Index < 0 {
		return fmt.Sprintf("%s: %s: %v", d.Stage, d.Severity, d.Err)
	}
	return fmt.Sprintf("%s[%d]: %s: %v", d.Stage, d.Index, d.Severity, d.Err)
}

func (d Diagnostic) Unwrap() error {
	return d.Err
}
