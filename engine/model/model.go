package model

import (
	"github.com/google/uuid"
)

// ImportResult is the output of one import: the active scene's nodes plus the arenas they refer to.
// Every cross reference is a handle into one of the slices below. Tables keep empty slots for
// entries that failed to decode so that handles line up with the source document.
type ImportResult struct {
	// ID identifies this import. It is zero for a failed import.
	ID uuid.UUID

	// Name is the name the result was requested under; Path is the resolved source file, if any.
	Name string
	Path string

	// Sources are the external buffer and image files the import read, resolved like Path.
	Sources []string

	// Nodes are the root nodes of the active scene, in document order.
	Nodes []SceneNode

	Meshes     []Mesh
	Geometries []Geometry

	// Materials holds the decoded materials followed by the single default material.
	Materials []Material

	// DefaultMaterial is shared by every primitive without a valid material of its own.
	DefaultMaterial MaterialHandle

	Textures []Texture
	Images   []Image

	// Diagnostics collects every warn and skip raised during the import.
	Diagnostics []Diagnostic
}

// Empty reports whether the result carries no tables, as returned by a failed import.
func (r *ImportResult) Empty() bool {
	return r == nil || (len(r.Nodes) == 0 && len(r.Meshes) == 0 && len(r.Materials) == 0 &&
		len(r.Textures) == 0 && len(r.Images) == 0 && len(r.Geometries) == 0)
}

// Mesh returns the mesh for h, or false if h is out of range.
// Files returns Path, when set, followed by Sources.
func (r *ImportResult) Files() []string {
	if r == nil {
		return nil
	}
	files := make([]string, 0, len(r.Sources)+1)
	if r.Path != "" {
		files = append(files, r.Path)
	}
	return append(files, r.Sources...)
}

func (r *ImportResult) Mesh(h MeshHandle) (*Mesh, bool) {
	if h < 0 || int(h) >= len(r.Meshes) {
		return nil, false
	}
	return &r.Meshes[h], true
}

// Geometry returns the geometry for h, or false if h is out of range.
func (r *ImportResult) Geometry(h GeometryHandle) (*Geometry, bool) {
	if h < 0 || int(h) >= len(r.Geometries) {
		return nil, false
	}
	return &r.Geometries[h], true
}

// Material returns the material for h, or false if h is out of range.
func (r *ImportResult) Material(h MaterialHandle) (*Material, bool) {
	if h < 0 || int(h) >= len(r.Materials) {
		return nil, false
	}
	return &r.Materials[h], true
}

// Texture returns the texture for h, or false if h is out of range or the slot was skipped.
func (r *ImportResult) Texture(h TextureHandle) (*Texture, bool) {
	if h < 0 || int(h) >= len(r.Textures) || !r.Textures[h].Valid() {
		return nil, false
	}
	return &r.Textures[h], true
}

// Image returns the image for h, or false if h is out of range or the slot failed to decode.
func (r *ImportResult) Image(h ImageHandle) (*Image, bool) {
	if h < 0 || int(h) >= len(r.Images) || !r.Images[h].Valid() {
		return nil, false
	}
	return &r.Images[h], true
}

// AllPrimitives flattens the primitives of every mesh, in mesh order.
func (r *ImportResult) AllPrimitives() []Primitive {
	var out []Primitive
	for _, m := range r.Meshes {
		out = append(out, m.Primitives...)
	}
	return out
}

// DiagnosticsOf returns the diagnostics with the given severity.
func (r *ImportResult) DiagnosticsOf(s Severity) []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Severity == s {
			out = append(out, d)
		}
	}
	return out
}
