package loader

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/document"
	"github.com/Carmen-Shannon/oxy-gltf/engine/logx"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
)

// gltfAccessorDecoderImpl is the implementation of the gltfAccessorDecoder interface.
type gltfAccessorDecoderImpl struct {
	imp *gltfImport
}

// gltfAccessorDecoder decodes the bufferViews and accessors tables.
// Decoding is structural only: references are checked by the stages that follow them.
type gltfAccessorDecoder interface {
	// DecodeBufferViews decodes the bufferViews table. Missing fields take their schema defaults
	// and an unknown target decodes as model.TargetNone.
	//
	// Returns:
	//   - []model.BufferView: one entry per document entry
	//   - []model.Diagnostic: warnings for entries that are not objects
	DecodeBufferViews() ([]model.BufferView, []model.Diagnostic)

	// DecodeAccessors decodes the accessors table. Unknown component types and element shapes
	// decode as their invalid sentinels.
	//
	// Returns:
	//   - []model.Accessor: one entry per document entry
	//   - []model.Diagnostic: warnings for non-object and sparse entries
	DecodeAccessors() ([]model.Accessor, []model.Diagnostic)
}

var _ gltfAccessorDecoder = &gltfAccessorDecoderImpl{}

// newGLTFAccessorDecoder creates a buffer view and accessor decoder for an import in progress.
func newGLTFAccessorDecoder(imp *gltfImport) gltfAccessorDecoder {
	return &gltfAccessorDecoderImpl{imp: imp}
}

func (d *gltfAccessorDecoderImpl) DecodeBufferViews() ([]model.BufferView, []model.Diagnostic) {
	report := newStageReport(model.StageBufferViews, d.imp.logger)
	entries := d.imp.table("bufferViews")

	views := make([]model.BufferView, len(entries))
	for i, e := range entries {
		if !e.IsObject() {
			report.warn(i, fmt.Errorf("%w: bufferView is %s, not an object", ErrInvalidDocument, e.Kind()))
		}
		views[i] = model.BufferView{
			Buffer:     e.IntOr("buffer", -1),
			ByteOffset: e.IntOr("byteOffset", 0),
			ByteLength: e.IntOr("byteLength", 0),
			ByteStride: e.IntOr("byteStride", 0),
			Target:     model.ParseBufferTarget(e.IntOr("target", int(model.TargetNone))),
			Name:       e.StringOr("name", ""),
		}
	}

	logx.Verbose(d.imp.logger, "glTF buffer views decoded", "count", len(views))
	return views, report.diagnostics
}

func (d *gltfAccessorDecoderImpl) DecodeAccessors() ([]model.Accessor, []model.Diagnostic) {
	report := newStageReport(model.StageAccessors, d.imp.logger)
	entries := d.imp.table("accessors")

	accessors := make([]model.Accessor, len(entries))
	for i, e := range entries {
		if !e.IsObject() {
			report.warn(i, fmt.Errorf("%w: accessor is %s, not an object", ErrInvalidDocument, e.Kind()))
		}
		if e.Has("sparse") {
			report.warn(i, fmt.Errorf("%w: sparse accessors are not supported, sparse values ignored", ErrInvalidAccessor))
		}
		accessors[i] = decodeAccessor(e)
	}

	logx.Verbose(d.imp.logger, "glTF accessors decoded", "count", len(accessors))
	return accessors, report.diagnostics
}

func decodeAccessor(e document.Value) model.Accessor {
	return model.Accessor{
		BufferView:    e.IntOr("bufferView", -1),
		ByteOffset:    e.IntOr("byteOffset", 0),
		ComponentType: model.ParseComponentType(e.IntOr("componentType", int(model.ComponentInvalid))),
		Shape:         model.ParseElementShape(e.StringOr("type", "")),
		Normalized:    e.BoolOr("normalized", false),
		Count:         e.IntOr("count", 0),
		Name:          e.StringOr("name", ""),
	}
}

// --- Byte Range Resolution ---

// viewBytes returns buffer view index and the bytes it covers, checking the view against the
// buffer table and the buffer's length.
func (g *gltfImport) viewBytes(index int) (model.BufferView, []byte, error) {
	if !common.InBounds(g.views, index) {
		return model.BufferView{}, nil, fmt.Errorf("%w: bufferView %d (have %d)", ErrIndexOutOfRange, index, len(g.views))
	}
	view := g.views[index]

	if !common.InBounds(g.buffers, view.Buffer) {
		return view, nil, fmt.Errorf("%w: bufferView %d refers to buffer %d (have %d)", ErrIndexOutOfRange, index, view.Buffer, len(g.buffers))
	}
	buf := g.buffers[view.Buffer]
	if buf == nil {
		return view, nil, fmt.Errorf("%w: bufferView %d refers to buffer %d, which was not resolved", ErrBufferUnavailable, index, view.Buffer)
	}

	end := view.ByteOffset + view.ByteLength
	if view.ByteOffset < 0 || view.ByteLength < 0 || end > len(buf) {
		return view, nil, fmt.Errorf("%w: bufferView %d range [%d, %d) exceeds buffer %d of %d bytes",
			ErrIndexOutOfRange, index, view.ByteOffset, end, view.Buffer, len(buf))
	}
	return view, buf[view.ByteOffset:end:end], nil
}

// accessorData resolves accessor index to its accessor and the bytes of its buffer view, checking
// that every element it describes lies inside the view.
//
// Returns:
//   - model.Accessor: the accessor
//   - model.BufferView: the accessor's buffer view
//   - []byte: the full byte range of the buffer view
//   - error: wrapping ErrIndexOutOfRange, ErrBufferUnavailable or ErrInvalidAccessor
func (g *gltfImport) accessorData(index int) (model.Accessor, model.BufferView, []byte, error) {
	if !common.InBounds(g.accessors, index) {
		return model.Accessor{}, model.BufferView{}, nil, fmt.Errorf("%w: accessor %d (have %d)", ErrIndexOutOfRange, index, len(g.accessors))
	}
	acc := g.accessors[index]

	elemSize := acc.ElementSize()
	if elemSize == 0 {
		return acc, model.BufferView{}, nil, fmt.Errorf("%w: accessor %d has componentType %s and type %s", ErrInvalidAccessor, index, acc.ComponentType, acc.Shape)
	}
	if acc.Count < 0 || acc.ByteOffset < 0 {
		return acc, model.BufferView{}, nil, fmt.Errorf("%w: accessor %d has count %d and byteOffset %d", ErrInvalidAccessor, index, acc.Count, acc.ByteOffset)
	}

	view, data, err := g.viewBytes(acc.BufferView)
	if err != nil {
		return acc, view, nil, fmt.Errorf("accessor %d: %w", index, err)
	}

	if view.ByteStride != 0 && (view.ByteStride < elemSize || view.ByteStride > maxByteStride || view.ByteStride%4 != 0) {
		return acc, view, nil, fmt.Errorf("%w: accessor %d of %d-byte elements uses bufferView %d with byteStride %d",
			ErrInvalidAccessor, index, elemSize, acc.BufferView, view.ByteStride)
	}

	// Compared by division: count and byteOffset come from the document and may be near 2^53.
	if acc.Count > 0 {
		stride := elementStride(acc, view)
		if acc.ByteOffset > len(data)-elemSize || acc.Count-1 > (len(data)-acc.ByteOffset-elemSize)/stride {
			return acc, view, nil, fmt.Errorf("%w: accessor %d of %d elements at offset %d, stride %d, does not fit bufferView %d of %d bytes",
				ErrIndexOutOfRange, index, acc.Count, acc.ByteOffset, stride, acc.BufferView, len(data))
		}
	}
	return acc, view, data, nil
}

// maxByteStride is the largest byteStride a bufferView may declare.
const maxByteStride = 252

// elementStride is the distance between consecutive elements of acc within view.
func elementStride(acc model.Accessor, view model.BufferView) int {
	if view.ByteStride > 0 {
		return view.ByteStride
	}
	return acc.ElementSize()
}

// forEachVec3 calls fn for every element of a FLOAT VEC3 accessor. data must have been checked by accessorData.
func forEachVec3(acc model.Accessor, view model.BufferView, data []byte, fn func([3]float32)) {
	stride := elementStride(acc, view)
	for i := 0; i < acc.Count; i++ {
		off := acc.ByteOffset + i*stride
		fn([3]float32{
			math.Float32frombits(binary.LittleEndian.Uint32(data[off:])),
			math.Float32frombits(binary.LittleEndian.Uint32(data[off+4:])),
			math.Float32frombits(binary.LittleEndian.Uint32(data[off+8:])),
		})
	}
}
