package loader

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gltf/engine/logx"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBufferViewDefaults(t *testing.T) {
	doc := obj{
		"asset": obj{"version": "2.0"},
		"bufferViews": arr{
			obj{},
			obj{"buffer": 2, "byteOffset": 4, "byteLength": 16, "byteStride": 8, "target": 1, "name": "v"},
			"not an object",
		},
	}

	views, diags := newGLTFAccessorDecoder(newTestImport(t, doc, t.TempDir())).DecodeBufferViews()
	require.Len(t, views, 3)

	assert.Equal(t, model.BufferView{Buffer: -1, Target: model.TargetNone}, views[0])
	assert.Equal(t, model.BufferView{Buffer: 2, ByteOffset: 4, ByteLength: 16, ByteStride: 8, Target: model.TargetNone, Name: "v"}, views[1])
	assert.Equal(t, model.BufferView{Buffer: -1, Target: model.TargetNone}, views[2])

	d := requireDiagnostic(t, diags, model.StageBufferViews, model.SeverityWarn, ErrInvalidDocument)
	assert.Equal(t, 2, d.Index)
}

func TestDecodeAccessorDefaults(t *testing.T) {
	doc := obj{
		"asset": obj{"version": "2.0"},
		"accessors": arr{
			obj{},
			obj{"bufferView": 1, "byteOffset": 8, "componentType": 5121, "type": "VEC4", "normalized": true, "count": 7},
			obj{"componentType": 5124, "type": "MAT4", "count": 1},
			obj{"componentType": 5126, "type": "SCALAR", "count": 2, "sparse": obj{"count": 1}},
		},
	}

	accessors, diags := newGLTFAccessorDecoder(newTestImport(t, doc, t.TempDir())).DecodeAccessors()
	require.Len(t, accessors, 4)

	assert.Equal(t, model.Accessor{BufferView: -1, ComponentType: model.ComponentInvalid, Shape: model.ShapeInvalid}, accessors[0])
	assert.Equal(t, model.Accessor{
		BufferView:    1,
		ByteOffset:    8,
		ComponentType: model.ComponentUnsignedByte,
		Shape:         model.ShapeVec4,
		Normalized:    true,
		Count:         7,
	}, accessors[1])
	assert.Equal(t, model.ComponentInvalid, accessors[2].ComponentType)
	assert.Equal(t, model.ShapeInvalid, accessors[2].Shape)
	assert.Zero(t, accessors[2].ElementSize())

	d := requireDiagnostic(t, diags, model.StageAccessors, model.SeverityWarn, ErrInvalidAccessor)
	assert.Equal(t, 3, d.Index)
}

func testAccessorImport(buffer []byte, views []model.BufferView, accessors []model.Accessor) *gltfImport {
	return &gltfImport{
		logger:    logx.Discard(),
		buffers:   [][]byte{buffer, nil},
		views:     views,
		accessors: accessors,
	}
}

func TestViewBytes(t *testing.T) {
	buf := triangleBuffer()
	imp := testAccessorImport(buf, []model.BufferView{
		{Buffer: 0, ByteOffset: 36, ByteLength: 6},
		{Buffer: 0, ByteOffset: 40, ByteLength: 8},
		{Buffer: 1, ByteLength: 4},
		{Buffer: 5, ByteLength: 4},
		{Buffer: 0, ByteOffset: -4, ByteLength: 4},
	}, nil)

	_, data, err := imp.viewBytes(0)
	require.NoError(t, err)
	assert.Equal(t, buf[36:42], data)

	_, _, err = imp.viewBytes(1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, _, err = imp.viewBytes(2)
	assert.ErrorIs(t, err, ErrBufferUnavailable)

	_, _, err = imp.viewBytes(3)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, _, err = imp.viewBytes(4)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, _, err = imp.viewBytes(9)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestAccessorData(t *testing.T) {
	views := []model.BufferView{
		{Buffer: 0, ByteLength: 36},
		{Buffer: 0, ByteLength: 44, ByteStride: 16},
		{Buffer: 0, ByteLength: 44, ByteStride: 1 << 52},
		{Buffer: 0, ByteLength: 44, ByteStride: 8},
		{Buffer: 0, ByteLength: 44, ByteStride: 14},
	}
	accessors := []model.Accessor{
		{BufferView: 0, ComponentType: model.ComponentFloat, Shape: model.ShapeVec3, Count: 3},
		{BufferView: 0, ComponentType: model.ComponentFloat, Shape: model.ShapeVec3, Count: 4},
		{BufferView: 0, ByteOffset: 4, ComponentType: model.ComponentFloat, Shape: model.ShapeVec3, Count: 3},
		{BufferView: 1, ComponentType: model.ComponentFloat, Shape: model.ShapeVec3, Count: 3},
		{BufferView: 0, ComponentType: model.ComponentInvalid, Shape: model.ShapeVec3, Count: 3},
		{BufferView: 0, ComponentType: model.ComponentFloat, Shape: model.ShapeVec3, Count: -1},
		{BufferView: 7, ComponentType: model.ComponentFloat, Shape: model.ShapeScalar, Count: 1},
		{BufferView: 0, ComponentType: model.ComponentFloat, Shape: model.ShapeVec3, Count: 0},
		{BufferView: 2, ComponentType: model.ComponentFloat, Shape: model.ShapeVec3, Count: 4097},
		{BufferView: 3, ComponentType: model.ComponentFloat, Shape: model.ShapeVec3, Count: 2},
		{BufferView: 4, ComponentType: model.ComponentFloat, Shape: model.ShapeVec3, Count: 2},
		{BufferView: 0, ByteOffset: 1 << 52, ComponentType: model.ComponentFloat, Shape: model.ShapeVec3, Count: 1},
		{BufferView: 0, ComponentType: model.ComponentFloat, Shape: model.ShapeVec3, Count: 1 << 52},
	}
	imp := testAccessorImport(triangleBuffer(), views, accessors)

	_, _, data, err := imp.accessorData(0)
	require.NoError(t, err)
	assert.Len(t, data, 36)

	_, _, _, err = imp.accessorData(1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange, "count past the end of the view")

	_, _, _, err = imp.accessorData(2)
	assert.ErrorIs(t, err, ErrIndexOutOfRange, "offset pushes the last element out")

	// 2*16 + 12 = 44 bytes fit exactly in the strided view.
	_, _, _, err = imp.accessorData(3)
	assert.NoError(t, err)

	_, _, _, err = imp.accessorData(4)
	assert.ErrorIs(t, err, ErrInvalidAccessor)

	_, _, _, err = imp.accessorData(5)
	assert.ErrorIs(t, err, ErrInvalidAccessor)

	_, _, _, err = imp.accessorData(6)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, _, _, err = imp.accessorData(7)
	assert.NoError(t, err)

	_, _, _, err = imp.accessorData(8)
	assert.ErrorIs(t, err, ErrInvalidAccessor, "stride above 252")

	_, _, _, err = imp.accessorData(9)
	assert.ErrorIs(t, err, ErrInvalidAccessor, "stride smaller than the element")

	_, _, _, err = imp.accessorData(10)
	assert.ErrorIs(t, err, ErrInvalidAccessor, "stride not a multiple of 4")

	_, _, _, err = imp.accessorData(11)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, _, _, err = imp.accessorData(12)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, _, _, err = imp.accessorData(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestForEachVec3(t *testing.T) {
	imp := testAccessorImport(triangleBuffer(),
		[]model.BufferView{{Buffer: 0, ByteLength: 36}},
		[]model.Accessor{{BufferView: 0, ComponentType: model.ComponentFloat, Shape: model.ShapeVec3, Count: 3}})

	acc, view, data, err := imp.accessorData(0)
	require.NoError(t, err)

	var got [][3]float32
	forEachVec3(acc, view, data, func(p [3]float32) { got = append(got, p) })
	assert.Equal(t, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 2, -1}}, got)
}
