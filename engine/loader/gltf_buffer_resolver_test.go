package loader

import (
	"bytes"
	"testing"

	"github.com/Carmen-Shannon/oxy-gltf/engine/logx"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolveBuffers(t *testing.T, doc obj, dir string) ([][]byte, []model.Diagnostic) {
	t.Helper()
	return newGLTFBufferResolver(newTestImport(t, doc, dir)).ResolveBuffers()
}

func TestDataURIRoundTrip(t *testing.T) {
	payloads := [][]byte{
		{},
		{0},
		{0xFF, 0xFE},
		[]byte("glTF"),
		bytes.Repeat([]byte{0x00, 0x7F, 0x80, 0xFF}, 257),
	}
	all := make([]byte, 256)
	for i := range all {
		all[i] = byte(i)
	}
	payloads = append(payloads, all)

	for _, p := range payloads {
		data, mime, err := decodeDataURI(dataURI("application/octet-stream", p))
		require.NoError(t, err)
		assert.Equal(t, "application/octet-stream", mime)
		assert.Equal(t, len(p), len(data))
		assert.True(t, bytes.Equal(p, data))
	}
}

func TestDataURIErrors(t *testing.T) {
	_, _, err := decodeDataURI("data:application/octet-stream;base64")
	assert.ErrorIs(t, err, ErrInvalidBufferURI)

	_, _, err = decodeDataURI("data:application/octet-stream;base64,@@not base64@@")
	assert.ErrorIs(t, err, ErrInvalidBufferURI)

	data, mime, err := decodeDataURI("data:,AAEC")
	require.NoError(t, err)
	assert.Empty(t, mime)
	assert.Equal(t, []byte{0, 1, 2}, data)
}

func TestResolveEmbeddedBuffer(t *testing.T) {
	buffers, diags := resolveBuffers(t, embeddedTriangleDoc(), t.TempDir())
	assert.Empty(t, diags)
	require.Len(t, buffers, 1)
	assert.Equal(t, triangleBuffer(), buffers[0])
}

func TestResolveExternalBuffer(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tri mesh.bin", triangleBuffer())

	buffers, diags := resolveBuffers(t, triangleDoc(obj{"byteLength": 44, "uri": "tri%20mesh.bin"}), dir)
	assert.Empty(t, diags)
	require.Len(t, buffers, 1)
	assert.Equal(t, triangleBuffer(), buffers[0])
}

func TestResolveExternalBufferReadsByteLength(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tri.bin", append(triangleBuffer(), 9, 9, 9, 9))

	buffers, diags := resolveBuffers(t, triangleDoc(obj{"byteLength": 44, "uri": "tri.bin"}), dir)
	assert.Empty(t, diags)
	assert.Len(t, buffers[0], 44)
}

func TestResolveExternalBufferShortRead(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tri.bin", triangleBuffer())

	buffers, diags := resolveBuffers(t, triangleDoc(obj{"byteLength": 100, "uri": "tri.bin"}), dir)
	require.Len(t, diags, 1)
	d := requireDiagnostic(t, diags, model.StageBuffers, model.SeverityWarn, ErrBufferSizeMismatch)
	assert.Equal(t, 0, d.Index)
	assert.Equal(t, triangleBuffer(), buffers[0])
}

func TestResolveMissingBufferFile(t *testing.T) {
	doc := embeddedTriangleDoc()
	doc["buffers"] = append(doc["buffers"].(arr), obj{"byteLength": 8, "uri": "missing.bin"})

	buffers, diags := resolveBuffers(t, doc, t.TempDir())
	require.Len(t, buffers, 2)
	assert.NotNil(t, buffers[0])
	assert.Nil(t, buffers[1])
	d := requireDiagnostic(t, diags, model.StageBuffers, model.SeveritySkip, ErrBufferUnavailable)
	assert.Equal(t, 1, d.Index)
}

func TestResolveBufferWithoutURI(t *testing.T) {
	buffers, diags := resolveBuffers(t, triangleDoc(obj{"byteLength": 44}), t.TempDir())
	assert.Nil(t, buffers[0])
	requireDiagnostic(t, diags, model.StageBuffers, model.SeveritySkip, ErrInvalidBufferURI)
}

func TestResolveGLBChunks(t *testing.T) {
	doc := triangleDoc(obj{"byteLength": 48})
	data := buildGLB(gltfGLBMagic, gltfGLBVersion, jsonChunk(t, doc), binChunk(triangleBuffer()))

	c, err := newGLTFParser(NewSearchPath(), logx.Discard()).ParseReader(bytes.NewReader(data), true, t.TempDir())
	require.NoError(t, err)

	imp := &gltfImport{container: c, logger: logx.Discard()}
	buffers, diags := newGLTFBufferResolver(imp).ResolveBuffers()
	require.Len(t, buffers, 1)
	assert.Equal(t, triangleBuffer(), buffers[0])
	requireDiagnostic(t, diags, model.StageBuffers, model.SeverityWarn, ErrBufferSizeMismatch)
}
