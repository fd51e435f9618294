package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-gltf/engine/logx"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
	"github.com/stretchr/testify/require"
)

type (
	obj = map[string]any
	arr = []any
)

// triangleBuffer holds three FLOAT VEC3 positions followed by three UNSIGNED_SHORT indices,
// padded to 44 bytes.
func triangleBuffer() []byte {
	var buf bytes.Buffer
	for _, v := range []float32{0, 0, 0, 1, 0, 0, 0, 2, -1} {
		_ = binary.Write(&buf, binary.LittleEndian, math.Float32bits(v))
	}
	_ = binary.Write(&buf, binary.LittleEndian, []uint16{0, 1, 2})
	buf.Write([]byte{0, 0})
	return buf.Bytes()
}

func dataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// triangleDoc is a complete single-triangle document whose only buffer is described by buffer.
func triangleDoc(buffer obj) obj {
	return obj{
		"asset":   obj{"version": "2.0", "generator": "fixtures"},
		"buffers": arr{buffer},
		"bufferViews": arr{
			obj{"buffer": 0, "byteOffset": 0, "byteLength": 36, "target": 34962},
			obj{"buffer": 0, "byteOffset": 36, "byteLength": 6, "target": 34963},
		},
		"accessors": arr{
			obj{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
			obj{"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"},
		},
		"meshes": arr{
			obj{"name": "tri", "primitives": arr{
				obj{"attributes": obj{"POSITION": 0}, "indices": 1},
			}},
		},
		"nodes":  arr{obj{"name": "root", "mesh": 0}},
		"scenes": arr{obj{"nodes": arr{0}}},
	}
}

// embeddedTriangleDoc is triangleDoc with the buffer inlined as a data URI.
func embeddedTriangleDoc() obj {
	data := triangleBuffer()
	return triangleDoc(obj{"byteLength": len(data), "uri": dataURI("application/octet-stream", data)})
}

// firstPrimitive returns the first primitive of the first mesh of doc for modification.
func firstPrimitive(doc obj) obj {
	return doc["meshes"].(arr)[0].(obj)["primitives"].(arr)[0].(obj)
}

func mustJSON(t *testing.T, doc obj) []byte {
	t.Helper()
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	return data
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// importDoc runs the whole pipeline over doc as glTF JSON, resolving URIs against dir.
func importDoc(t *testing.T, doc obj, dir string) (*model.ImportResult, error) {
	t.Helper()
	imp := newGLTFImporter(NewSearchPath(dir), logx.Discard(), false, false)
	return imp.ImportReader("test.gltf", bytes.NewReader(mustJSON(t, doc)), false, dir)
}

// newTestImport parses doc and returns the import state before any stage has run.
func newTestImport(t *testing.T, doc obj, dir string) *gltfImport {
	t.Helper()
	parser := newGLTFParser(NewSearchPath(dir), logx.Discard())
	c, err := parser.ParseReader(bytes.NewReader(mustJSON(t, doc)), false, dir)
	require.NoError(t, err)
	return &gltfImport{container: c, logger: logx.Discard(), defaultMaterial: model.NoMaterial}
}

// --- GLB Assembly ---

type glbChunk struct {
	typ  uint32
	data []byte
}

func jsonChunk(t *testing.T, doc obj) glbChunk {
	return glbChunk{typ: gltfGLBChunkJSON, data: mustJSON(t, doc)}
}

func binChunk(data []byte) glbChunk {
	return glbChunk{typ: gltfGLBChunkBIN, data: data}
}

// buildGLB frames chunks into a GLB stream. JSON payloads are padded with spaces, the rest with zeros.
func buildGLB(magic, version uint32, chunks ...glbChunk) []byte {
	var body bytes.Buffer
	for _, c := range chunks {
		data := c.data
		if pad := (4 - len(data)%4) % 4; pad > 0 {
			fill := byte(0)
			if c.typ == gltfGLBChunkJSON {
				fill = ' '
			}
			data = append(append([]byte(nil), data...), bytes.Repeat([]byte{fill}, pad)...)
		}
		_ = binary.Write(&body, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(data)), ChunkType: c.typ})
		body.Write(data)
	}

	var out bytes.Buffer
	_ = binary.Write(&out, binary.LittleEndian, gltfGLBHeader{Magic: magic, Version: version, Length: uint32(12 + body.Len())})
	out.Write(body.Bytes())
	return out.Bytes()
}

// --- Images ---

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// --- Diagnostics ---

// findDiagnostic returns the first diagnostic of the stage and severity that wraps target.
func findDiagnostic(diags []model.Diagnostic, stage model.Stage, severity model.Severity, target error) (model.Diagnostic, bool) {
	for _, d := range diags {
		if d.Stage == stage && d.Severity == severity && errors.Is(d, target) {
			return d, true
		}
	}
	return model.Diagnostic{}, false
}

func requireDiagnostic(t *testing.T, diags []model.Diagnostic, stage model.Stage, severity model.Severity, target error) model.Diagnostic {
	t.Helper()
	d, ok := findDiagnostic(diags, stage, severity, target)
	require.Truef(t, ok, "no %s %s diagnostic wrapping %q in:\n%s", stage, severity, target, formatDiagnostics(diags))
	return d
}

func formatDiagnostics(diags []model.Diagnostic) string {
	lines := make([]string, len(diags))
	for i, d := range diags {
		lines[i] = d.Error()
	}
	return strings.Join(lines, "\n")
}
