package loader

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-gltf/engine/document"
	"github.com/Carmen-Shannon/oxy-gltf/engine/logx"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
)

// gltfBufferResolverImpl is the implementation of the gltfBufferResolver interface.
type gltfBufferResolverImpl struct {
	imp *gltfImport
}

// gltfBufferResolver turns the document's buffers table into byte slices.
type gltfBufferResolver interface {
	// ResolveBuffers resolves every buffer entry. GLB binary chunks are used verbatim, one chunk per
	// buffer; remaining entries are decoded from a data: URI or read from a file next to the container.
	// A buffer that cannot be resolved leaves a nil slot so later indices stay aligned.
	//
	// Returns:
	//   - [][]byte: the buffer table
	//   - []model.Diagnostic: skip and warn diagnostics for individual buffers
	ResolveBuffers() ([][]byte, []model.Diagnostic)
}

var _ gltfBufferResolver = &gltfBufferResolverImpl{}

// newGLTFBufferResolver creates a buffer resolver for an import in progress.
func newGLTFBufferResolver(imp *gltfImport) gltfBufferResolver {
	return &gltfBufferResolverImpl{imp: imp}
}

func (r *gltfBufferResolverImpl) ResolveBuffers() ([][]byte, []model.Diagnostic) {
	report := newStageReport(model.StageBuffers, r.imp.logger)
	entries := r.imp.table("buffers")
	chunks := r.imp.container.chunks

	n := max(len(entries), len(chunks))
	buffers := make([][]byte, n)
	for i := 0; i < n; i++ {
		var entry document.Value
		if i < len(entries) {
			entry = entries[i]
		}

		if i < len(chunks) {
			buffers[i] = chunks[i]
			if want := entry.IntOr("byteLength", 0); len(chunks[i]) < want {
				report.warn(i, fmt.Errorf("%w: GLB chunk holds %d bytes, byteLength is %d", ErrBufferSizeMismatch, len(chunks[i]), want))
			}
			logx.Verbose(r.imp.logger, "glTF buffer from GLB chunk", "index", i, "bytes", len(chunks[i]))
			continue
		}

		buffers[i] = r.resolveBuffer(i, entry, report)
	}
	return buffers, report.diagnostics
}

func (r *gltfBufferResolverImpl) resolveBuffer(index int, entry document.Value, report *stageReport) []byte {
	byteLength := entry.IntOr("byteLength", 0)
	uri, ok := entry.Field("uri").AsString()
	if !ok {
		report.skip(index, fmt.Errorf("%w: buffer has neither a uri nor a GLB binary chunk", ErrInvalidBufferURI))
		return nil
	}

	if strings.HasPrefix(uri, gltfDataURIPrefix) {
		data, _, err := decodeDataURI(uri)
		if err != nil {
			report.skip(index, err)
			return nil
		}
		if len(data) < byteLength {
			report.warn(index, fmt.Errorf("%w: decoded %d bytes, byteLength is %d", ErrBufferSizeMismatch, len(data), byteLength))
		}
		logx.Verbose(r.imp.logger, "glTF buffer from data URI", "index", index, "bytes", len(data))
		return data
	}

	path := resolveURIPath(r.imp.container.dir, uri)
	f, err := os.Open(path)
	if err != nil {
		report.skip(index, fmt.Errorf("%w: %w", ErrBufferUnavailable, err))
		return nil
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, int64(max(byteLength, 0))))
	if err != nil {
		report.skip(index, fmt.Errorf("%w: reading %s: %w", ErrBufferUnavailable, path, err))
		return nil
	}
	if len(data) < byteLength {
		report.warn(index, fmt.Errorf("%w: read %d of %d bytes from %s", ErrBufferSizeMismatch, len(data), byteLength, path))
	}

	r.imp.addSource(path)
	logx.Load(r.imp.logger, "read glTF buffer", "index", index, "path", path, "bytes", len(data))
	return data
}

// decodeDataURI decodes the standard base64 payload that follows the first comma of a data: URI.
// Format: data:[<mediatype>][;base64],<data>
//
// Returns:
//   - []byte: the decoded payload
//   - string: the declared media type, possibly empty
//   - error: wrapping ErrInvalidBufferURI if the URI is malformed
func decodeDataURI(uri string) ([]byte, string, error) {
	comma := strings.IndexByte(uri, ',')
	if comma < 0 {
		return nil, "", fmt.Errorf("%w: data URI has no payload separator", ErrInvalidBufferURI)
	}

	mime, _, _ := strings.Cut(uri[len(gltfDataURIPrefix):comma], ";")
	data, err := base64.StdEncoding.DecodeString(uri[comma+1:])
	if err != nil {
		return nil, mime, fmt.Errorf("%w: %w", ErrInvalidBufferURI, err)
	}
	return data, mime, nil
}

// resolveURIPath maps a relative URI reference to a file path under dir. Percent-escapes are decoded;
// an undecodable URI is used as written.
func resolveURIPath(dir, uri string) string {
	if unescaped, err := url.PathUnescape(uri); err == nil {
		uri = unescaped
	}
	return filepath.Join(dir, filepath.FromSlash(uri))
}
