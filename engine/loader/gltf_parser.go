package loader

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-gltf/engine/document"
	"github.com/Carmen-Shannon/oxy-gltf/engine/logx"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
)

// gltfParserImpl is the implementation of the gltfParser interface.
type gltfParserImpl struct {
	searchPath SearchPath
	logger     *slog.Logger
}

// gltfParser defines the interface for reading a glTF/GLB container.
// It resolves the file against the search path, splits GLB framing into the JSON document and its
// binary chunks, and validates the asset header. Every error it returns is fatal to the import.
// This is internal to the loader package.
type gltfParser interface {
	// Parse resolves name against the search path and reads the container.
	// The .glb extension (any case) selects the binary path; anything else is parsed as JSON.
	//
	// Parameters:
	//   - name: the file name, relative to a search root
	//
	// Returns:
	//   - *gltfContainer: the validated document, binary chunks and container directory
	//   - error: error if the file is missing or the container is invalid
	Parse(name string) (*gltfContainer, error)

	// ParseReader reads a container from a stream.
	// Use this when loading from embedded resources or network streams.
	//
	// Parameters:
	//   - r: reader containing glTF JSON or GLB data
	//   - isGLB: true if the data is in GLB format
	//   - dir: the directory external URIs resolve against
	//
	// Returns:
	//   - *gltfContainer: the validated document, binary chunks and container directory
	//   - error: error if the container is invalid
	ParseReader(r io.Reader, isGLB bool, dir string) (*gltfContainer, error)
}

var _ gltfParser = &gltfParserImpl{}

// newGLTFParser creates a new container parser.
//
// Parameters:
//   - searchPath: the roots file names are resolved against
//   - logger: the destination for progress and diagnostics
//
// Returns:
//   - gltfParser: the parser
func newGLTFParser(searchPath SearchPath, logger *slog.Logger) gltfParser {
	return &gltfParserImpl{
		searchPath: searchPath,
		logger:     logx.OrDiscard(logger),
	}
}

func (p *gltfParserImpl) Parse(name string) (*gltfContainer, error) {
	path, err := p.searchPath.Resolve(name, p.logger)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	c, err := p.ParseReader(bufio.NewReader(f), isGLBPath(path), filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	c.path = path

	logx.Load(p.logger, "read glTF container", "path", path, "glb", c.isGLB, "chunks", len(c.chunks))
	return c, nil
}

func (p *gltfParserImpl) ParseReader(r io.Reader, isGLB bool, dir string) (*gltfContainer, error) {
	c := &gltfContainer{dir: dir, isGLB: isGLB}

	var err error
	if isGLB {
		c.doc, c.chunks, err = p.parseGLB(r)
	} else {
		c.doc, err = document.Decode(r)
		if err != nil {
			err = fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}
	}
	if err != nil {
		return nil, err
	}

	if c.diagnostics, err = p.validate(c.doc); err != nil {
		return nil, err
	}
	return c, nil
}

// parseGLB reads the GLB header, the leading JSON chunk and every following BIN chunk.
func (p *gltfParserImpl) parseGLB(r io.Reader) (document.Value, [][]byte, error) {
	var header gltfGLBHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return document.Value{}, nil, fmt.Errorf("%w: header: %w", ErrTruncatedContainer, err)
	}
	if header.Magic != gltfGLBMagic {
		return document.Value{}, nil, fmt.Errorf("%w: %#08x", ErrInvalidGLBMagic, header.Magic)
	}
	if header.Version != gltfGLBVersion {
		return document.Value{}, nil, fmt.Errorf("%w: found %d", ErrInvalidGLBVersion, header.Version)
	}
	logx.Verbose(p.logger, "GLB header", "version", header.Version, "length", header.Length)

	chunkHeader, ok, err := readGLBChunkHeader(r, 0)
	if err != nil {
		return document.Value{}, nil, err
	}
	if !ok {
		return document.Value{}, nil, fmt.Errorf("%w: missing JSON chunk", ErrTruncatedContainer)
	}
	if chunkHeader.ChunkType != gltfGLBChunkJSON {
		return document.Value{}, nil, fmt.Errorf("%w: chunk 0 has type %#08x, want JSON", ErrInvalidChunkType, chunkHeader.ChunkType)
	}
	jsonData, err := readGLBChunkData(r, 0, chunkHeader)
	if err != nil {
		return document.Value{}, nil, err
	}

	doc, err := document.Parse(jsonData)
	if err != nil {
		return document.Value{}, nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	var chunks [][]byte
	for i := 1; ; i++ {
		chunkHeader, ok, err := readGLBChunkHeader(r, i)
		if err != nil {
			return document.Value{}, nil, err
		}
		if !ok {
			break
		}
		if chunkHeader.ChunkType != gltfGLBChunkBIN {
			return document.Value{}, nil, fmt.Errorf("%w: chunk %d has type %#08x, want BIN", ErrInvalidChunkType, i, chunkHeader.ChunkType)
		}

		data, err := readGLBChunkData(r, i, chunkHeader)
		if err != nil {
			return document.Value{}, nil, err
		}
		logx.Verbose(p.logger, "GLB binary chunk", "index", i, "bytes", len(data))
		chunks = append(chunks, data)
	}

	return doc, chunks, nil
}

// validate checks the asset header and extension lists. Required extensions are fatal and reported
// together; used extensions are returned as warnings.
func (p *gltfParserImpl) validate(doc document.Value) ([]model.Diagnostic, error) {
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: root is %s, not an object", ErrInvalidDocument, doc.Kind())
	}

	asset, ok := doc.Get("asset")
	if !ok || !asset.IsObject() {
		return nil, ErrMissingAsset
	}

	version := asset.StringOr("version", "")
	logx.Verbose(p.logger, "glTF asset", "version", version, "generator", asset.StringOr("generator", ""))
	if version != gltfAssetVersion {
		return nil, fmt.Errorf("%w: found %q", ErrInvalidGLTFVersion, version)
	}

	var errs []error
	for _, ext := range doc.Field("extensionsRequired").Elems() {
		p.logger.Error("glTF required extension is not supported", "extension", ext.String())
		errs = append(errs, fmt.Errorf("%w: %s", ErrUnsupportedExtension, ext.String()))
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	report := newStageReport(model.StageContainer, p.logger)
	for i, ext := range doc.Field("extensionsUsed").Elems() {
		report.warn(i, fmt.Errorf("%w: %s", ErrExtensionUsed, ext.String()))
	}
	return report.diagnostics, nil
}

// readGLBChunkHeader reads the next chunk header. It reports false at a clean end of stream.
func readGLBChunkHeader(r io.Reader, index int) (gltfGLBChunkHeader, bool, error) {
	var header gltfGLBChunkHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		if err == io.EOF {
			return header, false, nil
		}
		return header, false, fmt.Errorf("%w: chunk %d header: %w", ErrTruncatedContainer, index, err)
	}
	return header, true, nil
}

// readGLBChunkData reads a chunk payload. The buffer grows with the bytes actually present, so a
// corrupt length cannot force a huge allocation up front.
func readGLBChunkData(r io.Reader, index int, header gltfGLBChunkHeader) ([]byte, error) {
	var buf bytes.Buffer
	n, err := io.CopyN(&buf, r, int64(header.ChunkLength))
	if err != nil {
		return nil, fmt.Errorf("%w: chunk %d: read %d of %d bytes", ErrTruncatedContainer, index, n, header.ChunkLength)
	}
	return buf.Bytes(), nil
}

func isGLBPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".glb")
}
