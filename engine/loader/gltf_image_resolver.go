package loader

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/document"
	"github.com/Carmen-Shannon/oxy-gltf/engine/logx"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
	"github.com/anthonynsimon/bild/transform"
	"github.com/h2non/filetype"
)

// gltfImageResolverImpl is the implementation of the gltfImageResolver interface.
type gltfImageResolverImpl struct {
	imp *gltfImport
}

// gltfImageResolver decodes the images, samplers and textures tables.
type gltfImageResolver interface {
	// ResolveImages decodes every image to 8-bit RGBA. An image is read from its uri (a data: URI or a
	// file next to the container) or, without a uri, from its bufferView. A failed image leaves an
	// empty slot.
	//
	// Returns:
	//   - []model.Image: one entry per document entry
	//   - []model.Diagnostic: skips for images that could not be read or decoded
	ResolveImages() ([]model.Image, []model.Diagnostic)

	// ResolveSamplers decodes the samplers table, filling missing fields from model.DefaultSamplerOptions.
	//
	// Returns:
	//   - []model.SamplerOptions: one entry per document entry
	//   - []model.Diagnostic: warnings for entries that are not objects
	ResolveSamplers() ([]model.SamplerOptions, []model.Diagnostic)

	// ResolveTextures binds each texture to an image and sampler options. It must run after
	// ResolveImages and ResolveSamplers. A texture whose source is invalid keeps model.NoImage.
	//
	// Returns:
	//   - []model.Texture: one entry per document entry
	//   - []model.Diagnostic: skips for invalid sources, warnings for invalid samplers
	ResolveTextures() ([]model.Texture, []model.Diagnostic)
}

var _ gltfImageResolver = &gltfImageResolverImpl{}

// newGLTFImageResolver creates an image, sampler and texture resolver for an import in progress.
func newGLTFImageResolver(imp *gltfImport) gltfImageResolver {
	return &gltfImageResolverImpl{imp: imp}
}

func (r *gltfImageResolverImpl) ResolveImages() ([]model.Image, []model.Diagnostic) {
	report := newStageReport(model.StageImages, r.imp.logger)
	entries := r.imp.table("images")

	images := make([]model.Image, len(entries))
	for i, e := range entries {
		name := e.StringOr("name", "")
		mime := e.StringOr("mimeType", "")
		images[i] = model.Image{Name: name, MimeType: mime}

		data, source, err := r.imageBytes(e)
		if err != nil {
			report.skip(i, err)
			continue
		}

		if kind, _ := filetype.Match(data); kind != filetype.Unknown {
			if kind.MIME.Type != "image" {
				report.skip(i, fmt.Errorf("%w: %s holds %s data", ErrImageDecode, source, kind.MIME.Value))
				continue
			}
			if mime != "" && !strings.EqualFold(mime, kind.MIME.Value) {
				report.warn(i, fmt.Errorf("%w: declared %s, found %s", ErrImageMimeMismatch, mime, kind.MIME.Value))
			}
			images[i].MimeType = common.Coalesce(mime, kind.MIME.Value)
		}

		rgba, format, err := common.DecodeRGBA(bytes.NewReader(data))
		if err != nil {
			report.skip(i, fmt.Errorf("%w: %s: %w", ErrImageDecode, source, err))
			continue
		}
		if r.imp.flipY {
			rgba = transform.FlipV(rgba)
		}

		images[i].Width = rgba.Rect.Dx()
		images[i].Height = rgba.Rect.Dy()
		images[i].Components = common.RGBAComponents
		images[i].Pixels = rgba.Pix
		logx.Verbose(r.imp.logger, "glTF image decoded", "index", i, "source", source, "format", format,
			"width", images[i].Width, "height", images[i].Height)
	}
	return images, report.diagnostics
}

// imageBytes returns the encoded bytes of an image entry and a description of where they came from.
func (r *gltfImageResolverImpl) imageBytes(e document.Value) ([]byte, string, error) {
	if uri, ok := e.Field("uri").AsString(); ok {
		if strings.HasPrefix(uri, gltfDataURIPrefix) {
			data, _, err := decodeDataURI(uri)
			if err != nil {
				return nil, "data URI", err
			}
			return data, "data URI", nil
		}

		path := resolveURIPath(r.imp.container.dir, uri)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, path, fmt.Errorf("%w: %w", ErrImageDecode, err)
		}
		r.imp.addSource(path)
		logx.Load(r.imp.logger, "read glTF image", "path", path, "bytes", len(data))
		return data, path, nil
	}

	viewIndex := e.IntOr("bufferView", -1)
	if !e.Has("bufferView") {
		return nil, "", fmt.Errorf("%w: image has neither a uri nor a bufferView", ErrImageDecode)
	}
	_, data, err := r.imp.viewBytes(viewIndex)
	if err != nil {
		return nil, "", err
	}
	return data, fmt.Sprintf("bufferView %d", viewIndex), nil
}

func (r *gltfImageResolverImpl) ResolveSamplers() ([]model.SamplerOptions, []model.Diagnostic) {
	report := newStageReport(model.StageSamplers, r.imp.logger)
	entries := r.imp.table("samplers")

	samplers := make([]model.SamplerOptions, len(entries))
	for i, e := range entries {
		if !e.IsObject() {
			report.warn(i, fmt.Errorf("%w: sampler is %s, not an object", ErrInvalidDocument, e.Kind()))
		}
		s := model.DefaultSamplerOptions()
		s.WrapS = samplerEnum(e, "wrapS", s.WrapS, model.WrapMode.Valid, i, report)
		s.WrapT = samplerEnum(e, "wrapT", s.WrapT, model.WrapMode.Valid, i, report)
		s.MagFilter = samplerEnum(e, "magFilter", s.MagFilter, model.FilterMode.ValidMag, i, report)
		s.MinFilter = samplerEnum(e, "minFilter", s.MinFilter, model.FilterMode.ValidMin, i, report)
		samplers[i] = s
	}
	return samplers, report.diagnostics
}

// samplerEnum reads a sampler enum field, warning and keeping def when the value is absent from the enum.
func samplerEnum[T ~int](e document.Value, key string, def T, valid func(T) bool, index int, report *stageReport) T {
	if !e.Has(key) {
		return def
	}
	n, ok := e.Field(key).AsInt()
	if !ok || !valid(T(n)) {
		report.warn(index, fmt.Errorf("%w: sampler %s is %s", ErrInvalidDocument, key, e.Field(key)))
		return def
	}
	return T(n)
}

func (r *gltfImageResolverImpl) ResolveTextures() ([]model.Texture, []model.Diagnostic) {
	report := newStageReport(model.StageTextures, r.imp.logger)
	entries := r.imp.table("textures")

	textures := make([]model.Texture, len(entries))
	for i, e := range entries {
		tex := model.Texture{
			Name:    e.StringOr("name", ""),
			Image:   model.NoImage,
			Sampler: model.DefaultSamplerOptions(),
		}

		if e.Has("sampler") {
			sampler := e.IntOr("sampler", -1)
			if sampler >= 0 && sampler < len(r.imp.samplers) {
				tex.Sampler = r.imp.samplers[sampler]
			} else {
				report.warn(i, fmt.Errorf("%w: sampler %d (have %d), using defaults", ErrIndexOutOfRange, sampler, len(r.imp.samplers)))
			}
		}

		source := e.IntOr("source", -1)
		switch {
		case !common.InBounds(r.imp.images, source):
			report.skip(i, fmt.Errorf("%w: source image %d (have %d)", ErrIndexOutOfRange, source, len(r.imp.images)))
		case !r.imp.images[source].Valid():
			report.skip(i, fmt.Errorf("%w: source image %d was not decoded", ErrImageDecode, source))
		default:
			tex.Image = model.ImageHandle(source)
		}
		textures[i] = tex
	}
	return textures, report.diagnostics
}
