package model

import (
	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// --- Renderer Mapping ---
//
// The importer never touches a GPU. These helpers translate the imported layout into
// the wgpu enums a renderer needs to build vertex state, samplers and textures.

// VertexFormat returns the wgpu vertex format matching the attribute's component type, count and
// normalization. It returns wgpu.VertexFormatUndefined when WebGPU has no equivalent format
// (for example 3-component 8-bit data).
func (a VertexAttribute) VertexFormat() wgpu.VertexFormat {
	switch a.ComponentType {
	case ComponentFloat:
		return pickFormat(a.Components, wgpu.VertexFormatFloat32, wgpu.VertexFormatFloat32x2, wgpu.VertexFormatFloat32x3, wgpu.VertexFormatFloat32x4)
	case ComponentUnsignedInt:
		return pickFormat(a.Components, wgpu.VertexFormatUint32, wgpu.VertexFormatUint32x2, wgpu.VertexFormatUint32x3, wgpu.VertexFormatUint32x4)
	case ComponentUnsignedByte:
		if a.Normalized {
			return pickFormat(a.Components, wgpu.VertexFormatUndefined, wgpu.VertexFormatUnorm8x2, wgpu.VertexFormatUndefined, wgpu.VertexFormatUnorm8x4)
		}
		return pickFormat(a.Components, wgpu.VertexFormatUndefined, wgpu.VertexFormatUint8x2, wgpu.VertexFormatUndefined, wgpu.VertexFormatUint8x4)
	case ComponentByte:
		if a.Normalized {
			return pickFormat(a.Components, wgpu.VertexFormatUndefined, wgpu.VertexFormatSnorm8x2, wgpu.VertexFormatUndefined, wgpu.VertexFormatSnorm8x4)
		}
		return pickFormat(a.Components, wgpu.VertexFormatUndefined, wgpu.VertexFormatSint8x2, wgpu.VertexFormatUndefined, wgpu.VertexFormatSint8x4)
	case ComponentUnsignedShort:
		if a.Normalized {
			return pickFormat(a.Components, wgpu.VertexFormatUndefined, wgpu.VertexFormatUnorm16x2, wgpu.VertexFormatUndefined, wgpu.VertexFormatUnorm16x4)
		}
		return pickFormat(a.Components, wgpu.VertexFormatUndefined, wgpu.VertexFormatUint16x2, wgpu.VertexFormatUndefined, wgpu.VertexFormatUint16x4)
	case ComponentShort:
		if a.Normalized {
			return pickFormat(a.Components, wgpu.VertexFormatUndefined, wgpu.VertexFormatSnorm16x2, wgpu.VertexFormatUndefined, wgpu.VertexFormatSnorm16x4)
		}
		return pickFormat(a.Components, wgpu.VertexFormatUndefined, wgpu.VertexFormatSint16x2, wgpu.VertexFormatUndefined, wgpu.VertexFormatSint16x4)
	default:
		return wgpu.VertexFormatUndefined
	}
}

func pickFormat(components int, formats ...wgpu.VertexFormat) wgpu.VertexFormat {
	if components < 1 || components > len(formats) {
		return wgpu.VertexFormatUndefined
	}
	return formats[components-1]
}

// IndexFormat returns the wgpu index format of the primitive's indices. WebGPU has no 8-bit index
// format, so UNSIGNED_BYTE indices report false and must be widened by the renderer.
func (p Primitive) IndexFormat() (wgpu.IndexFormat, bool) {
	switch p.IndexComponentType {
	case ComponentUnsignedShort:
		return wgpu.IndexFormatUint16, true
	case ComponentUnsignedInt:
		return wgpu.IndexFormatUint32, true
	default:
		return 0, false
	}
}

// Topology returns the wgpu primitive topology for the draw mode. LINE_LOOP and TRIANGLE_FAN
// have no WebGPU equivalent and report false.
func (p Primitive) Topology() (wgpu.PrimitiveTopology, bool) {
	switch p.Mode {
	case ModePoints:
		return wgpu.PrimitiveTopologyPointList, true
	case ModeLines:
		return wgpu.PrimitiveTopologyLineList, true
	case ModeLineStrip:
		return wgpu.PrimitiveTopologyLineStrip, true
	case ModeTriangles:
		return wgpu.PrimitiveTopologyTriangleList, true
	case ModeTriangleStrip:
		return wgpu.PrimitiveTopologyTriangleStrip, true
	default:
		return 0, false
	}
}

// StagingData converts the sampler options to wgpu sampler settings. Mipmapped minification filters
// split into a min filter and a mipmap filter; with Mipmap off the LOD range is clamped to level 0.
//
// Returns:
//   - common.SamplerStagingData: the sampler settings for GPU creation
func (s SamplerOptions) StagingData() common.SamplerStagingData {
	data := common.SamplerStagingData{
		AddressModeU: wrapToAddressMode(s.WrapS),
		AddressModeV: wrapToAddressMode(s.WrapT),
		AddressModeW: wgpu.AddressModeRepeat,
		MagFilter:    wgpu.FilterModeNearest,
		MinFilter:    wgpu.FilterModeNearest,
		MipmapFilter: wgpu.MipmapFilterModeNearest,
		LodMinClamp:  0,
		LodMaxClamp:  32,
	}

	if s.MagFilter == FilterLinear {
		data.MagFilter = wgpu.FilterModeLinear
	}

	switch s.MinFilter {
	case FilterLinear, FilterLinearMipmapNearest:
		data.MinFilter = wgpu.FilterModeLinear
	case FilterNearestMipmapLinear:
		data.MipmapFilter = wgpu.MipmapFilterModeLinear
	case FilterLinearMipmapLinear:
		data.MinFilter = wgpu.FilterModeLinear
		data.MipmapFilter = wgpu.MipmapFilterModeLinear
	}

	if !s.Mipmap {
		data.LodMaxClamp = 0
	}
	return data
}

func wrapToAddressMode(w WrapMode) wgpu.AddressMode {
	switch w {
	case WrapClampToEdge:
		return wgpu.AddressModeClampToEdge
	case WrapMirroredRepeat:
		return wgpu.AddressModeMirrorRepeat
	default:
		return wgpu.AddressModeRepeat
	}
}

// TextureFormat is always RGBA8Unorm; decoded images are normalised to 8-bit RGBA.
func (i Image) TextureFormat() wgpu.TextureFormat {
	return wgpu.TextureFormatRGBA8Unorm
}

// StagingData exposes the decoded pixels for GPU upload. The pixel slice is shared, not copied.
func (i Image) StagingData() common.TextureStagingData {
	return common.TextureStagingData{
		Pixels: i.Pixels,
		Width:  uint32(i.Width),
		Height: uint32(i.Height),
		Format: i.TextureFormat(),
	}
}
