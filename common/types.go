// package common contains common types that are used throughout the importer. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/cogentcore/webgpu/wgpu"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// RGBAComponents is the channel count of every decoded image.
const RGBAComponents = 4

// TextureStagingData holds RGBA pixel data for a texture pending GPU upload by a renderer.
type TextureStagingData struct {
	// Pixels is the RGBA pixel data, 4 bytes per pixel, rows top to bottom unless the importer flipped them.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
	// Format is the GPU texture format matching Pixels.
	Format wgpu.TextureFormat
}

// SamplerStagingData holds the configuration for a sampler pending GPU creation by a renderer.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range in each dimension (U, V, W).
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail (LOD) for mipmapping.
	LodMinClamp, LodMaxClamp float32
}

// DecodeRGBA decodes an encoded image (PNG, JPEG, GIF, BMP, TIFF or WebP) and converts it
// to 8-bit RGBA with its origin at (0, 0), whatever the source channel count.
// Reference: https://pkg.go.dev/image
//
// Parameters:
//   - r: the encoded image bytes
//
// Returns:
//   - *image.RGBA: the converted pixels; Pix holds exactly 4*width*height bytes
//   - string: the format name reported by the decoder
//   - error: error if decoding fails
func DecodeRGBA(r io.Reader) (*image.RGBA, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) && rgba.Stride == 4*rgba.Rect.Dx() {
		return rgba, format, nil
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return rgba, format, nil
}
