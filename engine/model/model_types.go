package model

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gltf/common"
)

// --- Handles ---

// Handles index the arenas of an ImportResult. A negative handle refers to nothing.
type (
	ImageHandle    int
	TextureHandle  int
	MaterialHandle int
	MeshHandle     int
	GeometryHandle int
	SkinHandle     int
)

const (
	NoImage    ImageHandle    = -1
	NoTexture  TextureHandle  = -1
	NoMaterial MaterialHandle = -1
	NoMesh     MeshHandle     = -1
	NoGeometry GeometryHandle = -1
	NoSkin     SkinHandle     = -1
)

func (h ImageHandle) Valid() bool    { return h >= 0 }
func (h TextureHandle) Valid() bool  { return h >= 0 }
func (h MaterialHandle) Valid() bool { return h >= 0 }
func (h MeshHandle) Valid() bool     { return h >= 0 }
func (h GeometryHandle) Valid() bool { return h >= 0 }

// --- Buffer Layout Types ---

// ComponentType is the glTF numeric type of one accessor component.
type ComponentType int

const (
	ComponentInvalid       ComponentType = 0
	ComponentByte          ComponentType = 5120
	ComponentUnsignedByte  ComponentType = 5121
	ComponentShort         ComponentType = 5122
	ComponentUnsignedShort ComponentType = 5123
	ComponentUnsignedInt   ComponentType = 5125
	ComponentFloat         ComponentType = 5126
)

// ParseComponentType maps a raw componentType value, returning ComponentInvalid for unknown values.
func ParseComponentType(v int) ComponentType {
	switch c := ComponentType(v); c {
	case ComponentByte, ComponentUnsignedByte, ComponentShort, ComponentUnsignedShort, ComponentUnsignedInt, ComponentFloat:
		return c
	default:
		return ComponentInvalid
	}
}

// Size returns the size in bytes of a single component, or 0 for ComponentInvalid.
func (c ComponentType) Size() int {
	switch c {
	case ComponentByte, ComponentUnsignedByte:
		return 1
	case ComponentShort, ComponentUnsignedShort:
		return 2
	case ComponentUnsignedInt, ComponentFloat:
		return 4
	default:
		return 0
	}
}

func (c ComponentType) String() string {
	switch c {
	case ComponentByte:
		return "BYTE"
	case ComponentUnsignedByte:
		return "UNSIGNED_BYTE"
	case ComponentShort:
		return "SHORT"
	case ComponentUnsignedShort:
		return "UNSIGNED_SHORT"
	case ComponentUnsignedInt:
		return "UNSIGNED_INT"
	case ComponentFloat:
		return "FLOAT"
	default:
		return "INVALID"
	}
}

// ElementShape is the accessor element type. Only the vector shapes are supported; matrices decode as ShapeInvalid.
type ElementShape uint8

const (
	ShapeInvalid ElementShape = iota
	ShapeScalar
	ShapeVec2
	ShapeVec3
	ShapeVec4
)

// ParseElementShape maps an accessor "type" string.
func ParseElementShape(s string) ElementShape {
	switch s {
	case "SCALAR":
		return ShapeScalar
	case "VEC2":
		return ShapeVec2
	case "VEC3":
		return ShapeVec3
	case "VEC4":
		return ShapeVec4
	default:
		return ShapeInvalid
	}
}

// Components returns the number of components per element: SCALAR 1 through VEC4 4, and 0 for ShapeInvalid.
func (s ElementShape) Components() int {
	switch s {
	case ShapeScalar:
		return 1
	case ShapeVec2:
		return 2
	case ShapeVec3:
		return 3
	case ShapeVec4:
		return 4
	default:
		return 0
	}
}

func (s ElementShape) String() string {
	switch s {
	case ShapeScalar:
		return "SCALAR"
	case ShapeVec2:
		return "VEC2"
	case ShapeVec3:
		return "VEC3"
	case ShapeVec4:
		return "VEC4"
	default:
		return "INVALID"
	}
}

// BufferTarget is the GL binding hint carried by a buffer view.
type BufferTarget int

const (
	TargetNone               BufferTarget = 0
	TargetArrayBuffer        BufferTarget = 34962
	TargetElementArrayBuffer BufferTarget = 34963
)

// ParseBufferTarget maps a raw target value, returning TargetNone for unknown values.
func ParseBufferTarget(v int) BufferTarget {
	switch t := BufferTarget(v); t {
	case TargetArrayBuffer, TargetElementArrayBuffer:
		return t
	default:
		return TargetNone
	}
}

// BufferView is a byte range within one buffer. It never copies bytes.
type BufferView struct {
	// Buffer indexes the resolved buffer table, -1 if absent.
	Buffer int

	// ByteOffset is the start of the range within the buffer.
	ByteOffset int

	// ByteLength is the length of the range.
	ByteLength int

	// ByteStride is the distance between vertex elements; 0 means tightly packed.
	ByteStride int

	// Target is the binding hint, TargetNone if absent.
	Target BufferTarget

	Name string
}

// Accessor is a typed interpretation of a buffer view's bytes.
type Accessor struct {
	// BufferView indexes the buffer view table, -1 if absent.
	BufferView int

	// ByteOffset is the start of the first element within the buffer view.
	ByteOffset int

	ComponentType ComponentType
	Shape         ElementShape
	Normalized    bool

	// Count is the number of elements.
	Count int

	Name string
}

// ElementSize returns the width of one element in bytes:
// ComponentType.Size() * Shape.Components().
func (a Accessor) ElementSize() int {
	return a.ComponentType.Size() * a.Shape.Components()
}

// --- Image, Sampler & Texture Types ---

// Image is a decoded image, always 8-bit RGBA. An Image with nil Pixels is an empty slot left by a failed decode.
type Image struct {
	Name     string
	MimeType string

	Width  int
	Height int

	// Components is always common.RGBAComponents for a decoded image.
	Components int

	// Pixels holds Width*Height*Components bytes, row-major.
	Pixels []byte
}

// Valid reports whether the slot holds decoded pixels.
func (i Image) Valid() bool {
	return i.Pixels != nil
}

// WrapMode is a glTF sampler wrap mode (GL enum values).
type WrapMode int

const (
	WrapRepeat         WrapMode = 10497
	WrapClampToEdge    WrapMode = 33071
	WrapMirroredRepeat WrapMode = 33648
)

// Valid reports whether w is one of the three glTF wrap modes.
func (w WrapMode) Valid() bool {
	return w == WrapRepeat || w == WrapClampToEdge || w == WrapMirroredRepeat
}

// FilterMode is a glTF sampler filter (GL enum values).
type FilterMode int

const (
	FilterNearest              FilterMode = 9728
	FilterLinear               FilterMode = 9729
	FilterNearestMipmapNearest FilterMode = 9984
	FilterLinearMipmapNearest  FilterMode = 9985
	FilterNearestMipmapLinear  FilterMode = 9986
	FilterLinearMipmapLinear   FilterMode = 9987
)

// ValidMag reports whether f may be used as a magnification filter.
func (f FilterMode) ValidMag() bool {
	return f == FilterNearest || f == FilterLinear
}

// ValidMin reports whether f may be used as a minification filter.
func (f FilterMode) ValidMin() bool {
	return f.ValidMag() || (f >= FilterNearestMipmapNearest && f <= FilterLinearMipmapLinear)
}

// SamplerOptions are the wrap and filter settings of a texture.
type SamplerOptions struct {
	WrapS     WrapMode
	WrapT     WrapMode
	MagFilter FilterMode
	MinFilter FilterMode
	Mipmap    bool
}

// DefaultSamplerOptions returns REPEAT/REPEAT wrapping, NEAREST/NEAREST filtering, with mipmaps on.
func DefaultSamplerOptions() SamplerOptions {
	return SamplerOptions{
		WrapS:     WrapRepeat,
		WrapT:     WrapRepeat,
		MagFilter: FilterNearest,
		MinFilter: FilterNearest,
		Mipmap:    true,
	}
}

// Texture pairs an image with sampler options. It owns no pixel data.
type Texture struct {
	Name    string
	Image   ImageHandle
	Sampler SamplerOptions
}

// Valid reports whether the texture refers to an image. Skipped texture entries keep NoImage.
func (t Texture) Valid() bool {
	return t.Image.Valid()
}

// --- Material Types ---

// AlphaMode is the glTF material alpha mode.
type AlphaMode string

const (
	AlphaOpaque AlphaMode = "OPAQUE"
	AlphaMask   AlphaMode = "MASK"
	AlphaBlend  AlphaMode = "BLEND"
)

// Material is a PBR metallic-roughness parameter set.
type Material struct {
	Name string

	// BaseColorFactor is the linear RGBA multiplier, default opaque white.
	BaseColorFactor  [4]float32
	BaseColorTexture TextureHandle

	// MetallicFactor and RoughnessFactor default to 1.0.
	MetallicFactor           float32
	RoughnessFactor          float32
	MetallicRoughnessTexture TextureHandle

	NormalTexture TextureHandle
	NormalScale   float32

	OcclusionTexture  TextureHandle
	OcclusionStrength float32

	// EmissiveFactor defaults to black.
	EmissiveFactor  [3]float32
	EmissiveTexture TextureHandle

	AlphaMode   AlphaMode
	AlphaCutoff float32
	DoubleSided bool
}

// DefaultMaterial returns a material with every field at its glTF default and no textures.
func DefaultMaterial() Material {
	return Material{
		BaseColorFactor:          [4]float32{1, 1, 1, 1},
		BaseColorTexture:         NoTexture,
		MetallicFactor:           1,
		RoughnessFactor:          1,
		MetallicRoughnessTexture: NoTexture,
		NormalTexture:            NoTexture,
		NormalScale:              1,
		OcclusionTexture:         NoTexture,
		OcclusionStrength:        1,
		EmissiveTexture:          NoTexture,
		AlphaMode:                AlphaOpaque,
		AlphaCutoff:              0.5,
	}
}

// Textures returns every texture handle the material refers to, skipping NoTexture.
func (m Material) Textures() []TextureHandle {
	var out []TextureHandle
	for _, h := range []TextureHandle{m.BaseColorTexture, m.MetallicRoughnessTexture, m.NormalTexture, m.OcclusionTexture, m.EmissiveTexture} {
		if h.Valid() {
			out = append(out, h)
		}
	}
	return out
}

// --- Geometry Types ---

// AttributeSlot is the fixed vertex slot a glTF attribute semantic maps to.
type AttributeSlot int

const (
	AttributePosition AttributeSlot = iota
	AttributeNormal
	AttributeUV
	AttributeTangent
	AttributeSlotCount
)

var attributeSemantics = [AttributeSlotCount]string{
	AttributePosition: "POSITION",
	AttributeNormal:   "NORMAL",
	AttributeUV:       "TEXCOORD_0",
	AttributeTangent:  "TANGENT",
}

// SlotForSemantic maps an attribute semantic name to its slot.
func SlotForSemantic(name string) (AttributeSlot, bool) {
	for slot, semantic := range attributeSemantics {
		if semantic == name {
			return AttributeSlot(slot), true
		}
	}
	return 0, false
}

func (s AttributeSlot) String() string {
	if s >= 0 && s < AttributeSlotCount {
		return attributeSemantics[s]
	}
	return fmt.Sprintf("AttributeSlot(%d)", int(s))
}

// VertexAttribute is the layout of one vertex attribute over a buffer view's bytes.
type VertexAttribute struct {
	Slot AttributeSlot

	// Components is the number of components per element (1 to 4).
	Components    int
	ComponentType ComponentType
	Normalized    bool

	// ByteStride is the distance between elements; 0 means tightly packed (see Stride).
	ByteStride int

	// ByteOffset is the offset of the first element within Data.
	ByteOffset int

	Count  int
	Target BufferTarget

	// Data is the full byte range of the backing buffer view.
	Data []byte
}

// Stride returns the effective distance between elements in bytes.
func (a VertexAttribute) Stride() int {
	if a.ByteStride > 0 {
		return a.ByteStride
	}
	return a.Components * a.ComponentType.Size()
}

// Geometry is the packed vertex and index data of one primitive, ready for upload by a renderer.
type Geometry struct {
	// Indices is the full byte range of the index accessor's buffer view.
	Indices     []byte
	IndexTarget BufferTarget

	// Attributes are ordered by slot.
	Attributes []VertexAttribute
}

// Attribute returns the attribute bound to slot.
func (g Geometry) Attribute(slot AttributeSlot) (VertexAttribute, bool) {
	for _, a := range g.Attributes {
		if a.Slot == slot {
			return a, true
		}
	}
	return VertexAttribute{}, false
}

// DrawMode is the glTF primitive topology.
type DrawMode int

const (
	ModePoints DrawMode = iota
	ModeLines
	ModeLineLoop
	ModeLineStrip
	ModeTriangles
	ModeTriangleStrip
	ModeTriangleFan
)

// Valid reports whether m is one of the seven glTF modes.
func (m DrawMode) Valid() bool {
	return m >= ModePoints && m <= ModeTriangleFan
}

func (m DrawMode) String() string {
	switch m {
	case ModePoints:
		return "POINTS"
	case ModeLines:
		return "LINES"
	case ModeLineLoop:
		return "LINE_LOOP"
	case ModeLineStrip:
		return "LINE_STRIP"
	case ModeTriangles:
		return "TRIANGLES"
	case ModeTriangleStrip:
		return "TRIANGLE_STRIP"
	case ModeTriangleFan:
		return "TRIANGLE_FAN"
	default:
		return fmt.Sprintf("DrawMode(%d)", int(m))
	}
}

// Primitive is one indexed draw. It owns no buffers.
type Primitive struct {
	// Geometry indexes ImportResult.Geometries.
	Geometry GeometryHandle

	Mode DrawMode

	IndexCount         int
	IndexComponentType ComponentType

	// IndexByteOffset is the offset of the first index within the geometry's Indices.
	IndexByteOffset int

	// Bounds is computed from POSITION data, empty when it could not be read.
	Bounds common.Box

	Material MaterialHandle

	// Skin is always NoSkin.
	Skin SkinHandle
}

// Mesh is an ordered list of primitives.
type Mesh struct {
	Name       string
	Primitives []Primitive
}

// --- Scene Types ---

// SceneNode is one root node of the active scene.
type SceneNode struct {
	Name string

	Translation [3]float32

	// Rotation is a quaternion in x, y, z, w order.
	Rotation [4]float32

	Scale [3]float32

	// Mesh is NoMesh when the node has no (valid) mesh.
	Mesh MeshHandle
}

// NewSceneNode returns a node with the identity transform and no mesh.
func NewSceneNode(name string) SceneNode {
	return SceneNode{
		Name:     name,
		Rotation: common.IdentityQuat(),
		Scale:    [3]float32{1, 1, 1},
		Mesh:     NoMesh,
	}
}

// LocalMatrix returns the node's column-major T * R * S matrix.
func (n SceneNode) LocalMatrix() [16]float32 {
	var m [16]float32
	common.ComposeTRS(m[:], n.Translation, n.Rotation, n.Scale)
	return m
}
