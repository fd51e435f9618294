package loader

import "errors"

// Errors reported by the import pipeline. Container errors are returned directly and abort the
// import; the rest are wrapped in model.Diagnostic values attached to the result.
var (
	ErrFileNotFound         = errors.New("file not found in any search root")
	ErrInvalidGLBMagic      = errors.New("invalid GLB magic number")
	ErrInvalidGLBVersion    = errors.New("invalid GLB version: must be 2")
	ErrInvalidChunkType     = errors.New("invalid GLB chunk type")
	ErrTruncatedContainer   = errors.New("truncated GLB container")
	ErrInvalidDocument      = errors.New("invalid glTF document")
	ErrMissingAsset         = errors.New("missing or invalid asset object")
	ErrInvalidGLTFVersion   = errors.New("invalid glTF version: must be 2.0")
	ErrUnsupportedExtension = errors.New("unsupported required extension")
	ErrUnsupportedFormat    = errors.New("unsupported model format")

	ErrExtensionUsed      = errors.New("extension used but not supported")
	ErrIndexOutOfRange    = errors.New("index out of range")
	ErrInvalidBufferURI   = errors.New("invalid buffer URI")
	ErrBufferUnavailable  = errors.New("buffer unavailable")
	ErrBufferSizeMismatch = errors.New("buffer size mismatch")
	ErrImageDecode        = errors.New("image decode failed")
	ErrImageMimeMismatch  = errors.New("image mimeType does not match its contents")

	ErrUnsupportedPrimitive = errors.New("unsupported primitive")
	ErrUnknownAttribute     = errors.New("unknown attribute semantic")
	ErrInvalidAccessor      = errors.New("invalid accessor")
	ErrInvalidDrawMode      = errors.New("invalid primitive mode")
	ErrMultipleTexCoords    = errors.New("multiple texture coordinate sets are not supported")
	ErrMalformedTransform   = errors.New("malformed node transform")
	ErrUnsupportedNodeField = errors.New("unsupported node field")
	ErrInvalidScene         = errors.New("invalid scene")
)
