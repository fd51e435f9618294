package common

import (
	"github.com/chewxy/math32"
)

// Box is an axis-aligned bounding box. A box with Min greater than Max on any axis is empty.
type Box struct {
	Min [3]float32
	Max [3]float32
}

// EmptyBox returns a box that contains nothing; extending it with any point yields
// a zero-size box around that point.
func EmptyBox() Box {
	inf := math32.Inf(1)
	return Box{
		Min: [3]float32{inf, inf, inf},
		Max: [3]float32{-inf, -inf, -inf},
	}
}

// IsEmpty reports whether the box contains no points.
func (b Box) IsEmpty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Extend grows the box to include p. Points with a NaN or infinite coordinate are ignored.
//
// Parameters:
//   - p: the point to include
//
// Returns:
//   - bool: false if p was rejected as non-finite
func (b *Box) Extend(p [3]float32) bool {
	for _, c := range p {
		if math32.IsNaN(c) || math32.IsInf(c, 0) {
			return false
		}
	}
	for i := 0; i < 3; i++ {
		b.Min[i] = math32.Min(b.Min[i], p[i])
		b.Max[i] = math32.Max(b.Max[i], p[i])
	}
	return true
}

// Center returns the midpoint of the box, or the origin if it is empty.
func (b Box) Center() [3]float32 {
	if b.IsEmpty() {
		return [3]float32{}
	}
	return [3]float32{
		(b.Min[0] + b.Max[0]) * 0.5,
		(b.Min[1] + b.Max[1]) * 0.5,
		(b.Min[2] + b.Max[2]) * 0.5,
	}
}

// Radius returns half the length of the box diagonal, or 0 if it is empty.
func (b Box) Radius() float32 {
	if b.IsEmpty() {
		return 0
	}
	dx := b.Max[0] - b.Min[0]
	dy := b.Max[1] - b.Min[1]
	dz := b.Max[2] - b.Min[2]
	return math32.Sqrt(dx*dx+dy*dy+dz*dz) * 0.5
}

// IdentityQuat returns the identity rotation in x, y, z, w order.
func IdentityQuat() [4]float32 {
	return [4]float32{0, 0, 0, 1}
}

// QuatLength returns the Euclidean norm of q.
func QuatLength(q [4]float32) float32 {
	return math32.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
}

// ComposeTRS builds the column-major matrix T * R * S from a translation, a rotation
// quaternion in x, y, z, w order and a scale. This is the local transform of a glTF node.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - t: translation
//   - q: rotation quaternion (x, y, z, w), expected to be unit length
//   - s: scale
func ComposeTRS(out []float32, t [3]float32, q [4]float32, s [3]float32) {
	x, y, z, w := q[0], q[1], q[2], q[3]
	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z

	out[0] = (1 - 2*(yy+zz)) * s[0]
	out[1] = 2 * (xy + wz) * s[0]
	out[2] = 2 * (xz - wy) * s[0]
	out[3] = 0

	out[4] = 2 * (xy - wz) * s[1]
	out[5] = (1 - 2*(xx+zz)) * s[1]
	out[6] = 2 * (yz + wx) * s[1]
	out[7] = 0

	out[8] = 2 * (xz + wy) * s[2]
	out[9] = 2 * (yz - wx) * s[2]
	out[10] = (1 - 2*(xx+yy)) * s[2]
	out[11] = 0

	out[12] = t[0]
	out[13] = t[1]
	out[14] = t[2]
	out[15] = 1
}
