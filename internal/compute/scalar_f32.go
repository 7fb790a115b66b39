//go:build f32

package compute

// Scalar is the grid element type.
type Scalar = float32

// Precision names Scalar.
func Precision() string { return "float32" }
