// Package token defines the generic symbol type the rest of the codecs
// operate over.
package token

import "golang.org/x/exp/constraints"

// Type is the constraint every coder in this module is generic over. The
// source library (koda) expressed this as a template parameter restricted
// to integral types; constraints.Unsigned is the closest stdlib-adjacent
// equivalent available to Go generics.
type Type interface {
	constraints.Unsigned
}
