// Package utils holds small generic helpers shared across packages.
package utils

// Ptr returns a pointer to v. Handy for building partial-update payloads
// whose optional fields are pointer-typed.
func Ptr[T any](v T) *T {
	return &v
}

// Value dereferences v, returning the zero value when v is nil.
func Value[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}
