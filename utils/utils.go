package utils

// ToPtr returns a pointer to v, handy for optional DTO fields
func ToPtr[T any](v T) *T {
	return &v
}
