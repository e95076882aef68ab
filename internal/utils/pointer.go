package utils

// Ptr returns a pointer to a copy of v, for optional fields such as
// ai.GenerationConfig.Temperature.
func Ptr[T any](v T) *T {
	return &v
}
