package hermestools

// Map returns x applied to every element of input.
func Map[T any, Y any](input []T, x func(T) Y) []Y {
	result := make([]Y, 0, len(input))
	for _, i := range input {
		result = append(result, x(i))
	}

	return result
}
