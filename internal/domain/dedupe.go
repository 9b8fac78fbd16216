package domain

// Identifiable is implemented by every element definition
type Identifiable interface {
	ElementID() string
}

// Deduplicate removes elements with a repeated id, keeping the first
// occurrence and the original order
func Deduplicate[T Identifiable](elements []T) []T {
	seen := make(map[string]struct{}, len(elements))
	result := make([]T, 0, len(elements))
	for _, e := range elements {
		id := e.ElementID()
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, e)
	}
	return result
}
