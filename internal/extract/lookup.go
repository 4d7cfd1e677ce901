package extract

// Lookup is the outcome of one extraction step. Path names the selector,
// label or fallback that produced Value, or why nothing was found.
type Lookup[T any] struct {
	Value T
	Found bool
	Path  string
}

func found[T any](v T, path string) Lookup[T] {
	return Lookup[T]{Value: v, Found: true, Path: path}
}

func notFound[T any](def T, path string) Lookup[T] {
	return Lookup[T]{Value: def, Found: false, Path: path}
}

// Path values reported when a step finds nothing.
const (
	PathNoLabel       = "no-matching-label"
	PathHeadingMiss   = "heading-miss"
	PathNoTable       = "no-table-before-next-heading"
	PathNoName        = "name-default"
	PathNoSector      = "sector-default"
	PathSectorKeyword = "sector-keyword-near-peers"
	PathSectorLink    = "sector-link"
)
