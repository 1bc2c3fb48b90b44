package trgraph

// GraphContext carries the shared, mutable side-tables a Graph's nodes
// and edges refer into: the line intern table today, room for more as
// the builder grows. Passed explicitly everywhere a Graph is passed,
// rather than living behind package-level state, so two graphs (e.g.
// two MOTs built concurrently) never share intern tables by accident.
type GraphContext struct {
	Lines *LineIntern
}

// NewGraphContext creates a context with a fresh line intern table.
func NewGraphContext() *GraphContext {
	return &GraphContext{Lines: NewLineIntern()}
}
