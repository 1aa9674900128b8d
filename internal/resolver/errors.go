package resolver

import "errors"

var (
	// ErrMissingRelation is returned by Resolve when the target (after any
	// mandatory instance-of hop) has no maps-to relation at all. A concept
	// with zero ways of being described is a configuration error, not a
	// zero-route result.
	ErrMissingRelation = errors.New("concept has no maps-to relation")

	// ErrNoRoutes is returned when ranking or evaluation is requested on a
	// step whose total route count is zero.
	ErrNoRoutes = errors.New("no feasible route")

	// ErrRouteIndex is returned for a route index outside [0, NumRoutes()).
	ErrRouteIndex = errors.New("route index out of range")

	// ErrDepthExceeded is returned when the backward walk exceeds the
	// configured recursion bound.
	ErrDepthExceeded = errors.New("maximum resolution depth exceeded")

	// ErrUnknownFunction is returned when a route references a function id
	// the repository does not know.
	ErrUnknownFunction = errors.New("unknown function")
)
