package catalog

import "errors"

var (
	// ErrUpstreamUnavailable means the card API could not be reached or
	// answered with an error status. Terminal for the request; callers retry
	// manually.
	ErrUpstreamUnavailable = errors.New("card catalog upstream unavailable")

	// ErrNotFound means the set or card does not exist upstream.
	ErrNotFound = errors.New("not found in card catalog")
)
