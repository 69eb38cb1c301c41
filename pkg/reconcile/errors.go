package reconcile

import (
	"fmt"
	"sort"
	"strings"
)

// ParseError reports an id that the catalog type could not parse.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid id %q: %v", e.Raw, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// PartialError is returned by a keep-going run in which some fetches
// failed. Everything that was fetched has been persisted.
type PartialError struct {
	Failures map[string]error
	Total    int
}

func (e *PartialError) Error() string {
	ids := e.IDs()
	var b strings.Builder
	fmt.Fprintf(&b, "%d of %d entries failed to fetch", len(ids), e.Total)
	for _, id := range ids {
		fmt.Fprintf(&b, "\n  %s: %v", id, e.Failures[id])
	}
	return b.String()
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *PartialError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, id := range e.IDs() {
		errs = append(errs, e.Failures[id])
	}
	return errs
}

// IDs returns the failed ids, sorted.
func (e *PartialError) IDs() []string {
	ids := make([]string, 0, len(e.Failures))
	for id := range e.Failures {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
