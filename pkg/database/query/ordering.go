package query

import (
	"github.com/pkg/errors"
)

// Ordering is the sort direction of a paginated result set, by record id.
type Ordering uint

const (
	Ascending Ordering = iota
	Descending
)

var orderingNames = map[Ordering]string{
	Ascending:  "asc",
	Descending: "desc",
}

// ParseOrdering accepts the SQL keyword form of an ordering, as produced by
// Ordering.String.
func ParseOrdering(val string) (Ordering, error) {
	for o, name := range orderingNames {
		if name == val {
			return o, nil
		}
	}
	return 0, errors.Errorf("unexpected ordering: %q", val)
}

// Valid reports whether o is a known ordering.
func (o Ordering) Valid() bool {
	_, ok := orderingNames[o]
	return ok
}

// String returns the SQL keyword for o, or an empty string when o is invalid.
func (o Ordering) String() string {
	return orderingNames[o]
}
