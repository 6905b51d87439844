package service

import "net/url"

// Query parameter names understood by the list endpoint.
const (
	QueryStatus   = "status"
	QueryPriority = "priority"
	QuerySearch   = "search"
)

// FilterSet is the active set of list constraints.
// Every field is always present; the empty string means unset.
type FilterSet struct {
	Status   Status
	Priority Priority
	Search   string
}

// Query returns the constraints eligible for a remote list query.
// Empty fields are left out, everything else is passed through as is:
// enum values are not validated here, that is the remote side's job.
func (f FilterSet) Query() map[string]string {
	q := make(map[string]string, 3)
	if f.Status != "" {
		q[QueryStatus] = string(f.Status)
	}
	if f.Priority != "" {
		q[QueryPriority] = string(f.Priority)
	}
	if f.Search != "" {
		q[QuerySearch] = f.Search
	}
	return q
}

// Values renders a normalized query as URL query values.
func Values(query map[string]string) url.Values {
	v := make(url.Values, len(query))
	for k, val := range query {
		if val == "" {
			continue
		}
		v.Set(k, val)
	}
	return v
}
