package error

import "errors"

// Derived read model errors.
var (
	ErrAggregateNotFound = errors.New("monthly aggregate not found")
	ErrDashboardNotFound = errors.New("dashboard cache not found")
)
