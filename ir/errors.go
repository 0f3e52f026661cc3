package ir

import "fmt"

// IncompatibleNamedStructError fires when two queries declare a row or
// params shape under the same name but with structurally different
// field lists.
type IncompatibleNamedStructError struct {
	Name string
	Prev []PreparedField
	New  []PreparedField
}

func (e *IncompatibleNamedStructError) Error() string {
	return fmt.Sprintf("named struct %q was previously interned with a different field list", e.Name)
}
