package action

import (
	"fmt"
	"time"
)

// Owner is the table an action registry belongs to.
type Owner interface {
	// Path returns the directory holding the table's files.
	Path() string
}

// Observer receives registry operation outcomes, typically for metrics.
type Observer interface {
	RecordRegistryOperation(operation string, success bool, duration time.Duration)
	SetActionCount(table string, count int)
}

// Errors
var (
	ErrOwnerRequired  = &RegistryError{"action registry owner required"}
	ErrPathRequired   = &RegistryError{"action registry owner must have a path"}
	ErrActionRequired = &RegistryError{"action required"}
	ErrActionAttached = &RegistryError{"action must be detached (zero id, no registry)"}
	ErrDuplicateName  = &RegistryError{"action already exists with the same name"}
	ErrNameRequired   = &RegistryError{"action name required"}
	ErrNameTooLong    = &RegistryError{"action name exceeds maximum length"}
	ErrInvalidID      = &RegistryError{"invalid action identifier"}
)

// RegistryError represents an action registry error
type RegistryError struct {
	Message string
}

func (e *RegistryError) Error() string {
	return e.Message
}

// OpError describes a failed load or save along with the file path and the
// byte offset at which the failure was detected. Offset is -1 when unknown.
type OpError struct {
	Op     string
	Path   string
	Offset int64
	Err    error
}

func (e *OpError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s %s at byte %d: %v", e.Op, e.Path, e.Offset, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}
