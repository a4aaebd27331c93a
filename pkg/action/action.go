package action

// Action is a named record with a registry-unique identifier.
//
// An action that has not been added to a registry is detached: its ID is zero
// and it has no registry back-reference. Once added, the registry owns ID and
// Name and callers must treat both as read-only. Changing them bypasses the
// unique-name and increasing-id checks done by Add.
type Action struct {
	ID   uint64
	Name string

	registry *Registry
}

// NewAction creates a detached action with the given name.
func NewAction(name string) *Action {
	return &Action{Name: name}
}

// Registry returns the registry the action belongs to, or nil when detached.
func (a *Action) Registry() *Registry {
	return a.registry
}

// Detached reports whether the action can be added to a registry.
func (a *Action) Detached() bool {
	return a.ID == 0 && a.registry == nil
}
