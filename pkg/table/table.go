// Package table provides the owning table of an action registry.
package table

import (
	"fmt"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/ssargent/skyactions/pkg/action"
)

// Table is a named directory of data files. It owns exactly one action
// registry.
type Table struct {
	ID        ksuid.KSUID
	CreatedAt time.Time

	name    string
	path    string
	actions *action.Registry
}

// New creates a table reference. The table's files live under path.
func New(id ksuid.KSUID, name, path string, createdAt time.Time) *Table {
	return &Table{
		ID:        id,
		CreatedAt: createdAt,
		name:      name,
		path:      path,
	}
}

// Name returns the table name.
func (t *Table) Name() string {
	return t.name
}

// Path returns the table directory.
func (t *Table) Path() string {
	return t.path
}

// Open binds an action registry to the table and loads it from disk.
func (t *Table) Open(opts ...action.Option) error {
	reg, err := action.NewRegistry(t, opts...)
	if err != nil {
		return err
	}
	if err := reg.Load(); err != nil {
		return fmt.Errorf("failed to load actions for table %s: %w", t.name, err)
	}
	t.actions = reg
	return nil
}

// Actions returns the table's registry, or nil before Open.
func (t *Table) Actions() *action.Registry {
	return t.actions
}

// AddAction adds a new action by name and persists the registry.
func (t *Table) AddAction(name string) (*action.Action, error) {
	if t.actions == nil {
		return nil, fmt.Errorf("table %s is not open", t.name)
	}

	a := action.NewAction(name)
	if err := t.actions.Add(a); err != nil {
		return nil, err
	}
	if err := t.actions.Save(); err != nil {
		return nil, fmt.Errorf("failed to save actions for table %s: %w", t.name, err)
	}
	return a, nil
}

// Close releases the in-memory actions.
func (t *Table) Close() error {
	if t.actions == nil {
		return nil
	}
	err := t.actions.Unload()
	t.actions = nil
	return err
}
