package action

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/ssargent/skyactions/pkg/codec"
	"github.com/ssargent/skyactions/pkg/logging"
)

// FileName is the name of the actions file inside a table directory.
const FileName = "actions"

// maxPrealloc caps how many slots Load reserves up front from a declared count.
const maxPrealloc = 1024

// Registry holds the ordered actions of a single table and persists them to
// <table path>/actions.
//
// A Registry is not safe for concurrent use. Callers that share one across
// goroutines must serialize access themselves.
type Registry struct {
	owner   Owner
	actions []*Action

	logger       *slog.Logger
	observer     Observer
	exists       func(string) bool
	createOnSave bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for load and save diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithObserver reports operation outcomes to o.
func WithObserver(o Observer) Option {
	return func(r *Registry) {
		r.observer = o
	}
}

// WithExistsFunc replaces the file-existence probe used by Load and Save.
func WithExistsFunc(exists func(string) bool) Option {
	return func(r *Registry) {
		if exists != nil {
			r.exists = exists
		}
	}
}

// WithCreateOnSave makes Save create the actions file when it does not exist.
// By default Save only overwrites an existing file.
func WithCreateOnSave(create bool) Option {
	return func(r *Registry) {
		r.createOnSave = create
	}
}

// NewRegistry creates an empty registry bound to owner.
func NewRegistry(owner Owner, opts ...Option) (*Registry, error) {
	if owner == nil {
		return nil, ErrOwnerRequired
	}

	r := &Registry{
		owner:  owner,
		logger: logging.Discard(),
		exists: FileExists,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// FileExists reports whether path exists on disk.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// Owner returns the table the registry belongs to.
func (r *Registry) Owner() Owner {
	return r.owner
}

// Count returns the number of stored actions.
func (r *Registry) Count() int {
	return len(r.actions)
}

// Actions returns the stored actions in insertion order.
func (r *Registry) Actions() []*Action {
	out := make([]*Action, len(r.actions))
	copy(out, r.actions)
	return out
}

// Path returns the location of the actions file.
func (r *Registry) Path() (string, error) {
	if r.owner == nil {
		return "", ErrOwnerRequired
	}
	dir := r.owner.Path()
	if dir == "" {
		return "", ErrPathRequired
	}
	return filepath.Join(dir, FileName), nil
}

// Load replaces the in-memory actions with the contents of the actions file.
//
// Any previously held actions are released first. A missing file leaves the
// registry empty and is not an error. A decode failure anywhere in the file
// aborts the load and leaves the registry empty. Identifiers must be positive:
// a zero or negative id is reported as ErrInvalidID even though it decodes.
func (r *Registry) Load() (err error) {
	start := time.Now()
	defer func() { r.observe("load", err, start) }()

	if err := r.Unload(); err != nil {
		return fmt.Errorf("unload action registry: %w", err)
	}

	path, err := r.Path()
	if err != nil {
		return err
	}

	if !r.exists(path) {
		r.logger.Debug("action file not found, registry is empty", "path", path)
		return nil
	}

	file, err := os.Open(path)
	if err != nil {
		return &OpError{Op: "load", Path: path, Offset: -1, Err: err}
	}
	defer file.Close()

	actions, err := r.decode(file, path)
	if err != nil {
		r.logger.Error("failed to load actions", "path", path, "error", err)
		return err
	}

	r.actions = actions
	r.logger.Debug("loaded actions", "path", path, "count", len(actions))
	return nil
}

func (r *Registry) decode(file io.ReadSeeker, path string) ([]*Action, error) {
	fail := func(what string, err error) error {
		return &OpError{Op: "load", Path: path, Offset: offset(file), Err: fmt.Errorf("%s: %w", what, err)}
	}

	count, _, err := codec.ReadArrayHeader(file)
	if err != nil {
		return nil, fail("read actions array", err)
	}

	actions := make([]*Action, 0, min(count, maxPrealloc))
	for i := uint32(0); i < count; i++ {
		id, _, err := codec.ReadInt(file)
		if err != nil {
			return nil, fail("read action identifier", err)
		}
		if id <= 0 {
			return nil, fail("read action identifier", fmt.Errorf("%w: %d", ErrInvalidID, id))
		}

		name, err := codec.ReadString(file)
		if err != nil {
			return nil, fail("read action name", err)
		}

		actions = append(actions, &Action{ID: uint64(id), Name: name, registry: r})
	}
	return actions, nil
}

// Save writes the in-memory actions to the actions file, truncating it.
//
// When the file does not exist Save performs no I/O and succeeds, unless the
// registry was created WithCreateOnSave. Writes are not atomic: a failure
// partway through leaves a truncated file behind.
func (r *Registry) Save() (err error) {
	start := time.Now()
	defer func() { r.observe("save", err, start) }()

	path, err := r.Path()
	if err != nil {
		return err
	}

	flags := os.O_WRONLY | os.O_TRUNC
	if !r.exists(path) {
		if !r.createOnSave {
			r.logger.Debug("action file not found, skipping save", "path", path)
			return nil
		}
		flags |= os.O_CREATE
	}

	file, err := os.OpenFile(path, flags, 0600)
	if err != nil {
		return &OpError{Op: "save", Path: path, Offset: -1, Err: err}
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = &OpError{Op: "save", Path: path, Offset: -1, Err: closeErr}
		}
	}()

	buf := bufio.NewWriter(file)
	w := &offsetWriter{w: buf}
	if err := r.encode(w, path); err != nil {
		r.logger.Error("failed to save actions", "path", path, "error", err)
		return err
	}
	if err := buf.Flush(); err != nil {
		return &OpError{Op: "save", Path: path, Offset: w.n, Err: err}
	}

	r.logger.Debug("saved actions", "path", path, "count", len(r.actions))
	return nil
}

func (r *Registry) encode(w *offsetWriter, path string) error {
	fail := func(what string, err error) error {
		return &OpError{Op: "save", Path: path, Offset: w.n, Err: fmt.Errorf("%s: %w", what, err)}
	}

	if uint64(len(r.actions)) > math.MaxUint32 {
		return fail("write actions array", fmt.Errorf("too many actions: %d", len(r.actions)))
	}
	if _, err := codec.WriteArrayHeader(w, uint32(len(r.actions))); err != nil {
		return fail("write actions array", err)
	}

	for _, a := range r.actions {
		if a.ID > math.MaxInt64 {
			return fail("write action identifier", fmt.Errorf("%w: %d", ErrInvalidID, a.ID))
		}
		if _, err := codec.WriteInt(w, int64(a.ID)); err != nil {
			return fail("write action identifier", err)
		}
		if _, err := codec.WriteString(w, a.Name); err != nil {
			return fail("write action name", err)
		}
	}
	return nil
}

// Unload releases every stored action and resets the registry to empty.
// It is idempotent and always succeeds.
func (r *Registry) Unload() error {
	for i, a := range r.actions {
		a.registry = nil
		r.actions[i] = nil
	}
	r.actions = nil
	r.reportCount()
	return nil
}

// FindByName returns the first stored action whose name matches exactly, or
// nil when there is no match.
func (r *Registry) FindByName(name string) (*Action, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	for _, a := range r.actions {
		if a.Name == name {
			return a, nil
		}
	}
	return nil, nil
}

// Add links a detached action to the registry and assigns it the next
// identifier.
//
// The next identifier is derived from the last stored action, so Add must
// only be called once the registry reflects the persisted history, i.e.
// after Load. Adding to a registry that was unloaded without reloading
// restarts numbering at 1.
func (r *Registry) Add(a *Action) (err error) {
	start := time.Now()
	defer func() { r.observe("add", err, start) }()

	if a == nil {
		return ErrActionRequired
	}
	if !a.Detached() {
		return ErrActionAttached
	}
	if len(a.Name) > codec.MaxRawLength {
		return fmt.Errorf("%w: %d bytes", ErrNameTooLong, len(a.Name))
	}

	existing, err := r.FindByName(a.Name)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: %q", ErrDuplicateName, a.Name)
	}

	a.registry = r
	if len(r.actions) == 0 {
		a.ID = 1
	} else {
		a.ID = r.actions[len(r.actions)-1].ID + 1
	}
	r.actions = append(r.actions, a)
	return nil
}

func (r *Registry) observe(op string, err error, start time.Time) {
	if r.observer == nil {
		return
	}
	r.observer.RecordRegistryOperation(op, err == nil, time.Since(start))
	r.reportCount()
}

func (r *Registry) reportCount() {
	if r.observer == nil {
		return
	}
	r.observer.SetActionCount(r.label(), len(r.actions))
}

// label names the owning table for metrics.
func (r *Registry) label() string {
	if named, ok := r.owner.(interface{ Name() string }); ok {
		return named.Name()
	}
	return r.owner.Path()
}

// offset returns the current stream position, or -1 if it cannot be determined.
func offset(s io.Seeker) int64 {
	pos, err := s.Seek(0, io.SeekCurrent)
	if err != nil {
		return -1
	}
	return pos
}

// offsetWriter counts bytes accepted by the underlying writer.
type offsetWriter struct {
	w io.Writer
	n int64
}

func (o *offsetWriter) Write(p []byte) (int, error) {
	n, err := o.w.Write(p)
	o.n += int64(n)
	return n, err
}
