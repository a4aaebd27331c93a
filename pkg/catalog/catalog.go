// Package catalog keeps the set of tables known to a data directory.
//
// Table metadata is stored in a pebble database under <data dir>/catalog and
// each table's files live under <data dir>/tables/<name>.
package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/ssargent/skyactions/pkg/action"
	"github.com/ssargent/skyactions/pkg/logging"
	"github.com/ssargent/skyactions/pkg/table"
)

const (
	catalogDir = "catalog"
	tablesDir  = "tables"

	tableKeyPrefix = "table/"
	indexKey       = "index/tables"
)

// Errors
var (
	ErrTableExists   = errors.New("table already exists")
	ErrTableNotFound = errors.New("table not found")
	ErrInvalidName   = errors.New("invalid table name")
	ErrCatalogClosed = errors.New("catalog is closed")
)

var validName = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// tableRecord is the persisted form of a table's metadata.
type tableRecord struct {
	ID        string `msgpack:"id"`
	Name      string `msgpack:"name"`
	CreatedAt int64  `msgpack:"created_at"`
}

// Catalog maps table names to table directories.
type Catalog struct {
	db      *pebble.DB
	dataDir string
	logger  *slog.Logger

	registryOpts []action.Option
	mutex        sync.Mutex
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the catalog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRegistryOptions are applied to every action registry the catalog opens.
func WithRegistryOptions(opts ...action.Option) Option {
	return func(c *Catalog) {
		c.registryOpts = append(c.registryOpts, opts...)
	}
}

// Open opens, or creates, the catalog for dataDir.
func Open(dataDir string, opts ...Option) (*Catalog, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("data directory required")
	}
	if err := os.MkdirAll(filepath.Join(dataDir, tablesDir), 0750); err != nil {
		return nil, fmt.Errorf("failed to create tables directory: %w", err)
	}

	db, err := pebble.Open(filepath.Join(dataDir, catalogDir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	c := &Catalog{
		db:      db,
		dataDir: dataDir,
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// DataDir returns the directory the catalog manages.
func (c *Catalog) DataDir() string {
	return c.dataDir
}

// CreateTable registers a new table, creates its directory and writes an
// empty actions file so the table's registry can be saved.
func (c *Catalog) CreateTable(name string) (*table.Table, error) {
	if !validName.MatchString(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.db == nil {
		return nil, ErrCatalogClosed
	}

	if _, err := c.getRecord(name); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrTableExists, name)
	} else if !errors.Is(err, ErrTableNotFound) {
		return nil, err
	}

	rec := tableRecord{
		ID:        ksuid.New().String(),
		Name:      name,
		CreatedAt: time.Now().UnixNano(),
	}
	t, err := c.toTable(rec)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(t.Path(), 0750); err != nil {
		return nil, fmt.Errorf("failed to create table directory: %w", err)
	}
	if err := writeEmptyActions(t); err != nil {
		return nil, err
	}

	names, err := c.names()
	if err != nil {
		return nil, err
	}
	names = append(names, name)
	sort.Strings(names)

	if err := c.commit(func(b *pebble.Batch) error {
		if err := setEncoded(b, tableKeyPrefix+name, rec); err != nil {
			return err
		}
		return setEncoded(b, indexKey, names)
	}); err != nil {
		return nil, err
	}

	c.logger.Info("created table", "table", name, "id", rec.ID, "path", t.Path())
	return t, nil
}

// GetTable returns the named table without opening its registry.
func (c *Catalog) GetTable(name string) (*table.Table, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.db == nil {
		return nil, ErrCatalogClosed
	}

	rec, err := c.getRecord(name)
	if err != nil {
		return nil, err
	}
	return c.toTable(rec)
}

// OpenTable returns the named table with its action registry loaded.
func (c *Catalog) OpenTable(name string) (*table.Table, error) {
	t, err := c.GetTable(name)
	if err != nil {
		return nil, err
	}
	if err := t.Open(c.registryOpts...); err != nil {
		return nil, err
	}
	return t, nil
}

// ListTables returns every table ordered by name.
func (c *Catalog) ListTables() ([]*table.Table, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.db == nil {
		return nil, ErrCatalogClosed
	}

	names, err := c.names()
	if err != nil {
		return nil, err
	}

	tables := make([]*table.Table, 0, len(names))
	for _, name := range names {
		rec, err := c.getRecord(name)
		if err != nil {
			return nil, err
		}
		t, err := c.toTable(rec)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// DropTable removes the table's metadata and its directory.
func (c *Catalog) DropTable(name string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.db == nil {
		return ErrCatalogClosed
	}

	rec, err := c.getRecord(name)
	if err != nil {
		return err
	}

	names, err := c.names()
	if err != nil {
		return err
	}
	kept := names[:0]
	for _, n := range names {
		if n != name {
			kept = append(kept, n)
		}
	}

	if err := c.commit(func(b *pebble.Batch) error {
		if err := b.Delete([]byte(tableKeyPrefix+name), nil); err != nil {
			return err
		}
		return setEncoded(b, indexKey, kept)
	}); err != nil {
		return err
	}

	if err := os.RemoveAll(c.tablePath(name)); err != nil {
		return fmt.Errorf("failed to remove table directory: %w", err)
	}

	c.logger.Info("dropped table", "table", name, "id", rec.ID)
	return nil
}

// Close closes the underlying database.
func (c *Catalog) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

func (c *Catalog) tablePath(name string) string {
	return filepath.Join(c.dataDir, tablesDir, name)
}

func (c *Catalog) toTable(rec tableRecord) (*table.Table, error) {
	id, err := ksuid.Parse(rec.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid table id for %s: %w", rec.Name, err)
	}
	return table.New(id, rec.Name, c.tablePath(rec.Name), time.Unix(0, rec.CreatedAt)), nil
}

func (c *Catalog) getRecord(name string) (tableRecord, error) {
	var rec tableRecord
	found, err := c.getDecoded(tableKeyPrefix+name, &rec)
	if err != nil {
		return rec, err
	}
	if !found {
		return rec, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	return rec, nil
}

func (c *Catalog) names() ([]string, error) {
	var names []string
	if _, err := c.getDecoded(indexKey, &names); err != nil {
		return nil, err
	}
	return names, nil
}

func (c *Catalog) getDecoded(key string, v interface{}) (bool, error) {
	data, closer, err := c.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	defer closer.Close()

	if err := msgpack.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

func (c *Catalog) commit(fn func(*pebble.Batch) error) error {
	b := c.db.NewBatch()
	defer b.Close()

	if err := fn(b); err != nil {
		return err
	}
	if err := b.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("failed to commit catalog: %w", err)
	}
	return nil
}

func setEncoded(b *pebble.Batch, key string, v interface{}) error {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return b.Set([]byte(key), data, nil)
}

// writeEmptyActions creates the table's actions file with zero actions.
func writeEmptyActions(t *table.Table) error {
	reg, err := action.NewRegistry(t, action.WithCreateOnSave(true))
	if err != nil {
		return err
	}
	if err := reg.Save(); err != nil {
		return fmt.Errorf("failed to create actions file: %w", err)
	}
	return nil
}
