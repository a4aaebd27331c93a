package api

import (
	"context"
	"log/slog"

	"github.com/ssargent/skyactions/pkg/table"
)

// TableStore is the catalog surface the server depends on
type TableStore interface {
	CreateTable(name string) (*table.Table, error)
	OpenTable(name string) (*table.Table, error)
	ListTables() ([]*table.Table, error)
	DropTable(name string) error
}

// ServerStarter defines the interface for starting the API server
type ServerStarter interface {
	// StartServer serves until ctx is cancelled
	StartServer(ctx context.Context, tables TableStore, config ServerConfig, metrics *Metrics, logger *slog.Logger) error
}

// ServerFactory creates server instances
type ServerFactory interface {
	// CreateServerStarter creates a server starter
	CreateServerStarter() ServerStarter
}
