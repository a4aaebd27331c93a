package api

import (
	"time"

	"github.com/ssargent/skyactions/pkg/table"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Bind   string
	Port   int
	APIKey string // X-API-Key required on /api/v1 when set
}

// TableResponse describes a table
type TableResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ActionResponse describes a stored action
type ActionResponse struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// CreateTableRequest is the body of POST /tables
type CreateTableRequest struct {
	Name string `json:"name"`
}

// CreateActionRequest is the body of POST /tables/{table}/actions
type CreateActionRequest struct {
	Name string `json:"name"`
}

func newTableResponse(t *table.Table) TableResponse {
	return TableResponse{
		ID:        t.ID.String(),
		Name:      t.Name(),
		CreatedAt: t.CreatedAt,
	}
}
