package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/ssargent/skyactions/pkg/action"
	"github.com/ssargent/skyactions/pkg/catalog"
	"github.com/ssargent/skyactions/pkg/logging"
	"github.com/ssargent/skyactions/pkg/table"
)

// maxBodySize caps request bodies, which only ever carry a name.
const maxBodySize = 64 << 10

// Server holds the API server state.
//
// Action registries are not safe for concurrent use, so every request that
// touches an open table holds mutex for its whole duration.
type Server struct {
	tables  TableStore
	config  ServerConfig
	metrics *Metrics
	logger  *slog.Logger

	mutex sync.Mutex
	open  map[string]*table.Table
}

// NewServer creates a new API server
func NewServer(tables TableStore, config ServerConfig, metrics *Metrics, logger *slog.Logger) *Server {
	if metrics == nil {
		metrics = NewMetrics()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Server{
		tables:  tables,
		config:  config,
		metrics: metrics,
		logger:  logger,
		open:    make(map[string]*table.Table),
	}
}

// Close releases every table the server has opened
func (s *Server) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var errs []error
	for name, t := range s.open {
		if err := t.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(s.open, name)
	}
	return errors.Join(errs...)
}

// openTable returns a cached open table, loading it on first use.
// Callers must hold s.mutex.
func (s *Server) openTable(name string) (*table.Table, error) {
	if t, ok := s.open[name]; ok {
		return t, nil
	}
	t, err := s.tables.OpenTable(name)
	if err != nil {
		return nil, err
	}
	s.open[name] = t
	return t, nil
}

// evict drops a cached table so the next request reloads it from disk.
// Callers must hold s.mutex.
func (s *Server) evict(name string) {
	if t, ok := s.open[name]; ok {
		_ = t.Close()
		delete(s.open, name)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": "healthy"})
}

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := s.tables.ListTables()
	if err != nil {
		s.sendFailure(w, "list tables", err)
		return
	}

	out := make([]TableResponse, 0, len(tables))
	for _, t := range tables {
		out = append(out, newTableResponse(t))
	}
	sendSuccess(w, out)
}

func (s *Server) handleCreateTable(w http.ResponseWriter, r *http.Request) {
	var req CreateTableRequest
	if err := decodeBody(w, r, &req); err != nil {
		sendError(w, "Invalid JSON in request body", http.StatusBadRequest)
		return
	}

	t, err := s.tables.CreateTable(req.Name)
	if err != nil {
		s.sendFailure(w, "create table", err)
		return
	}
	sendCreated(w, newTableResponse(t))
}

func (s *Server) handleDropTable(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "table")

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.evict(name)
	if err := s.tables.DropTable(name); err != nil {
		s.sendFailure(w, "drop table", err)
		return
	}
	sendSuccess(w, map[string]string{"dropped": name})
}

func (s *Server) handleListActions(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "table")

	s.mutex.Lock()
	defer s.mutex.Unlock()

	t, err := s.openTable(name)
	if err != nil {
		s.sendFailure(w, "open table", err)
		return
	}

	actions := t.Actions().Actions()
	out := make([]ActionResponse, 0, len(actions))
	for _, a := range actions {
		out = append(out, ActionResponse{ID: a.ID, Name: a.Name})
	}
	sendSuccess(w, out)
}

func (s *Server) handleCreateAction(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "table")

	var req CreateActionRequest
	if err := decodeBody(w, r, &req); err != nil {
		sendError(w, "Invalid JSON in request body", http.StatusBadRequest)
		return
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	t, err := s.openTable(name)
	if err != nil {
		s.sendFailure(w, "open table", err)
		return
	}

	a, err := t.AddAction(req.Name)
	if err != nil {
		if !isClientError(err) {
			// The in-memory registry may now be ahead of the file.
			s.evict(name)
		}
		s.sendFailure(w, "add action", err)
		return
	}
	sendCreated(w, ActionResponse{ID: a.ID, Name: a.Name})
}

func (s *Server) handleGetAction(w http.ResponseWriter, r *http.Request) {
	tableName := chi.URLParam(r, "table")
	actionName := chi.URLParam(r, "name")

	s.mutex.Lock()
	defer s.mutex.Unlock()

	t, err := s.openTable(tableName)
	if err != nil {
		s.sendFailure(w, "open table", err)
		return
	}

	a, err := t.Actions().FindByName(actionName)
	if err != nil {
		s.sendFailure(w, "find action", err)
		return
	}
	if a == nil {
		sendError(w, "Action not found", http.StatusNotFound)
		return
	}
	sendSuccess(w, ActionResponse{ID: a.ID, Name: a.Name})
}

func (s *Server) sendFailure(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "op", op, "error", err)
		sendError(w, "Internal server error", status)
		return
	}
	sendError(w, err.Error(), status)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrTableNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrTableExists),
		errors.Is(err, action.ErrDuplicateName):
		return http.StatusConflict
	case errors.Is(err, catalog.ErrInvalidName),
		errors.Is(err, action.ErrNameRequired),
		errors.Is(err, action.ErrNameTooLong):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func isClientError(err error) bool {
	return statusFor(err) < http.StatusInternalServerError
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
