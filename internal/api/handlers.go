package api

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/gryp17/Tablaturi-bg-API/internal/api/shared"
	"github.com/gryp17/Tablaturi-bg-API/internal/contract"
	"github.com/gryp17/Tablaturi-bg-API/internal/service"
	"github.com/gryp17/Tablaturi-bg-API/internal/session"
)

// maxPageSize bounds the limit parameter of every list endpoint.
const maxPageSize = 100

var errNoSession = errors.New("request carries no session")

// ListResponse is one page of a listing and the size of the whole listing.
type ListResponse struct {
	Results any `json:"results"`
	Total   int `json:"total"`
}

// SuccessResponse acknowledges an operation with no other result.
type SuccessResponse struct {
	Success bool `json:"success"`
}

var success = SuccessResponse{Success: true}

// controller is a named group of endpoint handlers and their contracts.
type controller interface {
	name() string
	table() *contract.Table
	handlers() map[string]contract.Handler
}

func newDispatcher(c controller, eval *contract.Evaluator, opts ...contract.Option) (*contract.Dispatcher, error) {
	return contract.NewDispatcher(c.name(), c.table(), c.handlers(), eval, opts...)
}

func currentSession(ctx context.Context) (*session.Session, error) {
	s := shared.SessionFromContext(ctx)
	if s == nil {
		return nil, errNoSession
	}
	return s, nil
}

// page reads the limit and offset parameters of a list endpoint.
func page(p contract.Params) (limit, offset int) {
	limit = int(p.Int("limit", 10))
	limit = min(max(limit, 1), maxPageSize)
	offset = int(p.Int("offset", 0))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// openUpload opens the spooled file of field. It returns nil when no file was
// sent; the returned close function is never nil.
func openUpload(p contract.Params, field string) (*service.Upload, func(), error) {
	f := p.File(field)
	if f == nil || f.TempPath == "" {
		return nil, func() {}, nil
	}
	content, err := os.Open(f.TempPath)
	if err != nil {
		return nil, func() {}, fmt.Errorf("open upload %q: %w", field, err)
	}
	return &service.Upload{Name: f.Name, Content: content}, func() { _ = content.Close() }, nil
}
