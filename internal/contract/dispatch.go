package contract

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/gryp17/Tablaturi-bg-API/internal/platform/logger"
)

// Request is the raw material of one dispatch: the two parameter sources,
// uploaded files and the per-request session views.
type Request struct {
	Query url.Values
	Body  url.Values
	Files map[string]*File
	// BodySize is the request's Content-Length in bytes.
	BodySize  int64
	Session   SessionSource
	Challenge ChallengeSource
}

// Call is what a handler receives once the request passed every check.
type Call struct {
	Endpoint string
	Params   Params
	// Caller is nil for anonymous requests.
	Caller *Caller
}

// Handler runs the business logic of one endpoint.
type Handler func(ctx context.Context, call *Call) (any, error)

// Order selects when the access check runs relative to parameter validation.
type Order int

const (
	// ValidateThenAuthorize reports malformed parameters before checking
	// access, so anonymous callers learn about field errors.
	ValidateThenAuthorize Order = iota
	// AuthorizeThenValidate rejects unauthorized callers before any field is
	// inspected.
	AuthorizeThenValidate
)

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// AuthorizeFirst runs the access check before validation.
func AuthorizeFirst() Option {
	return func(d *Dispatcher) { d.order = AuthorizeThenValidate }
}

// WithLogger sets the fallback logger used when the context carries none.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// Dispatcher routes the requests of one controller: it resolves the contract
// of the requested endpoint, validates the declared fields, checks access and
// invokes the handler. It is immutable and safe for concurrent use.
type Dispatcher struct {
	name     string
	table    *Table
	handlers map[string]Handler
	eval     *Evaluator
	order    Order
	logger   *slog.Logger
}

// NewDispatcher binds handlers to the contracts of table. Every contract needs
// a handler and every handler a contract.
func NewDispatcher(
	name string,
	table *Table,
	handlers map[string]Handler,
	eval *Evaluator,
	opts ...Option,
) (*Dispatcher, error) {
	if table == nil {
		return nil, fmt.Errorf("dispatcher %q: nil contract table", name)
	}
	if eval == nil {
		return nil, fmt.Errorf("dispatcher %q: nil evaluator", name)
	}
	bound := make(map[string]Handler, len(handlers))
	for _, endpoint := range table.Endpoints() {
		h, ok := handlers[endpoint]
		if !ok || h == nil {
			return nil, fmt.Errorf("dispatcher %q: no handler for endpoint %q", name, endpoint)
		}
		bound[endpoint] = h
	}
	for endpoint := range handlers {
		if _, ok := table.Lookup(endpoint); !ok {
			return nil, fmt.Errorf("dispatcher %q: handler %q has no contract", name, endpoint)
		}
	}

	d := &Dispatcher{
		name:     name,
		table:    table,
		handlers: bound,
		eval:     eval,
		order:    ValidateThenAuthorize,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With(slog.String("controller", name))
	return d, nil
}

// Name returns the controller name.
func (d *Dispatcher) Name() string { return d.name }

// Table returns the contract table.
func (d *Dispatcher) Table() *Table { return d.table }

// Dispatch extracts the parameters of req, resolves the endpoint contract,
// validates and authorizes the request and hands it to the endpoint handler.
//
// It fails with ErrInvalidRequest, ErrNotFound, a *ValidationError or
// ErrAccessDenied, or with whatever internal error a collaborator or the
// handler returned.
func (d *Dispatcher) Dispatch(ctx context.Context, req *Request) (any, error) {
	log := logger.FromContextOrDefault(ctx, d.logger)

	params, err := Extract(req.Query, req.Body, req.Files)
	if err != nil {
		log.Debug("request has no routing field")
		return nil, err
	}

	endpoint := params.Endpoint()
	c, ok := d.table.Lookup(endpoint)
	if !ok {
		log.Debug("unknown endpoint", slog.String("endpoint", endpoint))
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, d.name, endpoint)
	}
	log = log.With(slog.String("endpoint", endpoint))

	var caller *Caller
	if d.order == AuthorizeThenValidate {
		if caller, err = d.authorize(ctx, c, req); err != nil {
			log.Debug("access check failed", slog.String("required", c.Access.String()))
			return nil, err
		}
	}

	in := &Input{Params: params, BodySize: req.BodySize, Challenge: req.Challenge}
	for _, field := range c.Fields {
		if err := d.eval.Evaluate(ctx, field.Name, field.Rules, in); err != nil {
			if verr, ok := AsValidationError(err); ok {
				log.Debug("validation failed",
					slog.String("field", verr.Field),
					slog.String("error_code", verr.ErrorCode()))
			}
			return nil, err
		}
	}

	if d.order == ValidateThenAuthorize {
		if caller, err = d.authorize(ctx, c, req); err != nil {
			log.Debug("access check failed", slog.String("required", c.Access.String()))
			return nil, err
		}
	}

	return d.handlers[endpoint](ctx, &Call{Endpoint: endpoint, Params: params, Caller: caller})
}

func (d *Dispatcher) authorize(ctx context.Context, c *Contract, req *Request) (*Caller, error) {
	var caller *Caller
	if req.Session != nil {
		var err error
		caller, err = req.Session.CurrentCaller(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve caller: %w", err)
		}
	}
	if !Authorize(c.Access, caller) {
		return nil, ErrAccessDenied
	}
	return caller, nil
}
