package api

import (
	"context"
	"log/slog"

	"github.com/gryp17/Tablaturi-bg-API/internal/contract"
	"github.com/gryp17/Tablaturi-bg-API/internal/domain"
	"github.com/gryp17/Tablaturi-bg-API/internal/service"
)

var commentTable = contract.MustTable(
	contract.Endpoint("getUserComments", contract.User,
		contract.F("user_id", "int"),
		contract.F("limit", "int"),
		contract.F("offset", "int"),
	),
	contract.Endpoint("addUserComment", contract.User,
		contract.F("user_id", "int"),
		contract.F("content", "required", "max-500"),
	),
)

// CommentHandler serves the userComment controller.
type CommentHandler struct {
	comments service.CommentService
	accounts service.AccountService
	logger   *slog.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(
	comments service.CommentService,
	accounts service.AccountService,
	logger *slog.Logger,
) *CommentHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CommentHandler")
	}
	return &CommentHandler{
		comments: comments,
		accounts: accounts,
		logger:   logger.With(slog.String("component", "comment_handler")),
	}
}

func (h *CommentHandler) name() string          { return "userComment" }
func (h *CommentHandler) table() *contract.Table { return commentTable }

func (h *CommentHandler) handlers() map[string]contract.Handler {
	return map[string]contract.Handler{
		"getUserComments": h.List,
		"addUserComment":  h.Add,
	}
}

// List returns a page of the comments on the profile of user_id.
func (h *CommentHandler) List(ctx context.Context, call *contract.Call) (any, error) {
	limit, offset := page(call.Params)
	comments, total, err := h.comments.List(ctx, call.Params.Int("user_id", 0), limit, offset)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []domain.UserComment{}
	}
	return ListResponse{Results: comments, Total: total}, nil
}

// Add posts a comment by the session member on the profile of user_id.
func (h *CommentHandler) Add(ctx context.Context, call *contract.Call) (any, error) {
	author, err := h.accounts.GetUser(ctx, call.Caller.UserID)
	if err != nil {
		return nil, err
	}
	if _, err := h.comments.Add(ctx, author, call.Params.Int("user_id", 0), call.Params.Get("content")); err != nil {
		return nil, err
	}
	return success, nil
}
