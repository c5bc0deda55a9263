package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/gryp17/Tablaturi-bg-API/internal/contract"
	"github.com/gryp17/Tablaturi-bg-API/internal/domain"
	"github.com/gryp17/Tablaturi-bg-API/internal/platform/logger"
	"github.com/gryp17/Tablaturi-bg-API/internal/service"
)

const dateTimeLayout = "2006-01-02 15:04:05"

var articleFormFields = []contract.Field{
	contract.F("title", "required", "max-200"),
	contract.F("content", "required"),
	contract.F("date", "required", "datetime"),
	contract.F("picture", "optional", "valid-file-extensions[png,jpg,jpeg,gif]", "max-file-size-2000"),
}

var articleTable = contract.MustTable(
	contract.Endpoint("getArticles", contract.Public,
		contract.F("limit", "int"),
		contract.F("offset", "int"),
	),
	contract.Endpoint("getArticlesByDate", contract.Public,
		contract.F("date", "date"),
		contract.F("limit", "int"),
		contract.F("offset", "int"),
	),
	contract.Endpoint("getArticle", contract.Public,
		contract.F("id", "required", "int"),
	),
	contract.Endpoint("addArticle", contract.Admin, articleFormFields...),
	contract.Endpoint("updateArticle", contract.Admin,
		append([]contract.Field{contract.F("id", "required", "int")}, articleFormFields...)...),
)

// ArticleHandler serves the article controller.
type ArticleHandler struct {
	articles service.ArticleService
	logger   *slog.Logger
}

// NewArticleHandler creates a new ArticleHandler
func NewArticleHandler(articles service.ArticleService, logger *slog.Logger) *ArticleHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ArticleHandler")
	}
	return &ArticleHandler{
		articles: articles,
		logger:   logger.With(slog.String("component", "article_handler")),
	}
}

func (h *ArticleHandler) name() string          { return "article" }
func (h *ArticleHandler) table() *contract.Table { return articleTable }

func (h *ArticleHandler) handlers() map[string]contract.Handler {
	return map[string]contract.Handler{
		"getArticles":       h.List,
		"getArticlesByDate": h.ListByDate,
		"getArticle":        h.Get,
		"addArticle":        h.Add,
		"updateArticle":     h.Update,
	}
}

// List returns a page of articles, newest first.
func (h *ArticleHandler) List(ctx context.Context, call *contract.Call) (any, error) {
	limit, offset := page(call.Params)
	articles, total, err := h.articles.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if articles == nil {
		articles = []domain.Article{}
	}
	return ListResponse{Results: articles, Total: total}, nil
}

// ListByDate returns the articles published on one day.
func (h *ArticleHandler) ListByDate(ctx context.Context, call *contract.Call) (any, error) {
	day, err := time.Parse(dateLayout, call.Params.Get("date"))
	if err != nil {
		return nil, &contract.ValidationError{Field: "date", Code: contract.CodeInvalidDate}
	}
	limit, offset := page(call.Params)
	articles, err := h.articles.ListByDate(ctx, day, limit, offset)
	if err != nil {
		return nil, err
	}
	if articles == nil {
		articles = []domain.Article{}
	}
	return articles, nil
}

// Get returns an article and counts the view.
func (h *ArticleHandler) Get(ctx context.Context, call *contract.Call) (any, error) {
	return h.articles.View(ctx, call.Params.Int("id", 0))
}

// Add publishes an article by the session admin.
func (h *ArticleHandler) Add(ctx context.Context, call *contract.Call) (any, error) {
	in, closeInput, err := articleInput(call.Params)
	if err != nil {
		return nil, err
	}
	defer closeInput()

	article, err := h.articles.Create(ctx, call.Caller.UserID, in)
	if err != nil {
		return nil, err
	}
	logger.FromContextOrDefault(ctx, h.logger).Info("article published",
		slog.Int64("article_id", article.ID),
		slog.Int64("author_id", call.Caller.UserID))
	return article, nil
}

// Update replaces the text, date and optionally the picture of an article.
func (h *ArticleHandler) Update(ctx context.Context, call *contract.Call) (any, error) {
	in, closeInput, err := articleInput(call.Params)
	if err != nil {
		return nil, err
	}
	defer closeInput()

	return h.articles.Update(ctx, call.Params.Int("id", 0), in)
}

func articleInput(p contract.Params) (service.ArticleInput, func(), error) {
	date, err := time.Parse(dateTimeLayout, p.Get("date"))
	if err != nil {
		return service.ArticleInput{}, func() {},
			&contract.ValidationError{Field: "date", Code: contract.CodeInvalidDate}
	}
	picture, closePicture, err := openUpload(p, "picture")
	if err != nil {
		return service.ArticleInput{}, func() {}, err
	}
	return service.ArticleInput{
		Title:   p.Get("title"),
		Content: p.Get("content"),
		Date:    date,
		Picture: picture,
	}, closePicture, nil
}
