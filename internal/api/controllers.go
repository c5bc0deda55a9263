package api

import (
	"errors"
	"log/slog"

	"github.com/gryp17/Tablaturi-bg-API/internal/contract"
	"github.com/gryp17/Tablaturi-bg-API/internal/mail"
	"github.com/gryp17/Tablaturi-bg-API/internal/service"
	"github.com/gryp17/Tablaturi-bg-API/internal/storage"
	"github.com/gryp17/Tablaturi-bg-API/internal/store"
)

// Dependencies are the collaborators of the controllers.
type Dependencies struct {
	Accounts      service.AccountService
	Comments      service.CommentService
	Articles      service.ArticleService
	Tabs          service.TabService
	BackingTracks service.BackingTrackService
	Favourites    store.FavouriteStore
	Files         storage.FileStore
	Mailer        mail.Mailer
	Challenges    ChallengeIssuer
	// Uniqueness backs the unique[...] rules.
	Uniqueness     contract.UniquenessChecker
	ContactAddress string
	Logger         *slog.Logger
}

// NewDispatchers builds the dispatcher of every controller. opts apply to all
// of them.
func NewDispatchers(deps Dependencies, opts ...contract.Option) ([]*contract.Dispatcher, error) {
	switch {
	case deps.Accounts == nil, deps.Comments == nil, deps.Articles == nil, deps.Tabs == nil,
		deps.BackingTracks == nil, deps.Favourites == nil, deps.Files == nil,
		deps.Mailer == nil, deps.Challenges == nil, deps.Uniqueness == nil:
		return nil, errors.New("every controller dependency is required")
	}
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	eval := contract.NewEvaluator(deps.Uniqueness)
	opts = append([]contract.Option{contract.WithLogger(log)}, opts...)

	controllers := []controller{
		NewUserHandler(deps.Accounts, log),
		NewFavouriteHandler(deps.Favourites, log),
		NewCommentHandler(deps.Comments, deps.Accounts, log),
		NewBackingTrackHandler(deps.BackingTracks, log),
		NewMiscHandler(deps.Challenges, deps.Mailer, deps.ContactAddress, log),
		NewCDNHandler(deps.Files, log),
		NewArticleHandler(deps.Articles, log),
		NewTabHandler(deps.Tabs, log),
	}

	dispatchers := make([]*contract.Dispatcher, 0, len(controllers))
	for _, c := range controllers {
		d, err := newDispatcher(c, eval, opts...)
		if err != nil {
			return nil, err
		}
		dispatchers = append(dispatchers, d)
	}
	return dispatchers, nil
}
