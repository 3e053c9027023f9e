package postgres

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/library/internal/config"
	"github.com/polkiloo/library/internal/domain/repository"
)

// Module wires PostgreSQL storage and repository adapters.
var Module = fx.Options(
	fx.Provide(newStorage),
	repositories,
	fx.Invoke(registerLifecycle),
)

var repositories = fx.Provide(
	func(s *Storage) repository.Factory { return s },
	func(f repository.Factory) repository.UserRepository { return f.Users() },
	func(f repository.Factory) repository.BookRepository { return f.Books() },
	func(f repository.Factory) repository.BorrowRepository { return f.Borrows() },
)

type storageParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

func newStorage(p storageParams) (*Storage, error) {
	return New(p.Ctx, p.Config.DatabaseURI, p.Logger)
}

func registerLifecycle(lc fx.Lifecycle, storage *Storage) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			storage.Close()
			return nil
		},
	})
}
