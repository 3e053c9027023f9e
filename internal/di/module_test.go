package di

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"go.uber.org/fx"

	"github.com/polkiloo/library/internal/app"
	"github.com/polkiloo/library/internal/config"
	"github.com/polkiloo/library/internal/domain/model"
	"github.com/polkiloo/library/internal/domain/repository"
	"github.com/polkiloo/library/internal/storage/postgres"
	"github.com/polkiloo/library/internal/test"
	"github.com/polkiloo/library/internal/worker"
)

func TestModuleComposesGraphWithReplacements(t *testing.T) {
	cfg := &config.Config{
		RunAddress:          ":0",
		DatabaseURI:         "postgres://stub",
		SessionSecret:       "secret",
		SessionTTL:          time.Hour,
		AdminUsername:       "admin",
		AdminPassword:       "admin123",
		LoanPeriod:          time.Hour,
		ReturnPolicy:        config.ReturnPolicyOwner,
		LendingMaxAttempts:  2,
		OverdueScanInterval: time.Millisecond,
		OverdueBatchSize:    1,
		ShutdownTimeout:     time.Millisecond,
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	store := test.NewLibraryStore()

	var (
		facade  *app.LibraryFacade
		monitor *worker.OverdueMonitor
	)
	fxApp := fx.New(
		fx.NopLogger,
		fx.Supply(context.Background()),
		Module(
			fx.Replace(cfg),
			fx.Replace(logger),
			fx.Replace(&postgres.Storage{}),
			fx.Replace(repository.Factory(store)),
		),
		fx.Populate(&facade, &monitor),
	)

	if err := fxApp.Err(); err != nil {
		t.Fatalf("fx app returned error: %v", err)
	}
	t.Cleanup(func() { _ = fxApp.Stop(context.Background()) })
	if facade == nil || monitor == nil {
		t.Fatal("expected library facade and overdue monitor instances")
	}

	ctx := context.Background()
	identity, _, err := facade.Authenticate(ctx, "admin", "admin123")
	if err != nil || identity != model.AdminIdentity() {
		t.Fatalf("expected configured administrator to log in, got %+v err=%v", identity, err)
	}

	book, err := facade.AddBook(ctx, identity, model.NewBook{Title: "Dune", TotalCopies: 1})
	if err != nil {
		t.Fatalf("add book returned error: %v", err)
	}
	if _, ok := store.Book(book.ID); !ok {
		t.Fatal("expected replaced repository to receive the book")
	}
}
