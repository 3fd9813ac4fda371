package main

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/and161185/smartfit/internal/auth"
	"github.com/and161185/smartfit/internal/config"
	"github.com/and161185/smartfit/internal/limiter"
	"github.com/and161185/smartfit/internal/migrate"
	"github.com/and161185/smartfit/internal/repository"
	"github.com/and161185/smartfit/internal/repository/docstore"
	"github.com/and161185/smartfit/internal/repository/postgres"
)

// deps are the backends selected by configuration.
type deps struct {
	entries  repository.EntryRepository
	settings repository.SettingsRepository
	verifier auth.Verifier
	limiter  limiter.Limiter
	ping     func(context.Context) error
	closers  []func()
}

func (d *deps) close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

func wire(ctx context.Context, cfg config.Config, logger *zap.Logger) (*deps, error) {
	d := &deps{}
	policy := limiter.Policy{
		Window:   cfg.VerifyWindow,
		MaxFails: cfg.VerifyMaxFails,
		BlockFor: cfg.VerifyBlock,
	}

	var app *firebase.App
	if cfg.NeedsFirebase() {
		var opts []option.ClientOption
		if cfg.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
		}
		a, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProject}, opts...)
		if err != nil {
			return nil, fmt.Errorf("firebase app: %w", err)
		}
		app = a
	}

	switch cfg.StorageDriver {
	case config.DriverFirestore:
		client, err := app.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("firestore client: %w", err)
		}
		store := docstore.New(client)
		d.closers = append(d.closers, func() { _ = store.Close() })
		d.entries = docstore.NewEntryRepo(store)
		d.settings = docstore.NewSettingsRepo(store)
		d.limiter = limiter.NewMemory(policy)
		d.ping = store.Ping
	default:
		if err := migrate.Up(ctx, cfg.DatabaseURL, logger); err != nil {
			return nil, fmt.Errorf("migrate up: %w", err)
		}
		db, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			d.close()
			return nil, fmt.Errorf("postgres: %w", err)
		}
		d.closers = append(d.closers, db.Close)
		d.entries = postgres.NewEntryRepo(db)
		d.settings = postgres.NewSettingsRepo(db)
		d.limiter = limiter.NewPG(db.Pool, policy)
		d.ping = db.Pool.Ping
	}

	switch cfg.AuthMode {
	case config.AuthJWT:
		d.verifier = auth.NewJWTVerifier([]byte(cfg.JWTKey))
	default:
		client, err := app.Auth(ctx)
		if err != nil {
			d.close()
			return nil, fmt.Errorf("firebase auth: %w", err)
		}
		d.verifier = auth.NewFirebaseVerifier(client)
	}
	return d, nil
}
