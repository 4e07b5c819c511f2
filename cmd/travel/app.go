package main

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/Skotchmaster/travel_app/internal/config"
	"github.com/Skotchmaster/travel_app/internal/events"
	"github.com/Skotchmaster/travel_app/internal/repo"
	"github.com/Skotchmaster/travel_app/internal/search"
	"github.com/Skotchmaster/travel_app/internal/service"
	httpserver "github.com/Skotchmaster/travel_app/internal/transport/http"
	"github.com/Skotchmaster/travel_app/migrations"
	"github.com/Skotchmaster/travel_app/pkg/clock"
	"github.com/Skotchmaster/travel_app/pkg/db"
	"github.com/Skotchmaster/travel_app/pkg/hash"
	"github.com/Skotchmaster/travel_app/pkg/logging"
	"github.com/Skotchmaster/travel_app/pkg/tokens"
)

type app struct {
	cfg    *config.Config
	log    *slog.Logger
	db     *gorm.DB
	store  *repo.GormRepo
	events events.Publisher
	deps   *httpserver.Deps
}

func loadConfig(ctx context.Context) (*config.Config, *slog.Logger, context.Context, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, nil, ctx, err
	}
	l := logging.New(cfg.LogLevel)
	slog.SetDefault(l)
	return cfg, l, logging.IntoContext(ctx, l), nil
}

func openStore(ctx context.Context, cfg *config.Config) (*gorm.DB, *repo.GormRepo, error) {
	gdb, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return gdb, repo.New(gdb, clock.Real{}), nil
}

// migrate brings the schema up to date: goose for postgres, AutoMigrate for
// sqlite files.
func migrate(ctx context.Context, cfg *config.Config, store *repo.GormRepo) error {
	if db.IsSQLite(cfg.DatabaseURL) {
		return store.Migrate(ctx)
	}
	m, err := migrations.Open(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer m.Close()
	return m.Up(ctx)
}

func newApp(ctx context.Context, cfg *config.Config, l *slog.Logger) (*app, error) {
	gdb, store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	codec, err := tokens.NewCodec(cfg.Tokens(), clock.Real{})
	if err != nil {
		_ = db.Close(gdb)
		return nil, fmt.Errorf("token codec: %w", err)
	}

	hasher, err := hash.New(cfg.Hashing())
	if err != nil {
		_ = db.Close(gdb)
		return nil, fmt.Errorf("password hasher: %w", err)
	}

	var pub events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		p, err := events.NewProducer(cfg.KafkaBrokers, l)
		if err != nil {
			_ = db.Close(gdb)
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		pub = p
	}

	trips := &service.TripService{Store: store, Events: pub}
	users := &service.UserService{Store: store, Events: pub}
	if cfg.ESURL != "" {
		es, err := search.NewClient(ctx, cfg.Search())
		if err != nil {
			l.Warn("elasticsearch_unavailable", "error", err, "fallback", "database search")
		} else {
			trips.Index = es
			users.Index = es
		}
	}

	access := &service.AccessControl{Store: store}
	trips.Access = access

	return &app{
		cfg:    cfg,
		log:    l,
		db:     gdb,
		store:  store,
		events: pub,
		deps: &httpserver.Deps{
			Logger:      l,
			DB:          store,
			CORSOrigins: cfg.CORSOrigins,
			Auth: &service.AuthService{
				Store:         store,
				Hasher:        hasher,
				Tokens:        codec,
				Clock:         clock.Real{},
				Events:        pub,
				RotateRefresh: cfg.RotateRefreshTokens,
			},
			Users:    users,
			Trips:    trips,
			Members:  &service.MemberService{Store: store, Access: access, Events: pub},
			Messages: &service.MessageService{Store: store, Access: access},
			Comments: &service.CommentService{Store: store, Access: access},
		},
	}, nil
}

func (a *app) Close() {
	if err := a.events.Close(); err != nil {
		a.log.Error("kafka close error", "error", err)
	}
	if err := db.Close(a.db); err != nil {
		a.log.Error("db close error", "error", err)
	}
}
