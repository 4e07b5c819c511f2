package repo

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/travel_app/internal/models"
	"github.com/Skotchmaster/travel_app/pkg/clock"
	"github.com/Skotchmaster/travel_app/pkg/db"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

const pgUniqueViolation = "23505"

// Store is the unit of work handed to services. Inside Transaction every
// repository shares the same transactional handle.
type Store interface {
	Users() UserRepository
	RefreshTokens() RefreshTokenStore
	Trips() TripRepository
	Members() MemberRepository
	Messages() MessageRepository
	Comments() CommentRepository

	Transaction(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}

type GormRepo struct {
	DB    *gorm.DB
	Clock clock.Clock
}

func New(gdb *gorm.DB, clk clock.Clock) *GormRepo {
	if clk == nil {
		clk = clock.Real{}
	}
	return &GormRepo{DB: gdb, Clock: clk}
}

func (r *GormRepo) Users() UserRepository            { return &userRepo{db: r.DB} }
func (r *GormRepo) RefreshTokens() RefreshTokenStore { return &refreshRepo{db: r.DB, clock: r.Clock} }
func (r *GormRepo) Trips() TripRepository            { return &tripRepo{db: r.DB} }
func (r *GormRepo) Members() MemberRepository        { return &memberRepo{db: r.DB} }
func (r *GormRepo) Messages() MessageRepository      { return &messageRepo{db: r.DB} }
func (r *GormRepo) Comments() CommentRepository      { return &commentRepo{db: r.DB} }

// Transaction commits when fn returns nil and rolls back on error or panic.
func (r *GormRepo) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepo{DB: tx, Clock: r.Clock})
	})
}

func (r *GormRepo) Ping(ctx context.Context) error {
	return db.Ping(ctx, r.DB)
}

// Migrate creates or updates every table. Postgres deployments run it through goose.
func (r *GormRepo) Migrate(ctx context.Context) error {
	return r.DB.WithContext(ctx).AutoMigrate(models.All()...)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case isUniqueViolation(err):
		return ErrDuplicate
	}
	return err
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// forUpdate locks the selected rows on postgres; sqlite serialises writers anyway.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func likePattern(q string) string {
	return "%" + escapeLike(q) + "%"
}

func escapeLike(q string) string {
	out := make([]rune, 0, len(q))
	for _, r := range q {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
