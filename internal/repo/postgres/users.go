package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/runhub-app/runhub/internal/domain/user"
	"github.com/runhub-app/runhub/internal/observability"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already in use")
	ErrPhoneTaken   = errors.New("phone already in use")
)

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const userColumns = `id, email, phone, password_hash, name, created_at`

func (r *UsersRepo) getBy(ctx context.Context, op, where string, arg any) (user.User, error) {
	var u user.User

	err := r.observe(op, func() error {
		scanErr := r.pool.QueryRow(
			ctx,
			`SELECT `+userColumns+` FROM users WHERE `+where+` = $1`,
			arg,
		).Scan(
			&u.ID,
			&u.Email,
			&u.Phone,
			&u.PasswordHash,
			&u.Name,
			&u.CreatedAt,
		)

		// absence is an answer, not a failure worth a metric
		if errors.Is(scanErr, pgx.ErrNoRows) {
			return nil
		}

		return scanErr
	})

	if err != nil {
		return user.User{}, err
	}

	if u.ID == 0 {
		return user.User{}, ErrUserNotFound
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getBy(ctx, "users.get_by_email", "email", email)
}

func (r *UsersRepo) GetByPhone(ctx context.Context, phone string) (user.User, error) {
	return r.getBy(ctx, "users.get_by_phone", "phone", phone)
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	return r.getBy(ctx, "users.get_by_id", "id", id)
}

// Create inserts the identity row. The unique indexes on email and phone are
// the real duplicate guard; a constraint violation here is mapped to the
// same conflict errors the handler's pre-check produces, which closes the
// check-then-insert race window between concurrent registrations.
func (r *UsersRepo) Create(ctx context.Context, email, phone *string, passwordHash, name string) (user.User, error) {
	var u user.User

	err := r.observe("users.create", func() error {
		return r.pool.QueryRow(
			ctx,
			`INSERT INTO users (email, phone, password_hash, name)
			 VALUES ($1, $2, $3, $4)
			 RETURNING `+userColumns,
			email, phone, passwordHash, name,
		).Scan(
			&u.ID,
			&u.Email,
			&u.Phone,
			&u.PasswordHash,
			&u.Name,
			&u.CreatedAt,
		)
	})

	if err != nil {
		var pgErr *pgconn.PgError

		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if pgErr.ConstraintName == "users_phone_key" {
				return user.User{}, ErrPhoneTaken
			}

			return user.User{}, ErrEmailTaken
		}

		return user.User{}, err
	}

	return u, nil
}
