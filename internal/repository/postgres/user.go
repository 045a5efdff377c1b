package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/avoronov/account-service/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

const uniqueViolationCode = "23505"

// publicColumns is every user column except the password hash. The hash is
// selected only by GetByEmailWithHash.
const publicColumns = `id, first_name, last_name, email, avatar, role, active, password_changed_at, created_at, updated_at`

// sortColumns maps API sort field names to table columns. Unknown fields
// are ignored.
var sortColumns = map[string]string{
	"firstName": "first_name",
	"lastName":  "last_name",
	"email":     "email",
	"role":      "role",
	"createdAt": "created_at",
}

type UserRepository struct {
	db *Connection
}

func NewUserRepository(db *Connection) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

func (r *UserRepository) scanPublic(row pgx.Row) (model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.Avatar,
		&user.Role, &user.Active, &user.PasswordChangedAt, &user.CreatedAt, &user.UpdatedAt,
	)
	return user, err
}

// GetByID reads a user by primary key regardless of active state.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	query := `SELECT ` + publicColumns + ` FROM users WHERE id = $1`

	user, err := r.scanPublic(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

func (r *UserRepository) GetActiveByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	query := `SELECT ` + publicColumns + ` FROM users WHERE id = $1 AND active = TRUE`

	user, err := r.scanPublic(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	query := `SELECT ` + publicColumns + ` FROM users WHERE email = $1`

	user, err := r.scanPublic(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// GetByEmailWithHash is the elevated read used only for login verification.
func (r *UserRepository) GetByEmailWithHash(ctx context.Context, email string) (model.User, error) {
	query := `SELECT id, first_name, last_name, email, password_hash, avatar, role, active, password_changed_at, created_at, updated_at
			  FROM users WHERE email = $1`

	var user model.User
	err := r.db.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.PasswordHash, &user.Avatar,
		&user.Role, &user.Active, &user.PasswordChangedAt, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	query := `INSERT INTO users (id, first_name, last_name, email, password_hash, avatar, role, active, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			  RETURNING ` + publicColumns

	savedUser, err := r.scanPublic(r.db.QueryRow(ctx, query,
		user.ID, user.FirstName, user.LastName, user.Email, user.PasswordHash,
		user.Avatar, user.Role, user.Active, user.CreatedAt, user.UpdatedAt,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return model.User{}, model.ErrDuplicateEmail
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return savedUser, nil
}

func (r *UserRepository) Update(ctx context.Context, id uuid.UUID, update model.UserUpdate) (model.User, error) {
	sets := []string{"updated_at = NOW()"}
	args := []any{id}

	appendSet := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.FirstName != nil {
		appendSet("first_name", *update.FirstName)
	}
	if update.LastName != nil {
		appendSet("last_name", *update.LastName)
	}
	if update.Email != nil {
		appendSet("email", *update.Email)
	}
	if update.Avatar != nil {
		appendSet("avatar", *update.Avatar)
	}
	if update.Role != nil {
		appendSet("role", *update.Role)
	}
	if update.PasswordHash != nil {
		appendSet("password_hash", *update.PasswordHash)
	}
	if update.PasswordChangedAt != nil {
		appendSet("password_changed_at", *update.PasswordChangedAt)
	}

	query := `UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id = $1 RETURNING ` + publicColumns

	user, err := r.scanPublic(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		if isUniqueViolation(err) {
			return model.User{}, model.ErrDuplicateEmail
		}
		return model.User{}, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

func (r *UserRepository) Deactivate(ctx context.Context, id uuid.UUID) (model.User, error) {
	query := `UPDATE users SET active = FALSE, updated_at = NOW() WHERE id = $1 RETURNING ` + publicColumns

	user, err := r.scanPublic(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to deactivate user: %w", err)
	}

	return user, nil
}

func (r *UserRepository) List(ctx context.Context, params model.ListParams) ([]model.User, error) {
	params = params.Normalize()

	order := make([]string, 0, len(params.Sort))
	for _, s := range params.Sort {
		column, ok := sortColumns[s.Field]
		if !ok {
			continue
		}
		direction := "ASC"
		if s.Desc {
			direction = "DESC"
		}
		order = append(order, column+" "+direction)
	}
	if len(order) == 0 {
		order = append(order, "created_at ASC")
	}

	query := `SELECT ` + publicColumns + ` FROM users ORDER BY ` + strings.Join(order, ", ") + ` LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, params.Limit, (params.Page-1)*params.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0, params.Limit)
	for rows.Next() {
		user, err := r.scanPublic(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read user rows: %w", err)
	}

	return users, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
