package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicateEmail is returned when the email is already registered.
var ErrDuplicateEmail = errors.New("email already registered")

// ErrNotFound is returned when no user matches the lookup.
var ErrNotFound = errors.New("user not found")

// Repository persists users in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const userColumns = `id, name, email, password_hash, role, class, year, roll_number, photo, created_at`

// Create inserts a new user. Uniqueness of email is enforced by the store;
// a violation surfaces as ErrDuplicateEmail with no write performed.
func (r *Repository) Create(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = "student"
	}
	u.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, role, class, year, roll_number, photo, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.Class, u.Year, u.RollNumber, u.Photo, u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// GetByEmail returns the user with the given email, or nil when absent.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// GetByID returns the user with the given id, or nil when absent.
func (r *Repository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByRollNumber resolves a student by the roster key reported by the
// capture device, or nil when absent.
func (r *Repository) GetByRollNumber(ctx context.Context, roll string) (*User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE roll_number = $1`, roll)
}

func (r *Repository) getOne(ctx context.Context, query string, arg any) (*User, error) {
	var u User
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Class, &u.Year, &u.RollNumber, &u.Photo, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateFields carries a partial update; nil fields are left unchanged.
// PasswordHash must already be hashed by the caller.
type UpdateFields struct {
	Name         *string
	Email        *string
	PasswordHash *string
	Class        *string
	Year         *int
	RollNumber   *string
}

// Update applies a partial update to a user, returning ErrNotFound when the
// id does not exist.
func (r *Repository) Update(ctx context.Context, id string, f UpdateFields) error {
	sets := []string{}
	args := []any{}
	add := func(col string, val any) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if f.Name != nil {
		add("name", *f.Name)
	}
	if f.Email != nil {
		add("email", *f.Email)
	}
	if f.PasswordHash != nil {
		add("password_hash", *f.PasswordHash)
	}
	if f.Class != nil {
		add("class", *f.Class)
	}
	if f.Year != nil {
		add("year", *f.Year)
	}
	if f.RollNumber != nil {
		add("roll_number", *f.RollNumber)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := "UPDATE users SET " + joinClauses(sets, ", ") + fmt.Sprintf(" WHERE id = $%d", len(args))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPhoto stores the uploaded photo's filename reference.
func (r *Repository) SetPhoto(ctx context.Context, id, filename string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET photo = $2 WHERE id = $1`, id, filename)
	return err
}

// Students lists the student roster, optionally narrowed by class and year.
func (r *Repository) Students(ctx context.Context, class string, year *int) ([]User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role = 'student'`
	args := []any{}
	if class != "" {
		args = append(args, class)
		query += fmt.Sprintf(" AND class = $%d", len(args))
	}
	if year != nil {
		args = append(args, *year)
		query += fmt.Sprintf(" AND year = $%d", len(args))
	}
	query += " ORDER BY roll_number"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Class, &u.Year, &u.RollNumber, &u.Photo, &u.CreatedAt); err != nil {
			return nil, err
		}
		students = append(students, u)
	}
	return students, rows.Err()
}

func joinClauses(parts []string, sep string) string {
	if len(parts) == 0 {
		return ""
	}
	out := parts[0]
	for i := 1; i < len(parts); i++ {
		out += sep + parts[i]
	}
	return out
}
