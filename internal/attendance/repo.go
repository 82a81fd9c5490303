package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository persists attendance records in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const recordColumns = `id, student_id, day, class_period, status, marked_at, marked_by, created_at`

// Find returns the record for (student, day, period), or nil when absent.
func (r *Repository) Find(ctx context.Context, studentID string, day time.Time, period int) (*Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM attendance_records
		WHERE student_id = $1 AND day = $2 AND class_period = $3
	`, studentID, day, period)
	return scanRecord(row)
}

// GetByID returns a single record by id, or nil when absent.
func (r *Repository) GetByID(ctx context.Context, id string) (*Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+` FROM attendance_records WHERE id = $1
	`, id)
	return scanRecord(row)
}

func scanRecord(row *sql.Row) (*Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.StudentID, &rec.Day, &rec.ClassPeriod, &rec.Status, &rec.Time, &rec.MarkedBy, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Insert writes a new record.
func (r *Repository) Insert(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance_records (id, student_id, day, class_period, status, marked_at, marked_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, rec.ID, rec.StudentID, rec.Day, rec.ClassPeriod, rec.Status, rec.Time, rec.MarkedBy, rec.CreatedAt)
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// InsertIfMissing creates rec unless its (student, day, period) key already
// exists. The unique index makes concurrent sweeps idempotent.
func (r *Repository) InsertIfMissing(ctx context.Context, rec Record) (bool, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance_records (id, student_id, day, class_period, status, marked_at, marked_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (student_id, day, class_period) DO NOTHING
	`, rec.ID, rec.StudentID, rec.Day, rec.ClassPeriod, rec.Status, rec.Time, rec.MarkedBy, rec.CreatedAt)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Update overwrites status, time, and marker in place.
func (r *Repository) Update(ctx context.Context, rec Record) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE attendance_records
		SET status = $2, marked_at = $3, marked_by = $4
		WHERE id = $1
	`, rec.ID, rec.Status, rec.Time, rec.MarkedBy)
	return err
}

// List returns records joined with their students, applying filters. The
// join is inner: records whose student fails a filter drop out of the
// result set.
func (r *Repository) List(ctx context.Context, f Filter) ([]RecordWithStudent, error) {
	query := `
		SELECT a.id, a.student_id, a.day, a.class_period, a.status, a.marked_at, a.marked_by, a.created_at,
		       u.id, u.name, u.roll_number, u.class, u.year
		FROM attendance_records a
		JOIN users u ON u.id = a.student_id`
	args := []any{}
	clauses := []string{}
	add := func(clause string, val any) {
		args = append(args, val)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}
	if f.StudentID != "" {
		add("a.student_id = $%d", f.StudentID)
	}
	if f.Day != nil {
		add("a.day = $%d", *f.Day)
	}
	if f.ClassPeriod != nil {
		add("a.class_period = $%d", *f.ClassPeriod)
	}
	if f.Year != nil {
		add("u.year = $%d", *f.Year)
	}
	if f.Class != "" {
		add("u.class = $%d", f.Class)
	}
	if f.RollNumber != "" {
		add("u.roll_number = $%d", f.RollNumber)
	}
	if len(clauses) > 0 {
		query += " WHERE " + joinClauses(clauses, " AND ")
	}
	query += " ORDER BY a.created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []RecordWithStudent
	for rows.Next() {
		var rec RecordWithStudent
		if err := rows.Scan(
			&rec.ID, &rec.StudentID, &rec.Day, &rec.ClassPeriod, &rec.Status, &rec.Time, &rec.MarkedBy, &rec.CreatedAt,
			&rec.Student.ID, &rec.Student.Name, &rec.Student.RollNumber, &rec.Student.Class, &rec.Student.Year,
		); err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

// ListByStudent returns one student's history, ascending by day, optionally
// bounded by an inclusive day range.
func (r *Repository) ListByStudent(ctx context.Context, studentID string, from, to *time.Time) ([]Record, error) {
	query := `SELECT ` + recordColumns + ` FROM attendance_records WHERE student_id = $1`
	args := []any{studentID}
	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(" AND day >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(" AND day <= $%d", len(args))
	}
	query += " ORDER BY day ASC, class_period ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.StudentID, &rec.Day, &rec.ClassPeriod, &rec.Status, &rec.Time, &rec.MarkedBy, &rec.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
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
