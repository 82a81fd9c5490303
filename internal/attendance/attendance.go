package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/Alexander2005-rgb/attendance-backend/internal/user"
)

// Attendance statuses. The capture device only ever reports "present";
// "absent" records are synthesized by the roster-completion sweep.
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
)

// SentinelTime is the wall-clock value stamped on auto-generated absent
// records, which have no real mark time.
const SentinelTime = "00:00:00"

var (
	ErrStudentNotFound = errors.New("student not found")
	ErrRecordNotFound  = errors.New("attendance record not found")
	ErrInvalidStatus   = errors.New("status must be present or absent")
	ErrInvalidPeriod   = errors.New("class period must be between 1 and 6")
)

// Record is one ledger entry: at most one exists per
// (student, day, class period). Created on first mark, mutated in place on
// re-marks, never deleted.
type Record struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"studentId"`
	Day         time.Time `json:"date"`
	ClassPeriod int       `json:"classPeriod"`
	Status      string    `json:"status"`
	Time        string    `json:"time"`
	MarkedBy    *string   `json:"markedBy"`
	CreatedAt   time.Time `json:"created_at"`
}

// StudentInfo is the roster projection joined onto query results.
type StudentInfo struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	RollNumber *string `json:"rollNumber,omitempty"`
	Class      string  `json:"class,omitempty"`
	Year       *int    `json:"year,omitempty"`
}

// RecordWithStudent is a ledger entry with its student resolved. Records
// whose student fails a narrowing filter are excluded from results entirely.
type RecordWithStudent struct {
	Record
	Student StudentInfo `json:"student"`
}

// Filter narrows the bulk listing. Nil/empty fields are not applied.
type Filter struct {
	StudentID   string
	Day         *time.Time
	ClassPeriod *int
	Year        *int
	Class       string
	RollNumber  string
}

// Store is the ledger persistence contract.
type Store interface {
	// Find returns the record for (student, day, period), or nil when absent.
	Find(ctx context.Context, studentID string, day time.Time, period int) (*Record, error)
	Insert(ctx context.Context, rec Record) (Record, error)
	// Update overwrites status, time, and marker in place by record id.
	Update(ctx context.Context, rec Record) error
	// InsertIfMissing creates rec unless a record already exists for its
	// (student, day, period) key; it reports whether a row was written.
	InsertIfMissing(ctx context.Context, rec Record) (bool, error)
	GetByID(ctx context.Context, id string) (*Record, error)
	List(ctx context.Context, f Filter) ([]RecordWithStudent, error)
	ListByStudent(ctx context.Context, studentID string, from, to *time.Time) ([]Record, error)
}

// Directory is the user-directory view the ledger needs: roster resolution
// and membership. Satisfied by user.Repository.
type Directory interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
	GetByRollNumber(ctx context.Context, roll string) (*user.User, error)
	Students(ctx context.Context, class string, year *int) ([]user.User, error)
}

// Day truncates t to its calendar-day identity; all record matching ignores
// time-of-day.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD calendar day.
func ParseDay(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
