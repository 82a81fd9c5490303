package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Alexander2005-rgb/attendance-backend/internal/attendance"
	"github.com/Alexander2005-rgb/attendance-backend/internal/auth"
	"github.com/Alexander2005-rgb/attendance-backend/internal/photo"
	"github.com/Alexander2005-rgb/attendance-backend/internal/queue"
	"github.com/Alexander2005-rgb/attendance-backend/internal/user"
)

// Ledger is the attendance surface the handlers drive. Satisfied by
// attendance.Service.
type Ledger interface {
	MarkByRoll(ctx context.Context, req attendance.MarkRequest) (attendance.Record, int, error)
	UpsertByStudent(ctx context.Context, studentID string, day time.Time, status string, period int, markedBy string) (attendance.Record, error)
	UpdateStatus(ctx context.Context, recordID, status, markedBy string) (attendance.Record, error)
	List(ctx context.Context, claims auth.Claims, f attendance.Filter) ([]attendance.RecordWithStudent, error)
	History(ctx context.Context, roll string, from, to *time.Time) ([]attendance.Record, error)
}

// Directory is the user surface the handlers drive. Satisfied by
// user.Repository.
type Directory interface {
	Create(ctx context.Context, u *user.User) error
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	Update(ctx context.Context, id string, f user.UpdateFields) error
	Students(ctx context.Context, class string, year *int) ([]user.User, error)
}

// Handler binds HTTP verbs and paths to directory and ledger operations.
type Handler struct {
	ledger Ledger
	dir    Directory
	photos *photo.Store
	q      queue.Queue

	signingKey string
	issuer     string
	tokenTTL   time.Duration
}

// New creates a handler. photos and q may be nil when not configured.
func New(ledger Ledger, dir Directory, photos *photo.Store, q queue.Queue, signingKey, issuer string, tokenTTL time.Duration) *Handler {
	return &Handler{
		ledger:     ledger,
		dir:        dir,
		photos:     photos,
		q:          q,
		signingKey: signingKey,
		issuer:     issuer,
		tokenTTL:   tokenTTL,
	}
}

// respondErr maps domain errors to the HTTP boundary. Anything unexpected
// collapses to a generic 500.
func respondErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, attendance.ErrStudentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"msg": "Student not found"})
	case errors.Is(err, attendance.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"msg": "Attendance record not found"})
	case errors.Is(err, user.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"msg": "User not found"})
	case errors.Is(err, user.ErrDuplicateEmail):
		c.JSON(http.StatusBadRequest, gin.H{"msg": "User already exists"})
	case errors.Is(err, attendance.ErrInvalidStatus), errors.Is(err, attendance.ErrInvalidPeriod):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
