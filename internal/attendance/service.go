package attendance

import (
	"context"
	"time"

	"github.com/Alexander2005-rgb/attendance-backend/internal/auth"
	"github.com/Alexander2005-rgb/attendance-backend/internal/user"
)

// Service coordinates ledger writes and the roster-completion sweep.
type Service struct {
	store Store
	dir   Directory
}

// NewService creates a service over a ledger store and the user directory.
func NewService(store Store, dir Directory) *Service {
	return &Service{store: store, dir: dir}
}

// MarkRequest is a capture-device mark: the device only reports positive
// detections, identified by roll number.
type MarkRequest struct {
	RollNumber  string
	Day         time.Time
	Time        string
	Status      string
	ClassPeriod int
}

func validStatus(s string) bool {
	return s == StatusPresent || s == StatusAbsent
}

// MarkByRoll records a device-submitted mark and, when the status is
// present, sweeps the rest of the student's (class, year) roster: every peer
// still lacking a record for that (day, period) gets an absent record with a
// sentinel time and no marker. Returns the triggering student's record and
// the number of absences the sweep synthesized.
//
// Re-invoking for the same (student, day, period) overwrites the existing
// record in place rather than inserting; the sweep never touches students
// who already hold a record, so the whole operation is idempotent.
func (s *Service) MarkByRoll(ctx context.Context, req MarkRequest) (Record, int, error) {
	if !validStatus(req.Status) {
		return Record{}, 0, ErrInvalidStatus
	}
	if req.ClassPeriod < 1 || req.ClassPeriod > 6 {
		return Record{}, 0, ErrInvalidPeriod
	}

	student, err := s.dir.GetByRollNumber(ctx, req.RollNumber)
	if err != nil {
		return Record{}, 0, err
	}
	if student == nil {
		return Record{}, 0, ErrStudentNotFound
	}

	day := Day(req.Day)

	rec, err := s.store.Find(ctx, student.ID, day, req.ClassPeriod)
	if err != nil {
		return Record{}, 0, err
	}
	if rec != nil {
		rec.Status = req.Status
		rec.Time = req.Time
		rec.MarkedBy = nil
		if err := s.store.Update(ctx, *rec); err != nil {
			return Record{}, 0, err
		}
	} else {
		created, err := s.store.Insert(ctx, Record{
			StudentID:   student.ID,
			Day:         day,
			ClassPeriod: req.ClassPeriod,
			Status:      req.Status,
			Time:        req.Time,
		})
		if err != nil {
			return Record{}, 0, err
		}
		rec = &created
	}

	swept := 0
	if req.Status == StatusPresent {
		swept, err = s.sweepRoster(ctx, student, day, req.ClassPeriod)
		if err != nil {
			return Record{}, 0, err
		}
	}

	return *rec, swept, nil
}

// sweepRoster closes the set for one (day, period, class, year): peers with
// no record yet are marked absent. Peers already present or absent are left
// untouched.
func (s *Service) sweepRoster(ctx context.Context, student *user.User, day time.Time, period int) (int, error) {
	peers, err := s.dir.Students(ctx, student.Class, student.Year)
	if err != nil {
		return 0, err
	}

	swept := 0
	for _, peer := range peers {
		if peer.ID == student.ID {
			continue
		}
		inserted, err := s.store.InsertIfMissing(ctx, Record{
			StudentID:   peer.ID,
			Day:         day,
			ClassPeriod: period,
			Status:      StatusAbsent,
			Time:        SentinelTime,
		})
		if err != nil {
			return swept, err
		}
		if inserted {
			swept++
		}
	}
	return swept, nil
}

// UpsertByStudent is the faculty manual mark: same find-or-create-then-
// overwrite semantics as MarkByRoll but keyed by internal identity, and it
// always stamps the acting faculty as marker.
func (s *Service) UpsertByStudent(ctx context.Context, studentID string, day time.Time, status string, period int, markedBy string) (Record, error) {
	if !validStatus(status) {
		return Record{}, ErrInvalidStatus
	}
	if period < 1 || period > 6 {
		return Record{}, ErrInvalidPeriod
	}

	student, err := s.dir.GetByID(ctx, studentID)
	if err != nil {
		return Record{}, err
	}
	if student == nil {
		return Record{}, ErrStudentNotFound
	}

	d := Day(day)
	now := time.Now().Format("15:04:05")

	rec, err := s.store.Find(ctx, student.ID, d, period)
	if err != nil {
		return Record{}, err
	}
	if rec != nil {
		rec.Status = status
		rec.Time = now
		rec.MarkedBy = &markedBy
		if err := s.store.Update(ctx, *rec); err != nil {
			return Record{}, err
		}
		return *rec, nil
	}

	return s.store.Insert(ctx, Record{
		StudentID:   student.ID,
		Day:         d,
		ClassPeriod: period,
		Status:      status,
		Time:        now,
		MarkedBy:    &markedBy,
	})
}

// UpdateStatus overwrites status and marker on an existing record by id.
func (s *Service) UpdateStatus(ctx context.Context, recordID, status, markedBy string) (Record, error) {
	if !validStatus(status) {
		return Record{}, ErrInvalidStatus
	}

	rec, err := s.store.GetByID(ctx, recordID)
	if err != nil {
		return Record{}, err
	}
	if rec == nil {
		return Record{}, ErrRecordNotFound
	}

	rec.Status = status
	rec.MarkedBy = &markedBy
	if err := s.store.Update(ctx, *rec); err != nil {
		return Record{}, err
	}
	return *rec, nil
}

// List returns the bulk listing scoped by the caller's role: students only
// ever see their own records, whatever filters they supply; faculty and
// exam-cell callers may narrow freely.
func (s *Service) List(ctx context.Context, claims auth.Claims, f Filter) ([]RecordWithStudent, error) {
	if claims.Role == auth.RoleStudent {
		f = Filter{
			StudentID:   claims.UserID,
			Day:         f.Day,
			ClassPeriod: f.ClassPeriod,
		}
	}
	return s.store.List(ctx, f)
}

// History returns one student's records ascending by date, resolved by roll
// number.
func (s *Service) History(ctx context.Context, roll string, from, to *time.Time) ([]Record, error) {
	student, err := s.dir.GetByRollNumber(ctx, roll)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, ErrStudentNotFound
	}
	return s.store.ListByStudent(ctx, student.ID, from, to)
}
