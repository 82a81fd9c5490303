package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Alexander2005-rgb/attendance-backend/internal/attendance"
	"github.com/Alexander2005-rgb/attendance-backend/internal/auth"
	"github.com/Alexander2005-rgb/attendance-backend/internal/user"
)

const (
	testKey    = "test-signing-key"
	testIssuer = "attendance-backend"
)

type fakeLedger struct {
	lastFilter attendance.Filter
}

func (f *fakeLedger) MarkByRoll(_ context.Context, req attendance.MarkRequest) (attendance.Record, int, error) {
	if req.RollNumber == "ghost" {
		return attendance.Record{}, 0, attendance.ErrStudentNotFound
	}
	return attendance.Record{
		ID:          "rec-1",
		StudentID:   "u1",
		Day:         req.Day,
		ClassPeriod: req.ClassPeriod,
		Status:      req.Status,
		Time:        req.Time,
	}, 2, nil
}

func (f *fakeLedger) UpsertByStudent(_ context.Context, studentID string, day time.Time, status string, period int, markedBy string) (attendance.Record, error) {
	if studentID == "missing" {
		return attendance.Record{}, attendance.ErrStudentNotFound
	}
	return attendance.Record{ID: "rec-2", StudentID: studentID, Day: day, ClassPeriod: period, Status: status, MarkedBy: &markedBy}, nil
}

func (f *fakeLedger) UpdateStatus(_ context.Context, recordID, status, markedBy string) (attendance.Record, error) {
	if recordID == "missing" {
		return attendance.Record{}, attendance.ErrRecordNotFound
	}
	return attendance.Record{ID: recordID, Status: status, MarkedBy: &markedBy}, nil
}

func (f *fakeLedger) List(_ context.Context, _ auth.Claims, filter attendance.Filter) ([]attendance.RecordWithStudent, error) {
	f.lastFilter = filter
	return nil, nil
}

func (f *fakeLedger) History(_ context.Context, roll string, _, _ *time.Time) ([]attendance.Record, error) {
	if roll == "ghost" {
		return nil, attendance.ErrStudentNotFound
	}
	return []attendance.Record{{ID: "rec-1"}}, nil
}

type fakeDirectory struct{}

func (fakeDirectory) Create(_ context.Context, u *user.User) error {
	if u.Email == "dup@example.com" {
		return user.ErrDuplicateEmail
	}
	u.ID = "u1"
	return nil
}

func (fakeDirectory) GetByEmail(_ context.Context, email string) (*user.User, error) {
	if email != "s1@example.com" {
		return nil, nil
	}
	hash, _ := auth.HashPassword("right-password")
	return &user.User{ID: "u1", Email: email, Role: auth.RoleStudent, PasswordHash: hash}, nil
}

func (fakeDirectory) Update(_ context.Context, id string, _ user.UpdateFields) error {
	if id == "missing" {
		return user.ErrNotFound
	}
	return nil
}

func (fakeDirectory) Students(_ context.Context, _ string, _ *int) ([]user.User, error) {
	return []user.User{{ID: "u1", Role: "student"}}, nil
}

func newTestRouter(ledger Ledger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := New(ledger, fakeDirectory{}, nil, nil, testKey, testIssuer, time.Hour)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.PUT("/auth/users/:id", auth.Bearer(testKey, testIssuer), auth.Require(auth.OpUpdateUser), h.UpdateUser)
	att := api.Group("/attendance")
	att.POST("/mark", h.Mark)
	authed := att.Group("", auth.Bearer(testKey, testIssuer))
	authed.GET("", auth.Require(auth.OpQueryAttendance), h.ListAttendance)
	authed.POST("", auth.Require(auth.OpMarkAttendance), h.CreateAttendance)
	authed.PUT("/:id", auth.Require(auth.OpUpdateAttendance), h.UpdateAttendance)
	authed.GET("/student/:rollNumber", auth.Require(auth.OpQueryAttendance), h.History)
	return r
}

func doJSON(r http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMarkEndpoint(t *testing.T) {
	r := newTestRouter(&fakeLedger{})

	t.Run("marks a known roll number", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/attendance/mark", "",
			`{"rollNumber":"S1","date":"2024-01-10","time":"09:14:02","status":"present","classPeriod":3}`)
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), `"rec-1"`)
	})

	t.Run("unknown roll number is 404", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/attendance/mark", "",
			`{"rollNumber":"ghost","date":"2024-01-10","time":"09:14:02","status":"present","classPeriod":3}`)
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed date is 400", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/attendance/mark", "",
			`{"rollNumber":"S1","date":"10/01/2024","time":"09:14:02","status":"present","classPeriod":3}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRegisterEndpoint(t *testing.T) {
	r := newTestRouter(&fakeLedger{})

	form := func(email string) string {
		v := url.Values{}
		v.Set("name", "Student One")
		v.Set("email", email)
		v.Set("password", "pw123456")
		return v.Encode()
	}
	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("registers", func(t *testing.T) {
		w := post(form("s1@example.com"))
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("duplicate email is 400", func(t *testing.T) {
		w := post(form("dup@example.com"))
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLoginEndpoint(t *testing.T) {
	r := newTestRouter(&fakeLedger{})

	t.Run("valid credentials issue a token", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/auth/login", "",
			`{"email":"s1@example.com","password":"right-password"}`)
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), `"token"`)
		require.Contains(t, w.Body.String(), `"student"`)
	})

	t.Run("wrong password is 400", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/auth/login", "",
			`{"email":"s1@example.com","password":"wrong"}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown email is 400", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/auth/login", "",
			`{"email":"nobody@example.com","password":"whatever"}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRoleGates(t *testing.T) {
	r := newTestRouter(&fakeLedger{})

	studentToken, _, err := auth.Issue("u1", auth.RoleStudent, testIssuer, testKey, time.Hour)
	require.NoError(t, err)
	facultyToken, _, err := auth.Issue("f1", auth.RoleFaculty, testIssuer, testKey, time.Hour)
	require.NoError(t, err)
	examcellToken, _, err := auth.Issue("e1", auth.RoleExamCell, testIssuer, testKey, time.Hour)
	require.NoError(t, err)

	body := `{"studentId":"u1","date":"2024-01-10","status":"present","classPeriod":3}`

	t.Run("no token is 403", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/api/attendance", "", "")
		require.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("student cannot create marks", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/attendance", studentToken, body)
		require.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("faculty can create marks", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/attendance", facultyToken, body)
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("faculty cannot update users", func(t *testing.T) {
		w := doJSON(r, http.MethodPut, "/api/auth/users/u1", facultyToken, `{"name":"X"}`)
		require.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("examcell can update users", func(t *testing.T) {
		w := doJSON(r, http.MethodPut, "/api/auth/users/u1", examcellToken, `{"name":"X"}`)
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("updating a missing user is 404", func(t *testing.T) {
		w := doJSON(r, http.MethodPut, "/api/auth/users/missing", examcellToken, `{"name":"X"}`)
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("updating a missing record is 404", func(t *testing.T) {
		w := doJSON(r, http.MethodPut, "/api/attendance/missing", facultyToken, `{"status":"present"}`)
		require.Equal(t, http.StatusNotFound, w.Code)
	})
}
