package handler

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Alexander2005-rgb/attendance-backend/internal/attendance"
	"github.com/Alexander2005-rgb/attendance-backend/internal/auth"
	"github.com/Alexander2005-rgb/attendance-backend/internal/metrics"
	"github.com/Alexander2005-rgb/attendance-backend/internal/queue"
	"github.com/Alexander2005-rgb/attendance-backend/internal/user"
)

type markRequest struct {
	RollNumber  string `json:"rollNumber" binding:"required"`
	Date        string `json:"date" binding:"required"`
	Time        string `json:"time" binding:"required"`
	Status      string `json:"status" binding:"required"`
	ClassPeriod int    `json:"classPeriod" binding:"required"`
}

// Mark is the capture-device endpoint: unauthenticated, keyed by roll
// number. A present mark triggers the roster-completion sweep.
func (h *Handler) Mark(c *gin.Context) {
	var req markRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	day, err := attendance.ParseDay(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	rec, swept, err := h.ledger.MarkByRoll(c.Request.Context(), attendance.MarkRequest{
		RollNumber:  req.RollNumber,
		Day:         day,
		Time:        req.Time,
		Status:      req.Status,
		ClassPeriod: req.ClassPeriod,
	})
	if err != nil {
		respondErr(c, err)
		return
	}

	metrics.MarksTotal.WithLabelValues(rec.Status, "device").Inc()
	metrics.AutoAbsentTotal.Add(float64(swept))

	if h.q != nil {
		if err := h.q.Publish(c.Request.Context(), queue.Message{Type: "mark", Body: []byte(rec.ID)}); err != nil {
			log.Printf("queue publish failed: %v", err)
		}
	}

	c.JSON(http.StatusOK, rec)
}

type createAttendanceRequest struct {
	StudentID   string `json:"studentId" binding:"required"`
	Date        string `json:"date" binding:"required"`
	Status      string `json:"status" binding:"required"`
	ClassPeriod int    `json:"classPeriod" binding:"required"`
}

// CreateAttendance is the faculty manual mark, keyed by internal identity
// and stamped with the acting faculty as marker.
func (h *Handler) CreateAttendance(c *gin.Context) {
	var req createAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	day, err := attendance.ParseDay(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	claims, _ := auth.FromContext(c)
	rec, err := h.ledger.UpsertByStudent(c.Request.Context(), req.StudentID, day, req.Status, req.ClassPeriod, claims.UserID)
	if err != nil {
		respondErr(c, err)
		return
	}

	metrics.MarksTotal.WithLabelValues(rec.Status, "faculty").Inc()
	c.JSON(http.StatusOK, rec)
}

type updateAttendanceRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateAttendance overwrites status and marker on an existing record.
func (h *Handler) UpdateAttendance(c *gin.Context) {
	var req updateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims, _ := auth.FromContext(c)
	rec, err := h.ledger.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, claims.UserID)
	if err != nil {
		respondErr(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

// ListAttendance is the role-scoped bulk listing with optional narrowing by
// date, period, year, class, and roll number.
func (h *Handler) ListAttendance(c *gin.Context) {
	claims, _ := auth.FromContext(c)

	var f attendance.Filter
	if v := c.Query("date"); v != "" {
		day, err := attendance.ParseDay(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		f.Day = &day
	}
	if v := c.Query("classPeriod"); v != "" {
		period, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "classPeriod must be a number"})
			return
		}
		f.ClassPeriod = &period
	}
	if v := c.Query("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "year must be a number"})
			return
		}
		f.Year = &year
	}
	f.Class = c.Query("class")
	f.RollNumber = c.Query("rollNumber")

	records, err := h.ledger.List(c.Request.Context(), claims, f)
	if err != nil {
		respondErr(c, err)
		return
	}
	if records == nil {
		records = []attendance.RecordWithStudent{}
	}
	c.JSON(http.StatusOK, records)
}

// ListStudents returns the student roster projection, optionally narrowed by
// year and class.
func (h *Handler) ListStudents(c *gin.Context) {
	var year *int
	if v := c.Query("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "year must be a number"})
			return
		}
		year = &parsed
	}

	students, err := h.dir.Students(c.Request.Context(), c.Query("class"), year)
	if err != nil {
		respondErr(c, err)
		return
	}
	if students == nil {
		students = []user.User{}
	}
	c.JSON(http.StatusOK, students)
}

// History returns one student's records ascending by date, bounded by an
// optional startDate/endDate range.
func (h *Handler) History(c *gin.Context) {
	var from, to *time.Time
	if v := c.Query("startDate"); v != "" {
		day, err := attendance.ParseDay(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "startDate must be YYYY-MM-DD"})
			return
		}
		from = &day
	}
	if v := c.Query("endDate"); v != "" {
		day, err := attendance.ParseDay(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "endDate must be YYYY-MM-DD"})
			return
		}
		to = &day
	}

	records, err := h.ledger.History(c.Request.Context(), c.Param("rollNumber"), from, to)
	if err != nil {
		respondErr(c, err)
		return
	}
	if records == nil {
		records = []attendance.Record{}
	}
	c.JSON(http.StatusOK, records)
}
