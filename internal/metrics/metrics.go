package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MarksTotal counts attendance marks by status and origin (device, faculty).
var MarksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "attendance_marks_total",
	Help: "Attendance marks recorded, by status and origin.",
}, []string{"status", "origin"})

// AutoAbsentTotal counts absent records synthesized by the roster sweep.
var AutoAbsentTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "attendance_auto_absent_total",
	Help: "Absent records auto-generated by roster completion.",
})
