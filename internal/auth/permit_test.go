package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPermit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		role    string
		op      Operation
		allowed bool
	}{
		{RoleStudent, OpQueryAttendance, true},
		{RoleStudent, OpMarkAttendance, false},
		{RoleStudent, OpUpdateAttendance, false},
		{RoleStudent, OpUpdateUser, false},
		{RoleFaculty, OpMarkAttendance, true},
		{RoleFaculty, OpUpdateAttendance, true},
		{RoleFaculty, OpUpdateUser, false},
		{RoleExamCell, OpUpdateUser, true},
		{RoleExamCell, OpMarkAttendance, false},
		{RoleExamCell, OpQueryAttendance, true},
		{"device", OpQueryAttendance, false},
		{"", OpListStudents, false},
	}

	for _, tt := range tests {
		d := Permit(tt.role, tt.op)
		require.Equal(t, tt.allowed, d.Allowed, "role=%s op=%s", tt.role, tt.op)
		if !tt.allowed {
			require.NotEmpty(t, d.Reason)
		}
	}
}

func TestPermitUnknownOperation(t *testing.T) {
	t.Parallel()

	d := Permit(RoleExamCell, Operation("attendance.delete"))
	require.False(t, d.Allowed)
	require.Equal(t, "unknown operation", d.Reason)
}
