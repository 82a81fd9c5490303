package auth

// Operation identifies a permission-gated API operation.
type Operation string

const (
	OpQueryAttendance  Operation = "attendance.query"
	OpMarkAttendance   Operation = "attendance.mark"
	OpUpdateAttendance Operation = "attendance.update"
	OpListStudents     Operation = "students.list"
	OpUpdateUser       Operation = "users.update"
)

// Decision is the outcome of a permission check.
type Decision struct {
	Allowed bool
	Reason  string
}

var allowed = map[Operation][]string{
	OpQueryAttendance:  {RoleStudent, RoleFaculty, RoleExamCell},
	OpMarkAttendance:   {RoleFaculty},
	OpUpdateAttendance: {RoleFaculty},
	OpListStudents:     {RoleStudent, RoleFaculty, RoleExamCell},
	OpUpdateUser:       {RoleExamCell},
}

// Permit decides whether a role may perform op. Unknown roles and unknown
// operations are denied.
func Permit(role string, op Operation) Decision {
	roles, ok := allowed[op]
	if !ok {
		return Decision{Reason: "unknown operation"}
	}
	for _, r := range roles {
		if r == role {
			return Decision{Allowed: true}
		}
	}
	return Decision{Reason: "access denied"}
}
