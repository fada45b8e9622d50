package domain

// Identity is the acting user as asserted by the auth layer. The
// editor only consumes it: curator/department seeding on creation and
// the admin gate on resend. Authorization proper stays with the remote
// service.
type Identity struct {
	UserID       string
	EmployeeID   int64
	DepartmentID int64
	IsAdmin      bool
}
