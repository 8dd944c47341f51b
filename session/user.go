package session

// RoleType represents a user's role in the HR platform.
type RoleType string

const (
	RoleEmployee   RoleType = "employee"    // Regular employee, sees own dashboard and tasks
	RoleManager    RoleType = "manager"     // Manages a team, sees direct reports
	RoleHRAdmin    RoleType = "hr_admin"    // HR staff, full employee directory access
	RoleSuperAdmin RoleType = "super_admin" // Platform administration
)

// User is the authenticated identity as returned by the backend. The server
// copy is authoritative: profile updates replace the whole record rather
// than merging fields client-side.
type User struct {
	ID              string   `json:"id,omitempty"`              // Unique identifier for the user
	Email           string   `json:"email,omitempty"`           // User's email address
	FullName        string   `json:"fullName,omitempty"`        // Display name
	Role            RoleType `json:"role,omitempty"`            // Dashboard routing role
	EmployeeID      string   `json:"employeeId,omitempty"`      // Linked employee record, if any
	DepartmentID    string   `json:"departmentId,omitempty"`    // Department assignment
	PositionID      string   `json:"positionId,omitempty"`      // Position assignment
	ProfileComplete bool     `json:"profileComplete,omitempty"` // Whether onboarding profile fields are filled in
}
