package session

// Wire types for the identity endpoints. Every auth response arrives inside
// the standard envelope; these are the shapes of its data payloads.

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type googleLoginRequest struct {
	Token string `json:"token"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type verifyEmailRequest struct {
	Token string `json:"token"`
}

// RegisterParams is the payload for account creation.
type RegisterParams struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// RegisterResult is returned by Register. The account exists but is not
// authenticated until email verification completes.
type RegisterResult struct {
	User    *User
	Message string
}

// LogoutResult reports the two halves of a logout. Local logout always
// succeeds; ServerAcked records whether the backend acknowledged the
// invalidation, with ServerErr holding the failure when it did not.
type LogoutResult struct {
	ServerAcked bool
	ServerErr   error
}

// ProfileUpdate is a partial profile change. Nil fields are omitted from
// the request body.
type ProfileUpdate struct {
	FullName     *string `json:"fullName,omitempty"`
	DepartmentID *string `json:"departmentId,omitempty"`
	PositionID   *string `json:"positionId,omitempty"`
}

// authPayload is the data payload of login-shaped responses.
type authPayload struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type registerPayload struct {
	User *User `json:"user"`
}
