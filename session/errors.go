package session

import "errors"

var (
	EmptyCredentialsErr  = errors.New("email and password are required")
	InvalidEmailErr      = errors.New("invalid email address")
	EmptyResetTokenErr   = errors.New("reset token is required")
	EmptyGoogleTokenErr  = errors.New("google identity token is required")
	MissingUserRecordErr = errors.New("response missing user record")
)
