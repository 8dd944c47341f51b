package session

// Status is the session lifecycle state.
type Status int

const (
	// StatusInitializing is the startup state, before any stored token has
	// been validated against the backend.
	StatusInitializing Status = iota
	// StatusAuthenticated means a user identity is present.
	StatusAuthenticated
	// StatusUnauthenticated means no user is logged in.
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusInitializing:
		return "initializing"
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	}
	return "unknown"
}
