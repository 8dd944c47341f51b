// Package session owns the authenticated identity and exposes the identity
// lifecycle operations. The Store is the single source of truth for "who is
// logged in"; UI layers consume its status/user fields and never talk to
// the pipeline or storage directly.
package session

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/hrsphere/go-client/storage"
	"github.com/hrsphere/go-client/transport"
)

// Backend routes for the identity lifecycle.
const (
	loginPath              = "/auth/login"
	googleLoginPath        = "/auth/google"
	registerPath           = "/auth/register"
	logoutPath             = "/auth/logout"
	currentUserPath        = "/auth/me"
	profilePath            = "/auth/profile"
	forgotPasswordPath     = "/auth/forgot-password"
	resetPasswordPath      = "/auth/reset-password"
	changePasswordPath     = "/auth/change-password"
	verifyEmailPath        = "/auth/verify-email"
	resendVerificationPath = "/auth/resend-verification"
)

// Store holds the session state and mutates it exclusively through the
// lifecycle operations. Operations are not serialized against each other:
// concurrent Login/Logout resolve last-write-wins, and callers are expected
// to gate concurrent invocation on Loading.
type Store struct {
	pipeline *transport.Pipeline
	storage  storage.Store
	logger   zerolog.Logger

	mu     sync.RWMutex
	status Status
	user   *User

	loading atomic.Int32
}

// Option defines a function type to modify the Store instance.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New initializes a Store with required dependencies. The store starts in
// StatusInitializing; call Hydrate to settle it.
func New(pipeline *transport.Pipeline, store storage.Store, options ...Option) (*Store, error) {
	if pipeline == nil {
		return nil, errors.New("[session.New] pipeline is required")
	}
	if store == nil {
		return nil, errors.New("[session.New] storage is required")
	}

	s := &Store{
		pipeline: pipeline,
		storage:  store,
		logger:   zerolog.Nop(),
		status:   StatusInitializing,
	}

	for _, opt := range options {
		opt(s)
	}

	return s, nil
}

// Status returns the current session state.
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// User returns a copy of the authenticated user, or nil when there is none.
// Non-nil exactly when Status is StatusAuthenticated.
func (s *Store) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	user := *s.user
	return &user
}

// Loading reports whether any session operation is currently in flight.
func (s *Store) Loading() bool {
	return s.loading.Load() > 0
}

// Hydrate reconstructs the session from a previously stored token. With no
// stored access token the store settles to unauthenticated without a
// network call. Any failure validating the token clears stored credentials
// and settles to unauthenticated; the fetch error is returned for logging
// but the state is already settled.
func (s *Store) Hydrate(ctx context.Context) error {
	s.beginOp()
	defer s.endOp()

	access, err := s.storage.Get(ctx, storage.AccessTokenKey)
	if err != nil || access == "" {
		s.setUnauthenticated()
		return nil
	}

	user, err := s.fetchCurrentUser(ctx)
	if err != nil {
		if clearErr := storage.ClearPair(ctx, s.storage); clearErr != nil {
			s.logger.Warn().Err(clearErr).Msg("clearing credentials after failed hydration")
		}
		s.setUnauthenticated()
		return errors.Wrap(err, "[Store.Hydrate] validating stored token")
	}

	s.setAuthenticated(user)
	return nil
}

// Login exchanges credentials for a session. On success the returned
// credential pair is stored and the user is returned directly, so callers
// can navigate immediately. On failure the session state is left untouched.
func (s *Store) Login(ctx context.Context, email, password string) (*User, error) {
	s.beginOp()
	defer s.endOp()

	if email == "" || password == "" {
		return nil, EmptyCredentialsErr
	}

	env, err := s.pipeline.Post(ctx, loginPath, loginRequest{Email: email, Password: password}, transport.LoginSurface())
	if err != nil {
		return nil, errors.Wrap(err, "[Store.Login] login request")
	}

	user, err := s.establishSession(ctx, env)
	if err != nil {
		return nil, errors.Wrap(err, "[Store.Login] establishing session")
	}
	return user, nil
}

// LoginWithGoogle exchanges a Google identity token for a session. Same
// contract as Login.
func (s *Store) LoginWithGoogle(ctx context.Context, idToken string) error {
	s.beginOp()
	defer s.endOp()

	if idToken == "" {
		return EmptyGoogleTokenErr
	}

	env, err := s.pipeline.Post(ctx, googleLoginPath, googleLoginRequest{Token: idToken}, transport.LoginSurface())
	if err != nil {
		return errors.Wrap(err, "[Store.LoginWithGoogle] google login request")
	}

	if _, err := s.establishSession(ctx, env); err != nil {
		return errors.Wrap(err, "[Store.LoginWithGoogle] establishing session")
	}
	return nil
}

// Register creates an account. It never authenticates: email verification
// must happen first, so no credential pair is stored and the session status
// is unchanged.
func (s *Store) Register(ctx context.Context, params RegisterParams) (*RegisterResult, error) {
	s.beginOp()
	defer s.endOp()

	if err := ValidateEmail(params.Email); err != nil {
		return nil, err
	}
	if err := ValidatePasswordStrength(params.Password); err != nil {
		return nil, err
	}

	env, err := s.pipeline.Post(ctx, registerPath, params, transport.LoginSurface())
	if err != nil {
		return nil, errors.Wrap(err, "[Store.Register] register request")
	}

	result := &RegisterResult{Message: env.Message}
	var payload registerPayload
	if err := env.DecodeData(&payload); err == nil {
		result.User = payload.User
	}
	return result, nil
}

// Logout terminates the session. The server-side invalidation is
// best-effort: whatever the network outcome, stored tokens are removed and
// the state resets to unauthenticated. The result records whether the
// server acknowledged, so the swallow is explicit rather than accidental.
func (s *Store) Logout(ctx context.Context) LogoutResult {
	s.beginOp()
	defer s.endOp()

	var result LogoutResult
	// Background: a refresh failure during logout must not bounce the
	// application through the session-expired handler mid-logout.
	if _, err := s.pipeline.Post(ctx, logoutPath, nil, transport.Background()); err != nil {
		result.ServerErr = err
		s.logger.Warn().Err(err).Msg("server logout failed, clearing local session anyway")
	} else {
		result.ServerAcked = true
	}

	if err := s.clearCredentials(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("clearing credentials on logout")
	}
	s.setUnauthenticated()
	return result
}

// ForgotPassword requests a password-reset email. Stateless passthrough.
func (s *Store) ForgotPassword(ctx context.Context, email string) error {
	s.beginOp()
	defer s.endOp()

	if err := ValidateEmail(email); err != nil {
		return err
	}
	if _, err := s.pipeline.Post(ctx, forgotPasswordPath, emailRequest{Email: email}, transport.LoginSurface()); err != nil {
		return errors.Wrap(err, "[Store.ForgotPassword] request")
	}
	return nil
}

// ResetPassword completes a password reset with the emailed token.
// Stateless passthrough.
func (s *Store) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	s.beginOp()
	defer s.endOp()

	if resetToken == "" {
		return EmptyResetTokenErr
	}
	if err := ValidatePasswordStrength(newPassword); err != nil {
		return err
	}
	body := resetPasswordRequest{Token: resetToken, Password: newPassword}
	if _, err := s.pipeline.Post(ctx, resetPasswordPath, body, transport.LoginSurface()); err != nil {
		return errors.Wrap(err, "[Store.ResetPassword] request")
	}
	return nil
}

// ChangePassword changes the authenticated user's password. Stateless
// passthrough.
func (s *Store) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	s.beginOp()
	defer s.endOp()

	if err := ValidatePasswordStrength(newPassword); err != nil {
		return err
	}
	body := changePasswordRequest{OldPassword: oldPassword, NewPassword: newPassword}
	if _, err := s.pipeline.Post(ctx, changePasswordPath, body); err != nil {
		return errors.Wrap(err, "[Store.ChangePassword] request")
	}
	return nil
}

// VerifyEmail confirms a registration with the emailed verification token.
// Stateless passthrough.
func (s *Store) VerifyEmail(ctx context.Context, verificationToken string) error {
	s.beginOp()
	defer s.endOp()

	if verificationToken == "" {
		return EmptyResetTokenErr
	}
	if _, err := s.pipeline.Post(ctx, verifyEmailPath, verifyEmailRequest{Token: verificationToken}, transport.LoginSurface()); err != nil {
		return errors.Wrap(err, "[Store.VerifyEmail] request")
	}
	return nil
}

// ResendVerification requests a new verification email. Stateless
// passthrough.
func (s *Store) ResendVerification(ctx context.Context, email string) error {
	s.beginOp()
	defer s.endOp()

	if err := ValidateEmail(email); err != nil {
		return err
	}
	if _, err := s.pipeline.Post(ctx, resendVerificationPath, emailRequest{Email: email}, transport.LoginSurface()); err != nil {
		return errors.Wrap(err, "[Store.ResendVerification] request")
	}
	return nil
}

// UpdateProfile applies a partial profile change. No-op when there is no
// authenticated user. The server's returned record replaces the stored user
// wholesale; nothing is merged client-side.
func (s *Store) UpdateProfile(ctx context.Context, update ProfileUpdate) error {
	s.beginOp()
	defer s.endOp()

	if s.Status() != StatusAuthenticated {
		return nil
	}

	env, err := s.pipeline.Put(ctx, profilePath, update)
	if err != nil {
		return errors.Wrap(err, "[Store.UpdateProfile] request")
	}

	var user User
	if err := env.DecodeData(&user); err != nil {
		return errors.Wrap(err, "[Store.UpdateProfile] decoding user")
	}
	s.setAuthenticated(&user)
	return nil
}

// RefreshUser re-fetches the current user record and replaces it in place,
// reconciling out-of-band changes such as a role reassignment. Failure is
// logged and swallowed: a transient fetch failure is not evidence the
// session is invalid, and that determination belongs to the pipeline's
// 401 handling.
func (s *Store) RefreshUser(ctx context.Context) {
	s.beginOp()
	defer s.endOp()

	user, err := s.fetchCurrentUser(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("refreshing current user failed")
		return
	}
	if s.Status() != StatusAuthenticated {
		return
	}
	s.setAuthenticated(user)
}

// ForceUnauthenticated drops the in-memory session without a server call.
// Wire it to the pipeline's session-expired handler, which fires after an
// irrecoverable refresh failure has already cleared stored credentials.
func (s *Store) ForceUnauthenticated() {
	s.setUnauthenticated()
}

// establishSession stores the credential pair from an auth response and
// promotes the session to authenticated.
func (s *Store) establishSession(ctx context.Context, env *transport.Envelope) (*User, error) {
	var payload authPayload
	if err := env.DecodeData(&payload); err != nil {
		return nil, err
	}
	if payload.User == nil {
		return nil, MissingUserRecordErr
	}

	pair := storage.Pair{AccessToken: payload.AccessToken, RefreshToken: payload.RefreshToken}
	if err := storage.SavePair(ctx, s.storage, pair); err != nil {
		return nil, err
	}

	s.setAuthenticated(payload.User)
	return s.User(), nil
}

func (s *Store) fetchCurrentUser(ctx context.Context) (*User, error) {
	env, err := s.pipeline.Get(ctx, currentUserPath)
	if err != nil {
		return nil, err
	}
	var user User
	if err := env.DecodeData(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) clearCredentials(ctx context.Context) error {
	return storage.ClearPair(ctx, s.storage)
}

func (s *Store) setAuthenticated(user *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusAuthenticated
	s.user = user
}

func (s *Store) setUnauthenticated() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusUnauthenticated
	s.user = nil
}

func (s *Store) beginOp() {
	s.loading.Add(1)
}

func (s *Store) endOp() {
	s.loading.Add(-1)
}
