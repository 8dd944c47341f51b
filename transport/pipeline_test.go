package transport_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hrsphere/go-client/storage"
	"github.com/hrsphere/go-client/transport"
)

const (
	initialAccessToken = "tok1"
	refreshedToken     = "tok2"
	refreshToken       = "refresh-1"
)

// fakeBackend scripts the /protected and /auth/refresh endpoints and
// records how the pipeline called them.
type fakeBackend struct {
	mu sync.Mutex

	protectedCalls int
	refreshCalls   int
	authHeaders    []string

	// acceptToken is the only bearer token /protected answers 200 to.
	// Empty means every request is rejected with 401.
	acceptToken string

	// refreshFails makes /auth/refresh answer 401 instead of issuing
	// refreshedToken.
	refreshFails bool
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/protected", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.protectedCalls++
		b.authHeaders = append(b.authHeaders, r.Header.Get("Authorization"))
		accept := b.acceptToken
		b.mu.Unlock()

		if accept != "" && r.Header.Get("Authorization") == "Bearer "+accept {
			writeEnvelope(w, http.StatusOK, "", map[string]bool{"ok": true})
			return
		}
		writeEnvelope(w, http.StatusUnauthorized, "unauthorized", nil)
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.refreshCalls++
		fails := b.refreshFails
		b.mu.Unlock()

		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.RefreshToken == "" {
			writeEnvelope(w, http.StatusBadRequest, "missing refresh token", nil)
			return
		}
		if fails {
			writeEnvelope(w, http.StatusUnauthorized, "refresh token expired", nil)
			return
		}
		writeEnvelope(w, http.StatusOK, "", map[string]string{"accessToken": refreshedToken})
	})
	return mux
}

func writeEnvelope(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	env := map[string]any{"success": status < http.StatusBadRequest}
	if message != "" {
		env["message"] = message
	}
	if data != nil {
		env["data"] = data
	}
	_ = json.NewEncoder(w).Encode(env)
}

type pipelineFixture struct {
	backend      *fakeBackend
	store        *storage.MemoryStore
	pipeline     *transport.Pipeline
	expiredCalls int
}

func setupPipeline(t *testing.T, backend *fakeBackend) *pipelineFixture {
	t.Helper()

	server := httptest.NewServer(backend.handler())
	t.Cleanup(server.Close)

	f := &pipelineFixture{
		backend: backend,
		store:   storage.NewMemoryStore(),
	}

	pipeline, err := transport.New(server.URL, f.store,
		transport.WithSessionExpiredHandler(func() { f.expiredCalls++ }),
	)
	require.NoError(t, err)
	f.pipeline = pipeline
	return f
}

func (f *pipelineFixture) seedPair(t *testing.T, access, refresh string) {
	t.Helper()
	pair := storage.Pair{AccessToken: access, RefreshToken: refresh}
	require.NoError(t, storage.SavePair(context.Background(), f.store, pair))
}

func TestNewValidatesDependencies(t *testing.T) {
	_, err := transport.New("", storage.NewMemoryStore())
	require.Error(t, err)

	_, err = transport.New("http://localhost", nil)
	require.Error(t, err)
}

func TestAttachesBearerToken(t *testing.T) {
	backend := &fakeBackend{acceptToken: initialAccessToken}
	f := setupPipeline(t, backend)
	f.seedPair(t, initialAccessToken, refreshToken)

	env, err := f.pipeline.Get(context.Background(), "/protected")
	require.NoError(t, err)
	require.True(t, env.Success)
	require.Equal(t, []string{"Bearer " + initialAccessToken}, backend.authHeaders)
}

func TestSendsUnauthenticatedWithoutStoredToken(t *testing.T) {
	backend := &fakeBackend{}
	f := setupPipeline(t, backend)

	// No refresh token either, so the original 401 propagates and no
	// exchange is attempted.
	_, err := f.pipeline.Get(context.Background(), "/protected")
	require.True(t, transport.IsStatus(err, http.StatusUnauthorized))
	require.Equal(t, []string{""}, backend.authHeaders)
	require.Zero(t, backend.refreshCalls)
	require.Equal(t, 1, f.expiredCalls)
}

// A 401 followed by a successful refresh replays with the new token.
func TestRefreshAndReplaySucceeds(t *testing.T) {
	backend := &fakeBackend{acceptToken: refreshedToken}
	f := setupPipeline(t, backend)
	f.seedPair(t, initialAccessToken, refreshToken)

	env, err := f.pipeline.Get(context.Background(), "/protected")
	require.NoError(t, err)
	require.True(t, env.Success)

	require.Equal(t, 1, backend.refreshCalls)
	require.Equal(t, 2, backend.protectedCalls)
	require.Equal(t, []string{
		"Bearer " + initialAccessToken,
		"Bearer " + refreshedToken,
	}, backend.authHeaders)

	pair, err := storage.LoadPair(context.Background(), f.store)
	require.NoError(t, err)
	require.Equal(t, refreshedToken, pair.AccessToken)
	require.Equal(t, refreshToken, pair.RefreshToken)
	require.Zero(t, f.expiredCalls)
}

// The replay failing with 401 again never triggers a second refresh.
func TestAtMostOneRefreshPerRequest(t *testing.T) {
	backend := &fakeBackend{} // rejects every token
	f := setupPipeline(t, backend)
	f.seedPair(t, initialAccessToken, refreshToken)

	_, err := f.pipeline.Get(context.Background(), "/protected")
	require.Error(t, err)
	require.True(t, transport.IsStatus(err, http.StatusUnauthorized))

	require.Equal(t, 1, backend.refreshCalls)
	require.Equal(t, 2, backend.protectedCalls)
}

// The refresh exchange itself fails.
func TestRefreshFailureClearsCredentials(t *testing.T) {
	backend := &fakeBackend{refreshFails: true}
	f := setupPipeline(t, backend)
	f.seedPair(t, initialAccessToken, refreshToken)

	_, err := f.pipeline.Get(context.Background(), "/protected")
	require.Error(t, err)
	// The caller sees the refresh failure, not the original request's 401.
	require.ErrorContains(t, err, "refresh token expired")

	require.Equal(t, 1, backend.refreshCalls)
	require.Equal(t, 1, backend.protectedCalls)
	require.Equal(t, 1, f.expiredCalls)

	pair, err := storage.LoadPair(context.Background(), f.store)
	require.NoError(t, err)
	require.Empty(t, pair.AccessToken)
	require.Empty(t, pair.RefreshToken)
}

func TestBackgroundRequestSkipsExpiredHandler(t *testing.T) {
	backend := &fakeBackend{refreshFails: true}
	f := setupPipeline(t, backend)
	f.seedPair(t, initialAccessToken, refreshToken)

	_, err := f.pipeline.Get(context.Background(), "/protected", transport.Background())
	require.Error(t, err)

	require.Zero(t, f.expiredCalls)
	// Credentials are still cleared; only the navigation side effect is
	// suppressed for background subsystems.
	pair, err := storage.LoadPair(context.Background(), f.store)
	require.NoError(t, err)
	require.Empty(t, pair.AccessToken)
}

func TestNon401ErrorsPropagateUnchanged(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/boom", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusInternalServerError, "database unavailable", nil)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	store := storage.NewMemoryStore()
	pair := storage.Pair{AccessToken: initialAccessToken, RefreshToken: refreshToken}
	require.NoError(t, storage.SavePair(context.Background(), store, pair))

	pipeline, err := transport.New(server.URL, store)
	require.NoError(t, err)

	_, err = pipeline.Get(context.Background(), "/boom")
	require.True(t, transport.IsStatus(err, http.StatusInternalServerError))

	// No retry, no credential mutation.
	got, err := storage.LoadPair(context.Background(), store)
	require.NoError(t, err)
	require.Equal(t, pair, got)
}

func TestNetworkErrorPropagates(t *testing.T) {
	store := storage.NewMemoryStore()
	pipeline, err := transport.New("http://127.0.0.1:1", store)
	require.NoError(t, err)

	_, err = pipeline.Get(context.Background(), "/protected")
	require.Error(t, err)
	require.False(t, transport.IsStatus(err, http.StatusUnauthorized))
}
