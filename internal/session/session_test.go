package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"comida-a-casa/internal/apperr"
	"comida-a-casa/internal/database/dbtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type fakeProvider struct {
	user User
	err  error
}

func (f fakeProvider) AuthCodeURL(state string) string { return "https://login.example/?state=" + state }

func (f fakeProvider) Exchange(_ context.Context, _ string) (User, error) {
	return f.user, f.err
}

func newManager(t *testing.T, p Provider) *Manager {
	t.Helper()
	return NewManager(p, NewSQLRevocations(dbtest.New(t).SQL), "test-secret", time.Hour)
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, fakeProvider{user: User{UID: "uid-1", DisplayName: "Ana", Email: "ana@example.com"}})

	var events []Event
	stop, err := m.Observe(func(_ context.Context, ev Event) { events = append(events, ev) })
	require.NoError(t, err)
	defer stop()

	token, user, err := m.Login(ctx, "code")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", user.UID)

	got, err := m.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user, got)

	require.NoError(t, m.Logout(ctx, token))
	_, err = m.Verify(ctx, token)
	assert.True(t, apperr.IsKind(err, apperr.AuthFailure))

	require.Len(t, events, 2)
	assert.True(t, events[0].SignedIn)
	assert.False(t, events[1].SignedIn)
	assert.Equal(t, "uid-1", events[1].User.UID)
}

func TestLoginFailureIsAuthFailure(t *testing.T) {
	m := newManager(t, fakeProvider{err: errors.New("access_denied")})

	_, _, err := m.Login(context.Background(), "code")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.AuthFailure))
	assert.Equal(t, LoginFailedMessage, apperr.UserMessage(err))
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, fakeProvider{})
	user := User{UID: "uid-1", DisplayName: "Ana"}

	t.Run("Expired", func(t *testing.T) {
		token, err := m.Issue(user)
		require.NoError(t, err)
		m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { m.now = time.Now }()

		_, err = m.Verify(ctx, token)
		assert.True(t, apperr.IsKind(err, apperr.AuthFailure))
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other := NewManager(fakeProvider{}, nil, "another-secret", time.Hour)
		token, err := other.Issue(user)
		require.NoError(t, err)

		_, err = m.Verify(ctx, token)
		assert.True(t, apperr.IsKind(err, apperr.AuthFailure))
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := m.Verify(ctx, "not.a.token")
		assert.True(t, apperr.IsKind(err, apperr.AuthFailure))
	})
}

func TestIssueWithoutSecret(t *testing.T) {
	m := NewManager(fakeProvider{}, nil, "", time.Hour)
	_, err := m.Issue(User{UID: "u"})
	assert.Error(t, err)
}

func TestObserveAllowsOneSubscriber(t *testing.T) {
	m := newManager(t, fakeProvider{})

	stop, err := m.Observe(func(context.Context, Event) {})
	require.NoError(t, err)

	_, err = m.Observe(func(context.Context, Event) {})
	assert.ErrorIs(t, err, ErrAlreadyObserved)

	stop()
	stop()
	stop2, err := m.Observe(func(context.Context, Event) {})
	require.NoError(t, err)
	stop2()
}

func TestPurgeRevocations(t *testing.T) {
	ctx := context.Background()
	r := NewSQLRevocations(dbtest.New(t).SQL)
	now := time.Now()

	require.NoError(t, r.Revoke(ctx, "old", now.Add(-time.Hour)))
	require.NoError(t, r.Revoke(ctx, "new", now.Add(time.Hour)))
	require.NoError(t, r.Revoke(ctx, "new", now.Add(time.Hour)))

	n, err := r.Purge(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	revoked, err := r.IsRevoked(ctx, "new")
	require.NoError(t, err)
	assert.True(t, revoked)
	revoked, err = r.IsRevoked(ctx, "old")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestGoogleProviderExchange(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "the-code", r.Form.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"abc","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"sub":"1234","name":"Lucía","email":"lucia@example.com"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := NewGoogleProvider("client", "secret", "http://localhost/auth/callback").
		WithEndpoints(oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"}, srv.URL+"/userinfo")

	u, err := url.Parse(p.AuthCodeURL("xyz"))
	require.NoError(t, err)
	assert.Equal(t, "xyz", u.Query().Get("state"))
	assert.Equal(t, "client", u.Query().Get("client_id"))

	user, err := p.Exchange(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, User{UID: "1234", DisplayName: "Lucía", Email: "lucia@example.com"}, user)
}

func TestGoogleProviderUserInfoError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"abc","token_type":"Bearer"}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := NewGoogleProvider("client", "secret", "").
		WithEndpoints(oauth2.Endpoint{TokenURL: srv.URL + "/token"}, srv.URL+"/userinfo")

	_, err := p.Exchange(context.Background(), "code")
	assert.ErrorContains(t, err, "401")
}
