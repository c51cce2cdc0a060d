// Package session is the session gateway: delegated login, signed session
// tokens and the single auth-state subscription of the application.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"comida-a-casa/internal/apperr"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	issuer = "comida-a-casa"

	LoginFailedMessage  = "No se pudo iniciar sesión. Por favor, inténtalo de nuevo."
	LogoutFailedMessage = "No se pudo cerrar la sesión. Por favor, inténtalo de nuevo."
	ExpiredMessage      = "Tu sesión ha caducado. Vuelve a iniciar sesión."
)

// ErrAlreadyObserved is returned by Observe while another subscription is active.
var ErrAlreadyObserved = errors.New("auth state is already observed")

// Event is an auth-state change. SignedIn is false on logout.
type Event struct {
	User     User
	SignedIn bool
}

// Claims are the claims carried by a session token.
type Claims struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Manager issues and verifies session tokens and publishes auth changes.
type Manager struct {
	provider    Provider
	revocations Revocations
	secret      []byte
	ttl         time.Duration
	now         func() time.Time

	mu       sync.Mutex
	observer func(context.Context, Event)
}

// NewManager creates a session manager signing tokens with secret.
func NewManager(provider Provider, revocations Revocations, secret string, ttl time.Duration) *Manager {
	return &Manager{
		provider:    provider,
		revocations: revocations,
		secret:      []byte(secret),
		ttl:         ttl,
		now:         time.Now,
	}
}

// AuthCodeURL returns where to send the browser to start a login.
func (m *Manager) AuthCodeURL(state string) string {
	return m.provider.AuthCodeURL(state)
}

// NewState returns a random OAuth state value.
func NewState() string {
	return uuid.NewString()
}

// Observe registers fn as the auth-state subscriber. Only one subscription
// may be active; stop releases it.
func (m *Manager) Observe(fn func(context.Context, Event)) (stop func(), err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.observer != nil {
		return nil, ErrAlreadyObserved
	}
	m.observer = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			m.observer = nil
			m.mu.Unlock()
		})
	}, nil
}

func (m *Manager) publish(ctx context.Context, ev Event) {
	m.mu.Lock()
	fn := m.observer
	m.mu.Unlock()
	if fn != nil {
		fn(ctx, ev)
	}
}

// Login completes the delegated login and returns a signed session token.
func (m *Manager) Login(ctx context.Context, code string) (string, User, error) {
	const op = "session.login"
	user, err := m.provider.Exchange(ctx, code)
	if err != nil {
		return "", User{}, apperr.Wrap(apperr.AuthFailure, op, LoginFailedMessage, err)
	}
	token, err := m.Issue(user)
	if err != nil {
		return "", User{}, apperr.Wrap(apperr.AuthFailure, op, LoginFailedMessage, err)
	}
	m.publish(ctx, Event{User: user, SignedIn: true})
	return token, user, nil
}

// Issue signs a session token for user.
func (m *Manager) Issue(user User) (string, error) {
	if len(m.secret) == 0 {
		return "", errors.New("session secret is not configured")
	}
	now := m.now()
	claims := &Claims{
		Name:  user.DisplayName,
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   user.UID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify returns the user of a valid, unrevoked token.
func (m *Manager) Verify(ctx context.Context, token string) (User, error) {
	claims, err := m.parse(ctx, token)
	if err != nil {
		return User{}, err
	}
	return User{UID: claims.Subject, DisplayName: claims.Name, Email: claims.Email}, nil
}

func (m *Manager) parse(ctx context.Context, token string) (*Claims, error) {
	const op = "session.verify"
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.AuthFailure, op, ExpiredMessage, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return nil, apperr.New(apperr.AuthFailure, op, ExpiredMessage)
	}

	if m.revocations != nil {
		revoked, err := m.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, apperr.Wrap(apperr.AuthFailure, op, ExpiredMessage, err)
		}
		if revoked {
			return nil, apperr.New(apperr.AuthFailure, op, ExpiredMessage)
		}
	}
	return claims, nil
}

// Logout revokes token and tells the subscriber the user signed out.
func (m *Manager) Logout(ctx context.Context, token string) error {
	const op = "session.logout"
	claims, err := m.parse(ctx, token)
	if err != nil {
		return err
	}
	if m.revocations != nil {
		if err := m.revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
			return apperr.Wrap(apperr.AuthFailure, op, LogoutFailedMessage, err)
		}
	}
	m.publish(ctx, Event{User: User{UID: claims.Subject, DisplayName: claims.Name, Email: claims.Email}})
	return nil
}
