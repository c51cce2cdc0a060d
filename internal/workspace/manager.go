package workspace

import (
	"context"
	"sync"

	"comida-a-casa/internal/apperr"
	"comida-a-casa/internal/session"

	"go.uber.org/zap"
)

// Users records who signed in.
type Users interface {
	UpsertUser(ctx context.Context, uid, displayName, email string) error
}

// Manager owns the workspaces of every signed-in user.
type Manager struct {
	users   Users
	open    func(uid string) Collections
	gen     Generation
	clipper Clipper
	logger  *zap.Logger

	mu         sync.Mutex
	workspaces map[string]*Workspace
}

// NewManager creates a Manager. open returns the persistence gateway of a
// user.
func NewManager(users Users, open func(uid string) Collections, gen Generation, clipper Clipper, logger *zap.Logger) *Manager {
	return &Manager{
		users:      users,
		open:       open,
		gen:        gen,
		clipper:    clipper,
		logger:     logger,
		workspaces: make(map[string]*Workspace),
	}
}

// HandleAuthChange is the session subscriber: a login creates and loads
// the user's workspace, a logout tears it down.
func (m *Manager) HandleAuthChange(ctx context.Context, ev session.Event) {
	if !ev.SignedIn {
		m.close(ev.User.UID)
		return
	}
	if m.users != nil {
		if err := m.users.UpsertUser(ctx, ev.User.UID, ev.User.DisplayName, ev.User.Email); err != nil {
			m.logger.Warn("failed to record user", zap.String("uid", ev.User.UID), zap.Error(err))
		}
	}
	ws := m.replace(ev.User)
	if err := ws.Load(ctx); err != nil {
		m.logger.Warn("workspace loaded with errors", zap.String("uid", ev.User.UID), zap.Error(err))
	}
}

// replace starts a fresh workspace for user, tearing down any previous one.
func (m *Manager) replace(user session.User) *Workspace {
	ws := newWorkspace(user, m.open(user.UID), m.gen, m.clipper, m.logger)
	m.mu.Lock()
	prev := m.workspaces[user.UID]
	m.workspaces[user.UID] = ws
	m.mu.Unlock()
	if prev != nil {
		prev.Teardown()
	}
	return ws
}

func (m *Manager) close(uid string) {
	m.mu.Lock()
	ws := m.workspaces[uid]
	delete(m.workspaces, uid)
	m.mu.Unlock()
	if ws != nil {
		ws.Teardown()
	}
}

// Get returns the workspace of a verified user, creating it if the process
// has not seen that user yet (for example after a restart). It waits for a
// load in flight and retries a failed one.
func (m *Manager) Get(ctx context.Context, user session.User) (*Workspace, error) {
	if user.UID == "" {
		return nil, apperr.New(apperr.AuthFailure, "workspace.get", session.ExpiredMessage)
	}
	m.mu.Lock()
	ws, ok := m.workspaces[user.UID]
	if !ok {
		ws = newWorkspace(user, m.open(user.UID), m.gen, m.clipper, m.logger)
		m.workspaces[user.UID] = ws
	}
	m.mu.Unlock()

	if err := ws.Ready(ctx); err != nil {
		if apperr.IsKind(err, apperr.AuthFailure) {
			return nil, err
		}
		m.logger.Warn("workspace loaded with errors", zap.String("uid", user.UID), zap.Error(err))
	}
	return ws, nil
}

// Active reports how many workspaces are open.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.workspaces)
}
