// Package persistence stores each user's profiles, recipes and saved menus.
//
// Every operation checks that the store is initialized, returning a
// StorageUnavailable error otherwise, and wraps any failure of the
// underlying database in a PersistenceFailure with a Spanish message. The
// original error stays reachable through errors.Unwrap for logging.
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"comida-a-casa/internal/apperr"
	"comida-a-casa/internal/database"
	"comida-a-casa/internal/menu"
	"comida-a-casa/internal/profile"
	"comida-a-casa/internal/recipe"

	"github.com/google/uuid"
)

const unavailableMessage = "El almacenamiento no está disponible en este momento."

// Store is the database-backed persistence gateway.
type Store struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
	newID   func() string
}

// NewStore creates a Store over an open database. A nil db yields a store
// whose every call fails with StorageUnavailable.
func NewStore(db *sql.DB) *Store {
	s := &Store{db: db, now: time.Now, newID: uuid.NewString}
	if db != nil {
		s.queries = newQueries(db)
	}
	return s
}

func (s *Store) ready(op string) error {
	if s == nil || s.db == nil || s.queries == nil {
		return apperr.New(apperr.StorageUnavailable, op, unavailableMessage)
	}
	return nil
}

func (s *Store) stamp() string {
	return database.FormatTime(s.now())
}

// UpsertUser records a login of uid.
func (s *Store) UpsertUser(ctx context.Context, uid, displayName, email string) error {
	const op = "users.upsert"
	if err := s.ready(op); err != nil {
		return err
	}
	if err := s.queries.UpsertUser(ctx, uid, displayName, email, s.stamp()); err != nil {
		return apperr.Wrap(apperr.PersistenceFailure, op, "No se pudieron guardar tus datos de usuario.", err)
	}
	return nil
}

// ForUser scopes the store to one user's collections.
func (s *Store) ForUser(uid string) *Gateway {
	return &Gateway{store: s, uid: uid}
}

// Gateway is the persistence gateway of a single user.
type Gateway struct {
	store *Store
	uid   string
}

func (g *Gateway) ready(op string) error {
	if g == nil {
		return apperr.New(apperr.StorageUnavailable, op, unavailableMessage)
	}
	if err := g.store.ready(op); err != nil {
		return err
	}
	if g.uid == "" {
		return apperr.New(apperr.AuthFailure, op, "Debes iniciar sesión.")
	}
	return nil
}

func notFoundIfNone(affected int64, op, message string) error {
	if affected == 0 {
		return apperr.New(apperr.NotFound, op, message)
	}
	return nil
}

// ListProfiles returns the user's profiles in creation order.
func (g *Gateway) ListProfiles(ctx context.Context) ([]profile.Profile, error) {
	const op = "profiles.list"
	if err := g.ready(op); err != nil {
		return nil, err
	}
	items, err := g.store.queries.ListProfiles(ctx, g.uid)
	if err != nil {
		return nil, apperr.Wrap(apperr.PersistenceFailure, op, "No se pudieron cargar los perfiles.", err)
	}
	return items, nil
}

// AddProfile stores p under a new identity.
func (g *Gateway) AddProfile(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	const op = "profiles.add"
	if err := g.ready(op); err != nil {
		return profile.Profile{}, err
	}
	if err := p.Validate(); err != nil {
		return profile.Profile{}, err
	}
	p.ID = g.store.newID()
	if err := g.store.queries.InsertProfile(ctx, g.uid, p, g.store.stamp()); err != nil {
		return profile.Profile{}, apperr.Wrap(apperr.PersistenceFailure, op, "No se pudo guardar el perfil.", err)
	}
	return p, nil
}

// UpdateProfile replaces the stored profile with the same ID.
func (g *Gateway) UpdateProfile(ctx context.Context, p profile.Profile) error {
	const op = "profiles.update"
	if err := g.ready(op); err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}
	n, err := g.store.queries.UpdateProfile(ctx, g.uid, p)
	if err != nil {
		return apperr.Wrap(apperr.PersistenceFailure, op, "No se pudo actualizar el perfil.", err)
	}
	return notFoundIfNone(n, op, "El perfil no existe.")
}

// DeleteProfile removes a profile.
func (g *Gateway) DeleteProfile(ctx context.Context, id string) error {
	const op = "profiles.delete"
	if err := g.ready(op); err != nil {
		return err
	}
	n, err := g.store.queries.deleteByID(ctx, "profiles", g.uid, id)
	if err != nil {
		return apperr.Wrap(apperr.PersistenceFailure, op, "No se pudo eliminar el perfil.", err)
	}
	return notFoundIfNone(n, op, "El perfil no existe.")
}

// ListRecipes returns the user's recipes in creation order.
func (g *Gateway) ListRecipes(ctx context.Context) ([]recipe.UserRecipe, error) {
	const op = "recipes.list"
	if err := g.ready(op); err != nil {
		return nil, err
	}
	items, err := g.store.queries.ListRecipes(ctx, g.uid)
	if err != nil {
		return nil, apperr.Wrap(apperr.PersistenceFailure, op, "No se pudieron cargar tus recetas.", err)
	}
	return items, nil
}

// AddRecipe stores d under a new identity.
func (g *Gateway) AddRecipe(ctx context.Context, d recipe.Draft) (recipe.UserRecipe, error) {
	const op = "recipes.add"
	if err := g.ready(op); err != nil {
		return recipe.UserRecipe{}, err
	}
	d = d.Normalize()
	if err := d.Validate(); err != nil {
		return recipe.UserRecipe{}, err
	}
	r := d.WithID(g.store.newID())
	if err := g.store.queries.InsertRecipe(ctx, g.uid, r, g.store.stamp()); err != nil {
		return recipe.UserRecipe{}, apperr.Wrap(apperr.PersistenceFailure, op, "No se pudo guardar la receta.", err)
	}
	return r, nil
}

// UpdateRecipe replaces the stored recipe with the same ID.
func (g *Gateway) UpdateRecipe(ctx context.Context, r recipe.UserRecipe) (recipe.UserRecipe, error) {
	const op = "recipes.update"
	if err := g.ready(op); err != nil {
		return recipe.UserRecipe{}, err
	}
	d := recipe.Draft{Name: r.Name, Ingredients: r.Ingredients, Category: r.Category}.Normalize()
	if err := d.Validate(); err != nil {
		return recipe.UserRecipe{}, err
	}
	r = d.WithID(r.ID)
	n, err := g.store.queries.UpdateRecipe(ctx, g.uid, r)
	if err != nil {
		return recipe.UserRecipe{}, apperr.Wrap(apperr.PersistenceFailure, op, "No se pudo actualizar la receta.", err)
	}
	if err := notFoundIfNone(n, op, "La receta no existe."); err != nil {
		return recipe.UserRecipe{}, err
	}
	return r, nil
}

// DeleteRecipe removes a recipe.
func (g *Gateway) DeleteRecipe(ctx context.Context, id string) error {
	const op = "recipes.delete"
	if err := g.ready(op); err != nil {
		return err
	}
	n, err := g.store.queries.deleteByID(ctx, "recipes", g.uid, id)
	if err != nil {
		return apperr.Wrap(apperr.PersistenceFailure, op, "No se pudo eliminar la receta.", err)
	}
	return notFoundIfNone(n, op, "La receta no existe.")
}

// ImportRecipes stores all drafts in one transaction: either every draft
// gets an identity or none is stored.
func (g *Gateway) ImportRecipes(ctx context.Context, drafts []recipe.Draft) ([]recipe.UserRecipe, error) {
	const op = "recipes.import"
	const message = "No se pudieron importar las recetas. No se ha guardado ninguna."
	if err := g.ready(op); err != nil {
		return nil, err
	}

	stored := make([]recipe.UserRecipe, 0, len(drafts))
	for _, d := range drafts {
		d = d.Normalize()
		if err := d.Validate(); err != nil {
			return nil, err
		}
		stored = append(stored, d.WithID(g.store.newID()))
	}
	if len(stored) == 0 {
		return stored, nil
	}

	tx, err := g.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.PersistenceFailure, op, message, err)
	}
	defer tx.Rollback()

	qtx := g.store.queries.WithTx(tx)
	now := g.store.stamp()
	for _, r := range stored {
		if err := qtx.InsertRecipe(ctx, g.uid, r, now); err != nil {
			return nil, apperr.Wrap(apperr.PersistenceFailure, op, message, fmt.Errorf("insert %q: %w", r.Name, err))
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, apperr.Wrap(apperr.PersistenceFailure, op, message, err)
	}
	return stored, nil
}

// ListSavedMenus returns the saved menus, newest first.
func (g *Gateway) ListSavedMenus(ctx context.Context) ([]menu.SavedMenu, error) {
	const op = "saved_menus.list"
	if err := g.ready(op); err != nil {
		return nil, err
	}
	items, err := g.store.queries.ListSavedMenus(ctx, g.uid)
	if err != nil {
		return nil, apperr.Wrap(apperr.PersistenceFailure, op, "No se pudieron cargar los menús guardados.", err)
	}
	return items, nil
}

// GetSavedMenu returns one saved menu.
func (g *Gateway) GetSavedMenu(ctx context.Context, id string) (menu.SavedMenu, error) {
	const op = "saved_menus.get"
	if err := g.ready(op); err != nil {
		return menu.SavedMenu{}, err
	}
	m, err := g.store.queries.GetSavedMenu(ctx, g.uid, id)
	if errors.Is(err, sql.ErrNoRows) {
		return menu.SavedMenu{}, apperr.New(apperr.NotFound, op, "El menú no existe.")
	}
	if err != nil {
		return menu.SavedMenu{}, apperr.Wrap(apperr.PersistenceFailure, op, "No se pudo cargar el menú.", err)
	}
	return m, nil
}

// SaveMenu stores plan as a new saved menu. Saved menus are never updated.
func (g *Gateway) SaveMenu(ctx context.Context, plan menu.Plan) (menu.SavedMenu, error) {
	const op = "saved_menus.add"
	if err := g.ready(op); err != nil {
		return menu.SavedMenu{}, err
	}
	m, err := menu.NewSavedMenu(plan)
	if err != nil {
		return menu.SavedMenu{}, apperr.Wrap(apperr.MalformedInput, op, "No hay ningún menú que guardar.", err)
	}
	m.ID = g.store.newID()
	m.CreatedAt = g.store.now().UTC().Truncate(time.Microsecond)
	if err := g.store.queries.InsertSavedMenu(ctx, g.uid, m); err != nil {
		return menu.SavedMenu{}, apperr.Wrap(apperr.PersistenceFailure, op, "No se pudo guardar el menú.", err)
	}
	return m, nil
}

// DeleteSavedMenu removes a saved menu.
func (g *Gateway) DeleteSavedMenu(ctx context.Context, id string) error {
	const op = "saved_menus.delete"
	if err := g.ready(op); err != nil {
		return err
	}
	n, err := g.store.queries.deleteByID(ctx, "saved_menus", g.uid, id)
	if err != nil {
		return apperr.Wrap(apperr.PersistenceFailure, op, "No se pudo eliminar el menú.", err)
	}
	return notFoundIfNone(n, op, "El menú no existe.")
}
