package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"comida-a-casa/internal/database"
	"comida-a-casa/internal/menu"
	"comida-a-casa/internal/profile"
	"comida-a-casa/internal/recipe"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// Queries holds the SQL of the per-user collections.
type Queries struct {
	db DBTX
}

func newQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const upsertUser = `
INSERT INTO users (uid, display_name, email, created_at, last_login_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (uid) DO UPDATE SET
    display_name = excluded.display_name,
    email = excluded.email,
    last_login_at = excluded.last_login_at`

func (q *Queries) UpsertUser(ctx context.Context, uid, displayName, email, now string) error {
	_, err := q.db.ExecContext(ctx, upsertUser, uid, displayName, email, now, now)
	return err
}

const listProfiles = `
SELECT id, name, age, gender, activity_level, notes
FROM profiles WHERE user_id = ? ORDER BY created_at, id`

func (q *Queries) ListProfiles(ctx context.Context, userID string) ([]profile.Profile, error) {
	rows, err := q.db.QueryContext(ctx, listProfiles, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []profile.Profile{}
	for rows.Next() {
		var p profile.Profile
		if err := rows.Scan(&p.ID, &p.Name, &p.Age, &p.Gender, &p.ActivityLevel, &p.Notes); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

const insertProfile = `
INSERT INTO profiles (id, user_id, name, age, gender, activity_level, notes, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertProfile(ctx context.Context, userID string, p profile.Profile, now string) error {
	_, err := q.db.ExecContext(ctx, insertProfile, p.ID, userID, p.Name, p.Age, p.Gender, p.ActivityLevel, p.Notes, now)
	return err
}

const updateProfile = `
UPDATE profiles SET name = ?, age = ?, gender = ?, activity_level = ?, notes = ?
WHERE id = ? AND user_id = ?`

func (q *Queries) UpdateProfile(ctx context.Context, userID string, p profile.Profile) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateProfile, p.Name, p.Age, p.Gender, p.ActivityLevel, p.Notes, p.ID, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) deleteByID(ctx context.Context, table, userID, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ? AND user_id = ?`, table), id, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listRecipes = `
SELECT id, name, ingredients, category
FROM recipes WHERE user_id = ? ORDER BY created_at, id`

func (q *Queries) ListRecipes(ctx context.Context, userID string) ([]recipe.UserRecipe, error) {
	rows, err := q.db.QueryContext(ctx, listRecipes, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []recipe.UserRecipe{}
	for rows.Next() {
		var r recipe.UserRecipe
		if err := rows.Scan(&r.ID, &r.Name, &r.Ingredients, &r.Category); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const insertRecipe = `
INSERT INTO recipes (id, user_id, name, ingredients, category, created_at)
VALUES (?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertRecipe(ctx context.Context, userID string, r recipe.UserRecipe, now string) error {
	_, err := q.db.ExecContext(ctx, insertRecipe, r.ID, userID, r.Name, r.Ingredients, r.Category, now)
	return err
}

const updateRecipe = `
UPDATE recipes SET name = ?, ingredients = ?, category = ?
WHERE id = ? AND user_id = ?`

func (q *Queries) UpdateRecipe(ctx context.Context, userID string, r recipe.UserRecipe) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateRecipe, r.Name, r.Ingredients, r.Category, r.ID, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const selectSavedMenus = `
SELECT id, start_date, end_date, plan, created_at FROM saved_menus`

func scanSavedMenu(scan func(dest ...any) error) (menu.SavedMenu, error) {
	var (
		m         menu.SavedMenu
		planJSON  string
		createdAt string
	)
	if err := scan(&m.ID, &m.StartDate, &m.EndDate, &planJSON, &createdAt); err != nil {
		return menu.SavedMenu{}, err
	}
	if err := json.Unmarshal([]byte(planJSON), &m.Plan); err != nil {
		return menu.SavedMenu{}, fmt.Errorf("failed to unmarshal saved menu %s: %w", m.ID, err)
	}
	t, err := database.ParseTime(createdAt)
	if err != nil {
		return menu.SavedMenu{}, err
	}
	m.CreatedAt = t
	return m, nil
}

func (q *Queries) ListSavedMenus(ctx context.Context, userID string) ([]menu.SavedMenu, error) {
	rows, err := q.db.QueryContext(ctx, selectSavedMenus+` WHERE user_id = ? ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []menu.SavedMenu{}
	for rows.Next() {
		m, err := scanSavedMenu(rows.Scan)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func (q *Queries) GetSavedMenu(ctx context.Context, userID, id string) (menu.SavedMenu, error) {
	row := q.db.QueryRowContext(ctx, selectSavedMenus+` WHERE user_id = ? AND id = ?`, userID, id)
	return scanSavedMenu(row.Scan)
}

const insertSavedMenu = `
INSERT INTO saved_menus (id, user_id, start_date, end_date, plan, created_at)
VALUES (?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertSavedMenu(ctx context.Context, userID string, m menu.SavedMenu) error {
	planJSON, err := json.Marshal(m.Plan)
	if err != nil {
		return fmt.Errorf("failed to marshal menu plan: %w", err)
	}
	_, err = q.db.ExecContext(ctx, insertSavedMenu, m.ID, userID, m.StartDate, m.EndDate, string(planJSON), database.FormatTime(m.CreatedAt))
	return err
}
