package metrics

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"comida-a-casa/internal/database/dbtest"
	"comida-a-casa/internal/persistence"
	"comida-a-casa/internal/recipe"
	"comida-a-casa/internal/shared"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreDailyUsageAndCleanup(t *testing.T) {
	ctx := context.Background()
	store := NewStore(dbtest.New(t).SQL)

	now := time.Now().UTC()
	require.NoError(t, store.Record(ctx, GenerationMetric{Operation: "menu_plan", PromptTokens: 100, CompletionTokens: 50, Timestamp: now}))
	require.NoError(t, store.Record(ctx, GenerationMetric{Operation: "shopping_list", PromptTokens: 10, CompletionTokens: 5, Outcome: OutcomeError, Timestamp: now}))
	require.NoError(t, store.Record(ctx, GenerationMetric{Operation: "menu_plan", PromptTokens: 1, Timestamp: now.AddDate(0, 0, -40)}))

	usage, err := store.GetDailyUsage(ctx, 7)
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.Equal(t, now.Format("2006-01-02"), usage[0].Date)
	assert.Equal(t, 110, usage[0].TotalPrompt)
	assert.Equal(t, 55, usage[0].TotalCompletion)
	assert.Equal(t, 2, usage[0].TotalExecution)
	assert.Equal(t, 1, usage[0].Failures)

	removed, err := store.Cleanup(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestStoreRecordGeneration(t *testing.T) {
	ctx := context.Background()
	store := NewStore(dbtest.New(t).SQL)

	store.RecordGeneration("recipe_detail", shared.TokenUsage{PromptTokens: 7, Model: "gemini-2.5-flash"}, time.Second, nil)
	require.NoError(t, store.RecordMeta(ctx, shared.GenerationMeta{Operation: "menu_plan"}, errors.New("bad json")))

	usage, err := store.GetDailyUsage(ctx, 1)
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.Equal(t, 2, usage[0].TotalExecution)
	assert.Equal(t, 1, usage[0].Failures)
}

func TestMapUsage(t *testing.T) {
	m := MapUsage("menu_plan", shared.TokenUsage{PromptTokens: 3, CompletionTokens: 4, Model: "m"}, 1500*time.Millisecond, nil)
	assert.Equal(t, "menu_plan", m.Operation)
	assert.Equal(t, OutcomeSuccess, m.Outcome)
	assert.Equal(t, int64(1500), m.LatencyMS)

	assert.Equal(t, OutcomeError, MapUsage("x", shared.TokenUsage{}, 0, errors.New("e")).Outcome)
}

func TestCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollectors(reg)

	c.RecordGeneration("menu_plan", shared.TokenUsage{PromptTokens: 100, CompletionTokens: 20}, time.Second, nil)
	c.RecordGeneration("menu_plan", shared.TokenUsage{}, time.Second, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.requests.WithLabelValues("menu_plan", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.requests.WithLabelValues("menu_plan", OutcomeError)))
	assert.Equal(t, 100.0, testutil.ToFloat64(c.tokens.WithLabelValues("menu_plan", "prompt")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.latency))
}

func TestHealth(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	store := NewStore(db.SQL)
	users := persistence.NewStore(db.SQL)

	require.NoError(t, users.UpsertUser(ctx, "uid-1", "Ana", "ana@example.com"))
	g := users.ForUser("uid-1")
	_, err := g.AddRecipe(ctx, recipe.Draft{Name: "Lentejas", Ingredients: "lentejas, chorizo", Category: recipe.Legumes})
	require.NoError(t, err)
	_, err = g.AddRecipe(ctx, recipe.Draft{Name: "Tortilla", Ingredients: "huevos, patata"})
	require.NoError(t, err)

	h, err := store.Health(ctx, db.Path)
	require.NoError(t, err)
	assert.Equal(t, int64(1), h.Users)
	assert.Equal(t, int64(2), h.Recipes)
	assert.Zero(t, h.Profiles)
	assert.Zero(t, h.SavedMenus)
	assert.Positive(t, h.DatabaseBytes)
	assert.Positive(t, h.Goroutines)
}

func TestDatabaseSizeIncludesWAL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "comida.db")
	require.NoError(t, os.WriteFile(path, make([]byte, 2048), 0o600))
	require.NoError(t, os.WriteFile(path+"-wal", make([]byte, 1024), 0o600))

	assert.Equal(t, int64(3072), databaseSize(path))
	assert.Zero(t, databaseSize(filepath.Join(t.TempDir(), "missing.db")))
}

func TestHumanBytes(t *testing.T) {
	assert.Equal(t, "512 B", HumanBytes(512))
	assert.Equal(t, "2.0 KB", HumanBytes(2048))
	assert.Equal(t, "1.5 MB", HumanBytes(1536*1024))
}
