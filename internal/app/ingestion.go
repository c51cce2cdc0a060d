package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"comida-a-casa/internal/recipe"

	"go.uber.org/zap"
)

// ImportRecipesFromFile stores every recipe of the CSV file at path in the
// collection of uid, all or nothing.
func (a *App) ImportRecipesFromFile(ctx context.Context, uid, path string) (int, error) {
	if uid == "" {
		return 0, fmt.Errorf("a user id is required")
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	drafts, err := recipe.ParseCSV(f)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(drafts) == 0 {
		a.Logger.Info("No recipes to import", zap.String("file", path))
		return 0, nil
	}

	imported, err := a.Store.ForUser(uid).ImportRecipes(ctx, drafts)
	if err != nil {
		return 0, fmt.Errorf("failed to import recipes: %w", err)
	}
	for _, r := range imported {
		a.Logger.Debug("Imported recipe", zap.String("user_id", uid), zap.String("id", r.ID), zap.String("name", r.Name))
	}
	a.Logger.Info("Recipes imported", zap.String("user_id", uid), zap.Int("count", len(imported)))
	return len(imported), nil
}

// Housekeeping removes metric rows older than metricsDays and revoked
// session ids that have expired anyway.
func (a *App) Housekeeping(ctx context.Context, metricsDays int) (metricRows, sessionRows int64, err error) {
	metricRows, err = a.Metrics.Cleanup(ctx, metricsDays)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to clean up metrics: %w", err)
	}
	sessionRows, err = a.Revocations.Purge(ctx, time.Now())
	if err != nil {
		return metricRows, 0, fmt.Errorf("failed to purge revoked sessions: %w", err)
	}
	return metricRows, sessionRows, nil
}
