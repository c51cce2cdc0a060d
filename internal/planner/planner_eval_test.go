package planner

import (
	"context"
	"os"
	"testing"
	"time"

	"comida-a-casa/internal/llm"

	"github.com/stretchr/testify/require"
)

// TestGenerateMenuPlan_LiveEval performs a real Gemini call to check that
// the response schema is accepted and validates.
// Run with: GEMINI_API_KEY=... go test -v ./internal/planner -run LiveEval
func TestGenerateMenuPlan_LiveEval(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping live eval in short mode")
	}
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("Skipping: GEMINI_API_KEY not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client, err := llm.NewGeminiClient(ctx, apiKey, "gemini-2.5-flash")
	require.NoError(t, err)
	defer client.Close()

	res, err := NewPlanner(client).GenerateMenuPlan(ctx, MenuRequest{
		Start:             time.Now().AddDate(0, 0, 1),
		Days:              3,
		Preferences:       "cenas ligeras",
		Profiles:          family,
		IncludeBreakfasts: true,
	})
	require.NoError(t, err)
	require.Len(t, res.Plan, 3)
	require.True(t, res.Plan.Contiguous())

	for day, meals := range res.Plan {
		t.Logf("%s: %s / %s / %s", day, meals.Breakfast.Name, meals.Lunch.Name, meals.Dinner.Name)
	}
}
