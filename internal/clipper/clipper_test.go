package clipper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"comida-a-casa/internal/apperr"
	"comida-a-casa/internal/recipe"
)

// --- Mocks ---
type MockExtractor struct {
	Draft       recipe.Draft
	ShouldError bool
	PageText    string
	SourceURL   string
}

func (m *MockExtractor) ExtractRecipe(ctx context.Context, sourceURL, pageText string) (recipe.ExtractorResult, error) {
	m.SourceURL = sourceURL
	m.PageText = pageText
	if m.ShouldError {
		return recipe.ExtractorResult{}, apperr.New(apperr.GenerationFailure, "mock", "mock ai error")
	}
	return recipe.ExtractorResult{Draft: m.Draft}, nil
}

const dirtyPage = `
<html>
	<head><script>alert('bad');</script></head>
	<body>
		<nav>Inicio | Recetas</nav>
		<h1>Tortilla de patatas</h1>
		<div class="ads">¡Compra ya!</div>
		<p>Pelar las patatas y batir los huevos.</p>
		<script>more_bad_stuff()</script>
		<footer>Copyright 2024</footer>
	</body>
</html>`

// --- Tests ---

func TestFetchAndCleanHTML(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(dirtyPage))
	}))
	defer ts.Close()

	c := NewClipper(&MockExtractor{})

	cleanText, err := c.fetchAndCleanHTML(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	for _, removed := range []string{"alert('bad')", "¡Compra ya!", "Copyright 2024", "Inicio | Recetas"} {
		if strings.Contains(cleanText, removed) {
			t.Errorf("Expected %q to be removed", removed)
		}
	}
	if !strings.Contains(cleanText, "Tortilla de patatas Pelar las patatas y batir los huevos.") {
		t.Errorf("Expected body content, got %q", cleanText)
	}
}

func TestClip_Success(t *testing.T) {
	mock := &MockExtractor{Draft: recipe.Draft{Name: "Tortilla de patatas", Ingredients: "patatas, huevos", Category: recipe.Others}}
	c := NewClipper(mock)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(dirtyPage))
	}))
	defer ts.Close()

	draft, err := c.Clip(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Clip failed: %v", err)
	}

	if draft.Name != "Tortilla de patatas" {
		t.Errorf("Expected name 'Tortilla de patatas', got '%s'", draft.Name)
	}
	if mock.SourceURL != ts.URL {
		t.Errorf("Expected source URL %s, got %s", ts.URL, mock.SourceURL)
	}
	if strings.Contains(mock.PageText, "alert") {
		t.Error("Expected cleaned page text to reach the extractor")
	}
}

func TestClip_Errors(t *testing.T) {
	notFound := httptest.NewServer(http.NotFoundHandler())
	defer notFound.Close()

	tests := []struct {
		name string
		url  string
		mock *MockExtractor
		kind apperr.Kind
	}{
		{"InvalidScheme", "ftp://example.com/receta", &MockExtractor{}, apperr.MalformedInput},
		{"NotAURL", "tortilla", &MockExtractor{}, apperr.MalformedInput},
		{"FetchFails", notFound.URL, &MockExtractor{}, apperr.MalformedInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClipper(tt.mock).Clip(context.Background(), tt.url)
			if !apperr.IsKind(err, tt.kind) {
				t.Fatalf("Expected %s, got %v", tt.kind, err)
			}
		})
	}

	t.Run("ExtractorFails", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "<html><body>Nada</body></html>")
		}))
		defer ts.Close()

		_, err := NewClipper(&MockExtractor{ShouldError: true}).Clip(context.Background(), ts.URL)
		if !apperr.IsKind(err, apperr.GenerationFailure) {
			t.Fatalf("Expected generation failure, got %v", err)
		}
	})
}
