package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"comida-a-casa/internal/database/dbtest"
	"comida-a-casa/internal/llm"
	"comida-a-casa/internal/persistence"
	"comida-a-casa/internal/planner"
	"comida-a-casa/internal/recipe"
	"comida-a-casa/internal/session"
	"comida-a-casa/internal/workspace"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeGenerator struct {
	mu        sync.Mutex
	responses map[string]string
}

func (f *fakeGenerator) GenerateJSON(_ context.Context, req llm.Request) (llm.ContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return llm.ContentResponse{Content: f.responses[req.Operation]}, nil
}

type fakeProvider struct{ user session.User }

func (p fakeProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + url.QueryEscape(state)
}

func (p fakeProvider) Exchange(_ context.Context, code string) (session.User, error) {
	if code != "good-code" {
		return session.User{}, assert.AnError
	}
	return p.user, nil
}

type fakeClipper struct{}

func (fakeClipper) Clip(context.Context, string) (recipe.Draft, error) {
	return recipe.Draft{Name: "Gazpacho", Ingredients: "tomate, pepino, pimiento", Category: recipe.Soups}, nil
}

var lucia = session.User{UID: "uid-lucia", DisplayName: "Lucía", Email: "lucia@example.com"}

const menuJSON = `{
	"2025-09-04": {"lunch": {"name": "Lentejas estofadas", "category": "Legumbres"}, "dinner": {"name": "Merluza en salsa verde", "category": "Pescados"}},
	"2025-09-05": {"lunch": {"name": "Paella de verduras", "category": "Arroces"}, "dinner": {"name": "Crema de calabacín", "category": "Cremas y Sopas"}}
}`

const shoppingJSON = `{"items": [
	{"ingredient": "Lentejas", "quantity": 500, "unit": "g", "category": "Despensa"},
	{"ingredient": "Merluza", "quantity": "4", "unit": "filetes", "category": "Pescadería"}
]}`

type testServer struct {
	router   *gin.Engine
	sessions *session.Manager
}

func newTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()
	db := dbtest.New(t)
	store := persistence.NewStore(db.SQL)
	gen := &fakeGenerator{responses: map[string]string{
		planner.OpMenuPlan:     menuJSON,
		planner.OpShoppingList: shoppingJSON,
		planner.OpRecipeDetail: `{"name": "Paella de verduras", "ingredients": ["arroz"], "instructions": ["Sofreír"], "calories": 550, "nutritionalInfo": {"protein": "12 g", "carbohydrates": "90 g", "fats": "10 g"}, "motivationalComment": "¡A disfrutar!"}`,
	}}
	workspaces := workspace.NewManager(store, func(uid string) workspace.Collections { return store.ForUser(uid) },
		planner.NewPlanner(gen), fakeClipper{}, zap.NewNop())
	sessions := session.NewManager(fakeProvider{user: lucia}, session.NewSQLRevocations(db.SQL), "test-secret", time.Hour)
	stop, err := sessions.Observe(workspaces.HandleAuthChange)
	require.NoError(t, err)
	t.Cleanup(stop)

	opts.Sessions = sessions
	opts.Workspaces = workspaces
	opts.SessionTTL = time.Hour
	srv, err := NewServer(opts)
	require.NoError(t, err)
	return &testServer{router: srv.Router(), sessions: sessions}
}

func (ts *testServer) token(t *testing.T) string {
	t.Helper()
	token, err := ts.sessions.Issue(lucia)
	require.NoError(t, err)
	return token
}

func (ts *testServer) do(method, path, token, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) json(method, path, token, body string) *httptest.ResponseRecorder {
	return ts.do(method, path, token, "application/json", body)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func TestConfigurationErrorScreen(t *testing.T) {
	ts := newTestServer(t, Options{Missing: []string{"GOOGLE_CLIENT_ID", "GEMINI_API_KEY"}})

	w := ts.do(http.MethodGet, "/", "", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "GEMINI_API_KEY")
	assert.Contains(t, w.Body.String(), "Error de configuración")

	w = ts.do(http.MethodGet, "/api/me", ts.token(t), "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "config_error", decode[errorBody](t, w).Kind)

	w = ts.do(http.MethodGet, "/health", "", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","configured":false}`, w.Body.String())
}

func TestLoginFlow(t *testing.T) {
	ts := newTestServer(t, Options{})

	w := ts.do(http.MethodGet, "/", "", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Iniciar sesión con Google")

	w = ts.do(http.MethodGet, "/auth/login", "", "", "")
	require.Equal(t, http.StatusFound, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)

	var stateCookieValue string
	for _, c := range w.Result().Cookies() {
		if c.Name == stateCookie {
			stateCookieValue = c.Value
		}
	}
	assert.Equal(t, state, stateCookieValue)

	callback := func(query string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/auth/callback?"+query, nil)
		req.AddCookie(&http.Cookie{Name: stateCookie, Value: state})
		rec := httptest.NewRecorder()
		ts.router.ServeHTTP(rec, req)
		return rec
	}

	t.Run("StateMismatch", func(t *testing.T) {
		rec := callback("state=other&code=good-code")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "ha caducado")
	})

	t.Run("ProviderFailure", func(t *testing.T) {
		rec := callback("state=" + url.QueryEscape(state) + "&code=bad")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "No se pudo iniciar sesión")
	})

	t.Run("Success", func(t *testing.T) {
		rec := callback("state=" + url.QueryEscape(state) + "&code=good-code")
		require.Equal(t, http.StatusFound, rec.Code)

		var token string
		for _, c := range rec.Result().Cookies() {
			if c.Name == sessionCookie {
				token = c.Value
				assert.True(t, c.HttpOnly)
			}
		}
		require.NotEmpty(t, token)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: token})
		page := httptest.NewRecorder()
		ts.router.ServeHTTP(page, req)
		assert.Contains(t, page.Body.String(), "Hola, Lucía")

		out := ts.do(http.MethodPost, "/auth/logout", token, "", "")
		assert.Equal(t, http.StatusSeeOther, out.Code)

		me := ts.do(http.MethodGet, "/api/me", token, "", "")
		assert.Equal(t, http.StatusUnauthorized, me.Code)
		assert.Equal(t, "auth_failure", decode[errorBody](t, me).Kind)
	})
}

func TestAPIRequiresSession(t *testing.T) {
	ts := newTestServer(t, Options{})

	w := ts.do(http.MethodGet, "/api/me", "", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "auth_failure", decode[errorBody](t, w).Kind)

	w = ts.do(http.MethodGet, "/api/me", "garbage", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProfilesAndRecipes(t *testing.T) {
	ts := newTestServer(t, Options{})
	token := ts.token(t)

	w := ts.json(http.MethodPost, "/api/profiles", token, `{"name": "", "age": 0, "gender": "Mujer", "activityLevel": "Alto"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Por favor, completa el nombre y una edad válida.", decode[errorBody](t, w).Error)

	w = ts.json(http.MethodPost, "/api/profiles", token, `{"name": "Lucía", "age": 41, "gender": "Mujer", "activityLevel": "Muy Alto"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[map[string]any](t, w)
	id := created["id"].(string)

	w = ts.json(http.MethodPut, "/api/profiles/"+id, token, `{"name": "Lucía", "age": 42, "gender": "Mujer", "activityLevel": "Alto", "notes": "vegetariana"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.json(http.MethodPut, "/api/profiles/missing", token, `{"name": "X", "age": 2, "gender": "Otro", "activityLevel": "Bajo"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(http.MethodGet, "/api/profiles", token, "", "")
	profiles := decode[workspace.Resource[map[string]any]](t, w)
	assert.Equal(t, workspace.Loaded, profiles.State)
	require.Len(t, profiles.Items, 1)
	assert.Equal(t, "vegetariana", profiles.Items[0]["notes"])

	w = ts.json(http.MethodPost, "/api/recipes", token, `{"name": "Croquetas", "ingredients": ""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, recipe.IncompleteMessage, decode[errorBody](t, w).Error)

	w = ts.json(http.MethodPost, "/api/recipes", token, `{"name": "Croquetas", "ingredients": "jamón, bechamel", "category": "otros"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.do(http.MethodPost, "/api/recipes/import", token, "text/csv", "nombre,ingredientes,categoría\nLentejas,\"lentejas, chorizo\",Legumbres\nPisto,\"calabacín, tomate\",\n")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, float64(2), decode[map[string]any](t, w)["imported"])

	w = ts.do(http.MethodPost, "/api/recipes/import", token, "text/csv", "nombre\nLentejas\n")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "malformed_input", decode[errorBody](t, w).Kind)

	w = ts.json(http.MethodPost, "/api/recipes/clip", token, `{"url": "https://example.com/gazpacho"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.do(http.MethodGet, "/api/recipes?category=Legumbres", token, "", "")
	legumes := decode[[]recipe.UserRecipe](t, w)
	require.Len(t, legumes, 1)
	assert.Equal(t, "Lentejas", legumes[0].Name)

	w = ts.do(http.MethodGet, "/api/recipes?category=Sin%20Clasificar", token, "", "")
	assert.Len(t, decode[[]recipe.UserRecipe](t, w), 1)

	w = ts.do(http.MethodGet, "/api/recipes?category=postres", token, "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodDelete, "/api/recipes/"+legumes[0].ID, token, "", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(http.MethodDelete, "/api/errors/import", token, "", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = ts.do(http.MethodDelete, "/api/errors/kitchen", token, "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMenuFlow(t *testing.T) {
	ts := newTestServer(t, Options{GenerationBurst: 20})
	token := ts.token(t)

	w := ts.do(http.MethodGet, "/api/menu", token, "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.json(http.MethodPost, "/api/menu/generate", token, `{"startDate": "04/09/2025", "days": 2}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = ts.json(http.MethodPost, "/api/menu/generate", token, `{"startDate": "2025-09-04", "days": 40}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.json(http.MethodPost, "/api/menu/generate", token, `{"startDate": "2025-09-04", "days": 2, "preferences": "poca carne"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []any{"2025-09-04", "2025-09-05"}, decode[map[string]any](t, w)["days"])

	w = ts.json(http.MethodPost, "/api/recipes", token, `{"name": "Garbanzos con espinacas", "ingredients": "garbanzos, espinacas", "category": "Legumbres"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	recipeID := decode[recipe.UserRecipe](t, w).ID

	swap := `{"date": "2025-09-04", "mealType": "dinner", "recipeId": "` + recipeID + `"}`
	w = ts.json(http.MethodPost, "/api/menu/swap/preview", token, swap)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, decode[workspace.SwapPreview](t, w).Advisory, "legumbres")

	w = ts.json(http.MethodPost, "/api/menu/swap", token, `{"date": "2025-09-04", "mealType": "merienda", "recipeId": "x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.json(http.MethodPost, "/api/menu/swap", token, swap)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Garbanzos con espinacas")

	w = ts.do(http.MethodGet, "/api/recipe-details?dish=Paella%20de%20verduras", token, "", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(550), decode[map[string]any](t, w)["calories"])

	w = ts.do(http.MethodGet, "/api/recipe-details", token, "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodPost, "/api/shopping-list", token, "", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(2), decode[map[string]any](t, w)["remaining"])

	w = ts.do(http.MethodPost, "/api/shopping-list/items/0/toggle", token, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode[map[string]any](t, w)["remaining"])

	w = ts.do(http.MethodPost, "/api/shopping-list/items/abc/toggle", token, "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodGet, "/api/shopping-list/print", token, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "Merluza")
	assert.NotContains(t, w.Body.String(), "Lentejas")

	w = ts.do(http.MethodGet, "/api/menu/print", token, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Tu Menú Personalizado")

	w = ts.do(http.MethodPost, "/api/menu/save", token, "", "")
	require.Equal(t, http.StatusCreated, w.Code)
	savedID := decode[map[string]any](t, w)["id"].(string)

	w = ts.do(http.MethodGet, "/api/menus", token, "", "")
	menus := decode[workspace.Resource[map[string]any]](t, w)
	require.Len(t, menus.Items, 1)

	w = ts.do(http.MethodGet, "/api/menus/"+savedID+"/print", token, "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Garbanzos con espinacas")

	w = ts.do(http.MethodDelete, "/api/menus/"+savedID, token, "", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = ts.do(http.MethodGet, "/api/menus/"+savedID+"/print", token, "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGenerationRateLimit(t *testing.T) {
	ts := newTestServer(t, Options{GenerationBurst: 1, GenerationInterval: time.Hour})
	token := ts.token(t)

	w := ts.json(http.MethodPost, "/api/menu/generate", token, `{"startDate": "2025-09-04", "days": 2}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.json(http.MethodPost, "/api/menu/generate", token, `{"startDate": "2025-09-04", "days": 2}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "rate_limited", decode[errorBody](t, w).Kind)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	w = ts.do(http.MethodGet, "/api/menu", token, "", "")
	assert.Equal(t, http.StatusOK, w.Code, "non-generation routes are not limited")
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, Options{})
	ts.do(http.MethodGet, "/api/me", ts.token(t), "", "")

	w := ts.do(http.MethodGet, "/metrics", "", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `comidaacasa_http_requests_total{method="GET",path="/api/me",status="200"} 1`)
}

func TestValidateISODate(t *testing.T) {
	require.NoError(t, registerValidations())
	type body struct {
		Date string `binding:"isodate"`
	}
	for date, ok := range map[string]bool{"2025-09-04": true, "2025-02-30": false, "mañana": false} {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"Date": "`+date+`"}`))
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = req
		var b body
		err := c.ShouldBindJSON(&b)
		assert.Equal(t, ok, err == nil, date)
	}
}
