// Package web serves the application over HTTP with gin.
package web

import (
	"embed"
	"html/template"
	"net/http"
	"strings"
	"time"

	"comida-a-casa/internal/apperr"
	"comida-a-casa/internal/session"
	"comida-a-casa/internal/workspace"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	sessionCookie = "comida_session"
	stateCookie   = "comida_oauth_state"
)

// Options configures a Server.
type Options struct {
	// Missing lists unset credential variables; when non-empty every page
	// renders the configuration-error screen.
	Missing      []string
	SecureCookie bool
	SessionTTL   time.Duration

	Sessions   *session.Manager
	Workspaces *workspace.Manager
	Logger     *zap.Logger

	Registry *prometheus.Registry
	// Generation requests allowed per user: a burst, then one per interval.
	GenerationInterval time.Duration
	GenerationBurst    int
}

// Server holds the HTTP handlers.
type Server struct {
	opts    Options
	logger  *zap.Logger
	limiter *UserRateLimiter
	metrics *HTTPMetrics
}

// NewServer creates a Server. Zero rate limits default to a burst of 5 and
// one request every 10 seconds.
func NewServer(opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	if opts.GenerationInterval == 0 {
		opts.GenerationInterval = 10 * time.Second
	}
	if opts.GenerationBurst == 0 {
		opts.GenerationBurst = 5
	}
	if err := registerValidations(); err != nil {
		return nil, err
	}
	return &Server{
		opts:    opts,
		logger:  opts.Logger,
		limiter: NewUserRateLimiter(opts.GenerationInterval, opts.GenerationBurst),
		metrics: NewHTTPMetrics(opts.Registry),
	}, nil
}

// Router builds the gin engine with every route.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))
	r.Use(RequestID(), Logger(s.logger, s.metrics), Recovery(s.logger))

	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.opts.Registry, promhttp.HandlerOpts{})))
	r.GET("/", s.index)

	auth := r.Group("/auth", s.requireConfigured())
	{
		auth.GET("/login", s.login)
		auth.GET("/callback", s.callback)
		auth.POST("/logout", s.logout)
	}

	api := r.Group("/api", s.requireConfigured(), s.requireSession())
	{
		api.GET("/me", s.me)

		api.GET("/profiles", s.listProfiles)
		api.POST("/profiles", s.createProfile)
		api.PUT("/profiles/:id", s.updateProfile)
		api.DELETE("/profiles/:id", s.deleteProfile)

		api.GET("/recipes", s.listRecipes)
		api.POST("/recipes", s.createRecipe)
		api.PUT("/recipes/:id", s.updateRecipe)
		api.DELETE("/recipes/:id", s.deleteRecipe)
		api.POST("/recipes/import", s.importRecipes)

		api.GET("/menu", s.activeMenu)
		api.POST("/menu/swap/preview", s.previewSwap)
		api.POST("/menu/swap", s.confirmSwap)
		api.POST("/menu/save", s.saveMenu)
		api.GET("/menu/print", s.printMenu)

		api.GET("/shopping-list", s.shoppingList)
		api.POST("/shopping-list/items/:index/toggle", s.toggleShoppingItem)
		api.GET("/shopping-list/print", s.printShoppingList)

		api.GET("/menus", s.listSavedMenus)
		api.GET("/menus/:id/print", s.printSavedMenu)
		api.DELETE("/menus/:id", s.deleteSavedMenu)

		api.DELETE("/errors/:area", s.dismissError)

		gen := api.Group("", s.limiter.Middleware())
		{
			gen.POST("/menu/generate", s.generateMenu)
			gen.GET("/recipe-details", s.recipeDetails)
			gen.POST("/shopping-list", s.generateShoppingList)
			gen.POST("/recipes/clip", s.clipRecipe)
		}
	}
	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "configured": len(s.opts.Missing) == 0})
}

// respondError writes err as {"error": <localized>, "kind": <kind>}.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	kind := apperr.KindOf(err)
	if kind == "" {
		kind = "internal"
	}
	c.AbortWithStatusJSON(apperr.StatusOf(err), gin.H{
		"error": apperr.UserMessage(err),
		"kind":  kind,
	})
}

const configErrorMessage = "La aplicación no está configurada correctamente."

func (s *Server) requireConfigured() gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(s.opts.Missing) > 0 {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error":   configErrorMessage,
				"kind":    "config_error",
				"missing": s.opts.Missing,
			})
			return
		}
		c.Next()
	}
}

func sessionToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	token, _ := c.Cookie(sessionCookie)
	return token
}

// requireSession verifies the session and attaches the user's workspace.
func (s *Server) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		token := sessionToken(c)
		if token == "" {
			respondError(c, apperr.New(apperr.AuthFailure, "web.session", "Inicia sesión para continuar."))
			return
		}
		user, err := s.opts.Sessions.Verify(ctx, token)
		if err != nil {
			respondError(c, err)
			return
		}
		ws, err := s.opts.Workspaces.Get(ctx, user)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Set(ctxUserID, user.UID)
		c.Set(ctxToken, token)
		c.Set(ctxWorkspace, ws)
		c.Next()
	}
}

func currentWorkspace(c *gin.Context) *workspace.Workspace {
	return c.MustGet(ctxWorkspace).(*workspace.Workspace)
}
