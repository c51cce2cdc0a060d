package web

import (
	"net/http"

	"comida-a-casa/internal/apperr"
	"comida-a-casa/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	stateMismatchMessage = "La sesión de inicio ha caducado. Por favor, inténtalo de nuevo."
	stateMaxAge          = 10 * 60
)

func (s *Server) index(c *gin.Context) {
	if len(s.opts.Missing) > 0 {
		c.HTML(http.StatusServiceUnavailable, "config_error.html", gin.H{"Missing": s.opts.Missing})
		return
	}

	ctx := c.Request.Context()
	if token := sessionToken(c); token != "" {
		if user, err := s.opts.Sessions.Verify(ctx, token); err == nil {
			ws, err := s.opts.Workspaces.Get(ctx, user)
			if err == nil {
				c.HTML(http.StatusOK, "app.html", ws.View())
				return
			}
		}
		s.clearCookie(c, sessionCookie)
	}
	c.HTML(http.StatusOK, "login.html", gin.H{})
}

func (s *Server) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", s.opts.SecureCookie, true)
}

func (s *Server) clearCookie(c *gin.Context, name string) {
	s.setCookie(c, name, "", -1)
}

func (s *Server) login(c *gin.Context) {
	state := session.NewState()
	s.setCookie(c, stateCookie, state, stateMaxAge)
	c.Redirect(http.StatusFound, s.opts.Sessions.AuthCodeURL(state))
}

func (s *Server) loginFailed(c *gin.Context, err error) {
	s.logger.Warn("login failed", zap.Error(err))
	c.HTML(http.StatusUnauthorized, "login.html", gin.H{"Error": apperr.UserMessage(err)})
}

func (s *Server) callback(c *gin.Context) {
	const op = "web.callback"
	want, _ := c.Cookie(stateCookie)
	s.clearCookie(c, stateCookie)

	if reason := c.Query("error"); reason != "" {
		s.loginFailed(c, apperr.New(apperr.AuthFailure, op, session.LoginFailedMessage))
		return
	}
	if want == "" || c.Query("state") != want {
		s.loginFailed(c, apperr.New(apperr.AuthFailure, op, stateMismatchMessage))
		return
	}

	token, _, err := s.opts.Sessions.Login(c.Request.Context(), c.Query("code"))
	if err != nil {
		s.loginFailed(c, err)
		return
	}
	s.setCookie(c, sessionCookie, token, int(s.opts.SessionTTL.Seconds()))
	c.Redirect(http.StatusFound, "/")
}

func (s *Server) logout(c *gin.Context) {
	token := sessionToken(c)
	s.clearCookie(c, sessionCookie)
	if token == "" {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	if err := s.opts.Sessions.Logout(c.Request.Context(), token); err != nil {
		if apperr.UserMessage(err) != session.ExpiredMessage {
			s.loginFailed(c, err)
			return
		}
	}
	c.Redirect(http.StatusSeeOther, "/")
}
