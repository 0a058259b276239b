package middlewares

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/services"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

const (
	SessionCookieName = "session_token"
	GuestCookieName   = "guest_session"

	ContextUserID    = "user_id"
	ContextRole      = "role"
	ContextSessionID = "session_id"
)

// Authenticator resolves the session behind a request. The token comes from
// the Authorization header or the session cookie.
type Authenticator struct {
	Tokens   *utils.TokenManager
	Sessions services.SessionStore
}

func NewAuthenticator(tokens *utils.TokenManager, sessions services.SessionStore) *Authenticator {
	return &Authenticator{Tokens: tokens, Sessions: sessions}
}

// RequireAuth rejects requests without a live session.
func (a *Authenticator) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := a.identify(c)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		setIdentity(c, session)
		c.Next()
	}
}

// OptionalAuth attaches the session when one is presented and valid, and
// otherwise lets the request through anonymously.
func (a *Authenticator) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenFromRequest(c) == "" {
			c.Next()
			return
		}
		session, err := a.identify(c)
		if err == nil {
			setIdentity(c, session)
		}
		c.Next()
	}
}

func (a *Authenticator) identify(c *gin.Context) (*services.Session, error) {
	token := tokenFromRequest(c)
	if token == "" {
		return nil, utils.ErrAuthRequired
	}

	claims, err := a.Tokens.ParseToken(token)
	if err != nil {
		return nil, utils.WrapError(utils.KindAuthRequired, "Invalid or expired session", err)
	}

	session, err := a.Sessions.Get(c.Request.Context(), claims.ID)
	if errors.Is(err, services.ErrSessionNotFound) {
		return nil, utils.WrapError(utils.KindAuthRequired, "Session has ended", err)
	}
	if err != nil {
		return nil, utils.InternalError(err)
	}
	if session.UserID != claims.UserID {
		utils.ErrorLogger.WithFields(logrus.Fields{
			"session_id": claims.ID,
			"token_user": claims.UserID,
		}).Warn("token and session user mismatch")
		return nil, utils.NewError(utils.KindAuthRequired, "Invalid or expired session")
	}
	return session, nil
}

func setIdentity(c *gin.Context, session *services.Session) {
	c.Set(ContextUserID, session.UserID)
	c.Set(ContextRole, session.Role)
	c.Set(ContextSessionID, session.ID)
}

func tokenFromRequest(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
		return cookie
	}
	return ""
}

// QueryTokenFallback lifts a token query parameter into the Authorization
// header. Browsers cannot set headers on WebSocket upgrades, so only the
// upgrade route mounts it.
func QueryTokenFallback() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			if token := c.Query("token"); token != "" {
				c.Request.Header.Set("Authorization", "Bearer "+token)
			}
		}
		c.Next()
	}
}

// CurrentUserID returns the authenticated user id, if any.
func CurrentUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

func CurrentRole(c *gin.Context) models.Role {
	if v, ok := c.Get(ContextRole); ok {
		if role, ok := v.(models.Role); ok {
			return role
		}
	}
	return ""
}

func CurrentSessionID(c *gin.Context) string {
	return c.GetString(ContextSessionID)
}
