package middleware

import (
	"todo-tracker/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
)

const (
	ctxSessionID = "session_id"
	ctxOwnerID   = "owner_id"
)

// TokenParser resolves a session-cookie token to an owner id. Satisfied
// by services.AuthService.
type TokenParser interface {
	ParseToken(token string) (uuid.UUID, error)
}

// EnsureSession guarantees every browser carries a session id cookie,
// issuing a fresh UUID on first contact. The id keys the session
// document in Redis.
func EnsureSession(cookieName string, maxAgeSeconds int) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(cookieName)
		if err != nil || !utils.IsValidUUID(sid) {
			sid = uuid.Must(uuid.NewV4()).String()
			c.SetCookie(cookieName, sid, maxAgeSeconds, "/", "", false, true)
		}
		c.Set(ctxSessionID, sid)
		c.Next()
	}
}

// Authenticate resolves the optional authenticated owner from the auth
// cookie. An absent, expired or malformed token simply leaves the
// request anonymous; it never fails the request.
func Authenticate(parser TokenParser, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err == nil && token != "" {
			if ownerID, err := parser.ParseToken(token); err == nil {
				c.Set(ctxOwnerID, ownerID)
			}
		}
		c.Next()
	}
}

// SessionID returns the session id placed by EnsureSession.
func SessionID(c *gin.Context) string {
	sid, _ := c.Get(ctxSessionID)
	s, _ := sid.(string)
	return s
}

// CurrentOwner returns the authenticated owner id, if any.
func CurrentOwner(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(ctxOwnerID)
	if !exists {
		return uuid.Nil, false
	}
	ownerID, ok := v.(uuid.UUID)
	return ownerID, ok
}
