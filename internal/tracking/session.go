package tracking

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	DefaultCookieName = "suite_sid"
	sessionMaxAge     = 60 * 60 * 24 * 30
)

// SessionIDProvider identifies an anonymous visitor across requests.
type SessionIDProvider interface {
	GetOrCreate(c *gin.Context) string
}

// CookieSessions keeps a random uuid in an HttpOnly cookie.
type CookieSessions struct {
	Name   string
	Secure bool
}

func NewCookieSessions(secure bool) *CookieSessions {
	return &CookieSessions{Name: DefaultCookieName, Secure: secure}
}

func (s *CookieSessions) GetOrCreate(c *gin.Context) string {
	if raw, err := c.Cookie(s.Name); err == nil {
		if id, err := uuid.Parse(raw); err == nil {
			return id.String()
		}
	}

	id := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.Name, id, sessionMaxAge, "/", "", s.Secure, true)
	return id
}

var _ SessionIDProvider = (*CookieSessions)(nil)
