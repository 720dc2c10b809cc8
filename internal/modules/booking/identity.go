package booking

import (
	"studiospace/internal/domain"
	"studiospace/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Identity is the caller as resolved by the identity provider.
type Identity struct {
	UserID int64
	Role   domain.UserRole
}

func (i Identity) Authenticated() bool { return i.UserID > 0 }

func (i Identity) IsAdmin() bool { return i.Role == domain.RoleAdmin }

// IdentityFromContext reads the identity JWTAuth stored on the request. A request
// that never passed JWTAuth yields the zero Identity.
func IdentityFromContext(c *gin.Context) Identity {
	return Identity{
		UserID: c.GetInt64(middleware.ContextUserID),
		Role:   domain.UserRole(c.GetString(middleware.ContextRole)),
	}
}
