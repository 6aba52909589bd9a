package middleware

// identity.go holds the context keys JWTAuth fills and the accessors
// handlers and other middleware read them through.

import "github.com/labstack/echo/v4"

const (
	ctxBuyerID = "user_id"
	ctxRole    = "role"
)

// Roles carried in the token's "role" claim.
const (
	RoleAdmin  = "ADMIN"
	RoleMember = "MEMBER"
)

// BuyerID returns the authenticated subject, or "" for anonymous requests.
// JWTAuth stores the sub claim as a string, so a numeric sub is rejected
// before it gets here.
func BuyerID(c echo.Context) string {
	id, _ := c.Get(ctxBuyerID).(string)
	return id
}

// Role returns the role claim, or "" when absent.
func Role(c echo.Context) string {
	r, _ := c.Get(ctxRole).(string)
	return r
}

// IsAdmin reports whether the caller holds the ADMIN role.
func IsAdmin(c echo.Context) bool { return Role(c) == RoleAdmin }
