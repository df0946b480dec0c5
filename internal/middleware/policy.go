package middleware

import (
	"net/http" // HTTP status codes

	"kyc_arena/internal/domain" // Roles

	"github.com/gin-gonic/gin" // Gin web framework
)

// Capability names an action a route performs
type Capability string

// Capabilities checked by the routes
const (
	CapAuthenticated   Capability = "authenticated"    // Any signed-in account
	CapSubmit          Capability = "submit"           // Create submissions
	CapReview          Capability = "review"           // Set verdicts, browse and export all submissions
	CapManageUsers     Capability = "manage_users"     // Approve, ban, reset, delete accounts
	CapManageExchanges Capability = "manage_exchanges" // Create, toggle, reprice exchanges
	CapManagePortal    Capability = "manage_portal"    // Open or close the portal
)

// Policy maps each capability to the roles allowed to use it
var Policy = map[Capability][]string{
	CapAuthenticated:   {domain.RoleUser, domain.RoleAdmin},
	CapSubmit:          {domain.RoleUser, domain.RoleAdmin},
	CapReview:          {domain.RoleAdmin},
	CapManageUsers:     {domain.RoleAdmin},
	CapManageExchanges: {domain.RoleAdmin},
	CapManagePortal:    {domain.RoleAdmin},
}

// Allowed reports whether a role holds a capability
func Allowed(role string, capability Capability) bool {
	for _, r := range Policy[capability] {
		if r == role {
			return true
		}
	}
	return false
}

// Require checks the caller's role against the policy table. It must run
// after SessionAuthMiddleware.
func Require(capability Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		if !Allowed(user.Role, capability) {
			msg := "Access denied"
			if len(Policy[capability]) == 1 && Policy[capability][0] == domain.RoleAdmin {
				msg = "Admin access required"
			}
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": msg})
			return
		}
		c.Next()
	}
}
