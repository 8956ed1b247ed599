package access

import (
	"net/http"

	"estate_portal_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// RequirePermission aborts with 403 unless the caller may perform action on
// resource. Unauthenticated callers get 401.
func RequirePermission(pol *Policy, r Resource, a Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := httpkit.MustGetIdentity(c)
		if id == nil {
			return
		}
		if !pol.Can(FromIdentity(id), r, a) {
			c.AbortWithStatusJSON(http.StatusForbidden, httpkit.ErrorResponse{Error: "forbidden"})
			return
		}
		c.Next()
	}
}

// PrincipalFrom returns the principal for the authenticated caller, or false
// after writing a 401 response.
func PrincipalFrom(c *gin.Context) (Principal, bool) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return Principal{}, false
	}
	return FromIdentity(id), true
}
