package analytics

import (
	"strconv"
	"strings"
	"time"

	"estate_portal_backend/internal/access"
	"estate_portal_backend/internal/leads/filter"
	"estate_portal_backend/platform/apperr"
	"estate_portal_backend/platform/httpkit"
	"estate_portal_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// ParseRequest reads the caller, the filter parameters and the tz/refresh
// options from an HTTP request.
func ParseRequest(c *gin.Context, svc *Service, val *validator.Validator) (Request, error) {
	id := httpkit.GetIdentity(c)
	if !id.IsAuthenticated() {
		return Request{}, apperr.Unauthorized("unauthorized")
	}

	var loc *time.Location
	if tz := strings.TrimSpace(c.Query("tz")); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return Request{}, apperr.Validation("invalid time zone").WithDetails([]string{tz})
		}
		loc = l
	}

	refresh := false
	if raw := c.Query("refresh"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return Request{}, apperr.BadRequest("refresh must be a boolean")
		}
		refresh = v
	}

	criteria, err := filter.QueryFromValues(c.Request.URL.Query()).Build(val, svc.Now(loc))
	if err != nil {
		return Request{}, err
	}

	return Request{
		Principal: access.FromIdentity(id),
		Criteria:  criteria,
		Refresh:   refresh,
		Location:  loc,
	}, nil
}
