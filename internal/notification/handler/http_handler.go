// Package handler serves the notification center endpoints of the
// authenticated user.
package handler

import (
	"net/http"

	"estate_portal_backend/internal/notification/inapp"
	"estate_portal_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	defaultPageSize = 20

	msgInvalidRequest = "invalid request"
	msgInvalidID      = "invalid notification id"
)

// ListRequest pages through the caller's notifications, newest first.
type ListRequest struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=50"`
}

// ListResponse carries one page plus the unread badge count, so the client
// refreshes both with a single call.
type ListResponse struct {
	Items  []inapp.Notification `json:"items"`
	Total  int                  `json:"total"`
	Unread int                  `json:"unread"`
	Page   int                  `json:"page"`
	Limit  int                  `json:"limit"`
}

type HTTPHandler struct {
	svc *inapp.Service
}

func NewHTTPHandler(svc *inapp.Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

func (h *HTTPHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/unread", h.CountUnread)
	rg.PATCH("/read-all", h.MarkAllRead)
	rg.PATCH("/:id/read", h.MarkRead)
	rg.DELETE("/:id", h.Delete)
}

// List handles GET /notifications.
func (h *HTTPHandler) List(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.Limit == 0 {
		req.Limit = defaultPageSize
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	ctx := c.Request.Context()

	items, total, err := h.svc.List(ctx, identity.UserID(), req.Page, req.Limit)
	if httpkit.HandleError(c, err) {
		return
	}
	unread, err := h.svc.CountUnread(ctx, identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, ListResponse{Items: items, Total: total, Unread: unread, Page: req.Page, Limit: req.Limit})
}

// CountUnread handles GET /notifications/unread.
func (h *HTTPHandler) CountUnread(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	count, err := h.svc.CountUnread(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"count": count})
}

// MarkRead handles PATCH /notifications/:id/read.
func (h *HTTPHandler) MarkRead(c *gin.Context) {
	userID, id, ok := ownedNotification(c)
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.MarkRead(c.Request.Context(), userID, id)) {
		return
	}
	httpkit.OK(c, gin.H{"id": id, "read": true})
}

// MarkAllRead handles PATCH /notifications/read-all.
func (h *HTTPHandler) MarkAllRead(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	n, err := h.svc.MarkAllRead(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"updated": n})
}

// Delete handles DELETE /notifications/:id.
func (h *HTTPHandler) Delete(c *gin.Context) {
	userID, id, ok := ownedNotification(c)
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.Delete(c.Request.Context(), userID, id)) {
		return
	}
	c.Status(http.StatusNoContent)
}

// ownedNotification resolves the caller and the :id parameter. The store
// scopes every write by user, so another user's id behaves as not found.
func ownedNotification(c *gin.Context) (string, uuid.UUID, bool) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return "", uuid.Nil, false
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return "", uuid.Nil, false
	}
	return identity.UserID(), id, true
}
