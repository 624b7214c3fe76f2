package api

import (
	"io"
	"net/http"

	"techorbit/internal/models"

	"github.com/gin-gonic/gin"
)

// getNotifications lists a user's inbox; users see only their own.
func (h *Handler) getNotifications(c *gin.Context) {
	id, valid := pathID(c, "userId")
	if !valid {
		return
	}

	actorID, role := actor(c)
	if role != models.RoleAdmin && actorID != id {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed"})
		return
	}

	notifications, err := h.notifications.List(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Notifications fetched", notifications)
}

// markNotificationRead flags one notification as read; owner or admin only.
func (h *Handler) markNotificationRead(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	actorID, role := actor(c)
	if err := h.notifications.MarkRead(c.Request.Context(), id, actorID, role); err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Notification read", nil)
}

// streamNotifications pushes a user's notifications over server-sent
// events. The redis subscription lives exactly as long as the request:
// when the client goes away the stream and the subscription are torn down.
func (h *Handler) streamNotifications(c *gin.Context) {
	id, valid := pathID(c, "userId")
	if !valid {
		return
	}

	actorID, role := actor(c)
	if role != models.RoleAdmin && actorID != id {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed"})
		return
	}

	ctx := c.Request.Context()
	sub := h.redis.SubscribeNotifications(ctx, id)
	defer sub.Close()
	ch := sub.Channel()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case msg, open := <-ch:
			if !open {
				return false
			}
			c.SSEvent("notification", msg.Payload)
			return true
		case <-ctx.Done():
			return false
		}
	})
}
