package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"clockwork-server/middleware"
	"clockwork-server/services"
)

// RegisterNotificationRoutes registers the notification routes
func RegisterNotificationRoutes(rg *gin.RouterGroup, notifications *services.NotificationService) {
	group := rg.Group("/notifications")
	group.Use(middleware.AuthMiddleware())
	{
		group.GET("", func(c *gin.Context) {
			userID := c.GetUint("user_id")

			limit := 0
			if limitStr := c.Query("limit"); limitStr != "" {
				if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 200 {
					limit = l
				}
			}

			list, err := notifications.List(userID, limit)
			if err != nil {
				respondError(c, err)
				return
			}

			c.JSON(http.StatusOK, gin.H{
				"success":       true,
				"notifications": list,
			})
		})

		group.GET("/unread-count", func(c *gin.Context) {
			userID := c.GetUint("user_id")

			count, err := notifications.UnreadCount(userID)
			if err != nil {
				respondError(c, err)
				return
			}

			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"count":   count,
			})
		})

		group.PUT("/:id/read", func(c *gin.Context) {
			userID := c.GetUint("user_id")
			notificationID, ok := parseIDParam(c, "id")
			if !ok {
				return
			}

			if err := notifications.MarkRead(userID, notificationID); err != nil {
				respondError(c, err)
				return
			}

			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"message": "Notification marked as read",
			})
		})

		group.PUT("/read-all", func(c *gin.Context) {
			userID := c.GetUint("user_id")

			if err := notifications.MarkAllRead(userID); err != nil {
				respondError(c, err)
				return
			}

			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"message": "All notifications marked as read",
			})
		})
	}
}
