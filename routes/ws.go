package routes

import (
	"github.com/gin-gonic/gin"

	"clockwork-server/middleware"
	ws "clockwork-server/websocket"
)

// RegisterWebSocketRoutes registers the live notification endpoint. The token
// is read from the query string because browsers cannot set headers on
// WebSocket upgrades.
func RegisterWebSocketRoutes(rg *gin.RouterGroup, hub *ws.Hub) {
	rg.GET("/ws", middleware.WebSocketAuthMiddleware(), func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			return
		}
		ws.ServeWebSocket(hub, c.Writer, c.Request, user.ID, string(user.Role))
	})
}
