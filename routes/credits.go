package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"clockwork-server/middleware"
	"clockwork-server/services"
)

// RegisterCreditRoutes registers the credit ledger routes
func RegisterCreditRoutes(rg *gin.RouterGroup, credits *services.CreditService) {
	group := rg.Group("/credits")
	group.Use(middleware.AuthMiddleware())
	{
		group.GET("/balance", func(c *gin.Context) {
			userID := c.GetUint("user_id")

			balance, err := credits.Balance(userID)
			if err != nil {
				respondError(c, err)
				return
			}

			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"balance": balance,
			})
		})

		group.GET("/history", func(c *gin.Context) {
			userID := c.GetUint("user_id")

			limit := 0
			if limitStr := c.Query("limit"); limitStr != "" {
				if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 200 {
					limit = l
				}
			}

			history, err := credits.History(userID, limit)
			if err != nil {
				respondError(c, err)
				return
			}

			c.JSON(http.StatusOK, gin.H{
				"success":      true,
				"transactions": history,
			})
		})

		group.POST("/topup", func(c *gin.Context) {
			userID := c.GetUint("user_id")

			var request struct {
				Amount int `json:"amount" binding:"required"`
			}
			if err := c.ShouldBindJSON(&request); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request data"})
				return
			}

			balance, err := credits.TopUp(userID, request.Amount)
			if err != nil {
				respondError(c, err)
				return
			}

			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"balance": balance,
			})
		})
	}
}
