package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"clockwork-server/middleware"
	"clockwork-server/services"
)

// RegisterTrustRoutes registers the trust and reliability routes
func RegisterTrustRoutes(rg *gin.RouterGroup, trust *services.TrustService) {
	group := rg.Group("/trust")
	group.Use(middleware.AuthMiddleware())
	{
		group.GET("/status", func(c *gin.Context) {
			userID := c.GetUint("user_id")

			status, err := trust.GetTrustStatus(userID)
			if err != nil {
				respondError(c, err)
				return
			}

			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"trust":   status,
			})
		})

		group.GET("/status/:id", func(c *gin.Context) {
			workerID, ok := parseIDParam(c, "id")
			if !ok {
				return
			}

			status, err := trust.GetTrustStatus(workerID)
			if err != nil {
				respondError(c, err)
				return
			}

			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"trust":   status,
			})
		})

		group.GET("/permission/:action", func(c *gin.Context) {
			userID := c.GetUint("user_id")

			result, err := trust.CheckPermission(userID, c.Param("action"))
			if err != nil {
				respondError(c, err)
				return
			}

			c.JSON(http.StatusOK, gin.H{
				"success":    true,
				"permission": result,
			})
		})

		group.GET("/attention", func(c *gin.Context) {
			threshold := 0
			if thresholdStr := c.Query("threshold"); thresholdStr != "" {
				if v, err := strconv.Atoi(thresholdStr); err == nil && v > 0 && v <= 100 {
					threshold = v
				}
			}

			records, err := trust.WorkersNeedingAttention(threshold)
			if err != nil {
				respondError(c, err)
				return
			}

			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"workers": records,
			})
		})

		group.GET("/leaderboard", func(c *gin.Context) {
			limit := 10
			if limitStr := c.Query("limit"); limitStr != "" {
				if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
					limit = l
				}
			}

			records, err := trust.Leaderboard(limit)
			if err != nil {
				respondError(c, err)
				return
			}

			c.JSON(http.StatusOK, gin.H{
				"success":     true,
				"leaderboard": records,
			})
		})
	}
}
