package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"clockwork-server/middleware"
	"clockwork-server/models"
	"clockwork-server/services"
)

// RegisterAuthRoutes registers authentication routes
func RegisterAuthRoutes(rg *gin.RouterGroup, auth *services.AuthService) {
	group := rg.Group("/auth")
	group.Use(middleware.AuthRateLimitMiddleware())
	{
		group.POST("/send-otp", func(c *gin.Context) {
			var request struct {
				PhoneNumber string `json:"phone_number" binding:"required"`
			}
			if err := c.ShouldBindJSON(&request); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request data"})
				return
			}

			if err := auth.SendOTP(request.PhoneNumber); err != nil {
				respondError(c, err)
				return
			}

			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"message": "OTP sent",
			})
		})

		group.POST("/verify-otp", func(c *gin.Context) {
			var request struct {
				PhoneNumber string `json:"phone_number" binding:"required"`
				Code        string `json:"code" binding:"required"`
			}
			if err := c.ShouldBindJSON(&request); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request data"})
				return
			}

			result, err := auth.VerifyOTP(request.PhoneNumber, request.Code)
			if err != nil {
				respondError(c, err)
				return
			}

			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"token":   result.Token,
				"user":    result.User,
			})
		})
	}

	protected := rg.Group("/auth")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/me", func(c *gin.Context) {
			user, _ := middleware.CurrentUser(c)
			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"user":    user,
			})
		})

		protected.PUT("/profile", func(c *gin.Context) {
			userID := c.GetUint("user_id")

			var request struct {
				Name        *string `json:"name"`
				PhoneNumber *string `json:"phone_number"`
				Address     *string `json:"address"`
			}
			if err := c.ShouldBindJSON(&request); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request data"})
				return
			}

			user, err := auth.UpdateProfile(userID, request.Name, request.PhoneNumber, request.Address)
			if err != nil {
				respondError(c, err)
				return
			}

			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"user":    user,
			})
		})

		protected.POST("/role", func(c *gin.Context) {
			userID := c.GetUint("user_id")

			var request struct {
				Role string `json:"role" binding:"required"`
			}
			if err := c.ShouldBindJSON(&request); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request data"})
				return
			}

			user, err := auth.SetRole(userID, models.UserRole(request.Role))
			if err != nil {
				respondError(c, err)
				return
			}

			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"user":    user,
			})
		})
	}
}
