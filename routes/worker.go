package routes

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"clockwork-server/database"
	"clockwork-server/middleware"
	"clockwork-server/models"
	"clockwork-server/services"
)

// RegisterWorkerRoutes registers worker profile routes
func RegisterWorkerRoutes(rg *gin.RouterGroup, uploader services.Uploader) {
	group := rg.Group("/workers")
	group.Use(middleware.AuthMiddleware())
	{
		group.GET("/profile", func(c *gin.Context) {
			userID := c.GetUint("user_id")

			var profile models.WorkerProfile
			if err := database.DB.Preload("Worker").Where("worker_id = ?", userID).First(&profile).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Worker profile not found"})
					return
				}
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch worker profile"})
				return
			}

			c.JSON(http.StatusOK, gin.H{"success": true, "profile": profile})
		})

		group.PUT("/profile", func(c *gin.Context) {
			userID := c.GetUint("user_id")

			var request models.WorkerProfileRequest
			if err := c.ShouldBindJSON(&request); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request data"})
				return
			}

			var profile models.WorkerProfile
			if err := database.DB.Where("worker_id = ?", userID).First(&profile).Error; err != nil {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Worker profile not found"})
				return
			}

			if request.Skills != "" {
				profile.Skills = request.Skills
			}
			if request.AvailabilityStatus == models.AvailabilityAvailable || request.AvailabilityStatus == models.AvailabilityBusy {
				profile.AvailabilityStatus = request.AvailabilityStatus
			}

			if err := database.DB.Save(&profile).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update worker profile"})
				return
			}

			c.JSON(http.StatusOK, gin.H{"success": true, "profile": profile})
		})

		group.POST("/profile/photo", func(c *gin.Context) {
			userID := c.GetUint("user_id")

			if uploader == nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "Media uploads not configured"})
				return
			}

			header, err := c.FormFile("photo")
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "No file provided"})
				return
			}
			if !services.ValidateImageFile(header) {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid photo"})
				return
			}

			var profile models.WorkerProfile
			if err := database.DB.Where("worker_id = ?", userID).First(&profile).Error; err != nil {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Worker profile not found"})
				return
			}

			file, err := header.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Could not read file"})
				return
			}
			defer file.Close()

			folder := "workers/profile_photos/" + strconv.Itoa(int(userID))
			url, err := uploader.UploadImage(context.Background(), file, header.Filename, folder)
			if err != nil {
				log.Printf("❌ Profile photo upload failed: %v", err)
				c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Upload failed"})
				return
			}

			profile.ProfilePhoto = &url
			if err := database.DB.Save(&profile).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to save profile"})
				return
			}

			c.JSON(http.StatusOK, gin.H{"success": true, "profile_photo_url": url})
		})
	}
}
