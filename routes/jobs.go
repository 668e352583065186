package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"clockwork-server/database"
	"clockwork-server/middleware"
	"clockwork-server/models"
	"clockwork-server/services"
	"clockwork-server/utils"
	ws "clockwork-server/websocket"
)

// RegisterJobRoutes registers the job lifecycle routes
func RegisterJobRoutes(rg *gin.RouterGroup, jobs *services.JobService, hub *ws.Hub) {
	group := rg.Group("/jobs")
	group.Use(middleware.AuthMiddleware())
	{
		group.GET("", func(c *gin.Context) {
			list, err := jobs.ListJobs(c.Query("status"))
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"success": true, "jobs": list})
		})

		group.GET("/nearby", func(c *gin.Context) {
			lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
			lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
			if errLat != nil || errLng != nil || !utils.IsLocationValid(lat, lng) {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid coordinates"})
				return
			}

			radius := utils.GetDefaultSearchRadius()
			if radiusStr := c.Query("radius"); radiusStr != "" {
				if r, err := strconv.ParseFloat(radiusStr, 64); err == nil && utils.ValidateSearchRadius(r) {
					radius = r
				}
			}

			list, err := utils.FindNearbyJobs(database.DB, utils.Location{Latitude: lat, Longitude: lng}, radius)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"success": true, "jobs": list})
		})

		group.GET("/mine", func(c *gin.Context) {
			user, _ := middleware.CurrentUser(c)
			list, err := jobs.MyJobs(&user)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"success": true, "jobs": list})
		})

		group.GET("/applications/mine", func(c *gin.Context) {
			user, _ := middleware.CurrentUser(c)
			list, err := jobs.MyApplications(&user)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"success": true, "applications": list})
		})

		group.GET("/penalties/mine", func(c *gin.Context) {
			user, _ := middleware.CurrentUser(c)
			list, err := jobs.MyPenalties(&user)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"success": true, "penalties": list})
		})

		group.GET("/disputes/mine", func(c *gin.Context) {
			user, _ := middleware.CurrentUser(c)
			list, err := jobs.MyDisputes(&user)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"success": true, "disputes": list})
		})

		group.GET("/:id", func(c *gin.Context) {
			jobID, ok := parseIDParam(c, "id")
			if !ok {
				return
			}
			job, err := jobs.GetJob(jobID)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"success": true, "job": job})
		})

		group.POST("", func(c *gin.Context) {
			user, _ := middleware.CurrentUser(c)

			var request struct {
				Title           string  `json:"title" binding:"required"`
				Category        string  `json:"category" binding:"required"`
				Description     string  `json:"description"`
				PaymentAmount   int     `json:"payment_amount" binding:"required"`
				Images          string  `json:"images"`
				LocationLat     float64 `json:"location_lat"`
				LocationLng     float64 `json:"location_lng"`
				LocationAddress string  `json:"location_address"`
			}
			if err := c.ShouldBindJSON(&request); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request data"})
				return
			}

			job, err := jobs.Post(&user, services.JobCreateInput{
				Title:           request.Title,
				Category:        request.Category,
				Description:     request.Description,
				PaymentAmount:   request.PaymentAmount,
				Images:          request.Images,
				LocationLat:     request.LocationLat,
				LocationLng:     request.LocationLng,
				LocationAddress: request.LocationAddress,
			})
			if err != nil {
				respondError(c, err)
				return
			}

			if hub != nil {
				hub.BroadcastJobPosted(job)
			}

			c.JSON(http.StatusCreated, gin.H{"success": true, "job": job})
		})

		group.POST("/:id/apply", func(c *gin.Context) {
			user, _ := middleware.CurrentUser(c)
			jobID, ok := parseIDParam(c, "id")
			if !ok {
				return
			}

			application, err := jobs.Apply(&user, jobID)
			if err != nil {
				respondError(c, err)
				return
			}

			c.JSON(http.StatusCreated, gin.H{"success": true, "application": application})
		})

		group.GET("/:id/applications", func(c *gin.Context) {
			user, _ := middleware.CurrentUser(c)
			jobID, ok := parseIDParam(c, "id")
			if !ok {
				return
			}

			applications, err := jobs.ApplicationsForJob(&user, jobID)
			if err != nil {
				respondError(c, err)
				return
			}

			c.JSON(http.StatusOK, gin.H{"success": true, "applications": applications})
		})

		group.POST("/:id/select-worker", func(c *gin.Context) {
			user, _ := middleware.CurrentUser(c)
			jobID, ok := parseIDParam(c, "id")
			if !ok {
				return
			}

			var request struct {
				WorkerID uint `json:"worker_id" binding:"required"`
			}
			if err := c.ShouldBindJSON(&request); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request data"})
				return
			}

			job, err := jobs.SelectWorker(&user, jobID, request.WorkerID)
			if err != nil {
				respondError(c, err)
				return
			}

			c.JSON(http.StatusOK, gin.H{"success": true, "job": job})
		})

		group.POST("/:id/start", func(c *gin.Context) {
			user, _ := middleware.CurrentUser(c)
			jobID, ok := parseIDParam(c, "id")
			if !ok {
				return
			}

			job, err := jobs.StartWork(&user, jobID)
			if err != nil {
				respondError(c, err)
				return
			}

			c.JSON(http.StatusOK, gin.H{"success": true, "job": job})
		})

		group.POST("/:id/complete", func(c *gin.Context) {
			user, _ := middleware.CurrentUser(c)
			jobID, ok := parseIDParam(c, "id")
			if !ok {
				return
			}

			var request struct {
				Images      string `json:"images"`
				Description string `json:"description"`
			}
			if err := c.ShouldBindJSON(&request); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request data"})
				return
			}

			completion, err := jobs.SubmitCompletion(&user, jobID, services.CompletionProof{
				Images:      request.Images,
				Description: request.Description,
			})
			if err != nil {
				respondError(c, err)
				return
			}

			c.JSON(http.StatusOK, gin.H{"success": true, "completion": completion})
		})

		group.POST("/:id/verify", func(c *gin.Context) {
			user, _ := middleware.CurrentUser(c)
			jobID, ok := parseIDParam(c, "id")
			if !ok {
				return
			}

			var request struct {
				Verified bool   `json:"verified"`
				Rating   *int   `json:"rating"`
				Feedback string `json:"feedback"`
			}
			if err := c.ShouldBindJSON(&request); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request data"})
				return
			}

			job, err := jobs.Verify(&user, jobID, request.Verified, request.Rating, request.Feedback)
			if err != nil {
				respondError(c, err)
				return
			}

			c.JSON(http.StatusOK, gin.H{"success": true, "job": job})
		})

		group.POST("/:id/cancel", func(c *gin.Context) {
			user, _ := middleware.CurrentUser(c)
			jobID, ok := parseIDParam(c, "id")
			if !ok {
				return
			}

			job, err := jobs.Cancel(&user, jobID)
			if err != nil {
				respondError(c, err)
				return
			}

			c.JSON(http.StatusOK, gin.H{"success": true, "job": job})
		})

		group.POST("/:id/penalties", func(c *gin.Context) {
			user, _ := middleware.CurrentUser(c)
			jobID, ok := parseIDParam(c, "id")
			if !ok {
				return
			}

			var request struct {
				Type        string `json:"type" binding:"required"`
				Description string `json:"description"`
			}
			if err := c.ShouldBindJSON(&request); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request data"})
				return
			}

			penalty, err := jobs.ReportPenalty(&user, jobID, models.PenaltyType(request.Type), request.Description)
			if err != nil {
				respondError(c, err)
				return
			}

			c.JSON(http.StatusCreated, gin.H{"success": true, "penalty": penalty})
		})

		group.POST("/:id/disputes", func(c *gin.Context) {
			user, _ := middleware.CurrentUser(c)
			jobID, ok := parseIDParam(c, "id")
			if !ok {
				return
			}

			var request struct {
				Type        string `json:"type" binding:"required"`
				Description string `json:"description" binding:"required"`
			}
			if err := c.ShouldBindJSON(&request); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request data"})
				return
			}

			dispute, err := jobs.RaiseDispute(&user, jobID, models.DisputeType(request.Type), request.Description)
			if err != nil {
				respondError(c, err)
				return
			}

			c.JSON(http.StatusCreated, gin.H{"success": true, "dispute": dispute})
		})
	}
}
