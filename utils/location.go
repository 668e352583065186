package utils

import (
	"math"

	"gorm.io/gorm"

	"clockwork-server/models"
)

// Location represents a geographical coordinate
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// HaversineDistance calculates the distance between two points on Earth using the Haversine formula
// Returns distance in kilometers
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371 // Earth's radius in kilometers

	lat1Rad := lat1 * math.Pi / 180
	lon1Rad := lon1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	lon2Rad := lon2 * math.Pi / 180

	deltaLat := lat2Rad - lat1Rad
	deltaLon := lon2Rad - lon1Rad

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return R * c
}

// FindNearbyJobs returns open jobs within radius kilometers of a location.
// Distance filtering happens in memory; with real volume this would move to
// PostGIS.
func FindNearbyJobs(db *gorm.DB, location Location, radius float64) ([]models.Job, error) {
	var jobs []models.Job
	err := db.Where("status IN ? AND location_lat <> 0 AND location_lng <> 0",
		[]models.JobStatus{models.JobStatusPosted, models.JobStatusApplied}).
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}

	var nearby []models.Job
	for _, job := range jobs {
		distance := HaversineDistance(
			location.Latitude, location.Longitude,
			job.LocationLat, job.LocationLng,
		)
		if distance <= radius {
			nearby = append(nearby, job)
		}
	}
	return nearby, nil
}

// IsLocationValid checks if the provided coordinates are valid
func IsLocationValid(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// GetDefaultSearchRadius returns the default job search radius in kilometers
func GetDefaultSearchRadius() float64 {
	return 10.0
}

// GetMaxSearchRadius returns the maximum allowed search radius in kilometers
func GetMaxSearchRadius() float64 {
	return 50.0
}

// ValidateSearchRadius checks if the search radius is within acceptable limits
func ValidateSearchRadius(radius float64) bool {
	return radius > 0 && radius <= GetMaxSearchRadius()
}
