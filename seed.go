package main

import (
	"log"

	_ "github.com/lib/pq"

	"clockwork-server/config"
	"clockwork-server/database"
	"clockwork-server/models"
	"clockwork-server/services"
)

// seedDemoData loads a small demo dataset for local development. Idempotent:
// it does nothing when users already exist.
func seedDemoData() error {
	db := database.GetDB()

	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("🌱 Demo data already present, skipping seed")
		return nil
	}

	credits := services.NewCreditService(db)
	initial := config.AppConfig.Credits.InitialCredits

	users := []models.User{
		{Name: "Amina", PhoneNumber: "+22240000001", Role: models.RoleUser, CreditScore: 100},
		{Name: "Yusuf", PhoneNumber: "+22240000002", Role: models.RoleWorker, CreditScore: 100},
		{Name: "Fatou", PhoneNumber: "+22240000003", Role: models.RoleWorker, CreditScore: 100},
	}

	for i := range users {
		if err := db.Create(&users[i]).Error; err != nil {
			return err
		}
		if _, err := credits.Credit(users[i].ID, models.TransactionBonus, initial,
			"Welcome bonus", nil); err != nil {
			return err
		}
		if users[i].Role == models.RoleWorker {
			profile := models.WorkerProfile{WorkerID: users[i].ID, Skills: "cleaning,plumbing", Rating: 5}
			if err := db.Create(&profile).Error; err != nil {
				return err
			}
		}
	}

	job := models.Job{
		Title:           "Deep clean apartment",
		Category:        "cleaning",
		Description:     "Two bedroom apartment, needs a full clean",
		PaymentAmount:   50,
		PlatformFee:     5,
		WorkerPayment:   45,
		Status:          models.JobStatusPosted,
		PostedBy:        users[0].ID,
		LocationLat:     18.0735,
		LocationLng:     -15.9582,
		LocationAddress: "Nouakchott",
	}
	if err := db.Create(&job).Error; err != nil {
		return err
	}

	log.Printf("🌱 Seeded %d demo users and 1 demo job", len(users))
	return nil
}
