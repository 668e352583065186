package jobs

import (
	"log"
	"time"

	"clockwork-server/services"
)

// TrustMaintenanceJob runs the recurring trust engine work: periodic bonuses
// for consistently high scores, strike reduction for recovered workers and
// auth session cleanup.
type TrustMaintenanceJob struct {
	trust    *services.TrustService
	auth     *services.AuthService
	notifier services.Notifier
	interval time.Duration
	stopChan chan bool
}

// NewTrustMaintenanceJob creates a new trust maintenance job
func NewTrustMaintenanceJob(trust *services.TrustService, auth *services.AuthService, notifier services.Notifier) *TrustMaintenanceJob {
	return &TrustMaintenanceJob{
		trust:    trust,
		auth:     auth,
		notifier: notifier,
		interval: time.Hour,
		stopChan: make(chan bool),
	}
}

// Start begins the maintenance job
func (j *TrustMaintenanceJob) Start() {
	go j.run()
	log.Println("🚀 Trust maintenance job started")
}

// Stop stops the maintenance job
func (j *TrustMaintenanceJob) Stop() {
	j.stopChan <- true
	log.Println("🛑 Trust maintenance job stopped")
}

// run executes the maintenance loop
func (j *TrustMaintenanceJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.RunOnce()
		case <-j.stopChan:
			return
		}
	}
}

// RunOnce performs a single maintenance sweep. Exposed so it can be invoked
// directly at startup.
func (j *TrustMaintenanceJob) RunOnce() {
	j.applyPeriodicBonuses()
	j.reduceStrikes()

	if j.auth != nil {
		if err := j.auth.CleanupExpiredSessions(); err != nil {
			log.Printf("❌ Session cleanup failed: %v", err)
		}
	}
}

// applyPeriodicBonuses grants the monthly bonus to workers holding a high
// score. Gate checks live in the trust service; a nil record means the worker
// was skipped.
func (j *TrustMaintenanceJob) applyPeriodicBonuses() {
	candidates, err := j.trust.EligibleForPeriodicBonus()
	if err != nil {
		log.Printf("❌ Error finding bonus candidates: %v", err)
		return
	}

	granted := 0
	for _, record := range candidates {
		updated, err := j.trust.ApplyPeriodicBonus(record.WorkerID)
		if err != nil {
			log.Printf("❌ Periodic bonus failed for worker %d: %v", record.WorkerID, err)
			continue
		}
		if updated == nil {
			continue
		}
		granted++
		if j.notifier != nil {
			j.notifier.Notify(record.WorkerID, "Trust Bonus",
				"Your consistently high score earned you a trust bonus!", "trust_bonus")
		}
	}

	if granted > 0 {
		log.Printf("⭐ Granted %d periodic trust bonuses", granted)
	}
}

// reduceStrikes removes one strike from workers who recovered their score.
func (j *TrustMaintenanceJob) reduceStrikes() {
	recovering, err := j.trust.RecoveringWorkers()
	if err != nil {
		log.Printf("❌ Error finding recovering workers: %v", err)
		return
	}

	for _, record := range recovering {
		if _, err := j.trust.ReduceStrike(record.WorkerID); err != nil {
			log.Printf("❌ Strike reduction failed for worker %d: %v", record.WorkerID, err)
		}
	}

	if len(recovering) > 0 {
		log.Printf("✅ Reduced strikes for %d recovering workers", len(recovering))
	}
}
