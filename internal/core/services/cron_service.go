package services

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// CronService triggers the nightly maturity refresh. The maturity engine
// itself is timer-free; this is just an outer caller, same as the API
// endpoint.
type CronService struct {
	cron     *cron.Cron
	maturity *MaturityService
}

// NewCronService creates a new cron service
func NewCronService(maturity *MaturityService) *CronService {
	return &CronService{
		cron:     cron.New(),
		maturity: maturity,
	}
}

// Start schedules the daily maturity generation (00:30)
func (s *CronService) Start() {
	_, err := s.cron.AddFunc("30 0 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		records, err := s.maturity.GenerateRecords(ctx)
		if err != nil {
			log.Printf("❌ Maturity generation failed: %v", err)
			return
		}
		log.Printf("✅ Maturity generation touched %d records", len(records))
	})
	if err != nil {
		log.Printf("❌ Failed to schedule maturity generation: %v", err)
		return
	}
	s.cron.Start()
	log.Println("🚀 CronService started")
}

// Stop stops the scheduler, waiting for a running job to finish
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 CronService stopped")
}
