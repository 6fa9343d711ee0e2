package services

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"
)

// OverdueMonitor runs a scheduled sweep over the ledger and logs every loan
// whose due date has passed. Detection only; it sends no reminders.
type OverdueMonitor struct {
	history  *HistoryService
	schedule string
	cron     *cron.Cron
}

// NewOverdueMonitor creates a new overdue monitor. The schedule is a standard
// five-field cron expression.
func NewOverdueMonitor(history *HistoryService, schedule string) *OverdueMonitor {
	return &OverdueMonitor{
		history:  history,
		schedule: schedule,
		cron:     cron.New(),
	}
}

// Start registers the sweep and launches the scheduler. One sweep runs
// immediately so restarts do not wait a full cycle for overdue visibility.
func (m *OverdueMonitor) Start() error {
	if _, err := m.cron.AddFunc(m.schedule, m.Sweep); err != nil {
		return err
	}
	m.cron.Start()
	log.Printf("🚀 OverdueMonitor started [schedule: %s]", m.schedule)

	go m.Sweep()
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish
func (m *OverdueMonitor) Stop() {
	<-m.cron.Stop().Done()
	log.Println("🛑 OverdueMonitor stopped")
}

// Sweep detects all overdue loans and logs them
func (m *OverdueMonitor) Sweep() {
	overdue, err := m.history.AllOverdue(context.Background())
	if err != nil {
		log.Printf("❌ Overdue sweep failed: %v", err)
		return
	}

	if len(overdue) == 0 {
		log.Println("✅ Overdue sweep: no overdue loans")
		return
	}

	log.Printf("⚠️ Overdue sweep: %d overdue loan(s)", len(overdue))
	for _, entry := range overdue {
		log.Printf("   copy %d held by borrower %d, due %s",
			entry.CopyID, entry.BorrowerID, entry.DueDate.Format("2006-01-02"))
	}
}
