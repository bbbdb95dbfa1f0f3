// Package runstore persists run summaries and per-page outcomes to a local
// sqlite database so past migrations stay inspectable.
package runstore

import (
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/wp2presta/internal/entities"
	"github.com/mrlokans/wp2presta/internal/migrate"
)

type Store struct {
	db *gorm.DB
}

func New(dbPath string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open run history database: %w", err)
	}

	if err := db.AutoMigrate(&entities.MigrationRun{}, &entities.PageOutcome{}); err != nil {
		return nil, fmt.Errorf("migrate run history schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveReport converts a finished run report into its persisted form.
func (s *Store) SaveReport(report *migrate.Report) (*entities.MigrationRun, error) {
	status := entities.RunStatusCompleted
	if report.Cancelled {
		status = entities.RunStatusCancelled
	}

	run := entities.MigrationRun{
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
		DryRun:     report.DryRun,
		Status:     status,
		Created:    report.Created(),
		Updated:    report.Updated(),
		Skipped:    report.Skipped(),
		Failed:     report.Failed(),
		Images:     report.Images(),
	}

	for _, o := range report.Outcomes() {
		detail := o.Err
		if len(o.Warnings) > 0 {
			if detail != "" {
				detail += "; "
			}
			detail += strings.Join(o.Warnings, "; ")
		}
		run.Outcomes = append(run.Outcomes, entities.PageOutcome{
			PageID:   o.PageID,
			Title:    o.Title,
			Slug:     o.Slug,
			Decision: string(o.Decision.Kind),
			Status:   string(o.Status),
			Stage:    string(o.Stage),
			Detail:   detail,
		})
	}

	if err := s.db.Create(&run).Error; err != nil {
		return nil, fmt.Errorf("save run: %w", err)
	}
	return &run, nil
}

// RecentRuns returns up to limit runs, newest first, without their outcomes.
func (s *Store) RecentRuns(limit int) ([]entities.MigrationRun, error) {
	var runs []entities.MigrationRun
	err := s.db.Order("id DESC").Limit(limit).Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// RunOutcomes returns the per-page entries of one run.
func (s *Store) RunOutcomes(runID uint) ([]entities.PageOutcome, error) {
	var outcomes []entities.PageOutcome
	err := s.db.Where("run_id = ?", runID).Order("id ASC").Find(&outcomes).Error
	if err != nil {
		return nil, fmt.Errorf("load outcomes for run %d: %w", runID, err)
	}
	return outcomes, nil
}
