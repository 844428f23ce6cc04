package store

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/spektr-org/socialavg/aggregator"
	"github.com/spektr-org/socialavg/internal/logger"
)

// PlatformPostTypeAvg is one persisted row of socialMediaAvg.csv.
type PlatformPostTypeAvg struct {
	ID        uint   `gorm:"primaryKey"`
	RunID     string `gorm:"index;not null"`
	Platform  string `gorm:"not null"`
	PostType  string `gorm:"not null"`
	AvgLikes  float64
	CreatedAt time.Time
}

// DateAvg is one persisted row of socialMediaTime.csv.
type DateAvg struct {
	ID        uint   `gorm:"primaryKey"`
	RunID     string `gorm:"index;not null"`
	Date      string `gorm:"not null"`
	AvgLikes  float64
	CreatedAt time.Time
}

// SQLiteStore keeps every run's summaries in a SQLite file.
type SQLiteStore struct {
	db  *gorm.DB
	log *logger.Logger
}

// OpenSQLite opens (creating if needed) the database at path and migrates
// the summary tables.
func OpenSQLite(path string, logg *logger.Logger) (*SQLiteStore, error) {
	if logg == nil {
		logg = logger.Nop()
	}
	gormLog := gormLogger.New(
		log.New(os.Stderr, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite %s: %w", path, err)
	}
	if err := db.AutoMigrate(&PlatformPostTypeAvg{}, &DateAvg{}); err != nil {
		_ = closeDB(db)
		return nil, fmt.Errorf("failed to migrate summary tables: %w", err)
	}
	return &SQLiteStore{db: db, log: logg.With("service", "SQLiteStore")}, nil
}

// SaveReport writes both summaries of a run in one transaction.
func (s *SQLiteStore) SaveReport(ctx context.Context, rep *aggregator.Report) error {
	pp := make([]PlatformPostTypeAvg, 0, len(rep.ByPlatformPostType))
	for _, r := range rep.ByPlatformPostType {
		pp = append(pp, PlatformPostTypeAvg{RunID: rep.RunID, Platform: r.Platform, PostType: r.PostType, AvgLikes: r.AvgLikes})
	}
	dates := make([]DateAvg, 0, len(rep.ByDate))
	for _, r := range rep.ByDate {
		dates = append(dates, DateAvg{RunID: rep.RunID, Date: r.Date, AvgLikes: r.AvgLikes})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(pp) > 0 {
			if err := tx.Create(&pp).Error; err != nil {
				return err
			}
		}
		if len(dates) > 0 {
			if err := tx.Create(&dates).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save run %s: %w", rep.RunID, err)
	}
	s.log.Info("saved run", "run_id", rep.RunID, "platform_post_type_rows", len(pp), "date_rows", len(dates))
	return nil
}

// PlatformPostTypeAvgs returns a run's rows in insertion order.
func (s *SQLiteStore) PlatformPostTypeAvgs(ctx context.Context, runID string) ([]PlatformPostTypeAvg, error) {
	var out []PlatformPostTypeAvg
	err := s.db.WithContext(ctx).Where("run_id = ?", runID).Order("id").Find(&out).Error
	return out, err
}

// DateAvgs returns a run's rows in insertion order.
func (s *SQLiteStore) DateAvgs(ctx context.Context, runID string) ([]DateAvg, error) {
	var out []DateAvg
	err := s.db.WithContext(ctx).Where("run_id = ?", runID).Order("id").Find(&out).Error
	return out, err
}

// Close releases the underlying connection pool.
func (s *SQLiteStore) Close() error {
	return closeDB(s.db)
}

var closeDB = func(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
