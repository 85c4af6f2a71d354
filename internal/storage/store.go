// Package storage persists per-trial outcomes to SQLite so a run's
// verdicts survive the process and can be aggregated afterwards.
package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	applog "formprobe/internal/logger"
	"formprobe/pkg/model"
)

// Input class of a trial.
const (
	ClassValid   = "valid"
	ClassInvalid = "invalid"
)

// Trial is one fill-submit-verify cycle's outcome. Record holds the
// submitted values as JSON; generated values are heterogeneous and
// only read back by humans.
type Trial struct {
	ID        string    `gorm:"primaryKey;size:36"`
	RunID     string    `gorm:"index;size:36"`
	Field     string    `gorm:"index;size:64"`
	Class     string    `gorm:"size:16"`
	Accepted  bool
	Record    string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Tally is one aggregation row of a run's trials.
type Tally struct {
	Field    string
	Class    string
	Total    int64
	Accepted int64
}

// Store wraps the trial database.
type Store struct {
	db  *gorm.DB
	log applog.Logger
}

// Open connects to the SQLite database at dsn, prefixing every table
// with prefix, and migrates the schema.
func Open(dsn, prefix string, log applog.Logger) (*Store, error) {
	if log == nil {
		log = applog.NewNop()
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: NewGormLogger(log),
		NamingStrategy: schema.NamingStrategy{
			TablePrefix: prefix,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dsn, err)
	}
	if err := db.AutoMigrate(&Trial{}); err != nil {
		return nil, fmt.Errorf("migrate trials: %w", err)
	}
	log.Info("trial store opened", "dsn", dsn)
	return &Store{db: db, log: log}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Record persists one trial outcome.
func (s *Store) Record(runID model.RunID, field model.FieldName, class string, accepted bool, tc model.TestCase) error {
	rec, err := encodeCase(tc)
	if err != nil {
		return err
	}
	t := Trial{
		ID:       uuid.NewString(),
		RunID:    string(runID),
		Field:    string(field),
		Class:    class,
		Accepted: accepted,
		Record:   rec,
	}
	if err := s.db.Create(&t).Error; err != nil {
		return fmt.Errorf("record trial: %w", err)
	}
	return nil
}

// Summary aggregates a run's trials per field and input class.
func (s *Store) Summary(runID model.RunID) ([]Tally, error) {
	var out []Tally
	err := s.db.Model(&Trial{}).
		Select("field, class, count(*) as total, sum(case when accepted then 1 else 0 end) as accepted").
		Where("run_id = ?", string(runID)).
		Group("field, class").
		Order("field, class").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("summarize run %s: %w", runID, err)
	}
	return out, nil
}

// Trials returns a run's raw trial rows, newest first.
func (s *Store) Trials(runID model.RunID) ([]Trial, error) {
	var out []Trial
	err := s.db.
		Where("run_id = ?", string(runID)).
		Order("created_at desc").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("load trials of %s: %w", runID, err)
	}
	return out, nil
}

// encodeCase renders a test case as JSON with stringified values;
// time.Time and the composite values marshal to readable forms.
func encodeCase(tc model.TestCase) (string, error) {
	flat := make(map[string]any, len(tc))
	for k, v := range tc {
		switch x := v.(type) {
		case time.Time:
			flat[string(k)] = x.Format(time.RFC3339)
		default:
			flat[string(k)] = x
		}
	}
	b, err := json.Marshal(flat)
	if err != nil {
		return "", fmt.Errorf("encode test case: %w", err)
	}
	return string(b), nil
}
