package repository

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gopherai-pdfqa/internal/model"
)

type QueryRecordRepository struct {
	db *gorm.DB
}

func NewQueryRecordRepository(db *gorm.DB) *QueryRecordRepository {
	return &QueryRecordRepository{db: db}
}

func (r *QueryRecordRepository) Migrate() error {
	if err := r.db.AutoMigrate(&model.QueryRecord{}); err != nil {
		return fmt.Errorf("migrate query records failed: %w", err)
	}
	return nil
}

// Create inserts record. A redelivered record with a known request id is ignored.
func (r *QueryRecordRepository) Create(record *model.QueryRecord) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "request_id"}},
		DoNothing: true,
	}).Create(record).Error
	if err != nil {
		return fmt.Errorf("create query record failed: %w", err)
	}
	return nil
}

func (r *QueryRecordRepository) ListRecent(limit int) ([]model.QueryRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var records []model.QueryRecord
	if err := r.db.Order("created_at DESC").Limit(limit).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list query records failed: %w", err)
	}
	return records, nil
}
