package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hamlet-bot/hamlet/internal/models"
)

type BaselineRepository struct {
	db *gorm.DB
}

func NewBaselineRepository(db *gorm.DB) *BaselineRepository {
	return &BaselineRepository{db: db}
}

// Get returns the current baseline for a village, or nil when the
// village has never been rendered.
func (r *BaselineRepository) Get(ctx context.Context, villageID string) (*models.VillageBaseline, error) {
	var b models.VillageBaseline
	if err := r.db.WithContext(ctx).First(&b, "village_id = ?", villageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get baseline: %w", err)
	}
	return &b, nil
}

// Upsert replaces the stored baseline, bumping the generation counter.
// Last write wins; concurrent renders of the same village are rare and
// the newer image is always the one to keep.
func (r *BaselineRepository) Upsert(ctx context.Context, villageID, imageURL string) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "village_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"image_url":  imageURL,
			"generation": gorm.Expr("generation + 1"),
		}),
	}).Create(&models.VillageBaseline{
		VillageID: villageID,
		ImageURL:  imageURL,
	}).Error
	if err != nil {
		return fmt.Errorf("upsert baseline: %w", err)
	}
	return nil
}
