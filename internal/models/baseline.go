package models

import "time"

// VillageBaseline is the last persisted village image, used as the visual
// continuity reference for composite generations.
type VillageBaseline struct {
	VillageID  string `gorm:"primaryKey;type:varchar(64)"`
	ImageURL   string `gorm:"type:text;not null"`
	Generation int    `gorm:"default:0;not null"`
	UpdatedAt  time.Time
}
