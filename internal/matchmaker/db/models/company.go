// Package models contains the persistence models of the catalog,
// configured to work using GORM as the ORM.
package models

import (
	"time"
)

// Company is one catalog company stored as a row. Seq preserves insertion
// order within a shard; label lists are stored as JSON.
type Company struct {
	Seq           uint     `gorm:"primaryKey;autoIncrement"`
	CompanyID     string   `gorm:"size:128;uniqueIndex"`
	Shard         string   `gorm:"size:64;index"`
	Name          string   `gorm:"size:255"`
	Logo          string   `gorm:"size:1024"`
	Description   string   `gorm:"size:3000"`
	Industry      string   `gorm:"size:64"`
	Size          string   `gorm:"size:16"`
	Location      string   `gorm:"size:255"`
	Culture       []string `gorm:"serializer:json"`
	Benefits      []string `gorm:"serializer:json"`
	OpenPositions []string `gorm:"serializer:json"`
	Rating        float64  `gorm:"check:rating >= 0"`
	Website       string   `gorm:"size:1024"`
	Tags          []string `gorm:"serializer:json"`
	CreatedAt     time.Time
}
