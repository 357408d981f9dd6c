package model

import (
	"time"
)

// Wine is one review row of the fixed corpus. The table is seeded externally
// (Kaggle dump) and this service never writes to it; search_vector is a
// generated tsvector column maintained by Postgres, see cmd/migrate.
type Wine struct {
	Id                  int64    `gorm:"primaryKey"`
	Country             *string  `gorm:"type:varchar(100);index"`
	Description         string   `gorm:"type:text;not null"`
	Designation         *string  `gorm:"type:varchar(255)"`
	Points              int      `gorm:"not null"`
	Price               *float64 `gorm:"type:numeric(10,2)"`
	Province            *string  `gorm:"type:varchar(100)"`
	Region1             *string  `gorm:"column:region_1;type:varchar(100)"`
	Region2             *string  `gorm:"column:region_2;type:varchar(100)"`
	TasterName          *string  `gorm:"type:varchar(100)"`
	TasterTwitterHandle *string  `gorm:"type:varchar(100)"`
	Title               string   `gorm:"type:varchar(500);not null"`
	Variety             *string  `gorm:"type:varchar(100);index"`
	Winery              *string  `gorm:"type:varchar(255)"`
	Source              string   `gorm:"type:varchar(50);default:kaggle"`
	CreatedAt           time.Time
}

func (Wine) TableName() string {
	return "kaggle_wine_reviews"
}
