package entity

import (
	"time"
)

type Wine struct {
	Id                  int64
	Country             *string
	Description         string
	Designation         *string
	Points              int
	Price               *float64
	Province            *string
	Region1             *string
	Region2             *string
	TasterName          *string
	TasterTwitterHandle *string
	Title               string
	Variety             *string
	Winery              *string
	Source              string
	CreatedAt           time.Time
}
