package specification

import "gorm.io/gorm"

// ByWineID filters by the integer corpus id.
type ByWineID struct {
	ID int64
}

func (s ByWineID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

// ByWineIDs filters by a list of corpus ids.
type ByWineIDs struct {
	IDs []int64
}

func (s ByWineIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id IN ?", s.IDs)
}

// AfterWineID is the keyset cursor for batch iteration over the corpus.
type AfterWineID struct {
	ID int64
}

func (s AfterWineID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id > ?", s.ID)
}

// ByCountry matches the country facet exactly.
type ByCountry struct {
	Country string
}

func (s ByCountry) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("country = ?", s.Country)
}

// ByVariety matches the grape variety facet exactly.
type ByVariety struct {
	Variety string
}

func (s ByVariety) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("variety = ?", s.Variety)
}

type MinPrice struct {
	Price float64
}

func (s MinPrice) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("price >= ?", s.Price)
}

type MaxPrice struct {
	Price float64
}

func (s MaxPrice) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("price <= ?", s.Price)
}

type MinPoints struct {
	Points int
}

func (s MinPoints) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("points >= ?", s.Points)
}

type MaxPoints struct {
	Points int
}

func (s MaxPoints) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("points <= ?", s.Points)
}
