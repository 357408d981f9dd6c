package specification

import "gorm.io/gorm"

// ByEmbeddingWineID filters embedding rows by their owning wine.
type ByEmbeddingWineID struct {
	WineID int64
}

func (s ByEmbeddingWineID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("wine_id = ?", s.WineID)
}

// ByModel filters embedding rows by the model that produced them.
type ByModel struct {
	Model string
}

func (s ByModel) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("model = ?", s.Model)
}

// ByCorpus filters ingest runs by corpus identity.
type ByCorpus struct {
	Corpus string
}

func (s ByCorpus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("corpus = ?", s.Corpus)
}

// ByStatus filters ingest runs by lifecycle status.
type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}
