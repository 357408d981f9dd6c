package mapper

import (
	"github.com/MarkerAnn/wine-backend/internal/entity"
	"github.com/MarkerAnn/wine-backend/internal/model"
)

type WineMapper struct{}

func NewWineMapper() *WineMapper {
	return &WineMapper{}
}

func (m *WineMapper) ToEntity(w *model.Wine) *entity.Wine {
	if w == nil {
		return nil
	}

	return &entity.Wine{
		Id:                  w.Id,
		Country:             w.Country,
		Description:         w.Description,
		Designation:         w.Designation,
		Points:              w.Points,
		Price:               w.Price,
		Province:            w.Province,
		Region1:             w.Region1,
		Region2:             w.Region2,
		TasterName:          w.TasterName,
		TasterTwitterHandle: w.TasterTwitterHandle,
		Title:               w.Title,
		Variety:             w.Variety,
		Winery:              w.Winery,
		Source:              w.Source,
		CreatedAt:           w.CreatedAt,
	}
}

func (m *WineMapper) ToEntities(wines []*model.Wine) []*entity.Wine {
	entities := make([]*entity.Wine, len(wines))
	for i, w := range wines {
		entities[i] = m.ToEntity(w)
	}
	return entities
}
