package dto

// ListWinesRequest carries browse filters as they arrived in the query
// string; the service validates and types them. Zero Page/Size take the
// defaults.
type ListWinesRequest struct {
	Country   string
	Variety   string
	MinPrice  string
	MaxPrice  string
	MinPoints string
	MaxPoints string
	Page      int
	Size      int
}

type WineResponse struct {
	Id          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Country     *string  `json:"country"`
	Province    *string  `json:"province"`
	Region1     *string  `json:"region_1"`
	Region2     *string  `json:"region_2"`
	Designation *string  `json:"designation"`
	Variety     *string  `json:"variety"`
	Winery      *string  `json:"winery"`
	Points      int      `json:"points"`
	Price       *float64 `json:"price"`
	TasterName  *string  `json:"taster_name"`
}

type ListWinesResponse struct {
	Items []WineResponse `json:"items"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
	Pages int            `json:"pages"`
}
