package dto

type VarietyShareResponse struct {
	Variety    string  `json:"variety"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

type CountryStatsResponse struct {
	Country      string                 `json:"country"`
	WineCount    int64                  `json:"wine_count"`
	AvgPoints    float64                `json:"avg_points"`
	MinPrice     *float64               `json:"min_price"`
	AvgPrice     *float64               `json:"avg_price"`
	MaxPrice     *float64               `json:"max_price"`
	TopVarieties []VarietyShareResponse `json:"top_varieties"`
}

type ListCountryStatsResponse struct {
	Items []CountryStatsResponse `json:"items"`
	Count int                    `json:"count"`
}
