package entity

type VarietyShare struct {
	Variety    string
	Count      int64
	Percentage float64
}

type CountryStats struct {
	Country      string
	WineCount    int64
	AvgPoints    float64
	MinPrice     *float64
	AvgPrice     *float64
	MaxPrice     *float64
	TopVarieties []VarietyShare
}
