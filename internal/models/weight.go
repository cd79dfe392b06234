package models

// WeightSample represents one body-weight measurement. Multiple samples per
// day are permitted; the store does not deduplicate on date.
type WeightSample struct {
	ID     int64   `db:"id" json:"id"`
	Date   string  `db:"date" json:"date"` // civil YYYY-MM-DD
	Weight float64 `db:"weight" json:"weight"`
}

// TableName returns the table name for WeightSample.
func (WeightSample) TableName() string {
	return "weights"
}
