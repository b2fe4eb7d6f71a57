package dto

// RangeQuery is the optional from/to pair accepted by the behaviour relay.
type RangeQuery struct {
	From string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `form:"to" validate:"omitempty,datetime=2006-01-02"`
}

// ExportQuery selects the export format alongside the view range.
type ExportQuery struct {
	ViewQuery
	Format string `form:"format" validate:"omitempty,oneof=csv pdf"`
}
