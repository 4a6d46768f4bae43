package models

// BikeType enumerates the kinds of bikes that can be reported
type BikeType string

// Bike types accepted on report forms
const (
	BikeTypeRoad     BikeType = "road"
	BikeTypeMountain BikeType = "mountain"
	BikeTypeHybrid   BikeType = "hybrid"
	BikeTypeElectric BikeType = "electric"
	BikeTypeOther    BikeType = "other"
)

// ReportStatus enumerates the lifecycle states of a bike report
type ReportStatus string

// Report statuses. Only active reports participate in match scans.
const (
	ReportStatusActive   ReportStatus = "active"
	ReportStatusResolved ReportStatus = "resolved"
	ReportStatusRemoved  ReportStatus = "removed"
)

// BikeCondition enumerates the condition of a found bike
type BikeCondition string

// Found bike conditions
const (
	ConditionExcellent BikeCondition = "excellent"
	ConditionGood      BikeCondition = "good"
	ConditionFair      BikeCondition = "fair"
	ConditionPoor      BikeCondition = "poor"
)

// Location holds where a bike was stolen from or found
type Location struct {
	Lat     float64 `bson:"lat" json:"lat"`
	Lng     float64 `bson:"lng" json:"lng"`
	Address string  `bson:"address" json:"address"`
	City    string  `bson:"city" json:"city"`
}

// ValidBikeType reports whether t is one of the accepted bike types
func ValidBikeType(t BikeType) bool {
	switch t {
	case BikeTypeRoad, BikeTypeMountain, BikeTypeHybrid, BikeTypeElectric, BikeTypeOther:
		return true
	}
	return false
}

// ValidCondition reports whether c is one of the accepted found-bike conditions
func ValidCondition(c BikeCondition) bool {
	switch c {
	case ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor:
		return true
	}
	return false
}
