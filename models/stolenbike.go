package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// StolenBike holds the structure for the stolenBikes collection in mongo
type StolenBike struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	OwnerID           string             `bson:"ownerId" json:"ownerId"`
	Photos            []string           `bson:"photos" json:"photos"`
	Color             string             `bson:"color" json:"color"`
	Type              BikeType           `bson:"type" json:"type"`
	Features          string             `bson:"features" json:"features"`
	Location          Location           `bson:"location" json:"location"`
	Status            ReportStatus       `bson:"status" json:"status"`
	ImageFeatures     []float64          `bson:"imageFeatures,omitempty" json:"imageFeatures,omitempty"`
	Brand             string             `bson:"brand" json:"brand"`
	Model             string             `bson:"model" json:"model"`
	Size              string             `bson:"size" json:"size"`
	DateStolen        primitive.DateTime `bson:"dateStolen" json:"dateStolen"`
	ContactPreference string             `bson:"contactPreference" json:"contactPreference"`
	CreatedAt         primitive.DateTime `bson:"createdAt" json:"createdAt"`
	UpdatedAt         primitive.DateTime `bson:"updatedAt" json:"updatedAt"`
}
