package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// FoundBike holds the structure for the foundBikes collection in mongo
type FoundBike struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	OwnerID       string             `bson:"ownerId" json:"ownerId"`
	Photos        []string           `bson:"photos" json:"photos"`
	Color         string             `bson:"color" json:"color"`
	Type          BikeType           `bson:"type" json:"type"`
	Features      string             `bson:"features" json:"features"`
	Location      Location           `bson:"location" json:"location"`
	Status        ReportStatus       `bson:"status" json:"status"`
	ImageFeatures []float64          `bson:"imageFeatures,omitempty" json:"imageFeatures,omitempty"`
	Condition     BikeCondition      `bson:"condition" json:"condition"`
	DateFound     primitive.DateTime `bson:"dateFound" json:"dateFound"`
	StillThere    bool               `bson:"stillThere" json:"stillThere"`
	CreatedAt     primitive.DateTime `bson:"createdAt" json:"createdAt"`
	UpdatedAt     primitive.DateTime `bson:"updatedAt" json:"updatedAt"`
}
