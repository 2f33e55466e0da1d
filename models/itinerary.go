package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ItineraryNew        = "new"
	ItineraryInProgress = "in_progress"
	ItineraryCompleted  = "completed"
	ItineraryCancelled  = "cancelled"
)

type CustomerInfo struct {
	Name    string `json:"name" bson:"name"`
	Email   string `json:"email" bson:"email"`
	Phone   string `json:"phone" bson:"phone"`
	Country string `json:"country,omitempty" bson:"country,omitempty"`
}

type TravelDetails struct {
	Destination   string `json:"destination" bson:"destination"`
	StartDate     string `json:"startDate" bson:"startDate"`
	EndDate       string `json:"endDate" bson:"endDate"`
	Travelers     int    `json:"travelers" bson:"travelers"`
	Budget        string `json:"budget" bson:"budget"`
	Accommodation string `json:"accommodation,omitempty" bson:"accommodation,omitempty"`
}

// CustomItinerary is a request for a tailor-made trip.
type CustomItinerary struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	CustomerInfo  CustomerInfo       `json:"customerInfo" bson:"customerInfo"`
	TravelDetails TravelDetails      `json:"travelDetails" bson:"travelDetails"`
	Interests     []string           `json:"interests" bson:"interests"`
	Notes         string             `json:"notes,omitempty" bson:"notes,omitempty"`
	Status        string             `json:"status" bson:"status"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}
