package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

// Booking is an inquiry to book a listed package.
type Booking struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	PackageID    string             `json:"packageId" bson:"packageId"`
	PackageTitle string             `json:"packageTitle" bson:"packageTitle"`
	Name         string             `json:"name" bson:"name"`
	Email        string             `json:"email" bson:"email"`
	Phone        string             `json:"phone" bson:"phone"`
	TravelDate   string             `json:"travelDate" bson:"travelDate"`
	Travelers    int                `json:"travelers" bson:"travelers"`
	Message      string             `json:"message,omitempty" bson:"message,omitempty"`
	Status       string             `json:"status" bson:"status"`
	UserID       string             `json:"userId,omitempty" bson:"userId,omitempty"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}
