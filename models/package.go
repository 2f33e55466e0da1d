package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Package is a purchasable travel offering.
type Package struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title         string             `json:"title" bson:"title"`
	Slug          string             `json:"slug" bson:"slug"`
	Location      string             `json:"location" bson:"location"`
	Description   string             `json:"description" bson:"description"`
	Duration      string             `json:"duration" bson:"duration"`
	Price         float64            `json:"price" bson:"price"`
	OriginalPrice *float64           `json:"originalPrice,omitempty" bson:"originalPrice,omitempty"`
	Category      string             `json:"category" bson:"category"`
	Order         int                `json:"order" bson:"order"`
	// nil means visible; older documents were stored without the flag
	IsVisible  *bool     `json:"isVisible,omitempty" bson:"isVisible,omitempty"`
	IsFeatured bool      `json:"isFeatured" bson:"isFeatured"`
	Images     []string  `json:"images" bson:"images"`
	Highlights []string  `json:"highlights" bson:"highlights"`
	Included   []string  `json:"included" bson:"included"`
	Excluded   []string  `json:"excluded" bson:"excluded"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Visible reports the effective visibility flag.
func (p *Package) Visible() bool {
	return p.IsVisible == nil || *p.IsVisible
}

// Normalize replaces nil slices so the JSON output always carries arrays.
func (p *Package) Normalize() {
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Highlights == nil {
		p.Highlights = []string{}
	}
	if p.Included == nil {
		p.Included = []string{}
	}
	if p.Excluded == nil {
		p.Excluded = []string{}
	}
	if p.IsVisible == nil {
		v := true
		p.IsVisible = &v
	}
}
