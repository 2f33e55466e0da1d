package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BlogPost struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title       string             `json:"title" bson:"title"`
	Slug        string             `json:"slug" bson:"slug"`
	Excerpt     string             `json:"excerpt" bson:"excerpt"`
	Content     string             `json:"content,omitempty" bson:"content"`
	CoverImage  string             `json:"coverImage,omitempty" bson:"coverImage,omitempty"`
	Author      string             `json:"author" bson:"author"`
	Category    string             `json:"category" bson:"category"`
	Tags        []string           `json:"tags" bson:"tags"`
	PublishedAt *time.Time         `json:"publishedAt,omitempty" bson:"publishedAt,omitempty"`
	Order       int                `json:"order" bson:"order"`
	IsVisible   *bool              `json:"isVisible,omitempty" bson:"isVisible,omitempty"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

func (b *BlogPost) Visible() bool {
	return b.IsVisible == nil || *b.IsVisible
}

// Published reports whether the post has a publish date that is not in the
// future relative to now.
func (b *BlogPost) Published(now time.Time) bool {
	return b.PublishedAt != nil && !b.PublishedAt.After(now)
}

func (b *BlogPost) Normalize() {
	if b.Tags == nil {
		b.Tags = []string{}
	}
	if b.IsVisible == nil {
		v := true
		b.IsVisible = &v
	}
}
