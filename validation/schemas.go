package validation

import "time"

// ContactInput is the contact form payload.
type ContactInput struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"omitempty,min=7,max=30"`
	Subject string `json:"subject" validate:"required,min=3,max=200"`
	Message string `json:"message" validate:"required,min=10,max=5000"`
}

type CustomerInfoInput struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required,min=7,max=30"`
	Country string `json:"country" validate:"omitempty,max=80"`
}

type TravelDetailsInput struct {
	Destination   string `json:"destination" validate:"required,min=2,max=200"`
	StartDate     string `json:"startDate" validate:"required,date"`
	EndDate       string `json:"endDate" validate:"required,date"`
	Travelers     int    `json:"travelers" validate:"required,min=1,max=50"`
	Budget        string `json:"budget" validate:"required,max=50"`
	Accommodation string `json:"accommodation" validate:"omitempty,oneof=budget standard luxury"`
}

// ItineraryInput is the custom itinerary request payload.
type ItineraryInput struct {
	CustomerInfo  CustomerInfoInput  `json:"customerInfo" validate:"required"`
	TravelDetails TravelDetailsInput `json:"travelDetails" validate:"required"`
	Interests     []string           `json:"interests" validate:"max=20,dive,min=2,max=50"`
	Notes         string             `json:"notes" validate:"max=2000"`
}

func (in *ItineraryInput) Check() Errors {
	return checkDateRange("travelDetails.endDate", in.TravelDetails.StartDate, in.TravelDetails.EndDate)
}

// BookingInput is a request to book a listed package.
type BookingInput struct {
	PackageID  string `json:"packageId" validate:"required,mongodb"`
	Name       string `json:"name" validate:"required,min=2,max=100"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"required,min=7,max=30"`
	TravelDate string `json:"travelDate" validate:"required,date"`
	Travelers  int    `json:"travelers" validate:"required,min=1,max=50"`
	Message    string `json:"message" validate:"max=2000"`

	// UserID is set from the session, never from the body.
	UserID string `json:"-"`
}

func (in *BookingInput) Check() Errors {
	// date format is already checked by the tag
	d, err := time.Parse(time.DateOnly, in.TravelDate)
	if err == nil && d.Before(today()) {
		return Errors{{Field: "travelDate", Message: "must not be in the past"}}
	}
	return nil
}

// UserUpdateInput changes profile fields; nil fields are left untouched.
type UserUpdateInput struct {
	Name   *string `json:"name" validate:"omitempty,min=2,max=100"`
	Phone  *string `json:"phone" validate:"omitempty,max=30"`
	Bio    *string `json:"bio" validate:"omitempty,max=500"`
	Avatar *string `json:"avatar" validate:"omitempty,url"`
}

func (in *UserUpdateInput) Empty() bool {
	return in.Name == nil && in.Phone == nil && in.Bio == nil && in.Avatar == nil
}

type PreferencesInput struct {
	Currency      string   `json:"currency" validate:"required,oneof=USD EUR GBP INR AUD CAD"`
	Newsletter    bool     `json:"newsletter"`
	Notifications bool     `json:"notifications"`
	TravelStyles  []string `json:"travelStyles" validate:"max=10,dive,oneof=adventure beach culture family honeymoon luxury nature wellness"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,maxbytes=72,nefield=CurrentPassword"`
}

type ForgotPasswordInput struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordInput struct {
	Token    string `json:"token" validate:"required,len=64,hexadecimal"`
	Password string `json:"password" validate:"required,min=8,maxbytes=72"`
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,maxbytes=72"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// PackageInput creates a package.
type PackageInput struct {
	Title         string   `json:"title" validate:"required,min=3,max=200"`
	Location      string   `json:"location" validate:"required,max=200"`
	Description   string   `json:"description" validate:"required,max=10000"`
	Duration      string   `json:"duration" validate:"required,max=50"`
	Price         float64  `json:"price" validate:"gt=0"`
	OriginalPrice *float64 `json:"originalPrice" validate:"omitempty,gt=0"`
	Category      string   `json:"category" validate:"required,max=50"`
	Order         int      `json:"order" validate:"gte=0"`
	IsVisible     *bool    `json:"isVisible"`
	IsFeatured    bool     `json:"isFeatured"`
	Images        []string `json:"images" validate:"max=20,dive,url"`
	Highlights    []string `json:"highlights" validate:"max=30,dive,min=1,max=300"`
	Included      []string `json:"included" validate:"max=30,dive,min=1,max=300"`
	Excluded      []string `json:"excluded" validate:"max=30,dive,min=1,max=300"`
}

func (in *PackageInput) Check() Errors {
	if in.OriginalPrice != nil && *in.OriginalPrice < in.Price {
		return Errors{{Field: "originalPrice", Message: "must not be lower than price"}}
	}
	return nil
}

// PackageUpdateInput is a partial package update.
type PackageUpdateInput struct {
	Title         *string   `json:"title" validate:"omitempty,min=3,max=200"`
	Location      *string   `json:"location" validate:"omitempty,max=200"`
	Description   *string   `json:"description" validate:"omitempty,max=10000"`
	Duration      *string   `json:"duration" validate:"omitempty,max=50"`
	Price         *float64  `json:"price" validate:"omitempty,gt=0"`
	OriginalPrice *float64  `json:"originalPrice" validate:"omitempty,gt=0"`
	Category      *string   `json:"category" validate:"omitempty,min=1,max=50"`
	Order         *int      `json:"order" validate:"omitempty,gte=0"`
	IsVisible     *bool     `json:"isVisible"`
	IsFeatured    *bool     `json:"isFeatured"`
	Images        *[]string `json:"images" validate:"omitempty,max=20,dive,url"`
	Highlights    *[]string `json:"highlights" validate:"omitempty,max=30,dive,min=1,max=300"`
	Included      *[]string `json:"included" validate:"omitempty,max=30,dive,min=1,max=300"`
	Excluded      *[]string `json:"excluded" validate:"omitempty,max=30,dive,min=1,max=300"`
}

func (in *PackageUpdateInput) Check() Errors {
	if in.Price != nil && in.OriginalPrice != nil && *in.OriginalPrice < *in.Price {
		return Errors{{Field: "originalPrice", Message: "must not be lower than price"}}
	}
	return nil
}

type PostInput struct {
	Title       string     `json:"title" validate:"required,min=3,max=200"`
	Excerpt     string     `json:"excerpt" validate:"required,max=500"`
	Content     string     `json:"content" validate:"required"`
	CoverImage  string     `json:"coverImage" validate:"omitempty,url"`
	Author      string     `json:"author" validate:"required,max=100"`
	Category    string     `json:"category" validate:"required,max=50"`
	Tags        []string   `json:"tags" validate:"max=20,dive,min=1,max=40"`
	PublishedAt *time.Time `json:"publishedAt"`
	Order       int        `json:"order" validate:"gte=0"`
	IsVisible   *bool      `json:"isVisible"`
}

type PostUpdateInput struct {
	Title       *string    `json:"title" validate:"omitempty,min=3,max=200"`
	Excerpt     *string    `json:"excerpt" validate:"omitempty,max=500"`
	Content     *string    `json:"content" validate:"omitempty,min=1"`
	CoverImage  *string    `json:"coverImage" validate:"omitempty,url"`
	Author      *string    `json:"author" validate:"omitempty,max=100"`
	Category    *string    `json:"category" validate:"omitempty,min=1,max=50"`
	Tags        *[]string  `json:"tags" validate:"omitempty,max=20,dive,min=1,max=40"`
	PublishedAt *time.Time `json:"publishedAt"`
	Order       *int       `json:"order" validate:"omitempty,gte=0"`
	IsVisible   *bool      `json:"isVisible"`
}

// OrderItem is one entry of a reorder request.
type OrderItem struct {
	ID    string `json:"id" validate:"required"`
	Order int    `json:"order" validate:"gte=0"`
}

type ReorderInput struct {
	Items []OrderItem `json:"items" validate:"required,min=1,max=500,dive"`
}

type VisibilityInput struct {
	IsVisible *bool `json:"isVisible" validate:"required"`
}

type ContactStatusInput struct {
	Status string `json:"status" validate:"required,oneof=new read replied"`
}

type ItineraryStatusInput struct {
	Status string `json:"status" validate:"required,oneof=new in_progress completed cancelled"`
}

type BookingStatusInput struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed cancelled"`
}

var now = time.Now

func today() time.Time {
	y, m, d := now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func checkDateRange(field, start, end string) Errors {
	s, err1 := time.Parse(time.DateOnly, start)
	e, err2 := time.Parse(time.DateOnly, end)
	if err1 != nil || err2 != nil {
		return nil
	}
	if e.Before(s) {
		return Errors{{Field: field, Message: "must not be before the start date"}}
	}
	return nil
}
