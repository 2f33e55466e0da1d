package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"wanderlust/models"
)

// Template names a file under templates/.
type Template string

const (
	TemplateContactReceived   Template = "contact_received"
	TemplateItineraryReceived Template = "itinerary_received"
	TemplateItineraryConfirm  Template = "itinerary_confirmation"
	TemplateBookingReceived   Template = "booking_received"
	TemplatePasswordReset     Template = "password_reset"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Render executes the named template with data.
func Render(name Template, data any) (string, error) {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, string(name)+".html", data); err != nil {
		return "", fmt.Errorf("render email template %s: %w", name, err)
	}
	return body.String(), nil
}

func build(to []string, replyTo, subject string, name Template, data any) (Message, error) {
	html, err := Render(name, data)
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, ReplyTo: replyTo, Subject: subject, HTML: html}, nil
}

// ContactReceived notifies the admin inbox of a contact form submission.
func ContactReceived(admin string, c *models.Contact) (Message, error) {
	return build([]string{admin}, c.Email, "New contact message: "+c.Subject, TemplateContactReceived, c)
}

func ItineraryReceived(admin string, it *models.CustomItinerary) (Message, error) {
	subject := "New itinerary request: " + it.TravelDetails.Destination
	return build([]string{admin}, it.CustomerInfo.Email, subject, TemplateItineraryReceived, it)
}

// ItineraryConfirmation goes to the customer who asked for the itinerary.
func ItineraryConfirmation(it *models.CustomItinerary) (Message, error) {
	return build([]string{it.CustomerInfo.Email}, "", "We received your itinerary request", TemplateItineraryConfirm, it)
}

func BookingReceived(admin string, b *models.Booking) (Message, error) {
	return build([]string{admin}, b.Email, "New booking inquiry: "+b.PackageTitle, TemplateBookingReceived, b)
}

// PasswordReset carries the reset link; link already holds the raw token.
func PasswordReset(u *models.User, link string, ttlMinutes int) (Message, error) {
	data := struct {
		Name       string
		Link       string
		TTLMinutes int
	}{u.Name, link, ttlMinutes}
	return build([]string{u.Email}, "", "Reset your password", TemplatePasswordReset, data)
}
