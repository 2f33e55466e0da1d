package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"wanderlust/models"
	"wanderlust/validation"
)

var newestFirst = bson.D{{Key: "createdAt", Value: -1}}

func statusQuery(status string) bson.M {
	if status == "" {
		return bson.M{}
	}
	return bson.M{"status": status}
}

type ContactService struct {
	coll Collection
}

func NewContactService(coll Collection) *ContactService {
	return &ContactService{coll: coll}
}

func (s *ContactService) Create(ctx context.Context, in *validation.ContactInput) (*models.Contact, error) {
	ts := now()
	c := &models.Contact{
		ID:        primitive.NewObjectID(),
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Subject:   in.Subject,
		Message:   in.Message,
		Status:    models.ContactNew,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if err := insert(ctx, s.coll, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ContactService) List(ctx context.Context, status string, page int) (*Page[models.Contact], error) {
	return findPage[models.Contact](ctx, s.coll, statusQuery(status), newestFirst, page, AdminPageSize)
}

func (s *ContactService) CountByStatus(ctx context.Context, status string) (int64, error) {
	return s.coll.CountDocuments(ctx, statusQuery(status))
}

// UpdateStatus does not check the transition; any listed status may follow
// any other.
func (s *ContactService) UpdateStatus(ctx context.Context, id, status string) (Outcome, error) {
	return updateFields(ctx, s.coll, id, bson.M{"status": status})
}

type ItineraryService struct {
	coll Collection
}

func NewItineraryService(coll Collection) *ItineraryService {
	return &ItineraryService{coll: coll}
}

func (s *ItineraryService) Create(ctx context.Context, in *validation.ItineraryInput) (*models.CustomItinerary, error) {
	ts := now()
	interests := in.Interests
	if interests == nil {
		interests = []string{}
	}
	it := &models.CustomItinerary{
		ID: primitive.NewObjectID(),
		CustomerInfo: models.CustomerInfo{
			Name:    in.CustomerInfo.Name,
			Email:   in.CustomerInfo.Email,
			Phone:   in.CustomerInfo.Phone,
			Country: in.CustomerInfo.Country,
		},
		TravelDetails: models.TravelDetails{
			Destination:   in.TravelDetails.Destination,
			StartDate:     in.TravelDetails.StartDate,
			EndDate:       in.TravelDetails.EndDate,
			Travelers:     in.TravelDetails.Travelers,
			Budget:        in.TravelDetails.Budget,
			Accommodation: in.TravelDetails.Accommodation,
		},
		Interests: interests,
		Notes:     in.Notes,
		Status:    models.ItineraryNew,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if err := insert(ctx, s.coll, it); err != nil {
		return nil, err
	}
	return it, nil
}

func (s *ItineraryService) List(ctx context.Context, status string, page int) (*Page[models.CustomItinerary], error) {
	return findPage[models.CustomItinerary](ctx, s.coll, statusQuery(status), newestFirst, page, AdminPageSize)
}

func (s *ItineraryService) CountByStatus(ctx context.Context, status string) (int64, error) {
	return s.coll.CountDocuments(ctx, statusQuery(status))
}

func (s *ItineraryService) UpdateStatus(ctx context.Context, id, status string) (Outcome, error) {
	return updateFields(ctx, s.coll, id, bson.M{"status": status})
}

type BookingService struct {
	coll Collection
}

func NewBookingService(coll Collection) *BookingService {
	return &BookingService{coll: coll}
}

// Create stores an inquiry for pkg. The package title is copied so the
// booking still reads well if the package is renamed or removed.
func (s *BookingService) Create(ctx context.Context, pkg *models.Package, in *validation.BookingInput) (*models.Booking, error) {
	ts := now()
	b := &models.Booking{
		ID:           primitive.NewObjectID(),
		PackageID:    pkg.ID.Hex(),
		PackageTitle: pkg.Title,
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		TravelDate:   in.TravelDate,
		Travelers:    in.Travelers,
		Message:      in.Message,
		Status:       models.BookingPending,
		UserID:       in.UserID,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
	if err := insert(ctx, s.coll, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BookingService) List(ctx context.Context, status string, page int) (*Page[models.Booking], error) {
	return findPage[models.Booking](ctx, s.coll, statusQuery(status), newestFirst, page, AdminPageSize)
}

func (s *BookingService) CountByStatus(ctx context.Context, status string) (int64, error) {
	return s.coll.CountDocuments(ctx, statusQuery(status))
}

func (s *BookingService) UpdateStatus(ctx context.Context, id, status string) (Outcome, error) {
	return updateFields(ctx, s.coll, id, bson.M{"status": status})
}
