package services

import (
	"context"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"wanderlust/models"
	"wanderlust/validation"
)

// PackageFilter narrows a package listing. Zero values mean no filter.
type PackageFilter struct {
	Search      string
	Category    string
	VisibleOnly bool
	Page        int
	PageSize    int
}

type PackageService struct {
	coll Collection
}

func NewPackageService(coll Collection) *PackageService {
	return &PackageService{coll: coll}
}

// visibleFilter also matches documents stored before the flag existed.
func visibleFilter() bson.M {
	return bson.M{"$ne": false}
}

func searchRegex(q string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
}

func packageQuery(f PackageFilter) bson.M {
	filter := bson.M{}
	if f.Search != "" {
		re := searchRegex(f.Search)
		filter["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"location": re},
			bson.M{"description": re},
		}
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.VisibleOnly {
		filter["isVisible"] = visibleFilter()
	}
	return filter
}

func packageSort() bson.D {
	return bson.D{
		{Key: "category", Value: 1},
		{Key: "order", Value: 1},
		{Key: "createdAt", Value: -1},
	}
}

func (s *PackageService) List(ctx context.Context, f PackageFilter) (*Page[models.Package], error) {
	if f.PageSize == 0 {
		f.PageSize = PackagePageSize
	}
	page, err := findPage[models.Package](ctx, s.coll, packageQuery(f), packageSort(), f.Page, f.PageSize)
	if err != nil {
		return nil, err
	}
	for i := range page.Items {
		page.Items[i].Normalize()
	}
	return page, nil
}

// Get returns the package regardless of its visibility.
func (s *PackageService) Get(ctx context.Context, id string) (*models.Package, error) {
	p, err := findByID[models.Package](ctx, s.coll, id)
	if err != nil {
		return nil, err
	}
	p.Normalize()
	return p, nil
}

// Featured returns visible packages flagged as featured in display order.
func (s *PackageService) Featured(ctx context.Context, limit int) ([]models.Package, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	items, err := findAll[models.Package](ctx, s.coll, bson.M{"isFeatured": true, "isVisible": visibleFilter()}, opts)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Normalize()
	}
	return items, nil
}

// ByIDs loads the listed packages, ignoring ids that are malformed or gone.
func (s *PackageService) ByIDs(ctx context.Context, ids []string) ([]models.Package, error) {
	oids := make(bson.A, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return []models.Package{}, nil
	}
	items, err := findAll[models.Package](ctx, s.coll, bson.M{"_id": bson.M{"$in": oids}}, options.Find().SetSort(packageSort()))
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Normalize()
	}
	return items, nil
}

func (s *PackageService) Count(ctx context.Context, visibleOnly bool) (int64, error) {
	return s.coll.CountDocuments(ctx, packageQuery(PackageFilter{VisibleOnly: visibleOnly}))
}

func (s *PackageService) Create(ctx context.Context, in *validation.PackageInput) (*models.Package, error) {
	ts := now()
	p := &models.Package{
		ID:            primitive.NewObjectID(),
		Title:         in.Title,
		Slug:          Slugify(in.Title),
		Location:      in.Location,
		Description:   in.Description,
		Duration:      in.Duration,
		Price:         in.Price,
		OriginalPrice: in.OriginalPrice,
		Category:      in.Category,
		Order:         in.Order,
		IsVisible:     in.IsVisible,
		IsFeatured:    in.IsFeatured,
		Images:        in.Images,
		Highlights:    in.Highlights,
		Included:      in.Included,
		Excluded:      in.Excluded,
		CreatedAt:     ts,
		UpdatedAt:     ts,
	}
	p.Normalize()
	if err := insert(ctx, s.coll, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update applies the fields present in in. It reports Updated only when
// something stored actually changed.
func (s *PackageService) Update(ctx context.Context, id string, in *validation.PackageUpdateInput) (Outcome, error) {
	return updateFields(ctx, s.coll, id, packageChanges(in))
}

func packageChanges(in *validation.PackageUpdateInput) bson.M {
	set := bson.M{}
	if in.Title != nil {
		set["title"] = *in.Title
		set["slug"] = Slugify(*in.Title)
	}
	setString(set, "location", in.Location)
	setString(set, "description", in.Description)
	setString(set, "duration", in.Duration)
	setString(set, "category", in.Category)
	if in.Price != nil {
		set["price"] = *in.Price
	}
	if in.OriginalPrice != nil {
		set["originalPrice"] = *in.OriginalPrice
	}
	if in.Order != nil {
		set["order"] = *in.Order
	}
	if in.IsVisible != nil {
		set["isVisible"] = *in.IsVisible
	}
	if in.IsFeatured != nil {
		set["isFeatured"] = *in.IsFeatured
	}
	setStrings(set, "images", in.Images)
	setStrings(set, "highlights", in.Highlights)
	setStrings(set, "included", in.Included)
	setStrings(set, "excluded", in.Excluded)
	return set
}

func (s *PackageService) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, s.coll, id)
}

func (s *PackageService) ToggleVisibility(ctx context.Context, id string, visible bool) (Outcome, error) {
	return setVisibility(ctx, s.coll, id, visible)
}

// UpdateOrder returns how many packages actually moved.
func (s *PackageService) UpdateOrder(ctx context.Context, items []OrderItem) (int64, error) {
	return updateOrder(ctx, s.coll, items)
}

func setString(set bson.M, field string, v *string) {
	if v != nil {
		set[field] = *v
	}
}

func setStrings(set bson.M, field string, v *[]string) {
	if v == nil {
		return
	}
	if *v == nil {
		set[field] = []string{}
		return
	}
	set[field] = *v
}
