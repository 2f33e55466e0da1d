package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"wanderlust/models"
	"wanderlust/validation"
)

// PostFilter narrows a blog listing. PublicOnly keeps posts that are visible
// and already published.
type PostFilter struct {
	Search     string
	Category   string
	Tag        string
	PublicOnly bool
	Page       int
	PageSize   int
}

type BlogService struct {
	coll Collection
}

func NewBlogService(coll Collection) *BlogService {
	return &BlogService{coll: coll}
}

func postQuery(f PostFilter) bson.M {
	filter := bson.M{}
	if f.Search != "" {
		re := searchRegex(f.Search)
		filter["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"excerpt": re},
		}
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Tag != "" {
		filter["tags"] = f.Tag
	}
	if f.PublicOnly {
		filter["isVisible"] = visibleFilter()
		filter["publishedAt"] = bson.M{"$ne": nil, "$lte": now()}
	}
	return filter
}

func postSort() bson.D {
	return bson.D{
		{Key: "publishedAt", Value: -1},
		{Key: "order", Value: 1},
		{Key: "createdAt", Value: -1},
	}
}

func (s *BlogService) List(ctx context.Context, f PostFilter) (*Page[models.BlogPost], error) {
	if f.PageSize == 0 {
		f.PageSize = PostPageSize
	}
	page, err := findPage[models.BlogPost](ctx, s.coll, postQuery(f), postSort(), f.Page, f.PageSize)
	if err != nil {
		return nil, err
	}
	for i := range page.Items {
		page.Items[i].Normalize()
	}
	return page, nil
}

// Get returns any post, published or not.
func (s *BlogService) Get(ctx context.Context, id string) (*models.BlogPost, error) {
	p, err := findByID[models.BlogPost](ctx, s.coll, id)
	if err != nil {
		return nil, err
	}
	p.Normalize()
	return p, nil
}

// GetPublic returns the post only when readers may see it.
func (s *BlogService) GetPublic(ctx context.Context, id string) (*models.BlogPost, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Visible() || !p.Published(now()) {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *BlogService) Count(ctx context.Context, publicOnly bool) (int64, error) {
	return s.coll.CountDocuments(ctx, postQuery(PostFilter{PublicOnly: publicOnly}))
}

func (s *BlogService) Create(ctx context.Context, in *validation.PostInput) (*models.BlogPost, error) {
	ts := now()
	p := &models.BlogPost{
		ID:          primitive.NewObjectID(),
		Title:       in.Title,
		Slug:        Slugify(in.Title),
		Excerpt:     in.Excerpt,
		Content:     in.Content,
		CoverImage:  in.CoverImage,
		Author:      in.Author,
		Category:    in.Category,
		Tags:        in.Tags,
		PublishedAt: in.PublishedAt,
		Order:       in.Order,
		IsVisible:   in.IsVisible,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	p.Normalize()
	if err := insert(ctx, s.coll, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *BlogService) Update(ctx context.Context, id string, in *validation.PostUpdateInput) (Outcome, error) {
	return updateFields(ctx, s.coll, id, postChanges(in))
}

func postChanges(in *validation.PostUpdateInput) bson.M {
	set := bson.M{}
	if in.Title != nil {
		set["title"] = *in.Title
		set["slug"] = Slugify(*in.Title)
	}
	setString(set, "excerpt", in.Excerpt)
	setString(set, "content", in.Content)
	setString(set, "coverImage", in.CoverImage)
	setString(set, "author", in.Author)
	setString(set, "category", in.Category)
	setStrings(set, "tags", in.Tags)
	if in.PublishedAt != nil {
		set["publishedAt"] = in.PublishedAt.UTC()
	}
	if in.Order != nil {
		set["order"] = *in.Order
	}
	if in.IsVisible != nil {
		set["isVisible"] = *in.IsVisible
	}
	return set
}

func (s *BlogService) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, s.coll, id)
}

func (s *BlogService) ToggleVisibility(ctx context.Context, id string, visible bool) (Outcome, error) {
	return setVisibility(ctx, s.coll, id, visible)
}

func (s *BlogService) UpdateOrder(ctx context.Context, items []OrderItem) (int64, error) {
	return updateOrder(ctx, s.coll, items)
}
