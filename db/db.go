package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"wanderlust/config"
)

// Collection names.
const (
	PackagesCollection       = "packages"
	PostsCollection          = "posts"
	UsersCollection          = "users"
	ContactsCollection       = "contacts"
	ItinerariesCollection    = "itineraries"
	PasswordResetsCollection = "password_resets"
	BookingsCollection       = "bookings"
)

// DB holds the client and the collections the services work on. It is
// created once in main and passed down.
type DB struct {
	Client *mongo.Client

	Packages       *mongo.Collection
	Posts          *mongo.Collection
	Users          *mongo.Collection
	Contacts       *mongo.Collection
	Itineraries    *mongo.Collection
	PasswordResets *mongo.Collection
	Bookings       *mongo.Collection
}

// Connect dials Mongo and pings the primary before returning.
func Connect(ctx context.Context, cfg config.MongoConfig) (*DB, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return New(client, cfg.Database), nil
}

// New binds the collections of database name on an existing client.
func New(client *mongo.Client, name string) *DB {
	database := client.Database(name)
	return &DB{
		Client:         client,
		Packages:       database.Collection(PackagesCollection),
		Posts:          database.Collection(PostsCollection),
		Users:          database.Collection(UsersCollection),
		Contacts:       database.Collection(ContactsCollection),
		Itineraries:    database.Collection(ItinerariesCollection),
		PasswordResets: database.Collection(PasswordResetsCollection),
		Bookings:       database.Collection(BookingsCollection),
	}
}

func (d *DB) Close(ctx context.Context) error {
	return d.Client.Disconnect(ctx)
}

func (d *DB) Ping(ctx context.Context) error {
	return d.Client.Ping(ctx, readpref.Primary())
}

// EnsureIndexes creates the indexes listing and lookups rely on. Creating an
// index that already exists is a no-op.
func (d *DB) EnsureIndexes(ctx context.Context) error {
	specs := map[*mongo.Collection][]mongo.IndexModel{
		d.Packages: {
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "order", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "isFeatured", Value: 1}, {Key: "order", Value: 1}}},
		},
		d.Posts: {
			{Keys: bson.D{{Key: "publishedAt", Value: -1}, {Key: "order", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "tags", Value: 1}}},
		},
		d.Users: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		d.PasswordResets: {
			{Keys: bson.D{{Key: "tokenHash", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "userId", Value: 1}}},
		},
		d.Contacts:    {{Keys: bson.D{{Key: "createdAt", Value: -1}}}},
		d.Itineraries: {{Keys: bson.D{{Key: "createdAt", Value: -1}}}},
		d.Bookings:    {{Keys: bson.D{{Key: "createdAt", Value: -1}}}},
	}

	for coll, models := range specs {
		if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll.Name(), err)
		}
	}
	return nil
}
