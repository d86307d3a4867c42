package results

import (
	"context"
	"fmt"
	"log"

	"github.com/Cormuckle/dist_systems_group_M/arena_server/eventfeed"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const collectionName = "match_events"

// Recorder appends elimination and leave events to MongoDB. It only writes;
// nothing is ever read back into a running world.
type Recorder struct {
	db   *mongo.Database
	coll *mongo.Collection
}

// Connect initializes a MongoDB connection and returns a Recorder for database.
func Connect(ctx context.Context, uri, database string) (*Recorder, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("unable to connect to MongoDB: %w", err)
	}
	log.Println("Connected to MongoDB")
	return New(client.Database(database)), nil
}

func New(db *mongo.Database) *Recorder {
	return &Recorder{db: db, coll: db.Collection(collectionName)}
}

// Publish implements eventfeed.Sink. Only events that end a player's life
// are stored.
func (r *Recorder) Publish(ctx context.Context, ev eventfeed.Event) error {
	switch ev.Type {
	case eventfeed.TypeEliminated, eventfeed.TypeLeft:
	default:
		return nil
	}
	if _, err := r.coll.InsertOne(ctx, ev); err != nil {
		return fmt.Errorf("failed to record %s event: %w", ev.Type, err)
	}
	return nil
}

// Ping checks the connection to the primary.
func (r *Recorder) Ping(ctx context.Context) error {
	return r.db.Client().Ping(ctx, readpref.Primary())
}

func (r *Recorder) Disconnect(ctx context.Context) {
	if err := r.db.Client().Disconnect(ctx); err != nil {
		log.Printf("Error disconnecting from MongoDB: %v", err)
	}
}
