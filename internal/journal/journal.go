// Package journal persists committed ledger events to a MongoDB collection
// as an append-only audit trail. Writes are best-effort: the ledger
// mutation has already committed by the time an event reaches the journal,
// so a journal failure is logged and never propagated.
package journal

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/openbloc/chainfeed/internal/ledger"
)

const writeTimeout = 5 * time.Second

// Journal appends ledger events to a MongoDB collection.
type Journal struct {
	collection *mongo.Collection
}

type eventDocument struct {
	ledger.Event `bson:",inline"`
	RecordedAt   time.Time `bson:"recorded_at"`
}

// New creates a Journal writing to the "ledger_events" collection.
func New(db *mongo.Database) *Journal {
	return &Journal{collection: db.Collection("ledger_events")}
}

// Record appends one event. Intended to be passed to Store.Subscribe.
func (j *Journal) Record(ev ledger.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	doc := eventDocument{Event: ev, RecordedAt: time.Now()}
	if _, err := j.collection.InsertOne(ctx, doc); err != nil {
		log.Printf("journal write failed for %s on post %d: %v", ev.Kind, ev.PostID, err)
	}
}

// Recent returns the most recent events, newest first.
func (j *Journal) Recent(ctx context.Context, limit int64) ([]ledger.Event, error) {
	findOptions := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "_id", Value: -1}})
	cursor, err := j.collection.Find(ctx, bson.D{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []eventDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	events := make([]ledger.Event, len(docs))
	for i, doc := range docs {
		events[i] = doc.Event
	}
	return events, nil
}
