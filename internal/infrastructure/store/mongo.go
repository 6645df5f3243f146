package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/ec-fulfillment/internal/domain/aggregate"
	"github.com/example/ec-fulfillment/internal/domain/cart"
	"github.com/example/ec-fulfillment/internal/domain/customer"
	"github.com/example/ec-fulfillment/internal/domain/domainerr"
	"github.com/example/ec-fulfillment/internal/domain/order"
	"github.com/example/ec-fulfillment/internal/domain/product"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	productsCollection  = "products"
	cartsCollection     = "carts"
	ordersCollection    = "orders"
	customersCollection = "customers"
	eventsCollection    = "events"
)

var errDuplicateKey = errors.New("duplicate key")

// Mongo is a Backend on MongoDB. Units of work run as session transactions,
// which require a replica set.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	client, err := mongo.Connect(options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return client, nil
}

var _ Backend = (*Mongo)(nil)

func NewMongo(client *mongo.Client, database string) *Mongo {
	return &Mongo{client: client, db: client.Database(database)}
}

func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	indexes := map[string]mongo.IndexModel{
		productsCollection:  {Keys: bson.D{{Key: "key", Value: 1}}, Options: unique},
		customersCollection: {Keys: bson.D{{Key: "key", Value: 1}}, Options: unique},
		cartsCollection:     {Keys: bson.D{{Key: "key", Value: 1}, {Key: "seq", Value: -1}}},
		ordersCollection:    {Keys: bson.D{{Key: "key", Value: 1}, {Key: "seq", Value: -1}}},
		eventsCollection:    {Keys: bson.D{{Key: "published", Value: 1}, {Key: "seq", Value: 1}}},
	}
	for coll, model := range indexes {
		if _, err := m.db.Collection(coll).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("index %s: %w", coll, err)
		}
	}
	return nil
}

// Do runs fn inside a session transaction. The driver may call fn again on
// transient errors, so fn must only depend on what it reads through tx.
func (m *Mongo) Do(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	sess, err := m.client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc context.Context) (any, error) {
		return nil, fn(sc, &mongoTx{db: m.db})
	})
	return err
}

func (m *Mongo) Pending(ctx context.Context, limit int) ([]Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "seq", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := m.db.Collection(eventsCollection).Find(ctx, bson.D{{Key: "published", Value: false}}, opts)
	if err != nil {
		return nil, err
	}
	var docs []mongoEvent
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(docs))
	for _, d := range docs {
		events = append(events, d.event())
	}
	return events, nil
}

func (m *Mongo) MarkPublished(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := m.db.Collection(eventsCollection).UpdateMany(ctx,
		bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "published", Value: true},
			{Key: "published_at", Value: time.Now().UTC()},
		}}},
	)
	return err
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// mongoDoc wraps an aggregate. Key holds the lookup field of the
// collection: SKU, customer id or email.
type mongoDoc struct {
	ID      string   `bson:"_id"`
	Key     string   `bson:"key"`
	Status  string   `bson:"status,omitempty"`
	Version int      `bson:"version"`
	Seq     int64    `bson:"seq"`
	Data    bson.D   `bson:"data"`
	History []string `bson:"password_history,omitempty"`
}

type mongoEvent struct {
	ID            string    `bson:"_id"`
	AggregateID   string    `bson:"aggregate_id"`
	AggregateType string    `bson:"aggregate_type"`
	EventType     string    `bson:"event_type"`
	Data          string    `bson:"data"`
	Version       int       `bson:"version"`
	Timestamp     time.Time `bson:"timestamp"`
	Seq           int64     `bson:"seq"`
	Published     bool      `bson:"published"`
}

func (d mongoEvent) event() Event {
	return Event{
		ID:            d.ID,
		AggregateID:   d.AggregateID,
		AggregateType: d.AggregateType,
		EventType:     d.EventType,
		Data:          json.RawMessage(d.Data),
		Timestamp:     d.Timestamp,
		Version:       d.Version,
	}
}

// toBSON stores the aggregate's JSON form, so Money and Quantity keep the
// encoding they have on the wire and in Postgres.
func toBSON(v any) (bson.D, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc bson.D
	if err := bson.UnmarshalExtJSON(raw, false, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func fromBSON(doc bson.D, v any) error {
	raw, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

type mongoTx struct {
	db *mongo.Database
}

func (t *mongoTx) Products() product.Store   { return mongoProducts{t} }
func (t *mongoTx) Carts() cart.Store         { return mongoCarts{t} }
func (t *mongoTx) Orders() order.Store       { return mongoOrders{t} }
func (t *mongoTx) Customers() customer.Store { return mongoCustomers{t} }
func (t *mongoTx) Events() EventAppender     { return mongoEvents{t} }

func (t *mongoTx) coll(name string) *mongo.Collection {
	return t.db.Collection(name)
}

func (t *mongoTx) save(ctx context.Context, coll, kind string, agg aggregate.Aggregate, key, status string) error {
	loaded := agg.GetVersion()
	agg.SetVersion(loaded + 1)
	err := t.write(ctx, coll, kind, agg, loaded, key, status)
	if err != nil {
		agg.SetVersion(loaded)
	}
	return err
}

func (t *mongoTx) write(ctx context.Context, coll, kind string, agg aggregate.Aggregate, loaded int, key, status string) error {
	data, err := toBSON(agg)
	if err != nil {
		return err
	}

	if loaded == 0 {
		_, err := t.coll(coll).InsertOne(ctx, mongoDoc{
			ID:      agg.GetID(),
			Key:     key,
			Status:  status,
			Version: agg.GetVersion(),
			Seq:     time.Now().UnixNano(),
			Data:    data,
		})
		return classifyWriteError(err, kind, agg.GetID())
	}

	res, err := t.coll(coll).UpdateOne(ctx,
		bson.D{{Key: "_id", Value: agg.GetID()}, {Key: "version", Value: loaded}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "key", Value: key},
			{Key: "status", Value: status},
			{Key: "version", Value: agg.GetVersion()},
			{Key: "data", Value: data},
		}}},
	)
	if err != nil {
		return classifyWriteError(err, kind, agg.GetID())
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s %s changed since version %d",
			domainerr.ErrConcurrentModification, kind, agg.GetID(), loaded)
	}
	return nil
}

// classifyWriteError maps a duplicate _id to a concurrent creation and any
// other duplicate to errDuplicateKey.
func classifyWriteError(err error, kind, id string) error {
	if err == nil || !mongo.IsDuplicateKeyError(err) {
		return err
	}
	if strings.Contains(err.Error(), "_id_") {
		return fmt.Errorf("%w: %s %s was created concurrently", domainerr.ErrConcurrentModification, kind, id)
	}
	return errDuplicateKey
}

func findDoc[T any](ctx context.Context, coll *mongo.Collection, notFound error, filter bson.D, opts ...options.Lister[options.FindOneOptions]) (*T, error) {
	var doc mongoDoc
	if err := coll.FindOne(ctx, filter, opts...).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound
		}
		return nil, err
	}
	v := new(T)
	if err := fromBSON(doc.Data, v); err != nil {
		return nil, err
	}
	return v, nil
}
