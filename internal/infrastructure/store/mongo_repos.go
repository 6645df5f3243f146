package store

import (
	"context"
	"errors"
	"time"

	"github.com/example/ec-fulfillment/internal/domain/cart"
	"github.com/example/ec-fulfillment/internal/domain/customer"
	"github.com/example/ec-fulfillment/internal/domain/order"
	"github.com/example/ec-fulfillment/internal/domain/product"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type mongoProducts struct{ t *mongoTx }

func (r mongoProducts) FindByID(ctx context.Context, id string) (*product.Product, error) {
	return findDoc[product.Product](ctx, r.t.coll(productsCollection), product.ErrProductNotFound,
		bson.D{{Key: "_id", Value: id}})
}

func (r mongoProducts) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	n, err := r.t.coll(productsCollection).CountDocuments(ctx,
		bson.D{{Key: "key", Value: product.NormalizeSKU(sku)}},
		options.Count().SetLimit(1),
	)
	return n > 0, err
}

func (r mongoProducts) Save(ctx context.Context, p *product.Product) error {
	err := r.t.save(ctx, productsCollection, product.AggregateType, p, p.SKU, string(p.Status))
	if errors.Is(err, errDuplicateKey) {
		return product.ErrDuplicateSKU
	}
	return err
}

type mongoCarts struct{ t *mongoTx }

func (r mongoCarts) FindByCustomerID(ctx context.Context, customerID string) (*cart.Cart, error) {
	return findDoc[cart.Cart](ctx, r.t.coll(cartsCollection), cart.ErrCartNotFound,
		bson.D{{Key: "key", Value: customerID}},
		options.FindOne().SetSort(bson.D{{Key: "seq", Value: -1}}),
	)
}

func (r mongoCarts) Save(ctx context.Context, c *cart.Cart) error {
	return r.t.save(ctx, cartsCollection, cart.AggregateType, c, c.CustomerID, string(c.Status))
}

type mongoOrders struct{ t *mongoTx }

func (r mongoOrders) Save(ctx context.Context, o *order.Order) error {
	return r.t.save(ctx, ordersCollection, order.AggregateType, o, o.CustomerID, string(o.Status))
}

func (r mongoOrders) FindByID(ctx context.Context, id string) (*order.Order, error) {
	return findDoc[order.Order](ctx, r.t.coll(ordersCollection), order.ErrOrderNotFound,
		bson.D{{Key: "_id", Value: id}})
}

func (r mongoOrders) FindByCustomerID(ctx context.Context, customerID string) ([]*order.Order, error) {
	cur, err := r.t.coll(ordersCollection).Find(ctx,
		bson.D{{Key: "key", Value: customerID}},
		options.Find().SetSort(bson.D{{Key: "seq", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	var docs []mongoDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]*order.Order, 0, len(docs))
	for _, d := range docs {
		o := new(order.Order)
		if err := fromBSON(d.Data, o); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

type mongoCustomers struct{ t *mongoTx }

func (r mongoCustomers) FindByID(ctx context.Context, id string) (*customer.Customer, error) {
	return findDoc[customer.Customer](ctx, r.t.coll(customersCollection), customer.ErrCustomerNotFound,
		bson.D{{Key: "_id", Value: id}})
}

func (r mongoCustomers) FindByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	return findDoc[customer.Customer](ctx, r.t.coll(customersCollection), customer.ErrCustomerNotFound,
		bson.D{{Key: "key", Value: customer.NormalizeEmail(email)}})
}

func (r mongoCustomers) GetPasswordHistory(ctx context.Context, id string) ([]string, error) {
	var doc struct {
		History []string `bson:"password_history"`
	}
	err := r.t.coll(customersCollection).FindOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		options.FindOne().SetProjection(bson.D{{Key: "password_history", Value: 1}}),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, customer.ErrCustomerNotFound
	}
	return doc.History, err
}

func (r mongoCustomers) UpdatePassword(ctx context.Context, id, digest string, keep int) error {
	hist, err := r.GetPasswordHistory(ctx, id)
	if err != nil {
		return err
	}
	_, err = r.t.coll(customersCollection).UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "password_history", Value: prependCapped(hist, digest, keep)},
		}}},
	)
	return err
}

func (r mongoCustomers) Save(ctx context.Context, c *customer.Customer) error {
	err := r.t.save(ctx, customersCollection, customer.AggregateType, c, c.Email, "")
	if errors.Is(err, errDuplicateKey) {
		return customer.ErrEmailTaken
	}
	return err
}

type mongoEvents struct{ t *mongoTx }

func (r mongoEvents) Append(ctx context.Context, aggregateID, aggregateType, eventType string, data any) (*Event, error) {
	coll := r.t.coll(eventsCollection)
	count, err := coll.CountDocuments(ctx, bson.D{{Key: "aggregate_id", Value: aggregateID}})
	if err != nil {
		return nil, err
	}

	event, err := newEvent(aggregateID, aggregateType, eventType, int(count)+1, data)
	if err != nil {
		return nil, err
	}

	_, err = coll.InsertOne(ctx, mongoEvent{
		ID:            event.ID,
		AggregateID:   event.AggregateID,
		AggregateType: event.AggregateType,
		EventType:     event.EventType,
		Data:          string(event.Data),
		Version:       event.Version,
		Timestamp:     event.Timestamp,
		Seq:           time.Now().UnixNano(),
	})
	if err != nil {
		return nil, err
	}
	return &event, nil
}
