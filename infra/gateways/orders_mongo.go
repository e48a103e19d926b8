package gateways

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/harvicreates/inventory/protocols"
)

const ordersCollection = "orders"

// OrderArchiveMongo stores confirmed purchases as documents. The order
// context is caller-supplied free-form data, which is why this lives in a
// document store rather than the products database.
type OrderArchiveMongo struct {
	collection *mongo.Collection
}

func NewOrderArchiveMongo(client *mongo.Client, database string) *OrderArchiveMongo {
	return &OrderArchiveMongo{
		collection: client.Database(database).Collection(ordersCollection),
	}
}

func (o *OrderArchiveMongo) SaveOrder(ctx context.Context, record protocols.OrderRecord) error {
	items := make([]bson.M, 0, len(record.Items))
	for _, item := range record.Items {
		items = append(items, bson.M{
			"product_id": item.ProductID,
			"quantity":   item.Quantity,
		})
	}

	doc := bson.M{
		"reservation_id": record.ReservationID,
		"items":          items,
		"context":        record.Context,
		"confirmed_at":   record.ConfirmedAt,
	}
	_, err := o.collection.InsertOne(ctx, doc)
	return err
}
