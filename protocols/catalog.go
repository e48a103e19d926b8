package protocols

import "context"

type Product struct {
	ID            string
	Title         string
	StockQuantity int32
}

// CatalogGateway talks to the product catalog, which is the single source
// of truth for on-hand stock. Stock counts are never cached across calls.
type CatalogGateway interface {
	GetStock(ctx context.Context, productID string) (*Product, error)
	DecrementStock(ctx context.Context, productID string, quantity int32) error
}
