package gateways

import (
	"context"
	"fmt"
	"sync"

	"github.com/harvicreates/inventory/domain/reservation"
	"github.com/harvicreates/inventory/protocols"
)

// CatalogMemory is an in-process catalog used for local runs and tests.
type CatalogMemory struct {
	mutex    sync.Mutex
	products map[string]*protocols.Product
}

func NewCatalogMemory(products ...protocols.Product) *CatalogMemory {
	c := &CatalogMemory{products: make(map[string]*protocols.Product)}
	for _, p := range products {
		c.Save(p)
	}
	return c
}

func (c *CatalogMemory) Save(product protocols.Product) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	copied := product
	c.products[product.ID] = &copied
}

func (c *CatalogMemory) GetStock(ctx context.Context, productID string) (*protocols.Product, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	product, ok := c.products[productID]
	if !ok {
		return nil, reservation.ErrProductNotFound
	}
	copied := *product
	return &copied, nil
}

func (c *CatalogMemory) DecrementStock(ctx context.Context, productID string, quantity int32) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	product, ok := c.products[productID]
	if !ok {
		return reservation.ErrProductNotFound
	}
	if product.StockQuantity < quantity {
		return fmt.Errorf("%w: product %s", reservation.ErrStockUpdateFailed, productID)
	}
	product.StockQuantity -= quantity
	return nil
}
