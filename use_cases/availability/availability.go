package availability

import (
	"context"
	"errors"

	"github.com/harvicreates/inventory/domain/reservation"
	"github.com/harvicreates/inventory/protocols"
)

type CheckAvailability struct {
	catalog protocols.CatalogGateway
	store   *reservation.Store
	logger  protocols.Logger
}

func NewCheckAvailability(catalog protocols.CatalogGateway, store *reservation.Store, logger protocols.Logger) *CheckAvailability {
	return &CheckAvailability{
		catalog: catalog,
		store:   store,
		logger:  logger,
	}
}

// Check reads the current stock from the catalog and subtracts the live
// holds. It never mutates stock.
func (c *CheckAvailability) Check(ctx context.Context, productID string, quantity int32) protocols.Availability {
	if c.catalog == nil {
		return protocols.Availability{Available: false, Error: reservation.ErrRemoteUnavailable.Error()}
	}

	product, err := c.catalog.GetStock(ctx, productID)
	if err != nil {
		if c.logger != nil {
			c.logger.Error("failed to check product availability", "productId", productID, "error", err)
		}
		if errors.Is(err, reservation.ErrProductNotFound) {
			return protocols.Availability{Available: false, Error: reservation.ErrProductNotFound.Error()}
		}
		return protocols.Availability{Available: false, Error: reservation.ErrRemoteUnavailable.Error()}
	}

	currentStock := product.StockQuantity
	reserved := c.store.Reserved(productID)
	availableStock := currentStock - reserved

	if c.logger != nil {
		c.logger.Info("stock check completed",
			"productId", productID,
			"currentStock", currentStock,
			"reserved", reserved,
			"availableStock", availableStock,
			"requestedQuantity", quantity,
		)
	}

	return protocols.Availability{
		Available:      availableStock >= quantity,
		AvailableStock: availableStock,
		CurrentStock:   currentStock,
		Reserved:       reserved,
		Product:        product,
	}
}
