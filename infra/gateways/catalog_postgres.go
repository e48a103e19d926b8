package gateways

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/harvicreates/inventory/domain/reservation"
	"github.com/harvicreates/inventory/protocols"
)

// CatalogPostgres reads and updates the storefront's products table.
type CatalogPostgres struct {
	db *sql.DB
}

func NewCatalogPostgres(db *sql.DB) *CatalogPostgres {
	return &CatalogPostgres{db: db}
}

func (c *CatalogPostgres) GetStock(ctx context.Context, productID string) (*protocols.Product, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT id, title, stock_quantity FROM products WHERE id = $1`, productID)

	var p protocols.Product
	if err := row.Scan(&p.ID, &p.Title, &p.StockQuantity); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reservation.ErrProductNotFound
		}
		return nil, fmt.Errorf("%w: %v", reservation.ErrRemoteUnavailable, err)
	}
	return &p, nil
}

func (c *CatalogPostgres) DecrementStock(ctx context.Context, productID string, quantity int32) error {
	// guarded update so the remote count never goes negative
	result, err := c.db.ExecContext(ctx,
		`UPDATE products SET stock_quantity = stock_quantity - $2 WHERE id = $1 AND stock_quantity >= $2`,
		productID, quantity)
	if err != nil {
		return fmt.Errorf("%w: %v", reservation.ErrStockUpdateFailed, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", reservation.ErrStockUpdateFailed, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: product %s", reservation.ErrStockUpdateFailed, productID)
	}
	return nil
}
