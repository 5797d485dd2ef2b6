package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/batch-ledger/internal/domain/entity"
	"github.com/jhoicas/batch-ledger/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto con sus cachés.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (id, company_id, sku, name, total_stock, owner_stock, updated_at)
		VALUES ($1, NULLIF($2, '')::uuid, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.CompanyID, product.SKU, product.Name,
		product.TotalStock, product.OwnerStock, product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", mapError(err))
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	query := `
		SELECT id, COALESCE(company_id::text, ''), sku, name, total_stock, owner_stock, updated_at
		FROM products WHERE id = $1`
	var p entity.Product
	err := r.q.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.CompanyID, &p.SKU, &p.Name, &p.TotalStock, &p.OwnerStock, &p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, mapError(err))
	}
	return &p, nil
}

// AddStock suma los deltas a total_stock y owner_stock en la misma sentencia.
func (r *ProductRepo) AddStock(ctx context.Context, id string, totalDelta, ownerDelta decimal.Decimal) error {
	query := `
		UPDATE products
		SET total_stock = total_stock + $2, owner_stock = owner_stock + $3, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, id, totalDelta, ownerDelta)
	if err != nil {
		return fmt.Errorf("add product stock: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("add product stock %s: %w", id, mapError(errNoRows))
	}
	return nil
}

// SetTotalStock sobrescribe total_stock; lo usa la conciliación al corregir la caché.
func (r *ProductRepo) SetTotalStock(ctx context.Context, id string, total decimal.Decimal) error {
	tag, err := r.q.Exec(ctx, `UPDATE products SET total_stock = $2, updated_at = now() WHERE id = $1`, id, total)
	if err != nil {
		return fmt.Errorf("set product stock: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("set product stock %s: %w", id, mapError(errNoRows))
	}
	return nil
}

// ListIDs devuelve todos los productos, tengan o no lotes.
func (r *ProductRepo) ListIDs(ctx context.Context) ([]string, error) {
	return collectIDs(ctx, r.q, `
		SELECT id::text FROM products
		UNION
		SELECT product_id::text FROM batches
		ORDER BY 1`)
}
