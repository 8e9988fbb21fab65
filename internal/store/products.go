package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storeledger/backoffice/internal/records"
)

var productsCollection = collection[ProductRow]{
	table:       "products",
	alias:       "p",
	selectSQL:   "SELECT p.id, p.category, p.brand, p.model, p.imei, p.warranty_months",
	fromSQL:     "FROM products p",
	defaultSort: "brand",
	fields: map[string]field{
		"category":       {alias: "p", column: "category", kind: kindText, sortable: true, filter: true},
		"brand":          {alias: "p", column: "brand", kind: kindText, sortable: true, filter: true},
		"model":          {alias: "p", column: "model", kind: kindText, sortable: true, filter: true},
		"imei":           {alias: "p", column: "imei", kind: kindText, filter: true},
		"warrantyMonths": {alias: "p", column: "warranty_months", kind: kindInt, sortable: true},
	},
}

// ProductStore reads the product catalogue built up by recorded sales.
// Products are written through SalesStore.
type ProductStore struct {
	pool *pgxpool.Pool
}

// NewProductStore constructs a product store over the pool.
func NewProductStore(pool *pgxpool.Pool) *ProductStore {
	return &ProductStore{pool: pool}
}

// List reads one page of products.
func (s *ProductStore) List(ctx context.Context, q records.ListQuery) (records.Page[records.Product], error) {
	if q.SortBy == "" {
		q.SortDir = records.SortAsc
	}
	q = q.Normalize()
	rows, total, err := productsCollection.list(ctx, s.pool, q)
	if err != nil {
		return records.Page[records.Product]{}, err
	}
	items := make([]records.Product, 0, len(rows))
	for _, row := range rows {
		items = append(items, ProductFromRow(row))
	}
	return records.Page[records.Product]{Items: items, Pagination: records.NewPagination(q.Page, q.PerPage, total)}, nil
}

// Get loads one product.
func (s *ProductStore) Get(ctx context.Context, id uuid.UUID) (records.Product, error) {
	row, err := productsCollection.get(ctx, s.pool, id)
	if err != nil {
		return records.Product{}, err
	}
	return ProductFromRow(row), nil
}
