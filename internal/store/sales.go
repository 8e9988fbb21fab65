package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storeledger/backoffice/internal/platform/db"
	"github.com/storeledger/backoffice/internal/records"
)

var salesCollection = collection[SaleRow]{
	table: "sales",
	alias: "s",
	selectSQL: `SELECT s.id, s.date, s.product_id,
       p.category AS product_category, p.brand AS product_brand, p.model AS product_model,
       p.imei AS product_imei, p.warranty_months AS product_warranty_months,
       s.quantity, s.unit_price, s.total_amount, s.payment_method,
       s.customer_name, s.customer_phone, s.sales_person, s.commission,
       s.is_returned, s.warranty_start_date, s.notes, s.created_at`,
	fromSQL:     "FROM sales s JOIN products p ON p.id = s.product_id",
	dateField:   "date",
	defaultSort: "date",
	fields: map[string]field{
		"id":                     {alias: "s", column: "id", kind: kindString, readOnly: true},
		"date":                   {alias: "s", column: "date", kind: kindTime, sortable: true},
		"quantity":               {alias: "s", column: "quantity", kind: kindInt, sortable: true},
		"unitPrice":              {alias: "s", column: "unit_price", kind: kindMoney, sortable: true},
		"totalAmount":            {alias: "s", column: "total_amount", kind: kindMoney, sortable: true},
		"paymentMethod":          {alias: "s", column: "payment_method", kind: kindString, sortable: true, filter: true},
		"customerName":           {alias: "s", column: "customer_name", kind: kindText, sortable: true, filter: true},
		"customerPhone":          {alias: "s", column: "customer_phone", kind: kindText, filter: true},
		"salesPerson":            {alias: "s", column: "sales_person", kind: kindText, sortable: true, filter: true},
		"commission":             {alias: "s", column: "commission", kind: kindNullMoney, sortable: true},
		"isReturned":             {alias: "s", column: "is_returned", kind: kindBool, filter: true},
		"warrantyStartDate":      {alias: "s", column: "warranty_start_date", kind: kindDate},
		"notes":                  {alias: "s", column: "notes", kind: kindText},
		"createdAt":              {alias: "s", column: "created_at", kind: kindTime, sortable: true, readOnly: true},
		"product.category":       {alias: "p", column: "category", kind: kindText, sortable: true, filter: true},
		"product.brand":          {alias: "p", column: "brand", kind: kindText, sortable: true, filter: true},
		"product.model":          {alias: "p", column: "model", kind: kindText, sortable: true, filter: true},
		"product.imei":           {alias: "p", column: "imei", kind: kindText, filter: true},
		"product.warrantyMonths": {alias: "p", column: "warranty_months", kind: kindInt},
	},
}

// SalesStore persists sales together with their product rows.
type SalesStore struct {
	pool *pgxpool.Pool
}

// NewSalesStore constructs a sales store over the pool.
func NewSalesStore(pool *pgxpool.Pool) *SalesStore {
	return &SalesStore{pool: pool}
}

// List reads one page of sales.
func (s *SalesStore) List(ctx context.Context, q records.ListQuery) (records.Page[records.Sale], error) {
	q = q.Normalize()
	rows, total, err := salesCollection.list(ctx, s.pool, q)
	if err != nil {
		return records.Page[records.Sale]{}, err
	}
	items := make([]records.Sale, 0, len(rows))
	for _, row := range rows {
		items = append(items, SaleFromRow(row))
	}
	return records.Page[records.Sale]{Items: items, Pagination: records.NewPagination(q.Page, q.PerPage, total)}, nil
}

// Get loads one sale.
func (s *SalesStore) Get(ctx context.Context, id uuid.UUID) (records.Sale, error) {
	row, err := salesCollection.get(ctx, s.pool, id)
	if err != nil {
		return records.Sale{}, err
	}
	return SaleFromRow(row), nil
}

// Create inserts the product and then the sale in one transaction.
func (s *SalesStore) Create(ctx context.Context, sale records.Sale) (records.Sale, error) {
	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	if sale.Product.ID == uuid.Nil {
		sale.Product.ID = uuid.New()
	}
	row := SaleToRow(sale)
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `INSERT INTO products (id, category, brand, model, imei, warranty_months)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			row.ProductID, row.ProductCategory, row.ProductBrand, row.ProductModel, row.ProductIMEI, row.ProductWarrantyMonths,
		); err != nil {
			return fmt.Errorf("store: insert product: %w", translate(err))
		}
		if _, err := tx.Exec(ctx, `INSERT INTO sales (id, date, product_id, quantity, unit_price, total_amount,
			payment_method, customer_name, customer_phone, sales_person, commission, is_returned,
			warranty_start_date, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			row.ID, row.Date, row.ProductID, row.Quantity, row.UnitPrice, row.TotalAmount,
			row.PaymentMethod, row.CustomerName, row.CustomerPhone, row.SalesPerson, row.Commission, row.IsReturned,
			row.WarrantyStartDate, row.Notes,
		); err != nil {
			return fmt.Errorf("store: insert sale: %w", translate(err))
		}
		return nil
	})
	if err != nil {
		return records.Sale{}, err
	}
	return s.Get(ctx, sale.ID)
}

// Update applies a partial update. Keys prefixed with "product." update the
// joined product row.
func (s *SalesStore) Update(ctx context.Context, id uuid.UUID, patch records.Patch) (records.Sale, error) {
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := salesCollection.update(ctx, tx, id, patch); err != nil {
			return err
		}
		sets, args, err := salesCollection.assignments("p", patch, 1)
		if err != nil {
			return err
		}
		if len(sets) == 0 {
			return nil
		}
		query := fmt.Sprintf("UPDATE products SET %s WHERE id = (SELECT product_id FROM sales WHERE id = $%d)",
			strings.Join(sets, ", "), len(args)+1)
		args = append(args, id)
		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("store: update product: %w", translate(err))
		}
		if tag.RowsAffected() == 0 {
			return records.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return records.Sale{}, err
	}
	return s.Get(ctx, id)
}

// Delete removes the sale and its product row.
func (s *SalesStore) Delete(ctx context.Context, id uuid.UUID) error {
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		var productID uuid.UUID
		err := tx.QueryRow(ctx, "DELETE FROM sales WHERE id = $1 RETURNING product_id", id).Scan(&productID)
		if err != nil {
			return translate(err)
		}
		_, err = tx.Exec(ctx, `DELETE FROM products WHERE id = $1
			AND NOT EXISTS (SELECT 1 FROM sales WHERE product_id = $1)`, productID)
		if err != nil {
			return fmt.Errorf("store: delete product: %w", err)
		}
		return nil
	})
}
