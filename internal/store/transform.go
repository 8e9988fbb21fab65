package store

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/storeledger/backoffice/internal/records"
)

// SaleFromRow maps a joined sales row into the domain shape.
func SaleFromRow(row SaleRow) records.Sale {
	sale := records.Sale{
		ID:   row.ID,
		Date: row.Date,
		Product: ProductFromRow(ProductRow{
			ID:             row.ProductID,
			Category:       row.ProductCategory,
			Brand:          row.ProductBrand,
			Model:          row.ProductModel,
			IMEI:           row.ProductIMEI,
			WarrantyMonths: row.ProductWarrantyMonths,
		}),
		Quantity:      int(row.Quantity),
		UnitPrice:     row.UnitPrice.InexactFloat64(),
		TotalAmount:   row.TotalAmount.InexactFloat64(),
		PaymentMethod: records.PaymentMethod(row.PaymentMethod),
		CustomerName:  text(row.CustomerName),
		CustomerPhone: text(row.CustomerPhone),
		SalesPerson:   text(row.SalesPerson),
		Commission:    nullMoney(row.Commission),
		IsReturned:    row.IsReturned.Valid && row.IsReturned.Bool,
		Notes:         text(row.Notes),
		CreatedAt:     timestamp(row.CreatedAt),
	}
	sale.WarrantyStartDate = row.Date
	if row.WarrantyStartDate.Valid {
		sale.WarrantyStartDate = row.WarrantyStartDate.Time
	}
	return sale
}

// SaleToRow maps a domain sale into its backend row.
func SaleToRow(sale records.Sale) SaleRow {
	product := ProductToRow(sale.Product)
	row := SaleRow{
		ID:                    sale.ID,
		Date:                  sale.Date,
		ProductID:             product.ID,
		ProductCategory:       product.Category,
		ProductBrand:          product.Brand,
		ProductModel:          product.Model,
		ProductIMEI:           product.IMEI,
		ProductWarrantyMonths: product.WarrantyMonths,
		Quantity:              int32(sale.Quantity),
		UnitPrice:             decimal.NewFromFloat(sale.UnitPrice),
		TotalAmount:           decimal.NewFromFloat(sale.TotalAmount),
		PaymentMethod:         string(sale.PaymentMethod),
		CustomerName:          toText(sale.CustomerName),
		CustomerPhone:         toText(sale.CustomerPhone),
		SalesPerson:           toText(sale.SalesPerson),
		Commission:            decimal.NewNullDecimal(decimal.NewFromFloat(sale.Commission)),
		IsReturned:            pgtype.Bool{Bool: sale.IsReturned, Valid: true},
		WarrantyStartDate:     toDate(sale.WarrantyStartDate),
		Notes:                 toText(sale.Notes),
	}
	return row
}

// ProductFromRow maps a product row into the domain descriptor.
func ProductFromRow(row ProductRow) records.Product {
	product := records.Product{
		ID:             row.ID,
		Category:       text(row.Category),
		Brand:          text(row.Brand),
		Model:          text(row.Model),
		IMEI:           text(row.IMEI),
		WarrantyMonths: records.DefaultWarrantyMonths,
	}
	if row.WarrantyMonths.Valid {
		product.WarrantyMonths = int(row.WarrantyMonths.Int32)
	}
	return product
}

// ProductToRow maps a product descriptor into its backend row.
func ProductToRow(product records.Product) ProductRow {
	months := product.WarrantyMonths
	if months <= 0 {
		months = records.DefaultWarrantyMonths
	}
	return ProductRow{
		ID:             product.ID,
		Category:       toText(product.Category),
		Brand:          toText(product.Brand),
		Model:          toText(product.Model),
		IMEI:           toText(product.IMEI),
		WarrantyMonths: pgtype.Int4{Int32: int32(months), Valid: true},
	}
}

// ExpenseFromRow maps an expenses row into the domain shape.
func ExpenseFromRow(row ExpenseRow) records.Expense {
	status := records.ApprovalStatus(text(row.ApprovalStatus))
	if status == "" {
		status = records.ApprovalPending
	}
	return records.Expense{
		ID:                 row.ID,
		Date:               row.Date,
		Category:           text(row.Category),
		Subcategory:        text(row.Subcategory),
		Amount:             row.Amount.InexactFloat64(),
		Description:        text(row.Description),
		Vendor:             text(row.Vendor),
		PaymentMethod:      records.ExpensePaymentMethod(row.PaymentMethod),
		ApprovalStatus:     status,
		ApprovedBy:         text(row.ApprovedBy),
		IsRecurring:        row.IsRecurring.Valid && row.IsRecurring.Bool,
		RecurringFrequency: records.Frequency(text(row.RecurringFrequency)),
		FromLocation:       text(row.FromLocation),
		ToLocation:         text(row.ToLocation),
		CreatedAt:          timestamp(row.CreatedAt),
	}
}

// ExpenseToRow maps a domain expense into its backend row.
func ExpenseToRow(expense records.Expense) ExpenseRow {
	return ExpenseRow{
		ID:                 expense.ID,
		Date:               expense.Date,
		Category:           toText(expense.Category),
		Subcategory:        toText(expense.Subcategory),
		Amount:             decimal.NewFromFloat(expense.Amount),
		Description:        toText(expense.Description),
		Vendor:             toText(expense.Vendor),
		PaymentMethod:      string(expense.PaymentMethod),
		ApprovalStatus:     toText(string(expense.ApprovalStatus)),
		ApprovedBy:         toText(expense.ApprovedBy),
		IsRecurring:        pgtype.Bool{Bool: expense.IsRecurring, Valid: true},
		RecurringFrequency: toText(string(expense.RecurringFrequency)),
		FromLocation:       toText(expense.FromLocation),
		ToLocation:         toText(expense.ToLocation),
	}
}

// EmployeeFromRow maps an employees row into the domain shape.
func EmployeeFromRow(row EmployeeRow) records.Employee {
	employee := records.Employee{
		ID:               row.ID,
		Name:             row.Name,
		Position:         text(row.Position),
		Department:       text(row.Department),
		Salary:           row.Salary.InexactFloat64(),
		CommissionRate:   nullMoney(row.CommissionRate),
		IsActive:         row.IsActive.Valid && row.IsActive.Bool,
		Phone:            text(row.Phone),
		Email:            text(row.Email),
		Address:          text(row.Address),
		EmergencyContact: text(row.EmergencyContact),
		BankAccount:      text(row.BankAccount),
		AadharNumber:     text(row.AadharNumber),
		PanNumber:        text(row.PanNumber),
		CreatedAt:        timestamp(row.CreatedAt),
	}
	if row.JoinDate.Valid {
		employee.JoinDate = row.JoinDate.Time
	}
	return employee
}

// EmployeeToRow maps a domain employee into its backend row.
func EmployeeToRow(employee records.Employee) EmployeeRow {
	return EmployeeRow{
		ID:               employee.ID,
		Name:             employee.Name,
		Position:         toText(employee.Position),
		Department:       toText(employee.Department),
		Salary:           decimal.NewFromFloat(employee.Salary),
		CommissionRate:   decimal.NewNullDecimal(decimal.NewFromFloat(employee.CommissionRate)),
		JoinDate:         toDate(employee.JoinDate),
		IsActive:         pgtype.Bool{Bool: employee.IsActive, Valid: true},
		Phone:            toText(employee.Phone),
		Email:            toText(employee.Email),
		Address:          toText(employee.Address),
		EmergencyContact: toText(employee.EmergencyContact),
		BankAccount:      toText(employee.BankAccount),
		AadharNumber:     toText(employee.AadharNumber),
		PanNumber:        toText(employee.PanNumber),
	}
}

func text(v pgtype.Text) string {
	if !v.Valid {
		return ""
	}
	return v.String
}

func toText(v string) pgtype.Text {
	if v == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: v, Valid: true}
}

func nullMoney(v decimal.NullDecimal) float64 {
	if !v.Valid {
		return 0
	}
	return v.Decimal.InexactFloat64()
}

func toDate(t time.Time) pgtype.Date {
	if t.IsZero() {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: t, Valid: true}
}

func timestamp(v pgtype.Timestamptz) time.Time {
	if !v.Valid {
		return time.Time{}
	}
	return v.Time
}
