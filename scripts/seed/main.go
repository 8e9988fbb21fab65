package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/storeledger/backoffice/internal/app"
	"github.com/storeledger/backoffice/internal/employees"
	"github.com/storeledger/backoffice/internal/expenses"
	"github.com/storeledger/backoffice/internal/platform/db"
	"github.com/storeledger/backoffice/internal/sales"
	"github.com/storeledger/backoffice/internal/store"
)

// nopInvalidator skips cache invalidation; the seed runs before any report
// is cached.
type nopInvalidator struct{}

func (nopInvalidator) Invalidate(context.Context) error { return nil }

func main() {
	envFile := flag.String("env", "", "path to an env file (default .env)")
	days := flag.Int("days", 60, "how many days of sales and expenses to generate")
	flag.Parse()

	cfg, err := app.LoadConfig(*envFile)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	ctx := context.Background()
	pool, err := db.New(ctx, cfg.PGDSN, db.Options{})
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	if err := store.Migrate(ctx, pool); err != nil {
		log.Fatalf("apply schema: %v", err)
	}

	logger := app.NewLogger(cfg)
	loc := cfg.Location()
	employeeStore := store.NewEmployeeStore(pool)
	staff := employees.NewService(employeeStore, nopInvalidator{}, loc, logger)
	saleSvc := sales.NewService(store.NewSalesStore(pool), store.NewProductStore(pool), employeeStore, nopInvalidator{}, loc, logger)
	expenseSvc := expenses.NewService(store.NewExpenseStore(pool), nopInvalidator{}, loc, logger)

	fmt.Println("→ Seeding employees...")
	names, err := seedEmployees(ctx, staff)
	if err != nil {
		log.Fatalf("seed employees: %v", err)
	}

	today := time.Now().In(loc)
	fmt.Println("→ Seeding sales...")
	if err := seedSales(ctx, saleSvc, names, today, *days); err != nil {
		log.Fatalf("seed sales: %v", err)
	}

	fmt.Println("→ Seeding expenses...")
	if err := seedExpenses(ctx, expenseSvc, today, *days); err != nil {
		log.Fatalf("seed expenses: %v", err)
	}

	fmt.Println("✓ Seed complete at", time.Now().Format(time.RFC3339))
}

func seedEmployees(ctx context.Context, svc *employees.Service) ([]string, error) {
	inactive := false
	reqs := []employees.CreateEmployeeRequest{
		{Name: "Ravi Kumar", Position: "Sales Executive", Department: "Sales", Salary: 18000, CommissionRate: 2, JoinDate: "2023-04-01", Email: "ravi@example.com"},
		{Name: "Priya Nair", Position: "Store Manager", Department: "Operations", Salary: 32000, CommissionRate: 1, JoinDate: "2022-01-10", Email: "priya@example.com"},
		{Name: "Arjun Mehta", Position: "Sales Executive", Department: "Sales", Salary: 17000, CommissionRate: 2.5, JoinDate: "2024-02-15"},
		{Name: "Asha Rao", Position: "Technician", Department: "Service", Salary: 15000, JoinDate: "2021-06-01", IsActive: &inactive},
	}
	var sellers []string
	for _, req := range reqs {
		emp, err := svc.Create(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", req.Name, err)
		}
		if emp.IsActive && emp.CommissionRate > 0 {
			sellers = append(sellers, emp.Name)
		}
	}
	return sellers, nil
}

var catalog = []sales.ProductInput{
	{Category: "smartphone", Brand: "Samsung", Model: "Galaxy A15", WarrantyMonths: 12},
	{Category: "smartphone", Brand: "Apple", Model: "iPhone 15", WarrantyMonths: 12},
	{Category: "smartphone", Brand: "Xiaomi", Model: "Redmi Note 13", WarrantyMonths: 12},
	{Category: "accessory", Brand: "boAt", Model: "Airdopes 141", WarrantyMonths: 6},
	{Category: "accessory", Brand: "Anker", Model: "PowerCore 10000", WarrantyMonths: 18},
}

var prices = []float64{15999, 79900, 18999, 1299, 2499}

var salePayments = []string{"cash", "card", "upi", "emi"}

func seedSales(ctx context.Context, svc *sales.Service, sellers []string, today time.Time, days int) error {
	for d := 0; d < days; d++ {
		date := today.AddDate(0, 0, -d).Format("2006-01-02")
		perDay := 1 + d%3
		for i := 0; i < perDay; i++ {
			n := d*3 + i
			product := catalog[n%len(catalog)]
			product.IMEI = fmt.Sprintf("35%013d", n)
			req := sales.CreateSaleRequest{
				Date:          date,
				Product:       product,
				Quantity:      1 + n%2,
				UnitPrice:     prices[n%len(prices)],
				PaymentMethod: salePayments[n%len(salePayments)],
				CustomerName:  fmt.Sprintf("Walk-in %d", n+1),
			}
			if len(sellers) > 0 {
				req.SalesPerson = sellers[n%len(sellers)]
			}
			if _, err := svc.Create(ctx, req); err != nil {
				return fmt.Errorf("sale %d: %w", n, err)
			}
		}
	}
	return nil
}

func seedExpenses(ctx context.Context, svc *expenses.Service, today time.Time, days int) error {
	for d := 0; d < days; d += 7 {
		date := today.AddDate(0, 0, -d).Format("2006-01-02")
		reqs := []expenses.CreateExpenseRequest{
			{Date: date, Category: "utilities", Subcategory: "electricity", Amount: 2400, Description: "Power bill", Vendor: "State Electricity Board", PaymentMethod: "online", IsRecurring: true, RecurringFrequency: "weekly"},
			{Date: date, Category: "transport", Subcategory: "travel", Amount: 650, Description: "Stock pickup", PaymentMethod: "cash", FromLocation: "Store", ToLocation: "Distributor"},
		}
		if d%28 == 0 {
			reqs = append(reqs, expenses.CreateExpenseRequest{
				Date: date, Category: "rent", Amount: 45000, Description: "Shop rent", Vendor: "Landlord", PaymentMethod: "cheque", IsRecurring: true, RecurringFrequency: "monthly",
			})
		}
		for _, req := range reqs {
			exp, err := svc.Create(ctx, req)
			if err != nil {
				return fmt.Errorf("%s on %s: %w", req.Description, date, err)
			}
			if d > 0 {
				if _, err := svc.Approve(ctx, exp.ID, expenses.DecisionRequest{ApprovedBy: "Priya Nair"}); err != nil {
					return fmt.Errorf("approve %s: %w", exp.ID, err)
				}
			}
		}
	}
	return nil
}
