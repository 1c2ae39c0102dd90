// Command seed loads demo data through the services so every opening
// quantity is recorded in the stock ledger.
package main

import (
	"context"
	"errors"
	"flag"

	"go-inventory-agent/internal/auth"
	"go-inventory-agent/internal/config"
	"go-inventory-agent/internal/database"
	"go-inventory-agent/internal/inventory"
	"go-inventory-agent/internal/logger"
	"go-inventory-agent/internal/models"
	"go-inventory-agent/internal/suppliers"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type demoProduct struct {
	name, category, unit string
	price, cost          string
	quantity, reorder    int
	supplier             string
}

var demoSuppliers = []models.Supplier{
	{Name: "Acme Wholesale", ContactPerson: "Ravi Kumar", Email: "orders@acme.example", Phone: "+91 98000 00001"},
	{Name: "Bharat Office Supplies", ContactPerson: "Meera Shah", Email: "sales@bharat.example", Phone: "+91 98000 00002"},
	{Name: "Sunrise Foods", ContactPerson: "Arjun Nair", Email: "hello@sunrise.example"},
}

var demoProducts = []demoProduct{
	{"A4 Paper Ream", "Stationery", "ream", "320", "250", 40, 10, "Bharat Office Supplies"},
	{"Ballpoint Pen (Blue)", "Stationery", "pcs", "10", "6", 200, 50, "Bharat Office Supplies"},
	{"Stapler", "Stationery", "pcs", "150", "95", 4, 5, "Bharat Office Supplies"},
	{"Packing Tape", "Packaging", "roll", "60", "38", 25, 10, "Acme Wholesale"},
	{"Cardboard Box (Medium)", "Packaging", "pcs", "35", "20", 8, 20, "Acme Wholesale"},
	{"Basmati Rice 5kg", "Groceries", "bag", "650", "520", 15, 5, "Sunrise Foods"},
	{"Green Tea 100g", "Groceries", "box", "180", "120", 3, 6, "Sunrise Foods"},
}

func main() {
	adminUser := flag.String("admin", "admin", "admin username")
	adminEmail := flag.String("email", "admin@example.com", "admin email")
	adminPass := flag.String("password", "changeme123", "admin password")
	flag.Parse()

	cfg, _, err := config.Load()
	if err != nil {
		logger.New(config.EnvDevelopment, "info").Fatal("loading config", zap.Error(err))
	}
	log := logger.New(cfg.App.Env, cfg.App.LogLevel)
	defer func() { _ = log.Sync() }()

	db, err := database.Get(cfg.DB, log)
	if err != nil {
		log.Fatal("connecting to database", zap.Error(err))
	}
	defer func() { _ = database.Close() }()
	if err := database.InitDB(db); err != nil {
		log.Fatal("migrating database", zap.Error(err))
	}

	ctx := context.Background()
	users := auth.NewService(db, log)
	if _, err := users.CreateUser(ctx, *adminUser, *adminEmail, *adminPass, models.RoleAdmin); err != nil {
		if !errors.Is(err, auth.ErrUserExists) {
			log.Fatal("creating admin", zap.Error(err))
		}
		log.Info("admin already exists", zap.String("username", *adminUser))
	}

	sups := suppliers.NewService(db, log)
	supplierIDs := map[string]uint{}
	for _, s := range demoSuppliers {
		existing, err := sups.FindByName(ctx, s.Name)
		if err == nil {
			supplierIDs[s.Name] = existing.ID
			continue
		}
		created, err := sups.Create(ctx, s)
		if err != nil {
			log.Fatal("creating supplier", zap.String("name", s.Name), zap.Error(err))
		}
		supplierIDs[s.Name] = created.ID
	}

	inv := inventory.NewService(db, log)
	existing, err := inv.ListProducts(ctx, inventory.ProductFilter{})
	if err != nil {
		log.Fatal("listing products", zap.Error(err))
	}
	if len(existing) > 0 {
		log.Info("catalog already populated, skipping products", zap.Int("products", len(existing)))
		return
	}
	for _, p := range demoProducts {
		var supplierID *uint
		if id, ok := supplierIDs[p.supplier]; ok {
			supplierID = &id
		}
		_, err := inv.CreateProduct(ctx, inventory.ProductInput{
			Name:         p.name,
			Category:     p.category,
			Unit:         p.unit,
			Price:        decimal.RequireFromString(p.price),
			Cost:         decimal.RequireFromString(p.cost),
			Quantity:     p.quantity,
			ReorderLevel: p.reorder,
			SupplierID:   supplierID,
		})
		if err != nil {
			log.Fatal("creating product", zap.String("name", p.name), zap.Error(err))
		}
	}
	log.Info("seed complete", zap.Int("suppliers", len(demoSuppliers)), zap.Int("products", len(demoProducts)))
}
