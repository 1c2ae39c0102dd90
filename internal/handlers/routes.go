package handlers

import (
	"net/http"

	"go-inventory-agent/internal/middleware"
	"go-inventory-agent/internal/models"

	"github.com/gin-gonic/gin"
)

// Routes mounts the API on r.
func (h *Handler) Routes(r gin.IRouter) {
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "online"}) })
	r.POST("/login", h.Login)
	if h.AllowRegistration {
		r.POST("/register", h.Register)
	}

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(h.Tokens))
	{
		api.GET("/products", h.GetProducts)
		api.GET("/products/low-stock", h.LowStock)
		api.GET("/products/categories", h.Categories)
		api.GET("/products/scan/:sku", h.ScanProduct)
		api.GET("/products/:id", h.GetProduct)
		api.GET("/products/:id/movements", h.Movements)
		api.GET("/movements", h.Movements)

		api.GET("/suppliers", h.GetSuppliers)
		api.GET("/suppliers/:id", h.GetSupplier)
		api.POST("/suppliers", h.AddSupplier)
		api.PUT("/suppliers/:id", h.UpdateSupplier)

		api.POST("/bills", h.CreateBill)
		api.GET("/bills", h.GetBills)
		api.GET("/bills/:id", h.GetBill)
		api.GET("/bills/:id/print", h.PrintBill)

		api.POST("/invoices", h.CreateInvoice)
		api.GET("/invoices", h.GetInvoices)
		api.GET("/invoices/:id", h.GetInvoice)
		api.PATCH("/invoices/:id/status", h.UpdateInvoiceStatus)

		api.POST("/sales-orders", h.CreateSalesOrder)
		api.GET("/sales-orders", h.GetSalesOrders)
		api.GET("/sales-orders/:id", h.GetSalesOrder)
		api.PATCH("/sales-orders/:id/status", h.UpdateSalesOrderStatus)
		api.POST("/sales-orders/:id/invoice", h.InvoiceSalesOrder)

		api.POST("/purchase-orders", h.CreatePurchaseOrder)
		api.GET("/purchase-orders", h.GetPurchaseOrders)
		api.GET("/purchase-orders/:id", h.GetPurchaseOrder)
		api.PATCH("/purchase-orders/:id/status", h.UpdatePurchaseOrderStatus)

		api.POST("/packages", h.CreatePackage)
		api.GET("/packages", h.GetPackages)
		api.GET("/packages/:id", h.GetPackage)
		api.PATCH("/packages/:id/status", h.UpdatePackageStatus)
		api.GET("/packages/:id/tracking", h.TrackPackage)
		api.POST("/packages/:id/sync", h.SyncPackage)

		api.GET("/reports", h.GetSalesReport)
		api.GET("/reports/forecast", h.GetForecast)
		api.GET("/reports/valuation", h.GetStockValuation)

		api.GET("/exports/products.csv", h.ExportProductsCSV)
		api.GET("/exports/products.xlsx", h.ExportProductsXLSX)
		api.GET("/exports/bills.csv", h.ExportBillsCSV)
		api.GET("/exports/purchase-orders.csv", h.ExportPurchaseOrdersCSV)

		api.POST("/ask", h.AskAI)
		api.POST("/ask/stream", h.StreamAI)
		api.POST("/ask/pending", h.ResolvePending)
		api.DELETE("/ask/sessions/:token/pending", h.CancelPending)
		api.GET("/ask/sessions/:token", h.GetSession)
		api.DELETE("/ask/sessions/:token", h.DeleteSession)

		// ADMIN AND MANAGER ONLY
		admin := api.Group("/")
		admin.Use(middleware.RequireRole(models.RoleAdmin, models.RoleManager))
		{
			admin.POST("/products", h.AddProduct)
			admin.PUT("/products/:id", h.UpdateProduct)
			admin.DELETE("/products/:id", h.DeleteProduct)
			admin.POST("/products/:id/stock", h.AdjustStock)

			admin.DELETE("/suppliers/:id", h.DeleteSupplier)
			admin.DELETE("/bills/:id", h.DeleteBill)
			admin.DELETE("/packages/:id", h.DeletePackage)

			admin.GET("/users", h.ListUsers)
			admin.POST("/users", h.CreateUser)
			admin.PUT("/users/:id", h.UpdateUser)
			admin.DELETE("/users/:id", h.DeleteUser)
		}
	}
}
