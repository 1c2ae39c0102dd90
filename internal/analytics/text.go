package analytics

import (
	"fmt"
	"strings"

	"go-inventory-agent/internal/utils"
)

// SalesSummaryText renders a summary for the assistant context.
func SalesSummaryText(s SalesSummary) string {
	if s.Orders == 0 {
		return "No sales data available."
	}
	var b strings.Builder
	b.WriteString("--- SALES ANALYTICS ---\n")
	fmt.Fprintf(&b, "Total Revenue: %s\n", utils.FormatCurrency(s.Revenue))
	fmt.Fprintf(&b, "Total Orders: %d\n", s.Orders)
	fmt.Fprintf(&b, "Avg Order Value: %s\n", utils.FormatCurrency(s.AverageOrderValue))
	if len(s.TopProducts) > 0 {
		b.WriteString("Top Selling Products:\n")
		for _, p := range s.TopProducts {
			fmt.Fprintf(&b, "- %s: %d units\n", p.Name, p.Quantity)
		}
	}
	return b.String()
}

// ForecastText renders a demand forecast for the assistant context.
func ForecastText(forecasts []Forecast, periodLabel string) string {
	if len(forecasts) == 0 {
		return "No sales data available for forecasting."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "--- DEMAND FORECAST (next %s) ---\n", periodLabel)
	for _, f := range forecasts {
		fmt.Fprintf(&b, "- %s: sold %d in the last %s. Expected need: %d\n", f.Name, f.Sold, periodLabel, f.Expected)
	}
	return b.String()
}

// BillKPIText renders point-of-sale KPIs for the assistant context.
func BillKPIText(k BillKPIs) string {
	if k.Bills == 0 {
		return "No bills recorded."
	}
	return fmt.Sprintf("--- BILLING KPIs ---\nRevenue: %s from %d bills (avg %s)\nTax collected: %s, discounts given: %s, items sold: %d\n",
		utils.FormatCurrency(k.Revenue), k.Bills, utils.FormatCurrency(k.AverageBill),
		utils.FormatCurrency(k.TaxCollected), utils.FormatCurrency(k.Discounts), k.ItemsSold)
}
