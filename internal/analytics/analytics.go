// Package analytics aggregates records that were already loaded into memory.
// Nothing here touches the database.
package analytics

import (
	"sort"
	"strings"
	"time"

	"go-inventory-agent/internal/models"

	"github.com/shopspring/decimal"
)

type ProductSales struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// TopProducts ranks line items by units sold, grouped by name, ties broken by name.
// n <= 0 returns every product.
func TopProducts(items []models.LineItem, n int) []ProductSales {
	byName := map[string]*ProductSales{}
	for _, it := range items {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			name = "Unknown"
		}
		ps, ok := byName[name]
		if !ok {
			ps = &ProductSales{Name: name}
			byName[name] = ps
		}
		ps.Quantity += it.Quantity
		ps.Revenue = ps.Revenue.Add(lineRevenue(it))
	}

	out := make([]ProductSales, 0, len(byName))
	for _, ps := range byName {
		out = append(out, *ps)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		return out[i].Name < out[j].Name
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func lineRevenue(it models.LineItem) decimal.Decimal {
	if !it.Total.IsZero() {
		return it.Total
	}
	return it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

type SalesSummary struct {
	Revenue           decimal.Decimal `json:"revenue"`
	Orders            int             `json:"orders"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	TopProducts       []ProductSales  `json:"top_products"`
}

// SummarizeSales totals sales orders and ranks their top n products.
func SummarizeSales(orders []models.SalesOrder, topN int) SalesSummary {
	s := SalesSummary{Revenue: decimal.Zero, AverageOrderValue: decimal.Zero, TopProducts: []ProductSales{}}
	var items []models.LineItem
	for _, o := range orders {
		s.Revenue = s.Revenue.Add(o.TotalAmount)
		items = append(items, o.Items...)
	}
	s.Orders = len(orders)
	if s.Orders > 0 {
		s.AverageOrderValue = models.RoundMoney(s.Revenue.Div(decimal.NewFromInt(int64(s.Orders))))
	}
	s.TopProducts = TopProducts(items, topN)
	return s
}

type BillKPIs struct {
	Revenue      decimal.Decimal `json:"revenue"`
	Bills        int             `json:"bills"`
	AverageBill  decimal.Decimal `json:"average_bill"`
	TaxCollected decimal.Decimal `json:"tax_collected"`
	Discounts    decimal.Decimal `json:"discounts"`
	ItemsSold    int             `json:"items_sold"`
}

func SummarizeBills(bills []models.Bill) BillKPIs {
	k := BillKPIs{Revenue: decimal.Zero, AverageBill: decimal.Zero, TaxCollected: decimal.Zero, Discounts: decimal.Zero}
	for _, b := range bills {
		k.Revenue = k.Revenue.Add(b.Total)
		k.TaxCollected = k.TaxCollected.Add(b.Tax)
		k.Discounts = k.Discounts.Add(b.Discount)
		k.ItemsSold += b.Items.Quantity()
	}
	k.Bills = len(bills)
	if k.Bills > 0 {
		k.AverageBill = models.RoundMoney(k.Revenue.Div(decimal.NewFromInt(int64(k.Bills))))
	}
	return k
}

type Forecast struct {
	ProductID *uint  `json:"product_id,omitempty"`
	Name      string `json:"name"`
	Sold      int    `json:"sold"`
	Expected  int    `json:"expected"`
}

// DemandForecast predicts next period's demand per product as exactly the
// quantity sold in the period ending at asOf, that is in (asOf-period, asOf].
// There is no smoothing and no trend. Lines without a product are keyed by name.
func DemandForecast(orders []models.SalesOrder, products []models.Product, period time.Duration, asOf time.Time) []Forecast {
	names := make(map[uint]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}
	from := asOf.Add(-period)

	type key struct {
		id   uint
		name string
	}
	sold := map[key]*Forecast{}
	for _, o := range orders {
		if !o.OrderDate.After(from) || o.OrderDate.After(asOf) {
			continue
		}
		for _, it := range o.Items {
			k := key{name: it.Name}
			if it.ProductID != nil {
				k = key{id: *it.ProductID}
			}
			f, ok := sold[k]
			if !ok {
				f = &Forecast{Name: it.Name}
				if it.ProductID != nil {
					id := *it.ProductID
					f.ProductID = &id
					if n, known := names[id]; known {
						f.Name = n
					}
				}
				if f.Name == "" {
					f.Name = "Unknown Product"
				}
				sold[k] = f
			}
			f.Sold += it.Quantity
		}
	}

	out := make([]Forecast, 0, len(sold))
	for _, f := range sold {
		f.Expected = f.Sold
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Expected != out[j].Expected {
			return out[i].Expected > out[j].Expected
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// ValuationItem is one product row of the stock valuation report.
type ValuationItem struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	CostPrice decimal.Decimal `json:"cost_price"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

// CategoryGroup is the valuation of one category.
type CategoryGroup struct {
	CategoryName string          `json:"category_name"`
	Items        []ValuationItem `json:"items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

type Valuation struct {
	Categories []CategoryGroup `json:"categories"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// StockValuation prices stock on hand at cost, grouped by category.
func StockValuation(products []models.Product) Valuation {
	grouped := map[string]*CategoryGroup{}
	grand := decimal.Zero
	for _, p := range products {
		cat := p.Category
		if cat == "" {
			cat = "Uncategorized"
		}
		g, ok := grouped[cat]
		if !ok {
			g = &CategoryGroup{CategoryName: cat, Items: []ValuationItem{}, Subtotal: decimal.Zero}
			grouped[cat] = g
		}
		total := p.Cost.Mul(decimal.NewFromInt(int64(p.Quantity)))
		g.Items = append(g.Items, ValuationItem{Name: p.Name, Quantity: p.Quantity, CostPrice: p.Cost, TotalCost: total})
		g.Subtotal = g.Subtotal.Add(total)
		grand = grand.Add(total)
	}

	v := Valuation{Categories: make([]CategoryGroup, 0, len(grouped)), GrandTotal: models.RoundMoney(grand)}
	for _, g := range grouped {
		g.Subtotal = models.RoundMoney(g.Subtotal)
		v.Categories = append(v.Categories, *g)
	}
	sort.Slice(v.Categories, func(i, j int) bool { return v.Categories[i].CategoryName < v.Categories[j].CategoryName })
	return v
}

// RevenueByDay sums bill totals per calendar day (YYYY-MM-DD), ready to chart.
func RevenueByDay(bills []models.Bill) map[string]float64 {
	sums := map[string]decimal.Decimal{}
	for _, b := range bills {
		day := b.CreatedAt.Format(time.DateOnly)
		sums[day] = sums[day].Add(b.Total)
	}
	out := make(map[string]float64, len(sums))
	for day, sum := range sums {
		out[day] = sum.Round(2).InexactFloat64()
	}
	return out
}
