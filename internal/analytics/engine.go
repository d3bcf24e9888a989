// Package analytics computes reporting views over invoice collections.
// Every function here is a pure reduction recomputed from scratch per call.
package analytics

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/invoicecapture-backend/internal/invoices"
	"github.com/angelmondragon/invoicecapture-backend/pkg/enums"
)

const (
	UnknownCity  = "Ville Inconnue"
	UnknownUser  = "Unknown"
	UnknownStore = "Inconnu"
	NoCity       = "-"

	DefaultTopUsers = 10

	filterAll = "all"
)

// GroupCount is one bar of a grouped count chart.
type GroupCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ByAgency counts invoices per submitter city, largest first.
func ByAgency(list []invoices.Invoice) []GroupCount {
	counts := map[string]int{}
	for _, inv := range list {
		counts[agencyName(inv)]++
	}
	return rank(counts)
}

// TopUsers counts invoices per submitter name and keeps the n largest.
func TopUsers(list []invoices.Invoice, n int) []GroupCount {
	if n <= 0 {
		n = DefaultTopUsers
	}
	counts := map[string]int{}
	for _, inv := range list {
		name := submitterName(inv)
		if name == "" {
			name = UnknownUser
		}
		counts[name]++
	}
	out := rank(counts)
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func rank(counts map[string]int) []GroupCount {
	out := make([]GroupCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, GroupCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func agencyName(inv invoices.Invoice) string {
	city := submitterCity(inv)
	if city == "" {
		return UnknownCity
	}
	runes := []rune(strings.ToLower(city))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// StoreSide aggregates the approved invoices of one compared submitter.
type StoreSide struct {
	Name          string          `json:"name"`
	Total         decimal.Decimal `json:"total"`
	Count         int             `json:"count"`
	AverageBasket decimal.Decimal `json:"average_basket"`
}

// StoreComparison compares two submitters. Difference is A.Total - B.Total.
type StoreComparison struct {
	A          StoreSide       `json:"a"`
	B          StoreSide       `json:"b"`
	Difference decimal.Decimal `json:"difference"`
}

// CompareStores compares the approved invoices of two submitters.
func CompareStores(list []invoices.Invoice, a, b string) StoreComparison {
	sideA := storeSide(list, a)
	sideB := storeSide(list, b)
	return StoreComparison{
		A:          sideA,
		B:          sideB,
		Difference: sideA.Total.Sub(sideB.Total),
	}
}

func storeSide(list []invoices.Invoice, name string) StoreSide {
	side := StoreSide{Name: name, Total: decimal.Zero, AverageBasket: decimal.Zero}
	for _, inv := range list {
		if inv.User == nil || inv.Status != enums.InvoiceStatusApproved || submitterName(inv) != name {
			continue
		}
		side.Total = side.Total.Add(inv.TotalAmount)
		side.Count++
	}
	if side.Count > 0 {
		side.AverageBasket = side.Total.Div(decimal.NewFromInt(int64(side.Count))).Round(2)
	}
	return side
}

// TrendQuery selects one product and optional filters. "all" or empty disables a filter.
type TrendQuery struct {
	Product  string
	City     string
	Category string
	User     string
	Metric   enums.PriceMetric
	HideZero bool
}

// TrendPoint is one observed price of the product.
type TrendPoint struct {
	Date          time.Time       `json:"date"`
	Price         decimal.Decimal `json:"price"`
	Store         string          `json:"store"`
	City          string          `json:"city"`
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
}

// ProductPriceTrend lists the prices of lines whose description equals q.Product,
// oldest first. Points sharing a date keep their input order.
func ProductPriceTrend(list []invoices.Invoice, q TrendQuery) []TrendPoint {
	points := []TrendPoint{}
	if q.Product == "" {
		return points
	}
	for _, inv := range list {
		if !matchesFilter(q.City, submitterCity(inv)) ||
			!matchesFilter(q.Category, inv.Category) ||
			!matchesFilter(q.User, submitterName(inv)) {
			continue
		}
		date := EffectiveDate(inv)
		for _, item := range inv.LineItems {
			if item.Description != q.Product {
				continue
			}
			price := linePrice(item, q.Metric)
			if q.HideZero && price.IsZero() {
				continue
			}
			points = append(points, TrendPoint{
				Date:          date,
				Price:         price,
				Store:         trendStore(inv),
				City:          trendCity(inv),
				InvoiceID:     inv.ID,
				InvoiceNumber: inv.InvoiceNumber,
			})
		}
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points
}

func linePrice(item invoices.LineItem, metric enums.PriceMetric) decimal.Decimal {
	switch metric {
	case enums.PriceMetricNetPrice:
		return nullOrZero(item.NetPrice)
	case enums.PriceMetricPromotionPrice:
		return nullOrZero(item.PromotionPrice)
	default:
		return item.UnitPrice
	}
}

func nullOrZero(v decimal.NullDecimal) decimal.Decimal {
	if !v.Valid {
		return decimal.Zero
	}
	return v.Decimal
}

func trendStore(inv invoices.Invoice) string {
	if name := submitterName(inv); name != "" {
		return name
	}
	if store := strings.TrimSpace(inv.StoreName); store != "" {
		return store
	}
	return UnknownStore
}

func trendCity(inv invoices.Invoice) string {
	if city := submitterCity(inv); city != "" {
		return city
	}
	return NoCity
}

// CatalogQuery restricts products by category and users by city.
type CatalogQuery struct {
	Category string
	City     string
}

// CatalogSet holds the distinct values offered by the report filters.
type CatalogSet struct {
	Cities     []string `json:"cities"`
	Categories []string `json:"categories"`
	Products   []string `json:"products"`
	Users      []string `json:"users"`
}

// Catalogs collects sorted distinct filter values. Empty strings are skipped.
func Catalogs(list []invoices.Invoice, q CatalogQuery) CatalogSet {
	cities := map[string]struct{}{}
	categories := map[string]struct{}{}
	products := map[string]struct{}{}
	users := map[string]struct{}{}

	for _, inv := range list {
		city := submitterCity(inv)
		addValue(cities, city)
		addValue(categories, inv.Category)
		if matchesFilter(q.Category, inv.Category) {
			for _, item := range inv.LineItems {
				addValue(products, item.Description)
			}
		}
		if matchesFilter(q.City, city) {
			addValue(users, submitterName(inv))
		}
	}

	return CatalogSet{
		Cities:     sortedKeys(cities),
		Categories: sortedKeys(categories),
		Products:   sortedKeys(products),
		Users:      sortedKeys(users),
	}
}

func addValue(set map[string]struct{}, value string) {
	if value == "" {
		return
	}
	set[value] = struct{}{}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Summary is the dashboard headline.
type Summary struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
	Skipped  int `json:"skipped"`
}

// Summarize counts invoices per status.
func Summarize(list []invoices.Invoice) Summary {
	s := Summary{Total: len(list)}
	for _, inv := range list {
		switch inv.Status {
		case enums.InvoiceStatusPending:
			s.Pending++
		case enums.InvoiceStatusApproved:
			s.Approved++
		case enums.InvoiceStatusRejected:
			s.Rejected++
		case enums.InvoiceStatusSkipped:
			s.Skipped++
		}
	}
	return s
}

// SearchQuery matches a term against number, store and submitter name.
type SearchQuery struct {
	Term   string
	Status string
}

// Search filters invoices case-insensitively, keeping input order.
func Search(list []invoices.Invoice, q SearchQuery) []invoices.Invoice {
	term := strings.ToLower(strings.TrimSpace(q.Term))
	out := []invoices.Invoice{}
	for _, inv := range list {
		if !matchesFilter(q.Status, string(inv.Status)) {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(inv.InvoiceNumber), term) &&
			!strings.Contains(strings.ToLower(inv.StoreName), term) &&
			!strings.Contains(strings.ToLower(submitterName(inv)), term) {
			continue
		}
		out = append(out, inv)
	}
	return out
}

func matchesFilter(filter, value string) bool {
	f := strings.TrimSpace(filter)
	if f == "" || strings.EqualFold(f, filterAll) {
		return true
	}
	return f == value
}

func submitterName(inv invoices.Invoice) string {
	if inv.User == nil {
		return ""
	}
	return strings.TrimSpace(inv.User.Name)
}

func submitterCity(inv invoices.Invoice) string {
	if inv.User == nil {
		return ""
	}
	return strings.TrimSpace(inv.User.City)
}
