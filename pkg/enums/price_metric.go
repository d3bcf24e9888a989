package enums

import "fmt"

// PriceMetric selects which line-item price feeds a price trend.
type PriceMetric string

const (
	PriceMetricUnitPrice      PriceMetric = "unit_price"
	PriceMetricNetPrice       PriceMetric = "net_price"
	PriceMetricPromotionPrice PriceMetric = "promotion_price"
)

var validPriceMetrics = []PriceMetric{
	PriceMetricUnitPrice,
	PriceMetricNetPrice,
	PriceMetricPromotionPrice,
}

// String implements fmt.Stringer.
func (m PriceMetric) String() string {
	return string(m)
}

// IsValid reports whether the value is a known PriceMetric.
func (m PriceMetric) IsValid() bool {
	for _, candidate := range validPriceMetrics {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParsePriceMetric converts raw input into a PriceMetric. Empty input selects unit_price.
func ParsePriceMetric(value string) (PriceMetric, error) {
	if value == "" {
		return PriceMetricUnitPrice, nil
	}
	for _, candidate := range validPriceMetrics {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid price metric %q", value)
}
