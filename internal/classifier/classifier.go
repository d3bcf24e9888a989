// Package classifier assigns a coarse product category from free text.
package classifier

import (
	"strings"

	"github.com/angelmondragon/invoicecapture-backend/pkg/enums"
)

// Rule maps a lower-case keyword to a category.
type Rule struct {
	Keyword  string
	Category enums.Category
}

// DefaultRules are evaluated in order; the first match wins.
var DefaultRules = []Rule{
	{Keyword: "knorr", Category: enums.CategoryBouillon},
	{Keyword: "ideal", Category: enums.CategoryDairy},
	{Keyword: "vio", Category: enums.CategoryWater},
	{Keyword: "danone", Category: enums.CategoryDairy},
}

// Classifier holds an ordered rule list. The zero value classifies everything as Other.
type Classifier struct {
	rules []Rule
}

// New builds a classifier over the given rules. Keywords are lower-cased and blank ones skipped.
func New(rules ...Rule) *Classifier {
	c := &Classifier{rules: make([]Rule, 0, len(rules))}
	for _, r := range rules {
		kw := strings.ToLower(strings.TrimSpace(r.Keyword))
		if kw == "" {
			continue
		}
		c.rules = append(c.rules, Rule{Keyword: kw, Category: r.Category})
	}
	return c
}

var defaultClassifier = New(DefaultRules...)

// Default returns the classifier used by the capture pipeline.
func Default() *Classifier {
	return defaultClassifier
}

// Classify returns the category of the first rule whose keyword occurs in text.
func (c *Classifier) Classify(text string) enums.Category {
	if c == nil {
		return enums.CategoryOther
	}
	lower := strings.ToLower(text)
	for _, r := range c.rules {
		if strings.Contains(lower, r.Keyword) {
			return r.Category
		}
	}
	return enums.CategoryOther
}

// ClassifyInvoice classifies the store name followed by every product name.
func (c *Classifier) ClassifyInvoice(storeName string, productNames []string) enums.Category {
	parts := make([]string, 0, len(productNames)+1)
	parts = append(parts, storeName)
	parts = append(parts, productNames...)
	return c.Classify(strings.Join(parts, " "))
}

// Classify uses the default rules.
func Classify(text string) enums.Category {
	return defaultClassifier.Classify(text)
}
