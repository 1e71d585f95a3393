// Package enricher joins validated transactions with catalog attributes
// and persists the enriched records.
package enricher

import (
	"strconv"

	"github.com/zoyaahmed04/sales-analytics-system/internal/models"
	"github.com/zoyaahmed04/sales-analytics-system/pkg/logger"
)

// Enricher attaches catalog data to transactions by numeric product id
type Enricher struct {
	mapping models.ProductMapping
	logger  logger.Logger
}

// NewEnricher creates an enricher over mapping. A nil mapping matches nothing.
func NewEnricher(mapping models.ProductMapping) *Enricher {
	if mapping == nil {
		mapping = models.ProductMapping{}
	}
	return &Enricher{
		mapping: mapping,
		logger:  logger.GetGlobalLogger().WithComponent("enricher"),
	}
}

// Enrich returns one enriched copy per transaction, in input order
func (e *Enricher) Enrich(transactions []models.Transaction) []models.EnrichedTransaction {
	enriched := make([]models.EnrichedTransaction, 0, len(transactions))
	for i := range transactions {
		enriched = append(enriched, e.EnrichOne(transactions[i]))
	}

	e.logger.WithFields(logger.Fields{
		"transactions": len(enriched),
		"catalog_size": len(e.mapping),
	}).Debug("Enrichment completed")
	return enriched
}

// EnrichOne enriches a single transaction
func (e *Enricher) EnrichOne(tx models.Transaction) models.EnrichedTransaction {
	out := models.EnrichedTransaction{Transaction: tx}

	id, ok := ExtractNumericID(tx.ProductID)
	if !ok {
		return out
	}
	info, found := e.mapping.Lookup(id)
	if !found {
		return out
	}

	category, brand, rating := info.Category, info.Brand, info.Rating
	out.APICategory = &category
	out.APIBrand = &brand
	out.APIRating = &rating
	out.APIMatch = true
	return out
}

// ExtractNumericID joins every ASCII digit of productID into an integer,
// so "P101" yields 101. It fails when there are no digits or the value
// overflows an int.
func ExtractNumericID(productID string) (int, bool) {
	digits := make([]byte, 0, len(productID))
	for i := 0; i < len(productID); i++ {
		if c := productID[i]; c >= '0' && c <= '9' {
			digits = append(digits, c)
		}
	}
	if len(digits) == 0 {
		return 0, false
	}
	id, err := strconv.Atoi(string(digits))
	if err != nil {
		return 0, false
	}
	return id, true
}

// Summary describes how much of the data set was enriched
type Summary struct {
	Total       int      `json:"total"`
	Matched     int      `json:"matched"`
	SuccessRate float64  `json:"success_rate"`
	Unmatched   []string `json:"unmatched_products"`
}

// Summarize counts matches. Unmatched product names are distinct and kept
// in first-seen order.
func Summarize(enriched []models.EnrichedTransaction) *Summary {
	summary := &Summary{Total: len(enriched), Unmatched: []string{}}
	seen := make(map[string]struct{})

	for i := range enriched {
		if enriched[i].APIMatch {
			summary.Matched++
			continue
		}
		name := enriched[i].ProductName
		if _, dup := seen[name]; !dup {
			seen[name] = struct{}{}
			summary.Unmatched = append(summary.Unmatched, name)
		}
	}

	if summary.Total > 0 {
		summary.SuccessRate = float64(summary.Matched) / float64(summary.Total) * 100
	}
	return summary
}
