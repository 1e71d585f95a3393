// Package validator enforces the business rules on parsed transactions and
// applies the optional region and amount filters.
package validator

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/zoyaahmed04/sales-analytics-system/internal/models"
	"github.com/zoyaahmed04/sales-analytics-system/pkg/errors"
	"github.com/zoyaahmed04/sales-analytics-system/pkg/logger"
)

// FilterOptions holds the optional filters applied after validation.
// An empty Region and nil bounds disable the corresponding filter.
type FilterOptions struct {
	Region    string           `json:"region,omitempty"`
	MinAmount *decimal.Decimal `json:"min_amount,omitempty"`
	MaxAmount *decimal.Decimal `json:"max_amount,omitempty"`
}

// Validate checks the filter bounds
func (f *FilterOptions) Validate() error {
	if f == nil {
		return nil
	}
	if f.MinAmount != nil && f.MinAmount.IsNegative() {
		return errors.ValidationError(errors.CodeInvalidAmount, "min_amount", f.MinAmount.String(), nil)
	}
	if f.MaxAmount != nil && f.MaxAmount.IsNegative() {
		return errors.ValidationError(errors.CodeInvalidAmount, "max_amount", f.MaxAmount.String(), nil)
	}
	if f.MinAmount != nil && f.MaxAmount != nil && f.MinAmount.GreaterThan(*f.MaxAmount) {
		return errors.ValidationError(
			errors.CodeInvalidRange,
			"amount",
			fmt.Sprintf("%s > %s", f.MinAmount.String(), f.MaxAmount.String()),
			nil,
		)
	}
	return nil
}

// IsEmpty reports whether no filter is active
func (f *FilterOptions) IsEmpty() bool {
	return f == nil || (f.Region == "" && f.MinAmount == nil && f.MaxAmount == nil)
}

// String describes the active filters
func (f *FilterOptions) String() string {
	if f.IsEmpty() {
		return "none"
	}
	var parts []string
	if f.Region != "" {
		parts = append(parts, "region="+f.Region)
	}
	if f.MinAmount != nil {
		parts = append(parts, "min="+f.MinAmount.String())
	}
	if f.MaxAmount != nil {
		parts = append(parts, "max="+f.MaxAmount.String())
	}
	return strings.Join(parts, ", ")
}

// AmountRange is the smallest and largest amount observed
type AmountRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

func (r *AmountRange) observe(amount decimal.Decimal) *AmountRange {
	if r == nil {
		return &AmountRange{Min: amount, Max: amount}
	}
	if amount.LessThan(r.Min) {
		r.Min = amount
	}
	if amount.GreaterThan(r.Max) {
		r.Max = amount
	}
	return r
}

// FilterPreview is what a filter collaborator is shown before choosing filters
type FilterPreview struct {
	Regions     []string     `json:"regions"`
	AmountRange *AmountRange `json:"amount_range,omitempty"`
}

// Preview collects the regions and amount range of parsed transactions.
// Amounts are only taken from records with positive quantity and price.
func Preview(transactions []models.Transaction) *FilterPreview {
	regions := make(map[string]struct{})
	var amounts *AmountRange

	for i := range transactions {
		tx := &transactions[i]
		if tx.Region != "" {
			regions[tx.Region] = struct{}{}
		}
		if tx.Quantity > 0 && tx.UnitPrice.IsPositive() {
			amounts = amounts.observe(tx.LineTotal())
		}
	}

	return &FilterPreview{Regions: sortedKeys(regions), AmountRange: amounts}
}

// FilterSource supplies the filter parameters for a run
type FilterSource interface {
	FilterOptions(ctx context.Context, preview *FilterPreview) (*FilterOptions, error)
}

// StaticFilter returns fixed options, usually taken from flags or config
type StaticFilter struct {
	Options FilterOptions
}

// FilterOptions implements FilterSource
func (s StaticFilter) FilterOptions(ctx context.Context, preview *FilterPreview) (*FilterOptions, error) {
	options := s.Options
	return &options, nil
}

// Summary reports what happened to every input record
type Summary struct {
	TotalInput       int          `json:"total_input"`
	ParseRejected    int          `json:"parse_rejected"`
	Invalid          int          `json:"invalid"`
	FilteredByRegion int          `json:"filtered_by_region"`
	FilteredByAmount int          `json:"filtered_by_amount"`
	FinalCount       int          `json:"final_count"`
	Regions          []string     `json:"regions"`
	AmountRange      *AmountRange `json:"amount_range,omitempty"`
}

// Result is the output of ValidateAndFilter
type Result struct {
	Valid        []models.Transaction    `json:"valid"`
	InvalidCount int                     `json:"invalid_count"`
	Rejected     []models.RejectedRecord `json:"rejected"`
	Summary      *Summary                `json:"summary"`
}

// Validator checks transactions against the business rules
type Validator struct {
	logger logger.Logger
}

// NewValidator creates a new Validator
func NewValidator() *Validator {
	return &Validator{
		logger: logger.GetGlobalLogger().WithComponent("validator"),
	}
}

// Check returns the first rule tx violates, or ok=true when it is valid
func (v *Validator) Check(tx *models.Transaction) (reason models.RejectReason, ok bool) {
	switch {
	case tx.Quantity <= 0:
		return models.ReasonNonPositiveQuantity, false
	case !tx.UnitPrice.IsPositive():
		return models.ReasonNonPositiveUnitPrice, false
	case !strings.HasPrefix(tx.TransactionID, "T"):
		return models.ReasonBadTransactionID, false
	case !strings.HasPrefix(tx.ProductID, "P"):
		return models.ReasonBadProductID, false
	case !strings.HasPrefix(tx.CustomerID, "C"):
		return models.ReasonBadCustomerID, false
	case tx.Region == "":
		return models.ReasonEmptyRegion, false
	}
	return "", true
}

// ValidateAndFilter validates every transaction, attaches Amount to the
// valid ones and then applies the region, min and max filters in that order.
// The input slice is not modified.
func (v *Validator) ValidateAndFilter(transactions []models.Transaction, options *FilterOptions) (*Result, error) {
	if err := options.Validate(); err != nil {
		return nil, err
	}
	if options == nil {
		options = &FilterOptions{}
	}

	result := &Result{
		Valid:   make([]models.Transaction, 0, len(transactions)),
		Summary: &Summary{TotalInput: len(transactions)},
	}
	regions := make(map[string]struct{})
	var amounts *AmountRange

	for i := range transactions {
		tx := &transactions[i]
		if reason, ok := v.Check(tx); !ok {
			result.InvalidCount++
			result.Rejected = append(result.Rejected, models.RejectedRecord{
				Line:   i + 1,
				Raw:    tx.String(),
				Stage:  models.StageValidate,
				Reason: reason,
				Detail: tx.TransactionID,
			})
			continue
		}

		valid := tx.WithAmount()
		regions[valid.Region] = struct{}{}
		amounts = amounts.observe(valid.Amount.Decimal)
		result.Valid = append(result.Valid, valid)
	}

	result.Summary.Invalid = result.InvalidCount
	result.Summary.Regions = sortedKeys(regions)
	result.Summary.AmountRange = amounts

	v.logger.WithFields(logger.Fields{
		"valid":   len(result.Valid),
		"invalid": result.InvalidCount,
		"regions": result.Summary.Regions,
	}).Info("Validation completed")

	filtered := result.Valid

	if options.Region != "" {
		before := len(filtered)
		filtered = keep(filtered, func(tx *models.Transaction) bool {
			return tx.Region == options.Region
		})
		result.Summary.FilteredByRegion = before - len(filtered)
	}

	if options.MinAmount != nil {
		before := len(filtered)
		filtered = keep(filtered, func(tx *models.Transaction) bool {
			return tx.Amount.Decimal.GreaterThanOrEqual(*options.MinAmount)
		})
		result.Summary.FilteredByAmount += before - len(filtered)
	}

	if options.MaxAmount != nil {
		before := len(filtered)
		filtered = keep(filtered, func(tx *models.Transaction) bool {
			return tx.Amount.Decimal.LessThanOrEqual(*options.MaxAmount)
		})
		result.Summary.FilteredByAmount += before - len(filtered)
	}

	result.Valid = filtered
	result.Summary.FinalCount = len(filtered)

	if !options.IsEmpty() {
		v.logger.WithFields(logger.Fields{
			"filters":            options.String(),
			"filtered_by_region": result.Summary.FilteredByRegion,
			"filtered_by_amount": result.Summary.FilteredByAmount,
			"final_count":        result.Summary.FinalCount,
		}).Info("Filters applied")
	}

	return result, nil
}

func keep(transactions []models.Transaction, pred func(*models.Transaction) bool) []models.Transaction {
	out := make([]models.Transaction, 0, len(transactions))
	for i := range transactions {
		if pred(&transactions[i]) {
			out = append(out, transactions[i])
		}
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
