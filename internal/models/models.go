package models

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Transaction represents one sale line from the transaction log.
//
// Amount stays invalid (null) until the record passes validation; only the
// validator sets it.
type Transaction struct {
	TransactionID string              `json:"transaction_id"`
	Date          string              `json:"date"`
	ProductID     string              `json:"product_id"`
	ProductName   string              `json:"product_name"`
	Quantity      int                 `json:"quantity"`
	UnitPrice     decimal.Decimal     `json:"unit_price"`
	CustomerID    string              `json:"customer_id"`
	Region        string              `json:"region"`
	Amount        decimal.NullDecimal `json:"amount"`
}

// LineTotal returns quantity × unit price, independent of Amount.
func (t *Transaction) LineTotal() decimal.Decimal {
	return t.UnitPrice.Mul(decimal.NewFromInt(int64(t.Quantity)))
}

// WithAmount returns a copy of the transaction with Amount set to its line total.
func (t Transaction) WithAmount() Transaction {
	t.Amount = decimal.NewNullDecimal(t.LineTotal())
	return t
}

// HasAmount reports whether Amount has been attached by validation.
func (t *Transaction) HasAmount() bool {
	return t.Amount.Valid
}

// String returns a string representation of the Transaction
func (t *Transaction) String() string {
	return fmt.Sprintf("Transaction{ID: %s, Date: %s, Product: %s, Qty: %d, Price: %s, Customer: %s, Region: %s}",
		t.TransactionID, t.Date, t.ProductID, t.Quantity, t.UnitPrice.String(), t.CustomerID, t.Region)
}

// RejectStage names the pipeline stage that dropped a record
type RejectStage string

const (
	StageParse    RejectStage = "parse"
	StageValidate RejectStage = "validate"
)

// RejectReason explains why a record was dropped
type RejectReason string

const (
	ReasonFieldCount           RejectReason = "wrong_field_count"
	ReasonInvalidQuantity      RejectReason = "invalid_quantity"
	ReasonInvalidUnitPrice     RejectReason = "invalid_unit_price"
	ReasonNonPositiveQuantity  RejectReason = "non_positive_quantity"
	ReasonNonPositiveUnitPrice RejectReason = "non_positive_unit_price"
	ReasonBadTransactionID     RejectReason = "bad_transaction_id"
	ReasonBadProductID         RejectReason = "bad_product_id"
	ReasonBadCustomerID        RejectReason = "bad_customer_id"
	ReasonEmptyRegion          RejectReason = "empty_region"
)

// RejectedRecord is a record dropped by the parser or the validator
type RejectedRecord struct {
	Line   int          `json:"line"`
	Raw    string       `json:"raw,omitempty"`
	Stage  RejectStage  `json:"stage"`
	Reason RejectReason `json:"reason"`
	Detail string       `json:"detail,omitempty"`
}

func (r RejectedRecord) String() string {
	if r.Detail != "" {
		return fmt.Sprintf("line %d rejected at %s: %s (%s)", r.Line, r.Stage, r.Reason, r.Detail)
	}
	return fmt.Sprintf("line %d rejected at %s: %s", r.Line, r.Stage, r.Reason)
}

// EnrichedTransaction is a validated transaction joined with catalog data.
// When APIMatch is false all three API fields are nil.
type EnrichedTransaction struct {
	Transaction
	APICategory *string  `json:"api_category"`
	APIBrand    *string  `json:"api_brand"`
	APIRating   *float64 `json:"api_rating"`
	APIMatch    bool     `json:"api_match"`
}

// EnrichedFields lists the enrichment file columns in record construction order.
var EnrichedFields = []string{
	"TransactionID",
	"Date",
	"ProductID",
	"ProductName",
	"Quantity",
	"UnitPrice",
	"CustomerID",
	"Region",
	"Amount",
	"API_Category",
	"API_Brand",
	"API_Rating",
	"API_Match",
}

// Values stringifies the record in EnrichedFields order. Null values are
// rendered as empty strings.
func (e *EnrichedTransaction) Values() []string {
	amount := ""
	if e.Amount.Valid {
		amount = e.Amount.Decimal.String()
	}
	rating := ""
	if e.APIRating != nil {
		rating = strconv.FormatFloat(*e.APIRating, 'f', -1, 64)
	}

	return []string{
		e.TransactionID,
		e.Date,
		e.ProductID,
		e.ProductName,
		strconv.Itoa(e.Quantity),
		e.UnitPrice.String(),
		e.CustomerID,
		e.Region,
		amount,
		stringOrEmpty(e.APICategory),
		stringOrEmpty(e.APIBrand),
		rating,
		strconv.FormatBool(e.APIMatch),
	}
}

// IsConsistent reports whether the match flag agrees with the API fields.
func (e *EnrichedTransaction) IsConsistent() bool {
	populated := e.APICategory != nil && e.APIBrand != nil && e.APIRating != nil
	empty := e.APICategory == nil && e.APIBrand == nil && e.APIRating == nil
	if e.APIMatch {
		return populated
	}
	return empty
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// CatalogProduct is a product as returned by the external catalog
type CatalogProduct struct {
	ID       int     `json:"id"`
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Brand    string  `json:"brand"`
	Price    float64 `json:"price"`
	Rating   float64 `json:"rating"`
}

// ProductInfo holds the catalog attributes used for enrichment
type ProductInfo struct {
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Brand    string  `json:"brand"`
	Rating   float64 `json:"rating"`
}

// ProductMapping maps numeric catalog ids to product attributes
type ProductMapping map[int]ProductInfo

// Lookup returns the product info for id
func (m ProductMapping) Lookup(id int) (ProductInfo, bool) {
	info, ok := m[id]
	return info, ok
}
