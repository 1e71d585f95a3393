package parsers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/zoyaahmed04/sales-analytics-system/internal/models"
	"github.com/zoyaahmed04/sales-analytics-system/pkg/errors"
	"github.com/zoyaahmed04/sales-analytics-system/pkg/logger"
)

// Field positions within a transaction line
const (
	fieldTransactionID = iota
	fieldDate
	fieldProductID
	fieldProductName
	fieldQuantity
	fieldUnitPrice
	fieldCustomerID
	fieldRegion
)

// Parser converts raw transaction lines into Transaction records
type Parser struct {
	config *ParserConfig
	logger logger.Logger
}

// NewParser creates a new Parser with the given configuration
func NewParser(config *ParserConfig) (*Parser, error) {
	if config == nil {
		config = DefaultParserConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(
			errors.CodeInvalidConfig,
			"parser_config",
			config,
			err,
		)
	}

	return &Parser{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("transaction_parser"),
	}, nil
}

// ParseResult holds the outcome of parsing a batch of lines
type ParseResult struct {
	Transactions []models.Transaction    `json:"transactions"`
	Rejected     []models.RejectedRecord `json:"rejected"`
	TotalLines   int                     `json:"total_lines"`
}

// RejectedCount returns the number of lines the parser dropped
func (r *ParseResult) RejectedCount() int {
	return len(r.Rejected)
}

// String returns a human-readable summary of the parse
func (r *ParseResult) String() string {
	return fmt.Sprintf("Parsed %d lines: %d records, %d rejected",
		r.TotalLines, len(r.Transactions), len(r.Rejected))
}

// Parse converts lines to transactions in input order. Malformed lines do
// not stop parsing; each is reported in Rejected with its 1-based position.
func (p *Parser) Parse(lines []string) *ParseResult {
	result := &ParseResult{
		Transactions: make([]models.Transaction, 0, len(lines)),
		TotalLines:   len(lines),
	}

	for i, line := range lines {
		tx, rejected := p.ParseLine(line, i+1)
		if rejected != nil {
			p.logger.WithFields(logger.Fields{
				"line":   rejected.Line,
				"reason": rejected.Reason,
			}).Debug("Dropped malformed record")
			result.Rejected = append(result.Rejected, *rejected)
			continue
		}
		result.Transactions = append(result.Transactions, tx)
	}

	p.logger.WithFields(logger.Fields{
		"total_lines": result.TotalLines,
		"parsed":      len(result.Transactions),
		"rejected":    len(result.Rejected),
	}).Info("Transaction parsing completed")

	return result
}

// ParseLine parses a single line. Exactly one of the return values is meaningful.
func (p *Parser) ParseLine(line string, lineNo int) (models.Transaction, *models.RejectedRecord) {
	parts := strings.Split(line, p.config.Delimiter)
	if len(parts) != p.config.FieldCount {
		return models.Transaction{}, &models.RejectedRecord{
			Line:   lineNo,
			Raw:    line,
			Stage:  models.StageParse,
			Reason: models.ReasonFieldCount,
			Detail: fmt.Sprintf("expected %d fields, got %d", p.config.FieldCount, len(parts)),
		}
	}

	quantity, err := parseQuantity(parts[fieldQuantity])
	if err != nil {
		return models.Transaction{}, &models.RejectedRecord{
			Line:   lineNo,
			Raw:    line,
			Stage:  models.StageParse,
			Reason: models.ReasonInvalidQuantity,
			Detail: err.Error(),
		}
	}

	unitPrice, err := parseUnitPrice(parts[fieldUnitPrice])
	if err != nil {
		return models.Transaction{}, &models.RejectedRecord{
			Line:   lineNo,
			Raw:    line,
			Stage:  models.StageParse,
			Reason: models.ReasonInvalidUnitPrice,
			Detail: err.Error(),
		}
	}

	return models.Transaction{
		TransactionID: parts[fieldTransactionID],
		Date:          parts[fieldDate],
		ProductID:     parts[fieldProductID],
		ProductName:   stripThousands(parts[fieldProductName]),
		Quantity:      quantity,
		UnitPrice:     unitPrice,
		CustomerID:    parts[fieldCustomerID],
		Region:        parts[fieldRegion],
	}, nil
}

func stripThousands(s string) string {
	return strings.ReplaceAll(s, ",", "")
}

func parseQuantity(raw string) (int, error) {
	value := strings.TrimSpace(stripThousands(raw))
	quantity, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("quantity %q is not an integer", raw)
	}
	return quantity, nil
}

func parseUnitPrice(raw string) (decimal.Decimal, error) {
	value := strings.TrimSpace(stripThousands(raw))
	price, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unit price %q is not a number", raw)
	}
	return price, nil
}
