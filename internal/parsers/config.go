package parsers

import (
	"fmt"
	"strings"
)

// ParserConfig holds configuration for parsing the transaction log
type ParserConfig struct {
	Delimiter      string `json:"delimiter"`
	FieldCount     int    `json:"field_count"`
	HasHeader      bool   `json:"has_header"`
	SkipEmptyLines bool   `json:"skip_empty_lines"`
}

// DefaultParserConfig returns the configuration for
// TransactionID|Date|ProductID|ProductName|Quantity|UnitPrice|CustomerID|Region logs.
func DefaultParserConfig() *ParserConfig {
	return &ParserConfig{
		Delimiter:      "|",
		FieldCount:     8,
		HasHeader:      true,
		SkipEmptyLines: true,
	}
}

// Validate checks if the parser configuration is valid
func (c *ParserConfig) Validate() error {
	if c.Delimiter == "" {
		return fmt.Errorf("delimiter cannot be empty")
	}
	if strings.Contains(c.Delimiter, ",") {
		return fmt.Errorf("delimiter cannot contain ',' (commas are stripped from field values)")
	}
	if c.FieldCount != 8 {
		return fmt.Errorf("field count must be 8, got %d", c.FieldCount)
	}
	return nil
}
