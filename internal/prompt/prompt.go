// Package prompt asks the user for filter parameters on a terminal.
package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/zoyaahmed04/sales-analytics-system/internal/validator"
	"github.com/zoyaahmed04/sales-analytics-system/pkg/errors"
)

const (
	confirmQuestion = "Do you want to filter data? (y/n): "
	regionQuestion  = "Enter region (or press Enter to skip): "
	minQuestion     = "Enter minimum amount (or press Enter to skip): "
	maxQuestion     = "Enter maximum amount (or press Enter to skip): "
)

// Collector reads filter answers from in and writes questions to out.
// It implements validator.FilterSource.
type Collector struct {
	in  *bufio.Reader
	out io.Writer
}

// NewCollector creates a collector over the given streams
func NewCollector(in io.Reader, out io.Writer) *Collector {
	return &Collector{in: bufio.NewReader(in), out: out}
}

// FilterOptions asks whether to filter and, if so, for region and bounds.
// Empty answers leave the corresponding filter unset. End of input counts
// as an empty answer.
func (c *Collector) FilterOptions(ctx context.Context, preview *validator.FilterPreview) (*validator.FilterOptions, error) {
	options := &validator.FilterOptions{}

	choice, err := c.ask(ctx, confirmQuestion)
	if err != nil {
		return nil, err
	}
	if strings.ToLower(choice) != "y" {
		return options, nil
	}

	if options.Region, err = c.ask(ctx, regionQuestion); err != nil {
		return nil, err
	}
	if options.MinAmount, err = c.askAmount(ctx, minQuestion, "min_amount"); err != nil {
		return nil, err
	}
	if options.MaxAmount, err = c.askAmount(ctx, maxQuestion, "max_amount"); err != nil {
		return nil, err
	}

	if err := options.Validate(); err != nil {
		return nil, err
	}
	return options, nil
}

func (c *Collector) ask(ctx context.Context, question string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.InternalError(errors.CodeCancelled, "filter prompt", err)
	}

	fmt.Fprint(c.out, question)
	answer, err := c.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", errors.InternalError(errors.CodeUnexpectedError, "filter prompt", err)
	}
	if err == io.EOF {
		fmt.Fprintln(c.out)
	}
	return strings.TrimSpace(answer), nil
}

func (c *Collector) askAmount(ctx context.Context, question, field string) (*decimal.Decimal, error) {
	answer, err := c.ask(ctx, question)
	if err != nil || answer == "" {
		return nil, err
	}

	amount, err := decimal.NewFromString(strings.ReplaceAll(answer, ",", ""))
	if err != nil {
		return nil, errors.ValidationError(errors.CodeInvalidAmount, field, answer, err)
	}
	return &amount, nil
}
