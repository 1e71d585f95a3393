package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
)

// SalesGenerator generates pipe-delimited sales files with a share of dirty records
type SalesGenerator struct {
	Count      int
	StartDate  time.Time
	EndDate    time.Time
	Customers  int
	DirtyRatio float64
	rng        *rand.Rand
}

// product is a catalogue entry used to draw sale lines
type product struct {
	ID    string
	Name  string
	Price decimal.Decimal
}

var products = []product{
	{"P101", "Laptop", decimal.NewFromInt(45000)},
	{"P102", "Mouse", decimal.NewFromInt(500)},
	{"P103", "USB Cable", decimal.NewFromInt(250)},
	{"P104", "Keyboard,Mechanical", decimal.NewFromInt(1500)},
	{"P105", "Monitor", decimal.NewFromInt(12000)},
	{"P106", "Webcam", decimal.NewFromInt(3000)},
	{"P107", "Headphones", decimal.NewFromInt(1500)},
	{"P108", "External Hard Drive", decimal.NewFromInt(5500)},
	{"P109", "Charger", decimal.NewFromInt(800)},
	{"P110", "Laptop Stand", decimal.NewFromInt(1200)},
}

var regions = []string{"North", "South", "East", "West"}

var header = []string{"TransactionID", "Date", "ProductID", "ProductName", "Quantity", "UnitPrice", "CustomerID", "Region"}

func main() {
	var (
		output     = flag.String("output", "data/sales_data.txt", "Output file path")
		count      = flag.Int("count", 100, "Number of records to generate")
		startDate  = flag.String("start-date", "2024-12-01", "Start date (YYYY-MM-DD)")
		endDate    = flag.String("end-date", "2024-12-31", "End date (YYYY-MM-DD)")
		customers  = flag.Int("customers", 20, "Number of distinct customers")
		dirtyRatio = flag.Float64("dirty-ratio", 0.1, "Share of records that are malformed or invalid (0.0-1.0)")
		seed       = flag.Int64("seed", time.Now().UnixNano(), "Random seed for reproducible generation")
	)
	flag.Parse()

	start, err := time.Parse("2006-01-02", *startDate)
	if err != nil {
		log.Fatalf("Invalid start date: %v", err)
	}
	end, err := time.Parse("2006-01-02", *endDate)
	if err != nil {
		log.Fatalf("Invalid end date: %v", err)
	}
	if end.Before(start) {
		log.Fatalf("End date %s is before start date %s", *endDate, *startDate)
	}
	if *dirtyRatio < 0 || *dirtyRatio > 1 {
		log.Fatalf("Dirty ratio must be between 0.0 and 1.0, got %v", *dirtyRatio)
	}

	generator := &SalesGenerator{
		Count:      *count,
		StartDate:  start,
		EndDate:    end,
		Customers:  *customers,
		DirtyRatio: *dirtyRatio,
		rng:        rand.New(rand.NewSource(*seed)),
	}

	records := generator.Generate()
	if err := WriteSalesFile(*output, records); err != nil {
		log.Fatalf("Failed to write sales file: %v", err)
	}

	fmt.Printf("Generated %d records in %s\n", len(records), *output)
	fmt.Printf("Date range: %s to %s\n", start.Format("2006-01-02"), end.Format("2006-01-02"))
	fmt.Printf("Seed used: %d\n", *seed)
}

// Generate creates Count records in date order
func (g *SalesGenerator) Generate() [][]string {
	days := int(g.EndDate.Sub(g.StartDate).Hours()/24) + 1
	records := make([][]string, 0, g.Count)

	for i := 0; i < g.Count; i++ {
		day := g.StartDate.AddDate(0, 0, i*days/max(g.Count, 1))
		p := products[g.rng.Intn(len(products))]
		quantity := 1 + g.rng.Intn(10)

		record := []string{
			fmt.Sprintf("T%03d", i+1),
			day.Format("2006-01-02"),
			p.ID,
			p.Name,
			fmt.Sprintf("%d", quantity),
			formatPrice(p.Price, g.rng.Float64() < 0.2),
			fmt.Sprintf("C%03d", 1+g.rng.Intn(max(g.Customers, 1))),
			regions[g.rng.Intn(len(regions))],
		}

		if g.rng.Float64() < g.DirtyRatio {
			record = g.corrupt(record)
		}
		records = append(records, record)
	}
	return records
}

// corrupt turns a clean record into one the pipeline must drop
func (g *SalesGenerator) corrupt(record []string) []string {
	switch g.rng.Intn(6) {
	case 0:
		record[0] = "X" + record[0][1:]
	case 1:
		record[4] = "0"
	case 2:
		record[5] = "-" + record[5]
	case 3:
		record[7] = ""
	case 4:
		record[4] = "many"
	default:
		record = record[:len(record)-1]
	}
	return record
}

// formatPrice renders a price, optionally with thousands separators
func formatPrice(price decimal.Decimal, grouped bool) string {
	s := price.String()
	if !grouped || len(s) <= 3 {
		return s
	}
	out := s[:len(s)%3]
	for i := len(s) % 3; i < len(s); i += 3 {
		if out != "" {
			out += ","
		}
		out += s[i : i+3]
	}
	return out
}

// WriteSalesFile writes the header and records separated by '|'
func WriteSalesFile(filename string, records [][]string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return err
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	writer.Comma = '|'
	defer writer.Flush()

	if err := writer.Write(header); err != nil {
		return err
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	return nil
}
