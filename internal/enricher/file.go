package enricher

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/zoyaahmed04/sales-analytics-system/internal/models"
	"github.com/zoyaahmed04/sales-analytics-system/pkg/errors"
)

// Delimiter separates columns in the enrichment file
const Delimiter = "|"

// WriteEnrichedFile writes a header row and one row per record to path.
// Nothing is written when records is empty; written reports whether a file
// was produced.
func WriteEnrichedFile(path string, records []models.EnrichedTransaction) (written bool, err error) {
	if len(records) == 0 {
		return false, nil
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return false, errors.FileError(errors.CodeDirectoryError, dir, err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		if os.IsPermission(err) {
			return false, errors.FileError(errors.CodeFilePermission, path, err)
		}
		return false, errors.FileError(errors.CodeFileWrite, path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			written, err = false, errors.FileError(errors.CodeFileWrite, path, cerr)
		}
	}()

	w := bufio.NewWriter(file)
	if _, err := w.WriteString(strings.Join(models.EnrichedFields, Delimiter) + "\n"); err != nil {
		return false, errors.FileError(errors.CodeFileWrite, path, err)
	}
	for i := range records {
		if _, err := w.WriteString(strings.Join(records[i].Values(), Delimiter) + "\n"); err != nil {
			return false, errors.FileError(errors.CodeFileWrite, path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return false, errors.FileError(errors.CodeFileWrite, path, err)
	}

	return true, nil
}

// EnrichedFile is the split content of an enrichment file
type EnrichedFile struct {
	Header []string
	Rows   [][]string
}

// ReadEnrichedFile reads an enrichment file back as string fields
func ReadEnrichedFile(path string) (*EnrichedFile, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FileError(errors.CodeFileNotFound, path, err)
		}
		return nil, errors.FileError(errors.CodeFilePermission, path, err)
	}
	defer file.Close()

	result := &EnrichedFile{}
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, Delimiter)
		if result.Header == nil {
			result.Header = fields
			continue
		}
		if len(fields) != len(result.Header) {
			return nil, errors.ParseError(errors.CodeInvalidFormat, path, lineNo, line, nil)
		}
		result.Rows = append(result.Rows, fields)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.ParseError(errors.CodeInvalidFormat, path, lineNo+1, "", err)
	}

	return result, nil
}
