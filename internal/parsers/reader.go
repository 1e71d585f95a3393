// Package parsers turns the raw transaction log into structured records.
//
// Reading is split from parsing: ReadSalesLines deals with the file system
// and character encodings and yields clean lines, while Parser is a pure
// transform from lines to Transaction records and rejections.
//
// Source files may be UTF-8, Latin-1 or Windows-1252. UTF-8 is used when the
// whole file is valid UTF-8; otherwise the next decoder in the chain is tried.
//
// Example usage:
//
//	lines, err := parsers.ReadSalesLines("data/sales_data.txt", parsers.DefaultParserConfig())
//	parser, err := parsers.NewParser(parsers.DefaultParserConfig())
//	result := parser.Parse(lines)
package parsers

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/zoyaahmed04/sales-analytics-system/pkg/errors"
	"github.com/zoyaahmed04/sales-analytics-system/pkg/logger"
)

// SourceEncoding names a supported source file encoding
type SourceEncoding string

const (
	EncodingUTF8   SourceEncoding = "utf-8"
	EncodingLatin1 SourceEncoding = "latin-1"
	EncodingCP1252 SourceEncoding = "cp1252"
)

// fallbackChain lists the encodings tried after UTF-8, in order.
var fallbackChain = []struct {
	name    SourceEncoding
	decoder encoding.Encoding
}{
	{EncodingLatin1, charmap.ISO8859_1},
	{EncodingCP1252, charmap.Windows1252},
}

// SourceFile is the decoded content of a transaction log
type SourceFile struct {
	Path     string         `json:"path"`
	Encoding SourceEncoding `json:"encoding"`
	Lines    []string       `json:"-"`
}

// ReadSalesLines reads a transaction log and returns its data lines: the
// header (when configured) and blank lines are dropped and every line is
// trimmed.
func ReadSalesLines(path string, config *ParserConfig) (*SourceFile, error) {
	if config == nil {
		config = DefaultParserConfig()
	}
	log := logger.GetGlobalLogger().WithComponent("reader").WithField("file_path", path)

	raw, err := os.ReadFile(path)
	if err != nil {
		log.WithError(err).Error("Failed to read sales data")
		if os.IsNotExist(err) {
			return nil, errors.FileError(errors.CodeFileNotFound, path, err)
		}
		if os.IsPermission(err) {
			return nil, errors.FileError(errors.CodeFilePermission, path, err)
		}
		return nil, errors.FileError(errors.CodeDirectoryError, path, err)
	}

	text, enc, err := decode(raw)
	if err != nil {
		log.WithError(err).Error("Failed to decode sales data")
		return nil, errors.ParseError(errors.CodeEncodingError, path, 0, "", err)
	}

	lines, err := splitLines(text, config)
	if err != nil {
		return nil, errors.ParseError(errors.CodeEncodingError, path, 0, "", err)
	}

	log.WithFields(logger.Fields{
		"encoding": enc,
		"lines":    len(lines),
	}).Info("Read sales data")

	return &SourceFile{Path: path, Encoding: enc, Lines: lines}, nil
}

func decode(raw []byte) (string, SourceEncoding, error) {
	if utf8.Valid(raw) {
		return string(raw), EncodingUTF8, nil
	}

	var lastErr error
	for _, candidate := range fallbackChain {
		decoded, err := candidate.decoder.NewDecoder().Bytes(raw)
		if err != nil {
			lastErr = err
			continue
		}
		return string(decoded), candidate.name, nil
	}
	return "", "", fmt.Errorf("no supported encoding could decode the file: %w", lastErr)
}

func splitLines(text string, config *ParserConfig) ([]string, error) {
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	scanner.Split(scanLines)

	var lines []string
	index := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		index++
		if config.HasHeader && index == 1 {
			continue
		}
		if config.SkipEmptyLines && line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}

// scanLines is bufio.ScanLines that also splits on lone carriage returns.
func scanLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		advance := i + 1
		if data[i] == '\r' && i+1 < len(data) && data[i+1] == '\n' {
			advance++
		} else if data[i] == '\r' && i+1 == len(data) && !atEOF {
			return 0, nil, nil
		}
		return advance, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
