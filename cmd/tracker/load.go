package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/signalsfoundry/orbital-tracker/core"
	"github.com/signalsfoundry/orbital-tracker/model"
)

// LoadElementFile reads two-line element sets from a file in the common
// 2-line or 3-line (name header) layout. A name header may carry the "0 "
// prefix some distributions use; it is stripped. Parsing is strict: one bad
// set rejects the file so a half-loaded group never reaches the store.
func LoadElementFile(path string) ([]*model.CatalogRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var (
		records []*model.CatalogRecord
		name    string
		lineOne string
	)

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n ")
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "1 "):
			if lineOne != "" {
				return nil, fmt.Errorf("%s:%d: line 1 without a matching line 2", path, lineNo)
			}
			lineOne = line
		case strings.HasPrefix(line, "2 "):
			if lineOne == "" {
				return nil, fmt.Errorf("%s:%d: line 2 without a preceding line 1", path, lineNo)
			}
			rec, err := core.ParseLines(lineOne, line)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
			}
			rec.Name = name
			records = append(records, rec)
			name, lineOne = "", ""
		default:
			name = strings.TrimSpace(strings.TrimPrefix(line, "0 "))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if lineOne != "" {
		return nil, fmt.Errorf("%s: trailing line 1 without a line 2", path)
	}
	return records, nil
}
