package main

import (
	"encoding/json"
	"fmt"

	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"
)

// diffJSON returns an ASCII diff from expected to actual, or "" when they
// are equal.
func diffJSON(expected, actual []byte) (string, error) {
	differ := gojsondiff.New()
	delta, err := differ.Compare(expected, actual)
	if err != nil {
		return "", fmt.Errorf("diffing JSON: %w", err)
	}
	if !delta.Modified() {
		return "", nil
	}
	var left interface{}
	if err := json.Unmarshal(expected, &left); err != nil {
		return "", err
	}
	asciiFmt := formatter.NewAsciiFormatter(left, formatter.AsciiFormatterConfig{
		ShowArrayIndex: true,
		Coloring:       false,
	})
	return asciiFmt.Format(delta)
}
