package batch

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// formatBatchResults formats the items in the specified format.
func formatBatchResults(items []*Item, format string) (string, error) {
	switch format {
	case "json":
		return formatJSON(items)
	case "csv":
		return formatCSV(items)
	default: // text
		return formatText(items), nil
	}
}

func formatJSON(items []*Item) (string, error) {
	report := struct {
		Files []*Item `json:"files"`
	}{Files: nonNil(items)}
	bts, err := json.MarshalIndent(report, "", "  ")
	return string(bts), err
}

func formatCSV(items []*Item) (string, error) {
	var output strings.Builder
	writer := csv.NewWriter(&output)
	rows := [][]string{{"file", "kind", "status", "output", "type", "format", "bytes", "duration_ms", "error"}}
	for _, it := range nonNil(items) {
		rows = append(rows, []string{
			it.File,
			it.Kind,
			strconv.Itoa(it.Status),
			it.Output,
			it.Type,
			it.Format,
			strconv.Itoa(it.Bytes),
			strconv.FormatInt(it.Duration.Milliseconds(), 10),
			it.Error,
		})
	}
	if err := writer.WriteAll(rows); err != nil {
		return "", err
	}
	return output.String(), nil
}

func formatText(items []*Item) string {
	var output strings.Builder
	for _, it := range nonNil(items) {
		if it.OK() {
			fmt.Fprintf(&output, "OK   %s -> %s (%s %s, %d bytes, %v)\n",
				it.File, it.Output, it.Type, it.Format, it.Bytes, it.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(&output, "FAIL %s: %d %s\n", it.File, it.Status, it.Error)
		}
	}
	return output.String()
}

func nonNil(items []*Item) []*Item {
	out := make([]*Item, 0, len(items))
	for _, it := range items {
		if it != nil {
			out = append(out, it)
		}
	}
	return out
}
