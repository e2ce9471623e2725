package main

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

// results 取出回應中的 result 陣列
func results(out map[string]any) []map[string]any {
	raw, _ := out["result"].([]any)
	rows := make([]map[string]any, 0, len(raw))
	for _, r := range raw {
		if m, ok := r.(map[string]any); ok {
			rows = append(rows, m)
		}
	}
	return rows
}

func renderTable(w io.Writer, header []string, rows []map[string]any, keys ...string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	for _, r := range rows {
		line := make([]string, 0, len(keys))
		for _, k := range keys {
			line = append(line, fmt.Sprint(r[k]))
		}
		table.Append(line)
	}
	table.Render()
}

// printCursors 數字在 Struct 中是 float64
func printCursors(w io.Writer, out map[string]any) {
	if next, ok := out["next"].(float64); ok {
		fmt.Fprintf(w, "next index: %d\n", int(next))
	}
	if prev, ok := out["prev"].(float64); ok {
		fmt.Fprintf(w, "prev index: %d\n", int(prev))
	}
}
