package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// renderTable draws rows under headers. Short rows are padded; columns
// listed in wrap are word-wrapped at wrapWidth.
func renderTable(headers []string, rows [][]string, wrap []int) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range r {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, len(wrap))
	for _, col := range wrap {
		if col < 1 || col > columns {
			continue
		}
		configs = append(configs, table.ColumnConfig{
			Number:           col,
			AlignHeader:      text.AlignLeft,
			WidthMax:         wrapWidth,
			WidthMaxEnforcer: text.WrapSoft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

const wrapWidth = 60
