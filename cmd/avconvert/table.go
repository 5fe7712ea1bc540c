package main

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment struct {
	Number int
	Align  text.Align
}

func renderTable(w io.Writer, headers []string, rows [][]string, aligns []columnAlignment) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)

	headerRow := make(table.Row, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	tw.AppendHeader(headerRow)

	for _, row := range rows {
		tableRow := make(table.Row, len(row))
		for i, cell := range row {
			tableRow[i] = cell
		}
		tw.AppendRow(tableRow)
	}

	if len(aligns) > 0 {
		configs := make([]table.ColumnConfig, 0, len(aligns))
		for _, align := range aligns {
			configs = append(configs, table.ColumnConfig{
				Number:      align.Number,
				Align:       align.Align,
				AlignHeader: text.AlignLeft,
			})
		}
		tw.SetColumnConfigs(configs)
	}

	tw.Render()
}
