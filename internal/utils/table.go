package utils

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// TableOptions defines options for table creation
type TableOptions struct {
	Title    string
	MaxWidth int // per column, 0 for no limit
}

// CreateTable creates a table writing to w with the themed style
func CreateTable(w io.Writer, opts TableOptions) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)

	if opts.Title != "" {
		t.SetTitle(opts.Title)
	}

	customStyle := table.StyleLight
	customStyle.Color.Header = Theme.TableHeader
	customStyle.Color.Border = Theme.TableBorder
	customStyle.Color.Row = Theme.TableRow
	customStyle.Color.RowAlternate = Theme.TableAltRow
	customStyle.Title.Colors = Theme.Title
	customStyle.Title.Align = text.AlignCenter
	customStyle.Options.SeparateRows = false

	t.SetStyle(customStyle)
	return t
}

// RenderTable renders headers and rows as a table on w
func RenderTable(w io.Writer, headers []string, rows [][]string, opts TableOptions) {
	t := CreateTable(w, opts)

	headerRow := table.Row{}
	for _, header := range headers {
		headerRow = append(headerRow, header)
	}
	t.AppendHeader(headerRow)

	for _, row := range rows {
		tableRow := table.Row{}
		for _, cell := range row {
			tableRow = append(tableRow, cell)
		}
		t.AppendRow(tableRow)
	}

	configs := make([]table.ColumnConfig, 0, len(headers))
	for i := range headers {
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       text.AlignLeft,
			AlignHeader: text.AlignCenter,
			WidthMax:    opts.MaxWidth,
		})
	}
	t.SetColumnConfigs(configs)

	t.Render()
}
