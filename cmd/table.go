package cmd

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// newTable returns a borderless table in the style used by every listing
// command. Cells are never wrapped so IDs stay copyable.
func newTable(w io.Writer, header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoWrapText(false)
	t.SetAutoFormatHeaders(true)
	t.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	t.SetBorder(false)
	t.SetColumnSeparator("")
	t.SetRowSeparator("─")
	t.SetHeaderLine(true)
	t.SetTablePadding("  ")
	t.SetNoWhiteSpace(true)
	return t
}
