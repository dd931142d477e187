package cmd

import "github.com/pterm/pterm"

// PrintTableNoPad renders data as a plain pterm table.
func PrintTableNoPad(data pterm.TableData, hasHeader bool) {
	_ = pterm.DefaultTable.WithHasHeader(hasHeader).WithData(data).Render()
}
