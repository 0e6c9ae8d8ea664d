package indexermap

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/olekukonko/tablewriter"
)

// PassSummary counts records through one (network, score category) pass.
type PassSummary struct {
	Network  string
	Category string
	Joined   int
	Excluded int
	Rendered int
	Path     string
}

func WriteSummary(w io.Writer, passes []PassSummary) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(true)
	table.SetHeader([]string{"Network", "Score Type", "Joined", "Excluded", "Rendered", "File"})

	prevNetwork := ""
	for _, p := range passes {
		net := p.Network
		if net == prevNetwork {
			net = ""
		}
		prevNetwork = p.Network

		file := "-"
		if p.Path != "" {
			file = filepath.Base(p.Path)
		}
		table.Append([]string{
			net, p.Category,
			fmt.Sprintf("%d", p.Joined),
			fmt.Sprintf("%d", p.Excluded),
			fmt.Sprintf("%d", p.Rendered),
			file,
		})
	}
	table.Render()
}
