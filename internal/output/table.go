package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"cohort/internal/batch"
)

// RenderReport writes the aggregated view of a batch: one table row per
// target in resolution order, followed by a statistics block.
func RenderReport(w io.Writer, rep batch.Report) error {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Student", "Success", "Time"})
	table.SetAutoWrapText(false)
	for _, r := range rep.Results {
		mark := green.Sprint("✓")
		name := green.Sprint(r.Target)
		if !r.Succeeded {
			mark = red.Sprint("✗")
			name = red.Sprint(r.Target)
		}
		table.Append([]string{name, mark, formatSeconds(r.Duration.Seconds())})
	}
	table.Render()

	stats := tablewriter.NewWriter(w)
	stats.SetHeader([]string{"Statistic", "Value"})
	stats.SetAutoWrapText(false)
	stats.Append([]string{"Command", rep.Description})
	stats.Append([]string{green.Sprint("Total Passing"), fmt.Sprintf("%d", rep.Passing)})
	stats.Append([]string{red.Sprint("Total Failing"), fmt.Sprintf("%d", rep.Failing)})
	stats.Append([]string{"Min Time", formatSeconds(rep.MinTime.Seconds())})
	stats.Append([]string{"Max Time", formatSeconds(rep.MaxTime.Seconds())})
	stats.Append([]string{"Average Time", formatSeconds(rep.AverageTime.Seconds())})
	stats.Render()

	return nil
}

func formatSeconds(s float64) string {
	return fmt.Sprintf("%.3fs", s)
}
