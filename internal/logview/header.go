package logview

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"hopper/internal/task"
)

const headerTimeLayout = time.RFC1123Z

func (p *Printer) colorize(s string, colors ...text.Color) string {
	if !p.Color {
		return s
	}
	return text.Colors(colors).Sprint(s)
}

func statusColor(t task.Task) text.Color {
	switch {
	case t.Status == task.StatusRunning:
		return text.FgYellow
	case t.Status == task.StatusDone && t.Result == task.ResultSuccess:
		return text.FgGreen
	case t.Status == task.StatusDone:
		return text.FgRed
	default:
		return text.FgWhite
	}
}

func (p *Printer) renderHeader(t task.Task) string {
	title := table.NewWriter()
	title.SetStyle(table.StyleRounded)
	title.AppendRow(table.Row{
		p.colorize(fmt.Sprintf("Task %d:", t.ID), text.Bold),
		p.colorize(t.Describe(), statusColor(t)),
	})
	title.Style().Options.SeparateColumns = false

	details := table.NewWriter()
	style := table.StyleDefault
	style.Options = table.OptionsNoBordersAndSeparators
	details.SetStyle(style)
	details.AppendRow(table.Row{p.colorize("Command:", text.Bold), t.Command})
	details.AppendRow(table.Row{p.colorize("Path:", text.Bold), t.Path})
	if t.Label != "" {
		details.AppendRow(table.Row{p.colorize("Label:", text.Bold), t.Label})
	}
	start, end := t.StartAndEnd()
	if start != nil {
		details.AppendRow(table.Row{p.colorize("Start:", text.Bold), start.Local().Format(headerTimeLayout)})
	}
	if end != nil {
		details.AppendRow(table.Row{p.colorize("End:", text.Bold), end.Local().Format(headerTimeLayout)})
	}
	details.SetColumnConfigs([]table.ColumnConfig{{Number: 1, Align: text.AlignRight}})

	return title.Render() + "\n" + details.Render()
}

func (p *Printer) outputMarker(complete bool, lines *int) string {
	marker := p.colorize("output:", text.FgGreen, text.Bold)
	if !complete && lines != nil {
		marker += fmt.Sprintf(" (last %d lines)", *lines)
	}
	return marker
}
