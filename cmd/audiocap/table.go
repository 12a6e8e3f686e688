package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"audiocap/internal/deps"
)

// renderDependencyTable lists tool availability. Missing required tools are
// marked ERROR and missing optional ones WARN.
func renderDependencyTable(statuses []deps.Status, colorize bool) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Tool", "Status", "Command", "Purpose"})

	for _, st := range statuses {
		kind := statusOK
		label := "OK"
		command := st.Command
		switch {
		case !st.Available && st.Optional:
			kind, label = statusWarn, "WARN"
			command = st.Detail
		case !st.Available:
			kind, label = statusError, "ERROR"
			command = st.Detail
		}
		if colorize {
			label = dependencyColors(kind).Sprint(label)
		}
		name := st.Name
		if st.Optional {
			name += " (optional)"
		}
		tw.AppendRow(table.Row{name, label, command, st.Description})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignCenter, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func dependencyColors(kind statusKind) text.Colors {
	switch kind {
	case statusOK:
		return text.Colors{text.FgGreen}
	case statusWarn:
		return text.Colors{text.FgYellow}
	case statusError:
		return text.Colors{text.FgRed}
	default:
		return text.Colors{text.FgBlue}
	}
}
