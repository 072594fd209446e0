// Package render formats planned requests and run outcomes for terminals.
package render

import (
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/danmuck/sonicctl/internal/resources"
	"github.com/danmuck/sonicctl/internal/restconf"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	return t
}

// Outcomes writes one summary row per outcome.
func Outcomes(w io.Writer, outcomes []resources.Outcome) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Device", "Resource", "State", "Mode", "Changed", "Requests", "Warnings"})
	for _, out := range outcomes {
		mode := "apply"
		if out.CheckMode {
			mode = "check"
		}
		t.AppendRow(table.Row{
			out.Device,
			out.Resource,
			out.State,
			mode,
			strconv.FormatBool(out.Summary.Changed),
			len(out.Summary.Requests),
			strings.Join(out.Summary.Warnings, "\n"),
		})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, AutoMerge: true},
	})
	t.Render()
}

// Requests writes the ordered request list of one outcome.
func Requests(w io.Writer, requests []restconf.Request) {
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "Method", "Path", "Data"})
	for i, req := range requests {
		t.AppendRow(table.Row{i + 1, strings.ToUpper(string(req.Method)), req.Path, payload(req.Data)})
	}
	t.Render()
}

// Metadata lists registered resources.
func Metadata(w io.Writer, list []resources.Metadata) {
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Name", "States", "Description"})
	for _, meta := range list {
		states := make([]string, 0, len(meta.States))
		for _, st := range meta.States {
			states = append(states, st.String())
		}
		t.AppendRow(table.Row{meta.ID, meta.Name, strings.Join(states, ","), meta.Description})
	}
	t.Render()
}

func payload(data map[string]any) string {
	if len(data) == 0 {
		return ""
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return "<unencodable>"
	}
	return string(raw)
}
