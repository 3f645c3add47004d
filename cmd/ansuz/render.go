package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/tools"
)

func renderTable(w io.Writer, header table.Row, rows []table.Row, res tools.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	t.AppendRows(rows)
	t.Render()
	fmt.Fprintln(w, res.Message)
}

func renderPreferences(w io.Writer, p *models.VaultPreferences) {
	s := p.Settings
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Setting", "Value"})
	t.AppendRows([]table.Row{
		{"date_format", s.DateFormat},
		{"time_format", s.TimeFormat},
		{"response_style.verbosity", s.ResponseStyle.Verbosity},
		{"response_style.bullet_points", s.ResponseStyle.BulletPoints},
		{"response_style.timestamps", s.ResponseStyle.Timestamps},
	})

	names := make([]string, 0, len(s.DefaultFolders))
	for name := range s.DefaultFolders {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t.AppendRow(table.Row{"default_folders." + name, s.DefaultFolders[name]})
	}
	t.Render()

	if ctx := strings.TrimSpace(p.Context); ctx != "" {
		fmt.Fprintf(w, "\n%s\n", ctx)
	}
}
