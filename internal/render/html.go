// Package render draws the rate table model as a static HTML page.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"time"

	"ratedesk/internal/ratetable"
)

type pageRow struct {
	Name        string
	Link        string
	Programs    []ratetable.Program
	BestProgram string
	BestRate    string
}

type pageData struct {
	Title       string
	Category    string
	Search      string
	Headers     ratetable.Headers
	SortKey     string
	SortDir     string
	Rows        []pageRow
	Total       int
	GeneratedAt string
}

var pageTemplate = template.Must(template.New("rates").Parse(pageHTML))

// HTML writes the visible rows of table, in display order, as a page.
func HTML(w io.Writer, table *ratetable.Table, now time.Time) error {
	data := pageData{
		Title:       "Mortgage Rates",
		Category:    table.Category().Label(),
		Search:      table.Search(),
		Headers:     table.Headers(),
		Total:       table.Len(),
		GeneratedAt: now.Format("Jan 02, 2006 15:04"),
	}
	if key, dir, ok := table.Sort().Active(); ok {
		data.SortKey = string(key)
		data.SortDir = string(dir)
	}
	for _, r := range table.VisibleRows() {
		data.Rows = append(data.Rows, pageRow{
			Name:        r.Name,
			Link:        r.Link,
			Programs:    r.Programs,
			BestProgram: r.BestProgramDisplay(),
			BestRate:    r.BestRateDisplay(),
		})
	}

	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render html: %w", err)
	}
	return nil
}

// WriteFile renders table into path, creating parent directories.
func WriteFile(path string, table *ratetable.Table, now time.Time) error {
	var buf bytes.Buffer
	if err := HTML(&buf, table, now); err != nil {
		return err
	}
	return Save(path, buf.Bytes())
}

// Save writes an already rendered page to path, creating parent directories.
func Save(path string, page []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create export dir: %w", err)
		}
	}
	if err := os.WriteFile(path, page, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <style>
        body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 0; background-color: #f4f7fa; color: #333; line-height: 1.6; }
        .container { max-width: 1200px; margin: 30px auto; padding: 20px; background-color: #fff; border-radius: 8px; box-shadow: 0 4px 12px rgba(0, 0, 0, 0.08); }
        h1 { color: #2c3e50; text-align: center; margin-bottom: 10px; }
        .meta { color: #7e8c80; text-align: center; font-size: 0.9em; }
        table { width: 100%; border-collapse: collapse; margin-top: 25px; }
        th, td { border: 1px solid #e0e6ed; padding: 10px 12px; text-align: left; vertical-align: top; }
        th { background-color: #4CAF50; color: white; text-transform: uppercase; letter-spacing: 0.05em; font-size: 0.9em; }
        th.asc::after { content: " \2191"; }
        th.desc::after { content: " \2193"; }
        .program-table th { background-color: #8FA082; font-size: 0.8em; }
        .program-table td { border-color: #eef2ee; padding: 4px 8px; }
        a { color: #007bff; text-decoration: none; }
        a:hover { text-decoration: underline; }
    </style>
</head>
<body>
    <div class="container">
        <h1>{{.Title}}</h1>
        <p class="meta">{{.Category}}{{if .Search}} &middot; matching &ldquo;{{.Search}}&rdquo;{{end}} &middot; {{len .Rows}} of {{.Total}} institutions &middot; generated {{.GeneratedAt}}</p>
        <table id="mortgageRatesTable">
        <thead>
            <tr>
                <th data-sort-key="name"{{if eq .SortKey "name"}} class="{{.SortDir}}"{{end}}>Credit Union</th>
                <th data-sort-key="link"{{if eq .SortKey "link"}} class="{{.SortDir}}"{{end}}>Link</th>
                <th>Programs</th>
                <th data-sort-key="bestprogram"{{if eq .SortKey "bestprogram"}} class="{{.SortDir}}"{{end}}>{{.Headers.BestProgram}}</th>
                <th data-sort-key="bestrate"{{if eq .SortKey "bestrate"}} class="{{.SortDir}}"{{end}}>{{.Headers.BestRate}}</th>
            </tr>
        </thead>
        <tbody>
{{- range .Rows}}
            <tr>
                <td>{{.Name}}</td>
                <td>{{if .Link}}<a href="{{.Link}}" target="_blank" rel="noopener">{{.Link}}</a>{{end}}</td>
                <td><table class="program-table"><thead><tr><th>Program</th><th>Interest Rate</th></tr></thead><tbody>
{{- range .Programs}}<tr><td>{{.Name}}</td><td>{{.Rate}}</td></tr>{{end -}}
                </tbody></table></td>
                <td>{{.BestProgram}}</td>
                <td>{{.BestRate}}</td>
            </tr>
{{- end}}
        </tbody>
        </table>
    </div>
</body>
</html>
`
