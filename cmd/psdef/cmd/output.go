package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/corey/psdef/internal/app"
	"github.com/corey/psdef/internal/domain/extract"
)

// ANSI color codes for terminal output.
const (
	colorReset   = "\033[0m"
	colorBold    = "\033[1m"
	colorCyan    = "\033[36m"
	colorMagenta = "\033[35m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorGray    = "\033[90m"
)

// palette carries the escape codes for one output mode. The zero value is
// the plain palette: every code empty, output uncolored.
type palette struct {
	reset, bold, cyan, magenta, green, yellow, gray string
}

// newPalette returns the colored palette when useColor is true, the plain
// one otherwise.
func newPalette(useColor bool) palette {
	if !useColor {
		return palette{}
	}
	return palette{
		reset:   colorReset,
		bold:    colorBold,
		cyan:    colorCyan,
		magenta: colorMagenta,
		green:   colorGreen,
		yellow:  colorYellow,
		gray:    colorGray,
	}
}

// formatScanReports formats a scan batch for terminal display.
//
//	⚡ 12 definitions │ 3 files │ 4ms
//	  deploy.ps1:Get-Target(name, env):3
//	  deploy.ps1:Select-Ready():17  filter
//	  deploy.ps1:Invoke-Step(step):24  nested
//	  broken.ps1: syntax error near ')))' (line 9)
//	  gone.ps1: error: path not found: ...
func formatScanReports(reports []*app.FileReport, elapsed time.Duration, pal palette, quiet bool) string {
	var sb strings.Builder

	if !quiet {
		defs := 0
		cached := 0
		for _, r := range reports {
			defs += len(r.Records)
			if r.FromCache {
				cached++
			}
		}
		sb.WriteString(fmt.Sprintf("%s⚡ %d definitions%s │ %d files │ %s",
			pal.bold, defs, pal.reset, len(reports), formatElapsed(elapsed)))
		if cached > 0 {
			sb.WriteString(fmt.Sprintf(" │ %d cached", cached))
		}
		sb.WriteString("\n")
	}

	for _, r := range reports {
		sb.WriteString(formatFileReport(r, pal))
	}
	return sb.String()
}

// formatFileReport formats one file's records and problem lines.
func formatFileReport(r *app.FileReport, pal palette) string {
	var sb strings.Builder

	if r.Failed() {
		sb.WriteString(fmt.Sprintf("  %s%s%s: %serror: %v%s\n",
			pal.cyan, r.Path, pal.reset, pal.yellow, r.Err, pal.reset))
		return sb.String()
	}

	for _, rec := range r.Records {
		sb.WriteString(formatRecordLine(rec, pal))
	}
	for _, d := range r.Diagnostics {
		sb.WriteString(fmt.Sprintf("  %s%s%s: %s%s%s\n",
			pal.cyan, r.Path, pal.reset, pal.yellow, d.Message, pal.reset))
	}
	for _, se := range r.SyntaxErrors {
		sb.WriteString(fmt.Sprintf("  %s%s%s: %s%s (line %d)%s\n",
			pal.cyan, r.Path, pal.reset, pal.yellow, se.Message, se.Line, pal.reset))
	}
	return sb.String()
}

// formatRecordLine formats one definition: file:Name(params):line plus a
// magenta badge for the filter form and a gray one for nested definitions.
func formatRecordLine(rec *extract.Record, pal palette) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("  %s%s%s:%s(%s):%d",
		pal.cyan, rec.FilePath, pal.reset,
		rec.Name, strings.Join(rec.ParameterNames, ", "), rec.LineNumber))
	if rec.IsFilter {
		sb.WriteString(fmt.Sprintf("  %sfilter%s", pal.magenta, pal.reset))
	}
	if rec.Depth > 0 {
		sb.WriteString(fmt.Sprintf("  %snested%s", pal.gray, pal.reset))
	}
	sb.WriteString("\n")
	return sb.String()
}

// formatFindResults formats cache query hits, one record per line.
func formatFindResults(records []*extract.Record, pattern string, pal palette) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s⚡ %d definitions%s │ %q\n",
		pal.bold, len(records), pal.reset, pattern))
	for _, rec := range records {
		sb.WriteString(formatRecordLine(rec, pal))
	}
	return sb.String()
}

// formatElapsed renders a duration the way the banner shows it.
func formatElapsed(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Round(10 * time.Millisecond).String()
}

// formatBytes renders a byte count with a binary unit suffix.
func formatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// writeJSON emits v with stable two-space indentation and a trailing
// newline.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
