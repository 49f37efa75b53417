package tui

import (
	"fmt"
	"strings"

	"github.com/vvka-141/pgfetch/pkg/pgfetch"
)

// RenderSummary formats the end-of-session report: one line per query in
// batch order, then a success tally. Styled output uses the lipgloss
// palette; plain output carries the same information without escapes so
// it stays grep-friendly in CI logs.
func RenderSummary(names []string, results pgfetch.ResultSet, mode Mode) string {
	width := 0
	for _, name := range names {
		if len(name) > width {
			width = len(name)
		}
	}

	var lines []string
	succeeded := 0
	for _, name := range names {
		padded := name + strings.Repeat(" ", width-len(name))

		if results.Succeeded(name) {
			succeeded++
			detail := fmt.Sprintf("%d rows", results[name].RowCount())
			if mode == ModeStyled {
				lines = append(lines, fmt.Sprintf("%s %s  %s", SuccessStyle.Render("OK  "), padded, MutedStyle.Render(detail)))
			} else {
				lines = append(lines, fmt.Sprintf("OK   %s  %s", padded, detail))
			}
			continue
		}

		if mode == ModeStyled {
			lines = append(lines, fmt.Sprintf("%s %s", ErrorStyle.Render("FAIL"), padded))
		} else {
			lines = append(lines, fmt.Sprintf("FAIL %s", padded))
		}
	}

	tally := fmt.Sprintf("%d of %d queries succeeded", succeeded, len(names))

	if mode == ModeStyled {
		body := strings.Join(lines, "\n")
		return TitleStyle.Render("Fetch summary") + "\n" + BoxStyle.Render(body) + "\n" + tally
	}

	return "Fetch summary\n" + strings.Join(lines, "\n") + "\n" + tally
}
