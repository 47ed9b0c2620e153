package session

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gosuri/uitable"
	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	krsmcp "github.com/fleezesd/krs/internal/krs-mcp-server/mcp"
)

const ruleWidth = 50

var statusLine = regexp.MustCompile(`^(.+?) \(([^()]*)\)$`)

// Format renders a tool result for the terminal. A multi-line list of
// "name (status)" lines becomes a Pod Name/Status table; anything else is
// printed under the tool title.
func Format(toolName string, raw any) string {
	title := cases.Title(language.English).String(strings.ReplaceAll(toolName, "_", " "))
	text := coerce(raw)

	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) > 1 {
		if table, ok := statusTable(lines); ok {
			return title + ":\n" + table
		}
	}
	return title + ":\n" + text
}

func statusTable(lines []string) (string, bool) {
	table := uitable.New()
	table.Separator = " "
	table.AddRow("Pod Name", "Status")
	for _, line := range lines {
		m := statusLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			return "", false
		}
		table.AddRow(m[1], m[2])
	}

	rows := strings.Split(table.String(), "\n")
	width := ruleWidth
	for i, row := range rows {
		rows[i] = strings.TrimRight(row, " ")
		width = max(width, len(rows[i]))
	}
	out := append([]string{rows[0], strings.Repeat("-", width)}, rows[1:]...)
	return strings.Join(out, "\n"), true
}

func coerce(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case krsmcp.Result:
		return v.Text
	case *krsmcp.Result:
		return v.Text
	case *mcp.CallToolResult:
		return resultText(v)
	default:
		return fmt.Sprint(v)
	}
}
