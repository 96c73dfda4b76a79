package pdfparse

import "strings"

// MarkdownTable renders a cell grid as a GitHub-flavored markdown table.
// The first row is treated as the header. Pipe characters inside cells are
// escaped so the rendering stays parseable.
func MarkdownTable(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		sb.WriteByte('|')
		for _, c := range cells {
			sb.WriteByte(' ')
			sb.WriteString(escapeCell(c))
			sb.WriteString(" |")
		}
		sb.WriteByte('\n')
	}

	writeRow(rows[0])
	sb.WriteByte('|')
	for range rows[0] {
		sb.WriteString("---|")
	}
	sb.WriteByte('\n')
	for _, row := range rows[1:] {
		writeRow(row)
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// ParseMarkdownTable recovers the cell grid from a GitHub-flavored
// markdown table. The separator row (|---|---|) is dropped. It returns
// nil when md does not contain at least a header and separator row.
func ParseMarkdownTable(md string) [][]string {
	var lines []string
	for _, ln := range strings.Split(md, "\n") {
		ln = strings.TrimSpace(ln)
		if ln != "" {
			lines = append(lines, ln)
		}
	}
	if len(lines) < 2 || !isSeparatorRow(lines[1]) {
		return nil
	}

	var rows [][]string
	for i, ln := range lines {
		if i == 1 {
			continue
		}
		cells := splitRow(ln)
		if cells == nil {
			return nil
		}
		rows = append(rows, cells)
	}
	return rows
}

// splitRow splits one "| a | b |" line into unescaped cells.
func splitRow(line string) []string {
	if !strings.HasPrefix(line, "|") {
		return nil
	}
	line = strings.TrimPrefix(line, "|")
	line = strings.TrimSuffix(line, "|")

	var cells []string
	var cur strings.Builder
	escaped := false
	for _, r := range line {
		switch {
		case escaped:
			if r != '|' && r != '\\' {
				cur.WriteByte('\\')
			}
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '|':
			cells = append(cells, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if escaped {
		cur.WriteByte('\\')
	}
	cells = append(cells, strings.TrimSpace(cur.String()))
	return cells
}

// isSeparatorRow reports whether line is a markdown header separator such
// as |---|---| or | :--- | ---: |.
func isSeparatorRow(line string) bool {
	if !strings.HasPrefix(line, "|") {
		return false
	}
	sawDash := false
	for _, r := range line {
		switch r {
		case '|', ':', ' ', '\t':
		case '-':
			sawDash = true
		default:
			return false
		}
	}
	return sawDash
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
