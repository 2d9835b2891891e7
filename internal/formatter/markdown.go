// Package formatter provides markdown formatting utilities.
package formatter

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// AlignTables formats a markdown document, padding table cells so every
// column lines up at its widest cell's display width. Non-table lines pass
// through unchanged.
func AlignTables(content string) string {
	lines := strings.Split(content, "\n")

	var formattedLines []string

	var tableBuffer []string

	for _, line := range lines {
		trimmedLine := strings.TrimSpace(line)

		// Simple heuristic for a table row: starts and ends with |.
		if strings.HasPrefix(trimmedLine, "|") && strings.HasSuffix(trimmedLine, "|") {
			tableBuffer = append(tableBuffer, line)

			continue
		}

		// A non-table line flushes any buffered table.
		if len(tableBuffer) > 0 {
			formattedLines = append(formattedLines, processTable(tableBuffer)...)
			tableBuffer = nil
		}

		formattedLines = append(formattedLines, line)
	}

	if len(tableBuffer) > 0 {
		formattedLines = append(formattedLines, processTable(tableBuffer)...)
	}

	return strings.Join(formattedLines, "\n")
}

func processTable(rows []string) []string {
	// A lone row has no header+separator pair to align against.
	if len(rows) < 2 {
		return rows
	}

	// 1. Parse all cells
	var table [][]string

	for _, row := range rows {
		parts := strings.Split(row, "|")

		// Leading/trailing pipes produce empty fragments; drop them.
		if len(parts) > 0 && strings.TrimSpace(parts[0]) == "" {
			parts = parts[1:]
		}

		if len(parts) > 0 && strings.TrimSpace(parts[len(parts)-1]) == "" {
			parts = parts[:len(parts)-1]
		}

		var cells []string
		for _, p := range parts {
			cells = append(cells, strings.TrimSpace(p))
		}

		table = append(table, cells)
	}

	if len(table) == 0 {
		return rows
	}

	colCount := len(table[0])
	for _, row := range table {
		if len(row) > colCount {
			colCount = len(row)
		}
	}

	// 2. Identify the separator row (usually index 1).
	separatorRowIdx := -1

	if len(table) > 1 {
		isSep := true

		for _, cell := range table[1] {
			trim := strings.TrimSpace(cell)
			trim = strings.ReplaceAll(trim, "-", "")
			trim = strings.ReplaceAll(trim, ":", "")
			trim = strings.ReplaceAll(trim, " ", "")

			if trim != "" {
				isSep = false

				break
			}
		}

		if isSep {
			separatorRowIdx = 1
		}
	}

	// 3. Calculate max display widths per column.
	colWidths := make([]int, colCount)

	for rIdx, row := range table {
		if rIdx == separatorRowIdx {
			continue
		}

		for i := 0; i < len(row) && i < colCount; i++ {
			width := runewidth.StringWidth(row[i])
			if width > colWidths[i] {
				colWidths[i] = width
			}
		}
	}

	// Separator needs at least "---".
	for i := range colWidths {
		if colWidths[i] < 3 {
			colWidths[i] = 3
		}
	}

	// 4. Reconstruct lines.
	var result []string

	for i, row := range table {
		var sb strings.Builder

		sb.WriteString("|")

		isSeparator := i == separatorRowIdx

		for j := 0; j < colCount; j++ {
			sb.WriteString(" ")

			content := ""
			if j < len(row) {
				content = row[j]
			}

			if isSeparator {
				sb.WriteString(strings.Repeat("-", colWidths[j]))
			} else {
				sb.WriteString(content)

				padding := colWidths[j] - runewidth.StringWidth(content)
				if padding > 0 {
					sb.WriteString(strings.Repeat(" ", padding))
				}
			}

			sb.WriteString(" |")
		}

		result = append(result, sb.String())
	}

	return result
}
