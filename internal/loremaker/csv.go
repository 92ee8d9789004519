package loremaker

import "strings"

// ParseCSV splits CSV text into rows of cells.
//
// A quote toggles quoted mode, a doubled quote inside quoted mode is a literal
// quote, and commas/newlines only separate outside quotes. Carriage returns
// are dropped everywhere. A trailing newline does not produce an empty row.
func ParseCSV(text string) [][]string {
	var (
		rows     [][]string
		row      []string
		cell     strings.Builder
		inQuotes bool
		dirty    bool // current row has content or a separator
	)

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case ch == '\r':
			continue
		case ch == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				cell.WriteRune('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
			dirty = true
		case ch == ',' && !inQuotes:
			row = append(row, cell.String())
			cell.Reset()
			dirty = true
		case ch == '\n' && !inQuotes:
			row = append(row, cell.String())
			rows = append(rows, row)
			row = nil
			cell.Reset()
			dirty = false
		default:
			cell.WriteRune(ch)
			dirty = true
		}
	}
	if dirty {
		row = append(row, cell.String())
		rows = append(rows, row)
	}
	return rows
}
