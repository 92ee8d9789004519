package loremaker

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrEnvelope = errors.New("response is not a gviz envelope")

	envelopeRe     = regexp.MustCompile(`(?s)^[^(]*\((.*)\)\s*;?\s*$`)
	columnLetterRe = regexp.MustCompile(`^[A-Z]{1,3}$`)
)

type gvizResponse struct {
	Status string `json:"status"`
	Errors []struct {
		Reason       string `json:"reason"`
		Message      string `json:"message"`
		DetailedText string `json:"detailed_message"`
	} `json:"errors"`
	Table *struct {
		Cols []struct {
			ID    string `json:"id"`
			Label string `json:"label"`
			Type  string `json:"type"`
		} `json:"cols"`
		Rows []struct {
			C []*gvizCell `json:"c"`
		} `json:"rows"`
	} `json:"table"`
}

type gvizCell struct {
	V any     `json:"v"`
	F *string `json:"f"`
}

// ParseGviz decodes a visualization query response of the form
// `callback({...});` into rows of strings. When the columns carry labels they
// are emitted as the first row.
func ParseGviz(body []byte) ([][]string, error) {
	m := envelopeRe.FindSubmatch(body)
	if m == nil {
		return nil, ErrEnvelope
	}

	var resp gvizResponse
	if err := json.Unmarshal(m[1], &resp); err != nil {
		return nil, fmt.Errorf("decode gviz json: %w", err)
	}
	if strings.EqualFold(resp.Status, "error") {
		msg := "unknown error"
		if len(resp.Errors) > 0 {
			e := resp.Errors[0]
			msg = firstNonEmpty(e.DetailedText, e.Message, e.Reason, msg)
		}
		return nil, fmt.Errorf("gviz error: %s", msg)
	}
	if resp.Table == nil {
		return nil, errors.New("gviz response has no table")
	}

	var rows [][]string

	header := make([]string, len(resp.Table.Cols))
	hasLabels := false
	for i, col := range resp.Table.Cols {
		label := strings.TrimSpace(col.Label)
		if label == "" && !columnLetterRe.MatchString(strings.TrimSpace(col.ID)) {
			label = strings.TrimSpace(col.ID)
		}
		if label != "" {
			hasLabels = true
		}
		header[i] = label
	}
	if hasLabels {
		rows = append(rows, header)
	}

	for _, r := range resp.Table.Rows {
		row := make([]string, len(r.C))
		for i, c := range r.C {
			row[i] = c.String()
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// String renders a cell the way the sheet displays it: strings verbatim,
// other values by their formatted text when present.
func (c *gvizCell) String() string {
	if c == nil {
		return ""
	}
	formatted := ""
	if c.F != nil {
		formatted = *c.F
	}
	switch v := c.V.(type) {
	case nil:
		return formatted
	case string:
		return v
	case float64:
		if formatted != "" {
			return formatted
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if formatted != "" {
			return formatted
		}
		return strconv.FormatBool(v)
	default:
		if formatted != "" {
			return formatted
		}
		return fmt.Sprint(v)
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// EncodeGviz renders rows as a visualization query response, the first row
// becoming the column labels. All cells are typed as strings.
func EncodeGviz(reqID string, rows [][]string) ([]byte, error) {
	type col struct {
		ID    string `json:"id"`
		Label string `json:"label"`
		Type  string `json:"type"`
	}
	type cell struct {
		V string `json:"v"`
	}
	type row struct {
		C []*cell `json:"c"`
	}

	var header []string
	var data [][]string
	if len(rows) > 0 {
		header, data = rows[0], rows[1:]
	}

	width := len(header)
	for _, r := range data {
		width = max(width, len(r))
	}

	cols := make([]col, width)
	for i := range cols {
		cols[i] = col{ID: columnLetter(i), Label: cellAt(header, i), Type: "string"}
	}
	out := make([]row, 0, len(data))
	for _, r := range data {
		cells := make([]*cell, width)
		for i := range cells {
			if i < len(r) && r[i] != "" {
				cells[i] = &cell{V: r[i]}
			}
		}
		out = append(out, row{C: cells})
	}

	payload, err := json.Marshal(map[string]any{
		"version": "0.6",
		"reqId":   reqID,
		"status":  "ok",
		"table":   map[string]any{"cols": cols, "rows": out},
	})
	if err != nil {
		return nil, err
	}
	return []byte("/*O_o*/\ngoogle.visualization.Query.setResponse(" + string(payload) + ");"), nil
}

// EncodeGvizError renders an error response the way the sheet endpoint does.
func EncodeGvizError(reqID, reason, message string) []byte {
	payload, _ := json.Marshal(map[string]any{
		"version": "0.6",
		"reqId":   reqID,
		"status":  "error",
		"errors": []map[string]string{{
			"reason":           reason,
			"message":          message,
			"detailed_message": message,
		}},
	})
	return []byte("/*O_o*/\ngoogle.visualization.Query.setResponse(" + string(payload) + ");")
}

// columnLetter returns the spreadsheet letter for a zero-based column.
func columnLetter(i int) string {
	s := ""
	for i >= 0 {
		s = string(rune('A'+i%26)) + s
		i = i/26 - 1
	}
	return s
}
