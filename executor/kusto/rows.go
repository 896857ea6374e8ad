package kusto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hupe1980/kustopilot/core"
)

// v1 REST response shape. When a response carries multiple tables the first
// one is the primary result; trailing tables hold status and the table of
// contents.
type queryResponse struct {
	Tables []resultTable `json:"Tables"`
}

type resultTable struct {
	TableName string   `json:"TableName"`
	Columns   []column `json:"Columns"`
	Rows      [][]any  `json:"Rows"`
}

type column struct {
	ColumnName string `json:"ColumnName"`
	DataType   string `json:"DataType"`
	ColumnType string `json:"ColumnType"`
}

// decodeRows extracts the primary result table and serializes every value
// into a portable form: integers for long/int columns, float64 for reals,
// RFC3339 strings for temporal values, plain strings otherwise.
func decodeRows(body []byte) ([]core.Row, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var resp queryResponse
	if err := dec.Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode query response: %w", err)
	}
	if len(resp.Tables) == 0 {
		return nil, nil
	}

	primary := resp.Tables[0]
	rows := make([]core.Row, 0, len(primary.Rows))
	for _, raw := range primary.Rows {
		row := make(core.Row, len(primary.Columns))
		for i, col := range primary.Columns {
			if i >= len(raw) {
				break
			}
			row[col.ColumnName] = normalizeValue(raw[i], col)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// normalizeValue converts a decoded JSON value per its column type.
func normalizeValue(v any, col column) any {
	switch val := v.(type) {
	case nil:
		return nil
	case json.Number:
		switch col.ColumnType {
		case "long", "int":
			if n, err := val.Int64(); err == nil {
				return n
			}
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case string:
		if col.ColumnType == "datetime" {
			// Normalize to RFC3339 so downstream consumers never see the
			// backend's native temporal encoding.
			if t, err := time.Parse(time.RFC3339Nano, val); err == nil {
				return t.Format(time.RFC3339Nano)
			}
		}
		return val
	default:
		return val
	}
}
