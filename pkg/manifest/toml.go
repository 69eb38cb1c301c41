package manifest

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"
)

type tomlDoc struct {
	Entry []map[string]any `toml:"entry"`
}

func decodeTOML(data []byte) ([]map[string]string, error) {
	var doc tomlDoc
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, err
	}
	rows := make([]map[string]string, len(doc.Entry))
	for i, tbl := range doc.Entry {
		row := make(map[string]string, len(tbl))
		for k, v := range tbl {
			switch v := v.(type) {
			case string:
				row[k] = v
			case int64, float64, bool:
				row[k] = fmt.Sprint(v)
			default:
				return nil, fmt.Errorf("entry %d: field %q must be a scalar, got %T", i+1, k, v)
			}
		}
		rows[i] = row
	}
	return rows, nil
}

// encodeTOML writes one [[entry]] table per row, omitting empty cells.
func encodeTOML(columns []string, rows []map[string]string) ([]byte, error) {
	var buf bytes.Buffer
	for i, row := range rows {
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString("[[entry]]\n")
		tbl := make(map[string]string, len(columns))
		for _, col := range columns {
			if v := row[col]; v != "" {
				tbl[col] = v
			}
		}
		if err := encodeTable(&buf, columns, tbl); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// encodeTable writes key = value lines in column order. Values go through
// the toml encoder so that quoting and escaping stay valid TOML.
func encodeTable(buf *bytes.Buffer, columns []string, tbl map[string]string) error {
	for _, col := range columns {
		v, ok := tbl[col]
		if !ok {
			continue
		}
		var line bytes.Buffer
		if err := toml.NewEncoder(&line).Encode(map[string]string{col: v}); err != nil {
			return err
		}
		buf.Write(line.Bytes())
	}
	return nil
}
