// csvutil/decode.go
package csvutil

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
)

var ErrHeaderNotFound = errors.New("csv header not found")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeBytes decodes CSV bytes the way Windows exports tend to arrive:
// UTF-8 with BOM, plain UTF-8, then CP932/Shift_JIS. As a last resort the
// input is taken as UTF-8 with invalid bytes replaced.
func DecodeBytes(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data)
	}

	if decoded, err := japanese.ShiftJIS.NewDecoder().Bytes(data); err == nil {
		// x/text substitutes U+FFFD instead of failing; treat that as a miss
		// since Shift_JIS cannot encode the replacement character itself.
		if !strings.ContainsRune(string(decoded), utf8.RuneError) {
			return string(decoded)
		}
	}

	return string(bytes.ToValidUTF8(data, []byte(string(utf8.RuneError))))
}

// 英日両方のヘッダ名を正規化する
var headerSynonyms = map[string]string{
	"name":      "name",
	"asset_tag": "asset_tag",
	"assettag":  "asset_tag",
	"tag":       "asset_tag",
	"category":  "category",
	"location":  "location",
	"note":      "note",

	"名前":   "name",
	"備品名":  "name",
	"管理番号": "asset_tag",
	"資産番号": "asset_tag",
	"カテゴリ": "category",
	"分類":   "category",
	"場所":   "location",
	"保管場所": "location",
	"メモ":   "note",
	"備考":   "note",
}

// NormalizeHeader maps a header cell to one of the canonical field names
// (name, asset_tag, category, location, note). Unrecognized headers pass
// through unchanged and are ignored downstream.
func NormalizeHeader(h string) string {
	h = strings.TrimSpace(h)
	if canonical, ok := headerSynonyms[h]; ok {
		return canonical
	}
	if canonical, ok := headerSynonyms[strings.ToLower(h)]; ok {
		return canonical
	}
	return h
}

// BytesToRows parses CSV bytes into string-keyed rows. Missing cells become
// "" rather than being absent; extra cells beyond the header are dropped.
func BytesToRows(data []byte) ([]map[string]string, error) {
	text := DecodeBytes(data)

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, ErrHeaderNotFound
	}

	fields := make([]string, len(header))
	for i, h := range header {
		fields[i] = NormalizeHeader(h)
	}

	var rows []map[string]string
	for {
		record, err := reader.Read()
		if err != nil {
			break
		}
		row := make(map[string]string, len(fields))
		for i, f := range fields {
			if i < len(record) {
				row[f] = record[i]
			} else {
				row[f] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
