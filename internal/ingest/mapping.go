package ingest

import (
	"strings"
)

// Field names a semantic column of an email upload
type Field string

const (
	FieldSender    Field = "sender"
	FieldRecipient Field = "recipient"
	FieldSubject   Field = "subject"
	FieldBody      Field = "body"
)

// columnRule binds a header predicate to the field it resolves
type columnRule struct {
	field   Field
	substrs []string
}

// Ordered rules; for each field the first matching header wins. The
// substring matching is deliberately loose so heterogeneous mailbox export
// formats map without a fixed schema.
var columnRules = []columnRule{
	{FieldSender, []string{"from", "sender"}},
	{FieldRecipient, []string{"to", "recipient"}},
	{FieldSubject, []string{"subject"}},
	{FieldBody, []string{"body", "text", "message"}},
}

// ColumnMap resolves semantic fields to column indexes of one upload
type ColumnMap map[Field]int

// MapColumns inspects header names case-insensitively and assigns each
// semantic field the first header matching its rule. When no header looks
// like a body, the last column is assumed to be it.
func MapColumns(headers []string) ColumnMap {
	m := ColumnMap{}
	for i, header := range headers {
		header = strings.ToLower(strings.TrimSpace(header))
		for _, rule := range columnRules {
			if _, done := m[rule.field]; done {
				continue
			}
			for _, substr := range rule.substrs {
				if strings.Contains(header, substr) {
					m[rule.field] = i
					break
				}
			}
		}
	}

	if _, ok := m[FieldBody]; !ok && len(headers) > 0 {
		m[FieldBody] = len(headers) - 1
	}
	return m
}

// Value extracts a field from one data row, tolerating short rows
func (m ColumnMap) Value(row []string, field Field) string {
	idx, ok := m[field]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}
