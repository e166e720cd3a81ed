package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapColumns(t *testing.T) {
	tests := []struct {
		name     string
		headers  []string
		expected ColumnMap
	}{
		{
			name:    "canonical export headers",
			headers: []string{"From", "To", "Subject", "Body"},
			expected: ColumnMap{
				FieldSender: 0, FieldRecipient: 1, FieldSubject: 2, FieldBody: 3,
			},
		},
		{
			name:    "heterogeneous naming",
			headers: []string{"sender_address", "recipient_email", "mail subject", "message text"},
			expected: ColumnMap{
				FieldSender: 0, FieldRecipient: 1, FieldSubject: 2, FieldBody: 3,
			},
		},
		{
			name:    "no body header falls back to last column",
			headers: []string{"From", "Subject", "Content"},
			expected: ColumnMap{
				FieldSender: 0, FieldSubject: 1, FieldBody: 2,
			},
		},
		{
			name:    "first matching header wins",
			headers: []string{"from", "forwarded_from", "body", "body_html"},
			expected: ColumnMap{
				FieldSender: 0, FieldBody: 2,
			},
		},
		{
			name:    "case and padding insensitive",
			headers: []string{"  FROM  ", "SUBJECT", "TEXT"},
			expected: ColumnMap{
				FieldSender: 0, FieldSubject: 1, FieldBody: 2,
			},
		},
		{
			name:     "no headers at all",
			headers:  []string{},
			expected: ColumnMap{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapColumns(tt.headers))
		})
	}
}

func TestColumnMapValue(t *testing.T) {
	m := ColumnMap{FieldSender: 0, FieldBody: 2}
	row := []string{"a@example.com", "subject", "hello"}

	assert.Equal(t, "a@example.com", m.Value(row, FieldSender))
	assert.Equal(t, "hello", m.Value(row, FieldBody))
	assert.Equal(t, "", m.Value(row, FieldSubject), "unmapped field reads empty")
	assert.Equal(t, "", m.Value([]string{"only-one"}, FieldBody), "short rows read empty")
}
