package dao

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderClause(t *testing.T) {
	tests := []struct {
		sortBy    string
		sortOrder string
		want      string
	}{
		{"date", "asc", "date ASC"},
		{"fee", "desc", "joining_fee DESC"},
		{"participants", "desc", "current_participants DESC"},
		{"created", "asc", "created_at ASC"},
		{"created_at", "desc", "created_at DESC"},
		{"", "", "created_at DESC"},
		{"drop table", "asc", "created_at DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.sortBy+"/"+tt.sortOrder, func(t *testing.T) {
			assert.Equal(t, tt.want, orderClause(tt.sortBy, tt.sortOrder))
		})
	}
}
