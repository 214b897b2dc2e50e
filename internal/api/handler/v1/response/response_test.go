package response

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPage(t *testing.T) {
	tests := []struct {
		name      string
		total     int64
		offset    int
		limit     int
		wantPage  int
		wantPages int
	}{
		{"first page", 45, 0, 20, 1, 3},
		{"mid window", 45, 40, 20, 3, 3},
		{"exact fit", 40, 20, 20, 2, 2},
		{"empty result", 0, 0, 20, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := NewPage(nil, tt.total, tt.offset, tt.limit)

			assert.Equal(t, tt.wantPage, page.Page)
			assert.Equal(t, tt.wantPages, page.Pages)
			assert.Equal(t, tt.limit, page.Limit)
			assert.Equal(t, tt.total, page.Total)
		})
	}
}
