package models

import "testing"

func TestNewPagination(t *testing.T) {
	tests := []struct {
		page, limit, total int64
		wantPages          int64
	}{
		{1, 12, 0, 0},
		{1, 12, 12, 1},
		{1, 12, 13, 2},
		{3, 5, 11, 3},
	}
	for _, tt := range tests {
		p := NewPagination(tt.page, tt.limit, tt.total)
		if p.TotalPages != tt.wantPages {
			t.Errorf("total=%d limit=%d: expected %d pages, got %d", tt.total, tt.limit, tt.wantPages, p.TotalPages)
		}
		if p.CurrentPage != tt.page || p.ItemsPerPage != tt.limit || p.TotalItems != tt.total {
			t.Errorf("pagination echo mismatch: %+v", p)
		}
	}
}
