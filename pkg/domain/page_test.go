package domain

import "testing"

func TestNormalizePaging(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		size     int
		wantPage int
		wantSize int
	}{
		{"zero values", 0, 0, 1, 10},
		{"negative values", -3, -1, 1, 10},
		{"explicit values", 4, 25, 4, 25},
		{"only size missing", 2, 0, 2, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, size := NormalizePaging(tt.page, tt.size)
			if page != tt.wantPage || size != tt.wantSize {
				t.Errorf("NormalizePaging(%d, %d) = (%d, %d), want (%d, %d)",
					tt.page, tt.size, page, size, tt.wantPage, tt.wantSize)
			}
		})
	}
}

func TestPageValidate(t *testing.T) {
	ok := Page[int]{Records: []int{1, 2}, Size: 2}
	if err := ok.Validate(); err != nil {
		t.Errorf("Validate() on full page: %v", err)
	}

	over := Page[int]{Records: []int{1, 2, 3}, Size: 2}
	if err := over.Validate(); err == nil {
		t.Error("Validate() = nil for page exceeding size, want error")
	}
}

func TestPageTotalPageCount(t *testing.T) {
	if got := (Page[int]{Pages: 3, TotalPages: 9}).TotalPageCount(); got != 3 {
		t.Errorf("TotalPageCount() = %d, want 3", got)
	}
	if got := (Page[int]{TotalPages: 9}).TotalPageCount(); got != 9 {
		t.Errorf("TotalPageCount() fallback = %d, want 9", got)
	}
}

func TestPageNavigation(t *testing.T) {
	p := Page[int]{Current: 1, Pages: 2}
	if !p.HasNext() {
		t.Error("HasNext() = false on page 1 of 2")
	}
	if p.HasPrev() {
		t.Error("HasPrev() = true on page 1")
	}
	p.Current = 2
	if p.HasNext() {
		t.Error("HasNext() = true on last page")
	}
}
