package pagination

import "testing"

func TestPaginationParamsValidate(t *testing.T) {
	tests := []struct {
		name        string
		in          PaginationParams
		wantPage    int
		wantPerPage int
	}{
		{"zero values", PaginationParams{}, 1, 15},
		{"negative page", PaginationParams{Page: -3, PerPage: 10}, 1, 10},
		{"per page capped", PaginationParams{Page: 2, PerPage: 500}, 2, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.in
			p.Validate()
			if p.Page != tt.wantPage || p.PerPage != tt.wantPerPage {
				t.Fatalf("got page=%d per_page=%d, want %d/%d", p.Page, p.PerPage, tt.wantPage, tt.wantPerPage)
			}
		})
	}
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 25)
	if p.TotalPages != 3 {
		t.Fatalf("expected 3 pages, got %d", p.TotalPages)
	}
	if !p.HasNext || !p.HasPrev {
		t.Fatalf("expected both next and prev on middle page: %+v", p)
	}
	if off := (&PaginationParams{Page: 3, PerPage: 10}).Offset(); off != 20 {
		t.Fatalf("expected offset 20, got %d", off)
	}
	if empty := NewPagination(1, 10, 0); empty.TotalPages != 0 || empty.HasNext {
		t.Fatalf("unexpected empty pagination: %+v", empty)
	}
}

func TestOfNeverReturnsNilItems(t *testing.T) {
	result := Of[string](nil, &PaginationParams{Page: 1, PerPage: 5}, 0)
	if result.Items == nil || len(result.Items) != 0 {
		t.Fatalf("expected empty items slice, got %#v", result.Items)
	}
	if result.Pagination.PerPage != 5 {
		t.Fatalf("per_page = %d, want 5", result.Pagination.PerPage)
	}
}
