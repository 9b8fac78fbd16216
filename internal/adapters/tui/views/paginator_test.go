package views

import "testing"

func TestPaginator_CursorFollowsPages(t *testing.T) {
	p := NewPaginator(3)
	p.SetTotal(7)

	for range 3 {
		p.CursorDown()
	}
	if p.Cursor() != 3 {
		t.Fatalf("Cursor() = %d, want 3", p.Cursor())
	}
	if start, end := p.VisibleRange(); start != 3 || end != 6 {
		t.Errorf("VisibleRange() = %d, %d, want 3, 6", start, end)
	}
	if p.CurrentPage() != 2 || p.TotalPages() != 3 {
		t.Errorf("page %d/%d, want 2/3", p.CurrentPage(), p.TotalPages())
	}

	p.CursorUp()
	if start, _ := p.VisibleRange(); start != 0 {
		t.Errorf("VisibleRange() start = %d after moving up, want 0", start)
	}
}

func TestPaginator_Pages(t *testing.T) {
	tests := []struct {
		name       string
		total      int
		moves      []string
		wantCursor int
		wantStart  int
	}{
		{"next page", 7, []string{"next"}, 3, 3},
		{"last page clamps", 7, []string{"next", "next", "next"}, 6, 6},
		{"prev from first page", 7, []string{"prev"}, 0, 0},
		{"next and back", 7, []string{"next", "prev"}, 0, 0},
		{"empty", 0, []string{"next"}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPaginator(3)
			p.SetTotal(tt.total)
			for _, m := range tt.moves {
				if m == "next" {
					p.NextPage()
				} else {
					p.PrevPage()
				}
			}
			if p.Cursor() != tt.wantCursor {
				t.Errorf("Cursor() = %d, want %d", p.Cursor(), tt.wantCursor)
			}
			if start, _ := p.VisibleRange(); start != tt.wantStart {
				t.Errorf("VisibleRange() start = %d, want %d", start, tt.wantStart)
			}
		})
	}
}

func TestPaginator_SetTotalClampsCursor(t *testing.T) {
	p := NewPaginator(3)
	p.SetTotal(7)
	p.SetCursor(6)
	p.SetTotal(2)

	if p.Cursor() != 1 {
		t.Errorf("Cursor() = %d, want 1", p.Cursor())
	}
	if start, end := p.VisibleRange(); start != 0 || end != 2 {
		t.Errorf("VisibleRange() = %d, %d, want 0, 2", start, end)
	}
}
