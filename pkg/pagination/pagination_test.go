package pagination

import "testing"

func TestNormalizeClampsInputs(t *testing.T) {
	p := Params{Page: -3, Limit: 0}.Normalize("-issue_date")
	if p.Page != 1 {
		t.Fatalf("expected page 1, got %d", p.Page)
	}
	if p.Limit != DefaultLimit {
		t.Fatalf("expected default limit, got %d", p.Limit)
	}
	if p.Sort != "-issue_date" {
		t.Fatalf("expected default sort, got %q", p.Sort)
	}

	p = Params{Page: 3, Limit: 1000, Sort: "title"}.Normalize("-issue_date")
	if p.Limit != MaxLimit {
		t.Fatalf("expected limit capped at %d, got %d", MaxLimit, p.Limit)
	}
	if p.Sort != "title" {
		t.Fatalf("requested sort should survive, got %q", p.Sort)
	}
}

func TestOffset(t *testing.T) {
	p := Params{Page: 3, Limit: 20}
	if got := p.Offset(); got != 40 {
		t.Fatalf("expected offset 40, got %d", got)
	}
	if got := (Params{}).Offset(); got != 0 {
		t.Fatalf("expected zero offset, got %d", got)
	}
}

func TestOrderClause(t *testing.T) {
	allowed := map[string]string{"issueDate": "issue_date", "dueDate": "due_date"}

	tests := []struct {
		sort string
		want string
	}{
		{sort: "-issueDate", want: "issue_date DESC"},
		{sort: "dueDate", want: "due_date ASC"},
		{sort: "drop table", want: "issue_date DESC"},
		{sort: "", want: "issue_date DESC"},
	}
	for _, tt := range tests {
		p := Params{Sort: tt.sort}
		if got := p.OrderClause(allowed, "issue_date DESC"); got != tt.want {
			t.Fatalf("sort %q: expected %q, got %q", tt.sort, tt.want, got)
		}
	}
}

func TestMetaFor(t *testing.T) {
	p := Params{Page: 2, Limit: 20}
	meta := p.MetaFor(41)
	if meta.Pages != 3 {
		t.Fatalf("expected 3 pages, got %d", meta.Pages)
	}
	if meta.Total != 41 || meta.Page != 2 || meta.Limit != 20 {
		t.Fatalf("unexpected meta %+v", meta)
	}
}
