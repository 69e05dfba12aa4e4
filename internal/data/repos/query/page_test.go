package query

import "testing"

func TestPageNormalize(t *testing.T) {
	got := Page{}.Normalize(20, 100)
	if got.Limit != 20 || got.Offset != 0 {
		t.Fatalf("default: got=%+v", got)
	}
	got = Page{Limit: 500, Offset: -3}.Normalize(20, 100)
	if got.Limit != 100 || got.Offset != 0 {
		t.Fatalf("clamp: got=%+v", got)
	}
}

func TestFromPageNumber(t *testing.T) {
	got := FromPageNumber(3, 10)
	if got.Limit != 10 || got.Offset != 20 {
		t.Fatalf("page 3: got=%+v", got)
	}
	got = FromPageNumber(0, 0)
	if got.Limit != 20 || got.Offset != 0 {
		t.Fatalf("zero values: got=%+v", got)
	}
}
