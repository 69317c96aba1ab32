package pagination

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func paramsFor(t *testing.T, query string) Params {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/"+query, nil)
	return FromContext(e.NewContext(req, httptest.NewRecorder()))
}

func TestFromContext(t *testing.T) {
	tests := []struct {
		query  string
		limit  int
		offset int
	}{
		{"", DefaultLimit, 0},
		{"?limit=5&offset=10", 5, 10},
		{"?limit=500", MaxLimit, 0},
		{"?limit=-1&offset=-3", DefaultLimit, 0},
		{"?limit=abc", DefaultLimit, 0},
	}
	for _, tt := range tests {
		p := paramsFor(t, tt.query)
		if p.Limit != tt.limit || p.Offset != tt.offset {
			t.Errorf("FromContext(%q) = %+v, want limit=%d offset=%d", tt.query, p, tt.limit, tt.offset)
		}
	}
}

func TestNewPage(t *testing.T) {
	first := Params{Limit: 20}
	p := NewPage([]string{"a"}, 25, first)
	if !p.HasMore || p.Total != 25 || p.Limit != 20 {
		t.Errorf("unexpected page %+v", p)
	}
	if last := NewPage([]string{"a"}, 25, first.Next()); last.HasMore || last.Offset != 20 {
		t.Errorf("unexpected last page %+v", last)
	}
}

func TestNewPage_EmptyDataIsArray(t *testing.T) {
	out, err := json.Marshal(NewPage[int](nil, 0, Params{Limit: DefaultLimit}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"data":[],"total":0,"limit":20,"offset":0,"hasMore":false}`
	if string(out) != want {
		t.Errorf("got %s, want %s", out, want)
	}
}
