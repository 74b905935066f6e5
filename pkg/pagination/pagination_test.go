package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func parseQuery(t *testing.T, rawQuery string) Params {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+rawQuery, nil)
	return Parse(c)
}

func TestParseDefaults(t *testing.T) {
	p := parseQuery(t, "")
	if p.Page != DefaultPage || p.Limit != DefaultLimit || p.Offset != 0 {
		t.Fatalf("unexpected defaults: %+v", p)
	}
}

func TestParseClampsBounds(t *testing.T) {
	cases := []struct {
		name   string
		query  string
		page   int
		limit  int
		offset int
	}{
		{"page below one", "page=0&limit=10", 1, 10, 0},
		{"negative page", "page=-3", 1, DefaultLimit, 0},
		{"zero limit", "page=2&limit=0", 2, DefaultLimit, DefaultLimit},
		{"negative limit", "limit=-5", 1, DefaultLimit, 0},
		{"limit over max", "limit=500", 1, MaxLimit, 0},
		{"non numeric", "page=abc&limit=xyz", 1, DefaultLimit, 0},
		{"valid passthrough", "page=3&limit=25", 3, 25, 50},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := parseQuery(t, tc.query)
			if p.Page != tc.page || p.Limit != tc.limit || p.Offset != tc.offset {
				t.Fatalf("got %+v, want page=%d limit=%d offset=%d", p, tc.page, tc.limit, tc.offset)
			}
		})
	}
}
