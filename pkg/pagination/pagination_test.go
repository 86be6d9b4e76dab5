package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func testContext(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return c
}

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantPage   int
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "", 1, 20, 0},
		{"explicit", "page=3&limit=10", 3, 10, 20},
		{"limit capped", "limit=500", 1, 100, 0},
		{"negative page", "page=-2", 1, 20, 0},
		{"zero limit", "limit=0", 1, 20, 0},
		{"garbage", "page=abc&limit=xyz", 1, 20, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(testContext(tt.query))
			if got.Page != tt.wantPage || got.Limit != tt.wantLimit || got.Offset != tt.wantOffset {
				t.Errorf("Parse(%q) = %+v, want page=%d limit=%d offset=%d",
					tt.query, got, tt.wantPage, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		allowed  []string
		wantCol  string
		wantDesc bool
	}{
		{"allowed column", "sort_by=close_date", []string{"created_at", "close_date"}, "close_date", false},
		{"descending", "sort_by=created_at&sort_desc=true", []string{"created_at"}, "created_at", true},
		{"unknown falls back", "sort_by=password_hash", []string{"created_at", "close_date"}, "created_at", false},
		{"empty falls back", "", []string{"created_at"}, "created_at", false},
		{"no whitelist", "sort_by=anything", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col, desc := ParseSort(testContext(tt.query), tt.allowed...)
			if col != tt.wantCol || desc != tt.wantDesc {
				t.Errorf("ParseSort(%q) = (%q, %v), want (%q, %v)", tt.query, col, desc, tt.wantCol, tt.wantDesc)
			}
		})
	}
}
