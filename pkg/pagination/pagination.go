package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
	MinLimit     = 1
)

// Params holds validated pagination parameters
type Params struct {
	Page   int
	Limit  int
	Offset int
}

// Parse extracts and validates page/limit from query parameters
func Parse(c *gin.Context) Params {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(DefaultPage)))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultLimit)))

	if page < 1 {
		page = DefaultPage
	}
	if limit < MinLimit {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Params{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// ParseSort extracts sort_by/sort_desc and checks sort_by against a column
// whitelist. Unknown columns fall back to the first allowed entry so the
// value is always safe to interpolate into an ORDER BY.
func ParseSort(c *gin.Context, allowed ...string) (string, bool) {
	sortBy := c.Query("sort_by")
	sortDesc := c.DefaultQuery("sort_desc", "false") == "true"

	if len(allowed) == 0 {
		return "", sortDesc
	}
	for _, col := range allowed {
		if sortBy == col {
			return sortBy, sortDesc
		}
	}
	return allowed[0], sortDesc
}
