package transport

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// PageSize is the fixed number of records per admin list page.
const PageSize = 12

// PageParam is the URL query parameter carrying the page number. It is
// omitted entirely when the page is 1.
const PageParam = "p"

// SearchParam is the URL query parameter carrying the search query.
const SearchParam = "search"

// ParsePage reads the page number from the request. Absent, malformed or
// non-positive values all mean page 1.
func ParsePage(r *http.Request) int {
	raw := r.URL.Query().Get(PageParam)
	if raw == "" {
		return 1
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// ParseSearch reads the search query from the request.
func ParseSearch(r *http.Request) string {
	return r.URL.Query().Get(SearchParam)
}

// PageURL builds a list URL for the given page and search query, omitting
// the page parameter when it is 1.
func PageURL(path string, page int, search string) string {
	values := url.Values{}
	if page > 1 {
		values.Set(PageParam, strconv.Itoa(page))
	}
	if search != "" {
		values.Set(SearchParam, search)
	}
	if encoded := values.Encode(); encoded != "" {
		return fmt.Sprintf("%s?%s", path, encoded)
	}
	return path
}
