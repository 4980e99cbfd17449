package helpers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const (
	// DefaultQueryLimit defines the default number of items per page for APIs
	DefaultQueryLimit int64 = 25

	// MaxQueryLimit is the largest page a client may ask for
	MaxQueryLimit int64 = 250

	// DefaultQueryOffset defines the default offset for API responses
	DefaultQueryOffset int64 = 0
)

// LinkType is a link
type LinkType struct {
	Rel   string `json:"rel,omitempty"` // REST
	Href  string `json:"href"`
	Title string `json:"title,omitempty"`
}

// ArrayType describes an array in JSON and how to paginate the collection
type ArrayType struct {
	Total     int64       `json:"total"`
	Limit     int64       `json:"limit"`
	Offset    int64       `json:"offset"`
	MaxOffset int64       `json:"maxOffset"`
	Pages     int64       `json:"totalPages"`
	Page      int64       `json:"page"`
	Links     []LinkType  `json:"links,omitempty"`
	Type      string      `json:"type"`
	Items     interface{} `json:"items"`
}

// ConstructArray returns a page of items with the links to navigate the
// collection. requestURL may be nil, in which case there are no links.
func ConstructArray(
	items interface{},
	contentType string,
	total int64,
	limit int64,
	offset int64,
	requestURL *url.URL,
) ArrayType {
	m := ArrayType{
		Total:     total,
		Limit:     limit,
		Offset:    offset,
		MaxOffset: GetMaxOffset(total, limit),
		Pages:     GetPageCount(total, limit),
		Page:      GetCurrentPage(offset, limit),
		Type:      contentType,
		Items:     items,
	}

	if requestURL != nil {
		m.Links = GetArrayLinks(*requestURL, offset, limit, total)
	}

	return m
}

// GetLimitAndOffset returns the Limit and Offset for a given request querystring
func GetLimitAndOffset(query url.Values) (int64, int64, int, error) {
	limit := DefaultQueryLimit
	if query.Get("limit") != "" {
		inLimit, err := strconv.ParseInt(query.Get("limit"), 10, 64)
		if err != nil {
			return 0, 0, http.StatusBadRequest,
				fmt.Errorf("limit (%s) is not a number", query.Get("limit"))
		}

		if inLimit < 1 {
			return 0, 0, http.StatusBadRequest,
				fmt.Errorf("limit (%d) cannot be zero or negative", inLimit)
		}

		if inLimit > MaxQueryLimit {
			return 0, 0, http.StatusBadRequest,
				fmt.Errorf("limit (%d) cannot exceed %d", inLimit, MaxQueryLimit)
		}

		limit = inLimit
	}

	offset := DefaultQueryOffset
	if query.Get("offset") != "" {
		inOffset, err := strconv.ParseInt(query.Get("offset"), 10, 64)
		if err != nil {
			return 0, 0, http.StatusBadRequest,
				fmt.Errorf("offset (%s) is not a number", query.Get("offset"))
		}

		if inOffset < 0 {
			return 0, 0, http.StatusBadRequest,
				fmt.Errorf("offset (%d) cannot be negative", inOffset)
		}

		if inOffset%limit != 0 {
			return 0, 0, http.StatusBadRequest,
				fmt.Errorf(
					"offset (%d) must be a multiple of limit (%d) or zero",
					inOffset,
					limit,
				)
		}

		offset = inOffset
	}

	return limit, offset, http.StatusOK, nil
}

// GetPageCount returns the number of pages for a given total and items per
// page
func GetPageCount(total int64, limit int64) int64 {
	if limit == 0 {
		limit = DefaultQueryLimit
	}

	pages := total / limit
	if total%limit > 0 {
		pages++
	}

	return pages
}

// GetMaxOffset returns the offset of the last page
func GetMaxOffset(total int64, limit int64) int64 {
	if total < 1 || limit < 1 {
		return 0
	}
	return ((total - 1) / limit) * limit
}

// GetCurrentPage returns the 1-based page for an offset
func GetCurrentPage(offset int64, limit int64) int64 {
	if limit == 0 {
		return 0
	}

	return (offset + limit) / limit
}

// pageLink returns a link to the page starting at offset, the offset is
// omitted from the first page
func pageLink(rel string, requestURL url.URL, offset int64, limit int64) LinkType {
	q := requestURL.Query()
	if offset > 0 {
		q.Set("offset", strconv.FormatInt(offset, 10))
	} else {
		q.Del("offset")
	}
	requestURL.RawQuery = q.Encode()

	return LinkType{
		Rel:   rel,
		Href:  requestURL.String(),
		Title: strconv.FormatInt(GetCurrentPage(offset, limit), 10),
	}
}

// GetArrayLinks returns a collection of valid links for navigating a
// collection of items
func GetArrayLinks(
	requestURL url.URL,
	offset int64,
	limit int64,
	total int64,
) []LinkType {
	if limit == 0 {
		limit = DefaultQueryLimit
	}

	maxOffset := GetMaxOffset(total, limit)

	var links []LinkType

	if offset > limit {
		links = append(links, pageLink("first", requestURL, 0, limit))
	}

	if offset > 0 {
		prev := offset - limit
		if prev < 0 {
			prev = 0
		}
		links = append(links, pageLink("prev", requestURL, prev, limit))
	}

	links = append(links, pageLink("self", requestURL, offset, limit))

	if offset < maxOffset {
		links = append(links, pageLink("next", requestURL, offset+limit, limit))
	}

	if offset+limit < maxOffset {
		links = append(links, pageLink("last", requestURL, maxOffset, limit))
	}

	return links
}

// GetAvatarLink returns the API link to an avatar
func GetAvatarLink(rel string, hash string) LinkType {
	return LinkType{Rel: rel, Href: fmt.Sprintf("%s/%s", APITypeAvatar, hash)}
}
