package pagination

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultFirst = 20
	MinFirst     = 1
	MaxFirst     = 100
)

// Window is the bounded first/after pair parsed from an untrusted query
// string. Invalid or non-numeric input falls back to the default instead
// of erroring out.
type Window struct {
	First int
	After int
}

// Links holds the absolute prev/next URLs for a page. A nil entry is
// rendered as JSON null, meaning that direction is exhausted.
type Links struct {
	Before *string `json:"before"`
	After  *string `json:"after"`
}

// Page is the envelope for every paged response.
type Page struct {
	Data       interface{} `json:"data"`
	Pagination Links       `json:"pagination"`
}

// ParseWindow reads first/after from the request query. first is clamped
// into [1,100] with default 20; after is clamped into [0,maxAfter] with
// default 0.
func ParseWindow(c *gin.Context, maxAfter int) Window {
	return Window{
		First: clamp(c.Query("first"), DefaultFirst, MinFirst, MaxFirst),
		After: clamp(c.Query("after"), 0, 0, maxAfter),
	}
}

func clamp(raw string, def, lo, hi int) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// BuildLinks derives the prev/next URLs from the current request. The
// before link is null exactly when after == 0; otherwise its offset is
// max(after-first, 0). The after link is null exactly when the returned
// page was empty; otherwise its offset is after+first.
func BuildLinks(c *gin.Context, w Window, pageLen int) Links {
	var links Links

	if w.After > 0 {
		prev := w.After - w.First
		if prev < 0 {
			prev = 0
		}
		links.Before = pageURL(c, w.First, prev)
	}

	if pageLen > 0 {
		links.After = pageURL(c, w.First, w.After+w.First)
	}

	return links
}

func pageURL(c *gin.Context, first, after int) *string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}

	url := fmt.Sprintf("%s://%s%s?first=%d&after=%d",
		scheme, c.Request.Host, c.Request.URL.Path, first, after)
	return &url
}
