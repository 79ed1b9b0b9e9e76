package http

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// PaginatedResponse wraps list results with pagination metadata.
type PaginatedResponse struct {
	Data       any        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Pagination contains offset-based pagination info.
type Pagination struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
	Total  int `json:"total"`
}

// SetLinkHeaders adds RFC 8288 first/prev/next/last links. Query parameters
// other than offset and limit are carried over.
func SetLinkHeaders(c *fiber.Ctx, p Pagination) {
	if p.Limit <= 0 {
		return
	}
	base := c.Path()
	args := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(args)
	c.Context().QueryArgs().CopyTo(args)

	link := func(offset int, rel string) string {
		args.Set("offset", strconv.Itoa(offset))
		args.Set("limit", strconv.Itoa(p.Limit))
		return "<" + base + "?" + args.String() + `>; rel="` + rel + `"`
	}

	links := []string{link(0, "first")}
	if p.Offset > 0 {
		links = append(links, link(max(p.Offset-p.Limit, 0), "prev"))
	}
	if p.Offset+p.Limit < p.Total {
		links = append(links, link(p.Offset+p.Limit, "next"))
	}
	last := 0
	if p.Total > 0 {
		last = (p.Total - 1) / p.Limit * p.Limit
	}
	links = append(links, link(last, "last"))

	c.Set("Link", strings.Join(links, ", "))
}
