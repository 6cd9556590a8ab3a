package params

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	DefaultPageNumber = 1
	DefaultPageSize   = 20
	MaxPageSize       = 100
)

type QueryParams struct {
	PageNumber int
	PageSize   int
	Search     string
}

func NewQueryParams(ctx echo.Context) *QueryParams {
	p := &QueryParams{
		PageNumber: DefaultPageNumber,
		PageSize:   DefaultPageSize,
		Search:     strings.TrimSpace(ctx.QueryParam("search")),
	}
	if n, err := strconv.Atoi(ctx.QueryParam("page")); err == nil && n > 0 {
		p.PageNumber = n
	}
	if n, err := strconv.Atoi(ctx.QueryParam("limit")); err == nil && n > 0 {
		p.PageSize = n
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

func (p QueryParams) Offset() int {
	return (p.PageNumber - 1) * p.PageSize
}
