// Package query turns list-request query strings into bounded, validated
// list descriptors that the repositories execute.
package query

import (
	"errors"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const (
	DefaultLimit = 12
	DefaultPage  = 1

	// Unbounded disables both limit and offset.
	Unbounded = -1
)

var (
	DefaultCategoryFields = []string{"id", "name", "slug"}
	DefaultProductFields  = []string{"id", "name", "images", "price"}
)

var ErrInvalidParameter = errors.New("invalid parameter")

// ParamError reports a query parameter that could not be accepted.
type ParamError struct {
	Param string
	Value string
}

func (e *ParamError) Error() string {
	return "Invalid " + e.Param + " parameter"
}

func (e *ParamError) Unwrap() error {
	return ErrInvalidParameter
}

type Page struct {
	Limit  int
	Page   int
	Offset int
}

func (p Page) Unbounded() bool {
	return p.Limit == Unbounded
}

type PriceRange struct {
	Min float64
	Max float64
}

// OptionFilter requires a product option with ID holding one of Values.
type OptionFilter struct {
	ID     uint
	Values []string
}

type CategoryList struct {
	Page
	Fields    []string
	UseInMenu bool
}

type ProductList struct {
	Page
	Fields      []string
	Match       string
	CategoryIDs []uint
	Price       *PriceRange
	// Options are combined with AND, the values inside one filter with OR.
	// Sorted by ID.
	Options []OptionFilter
}

func ParseCategoryList(values url.Values) (CategoryList, error) {
	page, err := parsePage(values)
	if err != nil {
		return CategoryList{}, err
	}

	return CategoryList{
		Page:      page,
		Fields:    parseFields(values.Get("fields"), DefaultCategoryFields),
		UseInMenu: values.Get("use_in_menu") == "true",
	}, nil
}

func ParseProductList(values url.Values) (ProductList, error) {
	page, err := parsePage(values)
	if err != nil {
		return ProductList{}, err
	}

	categoryIDs, err := parseIDs("category_ids", values.Get("category_ids"))
	if err != nil {
		return ProductList{}, err
	}

	options, err := parseOptions(values)
	if err != nil {
		return ProductList{}, err
	}

	return ProductList{
		Page:        page,
		Fields:      parseFields(values.Get("fields"), DefaultProductFields),
		Match:       strings.TrimSpace(values.Get("match")),
		CategoryIDs: categoryIDs,
		Price:       parsePriceRange(values.Get("price-range")),
		Options:     options,
	}, nil
}

func parsePage(values url.Values) (Page, error) {
	limit := DefaultLimit
	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < Unbounded {
			return Page{}, &ParamError{Param: "limit", Value: raw}
		}
		limit = n
	}

	page := DefaultPage
	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return Page{}, &ParamError{Param: "page", Value: raw}
		}
		page = n
	}

	if limit == Unbounded {
		return Page{Limit: limit, Page: page}, nil
	}
	if limit > 0 && page-1 > math.MaxInt/limit {
		return Page{}, &ParamError{Param: "page", Value: strconv.Itoa(page)}
	}

	return Page{Limit: limit, Page: page, Offset: (page - 1) * limit}, nil
}

func parseFields(raw string, defaults []string) []string {
	fields := splitList(raw)
	if len(fields) == 0 {
		return append([]string(nil), defaults...)
	}
	return fields
}

func parseIDs(param, raw string) ([]uint, error) {
	var ids []uint
	for _, part := range splitList(raw) {
		id, err := strconv.ParseUint(part, 10, 0)
		if err != nil || id == 0 {
			return nil, &ParamError{Param: param, Value: part}
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

// parsePriceRange accepts "min-max". Only the first two "-" separated parts
// are read. Anything unparsable disables the filter instead of failing the
// request.
func parsePriceRange(raw string) *PriceRange {
	parts := strings.Split(raw, "-")
	if len(parts) < 2 {
		return nil
	}
	minRaw, maxRaw := parts[0], parts[1]

	lo, err := strconv.ParseFloat(strings.TrimSpace(minRaw), 64)
	if err != nil || math.IsNaN(lo) {
		return nil
	}
	hi, err := strconv.ParseFloat(strings.TrimSpace(maxRaw), 64)
	if err != nil || math.IsNaN(hi) {
		return nil
	}

	return &PriceRange{Min: lo, Max: hi}
}

// parseOptions collects every option[<id>]=v1,v2 key. Repeated keys are merged.
func parseOptions(values url.Values) ([]OptionFilter, error) {
	var filters []OptionFilter
	for key, raws := range values {
		if !strings.HasPrefix(key, "option[") || !strings.HasSuffix(key, "]") {
			continue
		}

		rawID := key[len("option[") : len(key)-1]
		id, err := strconv.ParseUint(strings.TrimSpace(rawID), 10, 0)
		if err != nil || id == 0 {
			return nil, &ParamError{Param: key, Value: rawID}
		}

		var optionValues []string
		for _, raw := range raws {
			optionValues = append(optionValues, splitList(raw)...)
		}
		if len(optionValues) == 0 {
			continue
		}

		filters = append(filters, OptionFilter{ID: uint(id), Values: optionValues})
	}

	sort.Slice(filters, func(i, j int) bool { return filters[i].ID < filters[j].ID })
	return filters, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
