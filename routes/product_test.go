package routes

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"

	"storefront/models"
)

var pngContent = base64.StdEncoding.EncodeToString([]byte("\x89PNG\r\n\x1a\nfake-image"))

func productBody(slug string, price float64, categoryIDs ...uint) map[string]any {
	return map[string]any{
		"enabled":             true,
		"name":                "Product " + slug,
		"slug":                slug,
		"stock":               10,
		"description":         "Description of " + slug,
		"price":               price,
		"price_with_discount": price,
		"category_ids":        categoryIDs,
	}
}

// seedProducts creates categories 1 and 2 and products priced 5, 10, 15,
// 20 and 25. Even ids are in category 2, odd ids in category 1.
func (s *RoutesSuite) seedProducts() {
	s.seedCategories(2)
	for i := 1; i <= 5; i++ {
		category := uint(1)
		if i%2 == 0 {
			category = 2
		}
		status, body := s.doJSON(fiber.MethodPost, "/v1/product", productBody(fmt.Sprintf("p-%d", i), float64(i*5), category), s.admin)
		s.Require().Equal(fiber.StatusCreated, status, body)
	}
}

func (s *RoutesSuite) storedFile(path string) string {
	return filepath.Join(s.deps.Media.Dir(), filepath.Base(path))
}

func (s *RoutesSuite) TestProductCreateWithImagesAndOptions() {
	s.seedCategories(2)

	body := productBody("sneaker", 99.9, 1, 2)
	body["images"] = []map[string]any{{"type": "image/png", "content": pngContent}}
	body["options"] = []map[string]any{{"title": "Size", "shape": "circle", "values": []string{"P", "M", "G"}}}

	status, created := s.doJSON(fiber.MethodPost, "/v1/product", body, s.admin)
	s.Require().Equal(fiber.StatusCreated, status, created)

	id := created["id"].(float64)
	status, got := s.doJSON(fiber.MethodGet, fmt.Sprintf("/v1/product/%d", int(id)), nil, "")
	s.Require().Equal(fiber.StatusOK, status)
	s.Equal([]any{float64(1), float64(2)}, got["category_ids"])

	images := got["images"].([]any)
	s.Require().Len(images, 1)
	path := images[0].(map[string]any)["path"].(string)
	s.FileExists(s.storedFile(path))

	options := got["options"].([]any)
	s.Require().Len(options, 1)
	option := options[0].(map[string]any)
	s.Equal("circle", option["shape"])
	s.Equal("text", option["type"])
	s.Len(option["values"].([]any), 3)

	resp, data := s.do(fiber.MethodGet, path, nil, "")
	s.Equal(fiber.StatusOK, resp.StatusCode, "stored images are served")
	s.Equal("\x89PNG\r\n\x1a\nfake-image", string(data))
}

func (s *RoutesSuite) TestProductCreateWithoutCollections() {
	s.seedCategories(1)

	status, created := s.doJSON(fiber.MethodPost, "/v1/product", productBody("plain", 5, 1), s.admin)
	s.Require().Equal(fiber.StatusCreated, status, created)
	s.Equal([]any{}, created["images"])
	s.Equal([]any{}, created["options"])

	status, got := s.doJSON(fiber.MethodGet, fmt.Sprintf("/v1/product/%d", int(created["id"].(float64))), nil, "")
	s.Require().Equal(fiber.StatusOK, status)
	s.Equal(got["images"], created["images"])
	s.Equal(got["options"], created["options"])
}

func (s *RoutesSuite) TestProductCreateRejects() {
	s.seedCategories(1)

	noCategories := productBody("a", 1)
	unknownCategory := productBody("b", 1, 42)
	negativePrice := productBody("c", -1, 1)
	missingPrice := productBody("d", 1, 1)
	delete(missingPrice, "price")
	badImage := productBody("e", 1, 1)
	badImage["images"] = []map[string]any{{"type": "image/tiff", "content": pngContent}}
	badOption := productBody("f", 1, 1)
	badOption["options"] = []map[string]any{{"title": "Size", "shape": "hexagon", "values": []string{"M"}}}

	tests := []struct {
		name string
		body map[string]any
	}{
		{"no categories", noCategories},
		{"unknown category", unknownCategory},
		{"negative price", negativePrice},
		{"missing price", missingPrice},
		{"unsupported image", badImage},
		{"invalid option shape", badOption},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			status, body := s.doJSON(fiber.MethodPost, "/v1/product", tt.body, s.admin)
			s.Equal(fiber.StatusBadRequest, status, body)
		})
	}

	var count int64
	s.Require().NoError(s.deps.DB.Model(&models.Product{}).Count(&count).Error)
	s.Zero(count)

	entries, err := os.ReadDir(s.deps.Media.Dir())
	s.Require().NoError(err)
	s.Empty(entries, "no image left behind")
}

func (s *RoutesSuite) TestProductCreateAccess() {
	s.seedCategories(1)
	body := productBody("a", 1, 1)

	status, _ := s.doJSON(fiber.MethodPost, "/v1/product", body, "")
	s.Equal(fiber.StatusUnauthorized, status)

	status, _ = s.doJSON(fiber.MethodPost, "/v1/product", body, s.member)
	s.Equal(fiber.StatusForbidden, status)
}

func (s *RoutesSuite) TestProductSearch() {
	s.seedProducts()

	tests := []struct {
		name    string
		query   string
		wantIDs []float64
		total   float64
	}{
		{"defaults", "", []float64{1, 2, 3, 4, 5}, 5},
		{"price range", "?price-range=10-20", []float64{2, 3, 4}, 3},
		{"extra price range parts are ignored", "?price-range=10-20-30", []float64{2, 3, 4}, 3},
		{"unparsable price range is ignored", "?price-range=abc-20", []float64{1, 2, 3, 4, 5}, 5},
		{"category filter", "?category_ids=2", []float64{2, 4}, 2},
		{"several categories", "?category_ids=1,2&limit=2&page=2", []float64{3, 4}, 5},
		{"match", "?match=P-3", []float64{3}, 1},
		{"match description", "?match=description%20of%20p-5", []float64{5}, 1},
		{"unbounded", "?limit=-1&page=3", []float64{1, 2, 3, 4, 5}, 5},
		{"combined", "?category_ids=1&price-range=10-30", []float64{3, 5}, 2},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			status, body := s.doJSON(fiber.MethodGet, "/v1/product/search"+tt.query, nil, "")
			s.Require().Equal(fiber.StatusOK, status, body)
			s.Equal(tt.total, body["total"])

			ids := []float64{}
			for _, row := range body["data"].([]any) {
				ids = append(ids, row.(map[string]any)["id"].(float64))
			}
			s.Equal(tt.wantIDs, ids)
		})
	}
}

func (s *RoutesSuite) TestProductSearchDefaultFields() {
	s.seedProducts()

	status, body := s.doJSON(fiber.MethodGet, "/v1/product/search?limit=1", nil, "")
	s.Require().Equal(fiber.StatusOK, status)

	row := body["data"].([]any)[0].(map[string]any)
	s.ElementsMatch([]string{"id", "name", "images", "price"}, keys(row))
	s.Equal(float64(1), body["limit"])
	s.Equal(float64(1), body["page"])
}

func (s *RoutesSuite) TestProductSearchOptions() {
	s.seedCategories(1)

	withOptions := func(slug string, sizes ...string) {
		body := productBody(slug, 10, 1)
		body["options"] = []map[string]any{{"title": "Size", "values": sizes}}
		status, created := s.doJSON(fiber.MethodPost, "/v1/product", body, s.admin)
		s.Require().Equal(fiber.StatusCreated, status, created)
	}
	withOptions("small", "P")  // option 1
	withOptions("large", "GG") // option 2

	status, body := s.doJSON(fiber.MethodGet, "/v1/product/search?option[2]=GG,PP", nil, "")
	s.Require().Equal(fiber.StatusOK, status)
	s.Equal(float64(1), body["total"])

	status, body = s.doJSON(fiber.MethodGet, "/v1/product/search?option[1]=GG", nil, "")
	s.Require().Equal(fiber.StatusOK, status)
	s.Equal(float64(0), body["total"])

	status, _ = s.doJSON(fiber.MethodGet, "/v1/product/search?option[size]=GG", nil, "")
	s.Equal(fiber.StatusBadRequest, status)
}

func (s *RoutesSuite) TestProductSearchInvalidParameters() {
	for _, q := range []string{"?limit=-2", "?page=0", "?category_ids=a", "?fields=id,secret"} {
		s.Run(q, func() {
			status, body := s.doJSON(fiber.MethodGet, "/v1/product/search"+q, nil, "")
			s.Equal(fiber.StatusBadRequest, status)
			s.NotEmpty(body["error"])
		})
	}
}

func (s *RoutesSuite) TestProductGet() {
	s.seedProducts()

	status, body := s.doJSON(fiber.MethodGet, "/v1/product/2", nil, "")
	s.Require().Equal(fiber.StatusOK, status)
	s.Equal("p-2", body["slug"])
	s.Equal([]any{float64(2)}, body["category_ids"])
	s.Equal([]any{}, body["images"])

	status, _ = s.doJSON(fiber.MethodGet, "/v1/product/77", nil, "")
	s.Equal(fiber.StatusNotFound, status)

	status, _ = s.doJSON(fiber.MethodGet, "/v1/product/x", nil, "")
	s.Equal(fiber.StatusBadRequest, status)
}

func (s *RoutesSuite) TestProductUpdateReplacesCategoriesAndImages() {
	s.seedCategories(2)

	body := productBody("boot", 50, 1)
	body["images"] = []map[string]any{{"type": "image/png", "content": pngContent}}
	status, created := s.doJSON(fiber.MethodPost, "/v1/product", body, s.admin)
	s.Require().Equal(fiber.StatusCreated, status, created)
	oldPath := created["images"].([]any)[0].(map[string]any)["path"].(string)

	update := productBody("boot", 45, 2)
	update["images"] = []map[string]any{{"type": "image/jpeg", "content": pngContent}}
	status, _ = s.doJSON(fiber.MethodPut, "/v1/product/1", update, s.admin)
	s.Require().Equal(fiber.StatusNoContent, status)

	_, got := s.doJSON(fiber.MethodGet, "/v1/product/1", nil, "")
	s.Equal(float64(45), got["price"])
	s.Equal([]any{float64(2)}, got["category_ids"])
	images := got["images"].([]any)
	s.Require().Len(images, 1)
	newPath := images[0].(map[string]any)["path"].(string)
	s.Equal(".jpg", filepath.Ext(newPath))
	s.FileExists(s.storedFile(newPath))
	s.NoFileExists(s.storedFile(oldPath))

	status, _ = s.doJSON(fiber.MethodPut, "/v1/product/1", productBody("boot", 45, 1), s.admin)
	s.Require().Equal(fiber.StatusNoContent, status)
	_, got = s.doJSON(fiber.MethodGet, "/v1/product/1", nil, "")
	s.Len(got["images"].([]any), 1, "images kept when not sent")
}

func (s *RoutesSuite) TestProductUpdateFailures() {
	s.seedProducts()

	status, _ := s.doJSON(fiber.MethodPut, "/v1/product/99", productBody("x", 1, 1), s.admin)
	s.Equal(fiber.StatusNotFound, status)

	status, _ = s.doJSON(fiber.MethodPut, "/v1/product/1", productBody("p-1", 1, 9), s.admin)
	s.Equal(fiber.StatusBadRequest, status, "unknown category")

	status, _ = s.doJSON(fiber.MethodPut, "/v1/product/1", productBody("p-2", 1, 1), s.admin)
	s.Equal(fiber.StatusBadRequest, status, "slug taken")

	status, _ = s.doJSON(fiber.MethodPut, "/v1/product/1", productBody("p-1", 1, 1), "")
	s.Equal(fiber.StatusUnauthorized, status)

	_, got := s.doJSON(fiber.MethodGet, "/v1/product/1", nil, "")
	s.Equal([]any{float64(1)}, got["category_ids"])
	s.Equal("p-1", got["slug"])
}

func (s *RoutesSuite) TestProductDeleteCascades() {
	s.seedCategories(1)

	body := productBody("doomed", 5, 1)
	body["images"] = []map[string]any{{"type": "image/png", "content": pngContent}}
	status, created := s.doJSON(fiber.MethodPost, "/v1/product", body, s.admin)
	s.Require().Equal(fiber.StatusCreated, status, created)
	path := created["images"].([]any)[0].(map[string]any)["path"].(string)

	status, _ = s.doJSON(fiber.MethodDelete, "/v1/product/1", nil, s.member)
	s.Equal(fiber.StatusForbidden, status)

	status, _ = s.doJSON(fiber.MethodDelete, "/v1/product/1", nil, s.admin)
	s.Require().Equal(fiber.StatusNoContent, status)

	status, _ = s.doJSON(fiber.MethodGet, "/v1/product/1", nil, "")
	s.Equal(fiber.StatusNotFound, status)

	var images int64
	s.Require().NoError(s.deps.DB.Model(&models.ProductImage{}).Count(&images).Error)
	s.Zero(images)
	s.NoFileExists(s.storedFile(path))

	status, _ = s.doJSON(fiber.MethodGet, "/v1/category/1", nil, "")
	s.Equal(fiber.StatusOK, status, "category survives")
}

func (s *RoutesSuite) TestCategoryDeleteKeepsProducts() {
	s.seedProducts()

	status, _ := s.doJSON(fiber.MethodDelete, "/v1/category/2", nil, s.admin)
	s.Require().Equal(fiber.StatusNoContent, status)

	status, body := s.doJSON(fiber.MethodGet, "/v1/product/search?limit=-1", nil, "")
	s.Require().Equal(fiber.StatusOK, status)
	s.Equal(float64(5), body["total"])

	_, got := s.doJSON(fiber.MethodGet, "/v1/product/2", nil, "")
	s.Equal([]any{}, got["category_ids"])
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
