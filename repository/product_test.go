package repository

import (
	"storefront/models"
	"storefront/query"
)

func productList(fields ...string) query.ProductList {
	if len(fields) == 0 {
		fields = []string{"id", "name"}
	}
	return query.ProductList{
		Page:   query.Page{Limit: query.Unbounded, Page: 1},
		Fields: fields,
	}
}

func (s *RepositorySuite) ids(rows []Row) []float64 {
	out := make([]float64, 0, len(rows))
	for _, row := range rows {
		out = append(out, row["id"].(float64))
	}
	return out
}

func (s *RepositorySuite) seedCatalog() (shoes, hats *models.Category) {
	shoes = s.createCategory("shoes", true)
	hats = s.createCategory("hats", false)

	s.createProduct(models.Product{
		Enabled: true, Name: "Running Shoe", Slug: "running-shoe", Stock: 5,
		Description: "Light and fast", Price: 120, PriceWithDiscount: 99,
		CategoryIDs: []uint{shoes.ID},
		Images:      []models.ProductImage{{Enabled: true, Path: "uploads/a.png"}},
		Options: []models.ProductOption{{
			Title: "Size", Values: []models.ProductOptionValue{{Value: "PP"}, {Value: "M"}},
		}},
	})
	s.createProduct(models.Product{
		Enabled: true, Name: "Wool Hat", Slug: "wool-hat",
		Description: "Warm 100% wool", Price: 20, PriceWithDiscount: 20,
		CategoryIDs: []uint{hats.ID},
		Options: []models.ProductOption{{
			Title: "Color", Values: []models.ProductOptionValue{{Value: "red"}},
		}},
	})
	s.createProduct(models.Product{
		Name: "Shoe Hat", Slug: "shoe-hat", Price: 55, PriceWithDiscount: 50,
		CategoryIDs: []uint{shoes.ID, hats.ID},
	})
	return shoes, hats
}

func (s *RepositorySuite) TestProductCreateStoresAssociations() {
	shoes, _ := s.seedCatalog()

	got, err := s.products.FindByID(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal("running-shoe", got.Slug)
	s.Equal([]uint{shoes.ID}, got.CategoryIDs)
	s.Require().Len(got.Images, 1)
	s.Equal("uploads/a.png", got.Images[0].Path)
	s.Require().Len(got.Options, 1)
	s.Equal("square", got.Options[0].Shape)
	s.Equal("text", got.Options[0].Type)
	s.Require().Len(got.Options[0].Values, 2)
	s.Equal("PP", got.Options[0].Values[0].Value)

	bare, err := s.products.FindByID(s.ctx, 3)
	s.Require().NoError(err)
	s.NotNil(bare.Images)
	s.Empty(bare.Images)
}

func (s *RepositorySuite) TestProductCreateRejectsUnknownCategory() {
	err := s.products.Create(s.ctx, &models.Product{
		Name: "Ghost", Slug: "ghost", Price: 1, PriceWithDiscount: 1,
		CategoryIDs: []uint{42},
		Images:      []models.ProductImage{{Path: "uploads/ghost.png"}},
	})
	s.ErrorIs(err, ErrUnknownCategory)
	s.Equal(int64(0), s.count(&models.Product{}, ""))
	s.Equal(int64(0), s.count(&models.ProductImage{}, ""))
}

func (s *RepositorySuite) TestProductCreateDuplicateSlug() {
	s.createProduct(models.Product{Name: "A", Slug: "same", Price: 1, PriceWithDiscount: 1})
	err := s.products.Create(s.ctx, &models.Product{Name: "B", Slug: "same", Price: 1, PriceWithDiscount: 1})
	s.ErrorIs(err, ErrDuplicateSlug)
}

func (s *RepositorySuite) TestProductListFilters() {
	shoes, hats := s.seedCatalog()

	tests := []struct {
		name   string
		modify func(q *query.ProductList)
		want   []float64
	}{
		{"no filters", func(q *query.ProductList) {}, []float64{1, 2, 3}},
		{"match name case insensitive", func(q *query.ProductList) { q.Match = "SHOE" }, []float64{1, 3}},
		{"match description", func(q *query.ProductList) { q.Match = "wool" }, []float64{2}},
		{"match percent is literal", func(q *query.ProductList) { q.Match = "100%" }, []float64{2}},
		{"match underscore is literal", func(q *query.ProductList) { q.Match = "_" }, []float64{}},
		{"one category", func(q *query.ProductList) { q.CategoryIDs = []uint{hats.ID} }, []float64{2, 3}},
		{"any of categories", func(q *query.ProductList) { q.CategoryIDs = []uint{shoes.ID, hats.ID} }, []float64{1, 2, 3}},
		{"price range inclusive", func(q *query.ProductList) { q.Price = &query.PriceRange{Min: 20, Max: 55} }, []float64{2, 3}},
		{"inverted price range", func(q *query.ProductList) { q.Price = &query.PriceRange{Min: 100, Max: 10} }, []float64{}},
		{"option value", func(q *query.ProductList) {
			q.Options = []query.OptionFilter{{ID: 1, Values: []string{"M", "XL"}}}
		}, []float64{1}},
		{"option value on other option id", func(q *query.ProductList) {
			q.Options = []query.OptionFilter{{ID: 2, Values: []string{"M"}}}
		}, []float64{}},
		{"options are combined", func(q *query.ProductList) {
			q.Options = []query.OptionFilter{
				{ID: 1, Values: []string{"PP"}},
				{ID: 2, Values: []string{"red"}},
			}
		}, []float64{}},
		{"filters are combined", func(q *query.ProductList) {
			q.Match = "hat"
			q.CategoryIDs = []uint{shoes.ID}
		}, []float64{3}},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			q := productList()
			tt.modify(&q)

			rows, total, err := s.products.List(s.ctx, q)
			s.Require().NoError(err)
			s.Equal(tt.want, s.ids(rows))
			s.Equal(int64(len(tt.want)), total)
		})
	}
}

func (s *RepositorySuite) TestProductListPagingAndProjection() {
	s.seedCatalog()

	q := productList("id", "name", "images", "price", "category_ids")
	q.Page = query.Page{Limit: 2, Page: 2, Offset: 2}

	rows, total, err := s.products.List(s.ctx, q)
	s.Require().NoError(err)
	s.Equal(int64(3), total)
	s.Require().Len(rows, 1)

	row := rows[0]
	s.Len(row, 5)
	s.Equal("Shoe Hat", row["name"])
	s.Equal(float64(55), row["price"])
	s.Equal([]any{}, row["images"])
	s.Equal([]any{float64(1), float64(2)}, row["category_ids"])

	q = productList("id", "images", "options")
	rows, _, err = s.products.List(s.ctx, q)
	s.Require().NoError(err)
	images := rows[0]["images"].([]any)
	s.Require().Len(images, 1)
	s.Equal("uploads/a.png", images[0].(map[string]any)["path"])
	options := rows[0]["options"].([]any)
	s.Require().Len(options, 1)
	s.Equal("Size", options[0].(map[string]any)["title"])
}

func (s *RepositorySuite) TestProductListUnknownField() {
	_, _, err := s.products.List(s.ctx, productList("id", "secret"))
	var paramErr *query.ParamError
	s.Require().ErrorAs(err, &paramErr)
	s.Equal("fields", paramErr.Param)
}

func (s *RepositorySuite) TestProductUpdateReplacesAssociations() {
	shoes, hats := s.seedCatalog()

	product, err := s.products.FindByID(s.ctx, 1)
	s.Require().NoError(err)

	product.Name = "Trail Shoe"
	product.Enabled = false
	product.CategoryIDs = []uint{hats.ID}
	product.Images = []models.ProductImage{{Path: "uploads/b.png"}, {Path: "uploads/c.png"}}
	product.Options = []models.ProductOption{{Title: "Width", Values: []models.ProductOptionValue{{Value: "wide"}}}}

	removed, err := s.products.Update(s.ctx, product, Replace{Images: true, Options: true})
	s.Require().NoError(err)
	s.Equal([]string{"uploads/a.png"}, removed)

	got, err := s.products.FindByID(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal("Trail Shoe", got.Name)
	s.False(got.Enabled)
	s.Equal([]uint{hats.ID}, got.CategoryIDs)
	s.Require().Len(got.Images, 2)
	s.Equal("uploads/b.png", got.Images[0].Path)
	s.Require().Len(got.Options, 1)
	s.Equal("Width", got.Options[0].Title)
	s.Equal(int64(0), s.count(&models.ProductOptionValue{}, "value = ?", "PP"))
	s.Equal(int64(0), s.count(&models.ProductCategory{}, "id_product = ? AND id_category = ?", 1, shoes.ID))
}

func (s *RepositorySuite) TestProductUpdateKeepsUntouchedCollections() {
	_, hats := s.seedCatalog()

	product, err := s.products.FindByID(s.ctx, 1)
	s.Require().NoError(err)
	product.CategoryIDs = []uint{hats.ID}
	product.Images = nil
	product.Options = nil

	removed, err := s.products.Update(s.ctx, product, Replace{})
	s.Require().NoError(err)
	s.Empty(removed)

	got, err := s.products.FindByID(s.ctx, 1)
	s.Require().NoError(err)
	s.Len(got.Images, 1)
	s.Len(got.Options, 1)
}

func (s *RepositorySuite) TestProductUpdateFailures() {
	s.seedCatalog()

	_, err := s.products.Update(s.ctx, &models.Product{ID: 99, Name: "x", Slug: "x"}, Replace{})
	s.ErrorIs(err, ErrNotFound)

	product, err := s.products.FindByID(s.ctx, 1)
	s.Require().NoError(err)

	product.CategoryIDs = []uint{77}
	_, err = s.products.Update(s.ctx, product, Replace{})
	s.ErrorIs(err, ErrUnknownCategory)

	product.CategoryIDs = nil
	product.Slug = "wool-hat"
	_, err = s.products.Update(s.ctx, product, Replace{})
	s.ErrorIs(err, ErrDuplicateSlug)

	got, err := s.products.FindByID(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal("running-shoe", got.Slug)
	s.Len(got.CategoryIDs, 1, "failed update leaves links untouched")
}

func (s *RepositorySuite) TestProductDeleteCascades() {
	shoes, _ := s.seedCatalog()

	removed, err := s.products.Delete(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal([]string{"uploads/a.png"}, removed)

	_, err = s.products.FindByID(s.ctx, 1)
	s.ErrorIs(err, ErrNotFound)
	s.Equal(int64(0), s.count(&models.ProductImage{}, "id_product = ?", 1))
	s.Equal(int64(0), s.count(&models.ProductOption{}, "id_product = ?", 1))
	s.Equal(int64(0), s.count(&models.ProductOptionValue{}, "value IN ?", []string{"PP", "M"}))
	s.Equal(int64(1), s.count(&models.ProductOptionValue{}, ""))
	s.Equal(int64(0), s.count(&models.ProductCategory{}, "id_product = ?", 1))

	_, err = s.categories.FindByID(s.ctx, shoes.ID)
	s.NoError(err, "categories survive product deletion")

	_, err = s.products.Delete(s.ctx, 1)
	s.ErrorIs(err, ErrNotFound)
}
