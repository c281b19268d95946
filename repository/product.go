package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/models"
	"storefront/query"
)

var productColumns = columnSet{
	table: "products",
	columns: map[string]bool{
		"id": true, "enabled": true, "name": true, "slug": true, "stock": true,
		"description": true, "price": true, "price_with_discount": true,
		"created_at": true, "updated_at": true,
	},
	associations: map[string]bool{
		"images": true, "options": true, "category_ids": true,
	},
}

var productWritable = []string{
	"enabled", "name", "slug", "stock", "description", "price", "price_with_discount",
}

// Replace selects which owned collections an update swaps out. Categories
// are always replaced.
type Replace struct {
	Images  bool
	Options bool
}

type ProductRepository interface {
	List(ctx context.Context, q query.ProductList) ([]Row, int64, error)
	FindByID(ctx context.Context, id uint) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	// Update returns the paths of images it removed.
	Update(ctx context.Context, product *models.Product, replace Replace) ([]string, error)
	// Delete returns the paths of the images that went with the product.
	Delete(ctx context.Context, id uint) ([]string, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) List(ctx context.Context, q query.ProductList) ([]Row, int64, error) {
	selects, assocs, err := productColumns.resolve(q.Fields)
	if err != nil {
		return nil, 0, err
	}

	filtered := func() *gorm.DB {
		return applyProductFilters(r.db.WithContext(ctx).Model(&models.Product{}), q)
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	tx := filtered().Select(selects).Order("products.id")
	if !q.Unbounded() {
		tx = tx.Limit(q.Limit).Offset(q.Offset)
	}
	if assocs["images"] {
		tx = tx.Preload("Images", orderBy("product_images.id"))
	}
	if assocs["options"] {
		tx = tx.Preload("Options", orderBy("product_options.id")).
			Preload("Options.Values", orderBy("product_option_values.id"))
	}

	var products []models.Product
	if err := tx.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	if assocs["category_ids"] {
		if err := r.loadCategoryIDs(ctx, products); err != nil {
			return nil, 0, err
		}
	}
	for i := range products {
		fillEmpty(&products[i])
	}

	rows, err := project(products, q.Fields)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func applyProductFilters(tx *gorm.DB, q query.ProductList) *gorm.DB {
	if q.Match != "" {
		pattern := "%" + escapeLike(strings.ToLower(q.Match)) + "%"
		tx = tx.Where(`(LOWER(products.name) LIKE ? ESCAPE '\' OR LOWER(products.description) LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	if len(q.CategoryIDs) > 0 {
		tx = tx.Where(`EXISTS (SELECT 1 FROM product_categories pc
			WHERE pc.id_product = products.id AND pc.id_category IN ?)`, q.CategoryIDs)
	}
	if q.Price != nil {
		tx = tx.Where("products.price BETWEEN ? AND ?", q.Price.Min, q.Price.Max)
	}
	for _, option := range q.Options {
		tx = tx.Where(`EXISTS (SELECT 1 FROM product_options po
			JOIN product_option_values pov ON pov.id_option = po.id
			WHERE po.id_product = products.id AND po.id = ? AND pov.value IN ?)`, option.ID, option.Values)
	}
	return tx
}

func (r *productRepository) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Images", orderBy("product_images.id")).
		Preload("Options", orderBy("product_options.id")).
		Preload("Options.Values", orderBy("product_option_values.id")).
		First(&product, id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find product by id %d: %w", id, translate(err, nil))
	}

	products := []models.Product{product}
	if err := r.loadCategoryIDs(ctx, products); err != nil {
		return nil, err
	}
	fillEmpty(&products[0])
	return &products[0], nil
}

// Create stores the product with its images, options and category links in
// one transaction.
func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureCategories(tx, product.CategoryIDs); err != nil {
			return err
		}
		if err := tx.Create(product).Error; err != nil {
			return fmt.Errorf("failed to create product: %w", translate(err, ErrDuplicateSlug))
		}
		return linkCategories(tx, product.ID, product.CategoryIDs)
	})
	if err != nil {
		return err
	}

	fillEmpty(product)
	return nil
}

func (r *productRepository) Update(ctx context.Context, product *models.Product, replace Replace) ([]string, error) {
	var removed []string

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Product
		if err := tx.Select("id").First(&existing, product.ID).Error; err != nil {
			return fmt.Errorf("failed to find product by id %d: %w", product.ID, translate(err, nil))
		}
		if err := ensureCategories(tx, product.CategoryIDs); err != nil {
			return err
		}

		err := tx.Model(&models.Product{ID: product.ID}).
			Select(productWritable).
			Omit(clause.Associations).
			Updates(product).Error
		if err != nil {
			return fmt.Errorf("failed to update product id %d: %w", product.ID, translate(err, ErrDuplicateSlug))
		}

		if err := tx.Where("id_product = ?", product.ID).Delete(&models.ProductCategory{}).Error; err != nil {
			return fmt.Errorf("failed to unlink categories of product %d: %w", product.ID, err)
		}
		if err := linkCategories(tx, product.ID, product.CategoryIDs); err != nil {
			return err
		}

		if replace.Images {
			paths, err := deleteImages(tx, product.ID)
			if err != nil {
				return err
			}
			removed = paths

			for i := range product.Images {
				product.Images[i].ID = 0
				product.Images[i].ProductID = product.ID
			}
			if len(product.Images) > 0 {
				if err := tx.Create(&product.Images).Error; err != nil {
					return fmt.Errorf("failed to store images of product %d: %w", product.ID, err)
				}
			}
		}

		if replace.Options {
			if err := deleteOptions(tx, product.ID); err != nil {
				return err
			}

			for i := range product.Options {
				product.Options[i].ID = 0
				product.Options[i].ProductID = product.ID
			}
			if len(product.Options) > 0 {
				if err := tx.Create(&product.Options).Error; err != nil {
					return fmt.Errorf("failed to store options of product %d: %w", product.ID, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

func (r *productRepository) Delete(ctx context.Context, id uint) ([]string, error) {
	var removed []string

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Product
		if err := tx.Select("id").First(&existing, id).Error; err != nil {
			return fmt.Errorf("failed to find product by id %d: %w", id, translate(err, nil))
		}

		paths, err := deleteImages(tx, id)
		if err != nil {
			return err
		}
		removed = paths

		if err := deleteOptions(tx, id); err != nil {
			return err
		}
		if err := tx.Where("id_product = ?", id).Delete(&models.ProductCategory{}).Error; err != nil {
			return fmt.Errorf("failed to unlink categories of product %d: %w", id, err)
		}
		if err := tx.Delete(&models.Product{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete product id %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

func (r *productRepository) loadCategoryIDs(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]uint, len(products))
	index := make(map[uint]int, len(products))
	for i, p := range products {
		ids[i] = p.ID
		index[p.ID] = i
	}

	var links []models.ProductCategory
	err := r.db.WithContext(ctx).
		Where("id_product IN ?", ids).
		Order("id_product, id_category").
		Find(&links).Error
	if err != nil {
		return fmt.Errorf("failed to load product categories: %w", err)
	}

	for _, link := range links {
		i := index[link.ProductID]
		products[i].CategoryIDs = append(products[i].CategoryIDs, link.CategoryID)
	}
	return nil
}

func ensureCategories(tx *gorm.DB, ids []uint) error {
	unique := uniqueIDs(ids)
	if len(unique) == 0 {
		return nil
	}

	var count int64
	if err := tx.Model(&models.Category{}).Where("id IN ?", unique).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check categories: %w", err)
	}
	if count != int64(len(unique)) {
		return ErrUnknownCategory
	}
	return nil
}

func linkCategories(tx *gorm.DB, productID uint, categoryIDs []uint) error {
	unique := uniqueIDs(categoryIDs)
	if len(unique) == 0 {
		return nil
	}

	links := make([]models.ProductCategory, len(unique))
	for i, id := range unique {
		links[i] = models.ProductCategory{ProductID: productID, CategoryID: id}
	}
	if err := tx.Omit(clause.Associations).Create(&links).Error; err != nil {
		return fmt.Errorf("failed to link categories of product %d: %w", productID, err)
	}
	return nil
}

func deleteImages(tx *gorm.DB, productID uint) ([]string, error) {
	var paths []string
	if err := tx.Model(&models.ProductImage{}).Where("id_product = ?", productID).Order("id").Pluck("path", &paths).Error; err != nil {
		return nil, fmt.Errorf("failed to list images of product %d: %w", productID, err)
	}
	if err := tx.Where("id_product = ?", productID).Delete(&models.ProductImage{}).Error; err != nil {
		return nil, fmt.Errorf("failed to delete images of product %d: %w", productID, err)
	}
	return paths, nil
}

func deleteOptions(tx *gorm.DB, productID uint) error {
	optionIDs := tx.Model(&models.ProductOption{}).Select("id").Where("id_product = ?", productID)
	if err := tx.Where("id_option IN (?)", optionIDs).Delete(&models.ProductOptionValue{}).Error; err != nil {
		return fmt.Errorf("failed to delete option values of product %d: %w", productID, err)
	}
	if err := tx.Where("id_product = ?", productID).Delete(&models.ProductOption{}).Error; err != nil {
		return fmt.Errorf("failed to delete options of product %d: %w", productID, err)
	}
	return nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// fillEmpty keeps list fields as [] rather than null in JSON.
func fillEmpty(p *models.Product) {
	if p.Images == nil {
		p.Images = []models.ProductImage{}
	}
	if p.Options == nil {
		p.Options = []models.ProductOption{}
	}
	for i := range p.Options {
		if p.Options[i].Values == nil {
			p.Options[i].Values = []models.ProductOptionValue{}
		}
	}
	if p.CategoryIDs == nil {
		p.CategoryIDs = []uint{}
	}
}

func orderBy(column string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(column)
	}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
