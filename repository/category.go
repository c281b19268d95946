package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"storefront/models"
	"storefront/query"
)

var categoryColumns = columnSet{
	table: "categories",
	columns: map[string]bool{
		"id": true, "name": true, "slug": true, "use_in_menu": true,
		"created_at": true, "updated_at": true,
	},
}

type CategoryRepository interface {
	List(ctx context.Context, q query.CategoryList) ([]Row, int64, error)
	FindByID(ctx context.Context, id uint) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uint) error
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) List(ctx context.Context, q query.CategoryList) ([]Row, int64, error) {
	selects, _, err := categoryColumns.resolve(q.Fields)
	if err != nil {
		return nil, 0, err
	}

	filtered := func() *gorm.DB {
		tx := r.db.WithContext(ctx).Model(&models.Category{})
		if q.UseInMenu {
			tx = tx.Where("categories.use_in_menu = ?", true)
		}
		return tx
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count categories: %w", err)
	}

	tx := filtered().Select(selects).Order("categories.id")
	if !q.Unbounded() {
		tx = tx.Limit(q.Limit).Offset(q.Offset)
	}

	var categories []models.Category
	if err := tx.Find(&categories).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list categories: %w", err)
	}

	rows, err := project(categories, q.Fields)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *categoryRepository) FindByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, fmt.Errorf("failed to find category by id %d: %w", id, translate(err, nil))
	}
	return &category, nil
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return fmt.Errorf("failed to create category: %w", translate(err, ErrDuplicateSlug))
	}
	return nil
}

func (r *categoryRepository) Update(ctx context.Context, category *models.Category) error {
	res := r.db.WithContext(ctx).Model(&models.Category{ID: category.ID}).
		Select("name", "slug", "use_in_menu").
		Updates(category)
	if res.Error != nil {
		return fmt.Errorf("failed to update category id %d: %w", category.ID, translate(res.Error, ErrDuplicateSlug))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to update category id %d: %w", category.ID, ErrNotFound)
	}
	return nil
}

// Delete removes the category and its product links. Products stay.
func (r *categoryRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id_category = ?", id).Delete(&models.ProductCategory{}).Error; err != nil {
			return fmt.Errorf("failed to unlink category id %d: %w", id, err)
		}

		res := tx.Delete(&models.Category{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete category id %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("failed to delete category id %d: %w", id, ErrNotFound)
		}
		return nil
	})
}
