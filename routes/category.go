package routes

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"storefront/events"
	"storefront/models"
	"storefront/query"
	"storefront/repository"
)

type CategoryHandler struct {
	categories repository.CategoryRepository
	events     events.Publisher
}

// UseInMenu is a pointer so that an explicit false passes "required".
type categoryRequest struct {
	Name      string `json:"name" validate:"required,max=50"`
	Slug      string `json:"slug" validate:"required,max=50"`
	UseInMenu *bool  `json:"use_in_menu" validate:"required"`
}

func (r categoryRequest) model(id uint) *models.Category {
	return &models.Category{
		ID:        id,
		Name:      strings.TrimSpace(r.Name),
		Slug:      strings.TrimSpace(r.Slug),
		UseInMenu: *r.UseInMenu,
	}
}

type categoryResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	UseInMenu bool   `json:"use_in_menu"`
}

func newCategoryResponse(c *models.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name, Slug: c.Slug, UseInMenu: c.UseInMenu}
}

func (h *CategoryHandler) Search(c *fiber.Ctx) error {
	values, err := queryValues(c)
	if err != nil {
		return err
	}

	q, err := query.ParseCategoryList(values)
	if err != nil {
		return storeError(err, "")
	}

	rows, total, err := h.categories.List(c.UserContext(), q)
	if err != nil {
		return storeError(err, "")
	}

	return c.JSON(listResponse{Data: rows, Total: total, Limit: q.Limit, Page: q.Page.Page})
}

func (h *CategoryHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	category, err := h.categories.FindByID(c.UserContext(), id)
	if err != nil {
		return storeError(err, "Category not found")
	}
	return c.JSON(newCategoryResponse(category))
}

func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var req categoryRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	category := req.model(0)
	if err := h.categories.Create(c.UserContext(), category); err != nil {
		return storeError(err, "Category not found")
	}

	h.events.Publish(events.Event{Type: events.CategoryCreated, ID: category.ID})
	return c.Status(fiber.StatusCreated).JSON(newCategoryResponse(category))
}

func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req categoryRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.categories.Update(c.UserContext(), req.model(id)); err != nil {
		return storeError(err, "Category not found")
	}

	h.events.Publish(events.Event{Type: events.CategoryUpdated, ID: id})
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.categories.Delete(c.UserContext(), id); err != nil {
		return storeError(err, "Category not found")
	}

	h.events.Publish(events.Event{Type: events.CategoryDeleted, ID: id})
	return c.SendStatus(fiber.StatusNoContent)
}
