package routes

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"storefront/events"
	"storefront/media"
	"storefront/models"
	"storefront/query"
	"storefront/repository"
)

type ProductHandler struct {
	products repository.ProductRepository
	media    *media.Store
	events   events.Publisher
}

type optionRequest struct {
	Title  string   `json:"title" validate:"required,max=100"`
	Shape  string   `json:"shape" validate:"omitempty,oneof=square circle"`
	Radius int      `json:"radius" validate:"gte=0"`
	Type   string   `json:"type" validate:"omitempty,oneof=text color"`
	Values []string `json:"values" validate:"required,min=1,dive,required,max=100"`
}

// Images and Options left out of an update keep their stored rows; an
// empty list clears them.
type productRequest struct {
	Enabled           bool            `json:"enabled"`
	Name              string          `json:"name" validate:"required,max=50"`
	Slug              string          `json:"slug" validate:"required,max=50"`
	Stock             int             `json:"stock" validate:"gte=0"`
	Description       string          `json:"description" validate:"max=100"`
	Price             *float64        `json:"price" validate:"required,gte=0"`
	PriceWithDiscount *float64        `json:"price_with_discount" validate:"required,gte=0"`
	CategoryIDs       []uint          `json:"category_ids" validate:"required,min=1,dive,gt=0"`
	Images            []media.Upload  `json:"images" validate:"omitempty,dive"`
	Options           []optionRequest `json:"options" validate:"omitempty,dive"`
}

// model builds the product around already stored image paths.
func (r productRequest) model(id uint, imagePaths []string) *models.Product {
	product := &models.Product{
		ID:                id,
		Enabled:           r.Enabled,
		Name:              strings.TrimSpace(r.Name),
		Slug:              strings.TrimSpace(r.Slug),
		Stock:             r.Stock,
		Description:       r.Description,
		Price:             *r.Price,
		PriceWithDiscount: *r.PriceWithDiscount,
		CategoryIDs:       r.CategoryIDs,
	}

	if r.Images != nil {
		product.Images = make([]models.ProductImage, len(imagePaths))
		for i, path := range imagePaths {
			product.Images[i] = models.ProductImage{Enabled: true, Path: path}
		}
	}

	if r.Options != nil {
		product.Options = make([]models.ProductOption, len(r.Options))
		for i, opt := range r.Options {
			values := make([]models.ProductOptionValue, len(opt.Values))
			for j, v := range opt.Values {
				values[j] = models.ProductOptionValue{Value: strings.TrimSpace(v)}
			}
			product.Options[i] = models.ProductOption{
				Title:  opt.Title,
				Shape:  opt.Shape,
				Radius: opt.Radius,
				Type:   opt.Type,
				Values: values,
			}
		}
	}
	return product
}

func (h *ProductHandler) Search(c *fiber.Ctx) error {
	values, err := queryValues(c)
	if err != nil {
		return err
	}

	q, err := query.ParseProductList(values)
	if err != nil {
		return storeError(err, "")
	}

	rows, total, err := h.products.List(c.UserContext(), q)
	if err != nil {
		return storeError(err, "")
	}

	return c.JSON(listResponse{Data: rows, Total: total, Limit: q.Limit, Page: q.Page.Page})
}

func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	product, err := h.products.FindByID(c.UserContext(), id)
	if err != nil {
		return storeError(err, "Product not found")
	}
	return c.JSON(product)
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var req productRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	paths, err := h.media.SaveAll(req.Images)
	if err != nil {
		return storeError(err, "")
	}

	product := req.model(0, paths)
	if err := h.products.Create(c.UserContext(), product); err != nil {
		h.media.Remove(paths)
		return storeError(err, "Product not found")
	}

	h.events.Publish(events.Event{Type: events.ProductCreated, ID: product.ID})
	return c.Status(fiber.StatusCreated).JSON(product)
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req productRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	paths, err := h.media.SaveAll(req.Images)
	if err != nil {
		return storeError(err, "")
	}

	replace := repository.Replace{Images: req.Images != nil, Options: req.Options != nil}
	removed, err := h.products.Update(c.UserContext(), req.model(id, paths), replace)
	if err != nil {
		h.media.Remove(paths)
		return storeError(err, "Product not found")
	}
	h.media.Remove(removed)

	h.events.Publish(events.Event{Type: events.ProductUpdated, ID: id})
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	removed, err := h.products.Delete(c.UserContext(), id)
	if err != nil {
		return storeError(err, "Product not found")
	}
	h.media.Remove(removed)

	h.events.Publish(events.Event{Type: events.ProductDeleted, ID: id})
	return c.SendStatus(fiber.StatusNoContent)
}
