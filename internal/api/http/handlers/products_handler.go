package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/souqna/marketplace/internal/api/dto"
	"github.com/souqna/marketplace/internal/auth"
	"github.com/souqna/marketplace/internal/domain"
	"github.com/souqna/marketplace/internal/service"
	apperrors "github.com/souqna/marketplace/pkg/util"
)

// ProductsHandler manages listing endpoints.
type ProductsHandler struct {
	products *service.ProductService
	settings *service.SettingsService
}

// NewProductsHandler constructs handler.
func NewProductsHandler(products *service.ProductService, settings *service.SettingsService) *ProductsHandler {
	return &ProductsHandler{products: products, settings: settings}
}

// Create POST /api/products.
func (h *ProductsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	settings, err := h.settings.Current(c.UserContext())
	if err != nil {
		return err
	}

	product, err := h.products.Create(c.UserContext(), auth.OptionalIdentity(c), service.ProductInput{
		Title:        req.Title,
		Description:  req.Description,
		Price:        req.Price,
		Currency:     req.Currency,
		Category:     req.Category,
		ListingType:  req.ListingType,
		Location:     req.Location,
		ContactPhone: req.ContactPhone,
		Images:       req.Images,
	}, settings)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewProductResponse(product)})
}

// List GET /api/products.
func (h *ProductsHandler) List(c *fiber.Ctx) error {
	products, err := h.products.List(c.UserContext(), auth.OptionalIdentity(c), parseProductQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProductList(products)})
}

// ListMine GET /api/products/mine.
func (h *ProductsHandler) ListMine(c *fiber.Ctx) error {
	products, err := h.products.ListMine(c.UserContext(), auth.OptionalIdentity(c), parseProductQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProductList(products)})
}

// Get GET /api/products/:id.
func (h *ProductsHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c, "id", "product")
	if err != nil {
		return err
	}
	product, err := h.products.Get(c.UserContext(), auth.OptionalIdentity(c), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProductResponse(product)})
}

// Update PATCH /api/products/:id.
func (h *ProductsHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c, "id", "product")
	if err != nil {
		return err
	}
	var req dto.UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	settings, err := h.settings.Current(c.UserContext())
	if err != nil {
		return err
	}

	product, err := h.products.Update(c.UserContext(), auth.OptionalIdentity(c), id, service.ProductUpdate{
		Title:        req.Title,
		Description:  req.Description,
		Price:        req.Price,
		Currency:     req.Currency,
		Category:     req.Category,
		ListingType:  req.ListingType,
		Location:     req.Location,
		ContactPhone: req.ContactPhone,
		Images:       req.Images,
		Status:       req.Status,
	}, settings)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProductResponse(product)})
}

// Delete DELETE /api/products/:id.
func (h *ProductsHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c, "id", "product")
	if err != nil {
		return err
	}
	settings, err := h.settings.Current(c.UserContext())
	if err != nil {
		return err
	}
	if err := h.products.Delete(c.UserContext(), auth.OptionalIdentity(c), id, settings); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Approve POST /api/admin/products/:id/approve.
func (h *ProductsHandler) Approve(c *fiber.Ctx) error {
	id, err := pathID(c, "id", "product")
	if err != nil {
		return err
	}
	product, err := h.products.Approve(c.UserContext(), auth.OptionalIdentity(c), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProductResponse(product)})
}

// Purge DELETE /api/admin/products/:id/purge.
func (h *ProductsHandler) Purge(c *fiber.Ctx) error {
	id, err := pathID(c, "id", "product")
	if err != nil {
		return err
	}
	if err := h.products.Purge(c.UserContext(), auth.OptionalIdentity(c), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func parseProductQuery(c *fiber.Ctx) service.ProductQuery {
	limit, offset := page(c)
	query := service.ProductQuery{
		Category:   optionalQuery(c, "category"),
		MinPrice:   parseFloat(c.Query("minPrice")),
		MaxPrice:   parseFloat(c.Query("maxPrice")),
		SearchTerm: optionalQuery(c, "q"),
		Limit:      limit,
		Offset:     offset,
	}
	if raw := splitCSV(c.Query("listingType")); len(raw) > 0 {
		listingType := domain.ListingType(raw[0])
		query.ListingType = &listingType
	}
	return query
}
