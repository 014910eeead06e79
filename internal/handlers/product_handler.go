package handlers

import (
	"errors"
	"strings"

	"storefront/internal/models"
	"storefront/internal/services"
	"storefront/internal/upload"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service  *services.ProductService
	uploader *upload.Uploader
	validate *validator.Validate
	opts     Options
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, uploader *upload.Uploader, opts Options) *ProductHandler {
	if opts.UploadField == "" {
		opts.UploadField = "productImage"
	}
	return &ProductHandler{
		service:  service,
		uploader: uploader,
		validate: validator.New(),
		opts:     opts,
	}
}

// RegisterRoutes registers the product routes. protect guards the write route.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, protect fiber.Handler) {
	router.Get("/products", h.HandleListProducts)
	router.Post("/products", protect, h.HandleCreateProduct)
}

// CreateProductRequest is accepted as JSON or as multipart form fields.
// Price and stock are pointers so that zero is distinguishable from absent.
type CreateProductRequest struct {
	Name        string   `json:"name" form:"name" validate:"required"`
	Category    string   `json:"category" form:"category" validate:"required"`
	Price       *float64 `json:"price" form:"price" validate:"required,gte=0"`
	Description string   `json:"description" form:"description"`
	Stock       *int     `json:"stock" form:"stock" validate:"required,gte=0"`
}

// HandleCreateProduct validates the fields, stores the optional image and
// then the product. The image is removed again if the insert fails.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badInput(err)
	}
	if err := h.validate.Struct(req); err != nil {
		return badInput(err)
	}

	ctx, cancel := h.opts.requestContext(c)
	defer cancel()

	product := &models.Product{
		Name:        req.Name,
		Category:    req.Category,
		Price:       *req.Price,
		Description: req.Description,
		Stock:       *req.Stock,
	}

	if isMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil {
			return badInput(err)
		}
		if files := form.File[h.opts.UploadField]; len(files) > 0 {
			stored, err := h.uploader.Accept(ctx, files[0])
			if err != nil {
				h.opts.Metrics.UploadRejected(rejectReason(err))
				return err
			}
			product.ProductImage = stored
		}
	}

	if err := h.service.CreateProduct(ctx, product); err != nil {
		h.uploader.Discard(ctx, product.ProductImage)
		return err
	}

	h.opts.Metrics.ProductCreated()

	image := product.ProductImage
	if image == "" {
		image = "No image uploaded"
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"productId":    product.ID,
		"message":      "Product added successfully",
		"productImage": image,
	})
}

// HandleListProducts returns one page of products.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	page := h.opts.Paginator.Normalize(c.Query("page"), c.Query("limit"))

	ctx, cancel := h.opts.requestContext(c)
	defer cancel()

	products, total, err := h.service.ListProducts(ctx, page)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"products": products,
		"total":    total,
		"page":     page.Page,
		"limit":    page.Limit,
	})
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm)
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, upload.ErrInvalidImageType):
		return "type"
	case errors.Is(err, upload.ErrImageTooLarge):
		return "size"
	default:
		return "storage"
	}
}
