package handlers

import (
	"errors"
	"fmt"

	"inventario/internal/forms"
	"inventario/internal/repositories"
	"inventario/internal/services"
	"inventario/internal/views"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const (
	listURL               = "/productos/"
	formErrorsMessage     = "Please correct the errors in the form."
	deletedProductMessage = "Product deleted successfully"
)

// ProductHandler serves the server-rendered product pages.
type ProductHandler struct {
	service  *services.ProductService
	sessions *session.Store
}

// NewProductHandler creates a new ProductHandler. Flash messages are kept in sessions.
func NewProductHandler(service *services.ProductService, sessions *session.Store) *ProductHandler {
	return &ProductHandler{
		service:  service,
		sessions: sessions,
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/productos")
	productRoutes.Get("/", h.HandleList)
	productRoutes.Get("/nuevo", h.HandleCreateForm)
	productRoutes.Post("/nuevo", h.HandleCreate)
	productRoutes.Get("/:id", h.HandleDetail)
	productRoutes.Get("/:id/editar", h.HandleUpdateForm)
	productRoutes.Post("/:id/editar", h.HandleUpdate)
	productRoutes.Get("/:id/eliminar", h.HandleDeleteConfirm)
	productRoutes.Post("/:id/eliminar", h.HandleDelete)
}

// HandleList renders every active product, newest first.
func (h *ProductHandler) HandleList(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.UserContext())
	if err != nil {
		return err
	}
	return h.render(c, "productos/list", fiber.Map{
		"Title":    "Products",
		"Products": products,
	})
}

// HandleDetail renders a single active product.
func (h *ProductHandler) HandleDetail(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return notFoundOr(err)
	}
	return h.render(c, "productos/detail", fiber.Map{
		"Title":   product.Name,
		"Product": product,
	})
}

// HandleCreateForm renders an empty product form.
func (h *ProductHandler) HandleCreateForm(c *fiber.Ctx) error {
	return h.renderCreateForm(c, forms.InitialValues(), forms.FieldErrors{})
}

// HandleCreate stores a submitted product and redirects to the list.
func (h *ProductHandler) HandleCreate(c *fiber.Ctx) error {
	values := formValues(c)
	product, err := h.service.CreateProduct(c.UserContext(), values)
	if err != nil {
		var verr *forms.ValidationError
		if errors.As(err, &verr) {
			return h.renderCreateForm(c, values, verr.Fields, Message{Level: LevelError, Text: formErrorsMessage})
		}
		return err
	}

	if err := h.flash(c, LevelSuccess, fmt.Sprintf("Product %q created successfully", product.Name)); err != nil {
		return err
	}
	return c.Redirect(listURL)
}

// HandleUpdateForm renders the form pre-filled with the stored product.
func (h *ProductHandler) HandleUpdateForm(c *fiber.Ctx) error {
	id := c.Params("id")
	product, err := h.service.GetProduct(c.UserContext(), id)
	if err != nil {
		return notFoundOr(err)
	}
	return h.renderUpdateForm(c, id, product.Name, forms.ValuesFromProduct(*product), forms.FieldErrors{})
}

// HandleUpdate merges the submission onto the stored product and redirects to its detail page.
func (h *ProductHandler) HandleUpdate(c *fiber.Ctx) error {
	id := c.Params("id")
	values := formValues(c)
	product, err := h.service.UpdateProduct(c.UserContext(), id, values)
	if err != nil {
		var verr *forms.ValidationError
		if errors.As(err, &verr) {
			return h.renderUpdateForm(c, id, values["name"], values, verr.Fields, Message{Level: LevelError, Text: formErrorsMessage})
		}
		return notFoundOr(err)
	}

	if err := h.flash(c, LevelSuccess, fmt.Sprintf("Product %q updated successfully", product.Name)); err != nil {
		return err
	}
	return c.Redirect(product.AbsoluteURL())
}

// HandleDeleteConfirm asks before soft-deleting a product.
func (h *ProductHandler) HandleDeleteConfirm(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return notFoundOr(err)
	}
	return h.render(c, "productos/confirm_delete", fiber.Map{
		"Title":   "Delete product",
		"Product": product,
	})
}

// HandleDelete soft-deletes a product. XMLHttpRequest callers get JSON,
// everyone else is redirected to the list.
func (h *ProductHandler) HandleDelete(c *fiber.Ctx) error {
	product, err := h.service.DeleteProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return notFoundOr(err)
	}

	if err := h.flash(c, LevelSuccess, fmt.Sprintf("Product %q deleted successfully", product.Name)); err != nil {
		return err
	}
	if c.XHR() {
		return c.JSON(fiber.Map{
			"success": true,
			"message": deletedProductMessage,
		})
	}
	return c.Redirect(listURL)
}

func (h *ProductHandler) renderCreateForm(c *fiber.Ctx, values forms.FormValues, fieldErrors forms.FieldErrors, inline ...Message) error {
	return h.render(c, "productos/form", fiber.Map{
		"Title":     "New product",
		"Action":    "/productos/nuevo/",
		"CancelURL": listURL,
		"Values":    values,
		"Errors":    fieldErrors,
	}, inline...)
}

func (h *ProductHandler) renderUpdateForm(c *fiber.Ctx, id, name string, values forms.FormValues, fieldErrors forms.FieldErrors, inline ...Message) error {
	return h.render(c, "productos/form", fiber.Map{
		"Title":     fmt.Sprintf("Edit %s", name),
		"Action":    "/productos/" + id + "/editar/",
		"CancelURL": "/productos/" + id + "/",
		"Values":    values,
		"Errors":    fieldErrors,
	}, inline...)
}

// render adds pending flash messages plus inline to data and renders name inside the base layout.
func (h *ProductHandler) render(c *fiber.Ctx, name string, data fiber.Map, inline ...Message) error {
	data["Messages"] = append(h.popFlash(c), inline...)
	return c.Render(name, data, views.BaseLayout)
}

func notFoundOr(err error) error {
	if errors.Is(err, repositories.ErrProductNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Product not found")
	}
	return err
}

// formValues collects the submitted fields of a urlencoded or multipart body.
func formValues(c *fiber.Ctx) forms.FormValues {
	values := forms.FormValues{}
	if form, err := c.MultipartForm(); err == nil {
		for key, vals := range form.Value {
			if len(vals) > 0 {
				values[key] = vals[0]
			}
		}
		return values
	}
	c.Request().PostArgs().VisitAll(func(key, value []byte) {
		if _, seen := values[string(key)]; !seen {
			values[string(key)] = string(value)
		}
	})
	return values
}
