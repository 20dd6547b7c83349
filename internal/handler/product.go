package handler

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-auth-service/internal/middleware"
	"github.com/iliyamo/user-auth-service/internal/model"
	"github.com/iliyamo/user-auth-service/internal/store"
)

// ProductHandler implements the product catalog endpoints.  The catalog
// exists to exercise the ownership predicate and optional authentication:
// reads are public, writes require a session, and modifications are limited
// to the creator or an admin.
type ProductHandler struct {
	Products *store.ProductStore
}

func NewProductHandler(products *store.ProductStore) *ProductHandler {
	return &ProductHandler{Products: products}
}

type productReq struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category"`
	InStock     *bool    `json:"inStock"`
}

type categoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type productStats struct {
	TotalProducts       int             `json:"totalProducts"`
	AvailableProducts   int             `json:"availableProducts"`
	MyProducts          int             `json:"myProducts"`
	MyAvailableProducts int             `json:"myAvailableProducts"`
	CategoriesCount     int             `json:"categoriesCount"`
	Categories          []string        `json:"categories"`
	TopCategories       []categoryCount `json:"topCategories"`
}

func parseFilters(c echo.Context) store.ProductFilters {
	f := store.ProductFilters{Category: c.QueryParam("category")}
	if v := c.QueryParam("inStock"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			f.InStock = &b
		}
	}
	if v := c.QueryParam("minPrice"); v != "" {
		if p, err := strconv.ParseFloat(v, 64); err == nil {
			f.MinPrice = &p
		}
	}
	if v := c.QueryParam("maxPrice"); v != "" {
		if p, err := strconv.ParseFloat(v, 64); err == nil {
			f.MaxPrice = &p
		}
	}
	return f
}

// GetAll lists products.  The response flags whether the caller was
// authenticated, since optionalAuth may or may not have attached a
// principal.
func (h *ProductHandler) GetAll(c echo.Context) error {
	products := h.Products.FindAll(parseFilters(c))
	_, authed := middleware.CurrentUser(c)
	return c.JSON(http.StatusOK, echo.Map{
		"success":       true,
		"count":         len(products),
		"data":          products,
		"authenticated": authed,
	})
}

// GetByID returns one product plus a canModify hint for authenticated
// callers.
func (h *ProductHandler) GetByID(c echo.Context) error {
	id := c.Param("id")
	p := h.Products.FindByID(id)
	if p == nil {
		return fail(c, http.StatusNotFound, "Product not found")
	}
	canModify := false
	if u, ok := middleware.CurrentUser(c); ok {
		canModify = h.Products.CanModify(id, u.ID, u.Role)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":   true,
		"data":      p,
		"canModify": canModify,
	})
}

// Create adds a product owned by the authenticated user.
func (h *ProductHandler) Create(c echo.Context) error {
	u, _ := middleware.CurrentUser(c)

	var req productReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	p := model.Product{InStock: true}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.InStock != nil {
		p.InStock = *req.InStock
	}
	if errs := p.Validate(); len(errs) > 0 {
		return fail(c, http.StatusBadRequest, "Validation failed", errs...)
	}
	created := h.Products.Create(&p, u.ID)
	return ok(c, http.StatusCreated, "Product created successfully", created)
}

// Update edits a product (creator or admin).
func (h *ProductHandler) Update(c echo.Context) error {
	id := c.Param("id")
	u, _ := middleware.CurrentUser(c)

	existing := h.Products.FindByID(id)
	if existing == nil {
		return fail(c, http.StatusNotFound, "Product not found")
	}
	if !h.Products.CanModify(id, u.ID, u.Role) {
		return fail(c, http.StatusForbidden, "You can only modify products you created")
	}

	var req productReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	merged := *existing
	if req.Name != nil {
		merged.Name = *req.Name
	}
	if req.Description != nil {
		merged.Description = *req.Description
	}
	if req.Price != nil {
		merged.Price = *req.Price
	}
	if req.Category != nil {
		merged.Category = *req.Category
	}
	if errs := merged.Validate(); len(errs) > 0 {
		return fail(c, http.StatusBadRequest, "Validation failed", errs...)
	}

	updated := h.Products.Update(id, store.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		InStock:     req.InStock,
	})
	return ok(c, http.StatusOK, "Product updated successfully", updated)
}

// Delete removes a product (creator or admin).
func (h *ProductHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	u, _ := middleware.CurrentUser(c)

	if h.Products.FindByID(id) == nil {
		return fail(c, http.StatusNotFound, "Product not found")
	}
	if !h.Products.CanModify(id, u.ID, u.Role) {
		return fail(c, http.StatusForbidden, "You can only delete products you created")
	}
	deleted := h.Products.Delete(id)
	return ok(c, http.StatusOK, "Product deleted successfully", deleted)
}

// Stats returns catalog aggregates for the authenticated user.
func (h *ProductHandler) Stats(c echo.Context) error {
	u, _ := middleware.CurrentUser(c)

	products := h.Products.FindAll(store.ProductFilters{})
	mine := h.Products.FindByCreator(u.ID)
	categories := h.Products.Categories()

	stats := productStats{
		TotalProducts:   len(products),
		MyProducts:      len(mine),
		CategoriesCount: len(categories),
		Categories:      categories,
	}
	for _, p := range products {
		if p.InStock {
			stats.AvailableProducts++
		}
	}
	for _, p := range mine {
		if p.InStock {
			stats.MyAvailableProducts++
		}
	}
	for _, cat := range categories {
		stats.TopCategories = append(stats.TopCategories, categoryCount{
			Category: cat,
			Count:    len(h.Products.FindByCategory(cat)),
		})
	}
	sort.Slice(stats.TopCategories, func(i, j int) bool {
		return stats.TopCategories[i].Count > stats.TopCategories[j].Count
	})
	return c.JSON(http.StatusOK, okResp{Success: true, Data: stats})
}

// My lists the authenticated user's own products.
func (h *ProductHandler) My(c echo.Context) error {
	u, _ := middleware.CurrentUser(c)
	mine := h.Products.FindByCreator(u.ID)
	return okList(c, len(mine), mine)
}

// Categories lists the distinct category names (public).
func (h *ProductHandler) Categories(c echo.Context) error {
	categories := h.Products.Categories()
	return okList(c, len(categories), categories)
}

// ByCategory lists products in one category (public).
func (h *ProductHandler) ByCategory(c echo.Context) error {
	category := c.Param("category")
	products := h.Products.FindByCategory(category)
	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"category": category,
		"count":    len(products),
		"data":     products,
	})
}
