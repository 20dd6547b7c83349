package handler_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/user-auth-service/internal/model"
)

func (env *testEnv) createProduct(t *testing.T, token, name, category string, price float64) model.Product {
	t.Helper()
	rec := env.do(t, "POST", "/api/products", token, map[string]interface{}{
		"name": name, "description": "A " + name, "price": price, "category": category,
	})
	require.Equal(t, 201, rec.Code, rec.Body.String())
	var p model.Product
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &p))
	return p
}

func TestProductListingIsPublic(t *testing.T) {
	env := newTestEnv(t)
	owner := env.register(t, "John Doe", "john@example.com", "User123!")
	env.createProduct(t, owner.Tokens.AccessToken, "Laptop", "Electronics", 999.99)
	env.createProduct(t, owner.Tokens.AccessToken, "Mouse", "Electronics", 19.99)
	env.createProduct(t, owner.Tokens.AccessToken, "Desk", "Furniture", 249.00)

	// No token: the list is visible and flagged unauthenticated.
	rec := env.do(t, "GET", "/api/products", "", nil)
	require.Equal(t, 200, rec.Code)
	var listing struct {
		Count         int  `json:"count"`
		Authenticated bool `json:"authenticated"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.Equal(t, 3, listing.Count)
	assert.False(t, listing.Authenticated)

	// A garbage token is ignored rather than rejected.
	rec = env.do(t, "GET", "/api/products", "garbage", nil)
	require.Equal(t, 200, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.False(t, listing.Authenticated)

	// A valid token flips the flag.
	rec = env.do(t, "GET", "/api/products", owner.Tokens.AccessToken, nil)
	require.Equal(t, 200, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.True(t, listing.Authenticated)

	// Writes still require a session.
	rec = env.do(t, "POST", "/api/products", "", map[string]interface{}{
		"name": "Pen", "description": "A pen", "price": 1.5, "category": "Office",
	})
	assert.Equal(t, 401, rec.Code)
}

func TestProductFilters(t *testing.T) {
	env := newTestEnv(t)
	owner := env.register(t, "John Doe", "john@example.com", "User123!")
	env.createProduct(t, owner.Tokens.AccessToken, "Laptop", "Electronics", 999.99)
	env.createProduct(t, owner.Tokens.AccessToken, "Mouse", "Electronics", 19.99)
	env.createProduct(t, owner.Tokens.AccessToken, "Desk", "Furniture", 249.00)

	var listing struct {
		Count int `json:"count"`
	}
	rec := env.do(t, "GET", "/api/products?category=Electronics", "", nil)
	require.Equal(t, 200, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.Equal(t, 2, listing.Count)

	rec = env.do(t, "GET", "/api/products?minPrice=100&maxPrice=500", "", nil)
	require.Equal(t, 200, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.Equal(t, 1, listing.Count)
}

func TestProductOwnership(t *testing.T) {
	env := newTestEnv(t)
	a := env.register(t, "John Doe", "john@example.com", "User123!")
	b := env.register(t, "Jane Doe", "jane@example.com", "User123!")
	admin := env.seedAdmin(t)

	p := env.createProduct(t, a.Tokens.AccessToken, "Laptop", "Electronics", 999.99)

	// Another user cannot modify or delete it.
	rec := env.do(t, "PUT", "/api/products/"+p.ID, b.Tokens.AccessToken, map[string]interface{}{
		"price": 1.00,
	})
	assert.Equal(t, 403, rec.Code)
	assert.Equal(t, "You can only modify products you created", decode(t, rec).Message)

	rec = env.do(t, "DELETE", "/api/products/"+p.ID, b.Tokens.AccessToken, nil)
	assert.Equal(t, 403, rec.Code)
	assert.Equal(t, "You can only delete products you created", decode(t, rec).Message)

	// The creator can.
	rec = env.do(t, "PUT", "/api/products/"+p.ID, a.Tokens.AccessToken, map[string]interface{}{
		"price": 899.99,
	})
	require.Equal(t, 200, rec.Code)
	var updated model.Product
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &updated))
	assert.Equal(t, 899.99, updated.Price)

	// So can an admin, including delete.
	rec = env.do(t, "PUT", "/api/products/"+p.ID, admin.Tokens.AccessToken, map[string]interface{}{
		"name": "Refurbished Laptop",
	})
	assert.Equal(t, 200, rec.Code)
	rec = env.do(t, "DELETE", "/api/products/"+p.ID, admin.Tokens.AccessToken, nil)
	assert.Equal(t, 200, rec.Code)

	rec = env.do(t, "GET", "/api/products/"+p.ID, "", nil)
	assert.Equal(t, 404, rec.Code)
}

func TestProductCanModifyHint(t *testing.T) {
	env := newTestEnv(t)
	a := env.register(t, "John Doe", "john@example.com", "User123!")
	b := env.register(t, "Jane Doe", "jane@example.com", "User123!")

	p := env.createProduct(t, a.Tokens.AccessToken, "Laptop", "Electronics", 999.99)

	var detail struct {
		CanModify bool `json:"canModify"`
	}
	rec := env.do(t, "GET", "/api/products/"+p.ID, "", nil)
	require.Equal(t, 200, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.False(t, detail.CanModify)

	rec = env.do(t, "GET", "/api/products/"+p.ID, a.Tokens.AccessToken, nil)
	require.Equal(t, 200, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.True(t, detail.CanModify)

	rec = env.do(t, "GET", "/api/products/"+p.ID, b.Tokens.AccessToken, nil)
	require.Equal(t, 200, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.False(t, detail.CanModify)
}

func TestProductValidation(t *testing.T) {
	env := newTestEnv(t)
	a := env.register(t, "John Doe", "john@example.com", "User123!")

	rec := env.do(t, "POST", "/api/products", a.Tokens.AccessToken, map[string]interface{}{
		"name": "", "description": "", "price": -5, "category": "",
	})
	require.Equal(t, 400, rec.Code)
	body := decode(t, rec)
	assert.Contains(t, body.Errors, "Product name is required")
	assert.Contains(t, body.Errors, "Product description is required")
	assert.Contains(t, body.Errors, "Price must be a positive number")
	assert.Contains(t, body.Errors, "Category is required")
}

func TestProductCategoriesAndStats(t *testing.T) {
	env := newTestEnv(t)
	a := env.register(t, "John Doe", "john@example.com", "User123!")
	b := env.register(t, "Jane Doe", "jane@example.com", "User123!")
	env.createProduct(t, a.Tokens.AccessToken, "Laptop", "Electronics", 999.99)
	env.createProduct(t, a.Tokens.AccessToken, "Mouse", "Electronics", 19.99)
	env.createProduct(t, b.Tokens.AccessToken, "Desk", "Furniture", 249.00)

	// Categories are public and distinct.
	rec := env.do(t, "GET", "/api/products/categories", "", nil)
	require.Equal(t, 200, rec.Code)
	body := decode(t, rec)
	var categories []string
	require.NoError(t, json.Unmarshal(body.Data, &categories))
	assert.ElementsMatch(t, []string{"Electronics", "Furniture"}, categories)

	rec = env.do(t, "GET", "/api/products/category/Electronics", "", nil)
	require.Equal(t, 200, rec.Code)
	var byCat struct {
		Category string `json:"category"`
		Count    int    `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &byCat))
	assert.Equal(t, "Electronics", byCat.Category)
	assert.Equal(t, 2, byCat.Count)

	// Stats reflect the caller's own products.
	rec = env.do(t, "GET", "/api/products/stats", a.Tokens.AccessToken, nil)
	require.Equal(t, 200, rec.Code)
	type categoryCount struct {
		Category string `json:"category"`
		Count    int    `json:"count"`
	}
	var stats struct {
		TotalProducts int             `json:"totalProducts"`
		MyProducts    int             `json:"myProducts"`
		TopCategories []categoryCount `json:"topCategories"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &stats))
	assert.Equal(t, 3, stats.TotalProducts)
	assert.Equal(t, 2, stats.MyProducts)
	require.NotEmpty(t, stats.TopCategories)
	assert.Equal(t, "Electronics", stats.TopCategories[0].Category)

	// My listing only shows the caller's products.
	rec = env.do(t, "GET", "/api/products/my", b.Tokens.AccessToken, nil)
	require.Equal(t, 200, rec.Code)
	assert.Equal(t, 1, decode(t, rec).Count)
}
