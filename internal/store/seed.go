package store

import (
	"log"

	"github.com/iliyamo/user-auth-service/internal/model"
)

// SeedUsers loads the sample accounts used for local development and the
// README examples. Creation failures are logged and skipped so a partial
// seed never prevents startup.
func SeedUsers(s *UserStore) {
	samples := []*model.User{
		{Name: "Admin User", Email: "admin@example.com", Password: "Admin123!", Age: 30, City: "New York", Role: model.RoleAdmin, IsActive: true},
		{Name: "John Doe", Email: "john@example.com", Password: "User123!", Age: 25, City: "Los Angeles", Role: model.RoleUser, IsActive: true},
		{Name: "Jane Smith", Email: "jane@example.com", Password: "User123!", Age: 28, City: "Chicago", Role: model.RoleUser, IsActive: true},
	}
	for _, u := range samples {
		if _, err := s.Create(u); err != nil {
			log.Printf("seed: skipping user %s: %v", u.Email, err)
		}
	}
}

// SeedProducts loads a handful of sample catalog entries owned by "system".
func SeedProducts(s *ProductStore) {
	samples := []*model.Product{
		{Name: "Laptop", Description: "High-performance laptop for professionals", Price: 999.99, Category: "Electronics", InStock: true},
		{Name: "Smartphone", Description: "Latest smartphone with advanced features", Price: 699.99, Category: "Electronics", InStock: true},
		{Name: "Coffee Maker", Description: "Automatic coffee maker for home use", Price: 149.99, Category: "Home & Kitchen", InStock: false},
		{Name: "Running Shoes", Description: "Comfortable running shoes for athletes", Price: 89.99, Category: "Sports", InStock: true},
	}
	for _, p := range samples {
		s.Create(p, "system")
	}
}
