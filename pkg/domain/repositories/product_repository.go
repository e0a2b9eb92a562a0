package repositories

import "github.com/vsinha/vantax/pkg/domain/entities"

// ProductFilter narrows a product listing. Zero values match everything.
type ProductFilter struct {
	Category string
	Brand    string
	Status   *entities.ProductStatus
	Query    string
}

// ProductRepository provides access to the product catalog
type ProductRepository interface {
	GetProduct(companyID entities.CompanyID, id entities.ProductID) (*entities.Product, error)
	FindProducts(companyID entities.CompanyID, filter ProductFilter, page Page) ([]*entities.Product, int, error)
	GetAllProducts(companyID entities.CompanyID) ([]*entities.Product, error)
	SaveProduct(product *entities.Product) error

	// UpdateProduct applies fn to the stored product under the store's write
	// lock. A product deleted concurrently is reported as not found.
	UpdateProduct(companyID entities.CompanyID, id entities.ProductID, fn func(*entities.Product) error) (*entities.Product, error)
	DeleteProduct(companyID entities.CompanyID, id entities.ProductID) error
	LoadProducts(products []*entities.Product) error
}
