package memory

import (
	"sync"

	"github.com/vsinha/vantax/pkg/domain/entities"
	"github.com/vsinha/vantax/pkg/domain/repositories"
	perrors "github.com/vsinha/vantax/pkg/platform/errors"
)

// ProductRepository provides in-memory catalog storage, partitioned by company
type ProductRepository struct {
	mu       sync.RWMutex
	expected int
	tenants  map[entities.CompanyID]*partition[entities.ProductID, entities.Product]
}

// NewProductRepository creates a new in-memory product repository.
// expectedProducts sizes each company's partition.
func NewProductRepository(expectedProducts int) *ProductRepository {
	return &ProductRepository{
		expected: expectedProducts,
		tenants:  make(map[entities.CompanyID]*partition[entities.ProductID, entities.Product]),
	}
}

// Verify interface compliance
var _ repositories.ProductRepository = (*ProductRepository)(nil)

var productOrder = lessFuncs[entities.Product]{
	"name":       func(a, b *entities.Product) bool { return a.Name < b.Name },
	"sku":        func(a, b *entities.Product) bool { return a.SKU < b.SKU },
	"category":   func(a, b *entities.Product) bool { return a.Category < b.Category },
	"price":      func(a, b *entities.Product) bool { return a.UnitPrice.LessThan(b.UnitPrice) },
	"created_at": func(a, b *entities.Product) bool { return a.CreatedAt.Before(b.CreatedAt) },
}

// LoadProducts loads products into the repository
func (r *ProductRepository) LoadProducts(products []*entities.Product) error {
	for _, p := range products {
		if err := r.SaveProduct(p); err != nil {
			return err
		}
	}
	return nil
}

// SaveProduct inserts or replaces a product. SKUs are unique within a company.
func (r *ProductRepository) SaveProduct(product *entities.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.tenants[product.CompanyID]
	if !ok {
		p = newPartition[entities.ProductID, entities.Product](r.expected)
		r.tenants[product.CompanyID] = p
	}
	for i := range p.rows {
		if p.rows[i].SKU == product.SKU && p.rows[i].ID != product.ID {
			return perrors.Conflict("memory/ProductRepository.SaveProduct", "duplicate sku %s", product.SKU)
		}
	}
	p.put(product.ID, *product)
	return nil
}

// UpdateProduct applies fn to a copy of the stored product and stores the
// result only if fn, validation and the SKU check succeed
func (r *ProductRepository) UpdateProduct(
	companyID entities.CompanyID,
	id entities.ProductID,
	fn func(*entities.Product) error,
) (*entities.Product, error) {
	const op = "memory/ProductRepository.UpdateProduct"

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.tenants[companyID]
	if !ok {
		return nil, perrors.NotFound(op, "product not found: %s", id)
	}
	stored, ok := p.get(id)
	if !ok {
		return nil, perrors.NotFound(op, "product not found: %s", id)
	}

	updated := *stored
	if err := fn(&updated); err != nil {
		return nil, err
	}
	updated.ID, updated.CompanyID = id, companyID
	if err := updated.Validate(); err != nil {
		return nil, perrors.Invalid(op, err)
	}
	for i := range p.rows {
		if p.rows[i].SKU == updated.SKU && p.rows[i].ID != id {
			return nil, perrors.Conflict(op, "duplicate sku %s", updated.SKU)
		}
	}
	p.put(id, updated)

	cp := updated
	return &cp, nil
}

// GetProduct returns a product by id within a company
func (r *ProductRepository) GetProduct(companyID entities.CompanyID, id entities.ProductID) (*entities.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if p, ok := r.tenants[companyID]; ok {
		if product, ok := p.get(id); ok {
			cp := *product
			return &cp, nil
		}
	}
	return nil, perrors.NotFound("memory/ProductRepository.GetProduct", "product not found: %s", id)
}

// FindProducts returns the filtered, sorted and windowed products plus the
// number of matches before windowing
func (r *ProductRepository) FindProducts(companyID entities.CompanyID, filter repositories.ProductFilter, page repositories.Page) ([]*entities.Product, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.tenants[companyID]
	if !ok {
		return []*entities.Product{}, 0, nil
	}

	matched := make([]*entities.Product, 0, len(p.rows))
	for i := range p.rows {
		product := &p.rows[i]
		if !equalFoldOrEmpty(filter.Category, product.Category) ||
			!equalFoldOrEmpty(filter.Brand, product.Brand) ||
			(filter.Status != nil && *filter.Status != product.Status) ||
			!matchesQuery(filter.Query, product.Name, product.SKU) {
			continue
		}
		cp := *product
		matched = append(matched, &cp)
	}

	items, total := paginate(matched, page, productOrder)
	return items, total, nil
}

// GetAllProducts returns every product of a company in creation order
func (r *ProductRepository) GetAllProducts(companyID entities.CompanyID) ([]*entities.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var products []*entities.Product
	if p, ok := r.tenants[companyID]; ok {
		for i := range p.rows {
			cp := p.rows[i]
			products = append(products, &cp)
		}
	}
	return products, nil
}

// DeleteProduct removes a product
func (r *ProductRepository) DeleteProduct(companyID entities.CompanyID, id entities.ProductID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.tenants[companyID]; ok {
		if p.remove(id, func(v *entities.Product) entities.ProductID { return v.ID }) {
			return nil
		}
	}
	return perrors.NotFound("memory/ProductRepository.DeleteProduct", "product not found: %s", id)
}
