package catalog

import (
	"context"
	"strings"
)

// RepositoryPort abstracts persistence for the service.
type RepositoryPort interface {
	CreateProduct(ctx context.Context, product Product) (Product, error)
	ListProducts(ctx context.Context) ([]Product, error)
	CreateVariant(ctx context.Context, variant Variant) (Variant, error)
	UpdateVariant(ctx context.Context, variant Variant) error
	GetVariant(ctx context.Context, id int64) (Variant, error)
	GetVariantBySKU(ctx context.Context, sku string) (Variant, error)
	ListVariants(ctx context.Context, productID int64) ([]Variant, error)
	CreateWarehouse(ctx context.Context, warehouse Warehouse) (Warehouse, error)
	GetWarehouse(ctx context.Context, id int64) (Warehouse, error)
	ListWarehouses(ctx context.Context) ([]Warehouse, error)
	CreateSupplier(ctx context.Context, supplier Supplier) (Supplier, error)
	GetSupplier(ctx context.Context, id int64) (Supplier, error)
	ListSuppliers(ctx context.Context) ([]Supplier, error)
	CreateCustomer(ctx context.Context, customer Customer) (Customer, error)
	ListCustomers(ctx context.Context) ([]Customer, error)
}

// Service coordinates catalog masterdata.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateProduct(ctx context.Context, product Product) (Product, error) {
	if strings.TrimSpace(product.Name) == "" {
		return Product{}, ErrValidation
	}
	return s.repo.CreateProduct(ctx, product)
}

func (s *Service) ListProducts(ctx context.Context) ([]Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) CreateVariant(ctx context.Context, variant Variant) (Variant, error) {
	if err := validateVariant(variant); err != nil {
		return Variant{}, err
	}
	return s.repo.CreateVariant(ctx, variant)
}

func (s *Service) UpdateVariant(ctx context.Context, variant Variant) error {
	if variant.ID <= 0 {
		return ErrValidation
	}
	if err := validateVariant(variant); err != nil {
		return err
	}
	return s.repo.UpdateVariant(ctx, variant)
}

func (s *Service) GetVariant(ctx context.Context, id int64) (Variant, error) {
	if id <= 0 {
		return Variant{}, ErrValidation
	}
	return s.repo.GetVariant(ctx, id)
}

func (s *Service) GetVariantBySKU(ctx context.Context, sku string) (Variant, error) {
	if strings.TrimSpace(sku) == "" {
		return Variant{}, ErrValidation
	}
	return s.repo.GetVariantBySKU(ctx, sku)
}

func (s *Service) ListVariants(ctx context.Context, productID int64) ([]Variant, error) {
	return s.repo.ListVariants(ctx, productID)
}

func (s *Service) CreateWarehouse(ctx context.Context, warehouse Warehouse) (Warehouse, error) {
	if strings.TrimSpace(warehouse.Name) == "" {
		return Warehouse{}, ErrValidation
	}
	if warehouse.Kind == "" {
		warehouse.Kind = WarehousePhysical
	}
	if !validWarehouseKind(warehouse.Kind) {
		return Warehouse{}, ErrValidation
	}
	if warehouse.Kind == WarehouseVirtualSupplier && warehouse.SupplierID == 0 {
		return Warehouse{}, ErrSupplierRequired
	}
	return s.repo.CreateWarehouse(ctx, warehouse)
}

func (s *Service) GetWarehouse(ctx context.Context, id int64) (Warehouse, error) {
	if id <= 0 {
		return Warehouse{}, ErrValidation
	}
	return s.repo.GetWarehouse(ctx, id)
}

func (s *Service) ListWarehouses(ctx context.Context) ([]Warehouse, error) {
	return s.repo.ListWarehouses(ctx)
}

// IsVirtualSupplier implements the ledger's warehouse port.
func (s *Service) IsVirtualSupplier(ctx context.Context, warehouseID int64) (bool, error) {
	warehouse, err := s.repo.GetWarehouse(ctx, warehouseID)
	if err != nil {
		return false, err
	}
	return warehouse.Kind == WarehouseVirtualSupplier, nil
}

func (s *Service) CreateSupplier(ctx context.Context, supplier Supplier) (Supplier, error) {
	if strings.TrimSpace(supplier.Name) == "" {
		return Supplier{}, ErrValidation
	}
	return s.repo.CreateSupplier(ctx, supplier)
}

func (s *Service) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	return s.repo.ListSuppliers(ctx)
}

func (s *Service) CreateCustomer(ctx context.Context, customer Customer) (Customer, error) {
	if strings.TrimSpace(customer.Name) == "" {
		return Customer{}, ErrValidation
	}
	return s.repo.CreateCustomer(ctx, customer)
}

func (s *Service) ListCustomers(ctx context.Context) ([]Customer, error) {
	return s.repo.ListCustomers(ctx)
}

func validateVariant(variant Variant) error {
	if strings.TrimSpace(variant.SKU) == "" || strings.TrimSpace(variant.Name) == "" {
		return ErrValidation
	}
	if variant.Cost < 0 || variant.Price < 0 {
		return ErrValidation
	}
	return nil
}
