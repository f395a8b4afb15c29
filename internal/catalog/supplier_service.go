package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	pkgerrors "github.com/supplysync/supplysync-backend/pkg/errors"
	"github.com/supplysync/supplysync-backend/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type supplierRepository interface {
	Insert(ctx context.Context, supplier *Supplier) (primitive.ObjectID, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*Supplier, error)
	FindAll(ctx context.Context) ([]Supplier, error)
	ExistsByEmail(ctx context.Context, email string, excludeID primitive.ObjectID) (bool, error)
	Replace(ctx context.Context, id primitive.ObjectID, supplier *Supplier) (int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
}

type productsBySupplierRepository interface {
	FindBySupplier(ctx context.Context, supplierID primitive.ObjectID) ([]Product, error)
}

// SupplierService exposes supplier operations.
type SupplierService interface {
	Create(ctx context.Context, input CreateSupplierInput) (*SupplierDTO, error)
	GetByID(ctx context.Context, id string) (*SupplierDTO, error)
	List(ctx context.Context) ([]SupplierDTO, error)
	Update(ctx context.Context, id string, input CreateSupplierInput) (*SupplierDTO, error)
	Delete(ctx context.Context, id string) error
	ListProducts(ctx context.Context, id string) ([]ProductDTO, error)
}

type supplierService struct {
	suppliers supplierRepository
	products  productsBySupplierRepository
	logg      *logger.Logger
}

// NewSupplierService builds the supplier service.
func NewSupplierService(suppliers supplierRepository, products productsBySupplierRepository, logg *logger.Logger) (SupplierService, error) {
	if suppliers == nil {
		return nil, fmt.Errorf("supplier repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &supplierService{suppliers: suppliers, products: products, logg: logg}, nil
}

func (s *supplierService) Create(ctx context.Context, input CreateSupplierInput) (*SupplierDTO, error) {
	email := strings.ToLower(strings.TrimSpace(input.ContactEmail))

	exists, err := s.suppliers.ExistsByEmail(ctx, email, primitive.NilObjectID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check contact email")
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeDuplicateKey, "a supplier with this contact email already exists")
	}

	supplier := &Supplier{
		Name:             input.Name,
		ContactEmail:     email,
		Phone:            input.Phone,
		Address:          input.Address,
		ProductsSupplied: []primitive.ObjectID{},
		CreatedAt:        time.Now().UTC(),
	}

	id, err := s.suppliers.Insert(ctx, supplier)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert supplier")
	}
	supplier.ID = id
	return supplierToDTO(supplier), nil
}

func (s *supplierService) GetByID(ctx context.Context, id string) (*SupplierDTO, error) {
	supplier, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return supplierToDTO(supplier), nil
}

func (s *supplierService) List(ctx context.Context) ([]SupplierDTO, error) {
	suppliers, err := s.suppliers.FindAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list suppliers")
	}
	dtos := make([]SupplierDTO, 0, len(suppliers))
	for i := range suppliers {
		dtos = append(dtos, *supplierToDTO(&suppliers[i]))
	}
	return dtos, nil
}

func (s *supplierService) Update(ctx context.Context, id string, input CreateSupplierInput) (*SupplierDTO, error) {
	existing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(input.ContactEmail))
	if email != existing.ContactEmail {
		exists, err := s.suppliers.ExistsByEmail(ctx, email, existing.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check contact email")
		}
		if exists {
			return nil, pkgerrors.New(pkgerrors.CodeDuplicateKey, "a supplier with this contact email already exists")
		}
	}

	// Full replace; the back-reference list and creation time survive.
	replacement := &Supplier{
		ID:               existing.ID,
		Name:             input.Name,
		ContactEmail:     email,
		Phone:            input.Phone,
		Address:          input.Address,
		ProductsSupplied: existing.ProductsSupplied,
		CreatedAt:        existing.CreatedAt,
	}

	matched, err := s.suppliers.Replace(ctx, existing.ID, replacement)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace supplier")
	}
	if matched == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
	}
	return supplierToDTO(replacement), nil
}

func (s *supplierService) Delete(ctx context.Context, id string) error {
	existing, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if len(existing.ProductsSupplied) > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "supplier still has supplied products")
	}

	deleted, err := s.suppliers.Delete(ctx, existing.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete supplier")
	}
	if deleted == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
	}
	return nil
}

func (s *supplierService) ListProducts(ctx context.Context, id string) ([]ProductDTO, error) {
	existing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	products, err := s.products.FindBySupplier(ctx, existing.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list supplier products")
	}
	return productsToDTOs(products), nil
}

func (s *supplierService) load(ctx context.Context, id string) (*Supplier, error) {
	oid, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	supplier, err := s.suppliers.FindByID(ctx, oid)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
	}
	return supplier, nil
}
