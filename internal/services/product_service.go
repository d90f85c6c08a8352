// internal/services/product_service.go
package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/gocommerce/shop-backend/internal/apperrors"
	"github.com/gocommerce/shop-backend/internal/database"
	"github.com/gocommerce/shop-backend/internal/models"
	"github.com/gocommerce/shop-backend/internal/utils"
)

type ProductService struct {
	db      *gorm.DB
	storage *StorageService
}

type CreateProductRequest struct {
	Name        string   `json:"name" validate:"required,min=2,max=255"`
	Description string   `json:"description" validate:"required"`
	Price       float64  `json:"price" validate:"required,gt=0"`
	IsPublished bool     `json:"is_published"`
	Category    string   `json:"category" validate:"omitempty,max=100"`
	Tags        []string `json:"tags" validate:"omitempty,max=10,dive,max=50"`
}

type UpdateProductRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	IsPublished *bool    `json:"is_published,omitempty"`
	Category    *string  `json:"category,omitempty" validate:"omitempty,max=100"`
	Tags        []string `json:"tags,omitempty" validate:"omitempty,max=10,dive,max=50"`
}

// ProductFilters narrows catalog listings. Zero values mean "no filter".
type ProductFilters struct {
	Category    string
	Tag         string
	MinPrice    float64
	MaxPrice    float64
	IsPublished *bool
}

type ProductListResult struct {
	Products []models.Product `json:"products"`
	Paging   utils.PagingInfo `json:"paging"`
}

func NewProductService(db *gorm.DB, storage *StorageService) *ProductService {
	return &ProductService{db: db, storage: storage}
}

// ListProducts serves the public catalog: published products only,
// regardless of what the filters say.
func (s *ProductService) ListProducts(filters ProductFilters, params utils.PaginationParams) (*ProductListResult, error) {
	published := true
	filters.IsPublished = &published
	return s.list(filters, params)
}

// ListProductsForAdmin serves the back office and honors the IsPublished
// filter as given, including "no filter".
func (s *ProductService) ListProductsForAdmin(filters ProductFilters, params utils.PaginationParams) (*ProductListResult, error) {
	return s.list(filters, params)
}

func (s *ProductService) list(filters ProductFilters, params utils.PaginationParams) (*ProductListResult, error) {
	query := s.db.Model(&models.Product{})

	if filters.IsPublished != nil {
		query = query.Where("is_published = ?", *filters.IsPublished)
	}
	if filters.Category != "" {
		query = query.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.name = ?", filters.Category)
	}
	if filters.Tag != "" {
		query = query.Where("? = ANY(tags)", filters.Tag)
	}
	if filters.MinPrice > 0 {
		query = query.Where("price >= ?", filters.MinPrice)
	}
	if filters.MaxPrice > 0 {
		query = query.Where("price <= ?", filters.MaxPrice)
	}
	if params.Search != "" {
		search := "%" + params.Search + "%"
		query = query.Where("products.name ILIKE ? OR products.description ILIKE ?", search, search)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Internal("failed to count products", err)
	}

	var products []models.Product
	query = utils.ApplySort(query, params, []string{"created_at", "name", "price"})
	if err := utils.ApplyPagination(query, params).
		Preload("Category").
		Preload("Media").
		Find(&products).Error; err != nil {
		return nil, apperrors.Internal("failed to list products", err)
	}

	return &ProductListResult{
		Products: products,
		Paging:   utils.NewPagingInfo(total, params),
	}, nil
}

func (s *ProductService) GetProduct(productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.Preload("Category").Preload("Media").
		First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("product not found")
		}
		return nil, apperrors.Internal("database error", err)
	}
	return &product, nil
}

func (s *ProductService) CreateProduct(userID uuid.UUID, req *CreateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("validation failed", utils.GetValidationErrors(err))
	}

	product := &models.Product{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		IsPublished: req.IsPublished,
		Tags:        pq.StringArray(req.Tags),
	}

	if req.Category != "" {
		category, err := s.resolveCategory(s.db, req.Category)
		if err != nil {
			return nil, err
		}
		product.CategoryID = &category.ID
	}

	if err := s.db.Create(product).Error; err != nil {
		return nil, apperrors.Internal("failed to create product", err)
	}

	return s.GetProduct(product.ID)
}

func (s *ProductService) UpdateProduct(productID uuid.UUID, req *UpdateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("validation failed", utils.GetValidationErrors(err))
	}

	var product models.Product
	if err := s.db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("product not found")
		}
		return nil, apperrors.Internal("database error", err)
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.IsPublished != nil {
		updates["is_published"] = *req.IsPublished
	}
	if req.Tags != nil {
		updates["tags"] = pq.StringArray(req.Tags)
	}
	if req.Category != nil {
		if *req.Category == "" {
			updates["category_id"] = nil
		} else {
			category, err := s.resolveCategory(s.db, *req.Category)
			if err != nil {
				return nil, err
			}
			updates["category_id"] = category.ID
		}
	}

	if len(updates) > 0 {
		if err := s.db.Model(&product).Updates(updates).Error; err != nil {
			return nil, apperrors.Internal("failed to update product", err)
		}
	}

	return s.GetProduct(productID)
}

// DeleteProduct removes the product and its media rows in one transaction,
// then purges the stored files best-effort after commit.
func (s *ProductService) DeleteProduct(productID uuid.UUID) error {
	var media []models.Media
	if err := s.db.Where("product_id = ?", productID).Find(&media).Error; err != nil {
		return apperrors.Internal("failed to load product media", err)
	}

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&models.Media{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Product{}, "id = ?", productID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.NotFound("product not found")
		}
		return nil
	})
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			return err
		}
		return apperrors.Internal("failed to delete product", err)
	}

	go s.purgeStoredFiles(media)

	return nil
}

func (s *ProductService) resolveCategory(db *gorm.DB, name string) (*models.Category, error) {
	var category models.Category
	err := db.Where("name = ?", name).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		category = models.Category{Name: name}
		err = db.Create(&category).Error
	}
	if err != nil {
		return nil, apperrors.Internal("failed to resolve category", err)
	}
	return &category, nil
}

func (s *ProductService) purgeStoredFiles(media []models.Media) {
	for _, m := range media {
		if err := s.storage.DeleteImage(m.StorageKey); err != nil {
			logrus.WithError(err).WithField("storage_key", m.StorageKey).
				Warn("Failed to purge stored media file")
		}
	}
}
