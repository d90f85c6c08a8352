// internal/services/product_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/gocommerce/shop-backend/internal/apperrors"
	"github.com/gocommerce/shop-backend/internal/models"
	"github.com/gocommerce/shop-backend/internal/utils"
)

type ProductServiceSuite struct {
	ServiceSuite
	products *ProductService
}

func (s *ProductServiceSuite) SetupTest() {
	s.ServiceSuite.SetupTest()
	storage, err := NewStorageService(s.cfg)
	s.Require().NoError(err)
	s.products = NewProductService(s.db, storage)
}

func TestProductServiceSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed suite in short mode")
	}
	suite.Run(t, new(ProductServiceSuite))
}

func defaultParams() utils.PaginationParams {
	return utils.PaginationParams{Page: 1, Limit: 20, Sort: "created_at", Order: "desc"}
}

func (s *ProductServiceSuite) TestCreateProductResolvesCategory() {
	admin := s.createUser("admin@example.com", models.RoleAdmin, true)

	product, err := s.products.CreateProduct(admin.ID, &CreateProductRequest{
		Name:        "Walnut Desk",
		Description: "A desk",
		Price:       499.99,
		IsPublished: true,
		Category:    "Furniture",
		Tags:        []string{"wood", "office"},
	})
	s.Require().NoError(err)
	s.Require().NotNil(product.Category)
	s.Equal("Furniture", product.Category.Name)
	s.ElementsMatch([]string{"wood", "office"}, []string(product.Tags))

	// Same category name reuses the row instead of duplicating it.
	second, err := s.products.CreateProduct(admin.ID, &CreateProductRequest{
		Name:        "Oak Chair",
		Description: "A chair",
		Price:       199.99,
		Category:    "Furniture",
	})
	s.Require().NoError(err)
	s.Equal(product.Category.ID, second.Category.ID)

	var categories int64
	s.Require().NoError(s.db.Model(&models.Category{}).Count(&categories).Error)
	s.Equal(int64(1), categories)
}

func (s *ProductServiceSuite) TestCreateProductValidation() {
	admin := s.createUser("admin@example.com", models.RoleAdmin, true)

	_, err := s.products.CreateProduct(admin.ID, &CreateProductRequest{
		Name:        "X",
		Description: "too short name, negative price",
		Price:       -5,
	})
	s.Require().Error(err)
	s.Equal(apperrors.KindValidation, apperrors.KindOf(err))
}

func (s *ProductServiceSuite) TestPublicListingHidesDrafts() {
	admin := s.createUser("admin@example.com", models.RoleAdmin, true)
	s.createProduct(admin.ID, "Published Lamp", 19.99, true)
	s.createProduct(admin.ID, "Draft Lamp", 29.99, false)

	result, err := s.products.ListProducts(ProductFilters{}, defaultParams())
	s.Require().NoError(err)
	s.Require().Len(result.Products, 1)
	s.Equal("Published Lamp", result.Products[0].Name)
	s.Equal(int64(1), result.Paging.Total)

	adminResult, err := s.products.ListProductsForAdmin(ProductFilters{}, defaultParams())
	s.Require().NoError(err)
	s.Len(adminResult.Products, 2)
}

func (s *ProductServiceSuite) TestListingFilters() {
	admin := s.createUser("admin@example.com", models.RoleAdmin, true)

	cheap, err := s.products.CreateProduct(admin.ID, &CreateProductRequest{
		Name: "Cheap Lamp", Description: "d", Price: 10, IsPublished: true,
		Category: "Lighting", Tags: []string{"sale"},
	})
	s.Require().NoError(err)
	_, err = s.products.CreateProduct(admin.ID, &CreateProductRequest{
		Name: "Fancy Chair", Description: "d", Price: 300, IsPublished: true,
		Category: "Furniture",
	})
	s.Require().NoError(err)

	byCategory, err := s.products.ListProducts(ProductFilters{Category: "Lighting"}, defaultParams())
	s.Require().NoError(err)
	s.Require().Len(byCategory.Products, 1)
	s.Equal(cheap.ID, byCategory.Products[0].ID)

	byTag, err := s.products.ListProducts(ProductFilters{Tag: "sale"}, defaultParams())
	s.Require().NoError(err)
	s.Require().Len(byTag.Products, 1)
	s.Equal(cheap.ID, byTag.Products[0].ID)

	byPrice, err := s.products.ListProducts(ProductFilters{MinPrice: 100}, defaultParams())
	s.Require().NoError(err)
	s.Require().Len(byPrice.Products, 1)
	s.Equal("Fancy Chair", byPrice.Products[0].Name)

	params := defaultParams()
	params.Search = "fancy"
	bySearch, err := s.products.ListProducts(ProductFilters{}, params)
	s.Require().NoError(err)
	s.Require().Len(bySearch.Products, 1)
	s.Equal("Fancy Chair", bySearch.Products[0].Name)
}

func (s *ProductServiceSuite) TestUpdateProduct() {
	admin := s.createUser("admin@example.com", models.RoleAdmin, true)
	product := s.createProduct(admin.ID, "Lamp", 19.99, false)

	newPrice := 24.99
	published := true
	updated, err := s.products.UpdateProduct(product.ID, &UpdateProductRequest{
		Price:       &newPrice,
		IsPublished: &published,
		Tags:        []string{"new"},
	})
	s.Require().NoError(err)
	s.Equal(24.99, updated.Price)
	s.True(updated.IsPublished)
	s.Equal([]string{"new"}, []string(updated.Tags))
	s.Equal("Lamp", updated.Name, "untouched fields keep their values")
}

func (s *ProductServiceSuite) TestDeleteProductRemovesMedia() {
	admin := s.createUser("admin@example.com", models.RoleAdmin, true)
	product := s.createProduct(admin.ID, "Lamp", 19.99, true)
	s.createMedia(product.ID, admin.ID, "products/a.png", true)
	s.createMedia(product.ID, admin.ID, "products/b.png", false)

	s.Require().NoError(s.products.DeleteProduct(product.ID))

	_, err := s.products.GetProduct(product.ID)
	s.Require().Error(err)
	s.Equal(apperrors.KindNotFound, apperrors.KindOf(err))

	var media int64
	s.Require().NoError(s.db.Model(&models.Media{}).
		Where("product_id = ?", product.ID).Count(&media).Error)
	s.Zero(media)

	err = s.products.DeleteProduct(product.ID)
	s.Require().Error(err)
	s.Equal(apperrors.KindNotFound, apperrors.KindOf(err))
}
