// internal/services/suite_test.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gocommerce/shop-backend/internal/config"
	"github.com/gocommerce/shop-backend/internal/database"
	"github.com/gocommerce/shop-backend/internal/models"
)

// ServiceSuite boots one throwaway Postgres container for the whole test
// binary and hands each test a migrated database.
type ServiceSuite struct {
	suite.Suite
	ctx       context.Context
	container *tcpostgres.PostgresContainer
	db        *gorm.DB
	cfg       *config.Config
}

func (s *ServiceSuite) SetupSuite() {
	s.ctx = context.Background()

	var err error
	s.container, err = tcpostgres.Run(
		s.ctx,
		"postgres:17-alpine",
		tcpostgres.WithDatabase("shop_test"),
		tcpostgres.WithUsername("test_user"),
		tcpostgres.WithPassword("test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)

	connStr, err := s.container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	s.db, err = gorm.Open(gormpostgres.Open(connStr), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	s.Require().NoError(err)

	s.Require().NoError(database.RunMigrations(s.db))

	s.cfg = &config.Config{
		Environment: "test",
		JWT: config.JWTConfig{
			SecretKey:      "test-secret",
			AccessTokenTTL: 1,
			CookieName:     "token",
		},
		Payment: config.PaymentConfig{
			Currency:    "usd",
			ShippingFee: 50.0,
		},
		Frontend: config.FrontendConfig{BaseURL: "http://localhost:5000"},
		Backend:  config.BackendConfig{BaseURL: "http://localhost:7000"},
	}
}

func (s *ServiceSuite) TearDownSuite() {
	if s.container != nil {
		s.Require().NoError(s.container.Terminate(s.ctx))
	}
}

func (s *ServiceSuite) SetupTest() {
	for _, table := range []string{"line_items", "orders", "media", "products", "categories", "shipping_addresses", "users"} {
		s.Require().NoError(s.db.Exec(fmt.Sprintf("TRUNCATE %s CASCADE", table)).Error)
	}
}

func (s *ServiceSuite) createUser(email string, role models.UserRole, verified bool) *models.User {
	user := &models.User{
		Name:       "Test User",
		Email:      email,
		Role:       role,
		IsVerified: verified,
	}
	s.Require().NoError(user.SetPassword("Password1"))
	s.Require().NoError(s.db.Create(user).Error)
	return user
}

func (s *ServiceSuite) createAddress(userID uuid.UUID) *models.ShippingAddress {
	address := &models.ShippingAddress{
		UserID:     userID,
		Address:    "1 Main Street",
		State:      "CA",
		PostalCode: "90210",
		Country:    "US",
	}
	s.Require().NoError(s.db.Create(address).Error)
	return address
}

func (s *ServiceSuite) createProduct(ownerID uuid.UUID, name string, price float64, published bool) *models.Product {
	product := &models.Product{
		UserID:      ownerID,
		Name:        name,
		Description: "A test product",
		Price:       price,
		IsPublished: published,
	}
	s.Require().NoError(s.db.Create(product).Error)
	return product
}

func (s *ServiceSuite) createMedia(productID, uploaderID uuid.UUID, key string, isDefault bool) *models.Media {
	media := &models.Media{
		ProductID:    productID,
		UploadedByID: uploaderID,
		URL:          "http://localhost:7000/uploads/" + key,
		StorageKey:   key,
		IsDefault:    isDefault,
	}
	s.Require().NoError(s.db.Create(media).Error)
	return media
}
