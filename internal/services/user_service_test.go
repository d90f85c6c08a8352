// internal/services/user_service_test.go
package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/gocommerce/shop-backend/internal/apperrors"
	"github.com/gocommerce/shop-backend/internal/models"
	"github.com/gocommerce/shop-backend/internal/utils"
)

type UserServiceSuite struct {
	ServiceSuite
	users *UserService
}

func (s *UserServiceSuite) SetupTest() {
	s.ServiceSuite.SetupTest()
	s.users = NewUserService(s.db)
}

func TestUserServiceSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed suite in short mode")
	}
	suite.Run(t, new(UserServiceSuite))
}

func (s *UserServiceSuite) TestListUsersPaginatesAndSearches() {
	for i := 0; i < 5; i++ {
		s.createUser(fmt.Sprintf("user%d@example.com", i), models.RoleUser, true)
	}
	s.createUser("findme@special.com", models.RoleUser, true)

	result, err := s.users.ListUsers(utils.PaginationParams{Page: 1, Limit: 4, Sort: "created_at", Order: "asc"})
	s.Require().NoError(err)
	s.Len(result.Users, 4)
	s.Equal(int64(6), result.Paging.Total)
	s.Equal(2, result.Paging.Pages)

	result, err = s.users.ListUsers(utils.PaginationParams{Page: 1, Limit: 20, Search: "special"})
	s.Require().NoError(err)
	s.Require().Len(result.Users, 1)
	s.Equal("findme@special.com", result.Users[0].Email)
}

func (s *UserServiceSuite) TestUpdateUserRoleRequiresAdmin() {
	user := s.createUser("alice@example.com", models.RoleUser, true)
	admin := models.RoleAdmin

	_, err := s.users.UpdateUser(user.ID, &UpdateUserRequest{Role: &admin}, false)
	s.Require().Error(err)
	s.Equal(apperrors.KindForbidden, apperrors.KindOf(err))

	updated, err := s.users.UpdateUser(user.ID, &UpdateUserRequest{Role: &admin}, true)
	s.Require().NoError(err)
	s.Equal(models.RoleAdmin, updated.Role)
}

func (s *UserServiceSuite) TestUpdateUserRejectsTakenEmail() {
	s.createUser("taken@example.com", models.RoleUser, true)
	user := s.createUser("alice@example.com", models.RoleUser, true)

	taken := "taken@example.com"
	_, err := s.users.UpdateUser(user.ID, &UpdateUserRequest{Email: &taken}, false)
	s.Require().Error(err)
	s.Equal(apperrors.KindConflict, apperrors.KindOf(err))
}

func (s *UserServiceSuite) TestShippingAddressUpsert() {
	user := s.createUser("alice@example.com", models.RoleUser, true)

	first, err := s.users.SetShippingAddress(user.ID, &ShippingAddressRequest{
		Address: "1 Main Street", State: "CA", PostalCode: "90210", Country: "US",
	})
	s.Require().NoError(err)

	second, err := s.users.SetShippingAddress(user.ID, &ShippingAddressRequest{
		Address: "2 Side Street", State: "NY", PostalCode: "10001", Country: "US",
	})
	s.Require().NoError(err)
	s.Equal(first.ID, second.ID, "address is replaced in place, not duplicated")
	s.Equal("2 Side Street", second.Address)

	var count int64
	s.Require().NoError(s.db.Model(&models.ShippingAddress{}).
		Where("user_id = ?", user.ID).Count(&count).Error)
	s.Equal(int64(1), count)
}

func (s *UserServiceSuite) TestDeleteShippingAddress() {
	user := s.createUser("alice@example.com", models.RoleUser, true)

	err := s.users.DeleteShippingAddress(user.ID)
	s.Require().Error(err)
	s.Equal(apperrors.KindNotFound, apperrors.KindOf(err))

	_, err = s.users.SetShippingAddress(user.ID, &ShippingAddressRequest{
		Address: "1 Main Street", State: "CA", PostalCode: "90210", Country: "US",
	})
	s.Require().NoError(err)

	s.Require().NoError(s.users.DeleteShippingAddress(user.ID))

	fetched, err := s.users.GetUser(user.ID)
	s.Require().NoError(err)
	s.Nil(fetched.ShippingAddress)
}

func (s *UserServiceSuite) TestDeleteUser() {
	user := s.createUser("alice@example.com", models.RoleUser, true)

	s.Require().NoError(s.users.DeleteUser(user.ID))

	_, err := s.users.GetUser(user.ID)
	s.Require().Error(err)
	s.Equal(apperrors.KindNotFound, apperrors.KindOf(err))
}
