// internal/services/user_service.go
package services

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gocommerce/shop-backend/internal/apperrors"
	"github.com/gocommerce/shop-backend/internal/models"
	"github.com/gocommerce/shop-backend/internal/utils"
)

type UserService struct {
	db *gorm.DB
}

type UpdateUserRequest struct {
	Name  *string          `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Email *string          `json:"email,omitempty" validate:"omitempty,email"`
	Role  *models.UserRole `json:"role,omitempty"`
}

type ShippingAddressRequest struct {
	Address    string `json:"address" validate:"required,max=255"`
	State      string `json:"state" validate:"required,max=100"`
	PostalCode string `json:"postal_code" validate:"required,max=20"`
	Country    string `json:"country" validate:"required,max=100"`
}

type UserListResult struct {
	Users  []models.User    `json:"users"`
	Paging utils.PagingInfo `json:"paging"`
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) ListUsers(params utils.PaginationParams) (*UserListResult, error) {
	query := s.db.Model(&models.User{})

	if params.Search != "" {
		search := "%" + params.Search + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ?", search, search)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Internal("failed to count users", err)
	}

	var users []models.User
	query = utils.ApplySort(query, params, []string{"created_at", "name", "email"})
	if err := utils.ApplyPagination(query, params).Find(&users).Error; err != nil {
		return nil, apperrors.Internal("failed to list users", err)
	}

	return &UserListResult{
		Users:  users,
		Paging: utils.NewPagingInfo(total, params),
	}, nil
}

func (s *UserService) GetUser(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("ShippingAddress").First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, apperrors.Internal("database error", err)
	}
	return &user, nil
}

// UpdateUser applies a partial update. Role changes are accepted only when
// the caller is an admin; non-admins can touch their own name and email.
func (s *UserService) UpdateUser(userID uuid.UUID, req *UpdateUserRequest, callerIsAdmin bool) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("validation failed", utils.GetValidationErrors(err))
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, apperrors.Internal("database error", err)
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Email != nil && *req.Email != user.Email {
		var existing models.User
		if err := s.db.Where("email = ? AND id <> ?", *req.Email, userID).First(&existing).Error; err == nil {
			return nil, apperrors.Conflict("user with this email already exists")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Internal("database error", err)
		}
		updates["email"] = *req.Email
	}
	if req.Role != nil {
		if !callerIsAdmin {
			return nil, apperrors.Forbidden("only admins can change roles")
		}
		if *req.Role != models.RoleUser && *req.Role != models.RoleAdmin {
			return nil, apperrors.Validation("invalid role", nil)
		}
		updates["role"] = *req.Role
	}

	if len(updates) == 0 {
		return &user, nil
	}

	if err := s.db.Model(&user).Updates(updates).Error; err != nil {
		return nil, apperrors.Internal("failed to update user", err)
	}

	return s.GetUser(userID)
}

func (s *UserService) DeleteUser(userID uuid.UUID) error {
	result := s.db.Delete(&models.User{}, "id = ?", userID)
	if result.Error != nil {
		return apperrors.Internal("failed to delete user", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("user not found")
	}
	return nil
}

// SetShippingAddress creates or replaces the caller's single address.
func (s *UserService) SetShippingAddress(userID uuid.UUID, req *ShippingAddressRequest) (*models.ShippingAddress, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("validation failed", utils.GetValidationErrors(err))
	}

	var address models.ShippingAddress
	err := s.db.Where("user_id = ?", userID).First(&address).Error
	switch {
	case err == nil:
		address.Address = req.Address
		address.State = req.State
		address.PostalCode = req.PostalCode
		address.Country = req.Country
		if err := s.db.Save(&address).Error; err != nil {
			return nil, apperrors.Internal("failed to update shipping address", err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		address = models.ShippingAddress{
			UserID:     userID,
			Address:    req.Address,
			State:      req.State,
			PostalCode: req.PostalCode,
			Country:    req.Country,
		}
		if err := s.db.Create(&address).Error; err != nil {
			return nil, apperrors.Internal("failed to create shipping address", err)
		}
	default:
		return nil, apperrors.Internal("database error", err)
	}

	return &address, nil
}

func (s *UserService) DeleteShippingAddress(userID uuid.UUID) error {
	result := s.db.Where("user_id = ?", userID).Delete(&models.ShippingAddress{})
	if result.Error != nil {
		return apperrors.Internal("failed to delete shipping address", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("shipping address not found")
	}
	return nil
}
