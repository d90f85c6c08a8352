// internal/services/media_service.go
package services

import (
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gocommerce/shop-backend/internal/apperrors"
	"github.com/gocommerce/shop-backend/internal/database"
	"github.com/gocommerce/shop-backend/internal/models"
)

// MediaService manages product images and keeps the default-media invariant:
// every product with at least one media row has exactly one default.
type MediaService struct {
	db      *gorm.DB
	storage *StorageService
}

func NewMediaService(db *gorm.DB, storage *StorageService) *MediaService {
	return &MediaService{db: db, storage: storage}
}

// AddMedia uploads a batch of image files and attaches them to the product.
// The first image of the first-ever batch becomes the default. Files are
// uploaded before the database rows are written; if the insert fails the
// uploaded files are purged best-effort.
func (s *MediaService) AddMedia(productID, uploaderID uuid.UUID, files []*multipart.FileHeader) ([]models.Media, error) {
	if len(files) == 0 {
		return nil, apperrors.Validation("no files uploaded", nil)
	}
	if len(files) > maxUploadBatchLen {
		return nil, apperrors.Validation(
			fmt.Sprintf("at most %d files can be uploaded at once", maxUploadBatchLen), nil)
	}

	var exists int64
	if err := s.db.Model(&models.Product{}).Where("id = ?", productID).Count(&exists).Error; err != nil {
		return nil, apperrors.Internal("database error", err)
	}
	if exists == 0 {
		return nil, apperrors.NotFound("product not found")
	}

	uploads := make([]*UploadResult, 0, len(files))
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			s.purgeUploads(uploads)
			return nil, apperrors.Internal("failed to open uploaded file", err)
		}

		result, uploadErr := s.storage.UploadImage(file, header)
		file.Close()
		if uploadErr != nil {
			s.purgeUploads(uploads)
			return nil, apperrors.Validation(uploadErr.Error(), nil)
		}
		uploads = append(uploads, result)
	}

	var created []models.Media
	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		// Lock the product row so concurrent first uploads cannot both see
		// zero existing media and both claim the default.
		var product models.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&product, "id = ?", productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("product not found")
			}
			return err
		}

		var existing int64
		if err := tx.Model(&models.Media{}).
			Where("product_id = ?", productID).
			Count(&existing).Error; err != nil {
			return err
		}

		for i, upload := range uploads {
			media := models.Media{
				ProductID:    productID,
				UploadedByID: uploaderID,
				URL:          upload.URL,
				StorageKey:   upload.Key,
				IsDefault:    existing == 0 && i == 0,
			}
			if err := tx.Create(&media).Error; err != nil {
				return err
			}
			created = append(created, media)
		}
		return nil
	})
	if err != nil {
		go s.purgeUploads(uploads)
		if apperrors.Is(err, apperrors.KindNotFound) {
			return nil, err
		}
		return nil, apperrors.Internal("failed to save media", err)
	}

	return created, nil
}

// DeleteMedia removes one image. Deleting the default promotes the oldest
// surviving image in the same transaction, so the invariant never breaks
// even if the process dies between statements. The stored file is purged
// after commit, best-effort.
func (s *MediaService) DeleteMedia(productID, mediaID uuid.UUID) error {
	var storageKey string

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		var media models.Media
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND product_id = ?", mediaID, productID).
			First(&media).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("media not found")
			}
			return err
		}
		storageKey = media.StorageKey

		if err := tx.Delete(&media).Error; err != nil {
			return err
		}

		if media.IsDefault {
			var survivor models.Media
			err := tx.Where("product_id = ?", productID).
				Order("created_at ASC, id ASC").
				First(&survivor).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil // last image removed, nothing to promote
			}
			if err != nil {
				return err
			}
			if err := tx.Model(&survivor).Update("is_default", true).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			return err
		}
		return apperrors.Internal("failed to delete media", err)
	}

	go func() {
		if err := s.storage.DeleteImage(storageKey); err != nil {
			logrus.WithError(err).WithField("storage_key", storageKey).
				Warn("Failed to purge stored media file")
		}
	}()

	return nil
}

// SetDefaultMedia reassigns the default flag. Clearing the old default and
// setting the new one happen in one transaction.
func (s *MediaService) SetDefaultMedia(productID, mediaID uuid.UUID) (*models.Media, error) {
	var media models.Media

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND product_id = ?", mediaID, productID).
			First(&media).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("media not found")
			}
			return err
		}

		if err := tx.Model(&models.Media{}).
			Where("product_id = ? AND is_default = ?", productID, true).
			Update("is_default", false).Error; err != nil {
			return err
		}
		if err := tx.Model(&media).Update("is_default", true).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			return nil, err
		}
		return nil, apperrors.Internal("failed to set default media", err)
	}

	media.IsDefault = true
	return &media, nil
}

func (s *MediaService) ListMedia(productID uuid.UUID) ([]models.Media, error) {
	var media []models.Media
	if err := s.db.Where("product_id = ?", productID).
		Order("created_at ASC, id ASC").
		Find(&media).Error; err != nil {
		return nil, apperrors.Internal("failed to list media", err)
	}
	return media, nil
}

func (s *MediaService) purgeUploads(uploads []*UploadResult) {
	for _, upload := range uploads {
		if err := s.storage.DeleteImage(upload.Key); err != nil {
			logrus.WithError(err).WithField("storage_key", upload.Key).
				Warn("Failed to purge uploaded file")
		}
	}
}
