package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"property-catalog/internal/logger"
	"property-catalog/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore persists Property aggregates through GORM (MySQL, SQLite).
type GormStore struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGormStore(gdb *GormDB, log *logger.Logger) *GormStore {
	return &GormStore{db: gdb.DB(), log: log.With("store", "gorm")}
}

// load runs the joined read for f on db, which may be a transaction.
func (s *GormStore) load(ctx context.Context, db *gorm.DB, f *Filter) ([]models.Property, error) {
	query, args := selectAggregates(f)
	rows, err := db.WithContext(ctx).Raw(query, args...).Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}
	return mapAggregateRows(rows)
}

func (s *GormStore) exists(ctx context.Context, db *gorm.DB, id int64) (bool, error) {
	query, args := countLive(NewFilter(QuestionDialect).WithID(id))
	var count int64
	if err := db.WithContext(ctx).Raw(query, args...).Row().Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check property %d: %w", id, err)
	}
	return count > 0, nil
}

// GetAll returns every live property, newest first.
func (s *GormStore) GetAll(ctx context.Context) ([]models.Property, error) {
	return s.load(ctx, s.db, NewFilter(QuestionDialect))
}

// GetByID returns the live property or nil.
func (s *GormStore) GetByID(ctx context.Context, id int64) (*models.Property, error) {
	props, err := s.load(ctx, s.db, NewFilter(QuestionDialect).WithID(id))
	if err != nil {
		return nil, err
	}
	if len(props) == 0 {
		return nil, nil
	}
	return &props[0], nil
}

func (s *GormStore) Search(ctx context.Context, criteria models.SearchCriteria) ([]models.Property, error) {
	return s.load(ctx, s.db, NewFilter(QuestionDialect).WithCriteria(criteria))
}

func (s *GormStore) Exists(ctx context.Context, id int64) (bool, error) {
	return s.exists(ctx, s.db, id)
}

// Create inserts the property and its images in one transaction.
func (s *GormStore) Create(ctx context.Context, p *models.Property) (*models.Property, error) {
	now := storeNow()

	created := *p
	created.ID = 0
	created.CreatedAt = now
	created.UpdatedAt = now
	created.IsDeleted = false
	images := cloneImages(p.Images)
	created.Images = nil

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&created).Error; err != nil {
			return fmt.Errorf("failed to insert property: %w", err)
		}
		return insertImages(tx, created.ID, images, now)
	})
	if err != nil {
		s.log.Error("create failed", "title", p.Title, "error", err)
		return nil, err
	}

	created.Images = images
	s.log.Debug("property created", "id", created.ID, "images", len(images))
	return &created, nil
}

// Update replaces the business fields and the full image set of a live
// property, then returns the reloaded aggregate.
func (s *GormStore) Update(ctx context.Context, p *models.Property) (*models.Property, error) {
	now := storeNow()

	var updated *models.Property
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		live, err := s.exists(ctx, tx, p.ID)
		if err != nil {
			return err
		}
		if !live {
			return ErrNotFound
		}

		result := tx.Model(&models.Property{}).
			Where("id = ? AND is_deleted = ?", p.ID, false).
			Updates(map[string]interface{}{
				"title":       p.Title,
				"description": p.Description,
				"address":     p.Address,
				"city":        p.City,
				"district":    p.District,
				"price":       p.Price,
				"area":        p.Area,
				"bedrooms":    p.Bedrooms,
				"bathrooms":   p.Bathrooms,
				"type_id":     int64(p.Type),
				"status_id":   int64(p.Status),
				"updated_at":  now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update property %d: %w", p.ID, result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}

		if err := tx.Where("property_id = ?", p.ID).Delete(&models.PropertyImage{}).Error; err != nil {
			return fmt.Errorf("failed to delete images of property %d: %w", p.ID, err)
		}
		if err := insertImages(tx, p.ID, cloneImages(p.Images), now); err != nil {
			return err
		}

		props, err := s.load(ctx, tx, NewFilter(QuestionDialect).WithID(p.ID))
		if err != nil {
			return err
		}
		if len(props) == 0 {
			return ErrNotFound
		}
		updated = &props[0]
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("property updated", "id", p.ID, "images", len(updated.Images))
	return updated, nil
}

// Delete soft-deletes a live property. Images are left in place.
func (s *GormStore) Delete(ctx context.Context, id int64) (bool, error) {
	result := s.db.WithContext(ctx).Model(&models.Property{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"updated_at": storeNow(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete property %d: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// AddImage appends one image to a live property and refreshes the owner's
// updated_at in the same transaction. ErrNotFound when the owner is not live.
func (s *GormStore) AddImage(ctx context.Context, propertyID int64, img *models.PropertyImage) (*models.PropertyImage, error) {
	now := storeNow()
	images := []models.PropertyImage{*img}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := touchProperty(tx, propertyID, now); err != nil {
			return err
		}
		return insertImages(tx, propertyID, images, now)
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("image added", "property_id", propertyID, "image_id", images[0].ID)
	return &images[0], nil
}

// RemoveImage deletes one image of a live property. It reports false when the
// property is not live or does not own the image.
func (s *GormStore) RemoveImage(ctx context.Context, propertyID, imageID int64) (bool, error) {
	removed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		live, err := s.exists(ctx, tx, propertyID)
		if err != nil || !live {
			return err
		}

		result := tx.Where("id = ? AND property_id = ?", imageID, propertyID).Delete(&models.PropertyImage{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete image %d of property %d: %w", imageID, propertyID, result.Error)
		}
		if result.RowsAffected == 0 {
			return nil
		}

		if err := touchProperty(tx, propertyID, storeNow()); err != nil {
			return err
		}
		removed = true
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return removed, nil
}

// Cities lists the distinct cities of live properties.
func (s *GormStore) Cities(ctx context.Context) ([]string, error) {
	query, args := distinctCities(NewFilter(QuestionDialect))
	rows, err := s.db.WithContext(ctx).Raw(query, args...).Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to query cities: %w", err)
	}
	return mapStrings(rows)
}

// touchProperty sets updated_at on a live property, ErrNotFound otherwise.
func touchProperty(tx *gorm.DB, propertyID int64, now time.Time) error {
	result := tx.Model(&models.Property{}).
		Where("id = ? AND is_deleted = ?", propertyID, false).
		Update("updated_at", now)
	if result.Error != nil {
		return fmt.Errorf("failed to touch property %d: %w", propertyID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// insertImages stamps and inserts images for propertyID; ids are written back into images.
func insertImages(tx *gorm.DB, propertyID int64, images []models.PropertyImage, now time.Time) error {
	if len(images) == 0 {
		return nil
	}
	for i := range images {
		images[i].ID = 0
		images[i].PropertyID = propertyID
		images[i].CreatedAt = now
	}
	if err := tx.Create(&images).Error; err != nil {
		return fmt.Errorf("failed to insert images of property %d: %w", propertyID, err)
	}
	return nil
}

func cloneImages(images []models.PropertyImage) []models.PropertyImage {
	out := make([]models.PropertyImage, len(images))
	copy(out, images)
	return out
}
