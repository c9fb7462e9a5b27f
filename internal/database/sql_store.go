package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"property-catalog/internal/logger"
	"property-catalog/internal/models"
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// SQLStore persists Property aggregates on PostgreSQL through database/sql and lib/pq.
type SQLStore struct {
	conn *sql.DB
	log  *logger.Logger
}

func NewSQLStore(db *DB, log *logger.Logger) *SQLStore {
	return &SQLStore{conn: db.Conn(), log: log.With("store", "postgres")}
}

func (s *SQLStore) load(ctx context.Context, q queryer, f *Filter) ([]models.Property, error) {
	query, args := selectAggregates(f)
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}
	return mapAggregateRows(rows)
}

func (s *SQLStore) exists(ctx context.Context, q queryer, id int64) (bool, error) {
	query, args := countLive(NewFilter(PostgresDialect).WithID(id))
	var count int64
	if err := q.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check property %d: %w", id, err)
	}
	return count > 0, nil
}

func (s *SQLStore) GetAll(ctx context.Context) ([]models.Property, error) {
	return s.load(ctx, s.conn, NewFilter(PostgresDialect))
}

func (s *SQLStore) GetByID(ctx context.Context, id int64) (*models.Property, error) {
	props, err := s.load(ctx, s.conn, NewFilter(PostgresDialect).WithID(id))
	if err != nil {
		return nil, err
	}
	if len(props) == 0 {
		return nil, nil
	}
	return &props[0], nil
}

func (s *SQLStore) Search(ctx context.Context, criteria models.SearchCriteria) ([]models.Property, error) {
	return s.load(ctx, s.conn, NewFilter(PostgresDialect).WithCriteria(criteria))
}

func (s *SQLStore) Exists(ctx context.Context, id int64) (bool, error) {
	return s.exists(ctx, s.conn, id)
}

const insertPropertySQL = `
	INSERT INTO properties (
		title, description, address, city, district,
		price, area, bedrooms, bathrooms, type_id, status_id,
		created_at, updated_at, is_deleted
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	RETURNING id`

const insertImageSQL = `
	INSERT INTO property_images (property_id, url, alt_text, sort_order, created_at)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id`

const updatePropertySQL = `
	UPDATE properties SET
		title = $1, description = $2, address = $3, city = $4, district = $5,
		price = $6, area = $7, bedrooms = $8, bathrooms = $9, type_id = $10, status_id = $11,
		updated_at = $12
	WHERE id = $13 AND is_deleted = FALSE`

const deleteImagesSQL = `DELETE FROM property_images WHERE property_id = $1`

const softDeleteSQL = `UPDATE properties SET is_deleted = TRUE, updated_at = $1 WHERE id = $2 AND is_deleted = FALSE`

const touchPropertySQL = `UPDATE properties SET updated_at = $1 WHERE id = $2 AND is_deleted = FALSE`

const deleteImageSQL = `DELETE FROM property_images WHERE id = $1 AND property_id = $2`

// Create inserts the property and its images in one transaction.
func (s *SQLStore) Create(ctx context.Context, p *models.Property) (*models.Property, error) {
	now := storeNow()

	created := *p
	created.CreatedAt = now
	created.UpdatedAt = now
	created.IsDeleted = false
	created.Images = cloneImages(p.Images)

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, insertPropertySQL,
		created.Title, created.Description, created.Address, created.City, created.District,
		created.Price, created.Area, created.Bedrooms, created.Bathrooms,
		int64(created.Type), int64(created.Status),
		created.CreatedAt, created.UpdatedAt, false,
	).Scan(&created.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert property: %w", err)
	}

	if err := s.insertImages(ctx, tx, created.ID, created.Images, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit property: %w", err)
	}

	s.log.Debug("property created", "id", created.ID, "images", len(created.Images))
	return &created, nil
}

// Update replaces the business fields and the full image set of a live
// property, then returns the reloaded aggregate.
func (s *SQLStore) Update(ctx context.Context, p *models.Property) (*models.Property, error) {
	now := storeNow()

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	live, err := s.exists(ctx, tx, p.ID)
	if err != nil {
		return nil, err
	}
	if !live {
		return nil, ErrNotFound
	}

	res, err := tx.ExecContext(ctx, updatePropertySQL,
		p.Title, p.Description, p.Address, p.City, p.District,
		p.Price, p.Area, p.Bedrooms, p.Bathrooms,
		int64(p.Type), int64(p.Status),
		now, p.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update property %d: %w", p.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to update property %d: %w", p.ID, err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, deleteImagesSQL, p.ID); err != nil {
		return nil, fmt.Errorf("failed to delete images of property %d: %w", p.ID, err)
	}
	if err := s.insertImages(ctx, tx, p.ID, cloneImages(p.Images), now); err != nil {
		return nil, err
	}

	props, err := s.load(ctx, tx, NewFilter(PostgresDialect).WithID(p.ID))
	if err != nil {
		return nil, err
	}
	if len(props) == 0 {
		return nil, ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit property %d: %w", p.ID, err)
	}

	s.log.Debug("property updated", "id", p.ID, "images", len(props[0].Images))
	return &props[0], nil
}

// Delete soft-deletes a live property. Images are left in place.
func (s *SQLStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.conn.ExecContext(ctx, softDeleteSQL, storeNow(), id)
	if err != nil {
		return false, fmt.Errorf("failed to delete property %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete property %d: %w", id, err)
	}
	return affected > 0, nil
}

// AddImage appends one image to a live property and refreshes the owner's
// updated_at in the same transaction. ErrNotFound when the owner is not live.
func (s *SQLStore) AddImage(ctx context.Context, propertyID int64, img *models.PropertyImage) (*models.PropertyImage, error) {
	now := storeNow()
	images := []models.PropertyImage{*img}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.touch(ctx, tx, propertyID, now); err != nil {
		return nil, err
	}
	if err := s.insertImages(ctx, tx, propertyID, images, now); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit image of property %d: %w", propertyID, err)
	}

	s.log.Debug("image added", "property_id", propertyID, "image_id", images[0].ID)
	return &images[0], nil
}

// RemoveImage deletes one image of a live property. It reports false when the
// property is not live or does not own the image.
func (s *SQLStore) RemoveImage(ctx context.Context, propertyID, imageID int64) (bool, error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	live, err := s.exists(ctx, tx, propertyID)
	if err != nil || !live {
		return false, err
	}

	res, err := tx.ExecContext(ctx, deleteImageSQL, imageID, propertyID)
	if err != nil {
		return false, fmt.Errorf("failed to delete image %d of property %d: %w", imageID, propertyID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete image %d of property %d: %w", imageID, propertyID, err)
	}
	if affected == 0 {
		return false, nil
	}

	if err := s.touch(ctx, tx, propertyID, storeNow()); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit image removal of property %d: %w", propertyID, err)
	}
	return true, nil
}

// Cities lists the distinct cities of live properties.
func (s *SQLStore) Cities(ctx context.Context) ([]string, error) {
	query, args := distinctCities(NewFilter(PostgresDialect))
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cities: %w", err)
	}
	return mapStrings(rows)
}

func (s *SQLStore) touch(ctx context.Context, tx *sql.Tx, propertyID int64, now time.Time) error {
	res, err := tx.ExecContext(ctx, touchPropertySQL, now, propertyID)
	if err != nil {
		return fmt.Errorf("failed to touch property %d: %w", propertyID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to touch property %d: %w", propertyID, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) insertImages(ctx context.Context, tx *sql.Tx, propertyID int64, images []models.PropertyImage, now time.Time) error {
	for i := range images {
		images[i].PropertyID = propertyID
		images[i].CreatedAt = now
		err := tx.QueryRowContext(ctx, insertImageSQL,
			propertyID, images[i].URL, images[i].AltText, images[i].SortOrder, now,
		).Scan(&images[i].ID)
		if err != nil {
			return fmt.Errorf("failed to insert image %d of property %d: %w", i, propertyID, err)
		}
	}
	return nil
}
