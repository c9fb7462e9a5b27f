package repository

import (
	"context"
	"time"

	"property-catalog/internal/database"
	"property-catalog/internal/logger"
	"property-catalog/internal/models"

	"github.com/go-playground/validator/v10"
)

// Store is the persistence capability behind the repository. Both
// database.GormStore and database.SQLStore implement it.
type Store interface {
	GetAll(ctx context.Context) ([]models.Property, error)
	GetByID(ctx context.Context, id int64) (*models.Property, error)
	Search(ctx context.Context, criteria models.SearchCriteria) ([]models.Property, error)
	Create(ctx context.Context, p *models.Property) (*models.Property, error)
	Update(ctx context.Context, p *models.Property) (*models.Property, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Exists(ctx context.Context, id int64) (bool, error)
	AddImage(ctx context.Context, propertyID int64, img *models.PropertyImage) (*models.PropertyImage, error)
	RemoveImage(ctx context.Context, propertyID, imageID int64) (bool, error)
	Cities(ctx context.Context) ([]string, error)
}

var (
	_ Store = (*database.GormStore)(nil)
	_ Store = (*database.SQLStore)(nil)
)

type PropertyRepo interface {
	GetAll(ctx context.Context) ([]models.Property, error)
	GetByID(ctx context.Context, id int64) (*models.Property, error)
	Search(ctx context.Context, criteria models.SearchCriteria) ([]models.Property, error)
	Create(ctx context.Context, p *models.Property) (*models.Property, error)
	Update(ctx context.Context, p *models.Property) (*models.Property, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Exists(ctx context.Context, id int64) (bool, error)
	AddImage(ctx context.Context, propertyID int64, img *models.PropertyImage) (*models.PropertyImage, error)
	RemoveImage(ctx context.Context, propertyID, imageID int64) (bool, error)
	Cities(ctx context.Context) ([]string, error)
}

type propertyRepo struct {
	store    Store
	validate *validator.Validate
	log      *logger.Logger
}

func NewPropertyRepo(store Store, baseLog *logger.Logger) PropertyRepo {
	return &propertyRepo{
		store:    store,
		validate: newValidator(),
		log:      baseLog.With("repo", "PropertyRepo"),
	}
}

func (r *propertyRepo) GetAll(ctx context.Context) ([]models.Property, error) {
	return r.store.GetAll(ctx)
}

// GetByID returns nil for absent, soft-deleted or non-positive ids.
func (r *propertyRepo) GetByID(ctx context.Context, id int64) (*models.Property, error) {
	if id <= 0 {
		return nil, nil
	}
	return r.store.GetByID(ctx, id)
}

func (r *propertyRepo) Search(ctx context.Context, criteria models.SearchCriteria) ([]models.Property, error) {
	return r.store.Search(ctx, criteria)
}

// Create validates p and persists it with its images. p must not be nil.
func (r *propertyRepo) Create(ctx context.Context, p *models.Property) (*models.Property, error) {
	if p == nil {
		panic("repository: Create called with nil property")
	}
	if err := r.check(p); err != nil {
		return nil, err
	}
	created, err := r.store.Create(ctx, withoutTimestamps(p))
	if err != nil {
		return nil, err
	}
	r.log.Info("property created", "id", created.ID, "images", len(created.Images))
	return created, nil
}

// Update validates p and replaces the stored aggregate. A non-positive id is
// reported as database.ErrNotFound without reaching the store.
func (r *propertyRepo) Update(ctx context.Context, p *models.Property) (*models.Property, error) {
	if p == nil {
		panic("repository: Update called with nil property")
	}
	if p.ID <= 0 {
		return nil, database.ErrNotFound
	}
	if err := r.check(p); err != nil {
		return nil, err
	}
	updated, err := r.store.Update(ctx, withoutTimestamps(p))
	if err != nil {
		return nil, err
	}
	r.log.Info("property updated", "id", updated.ID, "images", len(updated.Images))
	return updated, nil
}

func (r *propertyRepo) Delete(ctx context.Context, id int64) (bool, error) {
	if id <= 0 {
		return false, nil
	}
	deleted, err := r.store.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		r.log.Info("property deleted", "id", id)
	}
	return deleted, nil
}

func (r *propertyRepo) Exists(ctx context.Context, id int64) (bool, error) {
	if id <= 0 {
		return false, nil
	}
	return r.store.Exists(ctx, id)
}

// AddImage validates img and appends it to a live property. A non-positive
// property id is reported as database.ErrNotFound. img must not be nil.
func (r *propertyRepo) AddImage(ctx context.Context, propertyID int64, img *models.PropertyImage) (*models.PropertyImage, error) {
	if img == nil {
		panic("repository: AddImage called with nil image")
	}
	if propertyID <= 0 {
		return nil, database.ErrNotFound
	}
	if err := r.validate.Struct(img); err != nil {
		return nil, toValidationError(err)
	}

	in := *img
	in.ID = 0
	in.PropertyID = propertyID
	in.CreatedAt = time.Time{}

	added, err := r.store.AddImage(ctx, propertyID, &in)
	if err != nil {
		return nil, err
	}
	r.log.Info("image added", "property_id", propertyID, "image_id", added.ID)
	return added, nil
}

func (r *propertyRepo) RemoveImage(ctx context.Context, propertyID, imageID int64) (bool, error) {
	if propertyID <= 0 || imageID <= 0 {
		return false, nil
	}
	removed, err := r.store.RemoveImage(ctx, propertyID, imageID)
	if err != nil {
		return false, err
	}
	if removed {
		r.log.Info("image removed", "property_id", propertyID, "image_id", imageID)
	}
	return removed, nil
}

func (r *propertyRepo) Cities(ctx context.Context) ([]string, error) {
	return r.store.Cities(ctx)
}

func (r *propertyRepo) check(p *models.Property) error {
	if err := r.validate.Struct(p); err != nil {
		return toValidationError(err)
	}
	return nil
}

// withoutTimestamps returns a copy with caller-supplied timestamps cleared.
func withoutTimestamps(p *models.Property) *models.Property {
	out := *p
	out.CreatedAt = time.Time{}
	out.UpdatedAt = time.Time{}
	out.IsDeleted = false
	if p.Images != nil {
		out.Images = make([]models.PropertyImage, len(p.Images))
		for i, img := range p.Images {
			img.CreatedAt = time.Time{}
			out.Images[i] = img
		}
	}
	return &out
}
