package database

import (
	"database/sql"
	"fmt"

	"property-catalog/internal/models"
)

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// aggregateRow is one row of properties LEFT JOIN property_images.
// Image columns are NULL when the property has no images.
type aggregateRow struct {
	Property models.Property

	ImageID         sql.NullInt64
	ImagePropertyID sql.NullInt64
	ImageURL        sql.NullString
	ImageAltText    sql.NullString
	ImageSortOrder  sql.NullInt64
	ImageCreatedAt  sql.NullTime
}

func scanAggregateRow(rs rowScanner) (aggregateRow, error) {
	var (
		row      aggregateRow
		typeID   int64
		statusID int64
	)
	p := &row.Property
	err := rs.Scan(
		&p.ID, &p.Title, &p.Description, &p.Address, &p.City, &p.District,
		&p.Price, &p.Area, &p.Bedrooms, &p.Bathrooms, &typeID, &statusID,
		&p.CreatedAt, &p.UpdatedAt, &p.IsDeleted,
		&row.ImageID, &row.ImagePropertyID, &row.ImageURL, &row.ImageAltText,
		&row.ImageSortOrder, &row.ImageCreatedAt,
	)
	if err != nil {
		return aggregateRow{}, err
	}
	p.Type = models.PropertyType(typeID)
	p.Status = models.ListingStatus(statusID)
	return row, nil
}

// image returns the image carried by the row, or false for a NULL image side.
func (r aggregateRow) image() (models.PropertyImage, bool) {
	if !r.ImageID.Valid {
		return models.PropertyImage{}, false
	}
	img := models.PropertyImage{
		ID:         r.ImageID.Int64,
		PropertyID: r.ImagePropertyID.Int64,
		URL:        r.ImageURL.String,
		SortOrder:  int(r.ImageSortOrder.Int64),
		CreatedAt:  r.ImageCreatedAt.Time,
	}
	if r.ImageAltText.Valid {
		alt := r.ImageAltText.String
		img.AltText = &alt
	}
	return img, true
}

// aggregateMapper folds joined rows into aggregates, keeping the order in
// which each property id was first seen.
type aggregateMapper struct {
	order  []int64
	byID   map[int64]*models.Property
	images map[int64]map[int64]struct{}
}

func newAggregateMapper() *aggregateMapper {
	return &aggregateMapper{
		byID:   make(map[int64]*models.Property),
		images: make(map[int64]map[int64]struct{}),
	}
}

func (m *aggregateMapper) add(row aggregateRow) {
	id := row.Property.ID
	p, ok := m.byID[id]
	if !ok {
		prop := row.Property
		prop.Images = []models.PropertyImage{}
		p = &prop
		m.byID[id] = p
		m.images[id] = make(map[int64]struct{})
		m.order = append(m.order, id)
	}

	img, ok := row.image()
	if !ok {
		return
	}
	if _, dup := m.images[id][img.ID]; dup {
		return
	}
	m.images[id][img.ID] = struct{}{}
	p.Images = append(p.Images, img)
}

func (m *aggregateMapper) properties() []models.Property {
	out := make([]models.Property, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.byID[id])
	}
	return out
}

// mapAggregateRows consumes rows and closes them.
func mapAggregateRows(rows *sql.Rows) ([]models.Property, error) {
	defer rows.Close()

	m := newAggregateMapper()
	for rows.Next() {
		row, err := scanAggregateRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property row: %w", err)
		}
		m.add(row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate property rows: %w", err)
	}
	return m.properties(), nil
}

// mapStrings reads a single string column; the result is never nil.
func mapStrings(rows *sql.Rows) ([]string, error) {
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return out, nil
}
