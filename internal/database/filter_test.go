package database

import (
	"testing"

	"property-catalog/internal/models"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string    { return &s }
func floatPtr(f float64) *float64 { return &f }
func typePtr(t models.PropertyType) *models.PropertyType {
	return &t
}
func statusPtr(s models.ListingStatus) *models.ListingStatus {
	return &s
}

func TestFilter(t *testing.T) {
	t.Run("live condition always comes first", func(t *testing.T) {
		f := NewFilter(QuestionDialect)
		assert.Equal(t, " WHERE p.is_deleted = ?", f.Where())
		assert.Equal(t, []interface{}{false}, f.Args())
	})

	t.Run("all criteria", func(t *testing.T) {
		f := NewFilter(QuestionDialect).WithCriteria(models.SearchCriteria{
			City:     strPtr("spring"),
			District: strPtr("north"),
			Type:     typePtr(models.PropertyTypeHouse),
			Status:   statusPtr(models.ListingStatusForRent),
			MinPrice: floatPtr(1000),
			MaxPrice: floatPtr(5000),
		})

		assert.Equal(t, " WHERE p.is_deleted = ?"+
			" AND p.city LIKE ? ESCAPE '!'"+
			" AND p.district LIKE ? ESCAPE '!'"+
			" AND p.type_id = ?"+
			" AND p.status_id = ?"+
			" AND p.price >= ?"+
			" AND p.price <= ?", f.Where())
		assert.Equal(t, []interface{}{false, "%spring%", "%north%", int64(2), int64(2), 1000.0, 5000.0}, f.Args())
	})

	t.Run("postgres numbers placeholders and uses ILIKE", func(t *testing.T) {
		f := NewFilter(PostgresDialect).WithCriteria(models.SearchCriteria{
			City:     strPtr("spring"),
			MaxPrice: floatPtr(5000),
		}).WithID(7)

		assert.Equal(t, " WHERE p.is_deleted = $1 AND p.city ILIKE $2 ESCAPE '!' AND p.price <= $3 AND p.id = $4", f.Where())
		assert.Equal(t, []interface{}{false, "%spring%", 5000.0, int64(7)}, f.Args())
	})

	t.Run("blank strings are wildcards", func(t *testing.T) {
		f := NewFilter(QuestionDialect).WithCriteria(models.SearchCriteria{
			City:     strPtr(""),
			District: strPtr("   "),
		})
		assert.Equal(t, " WHERE p.is_deleted = ?", f.Where())
		assert.Len(t, f.Args(), 1)
	})

	t.Run("user wildcards are escaped", func(t *testing.T) {
		f := NewFilter(QuestionDialect).WithCriteria(models.SearchCriteria{City: strPtr("50%_off!")})
		assert.Equal(t, "%50!%!_off!!%", f.Args()[1])
	})

	t.Run("injection text is only ever bound", func(t *testing.T) {
		evil := "x' OR 1=1 --"
		f := NewFilter(QuestionDialect).WithCriteria(models.SearchCriteria{City: strPtr(evil)})
		assert.NotContains(t, f.Where(), "OR 1=1")
		assert.Equal(t, "%"+evil+"%", f.Args()[1])
	})
}

func TestSelectAggregates(t *testing.T) {
	query, args := selectAggregates(NewFilter(QuestionDialect).WithID(3))
	assert.Contains(t, query, "FROM properties p LEFT JOIN property_images pi ON pi.property_id = p.id")
	assert.Contains(t, query, "WHERE p.is_deleted = ? AND p.id = ?")
	assert.Contains(t, query, "ORDER BY p.created_at DESC, p.id DESC, pi.sort_order ASC, pi.id ASC")
	assert.Equal(t, []interface{}{false, int64(3)}, args)
}
