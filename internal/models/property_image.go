package models

import "time"

// PropertyImage is an image owned by exactly one Property.
// It carries the owner's id only; there is no navigable back-reference.
type PropertyImage struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID int64     `gorm:"not null;index" json:"property_id"`
	URL        string    `gorm:"column:url;type:varchar(500);not null" json:"url" validate:"required,max=500"`
	AltText    *string   `gorm:"column:alt_text;type:varchar(200)" json:"alt_text,omitempty" validate:"omitempty,max=200"`
	SortOrder  int       `gorm:"not null;default:0;index" json:"sort_order" validate:"gte=-2147483648,lte=2147483647"`
	CreatedAt  time.Time `gorm:"not null;precision:6" json:"created_at"`
}

// TableName specifies the table name for PropertyImage
func (PropertyImage) TableName() string {
	return "property_images"
}
