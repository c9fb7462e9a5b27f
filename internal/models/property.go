package models

import "time"

// Property is the aggregate root of the catalog. It owns its images exclusively.
type Property struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string `gorm:"type:varchar(200);not null" json:"title" validate:"required,max=200"`
	Description string `gorm:"type:varchar(1000);not null" json:"description" validate:"required,max=1000"`
	Address     string `gorm:"type:varchar(500);not null" json:"address" validate:"required,max=500"`
	City        string `gorm:"type:varchar(100);not null;index" json:"city" validate:"required,max=100"`
	District    string `gorm:"type:varchar(100);not null;index" json:"district" validate:"required,max=100"`

	// フィルタ用属性
	// Bounds follow the column widths: decimal(18,2), decimal(10,2) and 32-bit integers.
	Price     float64       `gorm:"type:decimal(18,2);not null;index" json:"price" validate:"gte=0,lt=1e16,scale2"`
	Area      float64       `gorm:"type:decimal(10,2);not null" json:"area" validate:"gt=0,lt=1e8,scale2"`
	Bedrooms  int           `gorm:"not null" json:"bedrooms" validate:"gt=0,lte=2147483647"`
	Bathrooms int           `gorm:"not null" json:"bathrooms" validate:"gt=0,lte=2147483647"`
	Type      PropertyType  `gorm:"column:type_id;not null;index" json:"type" validate:"enum"`
	Status    ListingStatus `gorm:"column:status_id;not null;index" json:"status" validate:"enum"`

	// タイムスタンプ (store-assigned)
	CreatedAt time.Time `gorm:"not null;precision:6;index:idx_properties_created_at,sort:desc" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;precision:6" json:"updated_at"`

	// 論理削除
	IsDeleted bool `gorm:"not null;default:false;index" json:"is_deleted"`

	Images []PropertyImage `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"images" validate:"dive"`
}

// TableName はテーブル名を明示的に指定
func (Property) TableName() string {
	return "properties"
}
