// models/models.go
package models

import "time"

const AssetTable = "assets"
const LoanTable = "loans"
const CategoryTable = "categories"
const LocationTable = "locations"

// Asset lifecycle states. Transitions between available/loaned happen only
// through the loan/return operations; retired is set via edit.
const (
	StatusAvailable = "available"
	StatusLoaned    = "loaned"
	StatusRetired   = "retired"
)

type Asset struct {
	ID       string  `gorm:"type:uuid;primaryKey" json:"id"`
	Name     string  `gorm:"size:200;not null" json:"name"`
	AssetTag string  `gorm:"size:120;uniqueIndex;not null" json:"asset_tag"` // 管理番号
	Category *string `gorm:"size:120" json:"category"`                      // denormalized master name
	Location *string `gorm:"size:120" json:"location"`
	// Resolved master ids, kept in sync with the name columns on every write.
	CategoryID *string `gorm:"type:uuid;index" json:"category_id,omitempty"`
	LocationID *string `gorm:"type:uuid;index" json:"location_id,omitempty"`

	Note   *string `gorm:"type:text" json:"note"`
	Status string  `gorm:"size:20;not null;default:'available'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Loan struct {
	ID       string `gorm:"type:uuid;primaryKey" json:"id"`
	AssetID  string `gorm:"type:uuid;index;not null" json:"asset_id"`
	Borrower string `gorm:"size:200;not null" json:"borrower"`

	LoanedAt   time.Time  `gorm:"index;not null" json:"loaned_at"`
	DueAt      *time.Time `json:"due_at,omitempty"`
	ReturnedAt *time.Time `gorm:"index" json:"returned_at,omitempty"` // null while active

	Note *string `gorm:"type:text" json:"note,omitempty"`
}

type Category struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:120;uniqueIndex;not null" json:"name"`
	SortOrder int       `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Location struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:120;uniqueIndex;not null" json:"name"`
	SortOrder int       `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Asset) TableName() string    { return AssetTable }
func (Loan) TableName() string     { return LoanTable }
func (Category) TableName() string { return CategoryTable }
func (Location) TableName() string { return LocationTable }
