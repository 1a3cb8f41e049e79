package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ItemType is the kind of form field a GroupItem renders as
type ItemType string

const (
	ItemTypeText     ItemType = "text"
	ItemTypeRadio    ItemType = "radio"
	ItemTypeCheckbox ItemType = "checkbox"
)

// IsValid reports whether t is one of the known item types
func (t ItemType) IsValid() bool {
	switch t {
	case ItemTypeText, ItemTypeRadio, ItemTypeCheckbox:
		return true
	}
	return false
}

// HasOptions reports whether the item type is backed by a fixed option list
func (t ItemType) HasOptions() bool {
	return t == ItemTypeRadio || t == ItemTypeCheckbox
}

// Checklist is an admin-defined order/onboarding form
type Checklist struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Title       string `gorm:"not null" json:"title"`
	TargetEmail string `gorm:"not null" json:"target_email"` // Receives the raw submissions
	ReplyEmail  string `json:"reply_email"`                  // Shown to submitters for questions

	// Admin-authored templates with {{placeholder}} tokens. Empty means built-in default.
	SubmissionTemplate   string `gorm:"type:text" json:"submission_template,omitempty"`
	LinkTemplate         string `gorm:"type:text" json:"link_template,omitempty"`
	ConfirmationTemplate string `gorm:"type:text" json:"confirmation_template,omitempty"`

	Groups []ChecklistGroup `gorm:"foreignKey:ChecklistID;constraint:OnDelete:CASCADE" json:"groups,omitempty"`
}

// BeforeCreate hook to generate UUID
func (c *Checklist) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Checklist model
func (Checklist) TableName() string {
	return "checklists"
}

// ChecklistGroup is a titled section of a checklist
type ChecklistGroup struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ChecklistID string `gorm:"type:uuid;not null;index:idx_group_checklist_order" json:"checklist_id"`
	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	SortOrder   int    `gorm:"not null;default:0;index:idx_group_checklist_order" json:"sort_order"`

	Items []GroupItem `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// BeforeCreate hook to generate UUID
func (g *ChecklistGroup) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for ChecklistGroup model
func (ChecklistGroup) TableName() string {
	return "checklist_groups"
}

// ItemOption is one selectable value of a radio or checkbox item
type ItemOption struct {
	Label  string `json:"label"`
	Active bool   `json:"active"` // Preselected in the form
}

// GroupItem is one form field within a group
type GroupItem struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	GroupID   string                          `gorm:"type:uuid;not null;index:idx_item_group_order" json:"group_id"`
	Label     string                          `gorm:"not null" json:"label"`
	Type      ItemType                        `gorm:"type:varchar(16);not null" json:"type"`
	SortOrder int                             `gorm:"not null;default:0;index:idx_item_group_order" json:"sort_order"`
	Options   datatypes.JSONSlice[ItemOption] `gorm:"type:json" json:"options,omitempty"`
}

// BeforeCreate hook to generate UUID
func (i *GroupItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for GroupItem model
func (GroupItem) TableName() string {
	return "group_items"
}

// FieldKey is the form field name the item is posted under
func (i *GroupItem) FieldKey() string {
	return ItemFieldKey(i.ID)
}

// ItemFieldKey derives the form field name for an item id
func ItemFieldKey(itemID string) string {
	return "item_" + itemID
}

// HasOption reports whether value is one of the item's option labels
func (i *GroupItem) HasOption(value string) bool {
	for _, opt := range i.Options {
		if opt.Label == value {
			return true
		}
	}
	return false
}

// Validate checks the item type and that radio/checkbox items carry options
func (i *GroupItem) Validate() error {
	if strings.TrimSpace(i.Label) == "" {
		return fmt.Errorf("item label is required")
	}
	if !i.Type.IsValid() {
		return fmt.Errorf("unsupported item type %q", i.Type)
	}
	if i.Type.HasOptions() {
		if len(i.Options) == 0 {
			return fmt.Errorf("item %q of type %s requires at least one option", i.Label, i.Type)
		}
		for _, opt := range i.Options {
			if strings.TrimSpace(opt.Label) == "" {
				return fmt.Errorf("item %q has an empty option", i.Label)
			}
		}
	}
	return nil
}
