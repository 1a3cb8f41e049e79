package services

import (
	"errors"
	"fmt"
	"strings"

	"checklist_app_go/models"

	"gorm.io/gorm"
)

var (
	ErrGroupNotFound = errors.New("group not found")
	ErrItemNotFound  = errors.New("item not found")
)

// ChecklistService manages checklists and their groups and items
type ChecklistService struct {
	DB *gorm.DB
}

func NewChecklistService(db *gorm.DB) *ChecklistService {
	return &ChecklistService{DB: db}
}

func orderedGroups(db *gorm.DB) *gorm.DB {
	return db.Order("checklist_groups.sort_order ASC, checklist_groups.created_at ASC")
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("group_items.sort_order ASC, group_items.created_at ASC")
}

// List returns all checklists without their schema
func (s *ChecklistService) List() ([]models.Checklist, error) {
	var checklists []models.Checklist
	err := s.DB.Order("title ASC").Find(&checklists).Error
	return checklists, err
}

// Find loads a checklist with its groups and items in sort order
func (s *ChecklistService) Find(id string) (*models.Checklist, error) {
	var checklist models.Checklist
	err := s.DB.
		Preload("Groups", orderedGroups).
		Preload("Groups.Items", orderedItems).
		First(&checklist, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrChecklistNotFound
	}
	if err != nil {
		return nil, err
	}
	return &checklist, nil
}

func validateChecklist(c *models.Checklist) error {
	v := &ValidationError{}
	c.Title = strings.TrimSpace(c.Title)
	c.TargetEmail = strings.TrimSpace(c.TargetEmail)
	c.ReplyEmail = strings.TrimSpace(c.ReplyEmail)

	if c.Title == "" {
		v.Add("title", MsgRequired)
	}
	if c.TargetEmail == "" {
		v.Add("target_email", MsgRequired)
	} else if !IsValidEmail(c.TargetEmail) {
		v.Add("target_email", MsgInvalidEmail)
	}
	if c.ReplyEmail != "" && !IsValidEmail(c.ReplyEmail) {
		v.Add("reply_email", MsgInvalidEmail)
	}
	return v.OrNil()
}

// Create stores a new checklist. Nested groups and items are validated and created with it.
func (s *ChecklistService) Create(checklist *models.Checklist) error {
	if err := validateChecklist(checklist); err != nil {
		return err
	}
	for gi := range checklist.Groups {
		group := &checklist.Groups[gi]
		if strings.TrimSpace(group.Title) == "" {
			return &ValidationError{Fields: map[string]string{fmt.Sprintf("groups[%d].title", gi): MsgRequired}}
		}
		if group.SortOrder == 0 {
			group.SortOrder = gi + 1
		}
		for ii := range group.Items {
			item := &group.Items[ii]
			if err := normalizeItem(item); err != nil {
				var v *ValidationError
				if errors.As(err, &v) {
					return &ValidationError{Fields: map[string]string{fmt.Sprintf("groups[%d].items[%d]", gi, ii): v.Fields["item"]}}
				}
				return err
			}
			if item.SortOrder == 0 {
				item.SortOrder = ii + 1
			}
		}
	}
	return s.DB.Create(checklist).Error
}

// Update changes the checklist's own fields, leaving groups untouched
func (s *ChecklistService) Update(id string, input *models.Checklist) (*models.Checklist, error) {
	if err := validateChecklist(input); err != nil {
		return nil, err
	}

	var checklist models.Checklist
	if err := s.DB.First(&checklist, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChecklistNotFound
		}
		return nil, err
	}

	checklist.Title = input.Title
	checklist.TargetEmail = input.TargetEmail
	checklist.ReplyEmail = input.ReplyEmail
	checklist.SubmissionTemplate = input.SubmissionTemplate
	checklist.LinkTemplate = input.LinkTemplate
	checklist.ConfirmationTemplate = input.ConfirmationTemplate

	if err := s.DB.Save(&checklist).Error; err != nil {
		return nil, err
	}
	return s.Find(id)
}

// Delete soft-deletes a checklist
func (s *ChecklistService) Delete(id string) error {
	result := s.DB.Delete(&models.Checklist{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrChecklistNotFound
	}
	return nil
}

// AddGroup appends a group to the checklist. A zero sort order places it last.
func (s *ChecklistService) AddGroup(checklistID string, group *models.ChecklistGroup) error {
	if _, err := s.Find(checklistID); err != nil {
		return err
	}
	group.Title = strings.TrimSpace(group.Title)
	if group.Title == "" {
		return &ValidationError{Fields: map[string]string{"title": MsgRequired}}
	}

	group.ID = ""
	group.ChecklistID = checklistID
	group.Items = nil
	if group.SortOrder == 0 {
		var max int
		s.DB.Model(&models.ChecklistGroup{}).
			Where("checklist_id = ?", checklistID).
			Select("COALESCE(MAX(sort_order), 0)").
			Scan(&max)
		group.SortOrder = max + 1
	}
	return s.DB.Create(group).Error
}

// UpdateGroup changes a group's title, description and sort order
func (s *ChecklistService) UpdateGroup(groupID string, input *models.ChecklistGroup) (*models.ChecklistGroup, error) {
	var group models.ChecklistGroup
	if err := s.DB.First(&group, "id = ?", groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, &ValidationError{Fields: map[string]string{"title": MsgRequired}}
	}

	group.Title = input.Title
	group.Description = input.Description
	group.SortOrder = input.SortOrder
	if err := s.DB.Save(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// DeleteGroup removes a group and its items
func (s *ChecklistService) DeleteGroup(groupID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", groupID).Delete(&models.GroupItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.ChecklistGroup{}, "id = ?", groupID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrGroupNotFound
		}
		return nil
	})
}

// AddItem appends a validated item to the group. A zero sort order places it last.
func (s *ChecklistService) AddItem(groupID string, item *models.GroupItem) error {
	var group models.ChecklistGroup
	if err := s.DB.First(&group, "id = ?", groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGroupNotFound
		}
		return err
	}
	if err := normalizeItem(item); err != nil {
		return err
	}

	item.ID = ""
	item.GroupID = groupID
	if item.SortOrder == 0 {
		var max int
		s.DB.Model(&models.GroupItem{}).
			Where("group_id = ?", groupID).
			Select("COALESCE(MAX(sort_order), 0)").
			Scan(&max)
		item.SortOrder = max + 1
	}
	return s.DB.Create(item).Error
}

// UpdateItem replaces an item's label, type, options and sort order
func (s *ChecklistService) UpdateItem(itemID string, input *models.GroupItem) (*models.GroupItem, error) {
	var item models.GroupItem
	if err := s.DB.First(&item, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	if err := normalizeItem(input); err != nil {
		return nil, err
	}

	item.Label = input.Label
	item.Type = input.Type
	item.Options = input.Options
	item.SortOrder = input.SortOrder
	if err := s.DB.Save(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteItem removes an item
func (s *ChecklistService) DeleteItem(itemID string) error {
	result := s.DB.Delete(&models.GroupItem{}, "id = ?", itemID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}

// normalizeItem trims the label and options and drops options from text items
func normalizeItem(item *models.GroupItem) error {
	item.Label = strings.TrimSpace(item.Label)
	if !item.Type.HasOptions() {
		item.Options = nil
	}
	for i := range item.Options {
		item.Options[i].Label = strings.TrimSpace(item.Options[i].Label)
	}
	if err := item.Validate(); err != nil {
		if !item.Type.IsValid() {
			return &UnsupportedItemTypeError{ItemID: item.ID, Type: item.Type}
		}
		return &ValidationError{Fields: map[string]string{"item": err.Error()}}
	}
	return nil
}
