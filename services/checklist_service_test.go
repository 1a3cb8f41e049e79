package services

import (
	"errors"
	"testing"

	"checklist_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecklistService_CreateAndFindOrdered(t *testing.T) {
	db := setupTestDB(t)
	svc := NewChecklistService(db)

	checklist := &models.Checklist{
		Title:       "  Onboarding  ",
		TargetEmail: "hr@example.com",
		Groups: []models.ChecklistGroup{
			{Title: "Second", SortOrder: 20, Items: []models.GroupItem{
				{Label: "B", Type: models.ItemTypeText, SortOrder: 2},
				{Label: "A", Type: models.ItemTypeText, SortOrder: 1},
			}},
			{Title: "First", SortOrder: 10},
		},
	}
	require.NoError(t, svc.Create(checklist))
	assert.Equal(t, "Onboarding", checklist.Title)

	loaded, err := svc.Find(checklist.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Groups, 2)
	assert.Equal(t, "First", loaded.Groups[0].Title)
	assert.Equal(t, "Second", loaded.Groups[1].Title)
	require.Len(t, loaded.Groups[1].Items, 2)
	assert.Equal(t, "A", loaded.Groups[1].Items[0].Label)
	assert.Equal(t, "B", loaded.Groups[1].Items[1].Label)
}

func TestChecklistService_CreateValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewChecklistService(db)

	err := svc.Create(&models.Checklist{Title: "", TargetEmail: "nope"})
	require.Error(t, err)
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, MsgRequired, vErr.Fields["title"])
	assert.Equal(t, MsgInvalidEmail, vErr.Fields["target_email"])

	err = svc.Create(&models.Checklist{
		Title:       "IT",
		TargetEmail: "it@example.com",
		Groups: []models.ChecklistGroup{{Title: "HW", Items: []models.GroupItem{
			{Label: "Laptop", Type: models.ItemTypeRadio},
		}}},
	})
	assert.True(t, errors.Is(err, ErrInvalidInput), "radio without options is rejected")
}

func TestChecklistService_FindNotFound(t *testing.T) {
	db := setupTestDB(t)
	_, err := NewChecklistService(db).Find("missing")
	assert.True(t, errors.Is(err, ErrChecklistNotFound))
}

func TestChecklistService_UpdateAndDelete(t *testing.T) {
	db := setupTestDB(t)
	svc := NewChecklistService(db)
	checklist := seedITChecklist(t, db)

	updated, err := svc.Update(checklist.ID, &models.Checklist{
		Title:              "IT 2026",
		TargetEmail:        "it2@example.com",
		SubmissionTemplate: "{{auswahl}}",
	})
	require.NoError(t, err)
	assert.Equal(t, "IT 2026", updated.Title)
	assert.Equal(t, "{{auswahl}}", updated.SubmissionTemplate)
	assert.Len(t, updated.Groups, 2, "update keeps the schema")

	_, err = svc.Update("missing", &models.Checklist{Title: "x", TargetEmail: "x@example.com"})
	assert.True(t, errors.Is(err, ErrChecklistNotFound))

	require.NoError(t, svc.Delete(checklist.ID))
	_, err = svc.Find(checklist.ID)
	assert.True(t, errors.Is(err, ErrChecklistNotFound))
	assert.True(t, errors.Is(svc.Delete(checklist.ID), ErrChecklistNotFound))

	list, err := svc.List()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestChecklistService_Groups(t *testing.T) {
	db := setupTestDB(t)
	svc := NewChecklistService(db)
	checklist := seedITChecklist(t, db)

	group := &models.ChecklistGroup{Title: "Access"}
	require.NoError(t, svc.AddGroup(checklist.ID, group))
	assert.Equal(t, 3, group.SortOrder, "new groups are appended")

	assert.True(t, errors.Is(svc.AddGroup(checklist.ID, &models.ChecklistGroup{}), ErrInvalidInput))
	assert.True(t, errors.Is(svc.AddGroup("missing", &models.ChecklistGroup{Title: "x"}), ErrChecklistNotFound))

	renamed, err := svc.UpdateGroup(group.ID, &models.ChecklistGroup{Title: "Zugänge", SortOrder: 0})
	require.NoError(t, err)
	assert.Equal(t, "Zugänge", renamed.Title)

	loaded, err := svc.Find(checklist.ID)
	require.NoError(t, err)
	assert.Equal(t, "Zugänge", loaded.Groups[0].Title, "sort order 0 moves the group first")

	hardware := loaded.Groups[1]
	require.Equal(t, "Hardware", hardware.Title)
	require.NoError(t, svc.DeleteGroup(hardware.ID))

	var items int64
	db.Model(&models.GroupItem{}).Where("group_id = ?", hardware.ID).Count(&items)
	assert.Zero(t, items, "items are removed with their group")
	assert.True(t, errors.Is(svc.DeleteGroup(hardware.ID), ErrGroupNotFound))
}

func TestChecklistService_Items(t *testing.T) {
	db := setupTestDB(t)
	svc := NewChecklistService(db)
	checklist := seedITChecklist(t, db)
	hardware := checklist.Groups[0]

	item := &models.GroupItem{
		Label:   " Monitor ",
		Type:    models.ItemTypeCheckbox,
		Options: []models.ItemOption{{Label: " 24\" "}, {Label: "27\"", Active: true}},
	}
	require.NoError(t, svc.AddItem(hardware.ID, item))
	assert.Equal(t, "Monitor", item.Label)
	assert.Equal(t, 3, item.SortOrder)
	assert.Equal(t, "24\"", item.Options[0].Label)

	text, err := svc.UpdateItem(item.ID, &models.GroupItem{Label: "Monitor", Type: models.ItemTypeText, Options: item.Options, SortOrder: 3})
	require.NoError(t, err)
	assert.Empty(t, text.Options, "text items drop their options")

	_, err = svc.UpdateItem(item.ID, &models.GroupItem{Label: "Monitor", Type: models.ItemType("slider")})
	assert.True(t, errors.Is(err, ErrUnsupportedItemType))

	err = svc.AddItem(hardware.ID, &models.GroupItem{Label: "Dock", Type: models.ItemTypeRadio})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	assert.True(t, errors.Is(svc.AddItem("missing", &models.GroupItem{Label: "x", Type: models.ItemTypeText}), ErrGroupNotFound))

	require.NoError(t, svc.DeleteItem(item.ID))
	assert.True(t, errors.Is(svc.DeleteItem(item.ID), ErrItemNotFound))

	// Options survive the JSON column round trip
	loaded, err := svc.Find(checklist.ID)
	require.NoError(t, err)
	laptop := itemByLabel(t, loaded, "Laptop")
	require.Len(t, laptop.Options, 2)
	assert.Equal(t, "ThinkPad", laptop.Options[1].Label)
}
