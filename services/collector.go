package services

import (
	"strings"

	"checklist_app_go/models"
)

// FieldReader gives access to posted form fields
type FieldReader interface {
	FormValue(key string) string
	FormValues(key string) []string
}

// CollectSubmissionData reads the posted fields for every item of the checklist, in schema order.
// Only keys derived from the schema are read. Empty values are omitted and so are groups
// that end up without items. Option values not offered by the item are dropped.
func CollectSubmissionData(checklist *models.Checklist, fields FieldReader) (models.SubmissionData, error) {
	data := models.SubmissionData{}

	for _, group := range checklist.Groups {
		var entries []models.ItemEntry

		for i := range group.Items {
			item := &group.Items[i]
			key := item.FieldKey()

			switch item.Type {
			case models.ItemTypeText:
				value := strings.TrimSpace(fields.FormValue(key))
				if value == "" {
					continue
				}
				entries = append(entries, models.ItemEntry{
					Label: item.Label,
					Value: models.ItemValue{Type: item.Type, Text: value},
				})

			case models.ItemTypeRadio:
				value := strings.TrimSpace(fields.FormValue(key))
				if value == "" || !item.HasOption(value) {
					continue
				}
				entries = append(entries, models.ItemEntry{
					Label: item.Label,
					Value: models.ItemValue{Type: item.Type, Text: value},
				})

			case models.ItemTypeCheckbox:
				var selected []string
				for _, raw := range fields.FormValues(key) {
					value := strings.TrimSpace(raw)
					if value == "" || !item.HasOption(value) || containsString(selected, value) {
						continue
					}
					selected = append(selected, value)
				}
				if len(selected) == 0 {
					continue
				}
				entries = append(entries, models.ItemEntry{
					Label: item.Label,
					Value: models.ItemValue{Type: item.Type, List: selected},
				})

			default:
				return nil, &UnsupportedItemTypeError{ItemID: item.ID, Type: item.Type}
			}
		}

		for _, entry := range entries {
			data.Set(group.Title, entry.Label, entry.Value)
		}
	}

	return data, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
