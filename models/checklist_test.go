package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGroupItemValidate(t *testing.T) {
	tests := []struct {
		name    string
		item    GroupItem
		wantErr bool
	}{
		{"text without options", GroupItem{Label: "Bemerkung", Type: ItemTypeText}, false},
		{"radio with options", GroupItem{Label: "Laptop", Type: ItemTypeRadio, Options: []ItemOption{{Label: "MacBook"}}}, false},
		{"radio without options", GroupItem{Label: "Laptop", Type: ItemTypeRadio}, true},
		{"checkbox without options", GroupItem{Label: "Gear", Type: ItemTypeCheckbox}, true},
		{"checkbox with blank option", GroupItem{Label: "Gear", Type: ItemTypeCheckbox, Options: []ItemOption{{Label: " "}}}, true},
		{"unknown type", GroupItem{Label: "Date", Type: ItemType("date")}, true},
		{"missing label", GroupItem{Type: ItemTypeText}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.item.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGroupItemFieldKey(t *testing.T) {
	item := GroupItem{ID: "abc-123"}
	assert.Equal(t, "item_abc-123", item.FieldKey())
}

func TestGroupItemHasOption(t *testing.T) {
	item := GroupItem{Type: ItemTypeCheckbox, Options: []ItemOption{{Label: "Laptop"}, {Label: "Mouse", Active: true}}}
	assert.True(t, item.HasOption("Mouse"))
	assert.False(t, item.HasOption("Keyboard"))
}

func TestIsValidEmployeeID(t *testing.T) {
	assert.True(t, IsValidEmployeeID("EMP-1"))
	assert.True(t, IsValidEmployeeID("12345"))
	assert.False(t, IsValidEmployeeID(""))
	assert.False(t, IsValidEmployeeID("EMP 1"))
	assert.False(t, IsValidEmployeeID("EMP_1"))
	assert.False(t, IsValidEmployeeID("<script>"))
}

func TestIsValidMailTransport(t *testing.T) {
	assert.True(t, IsValidMailTransport(MailTransportSMTP))
	assert.True(t, IsValidMailTransport(MailTransportResend))
	assert.True(t, IsValidMailTransport(MailTransportLog))
	assert.False(t, IsValidMailTransport("pigeon"))
}
