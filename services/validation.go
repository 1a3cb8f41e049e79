package services

import (
	"strings"

	"checklist_app_go/models"

	"github.com/asaskevich/govalidator"
)

// Validation message keys, translated by the handlers
const (
	MsgRequired          = "validation.required"
	MsgInvalidEmail      = "validation.invalid_email"
	MsgInvalidEmployeeID = "validation.invalid_employee_id"
)

// IsValidEmail checks the syntax of a single email address
func IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	return email != "" && govalidator.IsEmail(email)
}

// validatePerson checks the name/email/employee id triple shared by the link and submit flows
func validatePerson(v *ValidationError, nameField, name, emailField, email, employeeID string) {
	if strings.TrimSpace(name) == "" {
		v.Add(nameField, MsgRequired)
	}
	if strings.TrimSpace(email) == "" {
		v.Add(emailField, MsgRequired)
	} else if !IsValidEmail(email) {
		v.Add(emailField, MsgInvalidEmail)
	}
	if strings.TrimSpace(employeeID) == "" {
		v.Add("mitarbeiter_id", MsgRequired)
	} else if !models.IsValidEmployeeID(employeeID) {
		v.Add("mitarbeiter_id", MsgInvalidEmployeeID)
	}
}

// ValidateChecklistForSend enforces that the target mailbox is a valid address before any send
func ValidateChecklistForSend(checklist *models.Checklist) error {
	v := &ValidationError{}
	if !IsValidEmail(checklist.TargetEmail) {
		v.Add("target_email", MsgInvalidEmail)
	}
	if checklist.ReplyEmail != "" && !IsValidEmail(checklist.ReplyEmail) {
		v.Add("reply_email", MsgInvalidEmail)
	}
	return v.OrNil()
}
