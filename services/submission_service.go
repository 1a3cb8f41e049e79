package services

import (
	"context"
	"errors"
	"strings"

	"checklist_app_go/models"

	"gorm.io/gorm"
)

// SubmitRequest carries the submitter's identity fields
type SubmitRequest struct {
	Name       string
	EmployeeID string
	Email      string
	IPAddress  string
	UserAgent  string
}

// SubmissionService stores submissions and triggers their notifications
type SubmissionService struct {
	DB         *gorm.DB
	Dispatcher *NotificationDispatcher
}

func NewSubmissionService(db *gorm.DB, dispatcher *NotificationDispatcher) *SubmissionService {
	return &SubmissionService{DB: db, Dispatcher: dispatcher}
}

// FindSubmission returns the submission for (checklist, employee id), or ErrSubmissionNotFound
func (s *SubmissionService) FindSubmission(checklistID, employeeID string) (*models.Submission, error) {
	var submission models.Submission
	err := s.DB.Where("checklist_id = ? AND employee_id = ?", checklistID, employeeID).First(&submission).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSubmissionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// HasSubmission reports whether the employee already submitted the checklist
func (s *SubmissionService) HasSubmission(checklistID, employeeID string) (bool, error) {
	var count int64
	err := s.DB.Model(&models.Submission{}).
		Where("checklist_id = ? AND employee_id = ?", checklistID, employeeID).
		Count(&count).Error
	return count > 0, err
}

// Find loads a submission by id
func (s *SubmissionService) Find(id string) (*models.Submission, error) {
	var submission models.Submission
	err := s.DB.First(&submission, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSubmissionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// List returns the submissions of a checklist, newest first
func (s *SubmissionService) List(checklistID string) ([]models.Submission, error) {
	var submissions []models.Submission
	err := s.DB.Where("checklist_id = ?", checklistID).
		Order("submitted_at DESC").
		Find(&submissions).Error
	return submissions, err
}

// Delete removes a submission, freeing its employee id for a new submission
func (s *SubmissionService) Delete(id string) error {
	result := s.DB.Delete(&models.Submission{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubmissionNotFound
	}
	return nil
}

// Submit validates and stores the submission, then sends the notifications.
// The submission is persisted before any email goes out; a delivery failure is returned
// alongside the stored submission and recorded in NotifyError.
func (s *SubmissionService) Submit(ctx context.Context, checklist *models.Checklist, req SubmitRequest, fields FieldReader) (*models.Submission, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.EmployeeID = strings.TrimSpace(req.EmployeeID)
	req.Email = strings.TrimSpace(req.Email)

	v := &ValidationError{}
	validatePerson(v, "name", req.Name, "email", req.Email, req.EmployeeID)
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	exists, err := s.HasSubmission(checklist.ID, req.EmployeeID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateSubmission
	}

	data, err := CollectSubmissionData(checklist, fields)
	if err != nil {
		return nil, err
	}

	submission := &models.Submission{
		ChecklistID: checklist.ID,
		Name:        req.Name,
		EmployeeID:  req.EmployeeID,
		Email:       req.Email,
		Data:        data,
		IPAddress:   req.IPAddress,
		UserAgent:   req.UserAgent,
	}
	if err := s.DB.Create(submission).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateSubmission
		}
		return nil, err
	}

	notifyErr := s.notify(ctx, checklist, submission)
	return submission, notifyErr
}

// ResendNotification sends both emails of an existing submission again
func (s *SubmissionService) ResendNotification(ctx context.Context, checklist *models.Checklist, submissionID string) (*models.Submission, error) {
	submission, err := s.Find(submissionID)
	if err != nil {
		return nil, err
	}
	if submission.ChecklistID != checklist.ID {
		return nil, ErrSubmissionNotFound
	}
	return submission, s.notify(ctx, checklist, submission)
}

// notify dispatches the emails and records the rendered HTML and the outcome
func (s *SubmissionService) notify(ctx context.Context, checklist *models.Checklist, submission *models.Submission) error {
	html, notifyErr := s.Dispatcher.Notify(ctx, checklist, submission)

	submission.GeneratedEmail = html
	submission.NotifyError = ""
	if notifyErr != nil {
		submission.NotifyError = notifyErr.Error()
	}

	if err := s.DB.Model(submission).Updates(map[string]interface{}{
		"generated_email": submission.GeneratedEmail,
		"notify_error":    submission.NotifyError,
	}).Error; err != nil {
		return errors.Join(notifyErr, err)
	}
	return notifyErr
}

// isUniqueViolation detects a unique index conflict from either the sqlite or libsql driver
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, models.SubmissionUniqueIndex)
}
