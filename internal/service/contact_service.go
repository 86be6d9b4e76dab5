package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"portal/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateContactRequest struct {
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name"`
	Email       string `json:"email" binding:"omitempty,email"`
	PhoneNumber string `json:"phone_number"`
	Company     string `json:"company"`
	JobTitle    string `json:"job_title"`
	Notes       string `json:"notes"`
}

type UpdateContactRequest struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	Email       *string `json:"email" binding:"omitempty,email"`
	PhoneNumber *string `json:"phone_number"`
	Company     *string `json:"company"`
	JobTitle    *string `json:"job_title"`
	Notes       *string `json:"notes"`
}

type ScheduleDailyCallRequest struct {
	ContactID           string `json:"contact_id" binding:"required,uuid"`
	CallFrequencyPerDay int    `json:"call_frequency_per_day"`
}

// ContactService manages per-user address books and daily call lists.
// Contacts are strictly owner-scoped: no user sees another user's entries.
type ContactService interface {
	Create(ctx context.Context, req CreateContactRequest, owner uuid.UUID) (*model.Contact, error)
	GetByID(ctx context.Context, id, owner uuid.UUID) (*model.Contact, error)
	List(ctx context.Context, owner uuid.UUID, search string) ([]model.Contact, error)
	Update(ctx context.Context, id, owner uuid.UUID, req UpdateContactRequest) (*model.Contact, error)
	Delete(ctx context.Context, id, owner uuid.UUID) error
	BatchImport(ctx context.Context, reqs []CreateContactRequest, owner uuid.UUID) (BatchImportResult, error)
	BatchDelete(ctx context.Context, ids []uuid.UUID, owner uuid.UUID) (int64, error)

	ScheduleDailyCall(ctx context.Context, req ScheduleDailyCallRequest, owner uuid.UUID) (*model.DailyCall, error)
	ListDailyCalls(ctx context.Context, owner uuid.UUID) ([]model.DailyCall, error)
	CompleteDailyCall(ctx context.Context, id, owner uuid.UUID) (*model.DailyCall, error)
	RemoveDailyCall(ctx context.Context, id, owner uuid.UUID) error
}

type contactService struct {
	db *gorm.DB
}

func NewContactService(db *gorm.DB) ContactService {
	return &contactService{db: db}
}

func (s *contactService) Create(ctx context.Context, req CreateContactRequest, owner uuid.UUID) (*model.Contact, error) {
	contact := model.Contact{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Company:     req.Company,
		JobTitle:    req.JobTitle,
		Notes:       req.Notes,
		OwnerID:     owner,
	}
	if err := s.db.WithContext(ctx).Create(&contact).Error; err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}
	return &contact, nil
}

func (s *contactService) GetByID(ctx context.Context, id, owner uuid.UUID) (*model.Contact, error) {
	var contact model.Contact
	if err := s.db.WithContext(ctx).
		First(&contact, "id = ? AND owner_id = ?", id, owner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: contact", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch contact: %w", err)
	}
	return &contact, nil
}

func (s *contactService) List(ctx context.Context, owner uuid.UUID, search string) ([]model.Contact, error) {
	var contacts []model.Contact
	db := s.db.WithContext(ctx).Where("owner_id = ?", owner)
	if search != "" {
		pattern := "%" + search + "%"
		db = db.Where("first_name ILIKE ? OR last_name ILIKE ? OR company ILIKE ? OR email ILIKE ?",
			pattern, pattern, pattern, pattern)
	}
	if err := db.Order("first_name, last_name").Find(&contacts).Error; err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, nil
}

func (s *contactService) Update(ctx context.Context, id, owner uuid.UUID, req UpdateContactRequest) (*model.Contact, error) {
	contact, err := s.GetByID(ctx, id, owner)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		contact.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		contact.LastName = *req.LastName
	}
	if req.Email != nil {
		contact.Email = *req.Email
	}
	if req.PhoneNumber != nil {
		contact.PhoneNumber = *req.PhoneNumber
	}
	if req.Company != nil {
		contact.Company = *req.Company
	}
	if req.JobTitle != nil {
		contact.JobTitle = *req.JobTitle
	}
	if req.Notes != nil {
		contact.Notes = *req.Notes
	}

	if err := s.db.WithContext(ctx).Save(contact).Error; err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}
	return contact, nil
}

func (s *contactService) Delete(ctx context.Context, id, owner uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, owner).
		Delete(&model.Contact{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete contact: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: contact", ErrNotFound)
	}
	return nil
}

// BatchImportResult reports what a bulk import did.
type BatchImportResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// BatchImport creates or updates contacts in one transaction. Entries with an
// email address merge into the owner's existing contact with that email;
// entries without one are always created.
func (s *contactService) BatchImport(ctx context.Context, reqs []CreateContactRequest, owner uuid.UUID) (BatchImportResult, error) {
	var result BatchImportResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, req := range reqs {
			if req.FirstName == "" {
				return fmt.Errorf("%w: first_name is required", ErrValidation)
			}

			var existing model.Contact
			if req.Email != "" {
				err := tx.First(&existing, "owner_id = ? AND email = ?", owner, req.Email).Error
				if err == nil {
					existing.FirstName = req.FirstName
					existing.LastName = req.LastName
					existing.PhoneNumber = req.PhoneNumber
					existing.Company = req.Company
					existing.JobTitle = req.JobTitle
					existing.Notes = req.Notes
					if err := tx.Save(&existing).Error; err != nil {
						return fmt.Errorf("failed to update contact: %w", err)
					}
					result.Updated++
					continue
				}
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("failed to look up contact: %w", err)
				}
			}

			contact := model.Contact{
				FirstName:   req.FirstName,
				LastName:    req.LastName,
				Email:       req.Email,
				PhoneNumber: req.PhoneNumber,
				Company:     req.Company,
				JobTitle:    req.JobTitle,
				Notes:       req.Notes,
				OwnerID:     owner,
			}
			if err := tx.Create(&contact).Error; err != nil {
				return fmt.Errorf("failed to create contact: %w", err)
			}
			result.Created++
		}
		return nil
	})
	if err != nil {
		return BatchImportResult{}, err
	}
	return result, nil
}

// BatchDelete removes the owner's contacts among ids and reports how many
// actually went away. IDs belonging to other users are silently skipped.
func (s *contactService) BatchDelete(ctx context.Context, ids []uuid.UUID, owner uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := s.db.WithContext(ctx).
		Where("id IN ? AND owner_id = ?", ids, owner).
		Delete(&model.Contact{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete contacts: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *contactService) ScheduleDailyCall(ctx context.Context, req ScheduleDailyCallRequest, owner uuid.UUID) (*model.DailyCall, error) {
	contactID, err := uuid.Parse(req.ContactID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid contact id", ErrValidation)
	}
	if _, err := s.GetByID(ctx, contactID, owner); err != nil {
		return nil, err
	}

	var count int64
	s.db.WithContext(ctx).Model(&model.DailyCall{}).
		Where("user_id = ? AND contact_id = ?", owner, contactID).
		Count(&count)
	if count > 0 {
		return nil, fmt.Errorf("%w: contact is already on the call list", ErrInvalidState)
	}

	frequency := req.CallFrequencyPerDay
	if frequency < 1 {
		frequency = 1
	}
	now := time.Now().UTC()
	call := model.DailyCall{
		UserID:              owner,
		ContactID:           contactID,
		CallFrequencyPerDay: frequency,
		NextCallAt:          &now,
	}
	if err := s.db.WithContext(ctx).Create(&call).Error; err != nil {
		return nil, fmt.Errorf("failed to schedule daily call: %w", err)
	}
	return &call, nil
}

func (s *contactService) ListDailyCalls(ctx context.Context, owner uuid.UUID) ([]model.DailyCall, error) {
	var calls []model.DailyCall
	if err := s.db.WithContext(ctx).
		Preload("Contact").
		Where("user_id = ?", owner).
		Order("next_call_at").
		Find(&calls).Error; err != nil {
		return nil, fmt.Errorf("failed to list daily calls: %w", err)
	}
	return calls, nil
}

// CompleteDailyCall pushes next_call_at forward by the schedule's interval.
// A frequency of n spreads the calls evenly across a working day.
func (s *contactService) CompleteDailyCall(ctx context.Context, id, owner uuid.UUID) (*model.DailyCall, error) {
	var call model.DailyCall
	if err := s.db.WithContext(ctx).
		First(&call, "id = ? AND user_id = ?", id, owner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: daily call", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch daily call: %w", err)
	}

	interval := 24 * time.Hour / time.Duration(call.CallFrequencyPerDay)
	next := time.Now().UTC().Add(interval)
	call.NextCallAt = &next
	if err := s.db.WithContext(ctx).Save(&call).Error; err != nil {
		return nil, fmt.Errorf("failed to update daily call: %w", err)
	}
	return &call, nil
}

func (s *contactService) RemoveDailyCall(ctx context.Context, id, owner uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, owner).
		Delete(&model.DailyCall{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove daily call: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: daily call", ErrNotFound)
	}
	return nil
}
