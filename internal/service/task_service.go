package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"portal/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateTaskRequest struct {
	Title          string  `json:"title" binding:"required"`
	Description    string  `json:"description"`
	StartDate      *string `json:"start_date"` // RFC 3339
	Deadline       *string `json:"deadline"`   // RFC 3339
	DeadlineAllDay bool    `json:"deadline_all_day"`
	Urgency        bool    `json:"urgency"`
	Important      bool    `json:"important"`
	OwnerID        *string `json:"owner_id"` // defaults to the caller
	GroupID        *string `json:"group_id"`
	CompanyID      *string `json:"company_id"`
}

type UpdateTaskRequest struct {
	Title          *string `json:"title"`
	Description    *string `json:"description"`
	StartDate      *string `json:"start_date"`
	Deadline       *string `json:"deadline"`
	DeadlineAllDay *bool   `json:"deadline_all_day"`
	Urgency        *bool   `json:"urgency"`
	Important      *bool   `json:"important"`
	CompanyID      *string `json:"company_id"`
}

type UpdateTaskStatusRequest struct {
	Status  string `json:"status" binding:"required,oneof=new received on_process pending completed loose_end"`
	Comment string `json:"comment"`
}

// TaskService owns tasks, their status history and group assignment.
type TaskService interface {
	Create(ctx context.Context, req CreateTaskRequest, actor uuid.UUID) (*model.Task, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	ListForUser(ctx context.Context, userID uuid.UUID, includeCompleted bool) ([]model.Task, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateTaskRequest) (*model.Task, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateTaskStatusRequest, actor uuid.UUID) (*model.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type taskService struct {
	db            *gorm.DB
	notifications NotificationService
}

func NewTaskService(db *gorm.DB, notifications NotificationService) TaskService {
	return &taskService{db: db, notifications: notifications}
}

func parseOptionalRFC3339(field string, value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be RFC 3339", ErrValidation, field)
	}
	return &t, nil
}

func (s *taskService) Create(ctx context.Context, req CreateTaskRequest, actor uuid.UUID) (*model.Task, error) {
	startDate, err := parseOptionalRFC3339("start_date", req.StartDate)
	if err != nil {
		return nil, err
	}
	deadline, err := parseOptionalRFC3339("deadline", req.Deadline)
	if err != nil {
		return nil, err
	}

	task := model.Task{
		Title:          req.Title,
		Description:    req.Description,
		StartDate:      startDate,
		Deadline:       deadline,
		DeadlineAllDay: req.DeadlineAllDay,
		Urgency:        req.Urgency,
		Important:      req.Important,
		Status:         model.TaskStatusNew,
		OwnerID:        actor,
	}
	if req.OwnerID != nil {
		ownerID, err := uuid.Parse(*req.OwnerID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid owner id", ErrValidation)
		}
		task.OwnerID = ownerID
	}
	var group *model.Group
	if req.GroupID != nil {
		groupID, err := uuid.Parse(*req.GroupID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid group id", ErrValidation)
		}
		group = &model.Group{}
		if err := s.db.WithContext(ctx).Preload("Members").First(group, "id = ?", groupID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: group", ErrNotFound)
			}
			return nil, fmt.Errorf("failed to fetch group: %w", err)
		}
		task.GroupID = &groupID
	}
	if req.CompanyID != nil {
		companyID, err := uuid.Parse(*req.CompanyID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid company id", ErrValidation)
		}
		task.CompanyID = &companyID
	}

	if err := s.db.WithContext(ctx).Create(&task).Error; err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	if group != nil {
		memberIDs := make([]uuid.UUID, 0, len(group.Members))
		for _, m := range group.Members {
			if m.ID != actor {
				memberIDs = append(memberIDs, m.ID)
			}
		}
		if err := s.notifications.NotifyMany(ctx, memberIDs,
			fmt.Sprintf("New task for %s: %s", group.Name, task.Title), "/tasks"); err != nil {
			log.Println("failed to notify group members:", err)
		}
	}
	if task.OwnerID != actor {
		if err := s.notifications.Notify(ctx, task.OwnerID,
			fmt.Sprintf("You were assigned a task: %s", task.Title), "/tasks"); err != nil {
			log.Println("failed to notify task owner:", err)
		}
	}
	return &task, nil
}

func (s *taskService) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	if err := s.db.WithContext(ctx).
		Preload("Owner").Preload("Group").Preload("Company").
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("created_at") }).
		Preload("History.ChangedBy").
		First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: task", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch task: %w", err)
	}
	return &task, nil
}

// ListForUser returns the user's own tasks plus tasks assigned to any group
// the user belongs to.
func (s *taskService) ListForUser(ctx context.Context, userID uuid.UUID, includeCompleted bool) ([]model.Task, error) {
	var tasks []model.Task
	db := s.db.WithContext(ctx).
		Preload("Owner").Preload("Group").
		Where("owner_id = ? OR group_id IN (SELECT group_id FROM group_members WHERE user_id = ?)", userID, userID)
	if !includeCompleted {
		db = db.Where("completed = false")
	}
	if err := db.Order("urgency DESC, important DESC, deadline NULLS LAST").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

func (s *taskService) Update(ctx context.Context, id uuid.UUID, req UpdateTaskRequest) (*model.Task, error) {
	var task model.Task
	if err := s.db.WithContext(ctx).First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: task", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch task: %w", err)
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.StartDate != nil {
		startDate, err := parseOptionalRFC3339("start_date", req.StartDate)
		if err != nil {
			return nil, err
		}
		task.StartDate = startDate
	}
	if req.Deadline != nil {
		deadline, err := parseOptionalRFC3339("deadline", req.Deadline)
		if err != nil {
			return nil, err
		}
		task.Deadline = deadline
	}
	if req.DeadlineAllDay != nil {
		task.DeadlineAllDay = *req.DeadlineAllDay
	}
	if req.Urgency != nil {
		task.Urgency = *req.Urgency
	}
	if req.Important != nil {
		task.Important = *req.Important
	}
	if req.CompanyID != nil {
		companyID, err := uuid.Parse(*req.CompanyID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid company id", ErrValidation)
		}
		task.CompanyID = &companyID
	}

	if err := s.db.WithContext(ctx).Save(&task).Error; err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return &task, nil
}

// statusChangeRecipients returns who hears about a task status change: the
// owner plus every admin, minus the actor and duplicates.
func statusChangeRecipients(ownerID, actor uuid.UUID, adminIDs []uuid.UUID) []uuid.UUID {
	seen := map[uuid.UUID]bool{actor: true}
	var recipients []uuid.UUID
	for _, id := range append([]uuid.UUID{ownerID}, adminIDs...) {
		if !seen[id] {
			seen[id] = true
			recipients = append(recipients, id)
		}
	}
	return recipients
}

// UpdateStatus records the transition in the task's history and notifies the
// owner and the admins when somebody else moved the task.
func (s *taskService) UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateTaskStatusRequest, actor uuid.UUID) (*model.Task, error) {
	if req.Status == model.TaskStatusLooseEnd && req.Comment == "" {
		return nil, fmt.Errorf("%w: loose_end requires a comment", ErrValidation)
	}
	var task model.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: task", ErrNotFound)
			}
			return fmt.Errorf("failed to fetch task: %w", err)
		}

		history := model.TaskHistory{
			TaskID:      task.ID,
			ChangedByID: actor,
			StatusFrom:  task.Status,
			StatusTo:    req.Status,
			Comment:     req.Comment,
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to record task history: %w", err)
		}

		now := time.Now().UTC()
		task.Status = req.Status
		task.StatusComments = req.Comment
		task.StatusUpdatedAt = &now
		task.StatusUpdatedBy = &actor
		task.Completed = req.Status == model.TaskStatusCompleted
		if err := tx.Save(&task).Error; err != nil {
			return fmt.Errorf("failed to update task status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var admins []model.User
	if err := s.db.WithContext(ctx).
		Where("role = ? AND is_active = true", model.RoleAdmin).
		Find(&admins).Error; err != nil {
		log.Println("failed to list admins for status notice:", err)
	}
	adminIDs := make([]uuid.UUID, 0, len(admins))
	for _, admin := range admins {
		adminIDs = append(adminIDs, admin.ID)
	}
	recipients := statusChangeRecipients(task.OwnerID, actor, adminIDs)
	if err := s.notifications.NotifyMany(ctx, recipients,
		fmt.Sprintf("Task %q moved to %s", task.Title, req.Status), "/tasks"); err != nil {
		log.Println("failed to notify about status change:", err)
	}
	return &task, nil
}

func (s *taskService) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Task{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: task", ErrNotFound)
	}
	return nil
}
