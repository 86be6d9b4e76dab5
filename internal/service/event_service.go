package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"portal/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateEventRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Location    string `json:"location" binding:"required"`
	EventDate   string `json:"event_date" binding:"required"` // RFC 3339
}

type UpdateEventRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
	EventDate   *string `json:"event_date"` // RFC 3339
}

// CalendarEntry is one dated item on the shared calendar, merged from events,
// task deadlines and user birthdays.
type CalendarEntry struct {
	Kind  string    `json:"kind"` // event | task_deadline | birthday
	Date  time.Time `json:"date"`
	Title string    `json:"title"`
	RefID uuid.UUID `json:"ref_id"`
}

// EventService manages events and assembles the shared calendar.
type EventService interface {
	Create(ctx context.Context, req CreateEventRequest, createdBy uuid.UUID) (*model.Event, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Event, error)
	List(ctx context.Context, from, to *time.Time) ([]model.Event, error)
	Upcoming(ctx context.Context) (*model.Event, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateEventRequest) (*model.Event, error)
	Delete(ctx context.Context, id uuid.UUID) error

	Calendar(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]CalendarEntry, error)
}

type eventService struct {
	db *gorm.DB
}

func NewEventService(db *gorm.DB) EventService {
	return &eventService{db: db}
}

func (s *eventService) Create(ctx context.Context, req CreateEventRequest, createdBy uuid.UUID) (*model.Event, error) {
	eventDate, err := time.Parse(time.RFC3339, req.EventDate)
	if err != nil {
		return nil, fmt.Errorf("%w: event_date must be RFC 3339", ErrValidation)
	}

	event := model.Event{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		EventDate:   eventDate,
		CreatedByID: createdBy,
	}
	if err := s.db.WithContext(ctx).Create(&event).Error; err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return &event, nil
}

func (s *eventService) GetByID(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	var event model.Event
	if err := s.db.WithContext(ctx).Preload("CreatedBy").First(&event, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: event", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch event: %w", err)
	}
	return &event, nil
}

func (s *eventService) List(ctx context.Context, from, to *time.Time) ([]model.Event, error) {
	var events []model.Event
	db := s.db.WithContext(ctx).Preload("CreatedBy")
	if from != nil {
		db = db.Where("event_date >= ?", *from)
	}
	if to != nil {
		db = db.Where("event_date <= ?", *to)
	}
	if err := db.Order("event_date").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// Upcoming returns the next event from now on, or ErrNotFound when the
// calendar is empty ahead.
func (s *eventService) Upcoming(ctx context.Context) (*model.Event, error) {
	var event model.Event
	if err := s.db.WithContext(ctx).
		Where("event_date >= ?", time.Now().UTC()).
		Order("event_date").
		First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no upcoming event", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch upcoming event: %w", err)
	}
	return &event, nil
}

func (s *eventService) Update(ctx context.Context, id uuid.UUID, req UpdateEventRequest) (*model.Event, error) {
	var event model.Event
	if err := s.db.WithContext(ctx).First(&event, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: event", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch event: %w", err)
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Location != nil {
		event.Location = *req.Location
	}
	if req.EventDate != nil {
		eventDate, err := time.Parse(time.RFC3339, *req.EventDate)
		if err != nil {
			return nil, fmt.Errorf("%w: event_date must be RFC 3339", ErrValidation)
		}
		event.EventDate = eventDate
	}

	if err := s.db.WithContext(ctx).Save(&event).Error; err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return &event, nil
}

func (s *eventService) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Event{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete event: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: event", ErrNotFound)
	}
	return nil
}

// Calendar merges events, the user's task deadlines and colleague birthdays
// into one date-ordered list for the requested window.
func (s *eventService) Calendar(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]CalendarEntry, error) {
	var entries []CalendarEntry

	var events []model.Event
	if err := s.db.WithContext(ctx).
		Where("event_date >= ? AND event_date <= ?", from, to).
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}
	for _, e := range events {
		entries = append(entries, CalendarEntry{Kind: "event", Date: e.EventDate, Title: e.Title, RefID: e.ID})
	}

	var tasks []model.Task
	if err := s.db.WithContext(ctx).
		Where("owner_id = ? AND deadline >= ? AND deadline <= ?", userID, from, to).
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch task deadlines: %w", err)
	}
	for _, t := range tasks {
		entries = append(entries, CalendarEntry{Kind: "task_deadline", Date: *t.Deadline, Title: t.Title, RefID: t.ID})
	}

	var users []model.User
	if err := s.db.WithContext(ctx).
		Where("birthday IS NOT NULL AND is_active = true").
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch birthdays: %w", err)
	}
	for _, u := range users {
		// Project the birthday into each year of the window.
		for year := from.Year(); year <= to.Year(); year++ {
			birthday := time.Date(year, u.Birthday.Month(), u.Birthday.Day(), 0, 0, 0, 0, time.UTC)
			if !birthday.Before(from) && !birthday.After(to) {
				entries = append(entries, CalendarEntry{
					Kind:  "birthday",
					Date:  birthday,
					Title: u.FullName(),
					RefID: u.ID,
				})
			}
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})
	return entries, nil
}
