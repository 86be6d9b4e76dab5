package service

import (
	"context"
	"errors"
	"testing"

	"portal/internal/model"
	"portal/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeAccountRepo struct {
	repository.UserRepository
	byEmail map[string]*model.User
	admins  []model.User
	created []*model.User
}

func (f *fakeAccountRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAccountRepo) Create(ctx context.Context, user *model.User) error {
	user.ID = uuid.New()
	f.created = append(f.created, user)
	return nil
}

func (f *fakeAccountRepo) ListByRole(ctx context.Context, role string) ([]model.User, error) {
	out := append([]model.User{}, f.admins...)
	for _, u := range f.created {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

type recordingMailer struct {
	welcomeTo       []string
	welcomeName     string
	welcomePassword string
	fail            bool
}

func (m *recordingMailer) SendPasswordReset(to, name, resetURL string) error { return nil }

func (m *recordingMailer) SendWelcome(to, name, tempPassword string) error {
	if m.fail {
		return errors.New("smtp down")
	}
	m.welcomeTo = append(m.welcomeTo, to)
	m.welcomeName = name
	m.welcomePassword = tempPassword
	return nil
}

type recordingNotifier struct {
	NotificationService
	recipients []uuid.UUID
	message    string
	link       string
}

func (n *recordingNotifier) NotifyMany(ctx context.Context, userIDs []uuid.UUID, message, link string) error {
	n.recipients = append(n.recipients, userIDs...)
	n.message = message
	n.link = link
	return nil
}

func TestCreateUserSendsWelcomeAndNotifiesAdmins(t *testing.T) {
	adminA := model.User{ID: uuid.New(), Role: model.RoleAdmin}
	adminB := model.User{ID: uuid.New(), Role: model.RoleAdmin}
	repo := &fakeAccountRepo{
		byEmail: map[string]*model.User{},
		admins:  []model.User{adminA, adminB},
	}
	mail := &recordingMailer{}
	notifier := &recordingNotifier{}
	svc := NewUserService(repo, mail, notifier)

	user, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Email:     "ana.costa@example.com",
		Password:  "initial-pass-123",
		FirstName: "Ana",
		Surname:   "Costa",
		Role:      model.RoleAgent,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if len(mail.welcomeTo) != 1 || mail.welcomeTo[0] != "ana.costa@example.com" {
		t.Fatalf("welcome mail recipients = %v, want the new user", mail.welcomeTo)
	}
	if mail.welcomeName != "Ana Costa" {
		t.Errorf("welcome mail name = %q, want %q", mail.welcomeName, "Ana Costa")
	}
	if mail.welcomePassword != "initial-pass-123" {
		t.Errorf("welcome mail password = %q, want the temporary password", mail.welcomePassword)
	}

	if len(notifier.recipients) != 2 {
		t.Fatalf("notified %d users, want both admins", len(notifier.recipients))
	}
	got := map[uuid.UUID]bool{}
	for _, id := range notifier.recipients {
		got[id] = true
	}
	if !got[adminA.ID] || !got[adminB.ID] {
		t.Errorf("notified %v, want %v and %v", notifier.recipients, adminA.ID, adminB.ID)
	}
	if got[user.ID] {
		t.Errorf("new user %v must not be notified about their own registration", user.ID)
	}
	if notifier.message != "New user registered: Ana Costa" {
		t.Errorf("message = %q", notifier.message)
	}
	if notifier.link != "/users" {
		t.Errorf("link = %q, want /users", notifier.link)
	}
}

func TestCreateUserAdminDoesNotNotifyThemselves(t *testing.T) {
	existing := model.User{ID: uuid.New(), Role: model.RoleAdmin}
	repo := &fakeAccountRepo{
		byEmail: map[string]*model.User{},
		admins:  []model.User{existing},
	}
	notifier := &recordingNotifier{}
	svc := NewUserService(repo, &recordingMailer{}, notifier)

	user, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Email:     "second.admin@example.com",
		Password:  "initial-pass-123",
		FirstName: "Bea",
		Surname:   "Lima",
		Role:      model.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if len(notifier.recipients) != 1 || notifier.recipients[0] != existing.ID {
		t.Fatalf("notified %v, want only the pre-existing admin %v", notifier.recipients, existing.ID)
	}
	for _, id := range notifier.recipients {
		if id == user.ID {
			t.Errorf("new admin %v was notified about their own registration", user.ID)
		}
	}
}

func TestCreateUserSurvivesMailFailure(t *testing.T) {
	admin := model.User{ID: uuid.New(), Role: model.RoleAdmin}
	repo := &fakeAccountRepo{
		byEmail: map[string]*model.User{},
		admins:  []model.User{admin},
	}
	notifier := &recordingNotifier{}
	svc := NewUserService(repo, &recordingMailer{fail: true}, notifier)

	user, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Email:     "carlos@example.com",
		Password:  "initial-pass-123",
		FirstName: "Carlos",
		Surname:   "Melo",
		Role:      model.RoleAgent,
	})
	if err != nil {
		t.Fatalf("CreateUser must not fail when the welcome mail does: %v", err)
	}
	if user == nil || user.ID == uuid.Nil {
		t.Fatal("user was not created")
	}
	if len(repo.created) != 1 {
		t.Fatalf("created %d users, want 1", len(repo.created))
	}
	if len(notifier.recipients) != 1 {
		t.Errorf("admins were not notified after mail failure, got %v", notifier.recipients)
	}
}
