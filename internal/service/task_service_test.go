package service

import (
	"testing"

	"github.com/google/uuid"
)

func TestStatusChangeRecipients(t *testing.T) {
	owner := uuid.New()
	actor := uuid.New()
	adminA := uuid.New()
	adminB := uuid.New()

	tests := []struct {
		name   string
		owner  uuid.UUID
		actor  uuid.UUID
		admins []uuid.UUID
		want   []uuid.UUID
	}{
		{
			name:   "someone else moved the task",
			owner:  owner,
			actor:  actor,
			admins: []uuid.UUID{adminA, adminB},
			want:   []uuid.UUID{owner, adminA, adminB},
		},
		{
			name:   "owner moved their own task",
			owner:  owner,
			actor:  owner,
			admins: []uuid.UUID{adminA, adminB},
			want:   []uuid.UUID{adminA, adminB},
		},
		{
			name:   "admin actor is excluded",
			owner:  owner,
			actor:  adminA,
			admins: []uuid.UUID{adminA, adminB},
			want:   []uuid.UUID{owner, adminB},
		},
		{
			name:   "owner who is also an admin appears once",
			owner:  owner,
			actor:  actor,
			admins: []uuid.UUID{owner, adminA},
			want:   []uuid.UUID{owner, adminA},
		},
		{
			name:  "no admins leaves just the owner",
			owner: owner,
			actor: actor,
			want:  []uuid.UUID{owner},
		},
		{
			name:   "sole admin moving their own task notifies nobody",
			owner:  owner,
			actor:  owner,
			admins: []uuid.UUID{owner},
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := statusChangeRecipients(tt.owner, tt.actor, tt.admins)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d recipients %v, want %d %v", len(got), got, len(tt.want), tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("recipient[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
