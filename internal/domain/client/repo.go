package client

import (
	"context"

	"github.com/google/uuid"
)

type ClientRepository interface {
	Create(ctx context.Context, c *UserClient) error
	Get(ctx context.Context, userID uuid.UUID) (*UserClient, error)
	UpdateNotes(ctx context.Context, userID uuid.UUID, notes *string) error
	SoftDelete(ctx context.Context, userID uuid.UUID) error

	CreateLink(ctx context.Context, l *ClientLink) error
	HasLink(ctx context.Context, clientID, professionalUserID uuid.UUID) (bool, error)
	ListIDsByProfessional(ctx context.Context, professionalUserID uuid.UUID, limit, offset int) ([]uuid.UUID, error)
}
