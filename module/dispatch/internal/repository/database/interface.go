package database

import (
	"context"

	"github.com/Bytix-in/Prana-AI/module/dispatch/domain"
)

type DispatchRepository interface {
	Insert(ctx context.Context, d *domain.Dispatch) error
	Get(ctx context.Context, id string) (*domain.Dispatch, error)
	UpdateStatus(ctx context.Context, id string, status domain.DispatchStatus) error
	UpdatePriority(ctx context.Context, id string, priority domain.Priority) error
	InsertAttachment(ctx context.Context, a *domain.Attachment) error
	ListAttachments(ctx context.Context, dispatchID string) ([]domain.Attachment, error)
}
