package publisher

import (
	"context"

	"github.com/Bytix-in/Prana-AI/module/dispatch/domain"
)

type TrackingPublisher interface {
	PublishUpdate(ctx context.Context, u *domain.TrackingUpdate) error
}

type AlertPublisher interface {
	PublishAlert(ctx context.Context, alert *domain.DispatchAlert) error
}
