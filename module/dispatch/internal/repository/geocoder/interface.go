package geocoder

import (
	"context"

	"github.com/Bytix-in/Prana-AI/module/dispatch/domain"
)

type AddressResolver interface {
	ResolveAddress(ctx context.Context, p domain.GeoPoint) (string, error)
}
