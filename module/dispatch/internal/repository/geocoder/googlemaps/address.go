package googlemaps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"github.com/Bytix-in/Prana-AI/module/dispatch/domain"
	"github.com/Bytix-in/Prana-AI/module/dispatch/internal/repository/geocoder"
)

var _ geocoder.AddressResolver = (*AddressResolver)(nil)

type AddressResolver struct {
	client *maps.Client
}

func NewAddressResolver(client *maps.Client) *AddressResolver {
	return &AddressResolver{client: client}
}

// ResolveAddress returns the street name of the first reverse geocoding
// result, or its formatted address when no route component is present.
// An empty string with a nil error means the point has no address.
func (r *AddressResolver) ResolveAddress(ctx context.Context, p domain.GeoPoint) (string, error) {
	resp, err := r.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: p.Lat, Lng: p.Lon},
	})
	if err != nil {
		return "", fmt.Errorf("reverse geocode: %w", err)
	}
	if len(resp) == 0 {
		return "", nil
	}

	for _, comp := range resp[0].AddressComponents {
		for _, t := range comp.Types {
			if t == "route" {
				return comp.LongName, nil
			}
		}
	}
	return resp[0].FormattedAddress, nil
}
