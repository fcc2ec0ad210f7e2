package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Bytix-in/Prana-AI/module/dispatch/domain"
	"github.com/Bytix-in/Prana-AI/module/dispatch/internal/repository/database"
	"github.com/Bytix-in/Prana-AI/module/dispatch/internal/repository/geocoder"
	"github.com/Bytix-in/Prana-AI/module/dispatch/internal/repository/publisher"
	"github.com/Bytix-in/Prana-AI/module/dispatch/internal/repository/storage"
	"github.com/Bytix-in/Prana-AI/module/dispatch/simulator"
)

const (
	// DefaultDispatchOffset places the ambulance this many degrees north-east
	// of the pickup when the request names no origin.
	DefaultDispatchOffset = 0.02

	arrivalMessage = "Ambulance has arrived!"
	sosMessage     = "SOS alert sent! Emergency services have been notified of increased urgency."
	cancelMessage  = "Dispatch cancelled by caller."
)

type tracker interface {
	Track(id string, origin, destination domain.GeoPoint) (domain.TrackingSnapshot, error)
	Snapshot(id string) (domain.TrackingSnapshot, error)
	Cancel(id string) error
}

type DispatchService struct {
	repo        database.DispatchRepository
	alerts      publisher.AlertPublisher
	tracker     tracker
	attachments storage.AttachmentStore
	geocoder    geocoder.AddressResolver
	catalog     map[string]domain.AmbulanceType
	types       []domain.AmbulanceType
	offset      float64
	newID       func() string
	now         func() time.Time
}

type DispatchOptions struct {
	Catalog     []domain.AmbulanceType
	Offset      float64
	Attachments storage.AttachmentStore
	// Geocoder is optional; without it pickup addresses stay empty.
	Geocoder geocoder.AddressResolver
}

func NewDispatchService(repo database.DispatchRepository, alerts publisher.AlertPublisher, tr tracker, opts DispatchOptions) *DispatchService {
	catalog := make(map[string]domain.AmbulanceType, len(opts.Catalog))
	for _, at := range opts.Catalog {
		catalog[at.ID] = at
	}
	return &DispatchService{
		repo:        repo,
		alerts:      alerts,
		tracker:     tr,
		attachments: opts.Attachments,
		geocoder:    opts.Geocoder,
		catalog:     catalog,
		types:       opts.Catalog,
		offset:      opts.Offset,
		newID:       uuid.NewString,
		now:         time.Now,
	}
}

func (s *DispatchService) AmbulanceTypes() []domain.AmbulanceType {
	return s.types
}

// RequestAmbulance records a dispatch and starts simulating the ambulance's
// trip from its origin to the pickup point.
func (s *DispatchService) RequestAmbulance(ctx context.Context, req *domain.DispatchRequest) (*domain.Dispatch, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	origin := req.Pickup.Offset(s.offset)
	if req.Origin != nil {
		origin = *req.Origin
	}
	if err := origin.Validate(); err != nil {
		return nil, fmt.Errorf("origin: %w", err)
	}

	now := s.now()
	d := &domain.Dispatch{
		ID:              s.newID(),
		AmbulanceType:   req.AmbulanceType,
		Patient:         req.Patient,
		Priority:        req.Priority,
		Status:          domain.StatusEnRoute,
		Pickup:          req.Pickup,
		Origin:          origin,
		TotalDistanceKm: simulator.DistanceKm(origin, req.Pickup),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if s.geocoder != nil {
		addr, err := s.geocoder.ResolveAddress(ctx, req.Pickup)
		if err != nil {
			log.Printf("[%s] resolve pickup address error: %v", d.ID, err)
		}
		d.PickupAddress = addr
	}

	if err := s.repo.Insert(ctx, d); err != nil {
		return nil, fmt.Errorf("save dispatch: %w", err)
	}

	snap, err := s.tracker.Track(d.ID, origin, req.Pickup)
	if err != nil {
		if uerr := s.repo.UpdateStatus(ctx, d.ID, domain.StatusCancelled); uerr != nil {
			log.Printf("[%s] mark dispatch cancelled error: %v", d.ID, uerr)
		}
		return nil, fmt.Errorf("start tracking: %w", err)
	}
	if snap.State == domain.TrackingArrived {
		d.Status = domain.StatusArrived
	}

	log.Printf("[%s] %s dispatched for %s (%s), %.2f km away",
		d.ID, d.AmbulanceType, d.Patient.Name, d.Priority, d.TotalDistanceKm)
	return d, nil
}

func (s *DispatchService) validateRequest(req *domain.DispatchRequest) error {
	if _, ok := s.catalog[req.AmbulanceType]; !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownAmbulanceType, req.AmbulanceType)
	}
	req.Patient.Name = strings.TrimSpace(req.Patient.Name)
	req.Patient.Condition = strings.TrimSpace(req.Patient.Condition)
	if req.Patient.Name == "" {
		return fmt.Errorf("%w: patient name is required", domain.ErrInvalidRequest)
	}
	if req.Patient.Condition == "" {
		return fmt.Errorf("%w: medical condition is required", domain.ErrInvalidRequest)
	}
	if req.Patient.Age < 0 || req.Patient.Age > 150 {
		return fmt.Errorf("%w: age must be between 0 and 150", domain.ErrInvalidRequest)
	}
	if req.Priority == "" {
		req.Priority = domain.PriorityNonEmergency
	}
	if !req.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", domain.ErrInvalidRequest, req.Priority)
	}
	if err := req.Pickup.Validate(); err != nil {
		return fmt.Errorf("pickup: %w", err)
	}
	return nil
}

func (s *DispatchService) GetDispatch(ctx context.Context, id string) (*domain.Dispatch, error) {
	return s.repo.Get(ctx, id)
}

func (s *DispatchService) Tracking(_ context.Context, id string) (domain.TrackingSnapshot, error) {
	return s.tracker.Snapshot(id)
}

// CancelDispatch stops the simulated trip and closes the dispatch.
func (s *DispatchService) CancelDispatch(ctx context.Context, id string) (*domain.Dispatch, error) {
	d, err := s.openDispatch(ctx, id)
	if err != nil {
		return nil, err
	}

	location := d.Origin
	err = s.tracker.Cancel(id)
	switch {
	case errors.Is(err, domain.ErrAlreadyCompleted):
		return nil, fmt.Errorf("%w: %s", domain.ErrDispatchClosed, id)
	case errors.Is(err, domain.ErrRunNotFound):
		// run already reaped or lost on restart; close the record anyway
	case err != nil:
		return nil, err
	}
	if snap, err := s.tracker.Snapshot(id); err == nil {
		location = snap.Last.Position
	}

	if err := s.repo.UpdateStatus(ctx, id, domain.StatusCancelled); err != nil {
		return nil, fmt.Errorf("update dispatch status: %w", err)
	}
	d.Status = domain.StatusCancelled

	s.publishAlert(ctx, d, domain.AlertCancelled, location, cancelMessage)
	return d, nil
}

// RaiseSOS alerts the emergency desk and escalates an open dispatch to
// critical priority. The priority is stored only after the alert went out,
// so a failed publish leaves the record unchanged.
func (s *DispatchService) RaiseSOS(ctx context.Context, id string) (*domain.Dispatch, error) {
	d, err := s.openDispatch(ctx, id)
	if err != nil {
		return nil, err
	}

	escalate := d.Priority != domain.PriorityCritical
	d.Priority = domain.PriorityCritical

	if s.alerts != nil {
		alert := s.newAlert(d, domain.AlertSOS, d.Pickup, sosMessage)
		if err := s.alerts.PublishAlert(ctx, alert); err != nil {
			return nil, fmt.Errorf("publish sos: %w", err)
		}
	}

	if escalate {
		if err := s.repo.UpdatePriority(ctx, id, domain.PriorityCritical); err != nil {
			return nil, fmt.Errorf("update dispatch priority: %w", err)
		}
	}
	return d, nil
}

// HandleArrival closes the dispatch once its run reaches the pickup. It is
// registered as the tracker's arrival callback.
func (s *DispatchService) HandleArrival(ctx context.Context, u *domain.TrackingUpdate) {
	if err := s.repo.UpdateStatus(ctx, u.DispatchID, domain.StatusArrived); err != nil {
		log.Printf("[%s] mark dispatch arrived error: %v", u.DispatchID, err)
		return
	}

	d, err := s.repo.Get(ctx, u.DispatchID)
	if err != nil {
		log.Printf("[%s] load dispatch error: %v", u.DispatchID, err)
		return
	}
	s.publishAlert(ctx, d, domain.AlertArrival, u.TickResult.Position, arrivalMessage)
}

// AttachReport stores a medical report for the dispatch.
func (s *DispatchService) AttachReport(ctx context.Context, id, filename, contentType string, r io.Reader) (*domain.Attachment, error) {
	if s.attachments == nil {
		return nil, errors.New("attachment storage not configured")
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}

	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return nil, fmt.Errorf("%w: file name is required", domain.ErrInvalidRequest)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	a := &domain.Attachment{
		ID:          s.newID(),
		DispatchID:  id,
		Filename:    name,
		ContentType: contentType,
		CreatedAt:   s.now(),
	}
	a.Key = fmt.Sprintf("dispatches/%s/%s-%s", id, a.ID, name)

	size, err := s.attachments.Put(ctx, a.Key, contentType, r)
	if err != nil {
		return nil, fmt.Errorf("store report: %w", err)
	}
	a.Size = size

	if err := s.repo.InsertAttachment(ctx, a); err != nil {
		return nil, fmt.Errorf("save attachment: %w", err)
	}
	return a, nil
}

func (s *DispatchService) ListReports(ctx context.Context, id string) ([]domain.Attachment, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListAttachments(ctx, id)
}

func (s *DispatchService) openDispatch(ctx context.Context, id string) (*domain.Dispatch, error) {
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Status.Closed() {
		return nil, fmt.Errorf("%w: %s is %s", domain.ErrDispatchClosed, id, d.Status)
	}
	return d, nil
}

func (s *DispatchService) newAlert(d *domain.Dispatch, event domain.AlertEventType, at domain.GeoPoint, msg string) *domain.DispatchAlert {
	return &domain.DispatchAlert{
		DispatchID: d.ID,
		Event:      event,
		Priority:   d.Priority,
		Location:   at,
		Message:    msg,
		Timestamp:  s.now().Unix(),
	}
}

func (s *DispatchService) publishAlert(ctx context.Context, d *domain.Dispatch, event domain.AlertEventType, at domain.GeoPoint, msg string) {
	if s.alerts == nil {
		return
	}
	if err := s.alerts.PublishAlert(ctx, s.newAlert(d, event, at, msg)); err != nil {
		log.Printf("[%s] publish %s alert error: %v", d.ID, event, err)
	}
}
