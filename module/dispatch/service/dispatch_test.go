package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/Bytix-in/Prana-AI/module/dispatch/domain"
)

type mockDispatchRepo struct {
	insertFn           func(ctx context.Context, d *domain.Dispatch) error
	getFn              func(ctx context.Context, id string) (*domain.Dispatch, error)
	updateStatusFn     func(ctx context.Context, id string, status domain.DispatchStatus) error
	updatePriorityFn   func(ctx context.Context, id string, priority domain.Priority) error
	insertAttachmentFn func(ctx context.Context, a *domain.Attachment) error
	listAttachmentsFn  func(ctx context.Context, dispatchID string) ([]domain.Attachment, error)
}

func (m *mockDispatchRepo) Insert(ctx context.Context, d *domain.Dispatch) error {
	return m.insertFn(ctx, d)
}

func (m *mockDispatchRepo) Get(ctx context.Context, id string) (*domain.Dispatch, error) {
	return m.getFn(ctx, id)
}

func (m *mockDispatchRepo) UpdateStatus(ctx context.Context, id string, status domain.DispatchStatus) error {
	return m.updateStatusFn(ctx, id, status)
}

func (m *mockDispatchRepo) UpdatePriority(ctx context.Context, id string, priority domain.Priority) error {
	return m.updatePriorityFn(ctx, id, priority)
}

func (m *mockDispatchRepo) InsertAttachment(ctx context.Context, a *domain.Attachment) error {
	return m.insertAttachmentFn(ctx, a)
}

func (m *mockDispatchRepo) ListAttachments(ctx context.Context, dispatchID string) ([]domain.Attachment, error) {
	return m.listAttachmentsFn(ctx, dispatchID)
}

type mockAlertPublisher struct {
	publishAlertFn func(ctx context.Context, alert *domain.DispatchAlert) error
	calls          []*domain.DispatchAlert
}

func (m *mockAlertPublisher) PublishAlert(ctx context.Context, alert *domain.DispatchAlert) error {
	m.calls = append(m.calls, alert)
	if m.publishAlertFn != nil {
		return m.publishAlertFn(ctx, alert)
	}
	return nil
}

type mockTracker struct {
	trackFn    func(id string, origin, destination domain.GeoPoint) (domain.TrackingSnapshot, error)
	snapshotFn func(id string) (domain.TrackingSnapshot, error)
	cancelFn   func(id string) error
}

func (m *mockTracker) Track(id string, origin, destination domain.GeoPoint) (domain.TrackingSnapshot, error) {
	return m.trackFn(id, origin, destination)
}

func (m *mockTracker) Snapshot(id string) (domain.TrackingSnapshot, error) {
	return m.snapshotFn(id)
}

func (m *mockTracker) Cancel(id string) error {
	return m.cancelFn(id)
}

type mockResolver struct {
	addr string
	err  error
}

func (m *mockResolver) ResolveAddress(_ context.Context, _ domain.GeoPoint) (string, error) {
	return m.addr, m.err
}

type mockStore struct {
	putFn func(ctx context.Context, key, contentType string, r io.Reader) (int64, error)
}

func (m *mockStore) Put(ctx context.Context, key, contentType string, r io.Reader) (int64, error) {
	return m.putFn(ctx, key, contentType, r)
}

func (m *mockStore) Open(_ context.Context, _ string) (io.ReadCloser, error) {
	return nil, errors.New("not implemented")
}

var testCatalog = []domain.AmbulanceType{
	{ID: "mo-ambulance", Name: "Mo Ambulance (Govt.)"},
	{ID: "red-ambulance", Name: "Red Ambulance"},
}

func newTestService(repo *mockDispatchRepo, alerts *mockAlertPublisher, tr *mockTracker, opts DispatchOptions) *DispatchService {
	if opts.Catalog == nil {
		opts.Catalog = testCatalog
	}
	if opts.Offset == 0 {
		opts.Offset = DefaultDispatchOffset
	}
	svc := NewDispatchService(repo, alerts, tr, opts)
	svc.newID = func() string { return "D1" }
	svc.now = func() time.Time { return time.Unix(1715003456, 0) }
	return svc
}

func validRequest() *domain.DispatchRequest {
	return &domain.DispatchRequest{
		AmbulanceType: "mo-ambulance",
		Patient:       domain.Patient{Name: "Asha", Age: 42, Condition: "chest pain"},
		Pickup:        domain.GeoPoint{Lat: 20.30, Lon: 85.82},
	}
}

func TestRequestAmbulance_Success(t *testing.T) {
	var inserted *domain.Dispatch
	repo := &mockDispatchRepo{
		insertFn: func(_ context.Context, d *domain.Dispatch) error {
			inserted = d
			return nil
		},
	}
	var trackedFrom, trackedTo domain.GeoPoint
	tr := &mockTracker{
		trackFn: func(id string, origin, destination domain.GeoPoint) (domain.TrackingSnapshot, error) {
			trackedFrom, trackedTo = origin, destination
			return domain.TrackingSnapshot{DispatchID: id, State: domain.TrackingActive}, nil
		},
	}
	svc := newTestService(repo, &mockAlertPublisher{}, tr, DispatchOptions{Geocoder: &mockResolver{addr: "Janpath"}})

	d, err := svc.RequestAmbulance(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inserted == nil {
		t.Fatal("expected Insert to be called")
	}
	if d.ID != "D1" {
		t.Errorf("expected D1, got %s", d.ID)
	}
	if d.Priority != domain.PriorityNonEmergency {
		t.Errorf("expected default priority, got %s", d.Priority)
	}
	if d.Status != domain.StatusEnRoute {
		t.Errorf("expected en_route, got %s", d.Status)
	}
	if d.PickupAddress != "Janpath" {
		t.Errorf("expected Janpath, got %q", d.PickupAddress)
	}
	wantOrigin := domain.GeoPoint{Lat: 20.32, Lon: 85.84}
	if !nearPoint(trackedFrom, wantOrigin) {
		t.Errorf("expected origin %v, got %v", wantOrigin, trackedFrom)
	}
	if trackedTo != (domain.GeoPoint{Lat: 20.30, Lon: 85.82}) {
		t.Errorf("expected destination at pickup, got %v", trackedTo)
	}
	if d.TotalDistanceKm < 2.9 || d.TotalDistanceKm > 3.2 {
		t.Errorf("expected ~3km, got %f", d.TotalDistanceKm)
	}
}

func nearPoint(a, b domain.GeoPoint) bool {
	const eps = 1e-9
	dLat, dLon := a.Lat-b.Lat, a.Lon-b.Lon
	return dLat < eps && dLat > -eps && dLon < eps && dLon > -eps
}

func TestRequestAmbulance_ExplicitOrigin(t *testing.T) {
	repo := &mockDispatchRepo{insertFn: func(_ context.Context, _ *domain.Dispatch) error { return nil }}
	origin := domain.GeoPoint{Lat: 20.35, Lon: 85.80}
	tr := &mockTracker{
		trackFn: func(_ string, o, _ domain.GeoPoint) (domain.TrackingSnapshot, error) {
			if o != origin {
				t.Errorf("expected origin %v, got %v", origin, o)
			}
			return domain.TrackingSnapshot{State: domain.TrackingActive}, nil
		},
	}
	svc := newTestService(repo, &mockAlertPublisher{}, tr, DispatchOptions{})

	req := validRequest()
	req.Origin = &origin
	if _, err := svc.RequestAmbulance(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRequestAmbulance_GeocoderErrorIsNotFatal(t *testing.T) {
	repo := &mockDispatchRepo{insertFn: func(_ context.Context, _ *domain.Dispatch) error { return nil }}
	tr := &mockTracker{
		trackFn: func(_ string, _, _ domain.GeoPoint) (domain.TrackingSnapshot, error) {
			return domain.TrackingSnapshot{State: domain.TrackingActive}, nil
		},
	}
	svc := newTestService(repo, &mockAlertPublisher{}, tr, DispatchOptions{Geocoder: &mockResolver{err: errors.New("quota")}})

	d, err := svc.RequestAmbulance(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.PickupAddress != "" {
		t.Errorf("expected empty address, got %q", d.PickupAddress)
	}
}

func TestRequestAmbulance_DegenerateRouteArrives(t *testing.T) {
	repo := &mockDispatchRepo{insertFn: func(_ context.Context, _ *domain.Dispatch) error { return nil }}
	tr := &mockTracker{
		trackFn: func(id string, _, _ domain.GeoPoint) (domain.TrackingSnapshot, error) {
			return domain.TrackingSnapshot{DispatchID: id, State: domain.TrackingArrived}, nil
		},
	}
	svc := newTestService(repo, &mockAlertPublisher{}, tr, DispatchOptions{})

	req := validRequest()
	req.Origin = &req.Pickup
	d, err := svc.RequestAmbulance(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Status != domain.StatusArrived {
		t.Errorf("expected arrived, got %s", d.Status)
	}
	if d.TotalDistanceKm != 0 {
		t.Errorf("expected 0 distance, got %f", d.TotalDistanceKm)
	}
}

func TestRequestAmbulance_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *domain.DispatchRequest)
		wantErr error
	}{
		{"unknown type", func(r *domain.DispatchRequest) { r.AmbulanceType = "hovercraft" }, domain.ErrUnknownAmbulanceType},
		{"missing name", func(r *domain.DispatchRequest) { r.Patient.Name = "  " }, domain.ErrInvalidRequest},
		{"missing condition", func(r *domain.DispatchRequest) { r.Patient.Condition = "" }, domain.ErrInvalidRequest},
		{"negative age", func(r *domain.DispatchRequest) { r.Patient.Age = -1 }, domain.ErrInvalidRequest},
		{"bad priority", func(r *domain.DispatchRequest) { r.Priority = "whenever" }, domain.ErrInvalidRequest},
		{"bad pickup", func(r *domain.DispatchRequest) { r.Pickup.Lat = 95 }, domain.ErrInvalidCoordinate},
		{"offset leaves range", func(r *domain.DispatchRequest) { r.Pickup.Lat = 89.99 }, domain.ErrInvalidCoordinate},
		{"bad origin", func(r *domain.DispatchRequest) { r.Origin = &domain.GeoPoint{Lat: 0, Lon: 200} }, domain.ErrInvalidCoordinate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockDispatchRepo{
				insertFn: func(_ context.Context, _ *domain.Dispatch) error {
					t.Fatal("Insert should not be called")
					return nil
				},
			}
			svc := newTestService(repo, &mockAlertPublisher{}, &mockTracker{}, DispatchOptions{})

			req := validRequest()
			tt.mutate(req)
			_, err := svc.RequestAmbulance(context.Background(), req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestRequestAmbulance_RepoError(t *testing.T) {
	repo := &mockDispatchRepo{
		insertFn: func(_ context.Context, _ *domain.Dispatch) error { return errors.New("db error") },
	}
	tr := &mockTracker{
		trackFn: func(_ string, _, _ domain.GeoPoint) (domain.TrackingSnapshot, error) {
			t.Fatal("Track should not be called when save fails")
			return domain.TrackingSnapshot{}, nil
		},
	}
	svc := newTestService(repo, &mockAlertPublisher{}, tr, DispatchOptions{})

	if _, err := svc.RequestAmbulance(context.Background(), validRequest()); err == nil {
		t.Fatal("expected error")
	}
}

func TestRequestAmbulance_TrackErrorCancelsRecord(t *testing.T) {
	var status domain.DispatchStatus
	repo := &mockDispatchRepo{
		insertFn: func(_ context.Context, _ *domain.Dispatch) error { return nil },
		updateStatusFn: func(_ context.Context, _ string, s domain.DispatchStatus) error {
			status = s
			return nil
		},
	}
	tr := &mockTracker{
		trackFn: func(_ string, _, _ domain.GeoPoint) (domain.TrackingSnapshot, error) {
			return domain.TrackingSnapshot{}, domain.ErrRunExists
		},
	}
	svc := newTestService(repo, &mockAlertPublisher{}, tr, DispatchOptions{})

	_, err := svc.RequestAmbulance(context.Background(), validRequest())
	if !errors.Is(err, domain.ErrRunExists) {
		t.Fatalf("expected ErrRunExists, got %v", err)
	}
	if status != domain.StatusCancelled {
		t.Errorf("expected record cancelled, got %q", status)
	}
}

func openDispatch(status domain.DispatchStatus) *domain.Dispatch {
	return &domain.Dispatch{
		ID:       "D1",
		Priority: domain.PriorityUrgent,
		Status:   status,
		Pickup:   domain.GeoPoint{Lat: 20.30, Lon: 85.82},
		Origin:   domain.GeoPoint{Lat: 20.32, Lon: 85.84},
	}
}

func TestCancelDispatch_Success(t *testing.T) {
	var status domain.DispatchStatus
	repo := &mockDispatchRepo{
		getFn: func(_ context.Context, _ string) (*domain.Dispatch, error) {
			return openDispatch(domain.StatusEnRoute), nil
		},
		updateStatusFn: func(_ context.Context, _ string, s domain.DispatchStatus) error {
			status = s
			return nil
		},
	}
	mid := domain.GeoPoint{Lat: 20.31, Lon: 85.83}
	tr := &mockTracker{
		cancelFn: func(_ string) error { return nil },
		snapshotFn: func(_ string) (domain.TrackingSnapshot, error) {
			return domain.TrackingSnapshot{State: domain.TrackingCancelled, Last: domain.TickResult{Position: mid}}, nil
		},
	}
	alerts := &mockAlertPublisher{}
	svc := newTestService(repo, alerts, tr, DispatchOptions{})

	d, err := svc.CancelDispatch(context.Background(), "D1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Status != domain.StatusCancelled || status != domain.StatusCancelled {
		t.Errorf("expected cancelled, got %s / %s", d.Status, status)
	}
	if len(alerts.calls) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts.calls))
	}
	if alerts.calls[0].Event != domain.AlertCancelled {
		t.Errorf("expected cancelled alert, got %s", alerts.calls[0].Event)
	}
	if alerts.calls[0].Location != mid {
		t.Errorf("expected last position %v, got %v", mid, alerts.calls[0].Location)
	}
}

func TestCancelDispatch_RunMissing(t *testing.T) {
	repo := &mockDispatchRepo{
		getFn: func(_ context.Context, _ string) (*domain.Dispatch, error) {
			return openDispatch(domain.StatusEnRoute), nil
		},
		updateStatusFn: func(_ context.Context, _ string, _ domain.DispatchStatus) error { return nil },
	}
	tr := &mockTracker{
		cancelFn: func(_ string) error { return domain.ErrRunNotFound },
		snapshotFn: func(_ string) (domain.TrackingSnapshot, error) {
			return domain.TrackingSnapshot{}, domain.ErrRunNotFound
		},
	}
	alerts := &mockAlertPublisher{}
	svc := newTestService(repo, alerts, tr, DispatchOptions{})

	if _, err := svc.CancelDispatch(context.Background(), "D1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alerts.calls[0].Location != openDispatch("").Origin {
		t.Errorf("expected origin as alert location, got %v", alerts.calls[0].Location)
	}
}

func TestCancelDispatch_Closed(t *testing.T) {
	for _, status := range []domain.DispatchStatus{domain.StatusArrived, domain.StatusCancelled} {
		t.Run(string(status), func(t *testing.T) {
			repo := &mockDispatchRepo{
				getFn: func(_ context.Context, _ string) (*domain.Dispatch, error) {
					return openDispatch(status), nil
				},
			}
			svc := newTestService(repo, &mockAlertPublisher{}, &mockTracker{}, DispatchOptions{})

			if _, err := svc.CancelDispatch(context.Background(), "D1"); !errors.Is(err, domain.ErrDispatchClosed) {
				t.Errorf("expected ErrDispatchClosed, got %v", err)
			}
		})
	}
}

func TestCancelDispatch_ArrivedMeanwhile(t *testing.T) {
	repo := &mockDispatchRepo{
		getFn: func(_ context.Context, _ string) (*domain.Dispatch, error) {
			return openDispatch(domain.StatusEnRoute), nil
		},
		updateStatusFn: func(_ context.Context, _ string, _ domain.DispatchStatus) error {
			t.Fatal("UpdateStatus should not be called")
			return nil
		},
	}
	tr := &mockTracker{cancelFn: func(_ string) error { return domain.ErrAlreadyCompleted }}
	svc := newTestService(repo, &mockAlertPublisher{}, tr, DispatchOptions{})

	if _, err := svc.CancelDispatch(context.Background(), "D1"); !errors.Is(err, domain.ErrDispatchClosed) {
		t.Errorf("expected ErrDispatchClosed, got %v", err)
	}
}

func TestRaiseSOS_Success(t *testing.T) {
	var priority domain.Priority
	repo := &mockDispatchRepo{
		getFn: func(_ context.Context, _ string) (*domain.Dispatch, error) {
			return openDispatch(domain.StatusEnRoute), nil
		},
		updatePriorityFn: func(_ context.Context, _ string, p domain.Priority) error {
			priority = p
			return nil
		},
	}
	alerts := &mockAlertPublisher{}
	svc := newTestService(repo, alerts, &mockTracker{}, DispatchOptions{})

	d, err := svc.RaiseSOS(context.Background(), "D1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Priority != domain.PriorityCritical || priority != domain.PriorityCritical {
		t.Errorf("expected critical, got %s / %s", d.Priority, priority)
	}
	if len(alerts.calls) != 1 || alerts.calls[0].Event != domain.AlertSOS {
		t.Fatalf("expected one sos alert, got %+v", alerts.calls)
	}
	if alerts.calls[0].Priority != domain.PriorityCritical {
		t.Errorf("expected critical alert, got %s", alerts.calls[0].Priority)
	}
}

func TestRaiseSOS_PublishError(t *testing.T) {
	repo := &mockDispatchRepo{
		getFn: func(_ context.Context, _ string) (*domain.Dispatch, error) {
			d := openDispatch(domain.StatusEnRoute)
			d.Priority = domain.PriorityCritical
			return d, nil
		},
		updatePriorityFn: func(_ context.Context, _ string, _ domain.Priority) error {
			t.Fatal("UpdatePriority should not be called for an already critical dispatch")
			return nil
		},
	}
	alerts := &mockAlertPublisher{
		publishAlertFn: func(_ context.Context, _ *domain.DispatchAlert) error { return errors.New("rabbitmq down") },
	}
	svc := newTestService(repo, alerts, &mockTracker{}, DispatchOptions{})

	if _, err := svc.RaiseSOS(context.Background(), "D1"); err == nil {
		t.Fatal("expected error")
	}
}

func TestRaiseSOS_PublishErrorKeepsPriority(t *testing.T) {
	repo := &mockDispatchRepo{
		getFn: func(_ context.Context, _ string) (*domain.Dispatch, error) {
			return openDispatch(domain.StatusEnRoute), nil
		},
		updatePriorityFn: func(_ context.Context, _ string, _ domain.Priority) error {
			t.Fatal("UpdatePriority should not be called when the alert was not sent")
			return nil
		},
	}
	alerts := &mockAlertPublisher{
		publishAlertFn: func(_ context.Context, _ *domain.DispatchAlert) error { return errors.New("rabbitmq down") },
	}
	svc := newTestService(repo, alerts, &mockTracker{}, DispatchOptions{})

	if _, err := svc.RaiseSOS(context.Background(), "D1"); err == nil {
		t.Fatal("expected error")
	}
	if len(alerts.calls) != 1 || alerts.calls[0].Priority != domain.PriorityCritical {
		t.Errorf("expected one critical sos attempt, got %+v", alerts.calls)
	}
}

func TestRaiseSOS_NotFound(t *testing.T) {
	repo := &mockDispatchRepo{
		getFn: func(_ context.Context, _ string) (*domain.Dispatch, error) {
			return nil, domain.ErrDispatchNotFound
		},
	}
	svc := newTestService(repo, &mockAlertPublisher{}, &mockTracker{}, DispatchOptions{})

	if _, err := svc.RaiseSOS(context.Background(), "missing"); !errors.Is(err, domain.ErrDispatchNotFound) {
		t.Errorf("expected ErrDispatchNotFound, got %v", err)
	}
}

func TestHandleArrival(t *testing.T) {
	var status domain.DispatchStatus
	repo := &mockDispatchRepo{
		updateStatusFn: func(_ context.Context, _ string, s domain.DispatchStatus) error {
			status = s
			return nil
		},
		getFn: func(_ context.Context, _ string) (*domain.Dispatch, error) {
			return openDispatch(domain.StatusArrived), nil
		},
	}
	alerts := &mockAlertPublisher{}
	svc := newTestService(repo, alerts, &mockTracker{}, DispatchOptions{})

	pickup := domain.GeoPoint{Lat: 20.30, Lon: 85.82}
	svc.HandleArrival(context.Background(), &domain.TrackingUpdate{
		DispatchID: "D1",
		TickResult: domain.TickResult{Position: pickup, Arrived: true},
	})

	if status != domain.StatusArrived {
		t.Errorf("expected arrived, got %q", status)
	}
	if len(alerts.calls) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts.calls))
	}
	if alerts.calls[0].Event != domain.AlertArrival || alerts.calls[0].Location != pickup {
		t.Errorf("unexpected alert %+v", alerts.calls[0])
	}
}

func TestHandleArrival_UpdateError(t *testing.T) {
	repo := &mockDispatchRepo{
		updateStatusFn: func(_ context.Context, _ string, _ domain.DispatchStatus) error {
			return errors.New("db error")
		},
	}
	alerts := &mockAlertPublisher{}
	svc := newTestService(repo, alerts, &mockTracker{}, DispatchOptions{})

	svc.HandleArrival(context.Background(), &domain.TrackingUpdate{DispatchID: "D1"})
	if len(alerts.calls) != 0 {
		t.Errorf("expected no alert, got %d", len(alerts.calls))
	}
}

func TestAttachReport_Success(t *testing.T) {
	var saved *domain.Attachment
	repo := &mockDispatchRepo{
		getFn: func(_ context.Context, _ string) (*domain.Dispatch, error) {
			return openDispatch(domain.StatusEnRoute), nil
		},
		insertAttachmentFn: func(_ context.Context, a *domain.Attachment) error {
			saved = a
			return nil
		},
	}
	var storedKey string
	store := &mockStore{
		putFn: func(_ context.Context, key, _ string, r io.Reader) (int64, error) {
			storedKey = key
			b, _ := io.ReadAll(r)
			return int64(len(b)), nil
		},
	}
	svc := newTestService(repo, &mockAlertPublisher{}, &mockTracker{}, DispatchOptions{Attachments: store})

	a, err := svc.AttachReport(context.Background(), "D1", `C:\scans\ecg.pdf`, "application/pdf", strings.NewReader("%PDF-1.4"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved == nil {
		t.Fatal("expected InsertAttachment to be called")
	}
	if a.Filename != "ecg.pdf" {
		t.Errorf("expected ecg.pdf, got %s", a.Filename)
	}
	if storedKey != "dispatches/D1/D1-ecg.pdf" || a.Key != storedKey {
		t.Errorf("unexpected key %q / %q", storedKey, a.Key)
	}
	if a.Size != 8 {
		t.Errorf("expected size 8, got %d", a.Size)
	}
}

func TestAttachReport_MissingName(t *testing.T) {
	repo := &mockDispatchRepo{
		getFn: func(_ context.Context, _ string) (*domain.Dispatch, error) {
			return openDispatch(domain.StatusEnRoute), nil
		},
	}
	store := &mockStore{}
	svc := newTestService(repo, &mockAlertPublisher{}, &mockTracker{}, DispatchOptions{Attachments: store})

	_, err := svc.AttachReport(context.Background(), "D1", "", "", strings.NewReader("x"))
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestAmbulanceTypes(t *testing.T) {
	svc := newTestService(&mockDispatchRepo{}, &mockAlertPublisher{}, &mockTracker{}, DispatchOptions{})
	types := svc.AmbulanceTypes()
	if len(types) != 2 || types[0].ID != "mo-ambulance" {
		t.Errorf("unexpected catalog %+v", types)
	}
}
