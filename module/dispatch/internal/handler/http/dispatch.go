package http

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/Bytix-in/Prana-AI/module/dispatch/domain"
	"github.com/Bytix-in/Prana-AI/module/dispatch/simulator"
)

type dispatchService interface {
	AmbulanceTypes() []domain.AmbulanceType
	RequestAmbulance(ctx context.Context, req *domain.DispatchRequest) (*domain.Dispatch, error)
	GetDispatch(ctx context.Context, id string) (*domain.Dispatch, error)
	Tracking(ctx context.Context, id string) (domain.TrackingSnapshot, error)
	CancelDispatch(ctx context.Context, id string) (*domain.Dispatch, error)
	RaiseSOS(ctx context.Context, id string) (*domain.Dispatch, error)
	AttachReport(ctx context.Context, id, filename, contentType string, r io.Reader) (*domain.Attachment, error)
	ListReports(ctx context.Context, id string) ([]domain.Attachment, error)
}

type trackingStream interface {
	Subscribe(id string) (<-chan domain.TrackingUpdate, func(), error)
}

type locationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (l locationRequest) toGeoPoint() domain.GeoPoint {
	return domain.GeoPoint{Lat: l.Latitude, Lon: l.Longitude}
}

type patientRequest struct {
	Name      string `json:"name"`
	Age       int    `json:"age"`
	Condition string `json:"condition"`
}

type createDispatchRequest struct {
	AmbulanceType string           `json:"ambulance_type" binding:"required"`
	Patient       patientRequest   `json:"patient"`
	Priority      string           `json:"priority"`
	Pickup        *locationRequest `json:"pickup" binding:"required"`
	Origin        *locationRequest `json:"origin"`
}

type DispatchHandler struct {
	svc      dispatchService
	stream   trackingStream
	upgrader websocket.Upgrader
}

func NewDispatchHandler(svc dispatchService, stream trackingStream) *DispatchHandler {
	return &DispatchHandler{
		svc:    svc,
		stream: stream,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

func (h *DispatchHandler) Register(r *gin.RouterGroup) {
	r.GET("/ambulance-types", h.ListAmbulanceTypes)
	r.POST("/dispatches", h.CreateDispatch)
	r.GET("/dispatches/:dispatch_id", h.GetDispatch)
	r.DELETE("/dispatches/:dispatch_id", h.CancelDispatch)
	r.GET("/dispatches/:dispatch_id/tracking", h.GetTracking)
	r.GET("/dispatches/:dispatch_id/route", h.GetRoute)
	r.GET("/dispatches/:dispatch_id/stream", h.Stream)
	r.POST("/dispatches/:dispatch_id/sos", h.RaiseSOS)
	r.POST("/dispatches/:dispatch_id/reports", h.UploadReport)
	r.GET("/dispatches/:dispatch_id/reports", h.ListReports)
}

func (h *DispatchHandler) ListAmbulanceTypes(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.AmbulanceTypes())
}

func (h *DispatchHandler) CreateDispatch(c *gin.Context) {
	var body createDispatchRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	req := &domain.DispatchRequest{
		AmbulanceType: body.AmbulanceType,
		Patient: domain.Patient{
			Name:      body.Patient.Name,
			Age:       body.Patient.Age,
			Condition: body.Patient.Condition,
		},
		Priority: domain.Priority(body.Priority),
		Pickup:   body.Pickup.toGeoPoint(),
	}
	if body.Origin != nil {
		origin := body.Origin.toGeoPoint()
		req.Origin = &origin
	}

	d, err := h.svc.RequestAmbulance(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (h *DispatchHandler) GetDispatch(c *gin.Context) {
	d, err := h.svc.GetDispatch(c.Request.Context(), c.Param("dispatch_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *DispatchHandler) CancelDispatch(c *gin.Context) {
	d, err := h.svc.CancelDispatch(c.Request.Context(), c.Param("dispatch_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *DispatchHandler) RaiseSOS(c *gin.Context) {
	d, err := h.svc.RaiseSOS(c.Request.Context(), c.Param("dispatch_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "SOS alert sent", "dispatch": d})
}

func (h *DispatchHandler) GetTracking(c *gin.Context) {
	snap, err := h.svc.Tracking(c.Request.Context(), c.Param("dispatch_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// GetRoute renders the tracked trip as a GeoJSON feature collection with the
// route line, the ambulance's current position and the pickup point.
func (h *DispatchHandler) GetRoute(c *gin.Context) {
	snap, err := h.svc.Tracking(c.Request.Context(), c.Param("dispatch_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, routeFeatures(snap))
}

func routeFeatures(snap domain.TrackingSnapshot) *geojson.FeatureCollection {
	origin := simulator.ToOrb(snap.Origin)
	pickup := simulator.ToOrb(snap.Destination)

	route := geojson.NewFeature(orb.LineString{origin, pickup})
	route.Properties["kind"] = "route"
	route.Properties["total_distance_km"] = snap.TotalDistanceKm

	ambulance := geojson.NewFeature(simulator.ToOrb(snap.Last.Position))
	ambulance.Properties["kind"] = "ambulance"
	ambulance.Properties["state"] = string(snap.State)
	ambulance.Properties["step"] = snap.Last.Step
	ambulance.Properties["remaining_distance_km"] = snap.Last.RemainingDistanceKm
	ambulance.Properties["eta"] = snap.Last.ETA

	target := geojson.NewFeature(pickup)
	target.Properties["kind"] = "pickup"

	fc := geojson.NewFeatureCollection()
	fc.Append(route)
	fc.Append(ambulance)
	fc.Append(target)
	return fc
}

// Stream pushes every tracking update of the dispatch over a WebSocket until
// the run finishes or the client goes away.
func (h *DispatchHandler) Stream(c *gin.Context) {
	id := c.Param("dispatch_id")

	updates, unsubscribe, err := h.stream.Subscribe(id)
	if err != nil {
		writeError(c, err)
		return
	}
	defer unsubscribe()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[%s] websocket upgrade error: %v", id, err)
		return
	}
	defer func() { _ = conn.Close() }()

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case u, ok := <-updates:
			if !ok {
				msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "tracking finished")
				_ = conn.WriteMessage(websocket.CloseMessage, msg)
				return
			}
			if err := conn.WriteJSON(u); err != nil {
				log.Printf("[%s] websocket write error: %v", id, err)
				return
			}
		case <-gone:
			return
		}
	}
}

func (h *DispatchHandler) UploadReport(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file"})
		return
	}
	defer func() { _ = f.Close() }()

	a, err := h.svc.AttachReport(c.Request.Context(), c.Param("dispatch_id"), fh.Filename, fh.Header.Get("Content-Type"), f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *DispatchHandler) ListReports(c *gin.Context) {
	reports, err := h.svc.ListReports(c.Request.Context(), c.Param("dispatch_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrDispatchNotFound), errors.Is(err, domain.ErrRunNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrUnknownAmbulanceType),
		errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrInvalidCoordinate):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrDispatchClosed), errors.Is(err, domain.ErrRunExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Printf("request error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
