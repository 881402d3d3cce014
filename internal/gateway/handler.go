package gateway

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"chatgate/internal/metrics"
	"chatgate/pkg/interfaces"
	"chatgate/pkg/types"
)

// connectedLiteral is sent once, immediately after admission and before
// any other traffic, so clients can tell an accepted connection from one
// about to be closed with a reason code.
const connectedLiteral = "connected"

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The gateway has no browser-origin trust model; clients are
		// identified by the handshake parameters only.
		return true
	},
	HandshakeTimeout: 10 * time.Second,
}

// Options carries the handler's operational limits.
type Options struct {
	// MaxFrameBytes caps inbound websocket frames.
	MaxFrameBytes int64
	// MaxFieldBytes caps each reply payload field.
	MaxFieldBytes int
	// WriteTimeout bounds individual websocket writes.
	WriteTimeout time.Duration
}

// Handler admits websocket connections and runs a session per admitted
// connection. Handshake validation and admission happen right after the
// upgrade so the reject paths can carry protocol-level close codes.
type Handler struct {
	admission interfaces.AdmissionController
	history   interfaces.ChatHistory
	sampler   interfaces.MediaSampler
	blobs     interfaces.BlobStore
	registry  *Registry
	opts      Options

	// now is replaceable so tests can pin the client-local clock.
	now func() time.Time
}

// NewHandler wires the gateway's collaborators into a websocket handler.
func NewHandler(
	admission interfaces.AdmissionController,
	history interfaces.ChatHistory,
	sampler interfaces.MediaSampler,
	blobs interfaces.BlobStore,
	registry *Registry,
	opts Options,
) *Handler {
	if opts.MaxFrameBytes <= 0 {
		opts.MaxFrameBytes = 100 << 20
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 10 * time.Second
	}
	return &Handler{
		admission: admission,
		history:   history,
		sampler:   sampler,
		blobs:     blobs,
		registry:  registry,
		opts:      opts,
		now:       time.Now,
	}
}

// SetClock replaces the wall clock used to capture client-local time.
func (h *Handler) SetClock(now func() time.Time) { h.now = now }

// HandleWebSocket runs the CONNECTING phase: upgrade, handshake
// validation, admission, the connected acknowledgement, then the session
// loop. Every reject closes with a reason code before any frame traffic.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	hs := types.Handshake{
		ClientID: r.URL.Query().Get("client_id"),
		TimeZone: r.URL.Query().Get("time_zone"),
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	conn := NewConn(ws, h.opts.WriteTimeout)
	conn.SetReadLimit(h.opts.MaxFrameBytes)

	if err := hs.Validate(); err != nil {
		log.Printf("handshake rejected: %v", err)
		conn.CloseWithReason(websocket.CloseInvalidFramePayloadData, string(types.CloseInvalidParams))
		return
	}

	loc, err := time.LoadLocation(hs.TimeZone)
	if err != nil {
		log.Printf("handshake rejected: unknown time zone %q", hs.TimeZone)
		conn.CloseWithReason(websocket.CloseInvalidFramePayloadData, string(types.CloseInvalidParams))
		return
	}

	admitted, err := h.admission.Acquire(r.Context(), hs.ClientID)
	if err != nil {
		log.Printf("[client %s] admission store failure: %v", hs.ClientID, err)
		metrics.AdmissionsTotal.WithLabelValues(metrics.ResultError).Inc()
		conn.CloseWithReason(websocket.CloseInternalServerErr, string(types.CloseUnexpectedFault))
		return
	}
	if !admitted {
		log.Printf("[client %s] rejected: too many connections", hs.ClientID)
		metrics.AdmissionsTotal.WithLabelValues(metrics.ResultRejected).Inc()
		conn.CloseWithReason(websocket.ClosePolicyViolation, string(types.CloseTooManyConnections))
		return
	}
	metrics.AdmissionsTotal.WithLabelValues(metrics.ResultAdmitted).Inc()
	metrics.ConnectionsActive.Inc()

	// From here on the session owns the slot; its teardown is the single
	// place release may happen.
	session := NewSession(
		hs.ClientID, hs.TimeZone,
		h.now().In(loc),
		conn,
		h.admission, h.history, h.sampler, h.blobs,
		h.opts.MaxFieldBytes,
	)

	if err := conn.WriteText(connectedLiteral); err != nil {
		log.Printf("[client %s] failed to send connected acknowledgement: %v", hs.ClientID, err)
		session.Run(r.Context()) // runs straight into teardown, releasing the slot
		return
	}

	log.Printf("[client %s] connected, time zone %s", hs.ClientID, hs.TimeZone)

	h.registry.Add(session)
	defer h.registry.Remove(session)
	session.Run(r.Context())
	log.Printf("[client %s] session closed", hs.ClientID)
}
