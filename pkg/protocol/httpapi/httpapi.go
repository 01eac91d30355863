// Package httpapi serves the local control surface: status, the relay
// registry, the user's profile, and submission of events for publishing.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"github.com/crisdut/gossip/pkg/app"
	"github.com/crisdut/gossip/pkg/app/comms"
	"github.com/crisdut/gossip/pkg/crypto/p256k"
	"github.com/crisdut/gossip/pkg/encoders/event"
	"github.com/crisdut/gossip/pkg/encoders/hex"
	"github.com/crisdut/gossip/pkg/relay"
	"github.com/crisdut/gossip/pkg/utils/chk"
	"github.com/crisdut/gossip/pkg/utils/interrupt"
	"github.com/crisdut/gossip/pkg/utils/log"
	"github.com/crisdut/gossip/pkg/version"
)

// maxEventBody caps a submitted event.
const maxEventBody = 512 * 1024

// Server is the local status API.
type Server struct {
	*app.Runtime

	httpServer *http.Server
}

// New builds the API server over a runtime.
func New(r *app.Runtime) (s *Server) {
	s = &Server{Runtime: r}
	router := chi.NewRouter()
	router.Get("/status", s.handleStatus)
	router.Get("/relays", s.handleRelays)
	router.Get("/profile", s.handleProfile)
	router.Post("/event", s.handleEvent)
	router.Post("/advertise", s.handleAdvertise)
	router.Post("/shutdown", s.handleShutdown)
	router.Post("/restart", s.handleRestart)
	s.httpServer = &http.Server{
		Handler:           cors.Default().Handler(router),
		ReadHeaderTimeout: 7 * time.Second,
		IdleTimeout:       28 * time.Second,
	}
	return
}

// Serve listens on the configured address until Shutdown or a listener
// error.
func (s *Server) Serve() (err error) {
	addr := net.JoinHostPort(s.C.Listen, strconv.Itoa(s.C.Port))
	log.I.F("starting status API at %s", addr)
	var ln net.Listener
	if ln, err = net.Listen("tcp", addr); err != nil {
		return
	}
	s.httpServer.Addr = addr
	if err = s.httpServer.Serve(ln); errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	return
}

// Shutdown drains the server.
func (s *Server) Shutdown() {
	log.W.Ln("shutting down status API")
	chk.E(s.httpServer.Shutdown(s.Ctx))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	chk.E(json.NewEncoder(w).Encode(v))
}

type statusResponse struct {
	Version         string `json:"version"`
	Pubkey          string `json:"pubkey"`
	BytesRead       int64  `json:"bytes_read"`
	EventsPublished int64  `json:"events_published"`
	PublishFailures int64  `json:"publish_failures"`
	ShuttingDown    bool   `json:"shutting_down"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(
		w, http.StatusOK, statusResponse{
			Version:         version.V,
			Pubkey:          hex.Enc(s.Identity.Pub()),
			BytesRead:       s.BytesRead.Load(),
			EventsPublished: s.EventsPublished.Load(),
			PublishFailures: s.PublishFailures.Load(),
			ShuttingDown:    s.ShuttingDown.Load(),
		},
	)
}

type relayResponse struct {
	URL           string `json:"url"`
	Usage         string `json:"usage"`
	Rank          uint8  `json:"rank"`
	SuccessCount  uint64 `json:"success_count"`
	FailureCount  uint64 `json:"failure_count"`
	LastConnected int64  `json:"last_connected,omitempty"`
}

func (s *Server) handleRelays(w http.ResponseWriter, r *http.Request) {
	rls, err := s.Store.FilterRelays(func(*relay.R) bool { return true })
	if chk.E(err) {
		http.Error(w, "registry unavailable", http.StatusInternalServerError)
		return
	}
	out := make([]relayResponse, 0, len(rls))
	for _, rl := range rls {
		out = append(
			out, relayResponse{
				URL:           rl.URL,
				Usage:         relay.FormatUsage(rl.Usage),
				Rank:          rl.Rank,
				SuccessCount:  rl.SuccessCount,
				FailureCount:  rl.FailureCount,
				LastConnected: rl.LastConnected,
			},
		)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.YourProfile()
	if chk.E(err) {
		http.Error(w, "registry unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleEvent accepts a signed event as JSON, verifies it, and queues it
// for routing.
func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	b, err := io.ReadAll(io.LimitReader(r.Body, maxEventBody))
	if chk.E(err) {
		http.Error(w, "read failed", http.StatusBadRequest)
		return
	}
	ev := event.New()
	if err = ev.Unmarshal(b); chk.D(err) {
		http.Error(w, "invalid event", http.StatusBadRequest)
		return
	}
	valid, err := ev.Verify(&p256k.Signer{})
	if chk.D(err) || !valid {
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}
	select {
	case s.ToOverlord <- comms.PostEvent{Ev: ev}:
	case <-s.Ctx.Done():
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"id": ev.IdString()})
}

// handleShutdown triggers the same teardown path as an interrupt signal.
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	s.ShuttingDown.Store(true)
	w.WriteHeader(http.StatusAccepted)
	interrupt.Request()
}

// handleRestart tears down and re-executes the binary in place, for
// picking up a replaced executable without losing the process slot.
func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	s.ShuttingDown.Store(true)
	w.WriteHeader(http.StatusAccepted)
	interrupt.RequestRestart()
}

func (s *Server) handleAdvertise(w http.ResponseWriter, r *http.Request) {
	select {
	case s.ToOverlord <- comms.AdvertiseRelayList{}:
	case <-s.Ctx.Done():
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
