package observer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"genesis.ai/internal/observerproto"
	"genesis.ai/internal/sim/world"
)

type Server struct {
	world *world.World
	log   logrus.FieldLogger

	upgrader websocket.Upgrader
	nextID   atomic.Uint64
}

func NewServer(w *world.World, logger logrus.FieldLogger) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Server{
		world: w,
		log:   logger.WithField("component", "observer"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) BootstrapHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !IsLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		st, err := s.world.RequestState(ctx, false)
		if err != nil {
			http.Error(rw, err.Error(), http.StatusServiceUnavailable)
			return
		}

		tune := s.world.Tuning()
		resp := observerproto.BootstrapResponse{
			ProtocolVersion: observerproto.Version,
			WorldID:         st.WorldID,
			RunID:           s.world.RunID(),
			Tick:            st.Tick,
			WorldParams: observerproto.WorldParams{
				TickRateHz:        tune.TickRateHz,
				SimSecondsPerTick: tune.SimSecondsPerTick(),
				Width:             st.Width,
				Height:            st.Height,
				DayLength:         st.Clock.DayLength,
				Seed:              s.world.Seed(),
			},
			Terrain:        st.Terrain,
			CatalogsDigest: s.world.Catalogs().Digest(),
		}

		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(resp)
	}
}

// WSHandler upgrades a loopback client, waits for SUBSCRIBE and then streams
// the world's TICK frames until either side goes away.
func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !IsLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sub, err := readSubscribe(conn, subscribeTimeout)
		if err != nil {
			closeWith(conn, websocket.ClosePolicyViolation, "expected SUBSCRIBE")
			return
		}

		sess := &session{
			id:     fmt.Sprintf("O%d", s.nextID.Add(1)),
			conn:   conn,
			frames: make(chan []byte, frameBuffer),
		}
		sess.log = s.log.WithField("session", sess.id)

		select {
		case s.world.ObserverJoin() <- world.ObserverJoinRequest{SessionID: sess.id, TickOut: sess.frames, AgentDetail: sub.AgentDetail}:
		default:
			closeWith(conn, websocket.CloseTryAgainLater, "server busy")
			return
		}
		defer func() {
			select {
			case s.world.ObserverLeave() <- sess.id:
			default:
				// World loop is stopping.
			}
		}()
		sess.log.Debug("observer connected")

		ctx, cancel := context.WithCancel(r.Context())
		writerDone := make(chan error, 1)
		go func() { writerDone <- sess.writeFrames(ctx) }()

		sess.readUpdates(s.world.ObserverSubscribe())
		cancel()
		closeWith(conn, websocket.CloseNormalClosure, "bye")

		select {
		case err := <-writerDone:
			if err != nil && !errors.Is(err, context.Canceled) {
				sess.log.WithError(err).Debug("observer write failed")
			}
		case <-time.After(500 * time.Millisecond):
		}
		sess.log.Debug("observer disconnected")
	}
}

const (
	subscribeTimeout = 5 * time.Second
	idleTimeout      = 60 * time.Second
	writeTimeout     = 5 * time.Second
	frameBuffer      = 8
)

type session struct {
	id     string
	conn   *websocket.Conn
	frames chan []byte // closed by the world loop when the session ends
	log    logrus.FieldLogger
}

// writeFrames forwards TICK frames to the socket. A closed frames channel
// means the world dropped the session, so the socket is closed too.
func (s *session) writeFrames(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case b, ok := <-s.frames:
			if !ok {
				_ = s.conn.Close()
				return nil
			}
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return err
			}
		}
	}
}

// readUpdates applies re-sent SUBSCRIBE messages until the client goes away
// or stays silent past the idle timeout.
func (s *session) readUpdates(updates chan<- world.ObserverSubscribeRequest) {
	for {
		sub, err := readSubscribe(s.conn, idleTimeout)
		if errors.Is(err, errBadSubscribe) {
			continue
		}
		if err != nil {
			return
		}
		select {
		case updates <- world.ObserverSubscribeRequest{SessionID: s.id, AgentDetail: sub.AgentDetail}:
		default:
			// Dropped under load; the client may resend.
		}
	}
}

var errBadSubscribe = errors.New("not a SUBSCRIBE message")

func readSubscribe(conn *websocket.Conn, timeout time.Duration) (observerproto.SubscribeMsg, error) {
	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return observerproto.SubscribeMsg{}, err
	}
	sub, ok := parseSubscribe(msg)
	if !ok {
		return sub, errBadSubscribe
	}
	return sub, nil
}

func closeWith(conn *websocket.Conn, code int, text string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(time.Second))
}

func parseSubscribe(msg []byte) (observerproto.SubscribeMsg, bool) {
	var sub observerproto.SubscribeMsg
	if err := json.Unmarshal(msg, &sub); err != nil {
		return sub, false
	}
	return sub, sub.Type == observerproto.TypeSubscribe && sub.ProtocolVersion == observerproto.Version
}

// IsLoopbackRemote reports whether an http.Request.RemoteAddr is a loopback address.
func IsLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
