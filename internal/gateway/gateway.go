// Package gateway lets websocket clients join the same line relay as TCP clients.
package gateway

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/wtask/linechat/internal/chat"
)

// Keeper - admission side of the chat server.
type Keeper interface {
	KeepConnection(conn chat.Conn) error
	Len() int
	Cap() int
}

// Logger - the same logging collaborator as chat.Logger.
type Logger = chat.Logger

type handler struct {
	keeper   Keeper
	logger   Logger
	upgrader websocket.Upgrader
}

// NewHandler - builds router serving websocket endpoint /ws and health endpoint /healthz.
// Empty origins keeps same-origin check, "*" allows any origin.
func NewHandler(keeper Keeper, logger Logger, origins []string) http.Handler {
	h := &handler{
		keeper: keeper,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(origins),
		},
	}
	r := mux.NewRouter()
	r.HandleFunc("/ws", h.serveWS).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.serveHealth).Methods(http.MethodGet)
	return r
}

func (h *handler) serveWS(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader has replied already
		if h.logger != nil {
			h.logger.Error("websocket upgrade failed", "addr", r.RemoteAddr, "err", err)
		}
		return
	}
	// admission result is logged by the server
	_ = h.keeper.KeepConnection(NewStream(ws))
}

func (h *handler) serveHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintf(w, "ok %d/%d\n", h.keeper.Len(), h.keeper.Cap())
}

func checkOrigin(origins []string) func(r *http.Request) bool {
	allowed := map[string]struct{}{}
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		if n, ok := normalizeOrigin(o); ok {
			allowed[n] = struct{}{}
		}
	}
	if len(allowed) == 0 {
		// gorilla default: same origin only
		return nil
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			// non-browser client
			return true
		}
		n, ok := normalizeOrigin(origin)
		if !ok {
			return false
		}
		_, exists := allowed[n]
		return exists
	}
}

func normalizeOrigin(origin string) (string, bool) {
	u, err := url.Parse(origin)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host), true
}
