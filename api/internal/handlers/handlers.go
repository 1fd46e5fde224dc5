package handlers

import (
	"net/http"
	"strconv"
	"time"

	"threat-sentinel/internal/model"
	"threat-sentinel/internal/pipeline"
	"threat-sentinel/internal/text"

	json "github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	maxTextBytes = 1 << 20
	pingInterval = 30 * time.Second
	writeTimeout = 10 * time.Second
	pongTimeout  = 2 * pingInterval
)

// Stream is the read side of the streaming pipeline
type Stream interface {
	Events() []model.NetworkEvent
	Alerts() []model.ThreatAlert
	Stats() model.StreamStats
	Rules() []model.RuleInfo
}

// TextAnalyzer runs the synchronous instruction detection
type TextAnalyzer interface {
	Analyze(text string) text.Result
}

type Handlers struct {
	stream      Stream
	broadcaster *pipeline.Broadcaster
	analyzer    TextAnalyzer
	logger      *logrus.Logger
	upgrader    websocket.Upgrader
}

func NewHandlers(stream Stream, broadcaster *pipeline.Broadcaster, analyzer TextAnalyzer, logger *logrus.Logger) *Handlers {
	return &Handlers{
		stream:      stream,
		broadcaster: broadcaster,
		analyzer:    analyzer,
		logger:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// RegisterRoutes mounts every endpoint on router
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	router.Use(CORSMiddleware)

	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/text/analyze", h.AnalyzeText).Methods("POST", "OPTIONS")

	api.HandleFunc("/stream/events", h.StreamEvents).Methods("GET")
	api.HandleFunc("/stream/alerts", h.StreamAlerts).Methods("GET")

	api.HandleFunc("/events", h.GetEvents).Methods("GET")
	api.HandleFunc("/alerts", h.GetAlerts).Methods("GET")
	api.HandleFunc("/stats", h.GetStats).Methods("GET")
	api.HandleFunc("/rules", h.GetRules).Methods("GET")

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods("GET", "OPTIONS")
}

type analyzeRequest struct {
	Text string `json:"text"`
}

type analyzeResponse struct {
	Instructions []string     `json:"instructions"`
	Sentences    int          `json:"sentences"`
	Matches      []text.Match `json:"matches"`
}

// AnalyzeText returns the sentences of the posted text that read as instructions
func (h *Handlers) AnalyzeText(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTextBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result := h.analyzer.Analyze(req.Text)
	writeJSON(w, http.StatusOK, analyzeResponse{
		Instructions: result.Instructions(),
		Sentences:    result.Sentences,
		Matches:      result.Matches,
	})
}

// GetEvents returns the event window oldest first; ?limit keeps the newest N
func (h *Handlers) GetEvents(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newest(h.stream.Events(), limit))
}

// GetAlerts returns the alert window oldest first; ?limit keeps the newest N
func (h *Handlers) GetAlerts(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	alerts := h.stream.Alerts()
	if rule := r.URL.Query().Get("rule"); rule != "" {
		filtered := make([]model.ThreatAlert, 0, len(alerts))
		for _, a := range alerts {
			if a.Rule == rule {
				filtered = append(filtered, a)
			}
		}
		alerts = filtered
	}
	writeJSON(w, http.StatusOK, newest(alerts, limit))
}

func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.stream.Stats())
}

func (h *Handlers) GetRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.stream.Rules())
}

// StreamEvents pushes every tick update over a WebSocket
func (h *Handlers) StreamEvents(w http.ResponseWriter, r *http.Request) {
	h.streamUpdates(w, r, false)
}

// StreamAlerts pushes only the tick updates that produced an alert
func (h *Handlers) StreamAlerts(w http.ResponseWriter, r *http.Request) {
	h.streamUpdates(w, r, true)
}

func (h *Handlers) streamUpdates(w http.ResponseWriter, r *http.Request, alertsOnly bool) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Errorf("WebSocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	sub := h.broadcaster.Subscribe(100, alertsOnly)
	defer h.broadcaster.Unsubscribe(sub)

	h.logger.Infof("[WebSocket] Client %s connected (alerts only: %v)", sub.ID, alertsOnly)

	_ = conn.SetReadDeadline(time.Now().Add(pongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(map[string]string{"type": "connected", "message": "WebSocket connection established"}); err != nil {
		h.logger.Debugf("WebSocket write error: %v", err)
		return
	}

	// Reads only serve control frames; any error means the client is gone
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case update, ok := <-sub.Channel:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			var payload interface{} = update
			if alertsOnly {
				payload = update.Alert
			}
			if err := conn.WriteJSON(payload); err != nil {
				h.logger.Debugf("WebSocket write error: %v", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, []byte{}); err != nil {
				h.logger.Debugf("Ping failed: %v", err)
				return
			}
		case <-done:
			h.logger.Infof("[WebSocket] Client %s disconnected", sub.ID)
			return
		case <-r.Context().Done():
			return
		}
	}
}

func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
		return 0, false
	}
	return limit, true
}

// newest keeps the last limit items; limit 0 keeps everything
func newest[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[len(items)-limit:]
	}
	return items
}

// CORSMiddleware answers preflight requests and sets CORS headers
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}

// setCORSHeaders allows any origin without credentials
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Requested-With")
}
