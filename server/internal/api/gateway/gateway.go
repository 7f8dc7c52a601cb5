// Gateway API implementation
package gateway

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"Sealbox/server/internal/pkg/encryption"
	"Sealbox/server/internal/pkg/encryption/modes"
	"Sealbox/server/internal/pkg/encryption/padding"
	"Sealbox/server/internal/pkg/helpers"
	"Sealbox/server/internal/pkg/integrity"
	"Sealbox/server/internal/protocol"
	"Sealbox/server/internal/services/auth"
	"Sealbox/server/internal/services/cipher"
	"Sealbox/server/internal/services/document"
	"Sealbox/server/internal/storage"
)

const requestTimeout = 5 * time.Second

// Server represents the API gateway
type Server struct {
	addr        string
	authSvc     *auth.Service
	cipherSvc   *cipher.Service
	documentSvc *document.Service
	log         *helpers.Logger
	mu          sync.RWMutex
	clients     map[*Client]bool
	broadcast   chan interface{}
	register    chan *Client
	unregister  chan *Client
}

// Client represents a connected WebSocket client
type Client struct {
	userID int64
	conn   *websocket.Conn
	send   chan interface{}
	server *Server
}

// corsMiddleware adds CORS headers to all responses
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		// Handle preflight requests
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// extractToken extracts the token from "Bearer <token>" format
func extractToken(authHeader string) string {
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// New creates a new gateway server
func New(addr string, authSvc *auth.Service, cipherSvc *cipher.Service, documentSvc *document.Service) *Server {
	server := &Server{
		addr:        addr,
		authSvc:     authSvc,
		cipherSvc:   cipherSvc,
		documentSvc: documentSvc,
		log:         helpers.NewLogger("Gateway"),
		clients:     make(map[*Client]bool),
		broadcast:   make(chan interface{}, 1024),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
	}

	documentSvc.SetBroadcastHandler(func(event interface{}) {
		server.Broadcast(event)
	})

	return server
}

// Handler builds the HTTP routes
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()

	// Root endpoint - return OK for health checks
	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Sealbox API Server"))
	}).Methods("GET", "OPTIONS")

	// Auth endpoints
	router.HandleFunc("/api/auth/register", s.handleRegister).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/auth/login", s.handleLogin).Methods("POST", "OPTIONS")

	// Key and cipher endpoints
	router.HandleFunc("/api/keys", s.handleGenerateKey).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/keys/derive", s.handleDeriveKey).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/encrypt", s.handleEncrypt).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/decrypt", s.handleDecrypt).Methods("POST", "OPTIONS")

	// Document endpoints - more specific routes first
	router.HandleFunc("/api/documents/import", s.handleImportDocument).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/documents/{id}/verify", s.handleVerifyDocument).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/documents/{id}", s.handleGetDocument).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/documents/{id}", s.handleReplaceDocument).Methods("PUT", "OPTIONS")
	router.HandleFunc("/api/documents", s.handleListDocuments).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/documents", s.handleSealDocument).Methods("POST", "OPTIONS")

	// WebSocket endpoint
	router.HandleFunc("/ws", s.handleWebSocket)

	return corsMiddleware(router)
}

// Start starts the gateway server
func (s *Server) Start() error {
	go s.runHub()

	s.log.Info("gateway listening", "addr", s.addr)
	return http.ListenAndServe(s.addr, s.Handler())
}

// authenticate validates the bearer token, writing 401 on failure
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		http.Error(w, "Missing authorization token", http.StatusUnauthorized)
		return nil, false
	}

	token := extractToken(authHeader)
	if token == "" {
		http.Error(w, "Invalid authorization header format", http.StatusUnauthorized)
		return nil, false
	}

	claims, err := s.authSvc.ValidateToken(token)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return nil, false
	}
	return claims, true
}

// writeError maps service errors to HTTP status codes
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, helpers.ErrInvalidHex),
		errors.Is(err, encryption.ErrInvalidKeySize),
		errors.Is(err, encryption.ErrInvalidBlockSize),
		errors.Is(err, encryption.ErrInvalidIV),
		errors.Is(err, modes.ErrUnknownMode),
		errors.Is(err, modes.ErrInvalidSize),
		errors.Is(err, modes.ErrMessageTooShort),
		errors.Is(err, padding.ErrInvalidPadding),
		errors.Is(err, integrity.ErrMalformed),
		errors.Is(err, auth.ErrEmptyCredentials):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, auth.ErrUserExists):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, helpers.ErrDocumentNotFound), errors.Is(err, storage.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, helpers.ErrNotOwner):
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		s.log.Error("request failed", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// handleRegister handles user registration
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req protocol.CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userID, err := s.authSvc.Register(req.Username, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}

	token, err := s.authSvc.CreateToken(userID, req.Username)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":  userID,
		"token":    token,
		"username": req.Username,
	})
}

// handleLogin handles user login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req protocol.CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token, err := s.authSvc.Login(req.Username, req.Password)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	// Parse token to get user ID
	claims, err := s.authSvc.ValidateToken(token)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":  claims.UserID,
		"username": claims.Username,
		"token":    token,
	})
}

func (s *Server) handleGenerateKey(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}

	key, err := s.cipherSvc.GenerateKey(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, protocol.KeyResponse{Key: hex.EncodeToString(key)})
}

func (s *Server) handleDeriveKey(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}

	var req protocol.DeriveKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var salt []byte
	if req.Salt != "" {
		b, err := helpers.DecodeHex("salt", req.Salt)
		if err != nil {
			s.writeError(w, err)
			return
		}
		salt = b
	}

	key, salt, err := s.cipherSvc.DeriveKey(r.Context(), req.Passphrase, salt)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, protocol.KeyResponse{
		Key:  hex.EncodeToString(key),
		Salt: hex.EncodeToString(salt),
	})
}

// decodeCipherRequest reads a CipherRequest and decodes its key and data
func (s *Server) decodeCipherRequest(w http.ResponseWriter, r *http.Request) (*protocol.CipherRequest, []byte, []byte, bool) {
	var req protocol.CipherRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return nil, nil, nil, false
	}

	key, err := helpers.DecodeKey(req.Key)
	if err != nil {
		s.writeError(w, err)
		return nil, nil, nil, false
	}
	data, err := helpers.DecodeHex("data", req.Data)
	if err != nil {
		s.writeError(w, err)
		return nil, nil, nil, false
	}
	return &req, key, data, true
}

func (s *Server) handleEncrypt(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}
	req, key, data, ok := s.decodeCipherRequest(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	message, mode, err := s.cipherSvc.Encrypt(ctx, req.Mode, key, data)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, protocol.CipherResponse{Mode: mode.String(), Data: hex.EncodeToString(message)})
}

func (s *Server) handleDecrypt(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}
	req, key, data, ok := s.decodeCipherRequest(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	plaintext, mode, err := s.cipherSvc.Decrypt(ctx, req.Mode, key, data)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, protocol.CipherResponse{Mode: mode.String(), Data: hex.EncodeToString(plaintext)})
}

// Document handlers
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	claims, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	docs, err := s.documentSvc.List(ctx, claims.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"documents": docs})
}

func (s *Server) handleSealDocument(w http.ResponseWriter, r *http.Request) {
	claims, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	var req protocol.SealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	key, err := helpers.DecodeKey(req.Key)
	if err != nil {
		s.writeError(w, err)
		return
	}
	content, err := helpers.DecodeHex("content", req.Content)
	if err != nil {
		s.writeError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	doc, err := s.documentSvc.Seal(ctx, claims.UserID, req.Name, content, key)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleImportDocument(w http.ResponseWriter, r *http.Request) {
	claims, ok := s.authenticate(w, r)
	if !ok {
		return
	}

	var req protocol.ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	sealed, err := helpers.DecodeHex("sealed", req.Sealed)
	if err != nil {
		s.writeError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	doc, err := s.documentSvc.Import(ctx, claims.UserID, req.Name, sealed)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	claims, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	id, ok := documentID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	doc, err := s.documentSvc.Get(ctx, claims.UserID, id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"document": doc,
		"sealed":   hex.EncodeToString(doc.Sealed),
	})
}

func (s *Server) handleReplaceDocument(w http.ResponseWriter, r *http.Request) {
	claims, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	id, ok := documentID(w, r)
	if !ok {
		return
	}

	var req protocol.ReplaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	sealed, err := helpers.DecodeHex("sealed", req.Sealed)
	if err != nil {
		s.writeError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := s.documentSvc.Replace(ctx, claims.UserID, id, sealed); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVerifyDocument(w http.ResponseWriter, r *http.Request) {
	claims, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	id, ok := documentID(w, r)
	if !ok {
		return
	}

	var req protocol.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	key, err := helpers.DecodeKey(req.Key)
	if err != nil {
		s.writeError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	res, err := s.documentSvc.Verify(ctx, claims.UserID, id, key)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func documentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid document ID", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// handleWebSocket handles WebSocket connections
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Try to get token from query parameter first (preferred for WebSocket)
	token := r.URL.Query().Get("token")
	if token == "" {
		token = extractToken(r.Header.Get("Authorization"))
	}
	if token == "" {
		http.Error(w, "Missing authorization token", http.StatusUnauthorized)
		return
	}

	claims, err := s.authSvc.ValidateToken(token)
	if err != nil {
		s.log.Warn("websocket connection rejected", "error", err)
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("websocket upgrade failed", err)
		return
	}

	client := &Client{
		userID: claims.UserID,
		conn:   conn,
		send:   make(chan interface{}, 256),
		server: s,
	}

	s.register <- client
	s.log.Info("websocket client connected", "user", claims.UserID)

	go client.readPump()
	go client.writePump()
}

// runHub manages all connected clients
func (s *Server) runHub() {
	for {
		select {
		case client := <-s.register:
			s.mu.Lock()
			s.clients[client] = true
			s.mu.Unlock()

		case client := <-s.unregister:
			s.mu.Lock()
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
			}
			s.mu.Unlock()
			s.log.Info("websocket client disconnected", "user", client.userID)

		case message := <-s.broadcast:
			s.mu.RLock()
			var target int64
			if wsEvent, ok := message.(*protocol.WebSocketEvent); ok {
				target = wsEvent.UserID
			}
			// Every connection of the target user gets the event (multiple tabs)
			for c := range s.clients {
				if target != 0 && c.userID != target {
					continue
				}
				select {
				case c.send <- message:
				default:
					s.log.Warn("send buffer full, disconnecting", "user", c.userID)
					go func(cl *Client) { s.unregister <- cl }(c)
				}
			}
			s.mu.RUnlock()
		}
	}
}

// readPump drains the connection so pong and close frames are processed
func (c *Client) readPump() {
	defer func() {
		c.server.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(protocol.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(protocol.PongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(protocol.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(protocol.WriteWait))
			if !ok {
				// Channel closed
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(protocol.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Broadcast queues an event for the hub
func (s *Server) Broadcast(msg interface{}) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	select {
	case s.broadcast <- msg:
	case <-ctx.Done():
		if wsEvent, ok := msg.(*protocol.WebSocketEvent); ok {
			s.log.Warn("broadcast timeout, channel may be full", "type", wsEvent.Type, "user", wsEvent.UserID)
		} else {
			s.log.Warn("broadcast timeout, channel may be full")
		}
	}
}
