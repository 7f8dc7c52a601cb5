package protocol

import (
	"time"
)

// Event types pushed to WebSocket clients
const (
	EventDocumentSealed   = "document_sealed"
	EventDocumentVerified = "document_verified"
	EventTamperDetected   = "tamper_detected"
)

// WebSocket deadlines
const (
	PongWait     = 60 * time.Second
	PingInterval = 30 * time.Second
	WriteWait    = 10 * time.Second
)

// WebSocketEvent represents an event pushed to WebSocket clients.
// UserID 0 addresses every connected client.
type WebSocketEvent struct {
	Type      string      `json:"type"`
	UserID    int64       `json:"user_id,omitempty"`
	Timestamp int64       `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// Byte fields travel hex-encoded, like the rest of the API.

// CredentialsRequest is the body of register and login
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// DeriveKeyRequest asks for a passphrase-derived key. An empty salt makes
// the server generate one.
type DeriveKeyRequest struct {
	Passphrase string `json:"passphrase"`
	Salt       string `json:"salt,omitempty"`
}

// KeyResponse carries a hex key, and the salt when it was derived
type KeyResponse struct {
	Key  string `json:"key"`
	Salt string `json:"salt,omitempty"`
}

// CipherRequest is the body of encrypt and decrypt. Data is plaintext for
// encrypt and IV || ciphertext for decrypt. An empty mode selects the
// configured default.
type CipherRequest struct {
	Mode string `json:"mode,omitempty"`
	Key  string `json:"key"`
	Data string `json:"data"`
}

// CipherResponse is the result of encrypt and decrypt
type CipherResponse struct {
	Mode string `json:"mode"`
	Data string `json:"data"`
}

// SealRequest seals Content under Key and stores it as Name
type SealRequest struct {
	Name    string `json:"name"`
	Key     string `json:"key"`
	Content string `json:"content"`
}

// ImportRequest stores already sealed bytes (content || tag)
type ImportRequest struct {
	Name   string `json:"name"`
	Sealed string `json:"sealed"`
}

// VerifyRequest carries the key a document was sealed with
type VerifyRequest struct {
	Key string `json:"key"`
}

// VerifyResponse reports the outcome of an integrity check
type VerifyResponse struct {
	ID         string `json:"id"`
	Intact     bool   `json:"intact"`
	VerifiedAt int64  `json:"verified_at"`
}

// ReplaceRequest carries new sealed bytes for an existing document
type ReplaceRequest struct {
	Sealed string `json:"sealed"`
}
