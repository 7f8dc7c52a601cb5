package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// DB wraps the database connection and provides query methods
type DB struct {
	conn *sql.DB
}

// Config contains database connection configuration
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// New creates a new database connection
func New(cfg Config) (*DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// Test the connection
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}

	return &DB{conn: conn}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// InitSchema creates all database tables
func (db *DB) InitSchema() error {
	schema := `
	-- Users table
	CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username VARCHAR(255) UNIQUE NOT NULL,
		hashed_password VARCHAR(255) NOT NULL,
		created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
	);

	-- Sealed documents: content followed by the 32-byte integrity tag
	CREATE TABLE IF NOT EXISTS documents (
		id UUID PRIMARY KEY,
		owner_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name VARCHAR(255) NOT NULL,
		sealed BYTEA NOT NULL,
		intact BOOLEAN,
		verified_at BIGINT,
		created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
		updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
	);

	CREATE INDEX IF NOT EXISTS idx_documents_owner_id ON documents(owner_id);
	`

	_, err := db.conn.Exec(schema)
	return err
}

// User operations

// CreateUser creates a new user with hashed password
func (db *DB) CreateUser(username, hashedPassword string) (int64, error) {
	var id int64
	err := db.conn.QueryRow(
		"INSERT INTO users (username, hashed_password) VALUES ($1, $2) RETURNING id",
		username, hashedPassword,
	).Scan(&id)
	return id, err
}

// GetUserByID retrieves a user by ID
func (db *DB) GetUserByID(userID int64) (*User, error) {
	user := &User{}
	err := db.conn.QueryRow(
		"SELECT id, username, hashed_password, created_at FROM users WHERE id = $1",
		userID,
	).Scan(&user.ID, &user.Username, &user.HashedPassword, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	return user, err
}

// GetUserByUsername retrieves a user by username
func (db *DB) GetUserByUsername(username string) (*User, error) {
	user := &User{}
	err := db.conn.QueryRow(
		"SELECT id, username, hashed_password, created_at FROM users WHERE username = $1",
		username,
	).Scan(&user.ID, &user.Username, &user.HashedPassword, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	return user, err
}

// Document operations

// SaveDocument inserts a new sealed document
func (db *DB) SaveDocument(doc *Document) error {
	_, err := db.conn.Exec(
		"INSERT INTO documents (id, owner_id, name, sealed, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $5)",
		doc.ID, doc.OwnerID, doc.Name, doc.Sealed, doc.CreatedAt,
	)
	return err
}

// GetDocument retrieves a document including its sealed content
func (db *DB) GetDocument(id uuid.UUID) (*Document, error) {
	doc := &Document{}
	var intact sql.NullBool
	var verifiedAt sql.NullInt64
	err := db.conn.QueryRow(
		"SELECT id, owner_id, name, sealed, intact, verified_at, created_at, updated_at FROM documents WHERE id = $1",
		id,
	).Scan(&doc.ID, &doc.OwnerID, &doc.Name, &doc.Sealed, &intact, &verifiedAt, &doc.CreatedAt, &doc.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	doc.Size = int64(len(doc.Sealed))
	doc.setVerification(intact, verifiedAt)
	return doc, nil
}

// ListDocuments lists the documents of an owner without their content
func (db *DB) ListDocuments(ownerID int64) ([]*Document, error) {
	rows, err := db.conn.Query(
		"SELECT id, owner_id, name, octet_length(sealed), intact, verified_at, created_at, updated_at FROM documents WHERE owner_id = $1 ORDER BY created_at DESC",
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*Document
	for rows.Next() {
		doc := &Document{}
		var intact sql.NullBool
		var verifiedAt sql.NullInt64
		if err := rows.Scan(&doc.ID, &doc.OwnerID, &doc.Name, &doc.Size, &intact, &verifiedAt, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, err
		}
		doc.setVerification(intact, verifiedAt)
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// ReplaceDocumentContent overwrites the sealed bytes and clears the last verification
func (db *DB) ReplaceDocumentContent(id uuid.UUID, sealed []byte) error {
	res, err := db.conn.Exec(
		"UPDATE documents SET sealed = $2, intact = NULL, verified_at = NULL, updated_at = $3 WHERE id = $1",
		id, sealed, time.Now().Unix(),
	)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// RecordVerification stores the outcome of the latest integrity check
func (db *DB) RecordVerification(id uuid.UUID, intact bool, verifiedAt int64) error {
	res, err := db.conn.Exec(
		"UPDATE documents SET intact = $2, verified_at = $3 WHERE id = $1",
		id, intact, verifiedAt,
	)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return ErrNotFound
	}
	return nil
}

// Data types

// User represents a user in the system
type User struct {
	ID             int64
	Username       string
	HashedPassword string
	CreatedAt      int64
}

// Document is a sealed document. Sealed holds content || integrity tag and
// is left empty by ListDocuments.
type Document struct {
	ID         uuid.UUID `json:"id"`
	OwnerID    int64     `json:"owner_id"`
	Name       string    `json:"name"`
	Sealed     []byte    `json:"-"`
	Size       int64     `json:"size"`
	Intact     *bool     `json:"intact,omitempty"`
	VerifiedAt *int64    `json:"verified_at,omitempty"`
	CreatedAt  int64     `json:"created_at"`
	UpdatedAt  int64     `json:"updated_at"`
}

func (d *Document) setVerification(intact sql.NullBool, verifiedAt sql.NullInt64) {
	if intact.Valid {
		v := intact.Bool
		d.Intact = &v
	}
	if verifiedAt.Valid {
		v := verifiedAt.Int64
		d.VerifiedAt = &v
	}
}
