package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/casenav/pkg/domain"
	"github.com/aretw0/casenav/pkg/ports"
)

var (
	// ErrInvalidKey is returned for keys that are not 32 bytes long.
	ErrInvalidKey = errors.New("encryption keys must be 32 bytes (AES-256)")
	// ErrMissingEnvelope is returned when an encrypting store reads a plain session.
	ErrMissingEnvelope = errors.New("session is missing encrypted data envelope")
	// ErrUndecryptable is returned when no configured key opens an envelope.
	ErrUndecryptable = errors.New("no key can open the session envelope")
)

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey seals every saved session.
	ActiveKey []byte

	// FallbackKeys are tried in order after ActiveKey on load, so sessions
	// sealed before a key rotation stay readable until they are saved again.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.SessionStore
	active cipher.AEAD
	// keyring is active followed by the fallbacks.
	keyring []cipher.AEAD
}

// NewEncryptionMiddleware seals whole sessions with AES-GCM. The stored
// envelope keeps only the identity and timestamps readable, and the session
// id is authenticated so an envelope cannot be replayed under another id.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	active, err := newAEAD(config.ActiveKey)
	if err != nil {
		return nil, err
	}
	keyring := []cipher.AEAD{active}
	for i, key := range config.FallbackKeys {
		aead, err := newAEAD(key)
		if err != nil {
			return nil, fmt.Errorf("fallback key %d: %w", i, err)
		}
		keyring = append(keyring, aead)
	}
	return func(next ports.SessionStore) ports.SessionStore {
		return &encryptionMiddleware{next: next, active: active, keyring: keyring}
	}, nil
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	if len(key) != 32 {
		return nil, ErrInvalidKey
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func (m *encryptionMiddleware) Save(ctx context.Context, sessionID string, session *domain.Session) error {
	plain, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", sessionID, err)
	}

	nonce := make([]byte, m.active.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("seal session %s: %w", sessionID, err)
	}
	sealed := m.active.Seal(nonce, nonce, plain, []byte(sessionID))

	return m.next.Save(ctx, sessionID, &domain.Session{
		ID:        session.ID,
		Username:  session.Username,
		Domain:    session.Domain,
		AppID:     session.AppID,
		Envelope:  base64.StdEncoding.EncodeToString(sealed),
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	})
}

func (m *encryptionMiddleware) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	stored, err := m.next.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if stored.Envelope == "" {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrMissingEnvelope)
	}
	sealed, err := base64.StdEncoding.DecodeString(stored.Envelope)
	if err != nil {
		return nil, fmt.Errorf("session %s: decode envelope: %w", sessionID, err)
	}

	plain, err := m.open(sealed, []byte(sessionID))
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	var session domain.Session
	if err := json.Unmarshal(plain, &session); err != nil {
		return nil, fmt.Errorf("session %s: unmarshal envelope: %w", sessionID, err)
	}
	return &session, nil
}

func (m *encryptionMiddleware) open(sealed, sessionID []byte) ([]byte, error) {
	for _, aead := range m.keyring {
		n := aead.NonceSize()
		if len(sealed) < n {
			return nil, ErrUndecryptable
		}
		if plain, err := aead.Open(nil, sealed[:n], sealed[n:], sessionID); err == nil {
			return plain, nil
		}
	}
	return nil, ErrUndecryptable
}

func (m *encryptionMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
