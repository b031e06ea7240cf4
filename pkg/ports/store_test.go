package ports_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/aretw0/casenav/pkg/domain"
	"github.com/aretw0/casenav/pkg/ports"
	"github.com/stretchr/testify/assert"
)

// jsonStore round-trips sessions through JSON to simulate serialization.
type jsonStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *jsonStore) Save(ctx context.Context, sessionID string, s *domain.Session) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[sessionID] = b
	return nil
}

func (m *jsonStore) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	m.mu.Lock()
	b, ok := m.data[sessionID]
	m.mu.Unlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	var s domain.Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (m *jsonStore) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, sessionID)
	return nil
}

func (m *jsonStore) List(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.data))
	for id := range m.data {
		ids = append(ids, id)
	}
	return ids, nil
}

func TestSessionStore_Contract(t *testing.T) {
	ports.RunSessionStoreContract(t, &jsonStore{data: make(map[string][]byte)})
}

func TestRemoteResponse_OK(t *testing.T) {
	assert.True(t, (&ports.RemoteResponse{StatusCode: 200}).OK())
	assert.True(t, (&ports.RemoteResponse{StatusCode: 204}).OK())
	assert.False(t, (&ports.RemoteResponse{StatusCode: 302}).OK())
	assert.False(t, (&ports.RemoteResponse{StatusCode: 500}).OK())

	var nilResp *ports.RemoteResponse
	assert.False(t, nilResp.OK())
}
