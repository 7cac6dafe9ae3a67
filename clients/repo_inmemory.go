package clients

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"
)

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryRepo is a thread-safe in-memory client registry, optionally
// seeded from a JSON file in the data folder.
type InMemoryRepo struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewInMemoryRepo creates a new in-memory client repository
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		clients: make(map[string]*Client),
	}
}

// NewInMemoryRepoFromFile loads a client registry from
// <dataFolder>/clients.json. A missing file yields an empty registry.
func NewInMemoryRepoFromFile(dataFolder string) (*InMemoryRepo, error) {
	repo := NewInMemoryRepo()

	path := filepath.Join(dataFolder, "clients.json")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return repo, nil
	}
	if err != nil {
		return nil, fmt.Errorf("[clients NewInMemoryRepoFromFile] read %s: %w", path, err)
	}

	var loaded []*Client
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("[clients NewInMemoryRepoFromFile] parse %s: %w", path, err)
	}
	for _, c := range loaded {
		if err := repo.Upsert(c); err != nil {
			return nil, err
		}
	}
	return repo, nil
}

// Upsert creates or updates a client registration
func (r *InMemoryRepo) Upsert(clientData *Client) error {
	if clientData == nil {
		return fmt.Errorf("client cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if clientData.ID == "" {
		clientData.ID = uuid.New().String()
	}

	// Store a copy to prevent external modifications
	clientCopy := *clientData
	r.clients[clientData.ID] = &clientCopy
	return nil
}

// Delete removes a client registration
func (r *InMemoryRepo) Delete(clientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.clients, clientID)
	return nil
}

// Get retrieves a client by ID
func (r *InMemoryRepo) Get(clientID string) (*Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	client, exists := r.clients[clientID]
	if !exists {
		return nil, ErrClientNotFound
	}

	clientCopy := *client
	return &clientCopy, nil
}

// List returns registered clients ordered by ID
func (r *InMemoryRepo) List(offset, limit int) ([]*Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.clients))
	for id := range r.clients {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if offset >= len(ids) {
		return []*Client{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(ids) {
		end = len(ids)
	}

	result := make([]*Client, 0, end-offset)
	for _, id := range ids[offset:end] {
		clientCopy := *r.clients[id]
		result = append(result, &clientCopy)
	}
	return result, nil
}
