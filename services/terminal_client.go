package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/zeppex/mvp-sub001/models"
)

// ErrTerminalNotFound is returned when a posID resolves to no known terminal.
var ErrTerminalNotFound = errors.New("terminal not found")

// TerminalDirectory resolves a posID to its branch/merchant hierarchy.
// Orders may only be created on terminals the directory knows about.
type TerminalDirectory interface {
	Resolve(ctx context.Context, posID string) (models.Terminal, error)
}

// TerminalClient resolves terminals against the merchant registry service.
type TerminalClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewTerminalClient(baseURL string) *TerminalClient {
	return &TerminalClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *TerminalClient) Resolve(ctx context.Context, posID string) (models.Terminal, error) {
	url := fmt.Sprintf("%s/internal/pos/%s", c.baseURL, posID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return models.Terminal{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.Terminal{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return models.Terminal{}, ErrTerminalNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return models.Terminal{}, fmt.Errorf("merchant service returned %d", resp.StatusCode)
	}

	var term models.Terminal
	if err := json.NewDecoder(resp.Body).Decode(&term); err != nil {
		return models.Terminal{}, err
	}
	return term, nil
}

// StaticTerminalDirectory serves a fixed terminal set; used in development
// and tests where no merchant registry is reachable.
type StaticTerminalDirectory struct {
	mu        sync.RWMutex
	terminals map[string]models.Terminal
}

func NewStaticTerminalDirectory(terminals ...models.Terminal) *StaticTerminalDirectory {
	d := &StaticTerminalDirectory{terminals: make(map[string]models.Terminal)}
	for _, t := range terminals {
		d.terminals[t.PosID] = t
	}
	return d
}

// Register adds or replaces a terminal.
func (d *StaticTerminalDirectory) Register(t models.Terminal) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.terminals[t.PosID] = t
}

func (d *StaticTerminalDirectory) Resolve(_ context.Context, posID string) (models.Terminal, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	t, ok := d.terminals[posID]
	if !ok {
		return models.Terminal{}, ErrTerminalNotFound
	}
	return t, nil
}
