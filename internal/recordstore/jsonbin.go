package recordstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// errBinNotFound is returned for a 404 from the bin endpoints.
var errBinNotFound = errors.New("jsonbin: bin not found")

type JSONBinConfig struct {
	BaseURL string
	APIKey  string
	BinID   string
	Timeout time.Duration
}

// JSONBinStore keeps the whole document in one hosted JSONBin bin. Each
// write replaces the bin content.
type JSONBinStore struct {
	client  *http.Client
	baseURL string
	apiKey  string
	binID   string
	logger  *slog.Logger
	mu      sync.Mutex
}

func NewJSONBinStore(cfg JSONBinConfig, logger *slog.Logger) *JSONBinStore {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &JSONBinStore{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		binID:   cfg.BinID,
		logger:  logger,
	}
}

func (s *JSONBinStore) List(ctx context.Context, c Collection) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	return doc.records(c)
}

func (s *JSONBinStore) Get(ctx context.Context, c Collection, id string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.fetch(ctx)
	if err != nil {
		return Record{}, err
	}
	return doc.get(c, id)
}

func (s *JSONBinStore) Apply(ctx context.Context, mutations ...Mutation) error {
	if err := validate(mutations); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.fetch(ctx)
	if err != nil {
		return err
	}
	if err := doc.apply(mutations); err != nil {
		return err
	}
	return s.store(ctx, doc)
}

// Ping fails for a missing bin even though reads treat it as empty, since
// JSONBin rejects writes to a bin that does not exist.
func (s *JSONBinStore) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.fetchRaw(ctx)
	return err
}

func (s *JSONBinStore) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

// fetch reads the bin; a missing bin reads as an empty document.
func (s *JSONBinStore) fetch(ctx context.Context) (document, error) {
	body, err := s.fetchRaw(ctx)
	if errors.Is(err, errBinNotFound) {
		s.logger.Warn("jsonbin bin not found, reading as empty", "bin_id", s.binID)
		return newDocument(), nil
	}
	if err != nil {
		return nil, err
	}
	return decodeDocument(body)
}

func (s *JSONBinStore) fetchRaw(ctx context.Context) ([]byte, error) {
	url := fmt.Sprintf("%s/%s/latest", s.baseURL, s.binID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("request creation error: %w", err)
	}
	s.setHeaders(req)

	return s.do(req)
}

func (s *JSONBinStore) store(ctx context.Context, doc document) error {
	payload, err := doc.encode()
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	url := fmt.Sprintf("%s/%s", s.baseURL, s.binID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("request creation error: %w", err)
	}
	s.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	if _, err := s.do(req); err != nil {
		return err
	}
	s.logger.Debug("jsonbin document stored", "bin_id", s.binID, "bytes", len(payload))
	return nil
}

func (s *JSONBinStore) setHeaders(req *http.Request) {
	req.Header.Set("X-Master-Key", s.apiKey)
	req.Header.Set("X-Bin-Meta", "false")
}

func (s *JSONBinStore) do(req *http.Request) ([]byte, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error("jsonbin request failed", "method", req.Method, "error", err)
		return nil, fmt.Errorf("jsonbin %s: %w", req.Method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("jsonbin %s: read response: %w", req.Method, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("jsonbin %s: %w", req.Method, errBinNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		s.logger.Error("jsonbin returned error",
			"method", req.Method,
			"status", resp.StatusCode,
			"response", string(body))
		return nil, fmt.Errorf("jsonbin %s: status %d", req.Method, resp.StatusCode)
	}
	return body, nil
}
