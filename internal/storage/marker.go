package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Marker verification errors.
var (
	ErrMarkerTimeout  = errors.New("timed out waiting for marker")
	ErrDigestMismatch = errors.New("marker digest mismatch")
)

// Marker is a stage-completion file. The digest covers the marshaled payload
// so a downstream stage can detect a marker written against different
// artifacts (e.g. a stale file from an earlier run that was partially
// cleaned up).
type Marker struct {
	Stage     string          `json:"stage"`
	CreatedAt time.Time       `json:"created_at"`
	Digest    string          `json:"digest"`
	Payload   json.RawMessage `json:"payload"`
}

func payloadDigest(payload []byte) string {
	sum := sha256.Sum256(payload)

	return hex.EncodeToString(sum[:])
}

// WriteMarker persists a completion marker for a stage with the given
// summary payload. Writing the marker is the last act of a stage.
func (s *Store) WriteMarker(name, stage string, payload any) error {
	if err := EnsureDir(s.statusDir); err != nil {
		return err
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal marker payload: %w", err)
	}

	marker := Marker{
		Stage:     stage,
		CreatedAt: time.Now().UTC(),
		Digest:    payloadDigest(raw),
		Payload:   raw,
	}

	return writeJSON(filepath.Join(s.statusDir, name), marker)
}

// ReadMarker loads a completion marker, verifies its digest, and unmarshals
// the payload into out (which may be nil when only existence matters).
func (s *Store) ReadMarker(name string, out any) (*Marker, error) {
	data, err := os.ReadFile(filepath.Join(s.statusDir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to read marker %s: %w", name, err)
	}

	var marker Marker
	if err := json.Unmarshal(data, &marker); err != nil {
		return nil, fmt.Errorf("failed to parse marker %s: %w", name, err)
	}

	if marker.Digest != payloadDigest(marker.Payload) {
		return nil, fmt.Errorf("%w: %s", ErrDigestMismatch, name)
	}

	if out != nil {
		if err := json.Unmarshal(marker.Payload, out); err != nil {
			return nil, fmt.Errorf("failed to parse marker payload %s: %w", name, err)
		}
	}

	return &marker, nil
}

// MarkerExists reports whether the named marker file is present.
func (s *Store) MarkerExists(name string) bool {
	_, err := os.Stat(filepath.Join(s.statusDir, name))

	return err == nil
}

// WaitForMarker polls until the named marker appears. It returns
// ErrMarkerTimeout after the timeout elapses and the context error if the
// context is cancelled first.
func (s *Store) WaitForMarker(ctx context.Context, name string, interval, timeout time.Duration) error {
	if s.MarkerExists(name) {
		return nil
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return fmt.Errorf("%w: %s after %s", ErrMarkerTimeout, name, timeout)
		case <-ticker.C:
			if s.MarkerExists(name) {
				return nil
			}
		}
	}
}
