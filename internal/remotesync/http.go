// Package remotesync delivers debounced study sets to remote targets.
package remotesync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dgnsrekt/tv_drawings/internal/drawing"
)

// Payload is the JSON body posted for one subject.
type Payload struct {
	Subject  string          `json:"subject"`
	Version  int             `json:"version"`
	Drawings []drawing.Study `json:"drawings"`
	SentAt   time.Time       `json:"sentAt"`
}

// HTTPSyncer posts study sets to a fixed endpoint.
type HTTPSyncer struct {
	Endpoint string
	Client   *http.Client
}

func NewHTTPSyncer(endpoint string, client *http.Client) *HTTPSyncer {
	return &HTTPSyncer{Endpoint: endpoint, Client: client}
}

// Save implements drawing.SaveFunc.
func (h *HTTPSyncer) Save(ctx context.Context, subject string, rec drawing.Record) error {
	drawings := rec.Drawings
	if drawings == nil {
		drawings = []drawing.Study{}
	}
	body, err := json.Marshal(Payload{
		Subject:  subject,
		Version:  rec.Version,
		Drawings: drawings,
		SentAt:   time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return Send(ctx, h.Client, h.Endpoint, body)
}

// Send posts a JSON body to endpoint using HTTP POST.
func Send(ctx context.Context, client *http.Client, endpoint string, body []byte) error {
	c := client
	if c == nil {
		c = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("drawing sync failed: status=%d", resp.StatusCode)
	}
	return nil
}
