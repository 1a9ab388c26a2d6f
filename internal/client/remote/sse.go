package remote

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gateflow/gateflow/internal/common"
	"github.com/gateflow/gateflow/internal/model"
)

// Watch opens the server's SSE change feed and decodes each data frame
// into a ChangeEvent. The returned channel closes when ctx is cancelled or
// the stream drops for any reason; the live listener owns reconnection.
func (c *HTTPStore) Watch(ctx context.Context) (<-chan model.ChangeEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/vehicles/feed", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	// The feed is long-lived, so bypass the client's request timeout.
	feedClient := &http.Client{Transport: c.httpClient.Transport}

	resp, err := feedClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrRemoteUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: feed status %d", common.ErrRemoteUnavailable, resp.StatusCode)
	}

	out := make(chan model.ChangeEvent)
	go func() {
		defer close(out)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data:") {
				continue // comments, event names, keepalives
			}
			payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if payload == "" {
				continue
			}
			var ev model.ChangeEvent
			if err := json.Unmarshal([]byte(payload), &ev); err != nil {
				continue // skip malformed frames, the stream stays up
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
