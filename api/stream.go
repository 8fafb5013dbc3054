package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"qtui/config"
)

// StreamCallback receives each decoded chunk of a streamed answer review,
// in arrival order.
type StreamCallback func(chunk Chunk) error

const (
	streamInitialBuf = 64 * 1024
	streamMaxLine    = 1024 * 1024
)

// StreamAnswer submits an answer via POST /ai/chat and decodes the
// newline-delimited JSON response body chunk by chunk.
//
// Malformed lines are logged and skipped; decoding continues with the next
// line. A trailing line without a final newline is still decoded at EOF, and
// a chunk carrying an explicit done marker ends the stream early.
// Transport errors, non-2xx statuses and mid-stream read failures are
// returned as errors; a callback error aborts the stream and is returned
// unchanged.
func (c *Client) StreamAnswer(ctx context.Context, req SubmitRequest, callback StreamCallback) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ai/chat", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, streamInitialBuf), streamMaxLine)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var chunk Chunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			// Recoverable: skip the bad line, keep reading
			if config.DebugLog != nil {
				config.DebugLog.Printf("[stream] skipping malformed line (%d bytes): %v", len(line), err)
			}
			continue
		}

		for i := range chunk.Scorecard {
			chunk.Scorecard[i].Clamp()
		}

		if callback != nil {
			if err := callback(chunk); err != nil {
				return err
			}
		}

		// An explicit done marker ends the stream even if the body stays open
		if chunk.Done {
			return nil
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("stream read failed: %w", err)
	}

	return nil
}
