package fetcher

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// DecodeJSONLines decodes newline-delimited JSON, one object per line,
// sending each element to a channel. Blank lines are skipped. Both channels
// are closed when processing completes. Catalog feeds use this shape.
func DecodeJSONLines[T any](ctx context.Context, r io.Reader) (<-chan T, <-chan error) {
	outCh := make(chan T, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(outCh)
		defer close(errCh)

		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

		line := 0
		for scanner.Scan() {
			line++
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "jsonl: context cancelled")
				return
			}

			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				continue
			}

			var item T
			if err := json.Unmarshal([]byte(text), &item); err != nil {
				errCh <- eris.Wrapf(err, "jsonl: decode line %d", line)
				return
			}

			select {
			case outCh <- item:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "jsonl: context cancelled")
				return
			}
		}
		if err := scanner.Err(); err != nil {
			errCh <- eris.Wrap(err, "jsonl: read")
		}
	}()

	return outCh, errCh
}

// DecodeJSONObject decodes a single JSON object from a reader. API responses
// such as the weather archive payload come through here.
func DecodeJSONObject[T any](r io.Reader) (*T, error) {
	var obj T
	if err := json.NewDecoder(r).Decode(&obj); err != nil {
		return nil, eris.Wrap(err, "json: decode object")
	}
	return &obj, nil
}
