package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/JonMunkholm/titanicprep/internal/table"
)

// ErrUnexpectedStatus is returned when the dataset host answers with a
// non-2xx status.
var ErrUnexpectedStatus = errors.New("unexpected HTTP status")

// Fetch downloads the CSV at url and parses it into a table, first row as
// header. A nil client means http.DefaultClient.
func Fetch(ctx context.Context, client *http.Client, url string) (*table.Table, error) {
	t, _, err := fetch(ctx, client, url)
	return t, err
}

// fetch is Fetch that also reports the number of body bytes read.
func fetch(ctx context.Context, client *http.Client, url string) (*table.Table, int64, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, 0, fmt.Errorf("fetch %s: %w: %s", url, ErrUnexpectedStatus, resp.Status)
	}

	body := &countingReader{r: resp.Body}
	t, err := table.ReadCSV(body)
	if err != nil {
		return nil, body.n, fmt.Errorf("parse %s: %w", url, err)
	}
	return t, body.n, nil
}

// countingReader tracks bytes read for the run summary.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
