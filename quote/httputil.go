package quote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// jwget performs an HTTP GET request and unmarshals the JSON response into the provided data structure.
func jwget(ctx context.Context, client *http.Client, addr string, data interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &statusError{Code: resp.StatusCode, Status: resp.Status, Host: resp.Request.URL.Host, Path: resp.Request.URL.Path}
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return err
	}
	return json.Unmarshal(buf.Bytes(), data)
}

// statusError is a non 200 answer of a quote server.
type statusError struct {
	Code   int
	Status string
	Host   string
	Path   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("cannot http GET %v%v: %v", e.Host, e.Path, e.Status)
}
