package main

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	u "github.com/gofrs/uuid/v5"
)

// apiError is the server's uniform error payload.
type apiError struct {
	Message   string   `json:"message"`
	Errors    []string `json:"errors"`
	Status    int      `json:"status"`
	RequestID string   `json:"-"`
}

func (e *apiError) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("%d %s: %s", e.Status, e.Message, strings.Join(e.Errors, "; "))
	}
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

type client struct {
	base  string
	token string
	http  *http.Client
}

func httpClient(caPath string, insecure bool) (*http.Client, error) {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	switch {
	case insecure:
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // dev flag
	case caPath != "":
		pem, err := os.ReadFile(caPath)
		if err != nil {
			return nil, err
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, errors.New("bad CA cert")
		}
		tr.TLSClientConfig = &tls.Config{RootCAs: pool}
	}
	return &http.Client{Transport: tr, Timeout: 30 * time.Second}, nil
}

// do sends one request. body is JSON-encoded when non-nil; out receives the
// decoded 2xx response when non-nil.
func (c *client) do(ctx context.Context, method, path string, q url.Values, body, out any) error {
	target := strings.TrimRight(c.base, "/") + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rid, _ := u.NewV4()
	req.Header.Set("X-Request-ID", rid.String())

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		ae := &apiError{Status: resp.StatusCode, RequestID: rid.String()}
		if err := json.NewDecoder(resp.Body).Decode(ae); err != nil || ae.Message == "" {
			ae.Message = http.StatusText(resp.StatusCode)
		}
		ae.Status = resp.StatusCode
		return ae
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
