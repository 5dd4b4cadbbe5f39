package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/sirupsen/logrus"

	"github.com/sessiongate/sessiongate/config"
	"github.com/sessiongate/sessiongate/evt"
	"github.com/sessiongate/sessiongate/instanceid"
	"github.com/sessiongate/sessiongate/log"
	"github.com/sessiongate/sessiongate/util"
)

const (
	instanceIDHeader = "X-Client-Instance"
	maxResponseSize  = 10 << 20
)

// TransientError represents a temporary error like timeout, network errors or an overloaded vendor
type TransientError struct {
	inner error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("temporary error occurred: %v", e.inner)
}

func (e *TransientError) Unwrap() error {
	return e.inner
}

// HTTPDialer logs in against the REST interface of the vendor
type HTTPDialer struct {
	client   *http.Client
	attempts uint
	cooldown time.Duration
}

// NewHTTPDialer creates a dialer with the timeouts and retry settings of cfg
func NewHTTPDialer(cfg config.VendorConfig) *HTTPDialer {
	return &HTTPDialer{
		client: &http.Client{
			Timeout:   cfg.Timeout.ToDuration(),
			Transport: util.NewHTTPTransport(),
		},
		attempts: cfg.DialAttempts,
		cooldown: cfg.DialCooldown.ToDuration(),
	}
}

func dialLogger() *logrus.Entry {
	return log.PrefixedLog("vendor_dialer")
}

// Dial implements `Dialer`. Temporary failures are retried, rejected credentials are not.
func (d *HTTPDialer) Dial(ctx context.Context, key Key, password string) (Session, error) {
	base := strings.TrimRight(key.Endpoint, "/")

	var id string

	err := retry.Do(
		func() (err error) {
			id, err = d.login(ctx, base, key, password)

			return err
		},
		retry.Context(ctx),
		retry.Attempts(d.attempts),
		retry.DelayType(retry.FixedDelay),
		retry.Delay(d.cooldown),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var transientErr *TransientError

			return errors.As(err, &transientErr)
		}),
		retry.OnRetry(func(n uint, err error) {
			dialLogger().WithFields(logrus.Fields{
				"key":     key.String(),
				"attempt": fmt.Sprintf("%d/%d", n+1, d.attempts),
			}).Warnf("can't create vendor session: %s", err)

			evt.Bus().Publish(evt.SessionDialFailed, key.Tenant)
		}))
	if err != nil {
		return nil, err
	}

	return &httpSession{id: id, base: base, client: d.client}, nil
}

func (d *HTTPDialer) login(ctx context.Context, base string, key Key, password string) (string, error) {
	body, err := json.Marshal(map[string]string{
		"tenant":   key.Tenant,
		"user":     key.User,
		"password": password,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/sessions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(instanceIDHeader, instanceid.String())

	resp, err := d.client.Do(req)
	if err != nil {
		return "", classify(err)
	}

	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", ErrUnauthorized
	case resp.StatusCode >= http.StatusInternalServerError:
		return "", &TransientError{inner: fmt.Errorf("got status code %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated:
		return "", fmt.Errorf("got status code %d", resp.StatusCode)
	}

	var result struct {
		SessionID string `json:"sessionId"`
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&result); err != nil {
		return "", fmt.Errorf("can't parse login response: %w", err)
	}

	if result.SessionID == "" {
		return "", errors.New("login response contains no session id")
	}

	return result.SessionID, nil
}

func classify(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TransientError{inner: netErr}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return &TransientError{inner: opErr}
	}

	return err
}

type httpSession struct {
	id     string
	base   string
	client *http.Client
}

func (s *httpSession) ID() string {
	return s.id
}

func (s *httpSession) url(suffix string) string {
	return s.base + "/sessions/" + url.PathEscape(s.id) + suffix
}

func (s *httpSession) do(ctx context.Context, method, target string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrSessionExpired
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, fmt.Errorf("got status code %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	return data, nil
}

func (s *httpSession) Ping(ctx context.Context) error {
	_, err := s.do(ctx, http.MethodGet, s.url(""), nil)

	return err
}

func (s *httpSession) Query(ctx context.Context, payload []byte) ([]byte, error) {
	return s.do(ctx, http.MethodPost, s.url("/query"), payload)
}

func (s *httpSession) Close(ctx context.Context) error {
	_, err := s.do(ctx, http.MethodDelete, s.url(""), nil)
	if errors.Is(err, ErrSessionExpired) {
		// nothing to log out from
		return nil
	}

	return err
}
