package panel

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// API kinds.
const (
	KindUAPI = "uapi"
	KindWHM  = "whm"
)

const panelTimestampLayout = "2006-01-02 15:04:05"

// ErrUnauthorized matches HTTP 401/403 responses via errors.Is.
var ErrUnauthorized = errors.New("panel rejected credentials")

// ErrKindMismatch is returned when a listing needs a different API kind than
// the client was configured for.
var ErrKindMismatch = errors.New("listing not available for this api kind")

// HTTPError reports a non-2xx response.
type HTTPError struct {
	Path       string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("api %s returned status %d", e.Path, e.StatusCode)
}

// Is lets errors.Is(err, ErrUnauthorized) match auth failures.
func (e *HTTPError) Is(target error) bool {
	return target == ErrUnauthorized &&
		(e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden)
}

// APIError reports a call the panel answered but marked as failed.
type APIError struct {
	Function string
	Reason   string
	Errors   []string
}

func (e *APIError) Error() string {
	msg := strings.Join(e.Errors, "; ")
	if msg == "" {
		msg = e.Reason
	}
	if msg == "" {
		msg = "unknown failure"
	}
	return fmt.Sprintf("%s failed: %s", e.Function, msg)
}

// Status is the reachability summary shown in headers.
type Status struct {
	Kind      string    `json:"kind" yaml:"kind"`
	Version   string    `json:"version,omitempty" yaml:"version,omitempty"`
	User      string    `json:"user,omitempty" yaml:"user,omitempty"`
	Domain    string    `json:"domain,omitempty" yaml:"domain,omitempty"`
	CheckedAt time.Time `json:"checkedAt" yaml:"checkedAt"`
}

// Label is a one-line description of the server, e.g. "WHM 11.110.0.5".
func (s Status) Label() string {
	switch s.Kind {
	case KindWHM:
		if s.Version == "" {
			return "WHM"
		}
		return "WHM " + s.Version
	default:
		switch {
		case s.User != "" && s.Domain != "":
			return s.User + "@" + s.Domain
		case s.User != "":
			return s.User
		}
		return "cPanel"
	}
}

// uapiResponse mirrors the /execute/ result object.
type uapiResponse struct {
	Data     json.RawMessage `json:"data"`
	Errors   []string        `json:"errors"`
	Messages []string        `json:"messages"`
	Status   int             `json:"status"`
}

// whmResponse mirrors the /json-api/ API1 envelope.
type whmResponse struct {
	Data     json.RawMessage `json:"data"`
	Metadata whmMetadata     `json:"metadata"`
}

type whmMetadata struct {
	Command string `json:"command"`
	Reason  string `json:"reason"`
	Result  int    `json:"result"`
	Version int    `json:"version"`
}

type whmVersion struct {
	Version string `json:"version"`
}

type uapiUserInfo struct {
	User   string `json:"user"`
	Domain string `json:"domain"`
}

// parseTimestamp converts panel timestamps into time.Time. Numbers are unix
// seconds. Unknown shapes return the zero time.
func parseTimestamp(v any) time.Time {
	switch typed := v.(type) {
	case json.Number:
		if secs, err := typed.Int64(); err == nil && secs > 0 {
			return time.Unix(secs, 0).UTC()
		}
	case float64:
		if typed > 0 {
			return time.Unix(int64(typed), 0).UTC()
		}
	case string:
		value := strings.TrimSpace(typed)
		if value == "" {
			return time.Time{}
		}
		if secs, err := strconv.ParseInt(value, 10, 64); err == nil && secs > 0 {
			return time.Unix(secs, 0).UTC()
		}
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
			if t, err := time.Parse(layout, value); err == nil {
				return t
			}
		}
		if t, err := time.ParseInLocation(panelTimestampLayout, value, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}
