package hitlog

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const clfTimeLayout = "02/Jan/2006:15:04:05 -0700"

// ErrMalformed is returned by Parse for lines that are not in common or
// combined log format.
var ErrMalformed = errors.New("malformed access log line")

// Hit is one request from an Apache access log.
type Hit struct {
	Host      string
	User      string
	Time      time.Time
	Method    string
	Path      string
	Protocol  string
	Status    int
	Bytes     int64
	Referrer  string
	UserAgent string
}

// host ident user [time] "request" status bytes ["referrer" "agent"]
var clfPattern = regexp.MustCompile(
	`^(\S+) (\S+) (\S+) \[([^\]]+)\] "((?:[^"\\]|\\.)*)" (\d{3}) (\d+|-)(?: "((?:[^"\\]|\\.)*)" "((?:[^"\\]|\\.)*)")?`)

// Parse decodes a common or combined log format line.
func Parse(line string) (Hit, error) {
	m := clfPattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return Hit{}, ErrMalformed
	}
	at, err := time.Parse(clfTimeLayout, m[4])
	if err != nil {
		return Hit{}, ErrMalformed
	}
	status, _ := strconv.Atoi(m[6])

	hit := Hit{
		Host:      m[1],
		User:      dash(m[3]),
		Time:      at,
		Status:    status,
		Referrer:  dash(unescape(m[8])),
		UserAgent: dash(unescape(m[9])),
	}
	if m[7] != "-" {
		hit.Bytes, _ = strconv.ParseInt(m[7], 10, 64)
	}

	request := unescape(m[5])
	parts := strings.Fields(request)
	switch len(parts) {
	case 3:
		hit.Method, hit.Path, hit.Protocol = parts[0], parts[1], parts[2]
	case 2:
		hit.Method, hit.Path = parts[0], parts[1]
	default:
		// Garbage requests ("-" or binary probes) keep the raw text as the path.
		hit.Path = request
	}
	return hit, nil
}

// Values returns the hit as record fields.
func (h Hit) Values() map[string]any {
	values := map[string]any{
		"host":   h.Host,
		"time":   h.Time,
		"method": h.Method,
		"path":   h.Path,
		"status": h.Status,
		"bytes":  h.Bytes,
	}
	if h.User != "" {
		values["user"] = h.User
	}
	if h.Protocol != "" {
		values["protocol"] = h.Protocol
	}
	if h.Referrer != "" {
		values["referrer"] = h.Referrer
	}
	if h.UserAgent != "" {
		values["user_agent"] = h.UserAgent
	}
	return values
}

func dash(s string) string {
	if s == "-" {
		return ""
	}
	return s
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	return strings.NewReplacer(`\"`, `"`, `\\`, `\`).Replace(s)
}
