package hitlog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/hostpanel/panelview/internal/tabview"
)

func TestTail(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name        string
		maxLines    int
		expected    []string
		wantSkipped int
	}{
		{"read all (0)", 0, expectedAll, 0},
		{"read all (negative)", -1, expectedAll, 0},
		{"read partial (5)", 5, expectedAll[5:], 5},
		{"read exactly all (10)", 10, expectedAll, 0},
		{"read more than exists (20)", 20, expectedAll, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, skipped, err := tailFrom(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("tailFrom() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("tailFrom() = %v, want %v", got, tt.expected)
			}
			if skipped != tt.wantSkipped {
				t.Errorf("skipped = %d, want %d", skipped, tt.wantSkipped)
			}
		})
	}
}

func TestTail_MissingFile(t *testing.T) {
	lines, err := Tail(filepath.Join(t.TempDir(), "nope.log"), 10)
	if err != nil || lines != nil {
		t.Fatalf("Tail(missing) = %v, %v; want nil, nil", lines, err)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Hit
	}{
		{
			name: "combined",
			line: `203.0.113.9 - - [10/Oct/2024:13:55:36 -0700] "GET /index.php?a=1 HTTP/1.1" 200 2326 "https://example.com/" "Mozilla/5.0 (X11)"`,
			want: Hit{
				Host:      "203.0.113.9",
				Time:      time.Date(2024, 10, 10, 13, 55, 36, 0, time.FixedZone("", -7*3600)),
				Method:    "GET",
				Path:      "/index.php?a=1",
				Protocol:  "HTTP/1.1",
				Status:    200,
				Bytes:     2326,
				Referrer:  "https://example.com/",
				UserAgent: "Mozilla/5.0 (X11)",
			},
		},
		{
			name: "common with dash bytes and user",
			line: `198.51.100.4 - bob [01/Feb/2024:00:00:01 +0000] "POST /wp-login.php HTTP/1.0" 302 -`,
			want: Hit{
				Host:     "198.51.100.4",
				User:     "bob",
				Time:     time.Date(2024, 2, 1, 0, 0, 1, 0, time.FixedZone("", 0)),
				Method:   "POST",
				Path:     "/wp-login.php",
				Protocol: "HTTP/1.0",
				Status:   302,
			},
		},
		{
			name: "escaped quotes and garbage request",
			line: `192.0.2.1 - - [01/Feb/2024:00:00:01 +0000] "-" 408 0 "-" "curl \"x\""`,
			want: Hit{
				Host:      "192.0.2.1",
				Time:      time.Date(2024, 2, 1, 0, 0, 1, 0, time.FixedZone("", 0)),
				Path:      "-",
				Status:    408,
				UserAgent: `curl "x"`,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.line)
			if err != nil {
				t.Fatalf("Parse error = %v", err)
			}
			if !got.Time.Equal(tt.want.Time) {
				t.Fatalf("Time = %v, want %v", got.Time, tt.want.Time)
			}
			got.Time, tt.want.Time = time.Time{}, time.Time{}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Parse = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	for _, line := range []string{
		"",
		"not a log line",
		`1.2.3.4 - - [bad time] "GET / HTTP/1.1" 200 1`,
	} {
		if _, err := Parse(line); err != ErrMalformed {
			t.Fatalf("Parse(%q) error = %v, want ErrMalformed", line, err)
		}
	}
}

func TestProvider_NumbersLinesFromFileStart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "example.com-ssl_log")
	lines := []string{
		`10.0.0.1 - - [01/Feb/2024:00:00:01 +0000] "GET /a HTTP/1.1" 200 10`,
		`10.0.0.2 - - [01/Feb/2024:00:00:02 +0000] "GET /b HTTP/1.1" 404 20`,
		`garbage`,
		`10.0.0.3 - - [01/Feb/2024:00:00:03 +0000] "GET /c HTTP/1.1" 500 30`,
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	items, err := Provider{Path: path, MaxLines: 3}.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch error = %v", err)
	}
	var ids []string
	for _, item := range items {
		ids = append(ids, item.Identity())
	}
	if !reflect.DeepEqual(ids, []string{"2", "4"}) {
		t.Fatalf("ids = %v, want [2 4]", ids)
	}

	ctrl := tabview.New(tabview.WithItems(items))
	ctrl.SetSort("status")
	ctrl.SetSort("status")
	vm := ctrl.ViewModel()
	if got := vm.Rows[0].Item.Identity(); got != "4" {
		t.Fatalf("first row by status desc = %q, want 4", got)
	}
}
