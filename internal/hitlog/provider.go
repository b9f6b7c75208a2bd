package hitlog

import (
	"context"
	"strconv"

	"github.com/hostpanel/panelview/internal/tabview"
	"go.uber.org/zap"
)

// Columns is the default column order for hit tables.
var Columns = []string{"time", "host", "method", "path", "status", "bytes", "referrer", "user_agent"}

// Provider serves the tail of an access log as records. Each record's
// identity is its 1-based line number in the file, so selections survive
// appends.
type Provider struct {
	Path     string
	MaxLines int
	Logger   *zap.Logger
}

// Ensure Provider implements tabview.Provider at compile time.
var _ tabview.Provider = Provider{}

// Fetch implements tabview.Provider. Malformed lines are skipped.
func (p Provider) Fetch(ctx context.Context) ([]tabview.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	lines, skipped, err := tailFrom(p.Path, p.MaxLines)
	if err != nil {
		return nil, err
	}

	items := make([]tabview.Item, 0, len(lines))
	malformed := 0
	for i, line := range lines {
		hit, err := Parse(line)
		if err != nil {
			malformed++
			continue
		}
		id := strconv.Itoa(skipped + i + 1)
		items = append(items, tabview.NewRecord(id, hit.Values()))
	}
	if malformed > 0 && p.Logger != nil {
		p.Logger.Debug("skipped malformed access log lines",
			zap.String("path", p.Path),
			zap.Int("malformed", malformed))
	}
	return items, nil
}
