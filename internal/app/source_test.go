package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostpanel/panelview/internal/config"
	"github.com/hostpanel/panelview/internal/hitlog"
	"github.com/hostpanel/panelview/internal/panel"
	"github.com/hostpanel/panelview/internal/prefs"
	"github.com/hostpanel/panelview/internal/source"
	"github.com/hostpanel/panelview/internal/tabview"
)

func TestBuildProviderPrecedence(t *testing.T) {
	cfg := config.Default()
	cfg.SourceFile = "/srv/config-rows.yaml"
	cfg.HitLog = "/var/log/config-access.log"

	tests := []struct {
		name      string
		cfg       config.Config
		opts      Options
		wantName  string
		wantWatch string
	}{
		{"flag source file", cfg, Options{SourceFile: "/tmp/rows.json", HitLog: "/tmp/a.log", Listing: "ftp"}, "file:rows.json", "/tmp/rows.json"},
		{"flag hitlog", cfg, Options{HitLog: "/tmp/a.log", Listing: "ftp"}, "hitlog", "/tmp/a.log"},
		{"flag listing", cfg, Options{Listing: "ftp"}, "ftp", ""},
		{"config source file", cfg, Options{}, "file:config-rows.yaml", "/srv/config-rows.yaml"},
		{"config hitlog", func() config.Config { c := cfg; c.SourceFile = ""; return c }(), Options{}, "hitlog", "/var/log/config-access.log"},
		{"default listing", config.Default(), Options{}, "email", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := BuildProvider(tt.cfg, tt.opts, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, src.Name)
			assert.Equal(t, tt.wantWatch, src.WatchPath)
			assert.NotNil(t, src.Provider)
		})
	}
}

func TestBuildProviderSourceKinds(t *testing.T) {
	src, err := BuildProvider(config.Default(), Options{SourceFile: "rows.yaml"}, nil)
	require.NoError(t, err)
	assert.IsType(t, source.FileProvider{}, src.Provider)
	assert.Nil(t, src.Status)

	cfg := config.Default()
	cfg.HitLogMaxLines = 50
	src, err = BuildProvider(cfg, Options{HitLog: "access.log"}, nil)
	require.NoError(t, err)
	hp, ok := src.Provider.(hitlog.Provider)
	require.True(t, ok)
	assert.Equal(t, 50, hp.MaxLines)
	assert.Equal(t, hitlog.Columns, src.Columns)

	src, err = BuildProvider(config.Default(), Options{Listing: "email"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Email accounts", src.Title)
	assert.NotNil(t, src.Status)
}

func TestBuildProviderErrors(t *testing.T) {
	_, err := BuildProvider(config.Default(), Options{Listing: "nope"}, nil)
	assert.ErrorContains(t, err, `unknown listing "nope"`)

	_, err = BuildProvider(config.Default(), Options{Listing: "accounts"}, nil)
	assert.ErrorIs(t, err, panel.ErrKindMismatch)

	cfg := config.Default()
	cfg.APIKind = config.APIKindWHM
	src, err := BuildProvider(cfg, Options{Listing: "accounts"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "accounts", src.Name)
}

func TestBuildProviderCustomListing(t *testing.T) {
	cfg := config.Default()
	cfg.Listings = []config.Listing{{
		Name:     "forwarders",
		API:      "UAPI",
		Module:   "Email",
		Function: "list_forwarders",
		Identity: "dest",
		Columns:  []string{"dest", "forward"},
	}}

	src, err := BuildProvider(cfg, Options{Listing: "forwarders"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "forwarders", src.Title)
	assert.Equal(t, []string{"dest", "forward"}, src.Columns)
}

func TestNewControllerPageSizePrecedence(t *testing.T) {
	cfg := config.Default()
	src := Source{Name: "email"}

	ctrl, err := newController(cfg, src, prefs.Prefs{}, View{}, nil)
	require.NoError(t, err)
	assert.Equal(t, cfg.PageSize, ctrl.State().PageSize)

	remembered := prefs.Prefs{}.WithPageSize("email", 50)
	ctrl, err = newController(cfg, src, remembered, View{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 50, ctrl.State().PageSize)

	ctrl, err = newController(cfg, src, remembered, View{PageSize: tabview.PageSizeAll}, nil)
	require.NoError(t, err)
	assert.Equal(t, tabview.PageSizeAll, ctrl.State().PageSize)
}

func TestNewControllerFilterModes(t *testing.T) {
	items := []tabview.Item{
		tabview.NewRecord("1", map[string]any{"email": "alice@example.com", "quota": 10}),
		tabview.NewRecord("2", map[string]any{"email": "bob@example.org", "quota": 20}),
	}
	src := Source{Name: "email", Columns: []string{"email"}}

	cfg := config.Default()
	cfg.FilterMode = config.FilterRegex
	ctrl, err := newController(cfg, src, prefs.Prefs{}, View{Filter: `\.org$`}, nil)
	require.NoError(t, err)
	ctrl.SetItems(items)
	assert.Equal(t, 1, ctrl.ViewModel().TotalItems)

	cfg.FilterMode = config.FilterJQ
	cfg.JQFilter = `.quota > ($filter | tonumber)`
	ctrl, err = newController(cfg, src, prefs.Prefs{}, View{Filter: "15", Sort: "quota", Desc: true}, nil)
	require.NoError(t, err)
	ctrl.SetItems(items)
	vm := ctrl.ViewModel()
	require.Equal(t, 1, vm.TotalItems)
	assert.Equal(t, "2", vm.Rows[0].Item.Identity())
	assert.Equal(t, tabview.Descending, vm.SortDirection)

	cfg.JQFilter = ".["
	_, err = newController(cfg, src, prefs.Prefs{}, View{}, nil)
	assert.ErrorContains(t, err, "jq_filter")
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}
