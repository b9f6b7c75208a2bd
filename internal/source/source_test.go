package source

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hostpanel/panelview/internal/tabview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func write(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func identities(items []tabview.Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Identity()
	}
	return out
}

func notifyInto(ch chan struct{}) func() {
	return func() {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func TestLoad_YAMLList(t *testing.T) {
	path := write(t, "rows.yaml", `
- id: 7
  name: seven
  created: 2024-01-02T03:04:05Z
- id: 3
  name: three
`)
	items, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"7", "3"}, identities(items))

	name, ok := items[1].Value("name")
	require.True(t, ok)
	assert.Equal(t, "three", name)
}

func TestLoad_JSONItemsObject(t *testing.T) {
	path := write(t, "rows.json", `{"items": [{"user": "bob", "quota": 1024}, {"user": "amy", "quota": 5}]}`)
	items, err := Load(path, "user")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "amy"}, identities(items))

	quota, _ := items[0].Value("quota")
	assert.Equal(t, json.Number("1024"), quota)
}

func TestLoad_ScalarRowsAndMissingIdentity(t *testing.T) {
	path := write(t, "rows.yml", "- alpha\n- beta\n")
	items, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"#0", "#1"}, identities(items))
	v, _ := items[1].Value("value")
	assert.Equal(t, "beta", v)
}

func TestLoad_EmptyFile(t *testing.T) {
	items, err := Load(write(t, "empty.yaml", "  \n"), "")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), "")
	assert.True(t, errors.Is(err, ErrNotFound), "err = %v", err)

	_, err = Load(write(t, "bad.json", `{"items": [`), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse json")

	_, err = Load(write(t, "obj.yaml", "rows: []\n"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "items")

	_, err = Load(write(t, "scalar.yaml", "42\n"), "")
	assert.Error(t, err)
}

func TestFileProvider_Fetch(t *testing.T) {
	path := write(t, "rows.yaml", "- {id: a}\n- {id: b}\n")
	ctrl := tabview.New()
	require.NoError(t, tabview.Refresh(context.Background(), ctrl, FileProvider{Path: path}))
	assert.Equal(t, 2, ctrl.ViewModel().TotalItems)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := FileProvider{Path: path}.Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWatcher_FiresOnRewrite(t *testing.T) {
	path := write(t, "rows.yaml", "- {id: a}\n")

	changed := make(chan struct{}, 4)
	w, err := NewWatcher(path, notifyInto(changed), nil)
	require.NoError(t, err)
	w.SetDebounce(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("- {id: a}\n- {id: b}\n"), 0o644))

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("onChange was not called after rewrite")
	}
}

func TestWatcher_IgnoresSiblingFiles(t *testing.T) {
	path := write(t, "rows.yaml", "[]\n")

	changed := make(chan struct{}, 1)
	w, err := NewWatcher(path, notifyInto(changed), nil)
	require.NoError(t, err)
	w.SetDebounce(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))

	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "other.yaml"), []byte("[]"), 0o644))

	select {
	case <-changed:
		t.Fatal("onChange fired for a different file")
	case <-time.After(150 * time.Millisecond):
	}

	cancel()
	<-w.Done()
	w.Stop()
}
