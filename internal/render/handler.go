package render

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/hostpanel/panelview/internal/state"
	"github.com/hostpanel/panelview/internal/tabview"
	"go.uber.org/zap"
)

// HandlerOptions configures NewHandler.
type HandlerOptions struct {
	Title   string
	Columns []string
	Logger  *zap.Logger
}

// Handler serves one controller over HTTP. Query parameters (filter, sort,
// dir, page, size) drive the controller before each render; format selects
// html (default), json, yaml or table. POSTed toggle/select form values change
// the selection and redirect back to the GET view.
//
// All clients share the controller, as with a single terminal session.
type Handler struct {
	ctrl    *tabview.Controller
	store   *state.Store
	html    *HTMLRenderer
	columns []string
	title   string
	logger  *zap.Logger

	mu      sync.Mutex
	lastGen uint64
}

// NewHandler builds a Handler. store may be nil when the controller is fed
// some other way.
func NewHandler(ctrl *tabview.Controller, store *state.Store, html *HTMLRenderer, opts HandlerOptions) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		ctrl:    ctrl,
		store:   store,
		html:    html,
		columns: opts.Columns,
		title:   opts.Title,
		logger:  logger.Named("http"),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
	case http.MethodPost:
		h.sync()
		h.applySelection(r)
		target := r.URL.Path
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	default:
		w.Header().Set("Allow", "GET, HEAD, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap := h.sync()
	if err := applyQuery(h.ctrl, r); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	format := FormatHTML
	if name := r.URL.Query().Get("format"); name != "" {
		f, err := ParseFormat(name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		format = f
	}

	vm := h.ctrl.ViewModel()
	var buf bytes.Buffer
	var err error
	switch format {
	case FormatJSON:
		w.Header().Set("Content-Type", "application/json")
		err = JSON(&buf, vm)
	case FormatYAML:
		w.Header().Set("Content-Type", "application/yaml")
		err = YAML(&buf, vm)
	case FormatTable:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		err = Table(&buf, vm, h.columns)
	default:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		page := Page{Title: h.title, View: vm, Columns: h.columns}
		if snap != nil {
			page.Status = statusLine(*snap)
			if snap.LastError != nil {
				page.Error = snap.LastError.Error()
			}
		}
		err = h.html.Render(&buf, page)
	}
	if err != nil {
		h.logger.Error("render failed", zap.String("format", string(format)), zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	_, _ = w.Write(buf.Bytes())
}

// sync pushes new store data into the controller when the generation moved.
func (h *Handler) sync() *state.Snapshot {
	if h.store == nil {
		return nil
	}
	snap := h.store.Snapshot()
	h.mu.Lock()
	defer h.mu.Unlock()
	if snap.Generation != h.lastGen {
		h.ctrl.SetItems(snap.Items)
		h.lastGen = snap.Generation
	}
	return &snap
}

func (h *Handler) applySelection(r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.logger.Debug("bad form", zap.Error(err))
		return
	}
	for _, id := range r.PostForm["toggle"] {
		h.ctrl.ToggleSelect(id)
	}
	switch r.PostForm.Get("select") {
	case "all":
		h.ctrl.SelectAll()
	case "none":
		h.ctrl.DeselectAll()
	}
}

// applyQuery moves the controller to the state encoded in the request URL.
// Filter, size and sort are applied only when they differ from the current
// state, so an unchanged filter does not send the user back to page 1.
func applyQuery(ctrl *tabview.Controller, r *http.Request) error {
	q := r.URL.Query()
	st := ctrl.State()

	if q.Has("filter") && q.Get("filter") != st.FilterValue {
		ctrl.SetFilter(q.Get("filter"))
	}
	if q.Has("size") {
		size, err := parsePageSize(q.Get("size"))
		if err != nil {
			return err
		}
		if size != st.PageSize {
			ctrl.SetPageSize(size)
		}
	}
	if q.Has("sort") {
		field := q.Get("sort")
		dir := tabview.Direction(strings.ToLower(q.Get("dir")))
		if dir != tabview.Descending {
			dir = tabview.Ascending
		}
		if field != st.SortBy || dir != st.SortDirection {
			ctrl.SetSortOrder(field, dir)
		}
	}
	if q.Has("page") {
		page, err := strconv.Atoi(q.Get("page"))
		if err != nil {
			return fmt.Errorf("invalid page %q", q.Get("page"))
		}
		ctrl.SetPage(page)
	}
	return nil
}

func parsePageSize(value string) (int, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "all" {
		return tabview.PageSizeAll, nil
	}
	size, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid page size %q", value)
	}
	return size, nil
}

func statusLine(snap state.Snapshot) string {
	var parts []string
	if snap.HasStatus {
		parts = append(parts, snap.Status.Label())
	}
	if !snap.LastUpdated.IsZero() {
		parts = append(parts, "updated "+snap.LastUpdated.Format("15:04:05"))
	}
	if snap.IsOffline() {
		parts = append(parts, "offline")
	}
	return strings.Join(parts, " · ")
}
