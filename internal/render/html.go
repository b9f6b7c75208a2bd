package render

import (
	"embed"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/google/safehtml"
	"github.com/google/safehtml/template"
	"github.com/hostpanel/panelview/internal/tabview"
)

//go:embed templates/*
var templateFS embed.FS

// PageSizes are the page sizes offered by the HTML surface and the TUI.
var PageSizes = []int{10, 25, 50, 100, tabview.PageSizeAll}

// Page is everything the HTML surface shows for one request.
type Page struct {
	Title   string
	View    tabview.ViewModel
	Columns []string
	Status  string
	Error   string
}

// HTMLRenderer renders a Page with safehtml/template.
type HTMLRenderer struct {
	tableTemplate *template.Template
}

// NewHTMLRenderer parses the embedded templates.
func NewHTMLRenderer() (*HTMLRenderer, error) {
	trustedFS := template.TrustedFSFromEmbed(templateFS)
	tableTemplate, err := template.New("table.html").ParseFS(trustedFS, "templates/table.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &HTMLRenderer{tableTemplate: tableTemplate}, nil
}

// Render writes page as an HTML document.
func (r *HTMLRenderer) Render(w io.Writer, page Page) error {
	return r.tableTemplate.Execute(w, buildHTMLModel(page))
}

type htmlModel struct {
	Title         string
	Status        string
	Error         string
	Filter        string
	SortBy        string
	SortDirection string
	PageSize      string
	Summary       string
	AllSelected   bool
	Columns       []htmlColumn
	Rows          []htmlRow
	SizeLinks     []htmlLink
	PrevURL       safehtml.URL
	NextURL       safehtml.URL
	HasPrev       bool
	HasNext       bool
	JSONURL       safehtml.URL
}

type htmlColumn struct {
	Name      string
	Indicator string
	SortURL   safehtml.URL
}

type htmlRow struct {
	ID       string
	Selected bool
	Cells    []string
}

type htmlLink struct {
	Label   string
	URL     safehtml.URL
	Current bool
}

// query is the URL-encoded view state: the HTML surface's equivalent of the
// TUI's key bindings.
type query struct {
	Filter string
	Sort   string
	Dir    tabview.Direction
	Page   int
	Size   int
	Format string
}

func queryFromView(vm tabview.ViewModel) query {
	return query{
		Filter: vm.FilterValue,
		Sort:   vm.SortBy,
		Dir:    vm.SortDirection,
		Page:   vm.CurrentPage,
		Size:   vm.PageSize,
	}
}

func (q query) url() safehtml.URL {
	values := url.Values{}
	if q.Filter != "" {
		values.Set("filter", q.Filter)
	}
	if q.Sort != "" {
		values.Set("sort", q.Sort)
		values.Set("dir", string(q.Dir))
	}
	if q.Page > 1 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	values.Set("size", PageSizeLabel(q.Size))
	if q.Format != "" {
		values.Set("format", q.Format)
	}
	return safehtml.URLSanitized("?" + values.Encode())
}

// withSort mirrors Controller.SetSort: same column flips, new column ascends.
func (q query) withSort(column string) query {
	if q.Sort == column {
		if q.Dir == tabview.Descending {
			q.Dir = tabview.Ascending
		} else {
			q.Dir = tabview.Descending
		}
	} else {
		q.Sort = column
		q.Dir = tabview.Ascending
	}
	return q
}

func buildHTMLModel(page Page) htmlModel {
	vm := page.View
	columns := Columns(vm, page.Columns)
	base := queryFromView(vm)

	m := htmlModel{
		Title:         page.Title,
		Status:        page.Status,
		Error:         page.Error,
		Filter:        vm.FilterValue,
		SortBy:        vm.SortBy,
		SortDirection: string(vm.SortDirection),
		PageSize:      PageSizeLabel(vm.PageSize),
		Summary:       Summary(vm),
		AllSelected:   vm.AllSelected,
		HasPrev:       vm.CurrentPage > 1,
		HasNext:       vm.CurrentPage < vm.TotalPages,
	}
	if m.Title == "" {
		m.Title = "panelview"
	}

	for _, col := range columns {
		m.Columns = append(m.Columns, htmlColumn{
			Name:      col,
			Indicator: SortIndicator(vm, col),
			SortURL:   base.withSort(col).url(),
		})
	}
	for _, row := range vm.Rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = Cell(row.Item, col)
		}
		m.Rows = append(m.Rows, htmlRow{ID: row.Item.Identity(), Selected: row.Selected, Cells: cells})
	}
	for _, size := range PageSizes {
		q := base
		q.Size = size
		q.Page = 1
		m.SizeLinks = append(m.SizeLinks, htmlLink{
			Label:   PageSizeLabel(size),
			URL:     q.url(),
			Current: size == vm.PageSize,
		})
	}

	prev, next := base, base
	prev.Page--
	next.Page++
	m.PrevURL = prev.url()
	m.NextURL = next.url()

	jsonQ := base
	jsonQ.Format = string(FormatJSON)
	m.JSONURL = jsonQ.url()
	return m
}
