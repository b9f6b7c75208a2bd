package panel

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/hostpanel/panelview/internal/tabview"
	"go.uber.org/zap"
)

// Listing describes one panel call whose result is shown as a table.
type Listing struct {
	Name     string
	Title    string
	Kind     string // KindUAPI or KindWHM
	Module   string // UAPI module, unused for WHM
	Function string
	// DataPath is a dot-separated path inside the response data leading to
	// the row array. Empty means the data itself is the array.
	DataPath string
	// Identity names the field holding each row's stable key.
	Identity string
	// ScalarField names the single column used when the rows are plain
	// strings rather than objects.
	ScalarField string
	// TimeFields are converted to time.Time so they sort chronologically.
	TimeFields []string
	Columns    []string
	Params     map[string]string
}

var builtinListings = []Listing{
	{
		Name:       "accounts",
		Title:      "Accounts",
		Kind:       KindWHM,
		Function:   "listaccts",
		DataPath:   "acct",
		Identity:   "user",
		TimeFields: []string{"unix_startdate"},
		Columns:    []string{"user", "domain", "email", "plan", "diskused", "suspended", "unix_startdate"},
	},
	{
		Name:     "email",
		Title:    "Email accounts",
		Kind:     KindUAPI,
		Module:   "Email",
		Function: "list_pops",
		Identity: "email",
		Columns:  []string{"email", "login", "suspended_login", "suspended_incoming"},
	},
	{
		Name:     "ftp",
		Title:    "FTP accounts",
		Kind:     KindUAPI,
		Module:   "Ftp",
		Function: "list_ftp",
		Identity: "user",
		Columns:  []string{"user", "type", "homedir"},
	},
	{
		Name:     "databases",
		Title:    "MySQL databases",
		Kind:     KindUAPI,
		Module:   "Mysql",
		Function: "list_databases",
		Identity: "database",
		Columns:  []string{"database", "disk_usage", "users"},
	},
	{
		Name:        "subdomains",
		Title:       "Subdomains",
		Kind:        KindUAPI,
		Module:      "DomainInfo",
		Function:    "list_domains",
		DataPath:    "sub_domains",
		ScalarField: "domain",
		Identity:    "domain",
		Columns:     []string{"domain"},
	},
}

// BuiltinListings returns the listings panelview knows without configuration.
func BuiltinListings() []Listing {
	out := make([]Listing, len(builtinListings))
	copy(out, builtinListings)
	return out
}

// Catalog indexes the built-in listings plus custom ones. Custom listings
// replace built-ins with the same name.
type Catalog struct {
	byName map[string]Listing
}

// NewCatalog builds a Catalog from the built-ins and custom.
func NewCatalog(custom ...Listing) *Catalog {
	c := &Catalog{byName: map[string]Listing{}}
	for _, l := range builtinListings {
		c.byName[l.Name] = l
	}
	for _, l := range custom {
		if l.Title == "" {
			l.Title = l.Name
		}
		c.byName[l.Name] = l
	}
	return c
}

// Lookup returns the listing called name.
func (c *Catalog) Lookup(name string) (Listing, error) {
	l, ok := c.byName[strings.TrimSpace(name)]
	if !ok {
		return Listing{}, fmt.Errorf("unknown listing %q (known: %s)", name, strings.Join(c.Names(), ", "))
	}
	return l, nil
}

// Names lists every listing name in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.byName))
	for name := range c.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ForKind returns the listings a client of kind can serve.
func (c *Catalog) ForKind(kind string) []Listing {
	var out []Listing
	for _, name := range c.Names() {
		if l := c.byName[name]; l.Kind == kind {
			out = append(out, l)
		}
	}
	return out
}

// rowsFromData walks DataPath inside data and converts the array found there
// into records.
func rowsFromData(l Listing, data any, logger *zap.Logger) ([]tabview.Item, error) {
	node := data
	if path := strings.TrimSpace(l.DataPath); path != "" {
		for _, segment := range strings.Split(path, ".") {
			obj, ok := node.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%s: data path %q: %q is not an object", l.Name, l.DataPath, segment)
			}
			node = obj[segment]
		}
	}
	if node == nil {
		return nil, nil
	}
	rows, ok := node.([]any)
	if !ok {
		return nil, fmt.Errorf("%s: expected an array of rows, got %T", l.Name, node)
	}

	scalar := l.ScalarField
	if scalar == "" {
		scalar = "value"
	}

	items := make([]tabview.Item, 0, len(rows))
	for i, row := range rows {
		var values map[string]any
		switch typed := row.(type) {
		case map[string]any:
			values = typed
		default:
			values = map[string]any{scalar: typed}
		}
		for _, field := range l.TimeFields {
			if raw, ok := values[field]; ok {
				if at := parseTimestamp(raw); !at.IsZero() {
					values[field] = at
				}
			}
		}

		id := identityOf(l, values)
		if id == "" {
			id = fmt.Sprintf("#%d", i)
			logger.Warn("row has no identity field",
				zap.String("listing", l.Name),
				zap.String("field", l.Identity),
				zap.Int("index", i))
		}
		items = append(items, tabview.NewRecord(id, values))
	}
	return items, nil
}

func identityOf(l Listing, values map[string]any) string {
	field := l.Identity
	if field == "" {
		field = l.ScalarField
	}
	if field == "" {
		return ""
	}
	v, ok := values[field]
	if !ok {
		return ""
	}
	if n, isNum := v.(json.Number); isNum {
		return n.String()
	}
	return strings.TrimSpace(tabview.FormatValue(v))
}
