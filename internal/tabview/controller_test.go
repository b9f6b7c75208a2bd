package tabview

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(id string, kv ...any) Item {
	values := map[string]any{}
	for i := 0; i+1 < len(kv); i += 2 {
		values[kv[i].(string)] = kv[i+1]
	}
	return NewRecord(id, values)
}

func numbered(n int) []Item {
	items := make([]Item, 0, n)
	for i := 1; i <= n; i++ {
		items = append(items, rec(fmt.Sprint(i), "name", fmt.Sprintf("user%02d", i)))
	}
	return items
}

func rowIDs(vm ViewModel) []string {
	out := make([]string, 0, len(vm.Rows))
	for _, row := range vm.Rows {
		out = append(out, row.Item.Identity())
	}
	return out
}

func TestViewModel_Idempotent(t *testing.T) {
	c := New(WithItems(numbered(12)), WithPageSize(5))
	c.SetSort("name")
	c.ToggleSelect("3")

	first := c.ViewModel()
	second := c.ViewModel()
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("ViewModel not idempotent (-first +second):\n%s", diff)
	}

	// Mutating the returned rows must not leak into the controller.
	first.Rows[0].Selected = !first.Rows[0].Selected
	third := c.ViewModel()
	assert.Empty(t, cmp.Diff(second, third))
}

func TestSetFilter_MatchesExactlyThePredicate(t *testing.T) {
	items := []Item{
		rec("1", "domain", "Foo.example"),
		rec("2", "domain", "bar.example"),
		rec("3", "domain", "FOOTBALL.test"),
		rec("4", "domain", "baz.test", "owner", "foo"),
		rec("5", "domain", "qux.test", "quota", 250),
	}
	c := New(WithItems(items), WithPageSize(PageSizeAll))

	for _, filter := range []string{"foo", "FOO", "test", "250", "nomatch", "  "} {
		c.SetFilter(filter)
		vm := c.ViewModel()
		got := map[string]bool{}
		for _, row := range vm.Rows {
			got[row.Item.Identity()] = true
		}
		needle := strings.ToLower(filter)
		for _, item := range items {
			want := strings.TrimSpace(filter) == "" || strings.Contains(strings.ToLower(DefaultSearchText(item)), needle)
			assert.Equalf(t, want, got[item.Identity()], "filter %q item %s", filter, item.Identity())
		}
		assert.Equal(t, len(got), vm.TotalItems)
		assert.Equal(t, len(items), vm.SourceItems)
	}
}

func TestSetFilter_KeepsSurroundingWhitespace(t *testing.T) {
	c := New(WithItems([]Item{rec("1", "name", "foobar"), rec("2", "name", "foob baz")}))

	c.SetFilter("foob ")
	assert.Equal(t, []string{"2"}, rowIDs(c.ViewModel()))
	assert.Equal(t, "foob ", c.State().FilterValue)

	c.SetFilter(" \t ")
	assert.Equal(t, []string{"1", "2"}, rowIDs(c.ViewModel()))
}

func TestSetFilter_IgnoresIdentity(t *testing.T) {
	c := New(WithItems([]Item{rec("12", "path", "/index.html"), rec("13", "path", "/a12.png")}))
	c.SetFilter("12")
	assert.Equal(t, []string{"13"}, rowIDs(c.ViewModel()))
}

func TestSetPageSize_HugeSizeKeepsOnePage(t *testing.T) {
	c := New(WithItems(numbered(3)), WithPageSize(2))
	c.SetPage(2)

	c.SetPageSize(math.MaxInt)
	vm := c.ViewModel()
	assert.Equal(t, 1, vm.TotalPages)
	assert.Equal(t, 1, vm.CurrentPage)
	assert.Len(t, vm.Rows, 3)

	c.SetPage(5)
	assert.Equal(t, 1, c.ViewModel().CurrentPage)

	c.SetPageSize(math.MaxInt - 1)
	assert.Equal(t, 1, c.ViewModel().TotalPages)
}

func TestSetFilter_CaseFoldingBeyondASCII(t *testing.T) {
	c := New(WithItems([]Item{rec("1", "name", "ÉCOLE"), rec("2", "name", "ecole")}))
	c.SetFilter("écol")
	assert.Equal(t, []string{"1"}, rowIDs(c.ViewModel()))
}

func TestSetSort_StableTies(t *testing.T) {
	items := []Item{rec("1", "v", "b"), rec("2", "v", "a"), rec("3", "v", "a")}
	c := New(WithItems(items))

	c.SetSort("v")
	require.Equal(t, []string{"2", "3", "1"}, rowIDs(c.ViewModel()))

	c.SetSort("v")
	vm := c.ViewModel()
	assert.Equal(t, Descending, vm.SortDirection)
	assert.Equal(t, []string{"1", "2", "3"}, rowIDs(vm))

	c.SetSort("v")
	assert.Equal(t, Ascending, c.ViewModel().SortDirection)
}

func TestSetSort_NewFieldStartsAscending(t *testing.T) {
	c := New(WithItems([]Item{rec("1", "a", 2, "b", "x"), rec("2", "a", 1, "b", "y")}))
	c.SetSort("a")
	c.SetSort("a")
	c.SetSort("b")
	vm := c.ViewModel()
	assert.Equal(t, "b", vm.SortBy)
	assert.Equal(t, Ascending, vm.SortDirection)
	assert.Equal(t, []string{"1", "2"}, rowIDs(vm))
}

func TestSetSort_EmptyFieldRestoresSourceOrder(t *testing.T) {
	c := New(WithItems([]Item{rec("1", "n", 3), rec("2", "n", 1)}))
	c.SetSort("n")
	require.Equal(t, []string{"2", "1"}, rowIDs(c.ViewModel()))
	c.SetSort("")
	assert.Equal(t, []string{"1", "2"}, rowIDs(c.ViewModel()))
}

func TestSetSort_UnknownFieldKeepsOrder(t *testing.T) {
	c := New(WithItems(numbered(4)))
	c.SetSort("does_not_exist")
	assert.Equal(t, []string{"1", "2", "3", "4"}, rowIDs(c.ViewModel()))
}

func TestSetSort_NumericStringsAndMissingValues(t *testing.T) {
	items := []Item{
		rec("a", "disk", "100"),
		rec("b", "disk", "9"),
		rec("c"),
		rec("d", "disk", 10),
		rec("e", "disk", "unlimited"),
	}
	c := New(WithItems(items))
	c.SetSort("disk")
	assert.Equal(t, []string{"c", "b", "d", "a", "e"}, rowIDs(c.ViewModel()))
}

func TestSetSort_CustomComparator(t *testing.T) {
	byLength := func(a, b any) int {
		return len(FormatValue(a)) - len(FormatValue(b))
	}
	c := New(
		WithItems([]Item{rec("1", "s", "ccc"), rec("2", "s", "a"), rec("3", "s", "bb")}),
		WithComparator("s", byLength),
	)
	c.SetSort("s")
	assert.Equal(t, []string{"2", "3", "1"}, rowIDs(c.ViewModel()))
	c.SetSort("s")
	assert.Equal(t, []string{"1", "3", "2"}, rowIDs(c.ViewModel()))
}

func TestSetPage_Clamps(t *testing.T) {
	c := New(WithItems(numbered(25)), WithPageSize(10))

	c.SetPage(99)
	vm := c.ViewModel()
	assert.Equal(t, 3, vm.CurrentPage)
	assert.Equal(t, 3, vm.TotalPages)
	assert.Equal(t, []string{"21", "22", "23", "24", "25"}, rowIDs(vm))

	c.SetPage(-7)
	assert.Equal(t, 1, c.ViewModel().CurrentPage)

	c.SetPage(0)
	assert.Equal(t, 1, c.ViewModel().CurrentPage)

	c.SetPage(2)
	assert.Equal(t, 2, c.ViewModel().CurrentPage)
}

func TestPageResets(t *testing.T) {
	c := New(WithItems(numbered(50)), WithPageSize(10))

	c.SetPage(4)
	c.SetSort("name")
	assert.Equal(t, 4, c.ViewModel().CurrentPage, "sort must not move the page")

	c.SetFilter("user")
	assert.Equal(t, 1, c.ViewModel().CurrentPage, "filter resets the page")

	c.SetPage(4)
	c.SetPageSize(5)
	assert.Equal(t, 1, c.ViewModel().CurrentPage, "page size resets the page")

	c.SetPage(4)
	c.SetSortOrder("name", Descending)
	assert.Equal(t, 4, c.ViewModel().CurrentPage)
}

func TestSetPageSize_RejectsInvalid(t *testing.T) {
	c := New(WithItems(numbered(30)), WithPageSize(10))
	c.SetPage(2)

	for _, size := range []int{0, -2, -100} {
		c.SetPageSize(size)
		vm := c.ViewModel()
		assert.Equal(t, 10, vm.PageSize)
		assert.Equal(t, 2, vm.CurrentPage, "rejected size must not reset the page")
	}
}

func TestSetPageSize_All(t *testing.T) {
	c := New(WithItems(numbered(42)), WithPageSize(10))
	c.SetPage(3)
	c.SetPageSize(PageSizeAll)
	vm := c.ViewModel()
	assert.Equal(t, 1, vm.TotalPages)
	assert.Equal(t, 1, vm.CurrentPage)
	assert.Len(t, vm.Rows, 42)
	assert.Equal(t, PageSizeAll, vm.PageSize)

	c.SetPage(5)
	assert.Equal(t, 1, c.ViewModel().CurrentPage)
}

func TestSetItems_ClampsAndKeepsSettings(t *testing.T) {
	c := New(WithItems(numbered(30)), WithPageSize(10))
	c.SetSort("name")
	c.SetSort("name")
	c.SetFilter("user")
	c.SetPage(3)

	c.SetItems(numbered(12))
	vm := c.ViewModel()
	assert.Equal(t, 2, vm.CurrentPage)
	assert.Equal(t, "user", vm.FilterValue)
	assert.Equal(t, "name", vm.SortBy)
	assert.Equal(t, Descending, vm.SortDirection)
	assert.Equal(t, []string{"2", "1"}, rowIDs(vm))
}

func TestEmptyCollection(t *testing.T) {
	c := New()
	c.SetPage(5)
	c.SelectAll()
	vm := c.ViewModel()
	assert.Empty(t, vm.Rows)
	assert.Equal(t, 1, vm.TotalPages)
	assert.Equal(t, 1, vm.CurrentPage)
	assert.Equal(t, 0, vm.TotalItems)
	assert.False(t, vm.AllSelected)
}

func TestSelection_StickyAcrossRefresh(t *testing.T) {
	c := New(WithItems(numbered(8)), WithPageSize(PageSizeAll))
	c.ToggleSelect("5")
	require.Equal(t, []string{"5"}, c.Selected())

	without := append(numbered(4), numbered(8)[5:]...)
	c.SetItems(without)
	assert.Empty(t, c.Selected())
	assert.False(t, c.IsSelected("5"))
	for _, row := range c.ViewModel().Rows {
		assert.False(t, row.Selected, "row %s", row.Item.Identity())
	}

	c.SetItems(numbered(8))
	vm := c.ViewModel()
	for _, row := range vm.Rows {
		assert.Equal(t, row.Item.Identity() == "5", row.Selected, "row %s", row.Item.Identity())
	}
	assert.Equal(t, 1, vm.SelectedCount)
}

func TestToggleSelect_UnknownIdentityIgnored(t *testing.T) {
	c := New(WithItems(numbered(3)))
	c.ToggleSelect("404")
	assert.Empty(t, c.Selected())

	c.ToggleSelect("2")
	c.ToggleSelect("2")
	assert.Empty(t, c.Selected())
}

func TestSelectAll_RespectsFilter(t *testing.T) {
	items := numbered(10)
	items[1] = rec("2", "name", "foo-a")
	items[4] = rec("5", "name", "foo-b")
	items[8] = rec("9", "name", "the foo")
	c := New(WithItems(items), WithPageSize(2))

	c.SetFilter("foo")
	c.SelectAll()
	assert.Equal(t, []string{"2", "5", "9"}, c.Selected())

	c.SetFilter("")
	vm := c.ViewModel()
	assert.Equal(t, 3, vm.SelectedCount)
	assert.False(t, vm.AllSelected)
}

func TestDeselectAll_KeepsHiddenSelections(t *testing.T) {
	c := New(WithItems([]Item{rec("1", "n", "alpha"), rec("2", "n", "beta"), rec("3", "n", "alps")}))
	c.SelectAll()
	c.SetFilter("alp")
	c.DeselectAll()
	assert.Equal(t, []string{"2"}, c.Selected())
}

func TestAllSelected_Scopes(t *testing.T) {
	items := numbered(6)

	page := New(WithItems(items), WithPageSize(2))
	page.ToggleSelect("1")
	page.ToggleSelect("2")
	assert.True(t, page.ViewModel().AllSelected, "visible page fully selected")
	page.SetPage(2)
	assert.False(t, page.ViewModel().AllSelected)

	filtered := New(WithItems(items), WithPageSize(2), WithSelectScope(ScopeFiltered))
	filtered.ToggleSelect("1")
	filtered.ToggleSelect("2")
	assert.False(t, filtered.ViewModel().AllSelected)
	filtered.SelectAll()
	assert.True(t, filtered.ViewModel().AllSelected)
}

func TestChangeHook(t *testing.T) {
	var got []Change
	c := New(WithItems(numbered(3)), WithChangeHook(func(ch Change) { got = append(got, ch) }))
	c.SetFilter("x")
	c.SetSort("name")
	c.SetPage(1)
	c.SetPageSize(0)
	c.SetPageSize(5)
	c.ToggleSelect("1")
	c.SetItems(nil)
	assert.Equal(t, []Change{ChangeFilter, ChangeSort, ChangePage, ChangePageSize, ChangeSelection, ChangeItems}, got)
}

func TestState(t *testing.T) {
	c := New(WithItems(numbered(30)), WithPageSize(10), WithSort("name", Descending))
	c.SetFilter("user")
	c.SetPage(2)
	assert.Equal(t, State{
		FilterValue:   "user",
		SortBy:        "name",
		SortDirection: Descending,
		PageSize:      10,
		CurrentPage:   2,
	}, c.State())
}

func TestController_ConcurrentUse(t *testing.T) {
	c := New(WithItems(numbered(100)), WithPageSize(7))
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				switch (i + w) % 6 {
				case 0:
					c.SetItems(numbered(1 + (i*w)%100))
				case 1:
					c.SetFilter(fmt.Sprint(i % 10))
				case 2:
					c.SetSort("name")
				case 3:
					c.SetPage(i)
				case 4:
					c.ToggleSelect(fmt.Sprint(i % 50))
				default:
					vm := c.ViewModel()
					if vm.CurrentPage < 1 || vm.CurrentPage > vm.TotalPages {
						t.Errorf("page %d outside [1,%d]", vm.CurrentPage, vm.TotalPages)
					}
				}
			}
		}(w)
	}
	wg.Wait()
}

func TestRefresh(t *testing.T) {
	c := New(WithItems(numbered(2)))

	err := Refresh(context.Background(), c, ProviderFunc(func(context.Context) ([]Item, error) {
		return nil, errors.New("boom")
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, 2, c.ViewModel().SourceItems, "failed refresh keeps last-good items")

	err = Refresh(context.Background(), c, ProviderFunc(func(context.Context) ([]Item, error) {
		return numbered(5), nil
	}))
	require.NoError(t, err)
	assert.Equal(t, 5, c.ViewModel().SourceItems)

	assert.Error(t, Refresh(context.Background(), nil, nil))
}
