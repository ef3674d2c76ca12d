package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dshills/godocsearch/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	p := New()
	assert.NotNil(t, p)
	assert.NotNil(t, p.fset)
}

func shopFiles() []string {
	return []string{
		filepath.Join("testdata", "shop", "cart.go"),
		filepath.Join("testdata", "shop", "doc.go"),
		filepath.Join("testdata", "shop", "cart_external_test.go"),
	}
}

func byName(entries []types.DocEntry) map[string]types.DocEntry {
	m := make(map[string]types.DocEntry, len(entries))
	for _, e := range entries {
		m[e.CanonicalName] = e
	}
	return m
}

func TestParsePackage_Shop(t *testing.T) {
	p := New()
	result, err := p.ParsePackage("example.com/shop", shopFiles())
	require.NoError(t, err)
	assert.False(t, result.HasErrors())
	assert.Equal(t, "shop", result.PackageName)
	assert.Equal(t, "example.com/shop", result.ImportPath)

	entries := byName(result.Entries)

	expected := []struct {
		name  string
		kind  types.EntryKind
		owner string
		label string
		path  string
	}{
		{"example.com/shop", types.KindModule, "example.com/shop", "", "packages/example.com/shop.html"},
		{"example.com/shop::Cart", types.KindModule, "example.com/shop::Cart", "", "types/example.com/shop/Cart.html"},
		{"example.com/shop::Cart#Owner", types.KindAttribute, "example.com/shop::Cart", "#Owner", "types/example.com/shop/Cart.html#attribute-i-Owner"},
		{"example.com/shop::Cart#Items", types.KindAttribute, "example.com/shop::Cart", "#Items", "types/example.com/shop/Cart.html#attribute-i-Items"},
		{"example.com/shop::Item#SKU", types.KindAttribute, "example.com/shop::Item", "#SKU", "types/example.com/shop/Item.html#attribute-i-SKU"},
		{"example.com/shop::Item#Name", types.KindAttribute, "example.com/shop::Item", "#Name", "types/example.com/shop/Item.html#attribute-i-Name"},
		{"example.com/shop::Cart#Add", types.KindMethod, "example.com/shop::Cart", "#Add(ctx context.Context, item Item, qty int)", "types/example.com/shop/Cart.html#method-i-Add"},
		{"example.com/shop::Cart#Each", types.KindMethod, "example.com/shop::Cart", "#Each(fn func(Item) bool)", "types/example.com/shop/Cart.html#method-i-Each"},
		{"example.com/shop#NewCart", types.KindMethod, "example.com/shop", ".NewCart(owner string, opts ...Option)", "packages/example.com/shop.html#method-c-NewCart"},
		{"example.com/shop::MaxItems", types.KindConstant, "example.com/shop", "::MaxItems", "packages/example.com/shop.html#constant-MaxItems"},
		{"example.com/shop::StatusOpen", types.KindConstant, "example.com/shop", "::StatusOpen", "packages/example.com/shop.html#constant-StatusOpen"},
		{"example.com/shop::ErrFull", types.KindConstant, "example.com/shop", "::ErrFull", "packages/example.com/shop.html#constant-ErrFull"},
		{"example.com/shop::Set#Has", types.KindMethod, "example.com/shop::Set", "#Has(v T)", "types/example.com/shop/Set.html#method-i-Has"},
	}

	for _, tt := range expected {
		t.Run(tt.name, func(t *testing.T) {
			e, ok := entries[tt.name]
			require.True(t, ok, "missing entry %s", tt.name)
			assert.Equal(t, tt.kind, e.Kind)
			assert.Equal(t, tt.owner, e.OwnerName)
			assert.Equal(t, tt.label, e.MemberLabel)
			assert.Equal(t, tt.path, e.Path)
			assert.NoError(t, e.Validate())
		})
	}

	for _, hidden := range []string{
		"example.com/shop::ledger",
		"example.com/shop::ledger#Post",
		"example.com/shop::Cart#recalc",
		"example.com/shop::Cart#total",
		"example.com/shop::statusGone",
		"example.com/shop#helper",
		"example.com/shop#Example",
	} {
		assert.NotContains(t, entries, hidden)
	}
}

func TestParsePackage_Descriptions(t *testing.T) {
	p := New()
	result, err := p.ParsePackage("example.com/shop", shopFiles())
	require.NoError(t, err)
	entries := byName(result.Entries)

	pkg := entries["example.com/shop"]
	assert.Contains(t, pkg.DescriptionHTML, "<p>Package shop models a small storefront.")
	assert.Contains(t, pkg.DescriptionHTML, "Carts collect items before checkout.")
	assert.Equal(t, filepath.Join("testdata", "shop", "doc.go"), pkg.File)

	assert.Contains(t, entries["example.com/shop::Cart"].DescriptionHTML, "Cart holds items for one customer.")
	assert.Contains(t, entries["example.com/shop::Cart#Owner"].DescriptionHTML, "Owner is the customer id.")
	assert.Contains(t, entries["example.com/shop::Cart#Items"].DescriptionHTML, "line items")
	assert.Contains(t, entries["example.com/shop::MaxItems"].DescriptionHTML, "caps the size")
	assert.Contains(t, entries["example.com/shop::StatusOpen"].DescriptionHTML, "still accepts items")
	assert.Empty(t, entries["example.com/shop::Item#SKU"].DescriptionHTML)
}

func TestParsePackage_Order(t *testing.T) {
	p := New()
	result, err := p.ParsePackage("example.com/shop", shopFiles())
	require.NoError(t, err)
	require.NotEmpty(t, result.Entries)

	// Package entry first, then declarations in file order.
	assert.Equal(t, "example.com/shop", result.Entries[0].CanonicalName)
	assert.Equal(t, "example.com/shop::MaxItems", result.Entries[1].CanonicalName)

	again, err := New().ParsePackage("example.com/shop", shopFiles())
	require.NoError(t, err)
	assert.Equal(t, result.Entries, again.Entries)
}

func TestParsePackage_SyntaxError(t *testing.T) {
	p := New()
	result, err := p.ParsePackage("example.com/broken", []string{filepath.Join("testdata", "broken", "broken.go")})
	require.NoError(t, err)

	assert.True(t, result.HasErrors())
	assert.Contains(t, result.Errors[0].Message, "syntax error")
	assert.Positive(t, result.Errors[0].Pos.Line)
	assert.Contains(t, result.Errors[0].Error(), "broken.go:")
	assert.Contains(t, byName(result.Entries), "example.com/broken#Good")
}

func TestParsePackage_Errors(t *testing.T) {
	p := New()

	t.Run("missing import path", func(t *testing.T) {
		_, err := p.ParsePackage("", shopFiles())
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := p.ParsePackage("example.com/x", []string{filepath.Join(t.TempDir(), "none.go")})
		assert.Error(t, err)
	})

	t.Run("mixed packages", func(t *testing.T) {
		dir := t.TempDir()
		a := filepath.Join(dir, "a.go")
		b := filepath.Join(dir, "b.go")
		require.NoError(t, os.WriteFile(a, []byte("package a\n\nfunc A() {}\n"), 0644))
		require.NoError(t, os.WriteFile(b, []byte("package b\n\nfunc B() {}\n"), 0644))

		result, err := p.ParsePackage("example.com/a", []string{a, b})
		require.NoError(t, err)
		assert.True(t, result.HasErrors())
		entries := byName(result.Entries)
		assert.Contains(t, entries, "example.com/a#A")
		assert.NotContains(t, entries, "example.com/a#B")
	})

	t.Run("no files", func(t *testing.T) {
		result, err := p.ParsePackage("example.com/empty", nil)
		require.NoError(t, err)
		assert.Empty(t, result.Entries)
	})
}

func TestExprToString(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "sig.go")
	src := `package sig

func Chans(in <-chan int, out chan<- string, both chan bool) {}
func Arrays(a [4]byte, m map[string][]int, p *[]string) {}
func Funcs(f func(int) (string, error), g func()) {}
func Generic(x List[int], y Pair[string, int]) {}
func Misc(v interface{}, s struct{ A int }) {}
`
	require.NoError(t, os.WriteFile(file, []byte(src), 0644))

	result, err := New().ParsePackage("sig", []string{file})
	require.NoError(t, err)
	entries := byName(result.Entries)

	assert.Equal(t, ".Chans(in <-chan int, out chan<- string, both chan bool)", entries["sig#Chans"].MemberLabel)
	assert.Equal(t, ".Arrays(a [4]byte, m map[string][]int, p *[]string)", entries["sig#Arrays"].MemberLabel)
	assert.Equal(t, ".Funcs(f func(int) (string, error), g func())", entries["sig#Funcs"].MemberLabel)
	assert.Equal(t, ".Generic(x List[int], y Pair[string, int])", entries["sig#Generic"].MemberLabel)
	assert.Equal(t, ".Misc(v interface{}, s struct{...})", entries["sig#Misc"].MemberLabel)
}
