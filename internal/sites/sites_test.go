package sites

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "rarerabit", Key("Rare-Rabit"))
	assert.Equal(t, "snitch", Key(" SNITCH "))
	assert.Equal(t, "offduety", Key("off_duety"))
}

func TestBuiltin(t *testing.T) {
	r := NewRegistry(Builtin()...)
	assert.Equal(t, []string{"offduety", "rarerabit", "snitch"}, r.Names())

	snitch, ok := r.Lookup("Snitch")
	require.True(t, ok)
	assert.Equal(t, "https://www.snitch.com", snitch.BaseURL)
	require.Len(t, snitch.Targets, 4)
	assert.Equal(t, "https://www.snitch.com/collections/new-arrivals", snitch.Targets[0].URL)
	assert.Equal(t, "/products/", snitch.ProductPath)

	_, ok = r.Lookup("unknown")
	assert.False(t, ok)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sites.yaml")
	content := `
sites:
  - name: snitch
    base_url: https://staging.snitch.com/
    targets:
      - url: https://staging.snitch.com/collections/sale
        max_wait: 8s
  - name: Acme Store
    base_url: https://acme.example
    product_path: /p/
    selectors:
      listing: .tile
    targets:
      - url: https://acme.example/c/all
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfgs, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, cfgs, 2)

	assert.Equal(t, "https://staging.snitch.com", cfgs[0].BaseURL)
	assert.Equal(t, 8*time.Second, cfgs[0].Targets[0].MaxWait)
	assert.Equal(t, "/products/", cfgs[0].ProductPath)
	assert.Equal(t, shopifySelectors.Title, cfgs[0].Selectors.Title)

	assert.Equal(t, "/p/", cfgs[1].ProductPath)
	assert.Equal(t, ".tile", cfgs[1].Selectors.Listing)

	r := NewRegistry(Builtin()...)
	for _, c := range cfgs {
		r.Register(c)
	}
	snitch, ok := r.Lookup("snitch")
	require.True(t, ok)
	assert.Equal(t, "https://staging.snitch.com", snitch.BaseURL)
	_, ok = r.Lookup("acme-store")
	assert.True(t, ok)
}

func TestLoadFile_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sites.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sites:\n  - name: bad\n    base_url: https://bad.example\n"), 0o600))

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one target")

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
