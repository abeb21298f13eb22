package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToAbsoluteURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		ref  string
		want string
	}{
		{"relative path", "https://www.snitch.com", "/products/shirt-1", "https://www.snitch.com/products/shirt-1"},
		{"base with trailing slash", "https://www.snitch.com/", "/products/shirt-1", "https://www.snitch.com/products/shirt-1"},
		{"absolute untouched", "https://www.snitch.com", "https://cdn.example.com/products/a?x=1", "https://cdn.example.com/products/a?x=1"},
		{"query kept", "https://www.snitch.com", "/products/shirt-1?variant=2", "https://www.snitch.com/products/shirt-1?variant=2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToAbsoluteURL(tt.base, tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToAbsoluteURL_Errors(t *testing.T) {
	_, err := ToAbsoluteURL("https://www.snitch.com", "%zz")
	assert.Error(t, err)

	_, err = ToAbsoluteURL("/not/absolute", "/products/a")
	assert.Error(t, err)
}

func TestHashURL_Stable(t *testing.T) {
	a := HashURL("site-1")
	assert.Equal(t, a, HashURL("site-1"))
	assert.NotEqual(t, a, HashURL("site-2"))
	assert.Len(t, a, 64)
}
