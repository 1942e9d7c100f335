package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaseURLStripsQuery(t *testing.T) {
	assert.Equal(t, "https://www.instagram.com/p/abc/",
		BaseURL("https://www.instagram.com/p/abc/?igshid=tracking"))
	assert.Equal(t, "https://www.instagram.com/p/abc/",
		BaseURL("https://www.instagram.com/p/abc/"))
}

func TestVariantsOrder(t *testing.T) {
	got := Variants("https://www.instagram.com/p/abc/?utm_source=x")
	assert.Equal(t, []string{
		"https://www.instagram.com/p/abc/?__a=1&__d=dis",
		"https://www.instagram.com/p/abc/?__a=1",
		"https://www.instagram.com/p/abc/",
		"https://i.instagram.com/p/abc/",
		"https://m.instagram.com/p/abc/",
	}, got)
}

func TestVariantsBareHost(t *testing.T) {
	got := Variants("https://instagram.com/p/abc/")
	assert.Contains(t, got, "https://i.instagram.com/p/abc/")
	assert.Contains(t, got, "https://m.instagram.com/p/abc/")
}

func TestVariantsSkipsSameSubdomain(t *testing.T) {
	got := Variants("https://m.instagram.com/p/abc/")
	// The mobile host is already the mobile host; only the API swap remains.
	assert.Contains(t, got, "https://i.instagram.com/p/abc/")
	for _, v := range got {
		assert.NotContains(t, v, "m.m.instagram.com")
	}
}
