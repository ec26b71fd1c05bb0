package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	gconfig "github.com/Laisky/go-config/v2"
	"github.com/stretchr/testify/require"

	"github.com/Laisky/laisky-notion-blog/library/log"
)

// TestNormalizeHost verifies host normalization strips ports and lowercases values.
func TestNormalizeHost(t *testing.T) {
	require.Equal(t, "blog.laisky.com", normalizeHost("BLOG.LAISKY.COM:443"))
	require.Equal(t, "notes.laisky.com", normalizeHost("notes.laisky.com."))
	require.Equal(t, "127.0.0.1", normalizeHost("127.0.0.1:8080"))
}

// TestNormalizeScheme verifies unknown schemes fall back to light.
func TestNormalizeScheme(t *testing.T) {
	require.Equal(t, SchemeDark, NormalizeScheme(" Dark "))
	require.Equal(t, SchemeLight, NormalizeScheme("light"))
	require.Equal(t, SchemeLight, NormalizeScheme(""))
	require.Equal(t, SchemeLight, NormalizeScheme("sepia"))
}

// TestSiteConfigSetResolveHost verifies site resolution respects the Host and X-Forwarded-Host headers.
func TestSiteConfigSetResolveHost(t *testing.T) {
	oldSites := gconfig.Shared.GetStringMap("settings.web.sites")
	siteSettings := map[string]any{
		"blog": map[string]any{
			"hosts":  []string{"blog.laisky.com"},
			"title":  "Laisky Blog",
			"scheme": "light",
		},
		"notes": map[string]any{
			"host":    "notes.laisky.com",
			"title":   "Laisky Notes",
			"scheme":  "dark",
			"default": true,
		},
	}
	gconfig.Shared.Set("settings.web.sites", siteSettings)
	t.Cleanup(func() {
		gconfig.Shared.Set("settings.web.sites", oldSites)
	})

	set := loadSiteConfigSet(log.Logger.Named("site_config_test"))

	req := httptest.NewRequest(http.MethodGet, "https://notes.laisky.com/", nil)
	req.Host = "notes.laisky.com"
	site := set.resolveForRequest(req)
	require.Equal(t, "notes", site.ID)
	require.Equal(t, SchemeDark, site.Scheme)

	req = httptest.NewRequest(http.MethodGet, "https://blog.laisky.com/", nil)
	req.Host = "blog.laisky.com:443"
	site = set.resolveForRequest(req)
	require.Equal(t, "blog", site.ID)
	require.Equal(t, SchemeLight, site.Scheme)

	req = httptest.NewRequest(http.MethodGet, "https://unknown.laisky.com/", nil)
	req.Host = "unknown.laisky.com"
	site = set.resolveForRequest(req)
	require.Equal(t, "notes", site.ID)

	req = httptest.NewRequest(http.MethodGet, "https://example.com/", nil)
	req.Header.Set("X-Forwarded-Host", "blog.laisky.com, proxy.local")
	pageSite := set.pageSite(req)
	require.Equal(t, "blog", pageSite.ID)
	require.Equal(t, "Laisky Blog", pageSite.Title)
}
