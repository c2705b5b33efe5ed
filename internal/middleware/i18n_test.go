package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestI18NLocaleDetection(t *testing.T) {
	cases := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"default", nil, "en"},
		{"x-locale wins", map[string]string{"X-Locale": "es", "Accept-Language": "en-US"}, "es"},
		{"accept-language spanish", map[string]string{"Accept-Language": "es-MX,es;q=0.9"}, "es"},
		{"accept-language english", map[string]string{"Accept-Language": "en-GB,en;q=0.8"}, "en"},
		{"unsupported falls back", map[string]string{"Accept-Language": "fr-FR"}, "en"},
		{"garbage falls back", map[string]string{"X-Locale": "not-a-locale"}, "en"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got string
			h := I18N("en", nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = LocaleFromContext(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)
			if got != tc.want {
				t.Fatalf("locale = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestI18NCountryResolution(t *testing.T) {
	cases := []struct {
		name    string
		headers map[string]string
		lookup  CountryLookup
		want    string
	}{
		{"proxy header wins", map[string]string{"CF-IPCountry": "gb"}, nil, "GB"},
		{"locale region", map[string]string{"Accept-Language": "es-MX"}, nil, "MX"},
		{"geoip fallback", nil, func(ip string) (string, error) { return "US", nil }, "US"},
		{"nothing resolves", nil, nil, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got string
			h := I18N("en", tc.lookup)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = CountryFromContext(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "203.0.113.10:443"
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)
			if got != tc.want {
				t.Fatalf("country = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	req.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
	if got := ClientIP(req); got != "198.51.100.7" {
		t.Fatalf("ClientIP = %q", got)
	}
}
