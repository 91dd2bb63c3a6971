package hermes_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lunagic/hermes/hermes"
	"github.com/lunagic/hermes/hermesservices/vault"
	"gotest.tools/v3/assert"
)

func writeFile(t *testing.T, name string, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	assert.NilError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestSiteClientFetchPage(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/vehicleteam/search" {
			http.NotFound(w, r)
			return
		}

		cookie, err := r.Cookie("JSESSIONID")
		if err != nil || cookie.Value != "abc" {
			_, _ = w.Write([]byte(`{"code": 1, "values": {"message": "请登录"}}`))
			return
		}

		if r.Header.Get("Referer") != "http://www.loji.com/logistics/search" {
			http.Error(w, "bad referer", http.StatusBadRequest)
			return
		}

		switch r.FormValue("page") {
		case "1":
			_, _ = w.Write([]byte(`{"code": 0, "values": {"pageResult": {"content": [` + listingJSON + `, null]}}}`))
		case "2":
			_, _ = w.Write([]byte(`{"code": 0, "values": {"pageResult": {"content": []}}}`))
		default:
			_, _ = w.Write([]byte(`<html>maintenance</html>`))
		}
	}))
	t.Cleanup(server.Close)

	config := hermes.NewConfig().Site()
	config.BaseURL = server.URL
	config.CookieFile = writeFile(t, "cookies.json", `{"JSESSIONID": "abc"}`)

	client, err := hermes.NewSiteClient(config)
	assert.NilError(t, err)

	{ // Items
		page, err := client.FetchPage(t.Context(), 1)
		assert.NilError(t, err)
		assert.Assert(t, page.OK())
		assert.Equal(t, page.Number, 1)
		assert.Equal(t, len(page.Items), 2)
	}

	{ // Empty content
		page, err := client.FetchPage(t.Context(), 2)
		assert.NilError(t, err)
		assert.Assert(t, page.OK())
		assert.Equal(t, len(page.Items), 0)
	}

	{ // Bodies that are not JSON
		_, err := client.FetchPage(t.Context(), 3)
		assert.ErrorIs(t, err, hermes.ErrDecode)
	}

	{ // Refusals carry the site message
		config.CookieFile = ""
		anonymous, err := hermes.NewSiteClient(config)
		assert.NilError(t, err)

		page, err := anonymous.FetchPage(t.Context(), 1)
		assert.NilError(t, err)
		assert.Assert(t, !page.OK())
		assert.Equal(t, page.Message, "请登录")
	}
}

func TestSiteClientNetworkFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	config := hermes.NewConfig().Site()
	config.BaseURL = server.URL
	config.CookieFile = ""
	config.Timeout = time.Second

	client, err := hermes.NewSiteClient(config)
	assert.NilError(t, err)

	_, err = client.FetchPage(t.Context(), 1)
	assert.ErrorIs(t, err, hermes.ErrNetwork)
}

func TestLoadCookies(t *testing.T) {
	t.Parallel()

	{ // Object of name/value pairs
		cookies, err := hermes.LoadCookies(writeFile(t, "object.json", `{"a": "1"}`))
		assert.NilError(t, err)
		assert.Equal(t, len(cookies), 1)
		assert.Equal(t, cookies[0].Name, "a")
		assert.Equal(t, cookies[0].Value, "1")
	}

	{ // Browser export
		cookies, err := hermes.LoadCookies(writeFile(t, "array.json", `[
			{"name": "a", "value": "1", "domain": ".loji.com", "path": "/"},
			{"name": "", "value": "ignored"}
		]`))
		assert.NilError(t, err)
		assert.Equal(t, len(cookies), 1)
		assert.Equal(t, cookies[0].Domain, ".loji.com")
	}

	{ // Anything else
		_, err := hermes.LoadCookies(writeFile(t, "bad.json", `"cookie"`))
		assert.ErrorContains(t, err, "neither an object nor an array")
	}

	{ // Missing file
		_, err := hermes.LoadCookies(filepath.Join(t.TempDir(), "missing.json"))
		assert.ErrorContains(t, err, "reading cookie file")
	}
}

func TestSealedCookies(t *testing.T) {
	t.Parallel()

	key := "0123456789abcdef0123456789abcdef"
	v, err := vault.New([]byte(key))
	assert.NilError(t, err)

	plain := writeFile(t, "cookies.json", `{"JSESSIONID": "abc"}`)
	sealed := filepath.Join(t.TempDir(), "cookies.sealed")
	assert.NilError(t, hermes.SealCookies(plain, sealed, v))

	{ // Sealed files are not JSON
		_, err := hermes.LoadCookies(sealed)
		assert.ErrorContains(t, err, "neither an object nor an array")
	}

	{ // Opened with the key
		cookies, err := hermes.LoadSealedCookies(sealed, v)
		assert.NilError(t, err)
		assert.Equal(t, len(cookies), 1)
		assert.Equal(t, cookies[0].Value, "abc")
	}

	{ // The site client opens them when given the key
		config := hermes.NewConfig().Site()
		config.CookieFile = sealed
		config.CookieKey = key
		_, err := hermes.NewSiteClient(config)
		assert.NilError(t, err)

		config.CookieKey = "fedcba9876543210fedcba9876543210"
		_, err = hermes.NewSiteClient(config)
		assert.ErrorIs(t, err, vault.ErrSealed)
	}

	{ // Only valid cookie files are sealed
		err := hermes.SealCookies(writeFile(t, "bad.json", `42`), sealed+".bad", v)
		assert.ErrorContains(t, err, "neither an object nor an array")
	}
}
