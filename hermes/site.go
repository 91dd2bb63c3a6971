package hermes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/lunagic/hermes/hermesservices/vault"
)

var (
	// ErrNetwork means the site could not be reached; the run stops.
	ErrNetwork = errors.New("network failure")
	// ErrDecode means the response body was not the expected JSON; the page
	// is skipped.
	ErrDecode = errors.New("undecodable response")
)

type SiteConfig struct {
	BaseURL    string
	SearchPath string
	Referer    string
	UserAgent  string
	CookieFile string
	// CookieKey, when set, means CookieFile was written by SealCookies.
	CookieKey string
	Timeout   time.Duration
}

// Page is one decoded search result page.
type Page struct {
	Number  int
	Code    int
	Message string
	Items   []json.RawMessage
}

func (page Page) OK() bool {
	return page.Code == 0
}

type pageEnvelope struct {
	Code   int `json:"code"`
	Values struct {
		Message    string `json:"message"`
		PageResult struct {
			Content []json.RawMessage `json:"content"`
		} `json:"pageResult"`
	} `json:"values"`
}

// SiteClient posts page numbers to the vehicle team search.
type SiteClient struct {
	http       *resty.Client
	searchPath string
}

func NewSiteClient(config SiteConfig) (*SiteClient, error) {
	client := resty.New()
	client.SetBaseURL(config.BaseURL)
	client.SetTimeout(config.Timeout)
	client.SetHeaders(map[string]string{
		"Accept":          "*/*",
		"Accept-Language": "zh-CN,zh;q=0.8",
		"Connection":      "keep-alive",
		"User-Agent":      config.UserAgent,
		"Referer":         config.Referer,
	})

	if config.CookieFile != "" {
		cookies, err := loadConfiguredCookies(config)
		if err != nil {
			return nil, err
		}
		client.SetCookies(cookies)
	}

	return &SiteClient{
		http:       client,
		searchPath: config.SearchPath,
	}, nil
}

func (site *SiteClient) FetchPage(ctx context.Context, number int) (Page, error) {
	res, err := site.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"page": strconv.Itoa(number),
		}).
		Post(site.searchPath)
	if err != nil {
		return Page{}, fmt.Errorf("%w: page %d: %w", ErrNetwork, number, err)
	}

	envelope := pageEnvelope{}
	if err := json.Unmarshal(res.Body(), &envelope); err != nil {
		return Page{}, fmt.Errorf("%w: page %d (status %d): %w", ErrDecode, number, res.StatusCode(), err)
	}

	return Page{
		Number:  number,
		Code:    envelope.Code,
		Message: envelope.Values.Message,
		Items:   envelope.Values.PageResult.Content,
	}, nil
}

type cookieEntry struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain"`
	Path   string `json:"path"`
}

func loadConfiguredCookies(config SiteConfig) ([]*http.Cookie, error) {
	if config.CookieKey == "" {
		return LoadCookies(config.CookieFile)
	}

	v, err := vault.New([]byte(config.CookieKey))
	if err != nil {
		return nil, err
	}

	return LoadSealedCookies(config.CookieFile, v)
}

// LoadCookies reads a JSON cookie file holding either an object of
// name/value pairs or a browser export array of {name, value, domain, path}.
func LoadCookies(path string) ([]*http.Cookie, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading cookie file: %w", err)
	}

	return parseCookies(path, content)
}

// LoadSealedCookies reads a cookie file written by SealCookies.
func LoadSealedCookies(path string, v vault.Vault) ([]*http.Cookie, error) {
	sealed, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading cookie file: %w", err)
	}

	content, err := v.Open(sealed)
	if err != nil {
		return nil, fmt.Errorf("opening cookie file %s: %w", path, err)
	}

	return parseCookies(path, content)
}

// SealCookies checks the plain cookie file at source and writes it sealed
// to target.
func SealCookies(source string, target string, v vault.Vault) error {
	content, err := os.ReadFile(source)
	if err != nil {
		return fmt.Errorf("reading cookie file: %w", err)
	}

	if _, err := parseCookies(source, content); err != nil {
		return err
	}

	sealed, err := v.Seal(content)
	if err != nil {
		return err
	}

	return os.WriteFile(target, sealed, 0o600)
}

func parseCookies(path string, content []byte) ([]*http.Cookie, error) {
	pairs := map[string]string{}
	if err := json.Unmarshal(content, &pairs); err == nil {
		cookies := []*http.Cookie{}
		for name, value := range pairs {
			cookies = append(cookies, &http.Cookie{Name: name, Value: value})
		}
		return cookies, nil
	}

	entries := []cookieEntry{}
	if err := json.Unmarshal(content, &entries); err != nil {
		return nil, fmt.Errorf("cookie file %s is neither an object nor an array: %w", path, err)
	}

	cookies := []*http.Cookie{}
	for _, entry := range entries {
		if entry.Name == "" {
			continue
		}
		cookies = append(cookies, &http.Cookie{
			Name:   entry.Name,
			Value:  entry.Value,
			Domain: entry.Domain,
			Path:   entry.Path,
		})
	}

	return cookies, nil
}
