package resolver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/arflix-cli/arflix/auth"
	"github.com/arflix-cli/arflix/constant"
	"github.com/arflix-cli/arflix/filesystem"
	"github.com/arflix-cli/arflix/key"
	"github.com/arflix-cli/arflix/log"
	"github.com/arflix-cli/arflix/network"
	"github.com/arflix-cli/arflix/where"
	"github.com/metafates/gache"
	"github.com/spf13/viper"
	lua "github.com/yuin/gopher-lua"
)

// Client performs the requests of the http_tls module.
var Client = network.Fingerprinted

// maxBody bounds response bodies handed to scripts.
const maxBody = 32 << 20

type response struct {
	Status  int               `json:"status"`
	Body    string            `json:"body"`
	Headers map[string]string `json:"headers"`
}

// registerHTTP installs the http_tls global:
//
//	http_tls.get(url [, headers])  -> body, status
//	http_tls.request(options)      -> {status, body, headers}
//
// options are {method, url, headers, body, cache}. Requests carry the keyring credential of the host
// and run under the context of the current Streams call.
func registerHTTP(L *lua.LState) {
	mod := L.NewTable()
	L.SetField(mod, "get", L.NewFunction(httpGet))
	L.SetField(mod, "request", L.NewFunction(httpRequest))
	L.SetGlobal("http_tls", mod)
}

func httpGet(L *lua.LState) int {
	url := L.CheckString(1)
	headers := tableToMap(L.OptTable(2, nil))

	resp, err := do(luaContext(L), http.MethodGet, url, headers, "")
	if err != nil {
		L.RaiseError("http_tls.get failed: %s", err.Error())
		return 0
	}

	L.Push(lua.LString(resp.Body))
	L.Push(lua.LNumber(resp.Status))
	return 2
}

func httpRequest(L *lua.LState) int {
	opts := L.CheckTable(1)

	method := strings.ToUpper(getStringField(opts, "method", http.MethodGet))
	url := getStringField(opts, "url", "")
	body := getStringField(opts, "body", "")
	if url == "" {
		L.RaiseError("http_tls.request: url is required")
		return 0
	}

	headers := map[string]string{}
	if tbl, ok := opts.RawGetString("headers").(*lua.LTable); ok {
		headers = tableToMap(tbl)
	}

	var cacher *gache.Cache[response]
	if lua.LVAsBool(opts.RawGetString("cache")) {
		cacher = gache.New[response](cacheOptions(method, url, body))
		if cached, expired, err := cacher.Get(); err == nil && !expired && cached.Status != 0 {
			log.Tracef("resolver cache hit for %s %s", method, url)
			L.Push(responseToTable(L, cached))
			return 1
		}
	}

	resp, err := do(luaContext(L), method, url, headers, body)
	if err != nil {
		L.RaiseError("http_tls.request failed: %s", err.Error())
		return 0
	}

	if cacher != nil && resp.Status == http.StatusOK {
		if err := cacher.Set(resp); err != nil {
			log.Warnf("cache resolver response %s: %s", url, err)
		}
	}

	L.Push(responseToTable(L, resp))
	return 1
}

func luaContext(L *lua.LState) context.Context {
	if ctx := L.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func do(ctx context.Context, method, url string, headers map[string]string, body string) (response, error) {
	var reqBody io.Reader
	if body != "" {
		reqBody = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return response{}, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", constant.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	for k, v := range auth.Headers(url) {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := Client.Do(req)
	if err != nil {
		return response{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return response{}, fmt.Errorf("read body: %w", err)
	}

	out := response{
		Status:  resp.StatusCode,
		Body:    string(data),
		Headers: make(map[string]string, len(resp.Header)),
	}
	for k := range resp.Header {
		out.Headers[strings.ToLower(k)] = resp.Header.Get(k)
	}
	return out, nil
}

// CacheDir is where responses of cached resolver requests are stored.
func CacheDir() string {
	return filepath.Join(where.Cache(), "resolvers")
}

func cacheOptions(method, url, body string) *gache.Options {
	lifetime := viper.GetDuration(key.ResolversCacheLifetime)
	if lifetime <= 0 {
		lifetime = 10 * time.Minute
	}

	sum := sha256.Sum256([]byte(method + " " + url + "\n" + body))
	return &gache.Options{
		Path:       filepath.Join(CacheDir(), hex.EncodeToString(sum[:])+".json"),
		Lifetime:   lifetime,
		FileSystem: &filesystem.GacheFs{},
	}
}

func responseToTable(L *lua.LState, resp response) *lua.LTable {
	result := L.NewTable()
	L.SetField(result, "status", lua.LNumber(resp.Status))
	L.SetField(result, "body", lua.LString(resp.Body))

	headers := L.NewTable()
	for k, v := range resp.Headers {
		headers.RawSetString(k, lua.LString(v))
	}
	L.SetField(result, "headers", headers)
	return result
}

func tableToMap(tbl *lua.LTable) map[string]string {
	m := make(map[string]string)
	if tbl == nil {
		return m
	}
	tbl.ForEach(func(k, v lua.LValue) {
		m[k.String()] = v.String()
	})
	return m
}

func getStringField(tbl *lua.LTable, key string, def string) string {
	val := tbl.RawGetString(key)
	if val == lua.LNil {
		return def
	}
	return val.String()
}
