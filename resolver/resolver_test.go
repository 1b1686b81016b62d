package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/arflix-cli/arflix/auth"
	"github.com/arflix-cli/arflix/filesystem"
	"github.com/arflix-cli/arflix/source"
	"github.com/arflix-cli/arflix/where"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/zalando/go-keyring"
)

func TestMain(m *testing.M) {
	filesystem.SetMemMapFs()
	keyring.MockInit()
	m.Run()
}

func install(name, code string) string {
	path := filepath.Join(where.Resolvers(), name+Extension)
	So(filesystem.API().WriteFile(path, []byte(code), 0644), ShouldBeNil)
	return path
}

func TestStreams(t *testing.T) {
	Convey("Given a resolver returning mixed entries", t, func() {
		path := install("mixed", `
function Streams(query)
	return {
		{ url = "https://cdn/a.m3u8", title = query .. " 1080p", kind = "m3u8", quality = "1080p",
		  codec = "h264", hdr = false, size = 1500000000, seeds = "42",
		  headers = { Referer = "https://site" } },
		{ title = "no url" },
		"garbage",
		{ url = "https://cdn/b.mkv", name = "Fallback name" },
		{ url = "https://cdn/c.mp4" },
	}
end`)

		r, err := Load(path)
		So(err, ShouldBeNil)
		Reset(r.Close)

		So(r.Name(), ShouldEqual, "mixed")
		So(r.ID(), ShouldEqual, "mixed lua")

		Convey("Valid entries should be decoded in order and invalid ones skipped", func() {
			candidates, err := r.Streams(context.Background(), "Movie")
			So(err, ShouldBeNil)
			So(candidates, ShouldHaveLength, 3)

			first := candidates[0]
			So(first.URL, ShouldEqual, "https://cdn/a.m3u8")
			So(first.Title, ShouldEqual, "Movie 1080p")
			So(first.Kind, ShouldEqual, source.KindHLS)
			So(first.Quality.OrEmpty(), ShouldEqual, "1080p")
			So(first.Codec.OrEmpty(), ShouldEqual, "h264")
			So(first.HDR.IsPresent(), ShouldBeTrue)
			So(first.SizeBytes.OrEmpty(), ShouldEqual, 1500000000)
			So(first.Seeds.OrEmpty(), ShouldEqual, 42)
			So(first.Peers.IsPresent(), ShouldBeFalse)
			So(first.Headers["Referer"], ShouldEqual, "https://site")

			So(candidates[1].Title, ShouldEqual, "Fallback name")
			So(candidates[1].Kind, ShouldEqual, source.KindUnknown)
			So(candidates[1].Index, ShouldEqual, 1)
			So(candidates[2].Title, ShouldEqual, "https://cdn/c.mp4")
			So(candidates[2].Quality.IsPresent(), ShouldBeFalse)
		})
	})

	Convey("Given scripts that fail", t, func() {
		Convey("A missing Streams function should fail to load", func() {
			_, err := Load(install("nofn", `function Search(q) return {} end`))
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "Streams")
		})

		Convey("A syntax error should fail to load", func() {
			_, err := Load(install("broken", `function Streams(q) return {`))
			So(err, ShouldNotBeNil)
		})

		Convey("Only invalid entries should be reported as an error", func() {
			r, err := Load(install("invalid", `function Streams(q) return { { title = "x" } } end`))
			So(err, ShouldBeNil)
			defer r.Close()

			_, err = r.Streams(context.Background(), "q")
			So(errors.Is(err, source.ErrNoURL), ShouldBeTrue)
		})

		Convey("An empty result should be ErrNoStreams", func() {
			r, err := Load(install("empty", `function Streams(q) return {} end`))
			So(err, ShouldBeNil)
			defer r.Close()

			_, err = r.Streams(context.Background(), "q")
			So(errors.Is(err, ErrNoStreams), ShouldBeTrue)
		})

		Convey("A runaway script should stop with its context", func() {
			r, err := Load(install("spin", `function Streams(q) while true do end end`))
			So(err, ShouldBeNil)
			defer r.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			_, err = r.Streams(ctx, "q")
			So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
		})
	})
}

func TestHTTP(t *testing.T) {
	Convey("Given a server and a resolver using http_tls", t, func() {
		var hits atomic.Int32
		var authorization atomic.Value
		authorization.Store("")

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			authorization.Store(r.Header.Get("Authorization"))
			w.Header().Set("X-Echo", r.Header.Get("X-Custom"))
			_, _ = fmt.Fprintf(w, "%s/stream.m3u8", "https://cdn.example")
		}))
		Reset(srv.Close)

		Convey("get should return the body and status and send keyring credentials", func() {
			So(auth.SetToken(srv.URL, "secret"), ShouldBeNil)
			defer func() { _ = auth.DeleteToken(srv.URL) }()

			r, err := Load(install("httpget", `
function Streams(query)
	local body, status = http_tls.get(query, { ["X-Custom"] = "1" })
	return { { url = body, title = tostring(status) } }
end`))
			So(err, ShouldBeNil)
			defer r.Close()

			candidates, err := r.Streams(context.Background(), srv.URL)
			So(err, ShouldBeNil)
			So(candidates[0].URL, ShouldEqual, "https://cdn.example/stream.m3u8")
			So(candidates[0].Title, ShouldEqual, "200")
			So(authorization.Load(), ShouldEqual, "Bearer secret")
		})

		Convey("Cached requests should hit the server once", func() {
			r, err := Load(install("httpcache", `
function Streams(query)
	local a = http_tls.request({ url = query, cache = true, headers = { ["X-Custom"] = "v" } })
	local b = http_tls.request({ url = query, cache = true })
	return { { url = b.body, title = a.headers["x-echo"] } }
end`))
			So(err, ShouldBeNil)
			defer r.Close()

			candidates, err := r.Streams(context.Background(), srv.URL+"/cached")
			So(err, ShouldBeNil)
			So(candidates[0].URL, ShouldEqual, "https://cdn.example/stream.m3u8")
			So(candidates[0].Title, ShouldEqual, "v")
			So(hits.Load(), ShouldEqual, 1)
		})

		Convey("request without a url should raise", func() {
			r, err := Load(install("httpnourl", `function Streams(q) return http_tls.request({}) end`))
			So(err, ShouldBeNil)
			defer r.Close()

			_, err = r.Streams(context.Background(), "q")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "url is required")
		})
	})
}

type stubResolver struct {
	name       string
	candidates []*source.Candidate
	err        error
	delay      time.Duration
}

func (s *stubResolver) Name() string { return s.name }
func (s *stubResolver) ID() string   { return s.name }
func (s *stubResolver) Streams(context.Context, string) ([]*source.Candidate, error) {
	time.Sleep(s.delay)
	return s.candidates, s.err
}

func TestResolve(t *testing.T) {
	Convey("Given several resolvers", t, func() {
		slow := &stubResolver{name: "slow", delay: 20 * time.Millisecond, candidates: []*source.Candidate{
			source.New("https://a/1", "A1"),
			source.New("https://a/2", "A2"),
		}}
		failing := &stubResolver{name: "failing", err: errors.New("blocked")}
		fast := &stubResolver{name: "fast", candidates: []*source.Candidate{source.New("https://b/1", "B1")}}

		Convey("Candidates should keep resolver order and be renumbered", func() {
			candidates, err := Resolve(context.Background(), []source.Resolver{slow, failing, fast}, "q")
			So(err, ShouldBeNil)
			So(candidates, ShouldHaveLength, 3)
			So(candidates[0].Title, ShouldEqual, "A1")
			So(candidates[2].Title, ShouldEqual, "B1")
			So(candidates[2].Index, ShouldEqual, 2)
		})

		Convey("All failing should return their errors", func() {
			_, err := Resolve(context.Background(), []source.Resolver{failing}, "q")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "blocked")
		})

		Convey("No resolvers should be ErrNoStreams", func() {
			_, err := Resolve(context.Background(), nil, "q")
			So(errors.Is(err, ErrNoStreams), ShouldBeTrue)
		})
	})
}

func TestScripts(t *testing.T) {
	Convey("Given installed scripts", t, func() {
		install("zeta", "-- @name Zeta\n-- @url https://zeta.example\n-- @author someone\nfunction Streams(q) return {} end")
		install("_common", "return {}")

		Convey("They should be listed by name with their header", func() {
			scripts, err := Scripts()
			So(err, ShouldBeNil)

			names := Names()
			So(names, ShouldContain, "zeta")
			So(names, ShouldNotContain, "_common")

			zeta, ok := Get("zeta")
			So(ok, ShouldBeTrue)
			So(zeta.Meta.Name, ShouldEqual, "Zeta")
			So(zeta.Meta.URL, ShouldEqual, "https://zeta.example")
			So(zeta.Meta.Author, ShouldEqual, "someone")
			So(zeta.ID(), ShouldEqual, "zeta lua")

			for i := 1; i < len(scripts); i++ {
				So(scripts[i-1].Name, ShouldBeLessThan, scripts[i].Name)
			}
		})

		Convey("Generated scripts should load and be listed", func() {
			path, err := Generate("My Site", "https://my.site", "me")
			So(err, ShouldBeNil)
			So(filepath.Base(path), ShouldEqual, "My_Site.lua")

			script, ok := Get("My_Site")
			So(ok, ShouldBeTrue)
			So(script.Meta.Author, ShouldEqual, "me")

			r, err := script.Load()
			So(err, ShouldBeNil)
			r.Close()

			_, err = Generate("My Site", "https://my.site", "me")
			So(err, ShouldNotBeNil)

			So(Remove("My_Site"), ShouldBeNil)
			_, ok = Get("My_Site")
			So(ok, ShouldBeFalse)
			So(Remove("My_Site"), ShouldNotBeNil)
		})

		Convey("LoadAll should fail on unknown names", func() {
			_, err := LoadAll([]string{"zeta", "missing"})
			So(err, ShouldNotBeNil)

			loaded, err := LoadAll([]string{"zeta"})
			So(err, ShouldBeNil)
			So(loaded, ShouldHaveLength, 1)
			closeAll(loaded)
		})
	})
}

func TestInstall(t *testing.T) {
	Convey("Given a server hosting a resolver", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("function Streams(q) return { { url = 'https://x/' .. q } } end"))
		}))
		Reset(srv.Close)

		Convey("It should be installed once and then reported up to date", func() {
			path, changed, err := Install(context.Background(), srv.URL+"/remote.lua")
			So(err, ShouldBeNil)
			So(changed, ShouldBeTrue)
			So(filepath.Base(path), ShouldEqual, "remote.lua")

			_, changed, err = Install(context.Background(), srv.URL+"/remote.lua")
			So(err, ShouldBeNil)
			So(changed, ShouldBeFalse)

			r, err := Load(path)
			So(err, ShouldBeNil)
			defer r.Close()

			candidates, err := r.Streams(context.Background(), "q")
			So(err, ShouldBeNil)
			So(candidates[0].URL, ShouldEqual, "https://x/q")
		})

		Convey("Non-lua urls should be rejected", func() {
			_, _, err := Install(context.Background(), srv.URL+"/remote.txt")
			So(err, ShouldNotBeNil)

			_, _, err = Install(context.Background(), "ftp://host/x.lua")
			So(err, ShouldNotBeNil)
		})
	})
}
