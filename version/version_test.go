package version

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCompare(t *testing.T) {
	Convey("Compare orders semantic versions", t, func() {
		for _, tc := range []struct {
			a, b string
			want int
		}{
			{"1.2.3", "1.2.3", 0},
			{"v1.2.3", "1.2.3", 0},
			{"1.10.0", "1.9.9", 1},
			{"0.1.0", "0.2.0", -1},
			{"2.0.0", "1.99.99", 1},
		} {
			got, err := Compare(tc.a, tc.b)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, tc.want)
		}
	})

	Convey("Compare rejects malformed versions", t, func() {
		_, err := Compare("latest", "1.0.0")
		So(err, ShouldNotBeNil)
	})
}

func TestFetchLatest(t *testing.T) {
	Convey("Given a release endpoint", t, func() {
		tag := "v1.4.0"
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"tag_name":"` + tag + `"}`))
		}))
		Reset(server.Close)

		Convey("The tag is returned without its prefix", func() {
			v, err := fetchLatest(context.Background(), server.URL)
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "1.4.0")
		})

		Convey("An empty tag is an error", func() {
			tag = ""
			_, err := fetchLatest(context.Background(), server.URL)
			So(err, ShouldNotBeNil)
		})
	})
}
