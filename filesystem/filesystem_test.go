package filesystem

import (
	"strings"
	"testing"

	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func TestApi(t *testing.T) {
	Convey("Filesystem API", t, func() {
		Convey("Should default to OsFs", func() {
			SetOsFs()
			So(API().Name(), ShouldEqual, "OsFs")
			So(IsNative(), ShouldBeTrue)
		})

		Convey("Should switch to MemMapFs", func() {
			SetMemMapFs()
			So(API().Name(), ShouldEqual, "MemMapFS")
			So(IsNative(), ShouldBeFalse)
		})

		Convey("WriteTemp should keep the suffix and content", func() {
			SetMemMapFs()
			lo.Must0(API().MkdirAll("/tmp/subs", 0o755))

			path, err := WriteTemp("/tmp/subs", ".srt", []byte("1\n00:00:01,000 --> 00:00:02,000\nhi\n"))
			So(err, ShouldBeNil)
			So(strings.HasSuffix(path, ".srt"), ShouldBeTrue)
			So(string(lo.Must(API().ReadFile(path))), ShouldContainSubstring, "hi")
		})
	})
}
