package player

import (
	"runtime"
	"testing"

	"github.com/arflix-cli/arflix/constant"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBrowserCommand(t *testing.T) {
	Convey("The URL is the last argument of the handler", t, func() {
		cmd, err := browserCommand("https://cdn.example/movie.mp4")

		switch runtime.GOOS {
		case constant.Windows, constant.Darwin, constant.Linux, constant.Android:
			So(err, ShouldBeNil)
			So(cmd.Args[len(cmd.Args)-1], ShouldEqual, "https://cdn.example/movie.mp4")
		default:
			So(err, ShouldNotBeNil)
		}
	})
}
