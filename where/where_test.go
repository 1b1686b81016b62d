package where

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arflix-cli/arflix/filesystem"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestPaths(t *testing.T) {
	Convey("Path functions", t, func() {
		for name, fn := range map[string]func() string{
			"Config":    Config,
			"Cache":     Cache,
			"Logs":      Logs,
			"Resolvers": Resolvers,
			"Subtitles": Subtitles,
			"Temp":      Temp,
		} {
			fn := fn
			Convey(name+"() should exist as a directory", func() {
				path := fn()
				So(path, ShouldNotBeEmpty)
				So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
			})
		}

		Convey("Config() should honor the override variable", func() {
			custom := filepath.Join(os.TempDir(), "arflix-test-config")
			So(os.Setenv(EnvConfigPath, custom), ShouldBeNil)
			defer os.Unsetenv(EnvConfigPath)

			So(Config(), ShouldEqual, custom)
			So(Resolvers(), ShouldEqual, filepath.Join(custom, "resolvers"))
		})
	})
}
