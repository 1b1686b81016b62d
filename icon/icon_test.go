package icon

import (
	"testing"

	"github.com/arflix-cli/arflix/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestGet(t *testing.T) {
	Convey("Every icon has a glyph in every variant", t, func() {
		Reset(func() { viper.Set(key.IconsVariant, "plain") })

		for _, variant := range AvailableVariants() {
			viper.Set(key.IconsVariant, variant)
			for i := range icons {
				So(Get(i), ShouldNotBeEmpty)
			}
		}
	})

	Convey("Plain icons are ASCII", t, func() {
		viper.Set(key.IconsVariant, "plain")
		So(Get(Playable), ShouldEqual, "ok")
		So(Get(Unplayable), ShouldEqual, "no")
		So(Get(Pause), ShouldEqual, "||")
	})

	Convey("Unknown variants and icons render nothing", t, func() {
		viper.Set(key.IconsVariant, "")
		So(Get(Subtitle), ShouldBeEmpty)

		viper.Set(key.IconsVariant, "emoji")
		So(Get(Icon(-1)), ShouldBeEmpty)
	})
}
