package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ahmetildirim/sightreading.studio/internal/config"
	"github.com/ahmetildirim/sightreading.studio/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func runGenerate(args ...string) (string, error) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"generate"}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestGenerateCommandPitchOverrides(t *testing.T) {
	Convey("Given the generate command with pitch range overrides", t, func() {
		Convey("When the minimum pitch override is negative", func() {
			_, err := runGenerate("--min-pitch=-1")

			Convey("Then it should fail naming the typed value", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
				So(strings.Contains(err.Error(), "-1"), ShouldBeTrue)
			})
		})

		Convey("When the maximum pitch override is above 127", func() {
			_, err := runGenerate("--min-pitch=60", "--max-pitch=200")

			Convey("Then it should fail naming the typed value", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
				So(strings.Contains(err.Error(), "200"), ShouldBeTrue)
			})
		})

		Convey("When the overrides are valid", func() {
			out, err := runGenerate("--min-pitch=60", "--max-pitch=72", "--expected")

			Convey("Then the expected pitch sequence should be printed", func() {
				So(err, ShouldBeNil)
				So(out, ShouldNotBeEmpty)
			})
		})
	})
}
