package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/satlens/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with only an access token", func() {
			_ = os.Setenv("SATLENS_ACCESS_TOKEN", "secret")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.AccessToken, convey.ShouldEqual, "secret")
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.BinCount, convey.ShouldEqual, 5)
			})
		})

		convey.Convey("When loading config with nothing set", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then validation rejects it", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("SATLENS_ADDR", ":8080")
			_ = os.Setenv("SATLENS_DATASET_FILE", "/tmp/sats.czml")
			_ = os.Setenv("SATLENS_SELECTION_MODE", "Single")
			_ = os.Setenv("SATLENS_BIN_COUNT", "7")
			_ = os.Setenv("SATLENS_TOP_N", "3")
			_ = os.Setenv("SATLENS_WATCH_DATASET", "true")
			_ = os.Setenv("SATLENS_ASSET_ID", "2456789")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DatasetFile, convey.ShouldEqual, "/tmp/sats.czml")
				convey.So(cfg.SelectionMode, convey.ShouldEqual, config.ModeSingle)
				convey.So(cfg.BinCount, convey.ShouldEqual, 7)
				convey.So(cfg.TopN, convey.ShouldEqual, 3)
				convey.So(cfg.WatchDataset, convey.ShouldBeTrue)
				convey.So(cfg.AssetID, convey.ShouldEqual, 2456789)
			})
		})

		convey.Convey("When loading config with a YAML file and env overrides", func() {
			tmpFile := createTempConfigFile(`
# viewer defaults
addr: ":9090"
access_token: "from-file"
default_metric: "S_T"
bottom_n: 4
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("SATLENS_CONFIG", tmpFile)
			_ = os.Setenv("SATLENS_ADDR", ":7070")

			cfg, err := config.Load(ctx)

			convey.Convey("Then env wins over file and file wins over defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.AccessToken, convey.ShouldEqual, "from-file")
				convey.So(cfg.DefaultMetric, convey.ShouldEqual, "S_T")
				convey.So(cfg.BottomN, convey.ShouldEqual, 4)
				convey.So(cfg.TopN, convey.ShouldEqual, 5)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("SATLENS_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("SATLENS_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("SATLENS_ACCESS_TOKEN", "secret")
			_ = os.Setenv("SATLENS_BIN_COUNT", "lots")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("SATLENS_ACCESS_TOKEN", "secret")
			_ = os.Setenv("SATLENS_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"SATLENS_CONFIG",
		"SATLENS_ADDR",
		"SATLENS_ACCESS_TOKEN",
		"SATLENS_DATASET_FILE",
		"SATLENS_SELECTION_MODE",
		"SATLENS_BIN_COUNT",
		"SATLENS_TOP_N",
		"SATLENS_WATCH_DATASET",
		"SATLENS_ASSET_ID",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "satlens-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	if err := tmpFile.Close(); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
