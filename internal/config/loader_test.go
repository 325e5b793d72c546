package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"
	"github.com/thorsenk/rffl-tools/internal/config"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.Store, convey.ShouldEqual, config.StoreMemory)
				convey.So(cfg.Seasons, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("RFFL_ADDR", ":8080")
			_ = os.Setenv("RFFL_DATA_DIR", "/srv/rffl/data")
			_ = os.Setenv("RFFL_WORKER_COUNT", "3")
			_ = os.Setenv("RFFL_STORE", "sqlite")
			_ = os.Setenv("RFFL_SQLITE_PATH", "/srv/rffl/korm.db")
			_ = os.Setenv("RFFL_LOG_FORMAT", "json")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DataDir, convey.ShouldEqual, "/srv/rffl/data")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
				convey.So(cfg.Store, convey.ShouldEqual, config.StoreSQLite)
				convey.So(cfg.SQLitePath, convey.ShouldEqual, "/srv/rffl/korm.db")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			path := writeConfig(t, `
addr: ":9090"
queue_size: 16
worker_count: 2
league_id: "777"
seasons:
  - season: 2026
    start: 1
    end: 12
    entry_fee: 50
    pool: 600
    payouts:
      "1": 400
      "2": 200
`)
			_ = os.Setenv("RFFL_CONFIG", path)
			_ = os.Setenv("RFFL_WORKER_COUNT", "8")

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values load and env still wins", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 16)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 8)
				convey.So(cfg.LeagueID, convey.ShouldEqual, "777")
				convey.So(len(cfg.Seasons), convey.ShouldEqual, 1)
				convey.So(cfg.Seasons[0].End, convey.ShouldEqual, 12)
				convey.So(cfg.Registry().Lookup(2026).Payouts[1], convey.ShouldEqual, 400)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			_ = os.Setenv("RFFL_CONFIG", writeConfig(t, `invalid: yaml: content: [`))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with a non-existent file", func() {
			_ = os.Setenv("RFFL_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

			_, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the loaded config is invalid", func() {
			_ = os.Setenv("RFFL_STORE", "postgres")

			_, err := config.Load(ctx)

			convey.Convey("Then validation rejects it", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rffl.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func clearConfigEnvVars() {
	for _, name := range []string{
		"RFFL_CONFIG", "RFFL_ADDR", "RFFL_DATA_DIR", "RFFL_OUTPUT_DIR", "RFFL_WORKER_COUNT",
		"RFFL_QUEUE_SIZE", "RFFL_DEDUPE_SIZE", "RFFL_LOG_LEVEL", "RFFL_LOG_FORMAT",
		"RFFL_STORE", "RFFL_SQLITE_PATH", "RFFL_LEAGUE_ID",
	} {
		_ = os.Unsetenv(name)
	}
}
