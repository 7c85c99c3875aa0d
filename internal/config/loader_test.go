package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/bidhub/internal/config"
	"github.com/smartystreets/goconvey/convey"
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
				convey.So(cfg.Addr, convey.ShouldEqual, ":4000")
				convey.So(cfg.Store, convey.ShouldEqual, config.StoreMongo)
				convey.So(cfg.EventQueueSize, convey.ShouldEqual, 10_000)
			})
		})

		convey.Convey("When loading config with prefixed environment variables", func() {
			_ = os.Setenv("BIDHUB_ADDR", ":8080")
			_ = os.Setenv("BIDHUB_STORE", "memory")
			_ = os.Setenv("BIDHUB_QUEUE_SIZE", "500")
			_ = os.Setenv("BIDHUB_WORKER_COUNT", "3")
			_ = os.Setenv("BIDHUB_CORS_ORIGINS", "http://a.test, http://b.test")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.Store, convey.ShouldEqual, config.StoreMemory)
				convey.So(cfg.EventQueueSize, convey.ShouldEqual, 500)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
				convey.So(cfg.CORSOrigins, convey.ShouldResemble, []string{"http://a.test", "http://b.test"})
			})
		})

		convey.Convey("When loading config with the legacy variables", func() {
			_ = os.Setenv("PORT", "5050")
			_ = os.Setenv("MONGODB_URI", "mongodb://db.internal:27017")
			_ = os.Setenv("DB_NAME", "market")
			_ = os.Setenv("CORS_ORIGIN", "https://app.test")

			cfg, err := config.Load(ctx)

			convey.Convey("Then they map onto the config keys", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":5050")
				convey.So(cfg.MongoURI, convey.ShouldEqual, "mongodb://db.internal:27017")
				convey.So(cfg.MongoDatabase, convey.ShouldEqual, "market")
				convey.So(cfg.CORSOrigins, convey.ShouldResemble, []string{"https://app.test"})
			})

			convey.Convey("Then prefixed variables still win", func() {
				_ = os.Setenv("BIDHUB_ADDR", ":7000")
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7000")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			tmpFile := createTempConfigFile(`
addr: ":9090"
store: memory
log_format: json
queue_size: 300
ranking_refresh_sec: 0
cors_origins:
  - http://one.test
  - http://two.test
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("BIDHUB_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.Store, convey.ShouldEqual, config.StoreMemory)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.EventQueueSize, convey.ShouldEqual, 300)
				convey.So(cfg.RankingRefreshSec, convey.ShouldEqual, 0)
				convey.So(cfg.CORSOrigins, convey.ShouldResemble, []string{"http://one.test", "http://two.test"})
			})

			convey.Convey("Then environment variables should override file values", func() {
				_ = os.Setenv("BIDHUB_QUEUE_SIZE", "42")
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.EventQueueSize, convey.ShouldEqual, 42)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
			})

			convey.Convey("Then legacy variables override the file and prefixed ones override both", func() {
				_ = os.Setenv("PORT", "5050")
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":5050")

				_ = os.Setenv("BIDHUB_ADDR", ":7000")
				cfg, err = config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7000")
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile("addr: [unclosed")
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("BIDHUB_CONFIG", tmpFile)

			_, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("BIDHUB_CONFIG", "/non/existent/bidhub.yaml")

			_, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("BIDHUB_QUEUE_SIZE", "lots")

			_, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When loading config that fails validation", func() {
			_ = os.Setenv("BIDHUB_WORKER_COUNT", "0")

			_, err := config.Load(ctx)

			convey.Convey("Then it should return ErrInvalidConfig", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func clearConfigEnvVars() {
	envVars := []string{
		"BIDHUB_CONFIG",
		"BIDHUB_ADDR",
		"BIDHUB_STORE",
		"BIDHUB_QUEUE_SIZE",
		"BIDHUB_WORKER_COUNT",
		"BIDHUB_CORS_ORIGINS",
		"PORT",
		"MONGODB_URI",
		"DB_NAME",
		"CORS_ORIGIN",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "bidhub-config-*.yaml")
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
