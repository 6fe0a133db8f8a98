package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/godilite/feedback-server/internal/config"
)

// setEnv sets key/value pairs and returns a func restoring an unset state.
// goconvey re-enters the root once per leaf, so env must be cleared per leaf.
func setEnv(kv ...string) func() {
	for i := 0; i+1 < len(kv); i += 2 {
		_ = os.Setenv(kv[i], kv[i+1])
	}
	return func() {
		for i := 0; i < len(kv); i += 2 {
			_ = os.Unsetenv(kv[i])
		}
	}
}

func TestLoad(t *testing.T) {
	convey.Convey("Given the config loader", t, func() {
		convey.Convey("When nothing is set", func() {
			cfg, err := config.Load()

			convey.Convey("Then defaults apply", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.GRPCPort, convey.ShouldEqual, 50051)
				convey.So(cfg.DBDriver, convey.ShouldEqual, "sqlite3")
				convey.So(cfg.DraftResetDelay, convey.ShouldEqual, 5*time.Second)
				convey.So(cfg.DashboardCacheTTL, convey.ShouldEqual, 10*time.Minute)
				convey.So(cfg.FallbackCriteria, convey.ShouldHaveLength, 4)
			})
		})

		convey.Convey("When environment variables are set", func() {
			defer setEnv(
				"FEEDBACK_GRPC_PORT", "6000",
				"FEEDBACK_DRAFT_RESET_DELAY", "2s",
				"FEEDBACK_GRPC_REFLECTION_ENABLED", "true",
			)()

			cfg, err := config.Load()

			convey.Convey("Then they override defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.GRPCPort, convey.ShouldEqual, 6000)
				convey.So(cfg.DraftResetDelay, convey.ShouldEqual, 2*time.Second)
				convey.So(cfg.GRPCReflectionEnabled, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a YAML file and env are both set", func() {
			path := filepath.Join(t.TempDir(), "feedback.yaml")
			yamlContent := `
grpc_port: 7000
http_addr: ":9000"
dashboard_cache_ttl: 1m
fallback_criteria:
  - Wait time
  - Cleanliness
`
			convey.So(os.WriteFile(path, []byte(yamlContent), 0o600), convey.ShouldBeNil)
			defer setEnv("FEEDBACK_CONFIG", path, "FEEDBACK_HTTP_ADDR", ":9100")()

			cfg, err := config.Load()

			convey.Convey("Then env wins over the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.GRPCPort, convey.ShouldEqual, 7000)
				convey.So(cfg.HTTPAddr, convey.ShouldEqual, ":9100")
				convey.So(cfg.DashboardCacheTTL, convey.ShouldEqual, time.Minute)
				convey.So(cfg.FallbackCriteria, convey.ShouldResemble, []string{"Wait time", "Cleanliness"})
			})
		})

		convey.Convey("When the config file is missing", func() {
			defer setEnv("FEEDBACK_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))()

			_, err := config.Load()

			convey.Convey("Then loading fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When a value is out of range", func() {
			defer setEnv("FEEDBACK_GRPC_PORT", "70000")()

			_, err := config.Load()

			convey.Convey("Then it is rejected as invalid", func() {
				convey.So(err, convey.ShouldWrap, config.ErrInvalidConfig)
			})
		})

		convey.Convey("When a postgres driver is requested", func() {
			defer setEnv("FEEDBACK_DB_DRIVER", "postgres")()

			_, err := config.Load()

			convey.Convey("Then it is rejected", func() {
				convey.So(err, convey.ShouldWrap, config.ErrInvalidConfig)
			})
		})
	})
}

func TestDataSource(t *testing.T) {
	convey.Convey("DataSource enforces foreign keys", t, func() {
		cfg := config.Default()
		cfg.DBPath = "/tmp/feedback.db"
		convey.So(cfg.DataSource(), convey.ShouldEqual, "file:/tmp/feedback.db?_foreign_keys=on")

		cfg.DBPath = ":memory:"
		convey.So(cfg.DataSource(), convey.ShouldContainSubstring, "memory")
	})
}

func TestNewLogger(t *testing.T) {
	convey.Convey("NewLogger honours the level", t, func() {
		cfg := config.Default()
		cfg.LogLevel = "warn"
		logger, err := config.NewLogger(cfg)
		convey.So(err, convey.ShouldBeNil)
		convey.So(logger.Core().Enabled(-1), convey.ShouldBeFalse)

		cfg.LogLevel = "loud"
		_, err = config.NewLogger(cfg)
		convey.So(err, convey.ShouldWrap, config.ErrInvalidConfig)
	})
}
