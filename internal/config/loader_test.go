package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/glicko/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("GLICKO_ADDR", ":8080")
			_ = os.Setenv("GLICKO_TAU", "0.3")
			_ = os.Setenv("GLICKO_DEFAULT_VOLATILITY", "0.09")
			_ = os.Setenv("GLICKO_MAX_SOLVER_ITERATIONS", "50")
			_ = os.Setenv("GLICKO_STORE_PATH", "/tmp/ratings.db")
			_ = os.Setenv("GLICKO_LOG_FORMAT", "json")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.Tau, convey.ShouldEqual, 0.3)
				convey.So(cfg.DefaultVolatility, convey.ShouldEqual, 0.09)
				convey.So(cfg.MaxSolverIterations, convey.ShouldEqual, 50)
				convey.So(cfg.StorePath, convey.ShouldEqual, "/tmp/ratings.db")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
# rating system
addr: ":9090"
tau: 0.4
dedupe_size: 500
log_level: debug
`
			tmpFile := createTempConfigFile(t, "config.yaml", yamlContent)
			_ = os.Setenv("GLICKO_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.Tau, convey.ShouldEqual, 0.4)
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 500)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.DefaultVolatility, convey.ShouldEqual, 0.06)
			})
		})

		convey.Convey("When loading config with TOML file", func() {
			tomlContent := `
addr = ":7070"
default_volatility = 0.07
max_solver_iterations = 25
`
			tmpFile := createTempConfigFile(t, "config.toml", tomlContent)
			_ = os.Setenv("GLICKO_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from TOML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.DefaultVolatility, convey.ShouldEqual, 0.07)
				convey.So(cfg.MaxSolverIterations, convey.ShouldEqual, 25)
			})
		})

		convey.Convey("When both file and env set a key", func() {
			tmpFile := createTempConfigFile(t, "config.yaml", "tau: 0.4\naddr: \":9090\"\n")
			_ = os.Setenv("GLICKO_CONFIG", tmpFile)
			_ = os.Setenv("GLICKO_TAU", "0.9")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then env wins", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Tau, convey.ShouldEqual, 0.9)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
			})
		})
	})
}

func TestConfigLoaderErrors(t *testing.T) {
	convey.Convey("Given config loader failures", t, func() {
		ctx := context.Background()

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("GLICKO_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(errors.Is(err, config.ErrConfigFile), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a numeric env var is malformed", func() {
			_ = os.Setenv("GLICKO_MAX_SOLVER_ITERATIONS", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When tau is negative", func() {
			_ = os.Setenv("GLICKO_TAU", "-0.5")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then validation fails", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func createTempConfigFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func clearConfigEnvVars() {
	for _, k := range []string{
		"GLICKO_CONFIG", "GLICKO_ADDR", "GLICKO_TAU", "GLICKO_DEFAULT_VOLATILITY",
		"GLICKO_MAX_SOLVER_ITERATIONS", "GLICKO_STORE_PATH", "GLICKO_LOG_LEVEL",
		"GLICKO_LOG_FORMAT", "GLICKO_DEDUPE_SIZE",
	} {
		_ = os.Unsetenv(k)
	}
}
