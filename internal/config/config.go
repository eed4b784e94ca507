// Package config loads capture settings with the precedence
// CLI flags > environment > config file > built-in defaults.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"

	"github.com/hostcam/uvcstream/internal/logging"
)

// Options is everything the capture tool can be told, mirrored between
// the TOML config file and the CLI flags.
type Options struct {
	Device     string         `toml:"device"`
	Output     string         `toml:"output"`
	Prefix     string         `toml:"prefix"`
	Frames     int            `toml:"frames"`
	FPS        int            `toml:"fps"`
	Resolution string         `toml:"resolution"`
	Logging    logging.Config `toml:"logging"`
}

// Defaults returns the built-in settings for the supported device.
func Defaults() Options {
	return Options{
		Device:     "/dev/bus/usb/001/002",
		Output:     ".",
		Prefix:     "frame",
		Frames:     500,
		FPS:        15,
		Resolution: "320x240",
		Logging: logging.Config{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load overlays the TOML file at path onto opts. A missing file is not an
// error; a malformed one is.
func Load(path string, opts *Options) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := toml.Unmarshal(data, opts); err != nil {
		return fmt.Errorf("failed to parse TOML config: %w", err)
	}
	return nil
}

// FromEnv overlays UVCCAPTURE_* environment variables onto opts. Sits
// between the config file and the CLI flags in precedence.
func FromEnv(opts *Options) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setString("UVCCAPTURE_DEVICE", &opts.Device)
	setString("UVCCAPTURE_OUTPUT", &opts.Output)
	setString("UVCCAPTURE_PREFIX", &opts.Prefix)
	setInt("UVCCAPTURE_FRAMES", &opts.Frames)
	setInt("UVCCAPTURE_FPS", &opts.FPS)
	setString("UVCCAPTURE_RESOLUTION", &opts.Resolution)
	setString("UVCCAPTURE_LOG_LEVEL", &opts.Logging.Level)
	setString("UVCCAPTURE_LOG_FORMAT", &opts.Logging.Format)
}
