// uvccapture streams frames from a UVC webcam and writes each one out as
// a numbered PPM file.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hostcam/uvcstream"
	"github.com/hostcam/uvcstream/internal/config"
	"github.com/hostcam/uvcstream/internal/logging"
	"github.com/hostcam/uvcstream/pkg/decode"
	"github.com/hostcam/uvcstream/pkg/descriptors"
	"github.com/hostcam/uvcstream/pkg/ppm"
)

func main() {
	opts := config.Defaults()
	var configPath string

	cmd := &cobra.Command{
		Use:   "uvccapture",
		Short: "Capture frames from a UVC webcam into PPM files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			// File and environment values fill in only what the CLI
			// did not set.
			fileOpts := config.Defaults()
			if err := config.Load(configPath, &fileOpts); err != nil {
				return err
			}
			config.FromEnv(&fileOpts)
			applyUnchanged(cmd.Flags(), &opts, &fileOpts)

			logging.Initialize(opts.Logging)
			return run(opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Device, "device", opts.Device, "usbfs path of the camera")
	flags.StringVar(&opts.Output, "output", opts.Output, "directory for captured frames")
	flags.StringVar(&opts.Prefix, "prefix", opts.Prefix, "frame filename prefix")
	flags.IntVar(&opts.Frames, "frames", opts.Frames, "number of frames to capture, 0 for unlimited")
	flags.IntVar(&opts.FPS, "fps", opts.FPS, "frame rate (5, 10, 15 or 30)")
	flags.StringVar(&opts.Resolution, "resolution", opts.Resolution, "frame size (160x120 or 320x240)")
	flags.StringVar(&opts.Logging.Level, "log-level", opts.Logging.Level, "log level (debug, info, warn, error)")
	flags.StringVar(&opts.Logging.Format, "log-format", opts.Logging.Format, "log format (text or json)")
	flags.StringVar(&configPath, "config", "uvccapture.toml", "path to TOML config file")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// applyUnchanged copies file-sourced values over the defaults for every
// flag the user did not pass on the command line.
func applyUnchanged(flags *pflag.FlagSet, opts, fileOpts *config.Options) {
	if !flags.Changed("device") {
		opts.Device = fileOpts.Device
	}
	if !flags.Changed("output") {
		opts.Output = fileOpts.Output
	}
	if !flags.Changed("prefix") {
		opts.Prefix = fileOpts.Prefix
	}
	if !flags.Changed("frames") {
		opts.Frames = fileOpts.Frames
	}
	if !flags.Changed("fps") {
		opts.FPS = fileOpts.FPS
	}
	if !flags.Changed("resolution") {
		opts.Resolution = fileOpts.Resolution
	}
	if !flags.Changed("log-level") {
		opts.Logging.Level = fileOpts.Logging.Level
	}
	if !flags.Changed("log-format") {
		opts.Logging.Format = fileOpts.Logging.Format
	}
}

func parseResolution(s string) (descriptors.Resolution, error) {
	switch s {
	case "160x120", "qqvga":
		return descriptors.ResolutionQQVGA, nil
	case "320x240", "qvga":
		return descriptors.ResolutionQVGA, nil
	}
	return 0, fmt.Errorf("unsupported resolution %q", s)
}

func run(opts config.Options) error {
	log := logging.GetLogger("capture")

	resolution, err := parseResolution(opts.Resolution)
	if err != nil {
		return err
	}

	dev, err := os.OpenFile(opts.Device, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("failed to open device: %w", err)
	}
	defer dev.Close()

	driver := uvcstream.NewDriver()
	session, err := driver.Attach(dev.Fd(), uvcstream.Config{
		Resolution: resolution,
		FrameRate:  opts.FPS,
		FrameCount: opts.Frames,
	})
	if err != nil {
		return err
	}
	defer driver.Remove(session)

	control := session.Control()
	w, h := control.Resolution.Dimensions()
	writer := ppm.NewWriter(opts.Output, opts.Prefix, control.Resolution.String(), w, h)
	rgb := decode.NewRGB(w, h)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var written int
	err = session.Stream(ctx, func(frame []byte, seq uint32) error {
		if err := decode.ConvertYUY2(rgb.Pix, frame); err != nil {
			return err
		}
		if err := writer.WriteFrame(rgb.Pix, seq); err != nil {
			return err
		}
		written++
		log.Debug("frame written", "seq", seq, "file", writer.Filename(seq))
		return nil
	})

	log.Info("capture finished", "frames_written", written)
	return err
}
