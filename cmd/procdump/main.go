//go:build linux

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/linuxdump/procdump/pkg/procdump/config"
	"github.com/linuxdump/procdump/pkg/procdump/logging"
	"github.com/linuxdump/procdump/pkg/procdump/signalctl"
	"github.com/linuxdump/procdump/pkg/procdump/supervisor"
	"github.com/linuxdump/procdump/pkg/system/cgroup"
)

func main() {
	normalizeSlashFlags(os.Args[1:])

	opts := config.DefaultOptions()
	root := newRootCommand(opts)

	if err := root.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(-1)
	}
}

func newRootCommand(opts *config.Options) *cobra.Command {
	var (
		cpuBelow     bool
		memBelow     bool
		exceptionFlt []string
	)

	cmd := &cobra.Command{
		Use:   "procdump [options] {PID|name} [dump-path]",
		Short: "Generates core dumps of a running Linux process on trigger conditions",
		Long: `procdump monitors a Linux process and writes an ELF core dump when a
configured trigger fires: CPU or memory threshold, thread or file
descriptor count, a delivered POSIX signal, an elapsed interval, or
(for managed runtimes) an unhandled exception.

Copyright (c) procdump-go contributors. All rights reserved.

Examples:
  procdump -n 1 -c 50 1234
  procdump -n 3 -s 5 -tc 100 myapp
  procdump -w -n 1 -m 500 myapp /var/dumps`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.CPUTriggerBelowValue = cpuBelow
			opts.MemoryTriggerBelowValue = memBelow
			opts.ExceptionFilter = exceptionFlt

			if err := bindTarget(opts, args[0]); err != nil {
				return err
			}
			if len(args) == 2 {
				bindOutputPath(opts, args[1])
			}

			if opts.Debug {
				slog.SetLogLoggerLevel(slog.LevelDebug)
			}

			if opts.LogToSyslog {
				closeSyslog, err := logging.EnableSyslog("procdump")
				if err != nil {
					slog.Warn("syslog sink disabled", "err", err)
				} else {
					defer closeSyslog()
				}
			}

			if err := opts.Validate(); err != nil {
				return err
			}

			printBanner(opts)
			return run(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&opts.MaxDumps, "number", "n", config.DefaultDumpCount, "number of dumps to collect (1..100)")
	flags.IntVarP(&opts.ThresholdSeconds, "seconds", "s", config.DefaultThresholdSeconds, "cooldown between dumps, in seconds")

	cpu := flags.Int("c", 0, "CPU usage trigger threshold, percent")
	flags.BoolVar(&cpuBelow, "cl", false, "apply the -c threshold as a below-value trigger")

	mem := flags.IntSlice("m", nil, "memory usage trigger threshold(s), MB, comma-separated for multi-step")
	flags.BoolVar(&memBelow, "ml", false, "apply the -m threshold as a below-value trigger")

	tc := flags.Int("tc", 0, "thread count trigger threshold")
	fc := flags.Int("fc", 0, "file descriptor count trigger threshold")
	sig := flags.Int("sig", 0, "signal number trigger")

	flags.BoolVarP(&opts.ExceptionTrigger, "exception", "e", false, "enable the managed unhandled-exception trigger")
	flags.StringSliceVarP(&exceptionFlt, "filter", "f", nil, "comma-separated exception type name filter")

	pollMS := flags.Int("pf", int(config.DefaultPollingInterval/time.Millisecond), "polling interval, milliseconds (clamped to 1000 minimum)")

	flags.BoolVarP(&opts.Overwrite, "overwrite", "o", false, "overwrite an existing dump file instead of skipping")
	flags.BoolVar(&opts.LogToSyslog, "log", false, "send diagnostic logging to syslog in addition to stderr")
	flags.BoolVarP(&opts.WaitForName, "wait", "w", false, "wait for, and monitor every instance of, a process name")
	flags.BoolVar(&opts.PGIDMode, "pgid", false, "treat the target as a process group ID")
	flags.BoolVarP(&opts.Debug, "debug", "d", false, "emit debug-level trace to stderr")
	flags.BoolVar(&opts.Restrack, "restrack", false, "attach the kernel-trace native allocation tracker and write a leak snapshot alongside each dump")
	_ = flags.MarkHidden("restrack")

	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("c") {
			opts.CPUThreshold = cpu
		}
		if cmd.Flags().Changed("m") {
			opts.MemoryThresholdsMB = *mem
		}
		if cmd.Flags().Changed("tc") {
			opts.ThreadCountThreshold = tc
		}
		if cmd.Flags().Changed("fc") {
			opts.FileDescriptorThreshold = fc
		}
		if cmd.Flags().Changed("sig") {
			opts.SignalNumber = sig
		}
		opts.PollingInterval = config.ClampPollingInterval(time.Duration(*pollMS) * time.Millisecond)
		return nil
	}

	return cmd
}

// bindTarget interprets the first positional argument: a bare integer is
// a PID (or, under -pgid, a PGID stored in the same field), anything
// else is a process name.
func bindTarget(opts *config.Options, arg string) error {
	if pid, err := parsePositiveInt(arg); err == nil {
		opts.ProcessID = pid
		return nil
	}
	if opts.PGIDMode {
		return fmt.Errorf("config: -pgid requires a numeric target, got %q", arg)
	}
	opts.ProcessName = arg
	return nil
}

func parsePositiveInt(s string) (int, error) {
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0, err
	}
	if n <= 0 || fmt.Sprintf("%d", n) != s {
		return 0, fmt.Errorf("not a plain positive integer")
	}
	return n, nil
}

// bindOutputPath splits the second positional argument into a directory
// and an optional base filename: an existing directory is used as-is;
// otherwise its parent becomes the directory and its leaf becomes the
// base filename every dump for this run shares.
func bindOutputPath(opts *config.Options, arg string) {
	if info, err := os.Stat(arg); err == nil && info.IsDir() {
		opts.OutputDir = arg
		return
	}
	opts.OutputDir = filepath.Dir(arg)
	opts.BaseName = filepath.Base(arg)
}

// normalizeSlashFlags rewrites a leading "/flag" into "-flag" wherever the
// token (case-insensitively, up to a "=" or end) names a real flag, so
// "/n" works the way it does on the Windows original without also
// mangling a positional path argument like "/var/dumps".
func normalizeSlashFlags(args []string) {
	for i, arg := range args {
		if !strings.HasPrefix(arg, "/") {
			continue
		}
		name := strings.ToLower(strings.SplitN(arg[1:], "=", 2)[0])
		if _, known := knownFlagNames[name]; known {
			args[i] = "-" + arg[1:]
		}
	}
}

var knownFlagNames = map[string]struct{}{
	"n": {}, "s": {}, "c": {}, "cl": {}, "m": {}, "ml": {},
	"tc": {}, "fc": {}, "sig": {}, "e": {}, "f": {}, "pf": {},
	"o": {}, "log": {}, "w": {}, "pgid": {}, "d": {}, "restrack": {}, "h": {},
}

func run(ctx context.Context, opts *config.Options) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sv := supervisor.New(opts)
	ctl := signalctl.New(opts)
	sv.Registry = ctl

	go ctl.Run(ctx)

	if err := sv.Run(ctx); err != nil {
		return err
	}

	return nil
}

func printBanner(opts *config.Options) {
	host, _ := os.Hostname()
	target := opts.ProcessName
	if target == "" {
		target = fmt.Sprintf("%d", opts.ProcessID)
	}

	cgroupLine := "cgroup: unavailable"
	if ver, detail, err := cgroup.Detect(); err == nil {
		cgroupLine = fmt.Sprintf("cgroup: %s (%s)", ver, detail)
	}

	fmt.Printf(bannerFormat, host, target, cgroupLine, time.Now().Format("2006-01-02 15:04:05"))
}

const bannerFormat = `procdump-go

Monitoring host: %s
Target: %s
%s
Started: %s

Press Ctrl-C to end monitoring.

`
