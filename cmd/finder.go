package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"RootGrep/internal"
)

func runAction(c *cli.Context) error {
	cfg, err := LoadConfig(c.String("config"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	cfg.MergeFlags(c)
	if err := cfg.Validate(); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	internal.InitLogger(cfg.LogFile, cfg.LogLevel)

	// ctx with timeout + OS signals
	base := context.Background()
	var cancel context.CancelFunc
	if cfg.Timeout > 0 {
		base, cancel = context.WithTimeout(base, cfg.Timeout)
	} else {
		base, cancel = context.WithCancel(base)
	}
	defer cancel()
	ctx, stop := signal.NotifyContext(base, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	finder := internal.NewFinder(cfg.Options())
	if err := finder.Configure(c.Args().Slice()); err != nil {
		return cli.Exit("no search roots given", 1)
	}
	out := newPrinter(c.App.Writer, cfg.Color)

	if c.Bool("files") {
		files, err := finder.ListFiles(ctx)
		if err != nil {
			return fatal(ctx, err)
		}
		out.Files(files)
		return nil
	}

	for _, p := range cfg.Patterns {
		if _, err := finder.RegisterPattern(p); err != nil {
			return cli.Exit(err.Error(), 1)
		}
	}
	if cfg.PatternFile != "" {
		n, err := finder.RegisterPatternFile(cfg.PatternFile)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		logrus.WithFields(logrus.Fields{"file": cfg.PatternFile, "patterns": n}).Debug("Pattern file loaded")
	}
	if len(finder.Patterns()) == 0 {
		return cli.Exit("no patterns given, use -e or --pattern-file", 1)
	}

	res, err := finder.Run(ctx, internal.ModeSearch)
	if err != nil {
		return fatal(ctx, err)
	}
	out.Matches(res)

	logrus.WithFields(logrus.Fields{
		"files":       res.Stats.FilesScanned,
		"matches":     res.Stats.Matches,
		"diagnostics": len(res.Diagnostics),
		"elapsed":     res.Stats.Elapsed,
	}).Info("Search finished")
	if len(res.Files) == 0 {
		return cli.Exit("", 1)
	}
	return nil
}

func fatal(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		logrus.WithError(context.Cause(ctx)).Warn("Run cancelled")
	}
	return cli.Exit(err.Error(), 1)
}
