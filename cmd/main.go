package main

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "rootgrep",
		Usage:     "Search patterns in files under roots, honouring .gitignore and .ignore",
		ArgsUsage: "ROOT...",
		Writer:    out,
		// regexps may contain commas
		DisableSliceFlagSeparator: true,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "regexp",
				Aliases: []string{"e"},
				Usage:   "Pattern to search for (repeatable)",
			},
			&cli.StringFlag{
				Name:  "pattern-file",
				Usage: "Path to text file with patterns: plain lines, 'plain:i:' for case-insensitive, or 're:<regex>'",
			},
			&cli.BoolFlag{
				Name:  "files",
				Usage: "Only list the files that would be searched",
			},
			&cli.IntFlag{
				Name:  "threads",
				Usage: "Concurrent file workers, 0 or 1 - sequential (default: number of CPUs)",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Global timeout for the run (e.g. 10m, 1h)",
			},
			&cli.IntFlag{
				Name:  "depth",
				Usage: "Max directory depth (0 - unlimited)",
			},
			&cli.BoolFlag{
				Name:  "archives",
				Usage: "Also search archive members (.zip,.tar,.gz,.bz2,.xz,.rar,.7z,...)",
			},
			&cli.BoolFlag{
				Name:  "skip-hidden",
				Usage: "Skip dotfiles and dot directories",
			},
			&cli.BoolFlag{
				Name:  "no-ignore",
				Usage: "Don't read .gitignore, .ignore or git exclude files",
			},
			&cli.BoolFlag{
				Name:  "no-ignore-parent",
				Usage: "Don't read ignore files of the directories above a root",
			},
			&cli.BoolFlag{
				Name:  "no-ignore-global",
				Usage: "Don't read core.excludesFile or the global git ignore file",
			},
			&cli.BoolFlag{
				Name:  "no-ignore-exclude",
				Usage: "Don't read .git/info/exclude",
			},
			&cli.BoolFlag{
				Name:  "require-git",
				Usage: "Apply git ignore rules only inside git repositories",
			},
			&cli.BoolFlag{
				Name:    "follow",
				Aliases: []string{"L"},
				Usage:   "Follow symbolic links",
			},
			&cli.BoolFlag{
				Name:  "fail-fast",
				Usage: "Stop on the first unreadable entry",
			},
			&cli.BoolFlag{
				Name:  "sort",
				Usage: "Print files in path order",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "YAML config file, flags override its values",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error",
			},
			&cli.StringFlag{
				Name:  "logfile",
				Usage: "Write logs into file instead of stderr",
			},
			&cli.StringFlag{
				Name:  "color",
				Usage: "Colorize output: auto, always, never",
			},
		},
		Action: runAction,
	}
}

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}
