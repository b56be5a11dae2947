package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"linewise/internal/config"
	"linewise/internal/follower"
	"linewise/internal/printer"
	"linewise/internal/stats"
	"linewise/internal/viewer"
	"linewise/pkg/linereader"

	"github.com/mingrammer/cfmt"
	"github.com/spf13/cobra"
)

var (
	configPath string
	chunkSize  int
	colorMode  string

	numberLines bool
	interleave  bool
	showStats   bool

	listenAddr     string
	renderMarkdown bool
)

var rootCmd = &cobra.Command{
	Use:   "linewise",
	Short: "linewise - read files one line at a time",
	Long:  `linewise reads byte streams line by line, preserving each line exactly as it appears in the source, and can print, follow or serve the result.`,
}

// loadConfig reads the config file and applies flag overrides on top.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	if chunkSize > 0 {
		cfg.ChunkSize = chunkSize
	}
	if colorMode != "" {
		cfg.Color = colorMode
	}
	if listenAddr != "" {
		cfg.Listen = listenAddr
	}
	return cfg, nil
}

var catCmd = &cobra.Command{
	Use:   "cat [file...]",
	Short: "Print files line by line",
	Long: `Print the given files line by line. With no arguments, read standard input.

With --interleave, one line is taken from each file per round instead of
exhausting the files in order. Each file keeps its own read state, so the
lines of every file still come out exactly as they appear in it.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return runCat(args, cfg)
	},
}

func runCat(paths []string, cfg config.Config) error {
	reader := linereader.NewSize(cfg.ChunkSize)
	out := printer.New(os.Stdout, numberLines, cfg.Color)

	var collector *stats.Collector
	if showStats {
		collector = stats.NewCollector()
	}

	sources := make([]io.Reader, 0, len(paths))
	if len(paths) == 0 {
		sources = append(sources, os.Stdin)
	}
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		sources = append(sources, f)
	}

	emit := func(line []byte) error {
		if collector != nil {
			collector.Record(line)
		}
		return out.Print(line)
	}

	var err error
	if interleave {
		err = catInterleaved(reader, sources, emit)
	} else {
		err = catSequential(reader, sources, emit)
	}
	if err != nil {
		return err
	}

	if collector != nil {
		fmt.Fprintln(os.Stderr, collector.Summary())
	}
	return nil
}

func catSequential(reader *linereader.Reader, sources []io.Reader, emit func([]byte) error) error {
	for _, src := range sources {
		for line, err := range reader.Lines(src) {
			if err != nil {
				return err
			}
			if err := emit(line); err != nil {
				return err
			}
		}
	}
	return nil
}

// catInterleaved takes one line per source per round, dropping sources as
// they reach end of stream.
func catInterleaved(reader *linereader.Reader, sources []io.Reader, emit func([]byte) error) error {
	for len(sources) > 0 {
		remaining := sources[:0]
		for _, src := range sources {
			line, err := reader.NextLine(src)
			if errors.Is(err, io.EOF) {
				continue
			}
			if err != nil {
				return err
			}
			if err := emit(line); err != nil {
				return err
			}
			remaining = append(remaining, src)
		}
		sources = remaining
	}
	return nil
}

var followCmd = &cobra.Command{
	Use:   "follow <file>",
	Short: "Print lines as they are appended to a file",
	Long: `Follow a file like tail -f, but line-aware: a line written across
several appends is printed in one piece once its newline arrives.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return runFollow(args[0], cfg)
	},
}

func runFollow(path string, cfg config.Config) error {
	fl, err := follower.New(path, cfg.ChunkSize)
	if err != nil {
		return err
	}
	defer fl.Close()

	cfmt.Successf("following %s (ctrl-c to stop)\n", path)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		fl.Close()
	}()

	out := printer.New(os.Stdout, numberLines, cfg.Color)
	for line := range fl.Lines() {
		if err := out.Print(line); err != nil {
			return err
		}
	}
	return fl.Err()
}

var serveCmd = &cobra.Command{
	Use:   "serve <file>",
	Short: "Stream a file's lines to browsers",
	Long: `Follow a file and stream each new line to connected browsers over a
websocket. With --render-markdown, the file is also available as sanitized
HTML under /render.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return runServe(args[0], cfg)
	},
}

func runServe(path string, cfg config.Config) error {
	fl, err := follower.New(path, cfg.ChunkSize)
	if err != nil {
		return err
	}
	defer fl.Close()

	v := viewer.New(path, renderMarkdown)
	go func() {
		for line := range fl.Lines() {
			v.Broadcast(line)
		}
	}()

	cfmt.Successf("serving %s on %s\n", path, cfg.Listen)
	if err := http.ListenAndServe(cfg.Listen, v.Routes()); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().IntVar(&chunkSize, "chunk-size", 0, "Bytes requested per underlying read (default 4096)")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "", "Colorize output: auto, always or never (default auto)")

	catCmd.Flags().BoolVarP(&numberLines, "number", "n", false, "Number output lines")
	catCmd.Flags().BoolVar(&interleave, "interleave", false, "Take one line per file per round instead of file by file")
	catCmd.Flags().BoolVar(&showStats, "stats", false, "Print a line/byte/memory summary to stderr when done")

	followCmd.Flags().BoolVarP(&numberLines, "number", "n", false, "Number output lines")

	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "Address to listen on (default :8080)")
	serveCmd.Flags().BoolVar(&renderMarkdown, "render-markdown", false, "Serve the file as sanitized HTML under /render")

	rootCmd.AddCommand(catCmd)
	rootCmd.AddCommand(followCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
