package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/kydenul/numgen"
)

const usage = `usage: numgen [flags] <command> [args]

commands:
  gen                 roll a number (uses --min/--max or the configured defaults)
  history             list past generations, newest first
  delete <id>         delete one history entry
  clear               delete the whole history
  stats               show the number of kept generations

flags:
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("numgen", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	configFile := fs.String("config", "", "config file (default: search ./numgen.yaml, ./config, $HOME/.numgen)")
	fs.String("storage", numgen.StorageBunt, "history storage: memory, bunt or redis")
	fs.String("path", "", "buntdb file for the bunt storage")
	fs.String("log-level", "info", "log level: debug, info, warn, error")
	rawMin := fs.String("min", "", "lower bound (inclusive)")
	rawMax := fs.String("max", "", "upper bound (inclusive)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	cm := numgen.NewConfigManager()
	cm.SetConfigFile(*configFile)
	for key, name := range map[string]string{
		"storage.driver": "storage",
		"storage.path":   "path",
		"log.level":      "log-level",
	} {
		if err := cm.BindFlag(key, fs.Lookup(name)); err != nil {
			fmt.Fprintf(stderr, "numgen: %v\n", err)
			return 1
		}
	}

	config, err := cm.LoadConfig()
	if err != nil {
		fmt.Fprintf(stderr, "numgen: %v\n", err)
		return 1
	}

	logger := numgen.NewZerologLogger(stderr, config.Log.Level)
	notifier := &lineNotifier{w: stdout, next: numgen.NewWriterNotifier(stdout)}

	app, storage, err := numgen.NewAppFromConfig(config, notifier, logger)
	if err != nil {
		fmt.Fprintf(stderr, "numgen: %v\n", err)
		return 1
	}
	defer func() {
		if err := storage.Close(); err != nil {
			logger.Error("Failed to close storage: %v", err)
		}
	}()

	app.Load(ctx)

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "gen", "generate":
		return runGenerate(ctx, app, config, *rawMin, *rawMax, notifier, stdout)
	case "history", "ls":
		return runHistory(app, stdout)
	case "delete", "rm":
		if len(rest) != 1 {
			fmt.Fprintln(stderr, "numgen: delete needs exactly one id")
			return 2
		}
		if !app.Delete(ctx, rest[0]) {
			fmt.Fprintf(stdout, "no entry with id %s\n", rest[0])
		}
		return 0
	case "clear":
		app.Clear(ctx)
		return 0
	case "stats":
		fmt.Fprintf(stdout, "total generated: %d\n", app.Total())
		return 0
	default:
		fmt.Fprintf(stderr, "numgen: unknown command %q\n", cmd)
		fs.Usage()
		return 2
	}
}

// lineNotifier erases a pending progress line before a notice is printed
type lineNotifier struct {
	w       io.Writer
	next    numgen.Notifier
	pending atomic.Bool
}

func (n *lineNotifier) Success(msg string) { n.clear(); n.next.Success(msg) }
func (n *lineNotifier) Error(msg string)   { n.clear(); n.next.Error(msg) }

func (n *lineNotifier) clear() {
	if n.pending.Swap(false) {
		fmt.Fprint(n.w, "\r\033[K")
	}
}

func runGenerate(
	ctx context.Context, app *numgen.App, config *numgen.Config, rawMin, rawMax string, line *lineNotifier, stdout io.Writer,
) int {
	var minArg, maxArg any = config.Generator.DefaultMin, config.Generator.DefaultMax
	if rawMin != "" {
		minArg = rawMin
	}
	if rawMax != "" {
		maxArg = rawMax
	}

	min, max, err := numgen.ParseRange(minArg, maxArg)
	if err != nil {
		line.Error(numgen.UserMessage(err))
		return 1
	}

	width := len(fmt.Sprint(max))
	if w := len(fmt.Sprint(min)); w > width {
		width = w
	}

	entry, err := app.Generate(ctx, min, max, func(tick, total, value int) {
		line.pending.Store(true)
		fmt.Fprintf(stdout, "\r  %*d  %s", width, value, strings.Repeat(".", tick*10/total))
	})
	line.clear()
	if err != nil {
		return 1
	}

	fmt.Fprintf(stdout, "  %d\n", entry.Number)
	return 0
}

func runHistory(app *numgen.App, stdout io.Writer) int {
	entries := app.History()
	if len(entries) == 0 {
		fmt.Fprintln(stdout, "history is empty, generate your first number")
		return 0
	}

	fmt.Fprintf(stdout, "last %d entries\n", len(entries))
	now := time.Now()
	for _, e := range entries {
		fmt.Fprintf(stdout, "%-20s %s\n", e.ID, numgen.FormatEntry(e, now))
	}
	return 0
}
