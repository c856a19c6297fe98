// Command actionrun launches a CI action's entrypoint script, passes it
// the standard streams, and exits with the script's status.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/deixis/actionrun"
	"github.com/deixis/actionrun/internal/config"
	"github.com/deixis/actionrun/internal/host"
	armcp "github.com/deixis/actionrun/internal/mcp"
	"github.com/deixis/actionrun/internal/report"
	"github.com/deixis/actionrun/internal/runner"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// errUsage marks command-line mistakes; they exit with status 2.
var errUsage = errors.New("usage")

func main() {
	log.SetFlags(0)
	log.SetPrefix("actionrun: ")
	os.Exit(realMain(os.Args[1:], os.Stdout, os.Stderr, os.Getenv))
}

// realMain dispatches a subcommand and returns the process exit status.
func realMain(args []string, stdout, stderr io.Writer, getenv func(string) string) int {
	cmd := "run"
	if len(args) > 0 && !isFlagOrSeparator(args[0]) {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "run":
		err = runMain(args, stdout, getenv)
	case "exec":
		err = execMain(args, stdout, getenv)
	case "show":
		err = showMain(args, stdout, getenv)
	case "mcp":
		err = mcpMain(args, stdout, getenv)
	case "version":
		fmt.Fprintln(stdout, actionrun.Version)
	case "help", "-h", "--help":
		usage(stderr)
	default:
		fmt.Fprintf(stderr, "actionrun: unknown command %q\n", cmd)
		usage(stderr)
		return 2
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		log.Print(err)
		return 2
	default:
		return host.ExitCode(err)
	}
}

func isFlagOrSeparator(s string) bool {
	return len(s) > 0 && s[0] == '-' && s != "-h" && s != "--help"
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `Usage: actionrun [command] [flags] [-- args]

Commands:
  run         Run the action's entrypoint script (default)
  exec        Run an arbitrary command with the same exit mapping
  show        Print a stored run record
  mcp         Start the MCP server
  version     Print the version
  help        Show this help

Use "actionrun <command> -h" for command-specific flags.`)
}

// --- run ---

func runMain(args []string, stdout io.Writer, getenv func(string) string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	dirFlag := fs.String("C", "", "start action root discovery from `dir` (default: executable's directory)")
	recordFlag := fs.Bool("record", false, "store a run record even when no history directory is configured")
	_ = fs.Parse(args)

	start := *dirFlag
	if start == "" {
		start = executableDir()
	}
	loaded, err := config.Load(start, getenv)
	if err != nil {
		log.Printf("loading config: %v", err)
		return err
	}

	argv := loaded.Config.Argv(loaded.ActionRoot, fs.Args()...)
	return launch(loaded, argv, *recordFlag, stdout, getenv)
}

// --- exec ---

func execMain(args []string, stdout io.Writer, getenv func(string) string) error {
	fs := flag.NewFlagSet("exec", flag.ExitOnError)
	recordFlag := fs.Bool("record", false, "store a run record even when no history directory is configured")
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		return fmt.Errorf("%w: exec needs a command", errUsage)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("determining working directory: %w", err)
	}
	loaded, err := config.Load(cwd, getenv)
	if err != nil {
		log.Printf("loading config: %v", err)
		return err
	}
	return launch(loaded, fs.Args(), *recordFlag, stdout, getenv)
}

// launch runs argv with inherited streams, reports the outcome to the
// host and returns the runner's error unchanged.
func launch(loaded *config.LoadResult, argv []string, record bool, stdout io.Writer, getenv func(string) string) error {
	cfg := loaded.Config
	rep := host.Detect(getenv, stdout)
	rep.Started(argv)

	r := &runner.Runner{
		Dir: cfg.WorkDir(loaded.ActionRoot),
		Env: cfg.Environ(),
	}
	res, runErr := r.Run(argv)

	rec := report.NewRecord(res, runErr)
	if record || cfg.History != "" {
		store := report.NewDiskStore(cfg.History)
		if err := store.Save(rec); err != nil {
			log.Printf("saving run record: %v", err)
		} else if dir, err := store.Dir(); err == nil {
			log.Printf("Run: %s (%s)", rec.ID, dir)
		}
	}
	if err := rep.Summary(rec); err != nil {
		log.Print(err)
	}

	if runErr != nil {
		rep.Failed(runErr)
	}
	return runErr
}

// executableDir returns the directory of the running binary, falling back
// to the working directory.
func executableDir() string {
	exe, err := os.Executable()
	if err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		return filepath.Dir(exe)
	}
	return "."
}

// --- show ---

func showMain(args []string, stdout io.Writer, getenv func(string) string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	jsonFlag := fs.Bool("json", false, "output the record as JSON")
	historyFlag := fs.String("history", "", "directory holding run records (default: configured history)")
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("%w: show needs exactly one run ID", errUsage)
	}

	dir := *historyFlag
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("determining working directory: %w", err)
		}
		loaded, err := config.Load(cwd, getenv)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		dir = loaded.Config.History
	}
	if dir == "" {
		return fmt.Errorf("%w: no history directory configured; pass -history", errUsage)
	}

	rec, err := report.NewDiskStore(dir).Load(fs.Arg(0))
	if err != nil {
		log.Print(err)
		return err
	}

	if *jsonFlag {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}
	fmt.Fprint(stdout, formatRecordCLI(rec))
	return nil
}

func formatRecordCLI(rec *report.Record) string {
	var b []byte
	w := func(format string, args ...any) {
		b = fmt.Appendf(b, format, args...)
	}

	if rec.Status == report.Success {
		w("ok\n\n")
	} else {
		w("FAIL\n\n")
	}
	w("  %-10s %s\n", "run", rec.ID)
	w("  %-10s %s\n", "command", rec.CommandLine())
	if rec.Dir != "" {
		w("  %-10s %s\n", "dir", rec.Dir)
	}
	w("  %-10s %s\n", "result", rec.Summary())
	w("  %-10s %s\n", "started", rec.Started.Format("2006-01-02 15:04:05"))
	w("  %-10s %s\n", "duration", rec.Duration)
	return string(b)
}

// --- mcp ---

func mcpMain(args []string, stdout io.Writer, getenv func(string) string) error {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	instructions := fs.Bool("instructions", false, "print model instructions and exit")
	httpAddr := fs.String("http", "", "start HTTP server on address (e.g. :9090)")
	dirFlag := fs.String("C", "", "start action root discovery from `dir` (default: working directory)")
	_ = fs.Parse(args)

	if *instructions {
		fmt.Fprint(stdout, armcp.Instructions)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := serve(ctx, *dirFlag, *httpAddr, getenv); err != nil {
		log.Print(err)
		return err
	}
	return nil
}

func serve(ctx context.Context, dir, httpAddr string, getenv func(string) string) error {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("determining workspace: %w", err)
		}
		dir = cwd
	}

	loaded, err := config.Load(dir, getenv)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := loaded.Config

	store := report.NewLRUStore(cfg.HistorySize(), report.NewDiskStore(cfg.History))
	server := armcp.NewServer(loaded, store)

	if httpAddr != "" {
		return serveHTTP(ctx, server, httpAddr)
	}
	return server.Run(ctx, &mcpsdk.StdioTransport{})
}

func serveHTTP(ctx context.Context, server *mcpsdk.Server, addr string) error {
	handler := mcpsdk.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcpsdk.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		_ = httpServer.Close()
	}()

	log.Printf("listening on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
