// Package cli implements the detdraw command line.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/gogpu/detdraw"
	"github.com/gogpu/detdraw/codec"
	"github.com/gogpu/detdraw/colorpack"
	"github.com/gogpu/detdraw/compiler"
	"github.com/gogpu/detdraw/policy"
)

// Config holds settings shared by all subcommands. Environment variables
// provide defaults; flags override them.
type Config struct {
	Format     string `env:"DETDRAW_FORMAT"     envDefault:"bdl1"`
	Policy     string `env:"DETDRAW_POLICY"     envDefault:"none"`
	Cap        uint   `env:"DETDRAW_CAP"`
	ColorPack  string `env:"DETDRAW_COLOR_PACK"`
	Store      string `env:"DETDRAW_STORE"`
	Width      uint   `env:"DETDRAW_WIDTH"      envDefault:"640"`
	Height     uint   `env:"DETDRAW_HEIGHT"     envDefault:"480"`
	Background string `env:"DETDRAW_BG"         envDefault:"#000000"`
	Verbose    bool   `env:"DETDRAW_VERBOSE"`

	// Per-invocation flags.
	Output string
	Hash   string
	Bounds bool
}

// ParseConfig parses environment defaults and then flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs.StringVar(&cfg.Format, "format", cfg.Format, "wire format: bdl1 or bdl2")
	fs.StringVar(&cfg.Policy, "policy", cfg.Policy, "overflow policy: none, cap or summary")
	fs.UintVar(&cfg.Cap, "cap", cfg.Cap, "command cap for cap/summary policies")
	fs.StringVar(&cfg.ColorPack, "colors", cfg.ColorPack, "color pack JSON file (default: built-in names)")
	fs.StringVar(&cfg.Store, "store", cfg.Store, "artifact store database file")
	fs.UintVar(&cfg.Width, "width", cfg.Width, "surface width when the state has no scene.width")
	fs.UintVar(&cfg.Height, "height", cfg.Height, "surface height when the state has no scene.height")
	fs.StringVar(&cfg.Background, "bg", cfg.Background, "background when the state has no scene.bg")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "enable debug logging")
	fs.StringVar(&cfg.Output, "o", cfg.Output, "output file")
	fs.StringVar(&cfg.Hash, "hash", cfg.Hash, "expected content hash")
	fs.BoolVar(&cfg.Bounds, "bounds", cfg.Bounds, "print command bounds")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// options converts cfg into compiler options.
func (cfg Config) options() (compiler.Options, error) {
	format, err := codec.ParseTag(cfg.Format)
	if err != nil {
		return compiler.Options{}, err
	}
	mode, err := policy.ParseMode(cfg.Policy)
	if err != nil {
		return compiler.Options{}, err
	}
	if uint64(cfg.Cap) > math.MaxUint32 || uint64(cfg.Width) > math.MaxUint32 || uint64(cfg.Height) > math.MaxUint32 {
		return compiler.Options{}, errors.New("cap, width and height must fit in 32 bits")
	}
	pol := policy.Config{Mode: mode, Cap: uint32(cfg.Cap)}
	if err := pol.Validate(); err != nil {
		return compiler.Options{}, err
	}
	colors, err := cfg.colors()
	if err != nil {
		return compiler.Options{}, err
	}
	return compiler.Options{
		Colors:     colors,
		Policy:     pol,
		Format:     format,
		Width:      uint32(cfg.Width),
		Height:     uint32(cfg.Height),
		Background: cfg.Background,
	}, nil
}

func (cfg Config) colors() (*colorpack.Pack, error) {
	if cfg.ColorPack == "" {
		return colorpack.Builtin(), nil
	}
	return colorpack.Load(cfg.ColorPack)
}

// command is one subcommand. args excludes the subcommand name.
type command struct {
	usage string
	run   func(ctx context.Context, cfg Config, args []string, out io.Writer) error
}

var commands = map[string]command{
	"compile": {"compile [flags] <state.json>", runCompile},
	"decode":  {"decode [flags] <file>", runDecode},
	"verify":  {"verify [flags] <file>", runVerify},
	"hash":    {"hash <file>", runHash},
	"replay":  {"replay [flags] <state.json>", runReplay},
	"colors":  {"colors [flags] [name...]", runColors},
}

// Usage writes the list of subcommands.
func Usage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(w, "usage: detdraw <command> [flags] [args]")
	fmt.Fprintln(w, "commands:")
	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", commands[name].usage)
	}
}

// ErrUsage is returned when the command line names no known subcommand.
var ErrUsage = errors.New("unknown or missing command")

// Run parses args (without the program name) and runs a subcommand.
func Run(ctx context.Context, args []string, out, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if len(args) == 0 {
		Usage(errOut)
		return ErrUsage
	}
	cmd, ok := commands[args[0]]
	if !ok {
		Usage(errOut)
		return fmt.Errorf("%w: %q", ErrUsage, args[0])
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(errOut)
	cfg, err := ParseConfig(fs, args[1:])
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	detdraw.SetLogger(slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level})))
	defer detdraw.SetLogger(nil)

	return cmd.run(ctx, cfg, fs.Args(), out)
}

func oneArg(args []string, what string) (string, error) {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return "", fmt.Errorf("expected exactly one %s argument", what)
	}
	return args[0], nil
}
