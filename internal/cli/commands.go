package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gogpu/detdraw"
	"github.com/gogpu/detdraw/artifact"
	"github.com/gogpu/detdraw/codec"
	"github.com/gogpu/detdraw/colorpack"
	"github.com/gogpu/detdraw/compiler"
	"github.com/gogpu/detdraw/digest"
	"github.com/gogpu/detdraw/metrics"
	"github.com/gogpu/detdraw/state"
)

// ErrReplayMismatch is returned when a replayed compile differs from the
// recorded artifact.
var ErrReplayMismatch = errors.New("replay: output differs from recorded artifact")

func loadState(path string) (*state.Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open state: %w", err)
	}
	defer f.Close()
	st, err := state.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return st, nil
}

func compileFile(cfg Config, path string) (*compiler.Result, error) {
	opts, err := cfg.options()
	if err != nil {
		return nil, err
	}
	st, err := loadState(path)
	if err != nil {
		return nil, err
	}
	return compiler.Compile(st, opts)
}

func openStore(cfg Config) (*artifact.Store, error) {
	if cfg.Store == "" {
		return nil, errors.New("an artifact store is required (-store or DETDRAW_STORE)")
	}
	return artifact.Open(cfg.Store)
}

func runCompile(ctx context.Context, cfg Config, args []string, out io.Writer) error {
	path, err := oneArg(args, "state file")
	if err != nil {
		return err
	}
	res, err := compileFile(cfg, path)
	if err != nil {
		return err
	}

	if cfg.Output != "" {
		if err := os.WriteFile(cfg.Output, res.Bytes, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	if cfg.Store != "" {
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()
		if _, err := store.Put(ctx, res.Bytes); err != nil {
			return err
		}
	}
	if cfg.Hash != "" && cfg.Hash != res.Hash {
		return fmt.Errorf("%w: got %s, want %s", digest.ErrMismatch, res.Hash, cfg.Hash)
	}

	fmt.Fprintf(out, "format: %s\n", res.Format)
	fmt.Fprintf(out, "size: %dx%d\n", res.List.Width, res.List.Height)
	fmt.Fprintf(out, "commands: %d\n", res.List.Len())
	fmt.Fprintf(out, "bytes: %d\n", len(res.Bytes))
	if ev := res.Overflow; ev != nil {
		fmt.Fprintf(out, "overflow: mode=%s cap=%d count=%d\n", ev.Mode, ev.Cap, ev.Count)
	}
	fmt.Fprintf(out, "hash: %s\n", res.Hash)
	return nil
}

func readEncoded(args []string) ([]byte, error) {
	path, err := oneArg(args, "file")
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}

func runDecode(_ context.Context, cfg Config, args []string, out io.Writer) error {
	data, err := readEncoded(args)
	if err != nil {
		return err
	}
	list, tag, err := codec.Decode(data)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "format: %s\n", tag)
	fmt.Fprintf(out, "size: %dx%d\n", list.Width, list.Height)
	fmt.Fprintf(out, "commands: %d\n", list.Len())
	m := metrics.Default()
	for i, cmd := range list.Cmds {
		fmt.Fprintf(out, "%4d %s\n", i, formatCommand(cmd))
		if cfg.Bounds {
			if _, clear := cmd.(detdraw.Clear); !clear {
				fmt.Fprintf(out, "     bounds %s\n", m.Bounds(cmd))
			}
		}
	}
	if cfg.Bounds {
		for _, i := range m.Offscreen(list) {
			fmt.Fprintf(out, "warning: command %d lies outside the surface\n", i)
		}
	}
	fmt.Fprintf(out, "hash: %s\n", digest.Sum(data))
	return nil
}

func formatCommand(cmd detdraw.DrawCommand) string {
	switch c := cmd.(type) {
	case detdraw.Clear:
		return fmt.Sprintf("%s %s", c.Kind(), c.Color)
	case detdraw.Text:
		return fmt.Sprintf("%s x=%g y=%g size=%g %s aa=%t %q", c.Kind(), c.X, c.Y, c.Size, c.Color, c.AA, c.Text)
	case detdraw.Sprite:
		s := fmt.Sprintf("%s x=%g y=%g w=%g h=%g tint=%s aa=%t uri=%q", c.Kind(), c.X, c.Y, c.W, c.H, c.Tint, c.AA, c.Asset.URI)
		if c.Asset.HashKind == detdraw.HashDigest {
			s += fmt.Sprintf(" hash=%x", c.Asset.Hash)
		}
		return s
	}
	return fmt.Sprintf("%s %+v", cmd.Kind(), cmd)
}

// runVerify decodes a file, re-encodes it in the same format and checks
// that the bytes, and optionally the hash, are unchanged.
func runVerify(_ context.Context, cfg Config, args []string, out io.Writer) error {
	data, err := readEncoded(args)
	if err != nil {
		return err
	}
	list, tag, err := codec.Decode(data)
	if err != nil {
		return err
	}
	again, err := codec.Encode(tag, list)
	if err != nil {
		return err
	}
	if !bytes.Equal(again, data) {
		return fmt.Errorf("verify: re-encoding is not byte-identical (%d vs %d bytes)", len(again), len(data))
	}
	hash := digest.Sum(data)
	if cfg.Hash != "" {
		if err := digest.Verify(data, cfg.Hash); err != nil {
			return err
		}
	}
	fmt.Fprintf(out, "ok %s %s\n", tag, hash)
	return nil
}

func runHash(_ context.Context, _ Config, args []string, out io.Writer) error {
	data, err := readEncoded(args)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, digest.Sum(data))
	return nil
}

// runReplay recompiles a state file and compares the result with the
// artifact recorded under -hash, or under the fresh hash when -hash is
// empty.
func runReplay(ctx context.Context, cfg Config, args []string, out io.Writer) error {
	path, err := oneArg(args, "state file")
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	res, err := compileFile(cfg, path)
	if err != nil {
		return err
	}
	want := cfg.Hash
	if want == "" {
		want = res.Hash
	}
	recorded, err := store.Get(ctx, want)
	if err != nil {
		return fmt.Errorf("replay: %s: %w", want, err)
	}
	if !bytes.Equal(recorded, res.Bytes) {
		return fmt.Errorf("%w: recorded %s, compiled %s", ErrReplayMismatch, want, res.Hash)
	}
	fmt.Fprintf(out, "match %s\n", res.Hash)
	return nil
}

// runColors lists the color pack, or resolves each argument.
func runColors(_ context.Context, cfg Config, args []string, out io.Writer) error {
	pack, err := cfg.colors()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		for _, name := range pack.Names() {
			c, _ := pack.Lookup(name)
			fmt.Fprintf(out, "%s %s\n", c, name)
		}
		fmt.Fprintf(out, "%d names, locales %v\n", pack.Len(), pack.Locales())
		return nil
	}
	for _, arg := range args {
		c, err := colorpack.Resolve(arg, pack)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s %s\n", c, arg)
	}
	return nil
}
