// Package compiler turns a state snapshot into an encoded draw list.
//
// The pipeline is:
//
//	scene settings → collectors → merge/sort → Clear + commands
//	→ command-count policy → codec → content hash
//
// Compile is a pure function of the store contents and Options. It does not
// retain its inputs and may run concurrently on independent stores.
package compiler

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/detdraw"
	"github.com/gogpu/detdraw/codec"
	_ "github.com/gogpu/detdraw/codec/bdl1" // register BDL1
	_ "github.com/gogpu/detdraw/codec/bdl2" // register BDL2
	"github.com/gogpu/detdraw/collect"
	"github.com/gogpu/detdraw/colorpack"
	"github.com/gogpu/detdraw/digest"
	"github.com/gogpu/detdraw/policy"
	"github.com/gogpu/detdraw/state"
)

// Scene settings are read from a pack stored under SceneKey.
const (
	SceneKey    = "scene"
	WidthField  = "width"
	HeightField = "height"
	BgField     = "bg"
)

// Defaults used when neither the scene pack nor Options set a value.
const (
	DefaultWidth      = 640
	DefaultHeight     = 480
	DefaultBackground = "#000000"
	DefaultFormat     = codec.Bdl1
)

// Options configures a compile.
type Options struct {
	// Colors resolves named colors. Nil means only hex literals resolve.
	Colors *colorpack.Pack

	// Policy bounds the command count. The zero value passes everything.
	Policy policy.Config

	// Format selects the wire format. Zero selects DefaultFormat.
	Format codec.Tag

	// Width and Height size the surface when the scene pack does not.
	// Zero selects the defaults.
	Width, Height uint32

	// Background is a hex literal or color name used when the scene pack
	// has no bg field. Empty selects DefaultBackground.
	Background string
}

// DefaultOptions returns options with the built-in color pack and defaults.
func DefaultOptions() Options {
	return Options{
		Colors:     colorpack.Builtin(),
		Format:     DefaultFormat,
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		Background: DefaultBackground,
	}
}

func (o Options) withDefaults() Options {
	if o.Format == 0 {
		o.Format = DefaultFormat
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Background == "" {
		o.Background = DefaultBackground
	}
	return o
}

// Result is the output of Compile.
type Result struct {
	// List is the draw list after the policy ran.
	List *detdraw.DrawList

	// Format is the codec that produced Bytes.
	Format codec.Tag

	// Bytes is the encoding of List.
	Bytes []byte

	// Hash is digest.Sum(Bytes).
	Hash string

	// Overflow is set when Summary mode truncated the list.
	Overflow *policy.Event
}

// Compile runs the whole pipeline. The first failure aborts it.
func Compile(st state.Store, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	list, ev, err := Build(st, opts)
	if err != nil {
		return nil, err
	}

	data, err := codec.Encode(opts.Format, list)
	if err != nil {
		return nil, err
	}
	res := &Result{
		List:     list,
		Format:   opts.Format,
		Bytes:    data,
		Hash:     digest.Sum(data),
		Overflow: ev,
	}
	detdraw.Logger().Debug("compiler: encoded draw list",
		slog.String("format", opts.Format.String()),
		slog.Int("bytes", len(data)),
		slog.String("hash", res.Hash))
	return res, nil
}

// Build produces the policy-checked draw list without encoding it.
func Build(st state.Store, opts Options) (*detdraw.DrawList, *policy.Event, error) {
	opts = opts.withDefaults()
	if err := opts.Policy.Validate(); err != nil {
		return nil, nil, err
	}

	sc, err := readScene(st, opts)
	if err != nil {
		return nil, nil, err
	}

	groups := make([][]collect.Entry, 0, len(collect.All))
	for _, c := range collect.All {
		entries, err := c(st, opts.Colors)
		if err != nil {
			return nil, nil, err
		}
		groups = append(groups, entries)
	}
	entries := collect.Merge(groups...)

	cmds := make([]detdraw.DrawCommand, 0, len(entries)+1)
	cmds = append(cmds, detdraw.Clear{Color: sc.bg})
	cmds = append(cmds, collect.Commands(entries)...)

	log := detdraw.Logger()
	log.Debug("compiler: collected entries",
		slog.Int("components", len(groups[0])),
		slog.Int("list", len(groups[1])),
		slog.Int("rules", len(groups[2])),
		slog.Int("commands", len(cmds)))

	out, ev, err := policy.Apply(opts.Policy, cmds)
	if err != nil {
		return nil, nil, err
	}
	if ev != nil {
		log.Warn("compiler: draw list truncated",
			slog.String("mode", ev.Mode.String()),
			slog.Uint64("cap", uint64(ev.Cap)),
			slog.Int("count", ev.Count))
	}
	return &detdraw.DrawList{Width: sc.width, Height: sc.height, Cmds: out}, ev, nil
}

type scene struct {
	width, height uint32
	bg            detdraw.Rgba
}

// readScene merges the optional scene pack over opts.
func readScene(st state.Store, opts Options) (scene, error) {
	sc := scene{width: opts.Width, height: opts.Height}
	bg := opts.Background

	if v, ok := st.Get(SceneKey); ok {
		p, ok := v.Pack()
		if !ok {
			return sc, detdraw.NewError(detdraw.KindBadFieldType, SceneKey, "want pack, got "+v.Kind().String())
		}
		var err error
		if sc.width, err = dimension(p, WidthField, sc.width); err != nil {
			return sc, err
		}
		if sc.height, err = dimension(p, HeightField, sc.height); err != nil {
			return sc, err
		}
		if v, ok := p.Get(BgField); ok {
			s, ok := v.Str()
			if !ok {
				return sc, detdraw.NewError(detdraw.KindBadFieldType, SceneKey+"."+BgField, "want string, got "+v.Kind().String())
			}
			bg = s
		}
	}

	c, err := colorpack.Resolve(bg, opts.Colors)
	if err != nil {
		return sc, fmt.Errorf("%s.%s: %w", SceneKey, BgField, err)
	}
	sc.bg = c
	return sc, nil
}

// dimension reads an optional surface size in [1, MaxUint32].
func dimension(p *state.Pack, name string, def uint32) (uint32, error) {
	v, ok := p.Get(name)
	if !ok {
		return def, nil
	}
	path := SceneKey + "." + name
	n, ok := v.Num()
	if !ok {
		return 0, detdraw.NewError(detdraw.KindBadFieldType, path, "want number, got "+v.Kind().String())
	}
	if !state.IsIntegral(n) {
		return 0, detdraw.NewError(detdraw.KindNonIntPixel, path, fmt.Sprintf("value %v has a fractional part", state.ToFloat(n)))
	}
	i := state.IntPart(n)
	if i < 1 || i > 1<<32-1 {
		return 0, detdraw.NewError(detdraw.KindNonIntPixel, path, fmt.Sprintf("size %d out of range", i))
	}
	return uint32(i), nil
}
