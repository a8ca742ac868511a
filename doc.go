// Package detdraw compiles semantic world state into deterministic draw lists.
//
// # Overview
//
// A draw list is an ordered sequence of drawing commands opened by a single
// background Clear. The compiler (package compiler) reads a state snapshot,
// collects draw entries through three conventions (per-entity components,
// an explicit list, and mapping rules over tag records), sorts them into one
// total order, applies a command-count policy and serializes the result with
// one of two binary codecs:
//
//   - BDL1: integer pixel geometry, six opcodes. Circles, arcs and curves are
//     projected onto rectangles and lines.
//   - BDL2: Q24.8 fixed-point geometry, ten opcodes, anti-alias flag.
//
// The encoded bytes are fingerprinted by package digest. The same state,
// policy and codec always produce the same bytes and the same hash.
//
// # Quick Start
//
//	b := detdraw.NewBuilder(320, 240)
//	b.Clear(detdraw.RGB(0x10, 0x10, 0x10))
//	b.FillRect(10, 10, 20, 20, detdraw.RGB(0xff, 0, 0))
//	list := b.Finish()
//
//	data, err := codec.Encode(codec.Bdl2, list)
//
// # Packages
//
//   - detdraw: commands, colors, draw lists, errors, logging
//   - state: state store interface and in-memory snapshot
//   - colorpack: color name dictionary and color resolution
//   - collect: entry collectors and deterministic ordering
//   - policy: command-count overflow policy
//   - codec, codec/bdl1, codec/bdl2: wire formats
//   - digest: content hash
//   - compiler: the end-to-end pipeline
//   - metrics: command bounds for inspection tooling
//   - artifact: content-addressed store of encoded draw lists
//
// # Logging
//
// detdraw produces no log output by default. Use [SetLogger] to route
// diagnostics to a [log/slog] logger.
package detdraw
