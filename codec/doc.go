// Package codec serializes draw lists to deterministic binary formats.
//
// Two formats exist, identified by a Tag and by their 4-byte magic:
//
//   - Bdl1 ("BDL1"): integer pixel geometry (package codec/bdl1)
//   - Bdl2 ("BDL2"): Q24.8 fixed-point geometry (package codec/bdl2)
//
// Format packages register themselves with this package at init, following
// the database/sql driver pattern. Import them with a blank identifier:
//
//	import (
//	    "github.com/gogpu/detdraw/codec"
//	    _ "github.com/gogpu/detdraw/codec/bdl1"
//	    _ "github.com/gogpu/detdraw/codec/bdl2"
//	)
//
//	data, err := codec.Encode(codec.Bdl2, list)
//	back, tag, err := codec.Decode(data) // format chosen by magic
//
// Every Encode is deterministic: equal lists give byte-identical output.
// Decoders are strict: wrong magic or version, non-zero reserved fields,
// invalid UTF-8, unknown opcodes, truncation and trailing bytes all fail
// with a *ParseError.
package codec
