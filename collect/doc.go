// Package collect gathers draw entries from world state and orders them.
//
// Three collectors read the same state.Store independently:
//
//   - Components: per-entity records found through "<id>.shape.kind" keys
//     (legacy "<id>.모양.종류").
//   - List: the explicit record list under "draw.list".
//   - Rules: the cross product of "draw.rules" and "draw.tags", with
//     "$name" fields substituted from the matched tag record.
//
// Merge concatenates their output and sorts it by (entity id, shape kind,
// z, x, y, w, h, tiebreak), which makes the final order independent of the
// order in which collectors ran.
package collect
