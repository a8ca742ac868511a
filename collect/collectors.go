package collect

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/gogpu/detdraw"
	"github.com/gogpu/detdraw/colorpack"
	"github.com/gogpu/detdraw/state"
)

// State keys read by the collectors.
const (
	ListKey  = "draw.list"
	RulesKey = "draw.rules"
	TagsKey  = "draw.tags"
)

// Shape key suffixes of the component convention: canonical, then legacy.
var shapeKeySuffixes = []string{".shape.kind", ".모양.종류"}

// Component record suffix per shape kind.
var componentSuffix = map[ShapeKind]string{
	ShapeRect:   ".rect",
	ShapeText:   ".text",
	ShapeSprite: ".sprite",
}

// Collector reads draw entries from a state snapshot.
type Collector func(st state.Store, colors *colorpack.Pack) ([]Entry, error)

// All is the set of collectors run by the compiler.
var All = []Collector{Components, List, Rules}

// Components collects per-entity component records. An entity is declared
// by a string value under "<id>.shape.kind" or the legacy "<id>.모양.종류";
// when both exist the canonical key wins. Kinds other than rect, text and
// sprite belong to other systems and are skipped. The entity's record is
// read from "<id>.rect", "<id>.text" or "<id>.sprite".
func Components(st state.Store, colors *colorpack.Pack) ([]Entry, error) {
	seen := make(map[string]bool)
	var out []Entry
	for _, key := range st.Keys() {
		entity, ok := shapeEntity(key)
		if !ok || seen[entity] {
			continue
		}
		seen[entity] = true

		v, _ := st.Get(key)
		s, err := str(v, key)
		if err != nil {
			return nil, err
		}
		kind, ok := ParseShapeKind(s)
		if !ok {
			detdraw.Logger().Debug("collect: skipping entity with foreign shape kind", "entity", entity, "kind", s)
			continue
		}

		recKey := entity + componentSuffix[kind]
		rv, ok := st.Get(recKey)
		if !ok {
			return nil, detdraw.NewError(detdraw.KindMissingField, recKey, "component record for "+kind.String())
		}
		rec, ok := rv.Pack()
		if !ok {
			return nil, detdraw.NewError(detdraw.KindBadFieldType, recKey, "want pack, got "+rv.Kind().String())
		}
		e, err := build(kind, packFields{p: rec, at: recKey}, entity, colors)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// shapeEntity extracts the entity id from a shape declaration key.
func shapeEntity(key string) (string, bool) {
	for _, suffix := range shapeKeySuffixes {
		if entity, ok := strings.CutSuffix(key, suffix); ok && entity != "" {
			return entity, true
		}
	}
	return "", false
}

// List collects the records of the "draw.list" list. Each element is a pack
// with a "kind" (legacy "종류") field, the kind's fields, an optional "z"
// and an optional "id"; the id defaults to "list.NNNNNN" from the element's
// position.
func List(st state.Store, colors *colorpack.Pack) ([]Entry, error) {
	items, ok, err := listAt(st, ListKey)
	if err != nil || !ok {
		return nil, err
	}
	out := make([]Entry, 0, len(items))
	for i, item := range items {
		at := fmt.Sprintf("%s[%d]", ListKey, i)
		rec, ok := item.Pack()
		if !ok {
			return nil, detdraw.NewError(detdraw.KindBadFieldType, at, "want pack, got "+item.Kind().String())
		}
		f := packFields{p: rec, at: at}

		kindStr, err := requiredStr(f, "kind", "종류")
		if err != nil {
			return nil, err
		}
		kind, ok := ParseShapeKind(kindStr)
		if !ok {
			return nil, detdraw.NewError(detdraw.KindBadFieldType, at+".kind", fmt.Sprintf("unknown shape kind %q", kindStr))
		}

		id := fmt.Sprintf("list.%06d", i)
		if v, path, ok, _ := f.field("id"); ok {
			if id, err = str(v, path); err != nil {
				return nil, err
			}
		}

		e, err := build(kind, f, id, colors)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// rule is a validated mapping rule.
type rule struct {
	id   int64
	pos  int
	tag  string
	kind ShapeKind
	f    packFields
}

// tagRecord is a tag list element with its identifier.
type tagRecord struct {
	id string
	f  packFields
}

// Rules expands mapping rules over tag records. For every rule, ordered by
// (rule_id, position), and every tag record, in list order, whose "tag"
// (or "id") equals the rule's "tag", one entry is emitted with entity id
// "<tag>/<rule_id>". Rule fields of the form "$name" take the value of the
// tag record's field name.
func Rules(st state.Store, colors *colorpack.Pack) ([]Entry, error) {
	ruleItems, ok, err := listAt(st, RulesKey)
	if err != nil || !ok {
		return nil, err
	}
	tagItems, ok, err := listAt(st, TagsKey)
	if err != nil || !ok {
		return nil, err
	}

	rules := make([]rule, 0, len(ruleItems))
	for i, item := range ruleItems {
		r, err := parseRule(item, i)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	slices.SortFunc(rules, func(a, b rule) int {
		if c := cmp.Compare(a.id, b.id); c != 0 {
			return c
		}
		return cmp.Compare(a.pos, b.pos)
	})

	tags := make([]tagRecord, 0, len(tagItems))
	for i, item := range tagItems {
		at := fmt.Sprintf("%s[%d]", TagsKey, i)
		rec, ok := item.Pack()
		if !ok {
			return nil, detdraw.NewError(detdraw.KindBadFieldType, at, "want pack, got "+item.Kind().String())
		}
		f := packFields{p: rec, at: at}
		id, err := requiredStr(f, "tag", "id")
		if err != nil {
			return nil, err
		}
		tags = append(tags, tagRecord{id: id, f: f})
	}

	var out []Entry
	for _, r := range rules {
		for _, t := range tags {
			if t.id != r.tag {
				continue
			}
			entity := fmt.Sprintf("%s/%d", t.id, r.id)
			e, err := build(r.kind, ruleFields{rule: r.f, tag: t.f}, entity, colors)
			if err != nil {
				return nil, err
			}
			out = append(out, e)
		}
	}
	return out, nil
}

func parseRule(item state.Value, pos int) (rule, error) {
	at := fmt.Sprintf("%s[%d]", RulesKey, pos)
	rec, ok := item.Pack()
	if !ok {
		return rule{}, detdraw.NewError(detdraw.KindBadFieldType, at, "want pack, got "+item.Kind().String())
	}
	f := packFields{p: rec, at: at}

	v, path, err := required(f, "rule_id")
	if err != nil {
		return rule{}, err
	}
	id, err := integer(v, path)
	if err != nil {
		return rule{}, err
	}
	if id < 0 {
		return rule{}, detdraw.NewError(detdraw.KindBadFieldType, path, "rule_id must be non-negative")
	}

	tag, err := requiredStr(f, "tag")
	if err != nil {
		return rule{}, err
	}
	kindStr, err := requiredStr(f, "kind")
	if err != nil {
		return rule{}, err
	}
	var kind ShapeKind
	switch strings.ToLower(strings.TrimSpace(kindStr)) {
	case "rect":
		kind = ShapeRect
	case "text":
		kind = ShapeText
	case "sprite":
		kind = ShapeSprite
	default:
		return rule{}, detdraw.NewError(detdraw.KindBadFieldType, at+".kind", fmt.Sprintf("unknown rule kind %q", kindStr))
	}
	return rule{id: id, pos: pos, tag: tag, kind: kind, f: f}, nil
}

// listAt reads an optional list-valued key.
func listAt(st state.Store, key string) ([]state.Value, bool, error) {
	v, ok := st.Get(key)
	if !ok {
		return nil, false, nil
	}
	items, ok := v.List()
	if !ok {
		return nil, false, detdraw.NewError(detdraw.KindBadFieldType, key, "want list, got "+v.Kind().String())
	}
	return items, true, nil
}
