package conf

import (
	"sort"
	"strings"

	"github.com/genhoi/unit/pkg/shockcore/memory"
)

// opAction is the edit-overlay node's action tag.
type opAction int

const (
	opPass opAction = iota
	opCreate
	opReplace
	opDelete
)

// Op is one node of the edit-overlay chain compiled by Compile and consumed
// exactly once by Clone. Op chains are flat per object level: Next walks
// siblings compiled against the same object, not ancestry.
type Op struct {
	index  int
	action opAction

	// ctx holds the sub-chain for opPass, the fresh member for opCreate, or
	// the replacement value for opReplace. Unused for opDelete.
	passChain *Op
	newKey    string // opCreate only
	value     Value  // opCreate, opReplace

	next *Op
}

// Compile walks path (a leading-slash, slash-delimited sequence of object
// member names) against root and produces the op chain that Clone applies.
//
//   - newValue.IsNull() requests deletion of the terminal key. EditDeclined
//     is returned if the key is absent.
//   - Otherwise the terminal key is replaced if present, created otherwise.
//   - Every non-terminal path component must name an existing object member;
//     a missing one yields EditDeclined, and a non-object yields EditError.
func Compile(root Value, path string, newValue Value) (*Op, EditResult, error) {
	if len(path) == 0 || path[0] != '/' {
		return nil, EditError, &editError{reason: "path must start with '/'"}
	}

	segments := strings.Split(path[1:], "/")
	return compileAt(root, segments, newValue)
}

func compileAt(node Value, segments []string, newValue Value) (*Op, EditResult, error) {
	if node.Kind() != KindObject {
		return nil, EditError, &editError{reason: "path descends into a non-object"}
	}

	key := segments[0]
	idx := indexOfMember(node, key)

	terminal := len(segments) == 1

	if !terminal {
		if idx < 0 {
			return nil, EditDeclined, nil
		}
		sub, result, err := compileAt(node.obj[idx].Value, segments[1:], newValue)
		if result != EditOK {
			return nil, result, err
		}
		return &Op{index: idx, action: opPass, passChain: sub}, EditOK, nil
	}

	if newValue.IsNull() {
		if idx < 0 {
			return nil, EditDeclined, nil
		}
		return &Op{index: idx, action: opDelete}, EditOK, nil
	}

	if idx >= 0 {
		return &Op{index: idx, action: opReplace, value: newValue}, EditOK, nil
	}

	return &Op{
		index:  len(node.obj),
		action: opCreate,
		newKey: key,
		value:  newValue,
	}, EditOK, nil
}

// MergeOps combines op chains compiled independently against the same root
// (e.g. several Compile calls for different paths) into one ascending-
// index-ordered chain so Clone can apply them all in a single traversal.
// Chains targeting the same top-level index are kept in the order given
// (later callers' Pass sub-chains are not merged with earlier ones at
// deeper levels — callers wanting several edits under one shared ancestor
// should compile that ancestor's Pass chain themselves).
func MergeOps(ops ...*Op) *Op {
	flat := make([]*Op, 0, len(ops))
	for _, o := range ops {
		if o != nil {
			flat = append(flat, o)
		}
	}

	sort.SliceStable(flat, func(i, j int) bool { return flat[i].index < flat[j].index })

	for i := 0; i < len(flat)-1; i++ {
		flat[i].next = flat[i+1]
	}
	if len(flat) == 0 {
		return nil
	}
	flat[len(flat)-1].next = nil
	return flat[0]
}

func indexOfMember(v Value, name string) int {
	for i, m := range v.obj {
		if m.Name.String() == name {
			return i
		}
	}
	return -1
}

// Clone deep-copies root into arena, applying op (which must have been
// compiled against root) in a single lock-step traversal: the destination
// object's member array is sized up front from old_count ± create − delete,
// and source/destination positions advance together as Pass/Create/Replace/
// Delete nodes fire.
//
// Create and Replace values are deep-cloned into arena rather than aliased
// from the op's context (see SPEC_FULL.md §9 for why this
// departs from the original's shallow copy).
func Clone(arena *memory.Arena, root Value, op *Op) Value {
	return cloneValue(arena, root, op)
}

func cloneValue(arena *memory.Arena, v Value, op *Op) Value {
	switch v.Kind() {
	case KindArray:
		items := memory.MakeSlice[Value](arena, len(v.arr))
		for i, e := range v.arr {
			items[i] = deepClone(arena, e)
		}
		return Array(items)
	case KindObject:
		return cloneObject(arena, v, op)
	case KindShortStr, KindStr:
		return String(arena, v.String())
	default:
		return v
	}
}

// deepClone copies a value with no applicable op chain (i.e. the subtree an
// edit chain does not reach).
func deepClone(arena *memory.Arena, v Value) Value {
	switch v.Kind() {
	case KindArray:
		items := memory.MakeSlice[Value](arena, len(v.arr))
		for i, e := range v.arr {
			items[i] = deepClone(arena, e)
		}
		return Array(items)
	case KindObject:
		members := memory.MakeSlice[Member](arena, len(v.obj))
		for i, m := range v.obj {
			members[i] = Member{Name: String(arena, m.Name.String()), Value: deepClone(arena, m.Value)}
		}
		return Object(members)
	case KindShortStr, KindStr:
		return String(arena, v.String())
	default:
		return v
	}
}

func cloneObject(arena *memory.Arena, v Value, op *Op) Value {
	delta := 0
	for o := op; o != nil; o = o.next {
		switch o.action {
		case opCreate:
			delta++
		case opDelete:
			delta--
		}
	}

	newCount := len(v.obj) + delta
	members := memory.MakeSlice[Member](arena, newCount)

	s, d := 0, 0
	cur := op

	opAt := func(srcIdx int) *Op {
		if cur != nil && cur.index == srcIdx {
			return cur
		}
		return nil
	}

	for s < len(v.obj) {
		o := opAt(s)
		if o == nil {
			members[d] = Member{
				Name:  String(arena, v.obj[s].Name.String()),
				Value: deepClone(arena, v.obj[s].Value),
			}
			s++
			d++
			continue
		}

		switch o.action {
		case opPass:
			members[d] = Member{
				Name:  String(arena, v.obj[s].Name.String()),
				Value: cloneValue(arena, v.obj[s].Value, o.passChain),
			}
			s++
			d++
		case opReplace:
			members[d] = Member{
				Name:  String(arena, v.obj[s].Name.String()),
				Value: deepClone(arena, o.value),
			}
			s++
			d++
		case opDelete:
			s++
		case opCreate:
			// Create nodes are keyed by their intended destination index
			// (== old object length) and are applied after all source
			// members are consumed, below.
		}

		cur = cur.next
	}

	// Any remaining Create nodes append new members at the end, in the
	// order they were compiled.
	for o := op; o != nil; o = o.next {
		if o.action == opCreate {
			members[d] = Member{
				Name:  String(arena, o.newKey),
				Value: deepClone(arena, o.value),
			}
			d++
		}
	}

	return Object(members[:d])
}
