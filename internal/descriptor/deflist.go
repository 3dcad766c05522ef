package descriptor

// DefList is an append-only, ordered sequence of Definitions. It owns the
// Definitions it holds until Donate transfers that ownership to a caller;
// append never reorders, so indices handed out during a parse (see
// ScopeFrame.Start and the enclosing-message lookup in reader.go) remain
// stable references for the lifetime of the build.
//
// Go's garbage collector means DefList has no literal "release on
// destruction" the way upb_deflist_uninit does in the original C reader —
// Owned exists purely as the documented contract's owned/donated state,
// mirrored here for fidelity with spec.md's resource model and so a caller
// can assert donation happened exactly once.
type DefList struct {
	defs  []Definition
	owned bool
}

// NewDefList allocates an empty, owned DefList.
func NewDefList() *DefList {
	return &DefList{defs: make([]Definition, 0, 8), owned: true}
}

// Len returns the number of Definitions currently held.
func (l *DefList) Len() int { return len(l.defs) }

// Push appends a Definition. Amortized O(1) via Go's slice growth.
func (l *DefList) Push(d Definition) {
	l.defs = append(l.defs, d)
}

// Last returns the most recently appended Definition. The caller must
// ensure the list is non-empty.
func (l *DefList) Last() Definition {
	return l.defs[len(l.defs)-1]
}

// At returns the Definition at the given index. The caller must ensure the
// index is in range.
func (l *DefList) At(i int) Definition {
	return l.defs[i]
}

// Qualify prefixes every Definition at index >= start with prefix, joined
// by a dot. An empty prefix leaves names unchanged (so qualification is
// idempotent when the package is empty, per spec.md §8). Qualification is
// applied exactly once per scope frame, at the moment the frame closes.
func (l *DefList) Qualify(prefix string, start int) {
	for i := start; i < len(l.defs); i++ {
		d := l.defs[i]
		d.setFullName(join(prefix, d.FullName()))
	}
}

// join mirrors upb_join from original_source/upb/descriptor/reader.c:
// an empty base leaves name unchanged, otherwise "base.name".
func join(base, name string) string {
	if base == "" {
		return name
	}
	return base + "." + name
}

// Donate hands ownership of every held Definition to owner and flips the
// list to non-owning. owner is unused beyond documenting who the new owner
// is; Go's GC reclaims Definitions regardless of which side "owns" them,
// but the donate-once contract is preserved so callers can't accidentally
// donate twice: a call after the first returns nil (see Reader.Finalize).
func (l *DefList) Donate(owner any) []Definition {
	_ = owner
	if !l.owned {
		return nil
	}
	l.owned = false
	return l.defs
}

// Owned reports whether this list has not yet donated its contents.
func (l *DefList) Owned() bool { return l.owned }
