// Package codegen implements Pass C/D: turning a lowered st.Function
// into a bytecode.Function's paired forward/backward instruction
// streams, and the finalize step that resolves every relative jump and
// cross-direction link to an absolute instruction index (spec.md
// §4.4). It is the Go counterpart of compiler.rs's Code/FunctionNode
// compile methods.
package codegen

import (
	"janus/bytecode"
	"janus/diag"
)

// link records one pending cross-direction reference: at is the index,
// within the stream holding the placeholder Reverse instruction, where
// that instruction lives; target is the length the opposite stream had
// reached at the moment the link was taken; it is resolved to an
// absolute index only once that stream stops growing (Finalize).
type link struct {
	at     int
	target int
}

// Buffer accumulates the forward and backward instruction streams for
// one function body (or a sub-block of one), plus any pending
// cross-direction links not yet resolved to absolute indices.
type Buffer struct {
	Fwd  []bytecode.Instruction
	Bkwd []bytecode.Instruction

	f2bLinks []link // at indexes Fwd; target is a pending length-position into Bkwd
	b2fLinks []link // at indexes Bkwd; target is a pending length-position into Fwd
}

// NewBuffer returns an empty Buffer.
func NewBuffer() *Buffer { return &Buffer{} }

// FwdLen, BkwdLen report the current length of each stream.
func (b *Buffer) FwdLen() int  { return len(b.Fwd) }
func (b *Buffer) BkwdLen() int { return len(b.Bkwd) }

// PushFwd appends one instruction to the forward stream and returns its index.
func (b *Buffer) PushFwd(ins bytecode.Instruction) int {
	b.Fwd = append(b.Fwd, ins)
	return len(b.Fwd) - 1
}

// PushBkwd appends one instruction to the backward stream and returns its index.
func (b *Buffer) PushBkwd(ins bytecode.Instruction) int {
	b.Bkwd = append(b.Bkwd, ins)
	return len(b.Bkwd) - 1
}

// AppendFwd appends a whole slice to the forward stream, in order.
func (b *Buffer) AppendFwd(instrs []bytecode.Instruction) {
	b.Fwd = append(b.Fwd, instrs...)
}

// AppendBkwd appends instrs to the backward stream in reverse order.
// Every statement template in this package builds its backward segment
// as the literal mirror of its forward segment; stacking one more
// reversal here lets Finalize's single whole-function reversal turn
// the mirror back into the correct execution order, the same trick
// compiler.rs's append_bkwd relies on.
func (b *Buffer) AppendBkwd(instrs []bytecode.Instruction) {
	b.Bkwd = append(b.Bkwd, reverseInstructions(instrs)...)
}

// LinkFwdToBkwd records that Fwd[fwdIdx]'s operand must become, at
// Finalize, the absolute backward index the backward stream has
// reached at the moment of this call (spec.md §4.4.1's CatchNode: a
// caught forward run must jump into the point in the backward stream
// that continues "as if" it had been running backward all along).
func (b *Buffer) LinkFwdToBkwd(fwdIdx int) {
	b.f2bLinks = append(b.f2bLinks, link{at: fwdIdx, target: len(b.Bkwd)})
}

// LinkBkwdToFwd is LinkFwdToBkwd's mirror image for a backward
// instruction that must jump forward.
func (b *Buffer) LinkBkwdToFwd(bkwdIdx int) {
	b.b2fLinks = append(b.b2fLinks, link{at: bkwdIdx, target: len(b.Fwd)})
}

// ClearBkwd discards the backward stream entirely: used for a fully
// mono statement, which never runs backward (spec.md §4.4.1). It is an
// internal error to drop a backward stream that still holds a pending
// Reverse placeholder (a backward-to-forward link whose own instruction
// lives in this stream) — dropping it would silently lose the link.
func (b *Buffer) ClearBkwd() error {
	for _, ins := range b.Bkwd {
		if ins.Op == bytecode.Reverse {
			return diag.InternalErrorf("codegen: ClearBkwd called with a pending Reverse placeholder in the backward stream")
		}
	}
	b.Bkwd = nil
	b.b2fLinks = nil
	return nil
}

// MergeLinks absorbs other's pending links into b, as though other's
// Fwd and Bkwd instructions had been (or will be) spliced into b at
// fwdOffset and bkwdOffset respectively. It does not touch b.Fwd/b.Bkwd
// themselves; Extend is the plain-concatenation caller.
func (b *Buffer) MergeLinks(other *Buffer, fwdOffset, bkwdOffset int) {
	for _, l := range other.f2bLinks {
		b.f2bLinks = append(b.f2bLinks, link{at: l.at + fwdOffset, target: l.target + bkwdOffset})
	}
	for _, l := range other.b2fLinks {
		b.b2fLinks = append(b.b2fLinks, link{at: l.at + bkwdOffset, target: l.target + fwdOffset})
	}
}

// Extend concatenates other's forward and backward streams onto b's,
// as if other's statements executed immediately after b's (spec.md
// §4.4: "concatenate both directions and shift cross-link offsets").
// Both directions simply append in statement order — the single
// reversal that puts Bkwd into true execution order happens once, in
// Finalize, for the whole function.
func (b *Buffer) Extend(other *Buffer) {
	b.MergeLinks(other, len(b.Fwd), len(b.Bkwd))
	b.Fwd = append(b.Fwd, other.Fwd...)
	b.Bkwd = append(b.Bkwd, other.Bkwd...)
}

// Reversed returns a new Buffer with the forward and backward roles
// swapped: running Reversed().Fwd performs exactly what running b.Bkwd
// would have performed, and vice versa. It grounds the do/yield
// construct's epilogue, which replays the do-block's own backward form
// as a forward run (spec.md §4.4.1's DoYieldNode).
//
// Every link coordinate is remapped by subtracting it from the length
// of the stream it was taken against (not stream-length-minus-one): a
// coordinate here is either an existing placeholder's own index or a
// pending length-position, and both remap the same way under this
// swap, matching compiler.rs's reversed().
func (b *Buffer) Reversed() *Buffer {
	fwdLen, bkwdLen := len(b.Fwd), len(b.Bkwd)
	r := &Buffer{
		Fwd:  reverseInstructions(b.Bkwd),
		Bkwd: reverseInstructions(b.Fwd),
	}
	for _, l := range b.f2bLinks {
		r.b2fLinks = append(r.b2fLinks, link{at: fwdLen - l.at, target: bkwdLen - l.target})
	}
	for _, l := range b.b2fLinks {
		r.f2bLinks = append(r.f2bLinks, link{at: bkwdLen - l.at, target: fwdLen - l.target})
	}
	return r
}

func reverseInstructions(instrs []bytecode.Instruction) []bytecode.Instruction {
	out := make([]bytecode.Instruction, len(instrs))
	for i, ins := range instrs {
		out[len(instrs)-1-i] = ins
	}
	return out
}

// Finalize resolves every pending cross-direction link to an absolute
// instruction index and rewrites every relative jump/iterator-step
// instruction to an absolute one, now that neither stream will grow
// further (spec.md §4.4.2). The backward stream, built in the temporal
// order statements were compiled forward, is reversed first so that it
// runs in true backward execution order.
func (b *Buffer) Finalize() error {
	n := len(b.Bkwd)
	reversedBkwd := reverseInstructions(b.Bkwd)

	for i := range b.f2bLinks {
		b.f2bLinks[i].target = n - b.f2bLinks[i].target
	}
	for i := range b.b2fLinks {
		b.b2fLinks[i].at = n - b.b2fLinks[i].at
	}
	b.Bkwd = reversedBkwd

	for _, l := range b.f2bLinks {
		if l.at < 0 || l.at >= len(b.Fwd) {
			return diag.InternalErrorf("codegen: f2b link at out-of-range forward index %d", l.at)
		}
		if b.Fwd[l.at].Op != bytecode.Reverse {
			return diag.InternalErrorf("codegen: f2b link at forward index %d does not hold a Reverse placeholder", l.at)
		}
		b.Fwd[l.at].Operand = l.target
	}
	for _, l := range b.b2fLinks {
		if l.at < 0 || l.at >= len(b.Bkwd) {
			return diag.InternalErrorf("codegen: b2f link at out-of-range backward index %d", l.at)
		}
		if b.Bkwd[l.at].Op != bytecode.Reverse {
			return diag.InternalErrorf("codegen: b2f link at backward index %d does not hold a Reverse placeholder", l.at)
		}
		b.Bkwd[l.at].Operand = l.target
	}

	resolveRelative(b.Fwd)
	resolveRelative(b.Bkwd)
	return nil
}

// resolveRelative rewrites every relative jump/step instruction in
// instrs to the corresponding absolute-target instruction, in place.
func resolveRelative(instrs []bytecode.Instruction) {
	for i, ins := range instrs {
		switch ins.Op {
		case bytecode.RelativeJump:
			instrs[i] = bytecode.Instruction{Op: bytecode.Jump, Operand: i + ins.Operand}
		case bytecode.RelativeJumpIfTrue:
			instrs[i] = bytecode.Instruction{Op: bytecode.JumpIfTrue, Operand: i + ins.Operand}
		case bytecode.RelativeJumpIfFalse:
			instrs[i] = bytecode.Instruction{Op: bytecode.JumpIfFalse, Operand: i + ins.Operand}
		case bytecode.StepIter:
			instrs[i] = bytecode.Instruction{Op: bytecode.StepIter, Operand: i + ins.Operand}
		}
	}
}
