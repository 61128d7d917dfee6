package bytecode

import (
	"bytes"
	"fmt"
	"io"
	"math/big"
)

// Function is one compiled function: its constant/string pools, its
// forward and backward instruction streams (both already finalized to
// absolute instruction pointers), and its register count.
type Function struct {
	Name            string
	Consts          []*big.Rat
	Strings         []string
	Forward         []Instruction
	Backward        []Instruction
	NumRegisters    int
	BorrowRegisters []int
	StealRegisters  []int
	ReturnRegisters []int
}

// Module is the whole compiled program: every function plus the index
// of main and of the synthesized global initializer (spec.md §4.5).
type Module struct {
	Functions     []*Function
	MainIdx       int
	GlobalFuncIdx int
}

var _ io.WriterTo = (*Function)(nil)

// WriteTo writes a human-readable disassembly of f, in the spirit of
// go/ssa's WriteFunction: one line per instruction, forward then
// backward, with pool contents listed first.
func (f *Function) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# Function: %s\n", f.Name)
	fmt.Fprintf(&buf, "# Registers: %d\n", f.NumRegisters)
	if len(f.Consts) > 0 {
		buf.WriteString("# Consts:\n")
		for i, c := range f.Consts {
			fmt.Fprintf(&buf, "#  %3d: %s\n", i, c.RatString())
		}
	}
	if len(f.Strings) > 0 {
		buf.WriteString("# Strings:\n")
		for i, s := range f.Strings {
			fmt.Fprintf(&buf, "#  %3d: %q\n", i, s)
		}
	}
	buf.WriteString("fwd:\n")
	writeInstructions(&buf, f.Forward)
	buf.WriteString("bkwd:\n")
	writeInstructions(&buf, f.Backward)
	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

func writeInstructions(buf *bytes.Buffer, instrs []Instruction) {
	for i, instr := range instrs {
		fmt.Fprintf(buf, "%4d\t%s\n", i, instr)
	}
}

// WriteModule disassembles every function of m to w.
func WriteModule(w io.Writer, m *Module) error {
	for i, f := range m.Functions {
		if i == m.MainIdx {
			fmt.Fprintln(w, "# (main)")
		}
		if i == m.GlobalFuncIdx {
			fmt.Fprintln(w, "# (global initializer)")
		}
		if _, err := f.WriteTo(w); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}
	return nil
}
