package bytecode

import "encoding/json"

// instructionJSON is Instruction's wire form: the op name rather than
// its numeric encoding, so a dump is readable without this package's
// source open next to it.
type instructionJSON struct {
	Op      string `json:"op"`
	Operand int    `json:"operand"`
}

func (i Instruction) MarshalJSON() ([]byte, error) {
	return json.Marshal(instructionJSON{Op: i.Op.String(), Operand: i.Operand})
}

func (i *Instruction) UnmarshalJSON(data []byte) error {
	var w instructionJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	op, ok := opByName[w.Op]
	if !ok {
		return &UnknownOpError{Name: w.Op}
	}
	i.Op = op
	i.Operand = w.Operand
	return nil
}

// UnknownOpError reports a JSON op name this package does not recognize.
type UnknownOpError struct{ Name string }

func (e *UnknownOpError) Error() string { return "bytecode: unknown opcode " + e.Name }

var opByName = func() map[string]OpCode {
	m := make(map[string]OpCode, len(opNames))
	for op, name := range opNames {
		if name != "" {
			m[name] = OpCode(op)
		}
	}
	return m
}()

// functionJSON is Function's wire form: constants are rationals'
// RatString form ("a/b", or just "a" for an integer), since *big.Rat
// has no exported fields for encoding/json to see.
type functionJSON struct {
	Name            string        `json:"name"`
	Consts          []string      `json:"consts"`
	Strings         []string      `json:"strings"`
	Forward         []Instruction `json:"forward"`
	Backward        []Instruction `json:"backward"`
	NumRegisters    int           `json:"num_registers"`
	BorrowRegisters []int         `json:"borrow_registers"`
	StealRegisters  []int         `json:"steal_registers"`
	ReturnRegisters []int         `json:"return_registers"`
}

func (f *Function) MarshalJSON() ([]byte, error) {
	consts := make([]string, len(f.Consts))
	for i, c := range f.Consts {
		consts[i] = c.RatString()
	}
	return json.Marshal(functionJSON{
		Name:            f.Name,
		Consts:          consts,
		Strings:         f.Strings,
		Forward:         f.Forward,
		Backward:        f.Backward,
		NumRegisters:    f.NumRegisters,
		BorrowRegisters: f.BorrowRegisters,
		StealRegisters:  f.StealRegisters,
		ReturnRegisters: f.ReturnRegisters,
	})
}

type moduleJSON struct {
	Functions     []*Function `json:"functions"`
	MainIdx       int         `json:"main_idx"`
	GlobalFuncIdx int         `json:"global_func_idx"`
}

func (m *Module) MarshalJSON() ([]byte, error) {
	return json.Marshal(moduleJSON{
		Functions:     m.Functions,
		MainIdx:       m.MainIdx,
		GlobalFuncIdx: m.GlobalFuncIdx,
	})
}
