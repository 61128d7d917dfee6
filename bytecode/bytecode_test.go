package bytecode

import (
	"encoding/json"
	"math/big"
	"testing"
)

func TestOpInverseRoundTrips(t *testing.T) {
	cases := []struct{ op, inv Op }{
		{OpAdd, OpSub},
		{OpSub, OpAdd},
		{OpMul, OpDiv},
		{OpDiv, OpMul},
	}
	for _, c := range cases {
		if got := c.op.Inverse(); got != c.inv {
			t.Errorf("%v.Inverse() = %v, want %v", c.op, got, c.inv)
		}
		if got := c.inv.Inverse(); got != c.op {
			t.Errorf("%v.Inverse().Inverse() = %v, want %v", c.op, got, c.op)
		}
	}
}

func TestOpAndOrHaveNoInverse(t *testing.T) {
	for _, op := range []Op{OpAnd, OpOr} {
		func() {
			defer func() {
				if r := recover(); r == nil {
					t.Errorf("expected %v.Inverse() to panic", op)
				}
			}()
			op.Inverse()
		}()
	}
}

func TestInstructionStringFormatsOperandOnlyWhenMeaningful(t *testing.T) {
	if got := (Instruction{Op: UniqueVar}).String(); got != "UniqueVar" {
		t.Errorf("UniqueVar.String() = %q, want %q", got, "UniqueVar")
	}
	if got := InsLoadConst(3).String(); got != "LoadConst(3)" {
		t.Errorf("LoadConst(3).String() = %q, want %q", got, "LoadConst(3)")
	}
}

func TestInstructionJSONRoundTrip(t *testing.T) {
	want := InsStepIter(7)
	data, err := json.Marshal(want)
	if err != nil {
		t.Fatal(err)
	}
	var got Instruction
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("round trip = %v, want %v", got, want)
	}
}

func TestInstructionJSONUnknownOp(t *testing.T) {
	var got Instruction
	err := json.Unmarshal([]byte(`{"op":"NotARealOp","operand":0}`), &got)
	if err == nil {
		t.Fatal("expected an error for an unrecognized opcode name")
	}
	if _, ok := err.(*UnknownOpError); !ok {
		t.Errorf("expected *UnknownOpError, got %T", err)
	}
}

func TestFunctionJSONEncodesRatConstantsAsStrings(t *testing.T) {
	f := &Function{
		Name:   "f",
		Consts: []*big.Rat{big.NewRat(1, 3), big.NewRat(7, 1)},
		Forward: []Instruction{
			InsLoadConst(0),
		},
	}
	data, err := json.Marshal(f)
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Consts []string `json:"consts"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded.Consts) != 2 || decoded.Consts[0] != "1/3" || decoded.Consts[1] != "7" {
		t.Errorf("unexpected constants encoding: %v", decoded.Consts)
	}
}

func TestWriteModuleDisassemblesEveryFunction(t *testing.T) {
	m := &Module{
		Functions: []*Function{
			{Name: "main", Forward: []Instruction{InsLoadConst(0)}, Backward: []Instruction{InsFreeRegister(0)}},
			{Name: "$global", Forward: []Instruction{}, Backward: []Instruction{}},
		},
		MainIdx:       0,
		GlobalFuncIdx: 1,
	}
	var buf writerBuf
	if err := WriteModule(&buf, m); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !contains(out, "main") || !contains(out, "$global") {
		t.Errorf("expected disassembly to mention both function names, got:\n%s", out)
	}
}

type writerBuf struct{ data []byte }

func (w *writerBuf) Write(p []byte) (int, error) {
	w.data = append(w.data, p...)
	return len(p), nil
}
func (w *writerBuf) String() string { return string(w.data) }

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
