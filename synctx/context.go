// Package synctx implements the per-function syntax context a lowering
// pass consults while walking statements: the live Variable/Reference
// graph, register allocation, and the const/string dedup pools
// (spec.md §4.2). It is the Go counterpart of syntaxchecker.rs's
// SyntaxContext.
package synctx

import (
	"math/big"

	"janus/diag"
	"janus/proto"
	"janus/pt"
	"janus/st"
)

// Context tracks one function's bindings while it is being lowered.
type Context struct {
	Protos map[string]*proto.FunctionPrototype

	refs      map[string]*st.Reference
	nextVarID int
	freeRegs  []int // LIFO freelist
	nextReg   int

	consts     []*big.Rat
	constIndex map[string]int
	strings    []string
	stringIndex map[string]int

	borrowRegisters []int
	stealRegisters  []int
	returnRegisters []int

	// linked is the link-name-to-Variable table InitFunc builds while
	// binding borrow/steal parameters, kept around for EndFunc to check
	// returned links against (mirrors syntaxchecker.rs's init_func
	// returning its `linked` map for end_func to consume).
	linked map[string]*st.Variable
}

// New creates an empty context sharing the given prototype table.
func New(protos map[string]*proto.FunctionPrototype) *Context {
	return &Context{
		Protos:      protos,
		refs:        make(map[string]*st.Reference),
		constIndex:  make(map[string]int),
		stringIndex: make(map[string]int),
	}
}

// NumRegisters reports how many registers have ever been allocated.
func (c *Context) NumRegisters() int { return c.nextReg }

// Consts returns the accumulated constant pool, in first-use order.
func (c *Context) Consts() []*big.Rat { return c.consts }

// Strings returns the accumulated string pool, in first-use order.
func (c *Context) Strings() []string { return c.strings }

// BorrowRegisters, StealRegisters, ReturnRegisters report the register
// assigned to each parameter in declaration order, filled in by InitFunc.
func (c *Context) BorrowRegisters() []int { return c.borrowRegisters }
func (c *Context) StealRegisters() []int  { return c.stealRegisters }
func (c *Context) ReturnRegisters() []int { return c.returnRegisters }

// getFreeRegister pops the most recently freed register, or allocates a
// fresh one (mirrors syntaxchecker.rs's get_free_register LIFO reuse,
// which keeps hot register numbers low and stable across passes).
func (c *Context) getFreeRegister() int {
	if n := len(c.freeRegs); n > 0 {
		r := c.freeRegs[n-1]
		c.freeRegs = c.freeRegs[:n-1]
		return r
	}
	r := c.nextReg
	c.nextReg++
	return r
}

func (c *Context) releaseRegister(r int) {
	c.freeRegs = append(c.freeRegs, r)
}

// AddConst interns value into the constant pool and returns its index.
func (c *Context) AddConst(value *big.Rat) int {
	key := value.RatString()
	if idx, ok := c.constIndex[key]; ok {
		return idx
	}
	idx := len(c.consts)
	c.consts = append(c.consts, value)
	c.constIndex[key] = idx
	return idx
}

// AddString interns value into the string pool and returns its index.
func (c *Context) AddString(value string) int {
	if idx, ok := c.stringIndex[value]; ok {
		return idx
	}
	idx := len(c.strings)
	c.strings = append(c.strings, value)
	c.stringIndex[value] = idx
	return idx
}

// LookupVariable resolves name to its live Reference, or reports
// UnknownName.
func (c *Context) LookupVariable(at pt.Pos, name string) (*st.Reference, error) {
	ref, ok := c.refs[name]
	if !ok {
		return nil, diag.Errorf(at, diag.UnknownName, "unknown name %q", name)
	}
	return ref, nil
}

// CheckSinglyOwned reports NotSinglyOwned unless v has exactly one
// exterior and no interiors (spec.md §3's precondition for full
// consumption: unlet, steal, push).
func (c *Context) CheckSinglyOwned(at pt.Pos, v *st.Variable) error {
	if !v.SinglyOwned() {
		return diag.Errorf(at, diag.NotSinglyOwned, "variable is not singly owned (has %d exterior(s), %d interior(s))", len(v.Exteriors), len(v.Interiors))
	}
	return nil
}

// CheckRefIsResizable reports NotResizable unless ref's variable may be
// grown or shrunk through ref's own name.
func (c *Context) CheckRefIsResizable(at pt.Pos, name string, ref *st.Reference) error {
	if !ref.Var.ResizableUnder(name) {
		return diag.Errorf(at, diag.NotResizable, "%q aliases a variable with another live interior reference and cannot be resized", name)
	}
	return nil
}

// CreateVariable allocates a fresh Variable and a Reference to it named
// name, bound to a newly allocated register, and reports RedeclareName
// if name already denotes a live reference in this scope.
func (c *Context) CreateVariable(at pt.Pos, name string) (*st.Reference, error) {
	if _, exists := c.refs[name]; exists {
		return nil, diag.Errorf(at, diag.RedeclareName, "%q is already bound in this scope", name)
	}
	id := c.nextVarID
	c.nextVarID++
	v := &st.Variable{ID: id, Exteriors: map[string]bool{name: true}, Interiors: map[string]bool{}}
	ref := &st.Reference{IsInterior: false, IsBorrowed: false, Register: c.getFreeRegister(), Var: v}
	c.refs[name] = ref
	return ref, nil
}

// CreateRef introduces name as a new alias of target's variable. If
// interior is true, name is recorded as an interior reference — it may
// read/write elements but not resize unless it is the sole interior.
func (c *Context) CreateRef(at pt.Pos, name string, target *st.Reference, interior, borrowed bool) (*st.Reference, error) {
	if _, exists := c.refs[name]; exists {
		return nil, diag.Errorf(at, diag.RedeclareName, "%q is already bound in this scope", name)
	}
	if interior {
		target.Var.Interiors[name] = true
	} else {
		target.Var.Exteriors[name] = true
	}
	ref := &st.Reference{IsInterior: interior, IsBorrowed: borrowed, Register: c.getFreeRegister(), Var: target.Var}
	c.refs[name] = ref
	return ref, nil
}

// RemoveVariable retires name's reference entirely: it must be the
// variable's last exterior and have no interiors left (checked by the
// caller via CheckSinglyOwned before calling this).
func (c *Context) RemoveVariable(at pt.Pos, name string) (*st.Reference, error) {
	ref, err := c.LookupVariable(at, name)
	if err != nil {
		return nil, err
	}
	delete(ref.Var.Exteriors, name)
	delete(c.refs, name)
	c.releaseRegister(ref.Register)
	return ref, nil
}

// RemoveRef retires name's reference, which must alias the same
// variable as partner (the paired ref/unref's RHS lookup), else reports
// WrongRefPartner. Borrowed references may never be removed this way
// (RemoveBorrowed).
func (c *Context) RemoveRef(at pt.Pos, name string, partner *st.Reference) (*st.Reference, error) {
	ref, err := c.LookupVariable(at, name)
	if err != nil {
		return nil, err
	}
	if ref.IsBorrowed {
		return nil, diag.Errorf(at, diag.RemoveBorrowed, "%q is a borrowed reference and cannot be unreffed", name)
	}
	if ref.Var != partner.Var {
		return nil, diag.Errorf(at, diag.WrongRefPartner, "%q does not alias the same variable supplied at its ref", name)
	}
	if ref.IsInterior {
		delete(ref.Var.Interiors, name)
	} else {
		delete(ref.Var.Exteriors, name)
	}
	delete(c.refs, name)
	c.releaseRegister(ref.Register)
	return ref, nil
}

// InitFunc binds every declared parameter of p to a fresh reference and
// register, in declaration order. Borrow and steal parameters that share
// a link name land on the same Variable: the first occurrence of a link
// seeds it (picking up a "caller anchor" interior if the link isn't one
// of p's own owned links), later occurrences just join its exterior set
// (mirrors syntaxchecker.rs's init_func).
func (c *Context) InitFunc(decl pt.FunctionDecl, p *proto.FunctionPrototype) error {
	c.linked = make(map[string]*st.Variable)
	for _, param := range decl.BorrowParams {
		ref, err := c.createParam(decl.At, p, param, true)
		if err != nil {
			return err
		}
		c.borrowRegisters = append(c.borrowRegisters, ref.Register)
	}
	for _, param := range decl.StealParams {
		ref, err := c.createParam(decl.At, p, param, false)
		if err != nil {
			return err
		}
		c.stealRegisters = append(c.stealRegisters, ref.Register)
	}
	for _, param := range decl.ReturnParams {
		// A return parameter must already be bound here, under the name
		// of a borrow or steal parameter; its register is the one that
		// binding holds on entry, recorded in declaration order. A name
		// first bound inside the body is reported as UnknownName. Its
		// link, if any, is checked against c.linked in EndFunc once the
		// body has run.
		ref, ok := c.refs[param.Name]
		if !ok {
			return diag.Errorf(decl.At, diag.UnknownName, "return parameter %q is not bound", param.Name)
		}
		c.returnRegisters = append(c.returnRegisters, ref.Register)
	}
	return nil
}

// createParam binds one borrow/steal parameter to a fresh register,
// following init_func's three-way split:
//   - a plain (non-ref) parameter always gets its own singly-owned
//     Variable;
//   - a ref parameter naming a link joins that link's Variable in
//     c.linked, creating it on first occurrence (with a "caller
//     anchor" interior if p doesn't itself own that link, since then
//     the link's true owner is the caller);
//   - an unbound ref (no link at all) gets its own Variable anchored
//     by "calling scope", since it aliases a reference the caller
//     still holds.
func (c *Context) createParam(at pt.Pos, p *proto.FunctionPrototype, param pt.FunctionParam, borrowed bool) (*st.Reference, error) {
	if _, exists := c.refs[param.Name]; exists {
		return nil, diag.Errorf(at, diag.RedeclareName, "%q is already bound in this scope", param.Name)
	}
	register := c.getFreeRegister()

	if !param.IsRef {
		ref := &st.Reference{Register: register, IsBorrowed: borrowed, Var: c.newVariable(param.Name)}
		c.refs[param.Name] = ref
		return ref, nil
	}

	if param.Link != "" {
		if v, ok := c.linked[param.Link]; ok {
			v.Exteriors[param.Name] = true
			ref := &st.Reference{Register: register, IsBorrowed: borrowed, Var: v}
			c.refs[param.Name] = ref
			return ref, nil
		}
		v := &st.Variable{ID: c.nextVariableID(), Exteriors: map[string]bool{param.Name: true}, Interiors: map[string]bool{}}
		if _, owned := p.OwnedLinks[param.Link]; !owned {
			v.Interiors[st.CallerAnchor] = true
		}
		c.linked[param.Link] = v
		ref := &st.Reference{Register: register, IsBorrowed: borrowed, Var: v}
		c.refs[param.Name] = ref
		return ref, nil
	}

	v := c.newVariable(param.Name)
	v.Interiors[st.CallingScope] = true
	ref := &st.Reference{Register: register, IsBorrowed: borrowed, Var: v}
	c.refs[param.Name] = ref
	return ref, nil
}

// newVariable allocates a fresh Variable whose sole exterior is name.
func (c *Context) newVariable(name string) *st.Variable {
	return &st.Variable{ID: c.nextVariableID(), Exteriors: map[string]bool{name: true}, Interiors: map[string]bool{}}
}

func (c *Context) nextVariableID() int {
	id := c.nextVarID
	c.nextVarID++
	return id
}

// ReleaseForVar retires an implicit for-loop iteration reference, which
// is always borrowed and interior and whose lifetime is scoped to the
// loop body rather than to an explicit unref statement.
func (c *Context) ReleaseForVar(name string) {
	ref, ok := c.refs[name]
	if !ok {
		return
	}
	if ref.IsInterior {
		delete(ref.Var.Interiors, name)
	} else {
		delete(ref.Var.Exteriors, name)
	}
	delete(c.refs, name)
	c.releaseRegister(ref.Register)
}

// LookupFunction resolves name to its prototype, or reports
// UnknownFunction.
func (c *Context) LookupFunction(at pt.Pos, name string) (*proto.FunctionPrototype, error) {
	p, ok := c.Protos[name]
	if !ok {
		return nil, diag.Errorf(at, diag.UnknownFunction, "unknown function %q", name)
	}
	return p, nil
}

// EndFunc validates that every return parameter is still bound at
// function exit and, for one carrying a link that was also seen on an
// input parameter, still aliases that same Variable rather than some
// unrelated one swapped in under the same link name (mirrors
// syntaxchecker.rs's end_func). A full link-closure check (that every
// owned link's exterior anchor is still reachable) is left to the
// caller's lowering pass, which has the statement-level used_vars/
// used_links bookkeeping needed to do it precisely (spec.md §9).
func (c *Context) EndFunc(decl pt.FunctionDecl) error {
	for _, param := range decl.ReturnParams {
		ref, ok := c.refs[param.Name]
		if !ok {
			return diag.Errorf(decl.At, diag.UnknownName, "return parameter %q is not bound at function exit", param.Name)
		}
		if param.Link == "" {
			continue
		}
		if linkedVar, ok := c.linked[param.Link]; ok && linkedVar != ref.Var {
			return diag.Errorf(decl.At, diag.LinkMismatch, "return parameter %q does not alias the variable linked to %q on entry", param.Name, param.Link)
		}
	}
	return nil
}
