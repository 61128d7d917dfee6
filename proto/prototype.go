// Package proto builds function prototypes from a pt.Module: the link
// groups and borrow/steal/return parameter roles a call site needs to
// check against, before any statement is lowered (spec.md §4.1).
package proto

import (
	"janus/diag"
	"janus/pt"
)

// ParamLink records one parameter's role and the link annotation it
// carries ("" for none).
type ParamLink struct {
	Name       string
	IsRef      bool
	IsBorrowed bool // true for borrow params, false for steal/return
	Link       string
	IsInterior bool
}

// LinkGroup collects every borrow/steal/return parameter that shares an
// owned link name, plus the caller-visible anchor indices a call site
// must supply matching arguments for (spec.md §3 "Link group").
type LinkGroup struct {
	Name           string
	BorrowIndices  []int
	StealIndices   []int
	ReturnIndices  []int
	HasExterior    bool // at least one non-interior borrow entry
}

// FunctionPrototype is everything a caller needs to validate and lower
// a call to Name, without consulting the callee's body.
type FunctionPrototype struct {
	Name          string
	OwnedLinks    map[string]*LinkGroup
	BorrowParams  []ParamLink
	StealParams   []ParamLink
	ReturnParams  []ParamLink
}

// isInteriorLink reports whether link is the synthetic name reserved
// for a parameter aliasing into the interior of another, rather than a
// user-declared owned link (mirrors syntaxchecker.rs's is_interior_link).
func isInteriorLink(link string) bool {
	return link == ""
}

// unlinkedAnchorPrefix is the prefix exteriorLinkName uses to name a
// private per-parameter link for a borrow/return parameter that carries
// no link annotation (mirrors syntaxchecker.rs's exterior_link_name).
// Build does not call exteriorLinkName: a parameter without a link
// annotation joins no link group.
const unlinkedAnchorPrefix = ".anchor."

// exteriorLinkName returns the link group a borrow/return parameter's
// anchor contributes to the caller's own link graph under.
func exteriorLinkName(p pt.FunctionParam) string {
	if p.Link != "" {
		return p.Link
	}
	return unlinkedAnchorPrefix + p.Name
}

// Build produces a name-to-prototype mapping for every function
// declared in module, including the synthesized global function.
//
// Fails with DuplicateFunction on a name collision, DuplicateParam on a
// name repeated across one function's borrow and steal parameters or
// within its return parameters (a return parameter may reuse the name
// of a borrow or steal parameter), DuplicateLink when two
// owned links share a name, and GroupWithoutExterior when an owned
// link group contains no non-interior borrow entry (spec.md §4.1: every
// owned link group must have an exterior anchor, or nothing outside
// the callee can observe size changes made through it).
func Build(module pt.Module) (map[string]*FunctionPrototype, error) {
	protos := make(map[string]*FunctionPrototype)

	decls := make([]pt.FunctionDecl, 0, len(module.Functions)+1)
	decls = append(decls, module.GlobalFunc)
	decls = append(decls, module.Functions...)

	for _, decl := range decls {
		if _, exists := protos[decl.Name]; exists {
			return nil, diag.Errorf(decl.At, diag.DuplicateFunction, "function %q declared more than once", decl.Name)
		}
		p, err := fromDecl(decl)
		if err != nil {
			return nil, err
		}
		protos[decl.Name] = p
	}
	return protos, nil
}

func fromDecl(decl pt.FunctionDecl) (*FunctionPrototype, error) {
	p := &FunctionPrototype{
		Name:       decl.Name,
		OwnedLinks: make(map[string]*LinkGroup, len(decl.OwnedLinks)),
	}
	for _, name := range decl.OwnedLinks {
		if _, exists := p.OwnedLinks[name]; exists {
			return nil, diag.Errorf(decl.At, diag.DuplicateLink, "link %q declared more than once on function %q", name, decl.Name)
		}
		p.OwnedLinks[name] = &LinkGroup{Name: name}
	}

	seen := make(map[string]bool)
	checkDup := func(name string) error {
		if seen[name] {
			return diag.Errorf(decl.At, diag.DuplicateParam, "parameter %q declared more than once on function %q", name, decl.Name)
		}
		seen[name] = true
		return nil
	}

	for i, param := range decl.BorrowParams {
		if err := checkDup(param.Name); err != nil {
			return nil, err
		}
		link := ParamLink{Name: param.Name, IsRef: param.IsRef, IsBorrowed: true, Link: param.Link, IsInterior: isInteriorLink(param.Link)}
		p.BorrowParams = append(p.BorrowParams, link)
		if group, ok := p.OwnedLinks[param.Link]; ok {
			group.BorrowIndices = append(group.BorrowIndices, i)
			if !link.IsInterior {
				group.HasExterior = true
			}
		}
	}
	for i, param := range decl.StealParams {
		if err := checkDup(param.Name); err != nil {
			return nil, err
		}
		link := ParamLink{Name: param.Name, IsRef: param.IsRef, IsBorrowed: false, Link: param.Link, IsInterior: isInteriorLink(param.Link)}
		p.StealParams = append(p.StealParams, link)
		if group, ok := p.OwnedLinks[param.Link]; ok {
			group.StealIndices = append(group.StealIndices, i)
		}
	}
	seenReturn := make(map[string]bool)
	for i, param := range decl.ReturnParams {
		if seenReturn[param.Name] {
			return nil, diag.Errorf(decl.At, diag.DuplicateParam, "return parameter %q declared more than once on function %q", param.Name, decl.Name)
		}
		seenReturn[param.Name] = true
		link := ParamLink{Name: param.Name, IsRef: param.IsRef, IsBorrowed: false, Link: param.Link, IsInterior: isInteriorLink(param.Link)}
		p.ReturnParams = append(p.ReturnParams, link)
		if group, ok := p.OwnedLinks[param.Link]; ok {
			group.ReturnIndices = append(group.ReturnIndices, i)
		}
	}

	for _, group := range p.OwnedLinks {
		if !group.HasExterior {
			return nil, diag.Errorf(decl.At, diag.GroupWithoutExterior, "link group %q on function %q has no exterior (non-interior borrow) anchor", group.Name, decl.Name)
		}
	}

	return p, nil
}
