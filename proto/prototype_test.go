package proto

import (
	"testing"

	"janus/diag"
	"janus/pt"
)

func decl(name string, owned []string, borrow, steal, ret []pt.FunctionParam) pt.FunctionDecl {
	return pt.FunctionDecl{Name: name, OwnedLinks: owned, BorrowParams: borrow, StealParams: steal, ReturnParams: ret}
}

func TestBuildSimpleFunction(t *testing.T) {
	m := pt.Module{
		GlobalFunc: decl("$global", nil, nil, nil, nil),
		Functions: []pt.FunctionDecl{
			decl("f", nil, []pt.FunctionParam{{Name: "x"}}, nil, []pt.FunctionParam{{Name: "x"}}),
		},
	}
	protos, err := Build(m)
	if err != nil {
		t.Fatal(err)
	}
	f, ok := protos["f"]
	if !ok {
		t.Fatal("expected a prototype for f")
	}
	if len(f.BorrowParams) != 1 || f.BorrowParams[0].Name != "x" {
		t.Errorf("unexpected borrow params: %+v", f.BorrowParams)
	}
}

func TestBuildDuplicateFunction(t *testing.T) {
	m := pt.Module{
		GlobalFunc: decl("$global", nil, nil, nil, nil),
		Functions: []pt.FunctionDecl{
			decl("f", nil, nil, nil, nil),
			decl("f", nil, nil, nil, nil),
		},
	}
	_, err := Build(m)
	if !diag.As(err, diag.DuplicateFunction) {
		t.Fatalf("expected DuplicateFunction, got %v", err)
	}
}

func TestBuildDuplicateParam(t *testing.T) {
	m := pt.Module{
		GlobalFunc: decl("$global", nil, nil, nil, nil),
		Functions: []pt.FunctionDecl{
			decl("f", nil, []pt.FunctionParam{{Name: "x"}, {Name: "x"}}, nil, nil),
		},
	}
	_, err := Build(m)
	if !diag.As(err, diag.DuplicateParam) {
		t.Fatalf("expected DuplicateParam, got %v", err)
	}
}

func TestBuildDuplicateLink(t *testing.T) {
	m := pt.Module{
		GlobalFunc: decl("$global", nil, nil, nil, nil),
		Functions: []pt.FunctionDecl{
			decl("f", []string{"g", "g"}, nil, nil, nil),
		},
	}
	_, err := Build(m)
	if !diag.As(err, diag.DuplicateLink) {
		t.Fatalf("expected DuplicateLink, got %v", err)
	}
}

func TestBuildLinkGroupWithoutExterior(t *testing.T) {
	// Declares the owned link "g" but never points a borrow/return
	// parameter at it, so the group collects no exterior anchor.
	m := pt.Module{
		GlobalFunc: decl("$global", nil, nil, nil, nil),
		Functions: []pt.FunctionDecl{
			decl("f", []string{"g"}, []pt.FunctionParam{{Name: "x"}}, nil, nil),
		},
	}
	_, err := Build(m)
	if !diag.As(err, diag.GroupWithoutExterior) {
		t.Fatalf("expected GroupWithoutExterior (unreferenced link group), got %v", err)
	}
}

func TestBuildLinkGroupWithExteriorAnchorPasses(t *testing.T) {
	m := pt.Module{
		GlobalFunc: decl("$global", nil, nil, nil, nil),
		Functions: []pt.FunctionDecl{
			decl("f", []string{"g"},
				[]pt.FunctionParam{{Name: "arr", Link: "g"}},
				nil,
				[]pt.FunctionParam{{Name: "arr", Link: "g"}},
			),
		},
	}
	protos, err := Build(m)
	if err != nil {
		t.Fatal(err)
	}
	group := protos["f"].OwnedLinks["g"]
	if group == nil || !group.HasExterior {
		t.Fatalf("expected link group g to have an exterior anchor: %+v", group)
	}
}
