package types

import "testing"

func intClass() *Class  { return &Class{Name: "int", Flags: ClassFlags{Builtin: true}} }
func strClass() *Class  { return &Class{Name: "str", Flags: ClassFlags{Builtin: true}} }
func boolClass() *Class { return &Class{Name: "bool", Bases: []*Class{intClass()}, Flags: ClassFlags{Builtin: true}} }

func TestCombineCollapsesSingleton(t *testing.T) {
	got := Combine(Object{Class: intClass()})
	if got.String() != "int" {
		t.Errorf("Combine single type = %s, want int", got.String())
	}
}

func TestCombineDeduplicatesAndSorts(t *testing.T) {
	got := Combine(Object{Class: strClass()}, Object{Class: intClass()}, Object{Class: intClass()})
	if got.String() != "int | str" {
		t.Errorf("Combine = %s, want 'int | str'", got.String())
	}
}

func TestCombineNeverIsIdentity(t *testing.T) {
	got := Combine(Never{}, Object{Class: intClass()})
	if got.String() != "int" {
		t.Errorf("Combine with Never = %s, want int", got.String())
	}
	if got := Combine(Never{}, Never{}); got.String() != "Never" {
		t.Errorf("Combine(Never, Never) = %s, want Never", got.String())
	}
}

func TestObjectAndClassAreNeverEqual(t *testing.T) {
	c := intClass()
	if IsTypeSame(Object{Class: c}, c) {
		t.Errorf("Object(C) must never equal C")
	}
}

func TestCanAssignReflexivity(t *testing.T) {
	i := Object{Class: intClass()}
	if !CanAssign(i, i, nil, nil) {
		t.Errorf("CanAssign(T, T) must hold")
	}
}

func TestCanAssignBoolToInt(t *testing.T) {
	if !CanAssign(Object{Class: intClass()}, Object{Class: boolClass()}, nil, nil) {
		t.Errorf("bool should be assignable to int (bool derives from int)")
	}
	if CanAssign(Object{Class: boolClass()}, Object{Class: intClass()}, nil, nil) {
		t.Errorf("int should not be assignable to bool")
	}
}

func TestCanAssignAnyUnknownBidirectional(t *testing.T) {
	i := Object{Class: intClass()}
	if !CanAssign(i, Any{}, nil, nil) || !CanAssign(Any{}, i, nil, nil) {
		t.Errorf("Any must be bidirectionally assignable")
	}
	if !CanAssign(i, Unknown{}, nil, nil) || !CanAssign(Unknown{}, i, nil, nil) {
		t.Errorf("Unknown must be bidirectionally assignable")
	}
}

func TestCanAssignNeverToEverything(t *testing.T) {
	if !CanAssign(Object{Class: intClass()}, Never{}, nil, nil) {
		t.Errorf("Never must be assignable to everything")
	}
}

func TestCanAssignNoneOnlyToNoneOrOptional(t *testing.T) {
	i := Object{Class: intClass()}
	if CanAssign(i, None{}, nil, nil) {
		t.Errorf("None should not be assignable to a concrete class")
	}
	optional := Combine(i, None{})
	if !CanAssign(optional, None{}, nil, nil) {
		t.Errorf("None should be assignable to an Optional union containing it")
	}
}

func TestCanAssignTransitivityExcludingAnyUnknown(t *testing.T) {
	base := &Class{Name: "Base"}
	mid := &Class{Name: "Mid", Bases: []*Class{base}}
	leaf := &Class{Name: "Leaf", Bases: []*Class{mid}}

	a, b, c := Object{Class: base}, Object{Class: mid}, Object{Class: leaf}
	if !CanAssign(a, b, nil, nil) {
		t.Fatalf("expected Mid assignable to Base")
	}
	if !CanAssign(b, c, nil, nil) {
		t.Fatalf("expected Leaf assignable to Mid")
	}
	if !CanAssign(a, c, nil, nil) {
		t.Errorf("CanAssign should be transitive: Leaf assignable to Base")
	}
}

func TestFunctionAssignabilityContravariantParamsCovariantReturn(t *testing.T) {
	base := &Class{Name: "Base"}
	leaf := &Class{Name: "Leaf", Bases: []*Class{base}}

	// dest wants (Base) -> Leaf; src provides (Leaf) -> Base — and that
	// is NOT assignable because the source requires a narrower param.
	dest := &Function{Params: []Param{{Name: "x", Type: Object{Class: base}}}, DeclaredReturn: Object{Class: leaf}}
	src := &Function{Params: []Param{{Name: "x", Type: Object{Class: leaf}}}, DeclaredReturn: Object{Class: base}}
	if CanAssign(dest, src, nil, nil) {
		t.Errorf("function requiring a narrower param should not be assignable to a wider-param destination")
	}

	// The reverse direction is fine: src accepts anything dest accepts
	// (contravariant param) and returns something narrower (covariant).
	if !CanAssign(src, dest, nil, nil) {
		t.Errorf("expected contravariant/covariant function assignability to hold")
	}
}

func TestDerivesFromClassRecursive(t *testing.T) {
	base := &Class{Name: "Base"}
	mid := &Class{Name: "Mid", Bases: []*Class{base}}
	if !DerivesFromClassRecursive(mid, base) {
		t.Errorf("Mid should derive from Base transitively")
	}
	if DerivesFromClassRecursive(base, mid) {
		t.Errorf("Base should not derive from Mid")
	}
}

func TestContainsUnknown(t *testing.T) {
	fn := &Function{Params: []Param{{Name: "x", Type: Unknown{}}}, DeclaredReturn: Object{Class: intClass()}}
	if !ContainsUnknown(fn) {
		t.Errorf("expected ContainsUnknown to find the unknown parameter")
	}
	if ContainsUnknown(Object{Class: intClass()}) {
		t.Errorf("concrete object type should not contain Unknown")
	}
}

func TestSpecializeIdempotentOnConcreteType(t *testing.T) {
	c := intClass()
	once := Specialize(c, nil)
	twice := Specialize(once, nil)
	if once.String() != twice.String() {
		t.Errorf("Specialize should be idempotent on a fully concrete type")
	}
}
