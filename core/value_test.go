package plic

import (
	"reflect"
	"testing"
)

func TestValueRendering(t *testing.T) {
	for _, tc := range []struct {
		val      Value
		expected string
	}{
		{IntegerVal(33), "33"},
		{OperationVal(OpPlus), "<operation>"},
		{OperationVal(OpMinus), "<operation>"},
		{SymbolVal("foo"), "'foo"},
		{LambdaVal("x", "( + x 1 ) "), "x => ( + x 1 ) "},
		{KeywordVal(), "λ"},
		{PairVal(1, 2), "<pair 1 2>"},
	} {
		if got := tc.val.String(); got != tc.expected {
			t.Errorf("%s: expected %q, got %q", tc.val.KindName(), tc.expected, got)
		}
	}
}

func TestValuesEqual(t *testing.T) {
	if !ValuesEqual(LambdaVal("x", "x "), LambdaVal("x", "x ")) {
		t.Fatal("equal lambdas should compare equal")
	}
	if ValuesEqual(LambdaVal("x", "x "), LambdaVal("y", "x ")) {
		t.Fatal("different params should differ")
	}
	if ValuesEqual(IntegerVal(1), SymbolVal("1")) {
		t.Fatal("different kinds should differ")
	}
	if ValuesEqual(OperationVal(OpPlus), OperationVal(OpMinus)) {
		t.Fatal("different operations should differ")
	}
}

func TestValueToGo(t *testing.T) {
	got, err := ValueToGo(IntegerVal(7))
	if err != nil || got != uint64(7) {
		t.Fatalf("got %v, %v", got, err)
	}
	got, err = ValueToGo(LambdaVal("n", "n "))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, map[string]any{"param": "n", "body": "n "}) {
		t.Fatalf("got %v", got)
	}
	got, err = ValueToGo(OperationVal(OpMinus))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, map[string]any{"operation": "minus"}) {
		t.Fatalf("got %v", got)
	}
	if _, err := ValueToGo(PairVal(0, 0)); err == nil {
		t.Fatal("expected error serializing Pair")
	}
}
