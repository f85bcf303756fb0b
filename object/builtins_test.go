package object

import "testing"

func TestRemoveDeletesAHashEntry(t *testing.T) {
	key := &String{Value: "a"}
	h := NewHash().Set(key.HashKey(), HashPair{Key: key, Value: &Integer{Value: 1}})

	idx, entry := GetBuiltinByName("remove")
	if entry == nil {
		t.Fatalf("expected a registered `remove` built-in, got none (index=%d)", idx)
	}

	result := entry.Builtin.Fn(h, &String{Value: "a"})
	out, ok := result.(*Hash)
	if !ok {
		t.Fatalf("expected remove to return a *Hash, got %T", result)
	}
	if out.Len() != 0 {
		t.Errorf("expected the entry to be gone, got Len()=%d", out.Len())
	}
	if h.Len() != 1 {
		t.Errorf("expected the original hash to be untouched, got Len()=%d", h.Len())
	}
}

func TestGetBuiltinByNameReturnsMinusOneForUnknownNames(t *testing.T) {
	idx, entry := GetBuiltinByName("this_builtin_does_not_exist")
	if idx != -1 || entry != nil {
		t.Errorf("expected (-1, nil) for an unknown name, got (%d, %+v)", idx, entry)
	}
}

func TestFormatBuiltinSignatureHintNamesTheBuiltin(t *testing.T) {
	hint := FormatBuiltinSignatureHint("len")
	if hint == "" {
		t.Fatal("expected a non-empty hint")
	}
}
