package codegen

import "testing"

func TestOpRenderings(t *testing.T) {
	d8 := NewFix("d", 8)
	a8 := NewFix("a", 8)
	b8 := NewFix("b", 8)
	d1 := NewFix("f", 1)
	d16 := NewFix("w", 16)

	cases := []struct {
		name string
		op   Op
		want string
	}{
		{"add", AddOp(d8, a8, b8), "%C__d = add i8 %C__a, %C__b"},
		{"sub", SubOp(d8, a8, b8), "%C__d = sub i8 %C__a, %C__b"},
		{"mul", MulOp(d8, a8, b8), "%C__d = mul i8 %C__a, %C__b"},
		{"and", AndOp(d8, a8, b8), "%C__d = and i8 %C__a, %C__b"},
		{"or", OrOp(d8, a8, b8), "%C__d = or i8 %C__a, %C__b"},
		{"xor", XorOp(d8, a8, b8), "%C__d = xor i8 %C__a, %C__b"},
		{"not", NotOp(d8, a8), "%C__d = xor i8 %C__a, -1"},
		{"mov", MovOp(d8, a8), "%C__d = add i8 %C__a, 0"},
		{"mov literal", MovOp(d8, NewFix("5", 8)), "%C__d = add i8 5, 0"},
		{"unsafemov", UnsafeMovOp(d1, NewPrim(Bool, "rst")), "%C__f = add i1 %rst, 0"},
		{"shl", ShlOp(d8, a8, ConstInt(32, 3)), "%C__d = shl i8 %C__a, 3"},
		{"lshr", LshrOp(d8, a8, ConstInt(32, 3)), "%C__d = lshr i8 %C__a, 3"},
		{"icmp eq", CmpEqOp(d1, a8, b8), "%C__f = icmp eq i8 %C__a, %C__b"},
		{"icmp ne", CmpNeqOp(d1, a8, b8), "%C__f = icmp ne i8 %C__a, %C__b"},
		{"icmp ult", CmpLtOp(d1, a8, b8), "%C__f = icmp ult i8 %C__a, %C__b"},
		{"icmp uge", CmpGteOp(d1, a8, b8), "%C__f = icmp uge i8 %C__a, %C__b"},
		{"select", MuxOp(d8, d1, a8, b8), "%C__d = select i1 %C__f, i8 %C__a, i8 %C__b"},
		{"zext", ZextOp(d16, a8), "%C__w = zext i8 %C__a to i16"},
		{"zext same width", ZextOp(d8, a8), "%C__d = add i8 %C__a, 0"},
		{"zext_or_trunc up", ZextTruncOp(d16, a8), "%C__w = zext i8 %C__a to i16"},
		{"zext_or_trunc down", ZextTruncOp(d8, d16), "%C__d = trunc i16 %C__w to i8"},
		{"zext_or_trunc same", ZextTruncOp(d8, a8), "%C__d = add i8 %C__a, 0"},
		{"alloca", AllocaOp(NewPtr("i64", "p"), ConstInt(32, 2)), "%p = alloca i64, i32 2"},
		{"load", LoadOp(NewPrim(I64, "v"), NewPtr("i64", "p")), "%v = load i64, i64* %p"},
		{"store", StoreOp(NewPtr("i64", "p"), NewPrim(I64, "v")), "store i64 %v, i64* %p"},
		{"gep", IndexOp(NewPtr("i64", "q"), NewPtr("i64", "p"), ConstInt(32, 1)), "%q = getelementptr i64, i64* %p, i32 1"},
		{
			"call",
			CallOp(
				NewFunction(NewPrim(Void, ""), "_llvmflo_x_get", NewPtr("void", ""), NewPtr("i64", "")),
				NewPtr("void", "dut"), NewPtr("i64", "p"),
			),
			"call void @_llvmflo_x_get(i8* %dut, i64* %p)",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.op.Text(); got != tc.want {
				t.Errorf("got  %q\nwant %q", got, tc.want)
			}
		})
	}
}
