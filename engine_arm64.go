package leopard16

//go:noescape
func mulgf16NEON(x, y []byte, lut *[8 * 16]byte)

//go:noescape
func mulAddNEON(x, y []byte, lut *[8 * 16]byte)

// newNeonEngine 构造 NEON 引擎。
// AArch64 基线即包含 ASIMD,不需要运行时探测。
func newNeonEngine() *engine {
	return &engine{
		kind: EngineNeon,
		mul: func(x, y []byte, logM ffe) {
			mulgf16NEON(x, y, &multiply256LUT[logM])
		},
		mulAdd: func(x, y []byte, logM ffe) {
			mulAddNEON(x, y, &multiply256LUT[logM])
		},
		xor: simdXor,
	}
}

// newSsse3Engine 在 AArch64 上不可用。
func newSsse3Engine() *engine {
	return nil
}

// newAvx2Engine 在 AArch64 上不可用。
func newAvx2Engine() *engine {
	return nil
}
