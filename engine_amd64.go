package leopard16

import (
	"github.com/klauspost/cpuid/v2"
)

//go:noescape
func mulgf16SSSE3(x, y []byte, lut *[8 * 16]byte)

//go:noescape
func mulAddSSSE3(x, y []byte, lut *[8 * 16]byte)

//go:noescape
func mulgf16AVX2(x, y []byte, lut *[8 * 16]byte)

//go:noescape
func mulAddAVX2(x, y []byte, lut *[8 * 16]byte)

// newSsse3Engine 构造 SSSE3 引擎,CPU 不支持时返回 nil。
func newSsse3Engine() *engine {
	if !cpuid.CPU.Has(cpuid.SSSE3) {
		return nil
	}
	return &engine{
		kind: EngineSsse3,
		mul: func(x, y []byte, logM ffe) {
			mulgf16SSSE3(x, y, &multiply256LUT[logM])
		},
		mulAdd: func(x, y []byte, logM ffe) {
			mulAddSSSE3(x, y, &multiply256LUT[logM])
		},
		xor: simdXor,
	}
}

// newAvx2Engine 构造 AVX2 引擎,CPU 不支持时返回 nil。
func newAvx2Engine() *engine {
	if !cpuid.CPU.Has(cpuid.AVX2) {
		return nil
	}
	return &engine{
		kind: EngineAvx2,
		mul: func(x, y []byte, logM ffe) {
			mulgf16AVX2(x, y, &multiply256LUT[logM])
		},
		mulAdd: func(x, y []byte, logM ffe) {
			mulAddAVX2(x, y, &multiply256LUT[logM])
		},
		xor: simdXor,
	}
}

// newNeonEngine 在 x86 上不可用。
func newNeonEngine() *engine {
	return nil
}
