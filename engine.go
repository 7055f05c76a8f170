package leopard16

// 引擎层:六个热点内核 (mul, xorWithin, 正/逆蝶形, 截断 FFT/IFFT)
// 的统一抽象。具体变体只需提供 {mul, mulAdd, xor} 三个缓冲区内核,
// 蝶形与变换的走层逻辑对所有变体共享,保证各变体输出逐位一致。
//
// 缓冲区以 64 字节为一个块:前 32 字节是 32 个元素的低字节,
// 后 32 字节是对应的高字节。拆分布局让 4 位查表内核可以整块处理。

import (
	"encoding/binary"

	"github.com/templexxx/xorsimd"
)

// EngineKind 标识一种内核实现。
type EngineKind uint8

const (
	// EngineAuto 在构造时按 CPU 能力自动选择最快的可用引擎。
	EngineAuto EngineKind = iota
	// EngineNaive 逐元素查对数表,作为其余变体的对照基准。
	EngineNaive
	// EngineNoSimd 使用与 SIMD 相同的 4 位拆分表数据流,但纯标量执行。
	EngineNoSimd
	// EngineSsse3 使用 128 位字节重排指令 (x86)。
	EngineSsse3
	// EngineAvx2 使用 256 位字节重排指令 (x86)。
	EngineAvx2
	// EngineNeon 使用 128 位字节重排指令 (AArch64)。
	EngineNeon
)

// String 返回引擎变体的名称
func (k EngineKind) String() string {
	switch k {
	case EngineAuto:
		return "auto"
	case EngineNaive:
		return "naive"
	case EngineNoSimd:
		return "nosimd"
	case EngineSsse3:
		return "ssse3"
	case EngineAvx2:
		return "avx2"
	case EngineNeon:
		return "neon"
	}
	return "unknown"
}

// engine 把内核汇聚成一张函数表。
// 构造时解析一次,热循环内不再经过接口调度。
type engine struct {
	kind EngineKind

	// mul 计算 x[] = y[] * m,x 与 y 可以是同一缓冲区。
	mul func(x, y []byte, logM ffe)
	// mulAdd 计算 x[] ^= y[] * m。
	mulAdd func(x, y []byte, logM ffe)
	// xor 计算 x[] ^= y[]。
	xor func(x, y []byte)
}

// newEngine 构造指定变体的引擎。
// 内核查找表在此处完成初始化;请求的变体在当前 CPU 上不可用时
// 返回 ErrEngineUnsupported。
//
// 参数:
// - kind: 引擎变体,EngineAuto 表示自动选择
// 返回:
// - *engine: 就绪的引擎
// - error: 变体不可用时返回错误
func newEngine(kind EngineKind) (*engine, error) {
	initConstants()

	switch kind {
	case EngineAuto:
		return autoEngine(), nil
	case EngineNaive:
		return newNaiveEngine(), nil
	case EngineNoSimd:
		return newNoSimdEngine(), nil
	case EngineSsse3:
		if e := newSsse3Engine(); e != nil {
			return e, nil
		}
	case EngineAvx2:
		if e := newAvx2Engine(); e != nil {
			return e, nil
		}
	case EngineNeon:
		if e := newNeonEngine(); e != nil {
			return e, nil
		}
	}
	return nil, ErrEngineUnsupported
}

// autoEngine 返回当前 CPU 上最快的引擎。
// x86(-64) 上优先级为 Avx2 > Ssse3 > NoSimd;
// AArch64 上为 Neon > NoSimd;其余架构使用 NoSimd。
func autoEngine() *engine {
	if e := newAvx2Engine(); e != nil {
		return e
	}
	if e := newSsse3Engine(); e != nil {
		return e
	}
	if e := newNeonEngine(); e != nil {
		return e
	}
	return newNoSimdEngine()
}

// newNaiveEngine 构造逐元素查表的参考引擎。
func newNaiveEngine() *engine {
	return &engine{
		kind:   EngineNaive,
		mul:    naiveMul,
		mulAdd: naiveMulAdd,
		xor:    naiveXor,
	}
}

// newNoSimdEngine 构造 4 位拆分表的标量引擎。
// 数据流与 SIMD 内核一致,没有向量硬件也能复现同样的查表路径。
func newNoSimdEngine() *engine {
	return &engine{
		kind:   EngineNoSimd,
		mul:    refMul,
		mulAdd: refMulAdd,
		xor:    refXor,
	}
}

// ---------------------------------------------------------------------
// Naive 内核

// naiveMul 计算 x[] = y[] * m,逐元素经 logLUT/expLUT。
func naiveMul(x, y []byte, logM ffe) {
	for off := 0; off < len(x); off += 64 {
		for i := off; i < off+32; i++ {
			v := ffe(y[i]) | ffe(y[i+32])<<8
			var prod ffe
			if v != 0 {
				prod = expLUT[addMod(logLUT[v], logM)]
			}
			x[i] = byte(prod)
			x[i+32] = byte(prod >> 8)
		}
	}
}

// naiveMulAdd 计算 x[] ^= y[] * m。
func naiveMulAdd(x, y []byte, logM ffe) {
	for off := 0; off < len(x); off += 64 {
		for i := off; i < off+32; i++ {
			v := ffe(y[i]) | ffe(y[i+32])<<8
			if v == 0 {
				continue
			}
			prod := expLUT[addMod(logLUT[v], logM)]
			x[i] ^= byte(prod)
			x[i+32] ^= byte(prod >> 8)
		}
	}
}

// naiveXor 逐字节异或。
func naiveXor(x, y []byte) {
	y = y[:len(x)]
	for i := range x {
		x[i] ^= y[i]
	}
}

// ---------------------------------------------------------------------
// NoSimd 内核

// refMul 计算 x[] = y[] * m,按 64 字节块经 mul16LUT 查表。
func refMul(x, y []byte, logM ffe) {
	lut := &mul16LUTs[logM]

	for off := 0; off < len(x); off += 64 {
		loA := y[off : off+32]
		hiA := y[off+32:]
		hiA = hiA[:len(loA)]
		for i, lo := range loA {
			hi := hiA[i]
			prod := lut.Lo[lo] ^ lut.Hi[hi]

			x[off+i] = byte(prod)
			x[off+i+32] = byte(prod >> 8)
		}
	}
}

// refMulAdd 计算 x[] ^= y[] * m。
func refMulAdd(x, y []byte, logM ffe) {
	lut := &mul16LUTs[logM]

	for len(x) >= 64 {
		// 先断言切片长度,循环内不再做边界检查
		loA := y[:32]
		hiA := y[32:64]
		dst := x[:64]
		for i, lo := range loA {
			hi := hiA[i]
			prod := lut.Lo[lo] ^ lut.Hi[hi]

			dst[i] ^= byte(prod)
			dst[i+32] ^= byte(prod >> 8)
		}
		x = x[64:]
		y = y[64:]
	}
}

// refXor 按 8 字节字长异或。缓冲区长度总是 64 的倍数。
func refXor(x, y []byte) {
	y = y[:len(x)]
	for i := 0; i+8 <= len(x); i += 8 {
		v := binary.LittleEndian.Uint64(x[i:]) ^ binary.LittleEndian.Uint64(y[i:])
		binary.LittleEndian.PutUint64(x[i:], v)
	}
}

// simdXor 是 SIMD 引擎共用的向量化异或。
func simdXor(x, y []byte) {
	xorsimd.Bytes(x, x, y)
}

// ---------------------------------------------------------------------
// 蝶形

// fftButterfly 对一对缓冲区执行正向蝶形:
// x[] ^= y[] * m,然后 y[] ^= x[]。
// logM 为 modulus 时乘数为零次项,退化为单次异或。
func (e *engine) fftButterfly(x, y []byte, logM ffe) {
	if logM != modulus {
		e.mulAdd(x, y, logM)
	}
	e.xor(y, x)
}

// ifftButterfly 对一对缓冲区执行逆向蝶形:
// y[] ^= x[],然后 x[] ^= y[] * m。
func (e *engine) ifftButterfly(x, y []byte, logM ffe) {
	e.xor(y, x)
	if logM != modulus {
		e.mulAdd(x, y, logM)
	}
}

// fftDIT4 是正向 4 路蝶形,一次跨两层。
func (e *engine) fftDIT4(work [][]byte, pos, dist int, logM01, logM23, logM02 ffe) {
	// 第一层:
	e.fftButterfly(work[pos], work[pos+dist*2], logM02)
	e.fftButterfly(work[pos+dist], work[pos+dist*3], logM02)

	// 第二层:
	e.fftButterfly(work[pos], work[pos+dist], logM01)
	e.fftButterfly(work[pos+dist*2], work[pos+dist*3], logM23)
}

// ifftDIT4 是逆向 4 路蝶形。
func (e *engine) ifftDIT4(work [][]byte, pos, dist int, logM01, logM23, logM02 ffe) {
	// 第一层:
	e.ifftButterfly(work[pos], work[pos+dist], logM01)
	e.ifftButterfly(work[pos+dist*2], work[pos+dist*3], logM23)

	// 第二层:
	e.ifftButterfly(work[pos], work[pos+dist*2], logM02)
	e.ifftButterfly(work[pos+dist], work[pos+dist*3], logM02)
}

// ---------------------------------------------------------------------
// 截断变换

// fft 对 work 的前 size 个分片做就地截断加法 FFT。
// truncatedSize 之后的输出不需要,对应的蝶形整块跳过;
// skewDelta 决定本次变换使用的扭转因子区间。
func (e *engine) fft(work [][]byte, size, truncatedSize, skewDelta int) {
	// 时域抽取:一次展开两层
	dist4 := size
	dist := size >> 2
	for dist != 0 {
		// 对每组 dist*4 个元素:
		for r := 0; r < truncatedSize; r += dist4 {
			base := r + dist + skewDelta - 1
			logM01 := fftSkew[base]
			logM02 := fftSkew[base+dist]
			logM23 := fftSkew[base+dist*2]

			// 对每组 dist 个元素:
			for i := r; i < r+dist; i++ {
				e.fftDIT4(work, i, dist, logM01, logM23, logM02)
			}
		}
		dist4 = dist
		dist >>= 2
	}

	// 剩余的单层:
	if dist4 == 2 {
		for r := 0; r < truncatedSize; r += 2 {
			logM := fftSkew[r+skewDelta]
			e.fftButterfly(work[r], work[r+1], logM)
		}
	}
}

// ifft 是 fft 的对偶,从步长 1 逐层向上。
func (e *engine) ifft(work [][]byte, size, truncatedSize, skewDelta int) {
	// 时域抽取:一次展开两层
	dist := 1
	dist4 := 4
	for dist4 <= size {
		// 对每组 dist*4 个元素:
		for r := 0; r < truncatedSize; r += dist4 {
			base := r + dist + skewDelta - 1
			logM01 := fftSkew[base]
			logM02 := fftSkew[base+dist]
			logM23 := fftSkew[base+dist*2]

			// 对每组 dist 个元素:
			for i := r; i < r+dist; i++ {
				e.ifftDIT4(work, i, dist, logM01, logM23, logM02)
			}
		}
		dist = dist4
		dist4 <<= 2
	}

	// 剩余的单层:
	if dist < size {
		logM := fftSkew[dist+skewDelta-1]
		if logM == modulus {
			e.xorWithin(work, dist, 0, dist)
		} else {
			for i := 0; i < dist; i++ {
				e.ifftButterfly(work[i], work[i+dist], logM)
			}
		}
	}
}

// ---------------------------------------------------------------------
// 批量异或

// slicesXor 对两组分片逐对执行 dst[i] ^= src[i]。
func (e *engine) slicesXor(dst, src [][]byte) {
	for i, d := range dst {
		e.xor(d, src[i])
	}
}

// xorWithin 在同一个分片矩阵内,把 srcOff 起的 count 个分片
// 异或进 dstOff 起的 count 个分片。两个区间不相交。
func (e *engine) xorWithin(work [][]byte, dstOff, srcOff, count int) {
	e.slicesXor(work[dstOff:dstOff+count], work[srcOff:srcOff+count])
}

// memclr 把 s 的所有字节清零。
func memclr(s []byte) {
	for i := range s {
		s[i] = 0
	}
}
