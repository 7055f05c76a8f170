package leopard16

import (
	"bytes"
	"math/rand"
	"testing"
)

// allEngines 返回当前 CPU 上可用的全部引擎变体。
func allEngines(t *testing.T) []*engine {
	t.Helper()

	engines := []*engine{}
	for _, kind := range []EngineKind{EngineNaive, EngineNoSimd, EngineSsse3, EngineAvx2, EngineNeon} {
		e, err := newEngine(kind)
		if err != nil {
			continue
		}
		engines = append(engines, e)
	}
	if len(engines) < 2 {
		t.Fatal("至少应有 naive 和 nosimd 两个引擎")
	}
	return engines
}

// randomShards 生成 count 个 each 字节的随机分片。
func randomShards(count, each int, seed int64) [][]byte {
	rng := rand.New(rand.NewSource(seed))
	shards := AllocAligned(count, each)
	for i := range shards {
		rng.Read(shards[i])
	}
	return shards
}

func cloneShards(shards [][]byte) [][]byte {
	out := AllocAligned(len(shards), len(shards[0]))
	for i := range shards {
		copy(out[i], shards[i])
	}
	return out
}

// 测试所有引擎的 mul 与 mulAdd 输出逐位一致
func TestEngineMulEquivalence(t *testing.T) {
	engines := allEngines(t)
	ref := engines[0]

	logMs := []ffe{0, 1, 2, 255, 256, 4095, 30000, modulus - 1, modulus}
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 20; i++ {
		logMs = append(logMs, ffe(rng.Intn(order)))
	}

	src := randomShards(1, 256, 12)[0]
	base := randomShards(1, 256, 13)[0]

	for _, logM := range logMs {
		wantMul := make([]byte, len(src))
		ref.mul(wantMul, src, logM)

		wantAdd := append([]byte(nil), base...)
		ref.mulAdd(wantAdd, src, logM)

		for _, e := range engines[1:] {
			gotMul := make([]byte, len(src))
			e.mul(gotMul, src, logM)
			if !bytes.Equal(gotMul, wantMul) {
				t.Fatalf("引擎 %s mul 与 %s 不一致 (logM=%d)", e.kind, ref.kind, logM)
			}

			gotAdd := append([]byte(nil), base...)
			e.mulAdd(gotAdd, src, logM)
			if !bytes.Equal(gotAdd, wantAdd) {
				t.Fatalf("引擎 %s mulAdd 与 %s 不一致 (logM=%d)", e.kind, ref.kind, logM)
			}
		}
	}
}

// 测试 mul 的语义: 0 保持 0,其余为对数和
func TestEngineMulSemantics(t *testing.T) {
	e, err := newEngine(EngineNoSimd)
	if err != nil {
		t.Fatal(err)
	}

	src := make([]byte, 64)
	// 元素 0 为 0x0102,其余为 0
	src[0] = 0x02
	src[32] = 0x01

	logM := logLUT[0x0031]
	dst := make([]byte, 64)
	e.mul(dst, src, logM)

	want := mulFFE(0x0102, 0x0031)
	got := ffe(dst[0]) | ffe(dst[32])<<8
	if got != want {
		t.Fatalf("得到 %#x,期望 %#x", got, want)
	}
	for i := 1; i < 32; i++ {
		if dst[i] != 0 || dst[i+32] != 0 {
			t.Fatalf("零元素被污染: 位置 %d", i)
		}
	}
}

// 测试所有引擎的蝶形与变换逐位一致
func TestEngineTransformEquivalence(t *testing.T) {
	engines := allEngines(t)
	ref := engines[0]

	for _, size := range []int{2, 4, 8, 16, 64} {
		for _, trunc := range []int{1, size / 2, size} {
			if trunc < 1 {
				continue
			}
			orig := randomShards(size, 128, int64(size*100+trunc))

			want := cloneShards(orig)
			ref.fft(want, size, trunc, size)
			wantI := cloneShards(orig)
			ref.ifft(wantI, size, trunc, size)

			for _, e := range engines[1:] {
				got := cloneShards(orig)
				e.fft(got, size, trunc, size)
				for i := range got {
					if !bytes.Equal(got[i], want[i]) {
						t.Fatalf("引擎 %s fft(size=%d trunc=%d) 行 %d 不一致", e.kind, size, trunc, i)
					}
				}

				gotI := cloneShards(orig)
				e.ifft(gotI, size, trunc, size)
				for i := range gotI {
					if !bytes.Equal(gotI[i], wantI[i]) {
						t.Fatalf("引擎 %s ifft(size=%d trunc=%d) 行 %d 不一致", e.kind, size, trunc, i)
					}
				}
			}
		}
	}
}

// 测试 IFFT 与 FFT 互逆
func TestEngineTransformRoundTrip(t *testing.T) {
	for _, e := range allEngines(t) {
		for _, size := range []int{2, 4, 16, 64, 256} {
			for _, skewDelta := range []int{0, size, 4 * size} {
				orig := randomShards(size, 64, int64(size)+int64(skewDelta))
				work := cloneShards(orig)

				e.ifft(work, size, size, skewDelta)
				e.fft(work, size, size, skewDelta)

				for i := range work {
					if !bytes.Equal(work[i], orig[i]) {
						t.Fatalf("引擎 %s size=%d delta=%d: 行 %d 未还原", e.kind, size, skewDelta, i)
					}
				}
			}
		}
	}
}

// 测试蝶形的互逆性
func TestEngineButterflyInverse(t *testing.T) {
	for _, e := range allEngines(t) {
		x := randomShards(1, 64, 21)[0]
		y := randomShards(1, 64, 22)[0]
		origX := append([]byte(nil), x...)
		origY := append([]byte(nil), y...)

		for _, logM := range []ffe{0, 7, 12345, modulus} {
			e.ifftButterfly(x, y, logM)
			e.fftButterfly(x, y, logM)
			if !bytes.Equal(x, origX) || !bytes.Equal(y, origY) {
				t.Fatalf("引擎 %s logM=%d: 蝶形不可逆", e.kind, logM)
			}
		}
	}
}

// 测试形式导数是线性算子: D(a^b) = D(a)^D(b)
func TestFormalDerivativeLinearity(t *testing.T) {
	e, err := newEngine(EngineNoSimd)
	if err != nil {
		t.Fatal(err)
	}

	const n = 32
	a := randomShards(n, 64, 31)
	b := randomShards(n, 64, 32)

	sum := cloneShards(a)
	e.slicesXor(sum, b)
	formalDerivative(e, sum, n)

	formalDerivative(e, a, n)
	formalDerivative(e, b, n)
	e.slicesXor(a, b)

	for i := range sum {
		if !bytes.Equal(sum[i], a[i]) {
			t.Fatalf("行 %d: 形式导数不是线性的", i)
		}
	}
}

// 测试 xorWithin 的区间语义
func TestXorWithin(t *testing.T) {
	e, err := newEngine(EngineNoSimd)
	if err != nil {
		t.Fatal(err)
	}

	work := randomShards(8, 64, 41)
	want := cloneShards(work)
	for i := 0; i < 4; i++ {
		for j := range want[i] {
			want[i][j] ^= want[4+i][j]
		}
	}

	e.xorWithin(work, 0, 4, 4)
	for i := range work {
		if !bytes.Equal(work[i], want[i]) {
			t.Fatalf("行 %d 不一致", i)
		}
	}
}
