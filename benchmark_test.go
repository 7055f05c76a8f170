package leopard16

import (
	"math/rand"
	"testing"
)

func benchmarkEncode(b *testing.B, k, r, shardBytes int, opts ...Option) {
	enc, err := NewEncoder(k, r, shardBytes, opts...)
	if err != nil {
		b.Fatal(err)
	}
	rng := rand.New(rand.NewSource(1))
	originals := make([][]byte, k)
	for i := range originals {
		originals[i] = make([]byte, shardBytes)
		rng.Read(originals[i])
	}

	b.SetBytes(int64(k * shardBytes))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		enc.Reset()
		for _, shard := range originals {
			if err := enc.AddOriginalShard(shard); err != nil {
				b.Fatal(err)
			}
		}
		if _, err := enc.Encode(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEncode16x4x64K(b *testing.B)   { benchmarkEncode(b, 16, 4, 64*1024) }
func BenchmarkEncode128x32x16K(b *testing.B) { benchmarkEncode(b, 128, 32, 16*1024) }
func BenchmarkEncode1Kx256x4K(b *testing.B)  { benchmarkEncode(b, 1024, 256, 4*1024) }

func BenchmarkEncodeNoSimd(b *testing.B) { benchmarkEncode(b, 128, 32, 16*1024, WithNoSimd()) }
func BenchmarkEncodeNaive(b *testing.B)  { benchmarkEncode(b, 128, 32, 16*1024, WithNaive()) }

func benchmarkDecode(b *testing.B, k, r, shardBytes, lost int, opts ...Option) {
	originals := make([][]byte, k)
	rng := rand.New(rand.NewSource(2))
	for i := range originals {
		originals[i] = make([]byte, shardBytes)
		rng.Read(originals[i])
	}
	recoveries, err := Encode(k, r, originals, opts...)
	if err != nil {
		b.Fatal(err)
	}

	dec, err := NewDecoder(k, r, shardBytes, opts...)
	if err != nil {
		b.Fatal(err)
	}

	b.SetBytes(int64(lost * shardBytes))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		dec.Reset()
		for j := lost; j < k; j++ {
			if err := dec.AddOriginalShard(j, originals[j]); err != nil {
				b.Fatal(err)
			}
		}
		for j := 0; j < lost; j++ {
			if err := dec.AddRecoveryShard(j, recoveries[j]); err != nil {
				b.Fatal(err)
			}
		}
		if _, err := dec.Decode(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecode16x4x64K(b *testing.B)   { benchmarkDecode(b, 16, 4, 64*1024, 4) }
func BenchmarkDecode128x32x16K(b *testing.B) { benchmarkDecode(b, 128, 32, 16*1024, 16) }
func BenchmarkDecode1Kx256x4K(b *testing.B)  { benchmarkDecode(b, 1024, 256, 4*1024, 128) }

func BenchmarkMulAdd(b *testing.B) {
	for _, kind := range []EngineKind{EngineNaive, EngineNoSimd, EngineAuto} {
		e, err := newEngine(kind)
		if err != nil {
			continue
		}
		b.Run(e.kind.String(), func(b *testing.B) {
			x := make([]byte, 64*1024)
			y := make([]byte, 64*1024)
			rand.New(rand.NewSource(3)).Read(y)
			b.SetBytes(int64(len(x)))
			for i := 0; i < b.N; i++ {
				e.mulAdd(x, y, 12345)
			}
		})
	}
}
