package leopard16

// GF(2^16) 域表层。
//
// 基于论文:
//
// S.-J. Lin, T. Y. Al-Naffouri, Y. S. Han, 和 W.-H. Chung,
// "基于快速傅里叶变换的新型多项式基及其在里德所罗门纠删码中的应用"
// IEEE 信息理论汇刊, 第 6284-6299 页, 2016 年 11 月。
//
// 所有表在进程内只构建一次,构建完成后只读。

import (
	"runtime"
	"sync"

	"github.com/klauspost/cpuid/v2"
)

// ffe 是 GF(2^16) 的一个元素。
type ffe uint16

const (
	bitwidth   = 16
	order      = 1 << bitwidth // 域元素个数
	modulus    = order - 1     // 乘法群的阶
	polynomial = 0x1002D       // 本原多项式
)

// 对数表与反对数表。对任意非零 a, b:
// a*b = expLUT[(logLUT[a]+logLUT[b]) mod 65535]。
var (
	logLUT *[order]ffe
	expLUT *[order]ffe
)

// fftSkew 是 Cantor 基加法 FFT 蝶形的扭转因子(对数域)。
// logWalsh 是对数表的沃尔什-阿达玛变换,解码时用于求纠删定位多项式。
var (
	fftSkew  *[modulus]ffe
	logWalsh *[order]ffe
)

// mul16LUTs 按乘数对数缓存部分积。对相同乘数的重复访问更快。
var mul16LUTs *[order]mul16LUT

type mul16LUT struct {
	// Lo 包含低字节的部分积,与 Hi 的查找结果异或得到完整乘积。
	Lo [256]ffe
	Hi [256]ffe
}

// multiply256LUT 是按 4 位拆分的查找表,供 PSHUFB/VTBL 内核使用。
// 每个乘数对数对应 8 张 16 项表:前 4 张给出乘积低字节,后 4 张给出高字节。
var multiply256LUT *[order][8 * 16]byte

var initOnce sync.Once

// initConstants 构建全部域表。
// 所有算法入口都必须先经过这里;首次构建完成后任何协程只会观察到完整的表。
func initConstants() {
	initOnce.Do(func() {
		initLUTs()
		initFFTSkew()
		initMul16LUT()
	})
}

// initLUTs 初始化 logLUT 和 expLUT。
func initLUTs() {
	cantorBasis := [bitwidth]ffe{
		0x0001, 0xACCA, 0x3C0E, 0x163E,
		0xC582, 0xED2E, 0x914C, 0x4012,
		0x6C98, 0x10D8, 0x6A72, 0xB900,
		0xFDB8, 0xFB34, 0xFF38, 0x991E,
	}

	expLUT = &[order]ffe{}
	logLUT = &[order]ffe{}

	// 用 LFSR 生成标准基下的对数表:
	state := 1
	for i := ffe(0); i < modulus; i++ {
		expLUT[state] = i
		state <<= 1
		if state >= order {
			state ^= polynomial
		}
	}
	expLUT[0] = modulus

	// 转换到 Cantor 基:

	logLUT[0] = 0
	for i := 0; i < bitwidth; i++ {
		basis := cantorBasis[i]
		width := 1 << i

		for j := 0; j < width; j++ {
			logLUT[j+width] = logLUT[j] ^ basis
		}
	}

	for i := 0; i < order; i++ {
		logLUT[i] = expLUT[logLUT[i]]
	}

	for i := 0; i < order; i++ {
		expLUT[logLUT[i]] = ffe(i)
	}

	expLUT[modulus] = expLUT[0]
}

// initFFTSkew 初始化 fftSkew 与 logWalsh。
func initFFTSkew() {
	var temp [bitwidth - 1]ffe

	// 生成 FFT 偏移向量 {1}:

	for i := 1; i < bitwidth; i++ {
		temp[i-1] = ffe(1 << i)
	}

	fftSkew = &[modulus]ffe{}
	logWalsh = &[order]ffe{}

	for m := 0; m < bitwidth-1; m++ {
		step := 1 << (m + 1)

		fftSkew[1<<m-1] = 0

		for i := m; i < bitwidth-1; i++ {
			s := 1 << (i + 1)

			for j := 1<<m - 1; j < s; j += step {
				fftSkew[j+s] = fftSkew[j] ^ temp[i]
			}
		}

		temp[m] = modulus - logLUT[mulLog(temp[m], logLUT[temp[m]^1])]

		for i := m + 1; i < bitwidth-1; i++ {
			sum := addMod(logLUT[temp[i]^1], temp[m])
			temp[i] = mulLog(temp[i], sum)
		}
	}

	for i := 0; i < modulus; i++ {
		fftSkew[i] = logLUT[fftSkew[i]]
	}

	// 预计算 FWHT(logLUT):

	for i := 0; i < order; i++ {
		logWalsh[i] = logLUT[i]
	}
	logWalsh[0] = 0

	fwht(logWalsh, order)
}

// initMul16LUT 初始化标量与 SIMD 内核的乘法查找表。
func initMul16LUT() {
	mul16LUTs = &[order]mul16LUT{}

	// 对每个乘数对数 log_m:
	for logM := 0; logM < order; logM++ {
		var tmp [64]ffe
		for nibble, shift := 0, 0; nibble < 4; {
			nibbleLUT := tmp[nibble*16:]

			for x := 0; x < 16; x++ {
				nibbleLUT[x] = mulLog(ffe(x<<shift), ffe(logM))
			}
			nibble++
			shift += 4
		}
		lut := &mul16LUTs[logM]
		for i := range lut.Lo[:] {
			lut.Lo[i] = tmp[i&15] ^ tmp[((i>>4)+16)]
			lut.Hi[i] = tmp[((i&15)+32)] ^ tmp[((i>>4)+48)]
		}
	}

	// 只有可能运行 SIMD 内核时才构建 128 字节的拆分表。
	if cpuid.CPU.Has(cpuid.SSSE3) || cpuid.CPU.Has(cpuid.AVX2) || runtime.GOARCH == "arm64" {
		multiply256LUT = &[order][16 * 8]byte{}

		for logM := range multiply256LUT[:] {
			// 对有限域位宽的每 4 位:
			shift := 0
			for i := 0; i < 4; i++ {
				// 构造供字节重排指令使用的 16 项查找表
				prodLo := multiply256LUT[logM][i*16 : i*16+16]
				prodHi := multiply256LUT[logM][4*16+i*16 : 4*16+i*16+16]
				for x := range prodLo[:] {
					prod := mulLog(ffe(x<<shift), ffe(logM))
					prodLo[x] = byte(prod)
					prodHi[x] = byte(prod >> 8)
				}
				shift += 4
			}
		}
	}
}

// mulLog 返回 a * Log(b)。
//
// 注意这不是有限域中的普通乘法:右操作数已经是对数形式。
// 这样可以把查表从解码热路径挪到初始化阶段,
// logWalsh 表里存的也是对数,组合运算因此更直接。
func mulLog(a, logB ffe) ffe {
	if a == 0 {
		return 0
	}
	return expLUT[addMod(logLUT[a], logB)]
}

// addMod 返回 a + b (mod 65535)。
func addMod(a, b ffe) ffe {
	sum := uint(a) + uint(b)

	// 部分约简,允许返回 modulus 本身
	return ffe(sum + sum>>bitwidth)
}

// subMod 返回 a - b (mod 65535)。
func subMod(a, b ffe) ffe {
	dif := uint(a) - uint(b)

	// 部分约简,允许返回 modulus 本身
	return ffe(dif + dif>>bitwidth)
}

// fwht 是时域抽取的快速沃尔什-阿达玛变换,蝶形为
// (a, b) <- (a+b, a-b) (mod 65535),一次展开两层。
// mtrunc 是向量前端非零元素的个数,起点不小于 mtrunc 的块全为零,每一层都跳过。
// 长度 65536 mod 65535 = 1,因此两次变换还原输入,无需归一化。
func fwht(data *[order]ffe, mtrunc int) {
	dist := 1
	dist4 := 4
	for dist4 <= order {
		// 对每组 dist*4 个元素:
		for r := 0; r < mtrunc; r += dist4 {
			// 用 16 位索引避免 [65536]ffe 的边界检查
			dist := uint16(dist)
			off := uint16(r)
			for i := uint16(0); i < dist; i++ {
				// 寄存器内跨两层计算
				t0 := data[off]
				t1 := data[off+dist]
				t2 := data[off+dist*2]
				t3 := data[off+dist*3]

				t0, t1 = fwht2(t0, t1)
				t2, t3 = fwht2(t2, t3)
				t0, t2 = fwht2(t0, t2)
				t1, t3 = fwht2(t1, t3)

				data[off] = t0
				data[off+dist] = t1
				data[off+dist*2] = t2
				data[off+dist*3] = t3
				off++
			}
		}
		dist = dist4
		dist4 <<= 2
	}
}

// fwht2 返回 {a+b, a-b} (mod 65535)。
func fwht2(a, b ffe) (ffe, ffe) {
	return addMod(a, b), subMod(a, b)
}
