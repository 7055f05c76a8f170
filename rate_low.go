package leopard16

// 低速率布局 (R > K)。
// 数据分片占据变换低位 [0, k),m = ceilPow2(K);
// 恢复分片依次落在 [m, m+R)。编码先把数据分片 IFFT 成谱,
// 再对每个恢复区块在对应的扭转偏移处做 FFT 求值。

// encodeLowRate 计算恢复分片。
// originals 为 K 个数据分片,work 至少 2m 行,
// recoveries 为 R 个输出行。
func encodeLowRate(e *engine, k, r int, originals, recoveries, work [][]byte) {
	m := ceilPow2(k)

	// 谱:IFFT(data, m, 0),零填充到 m
	spectrum := work[:m]
	for i := 0; i < k; i++ {
		copy(spectrum[i], originals[i])
	}
	for i := k; i < m; i++ {
		memclr(spectrum[i])
	}
	e.ifft(spectrum, m, k, 0)

	// 对每个恢复区块:chunk <- FFT(谱, m, m*(j+1))
	chunk := work[m : 2*m]
	idx := 0
	skewDelta := m
	for idx < r {
		count := r - idx
		if count > m {
			count = m
		}

		for i := range chunk {
			copy(chunk[i], spectrum[i])
		}
		e.fft(chunk, m, count, skewDelta)

		for i := 0; i < count; i++ {
			copy(recoveries[idx+i], chunk[i])
		}
		idx += count
		skewDelta += m
	}
}

// decodeLowRate 从任意 K 个分片恢复缺失的数据分片。
// 数据区间 [k, m) 在编码时被强制为零,解码把它当作
// 已接收的零值分片,这样任意 K 个真实分片就足够恢复。
func decodeLowRate(e *engine, k, r int, originals, recoveries, restored, work [][]byte) {
	m := ceilPow2(k)
	n := ceilPow2(m + r)

	missing := 0
	var errorBits errorBitfield
	var errLocs [order]ffe
	for i := 0; i < k; i++ {
		if originals[i] == nil {
			errLocs[i] = 1
			missing++
			errorBits.set(i)
		}
	}
	for i := 0; i < r; i++ {
		if recoveries[i] == nil {
			errLocs[m+i] = 1
			missing++
		}
	}
	// [m+r, n) 上的求值从未作为恢复分片产出,必须视为丢失。
	for i := m + r; i < n; i++ {
		errLocs[i] = 1
	}

	useBits := missing <= r/4
	if useBits {
		errorBits.prepare()
	}

	// 求纠删定位多项式
	evalErrorLocator(&errLocs, n)

	// work <- 按定位值缩放的接收分片

	for i := 0; i < k; i++ {
		if originals[i] != nil {
			e.mul(work[i], originals[i], errLocs[i])
		} else {
			memclr(work[i])
		}
	}
	// [k, m) 是已知为零的填充位置
	for i := k; i < m; i++ {
		memclr(work[i])
	}

	for i := 0; i < r; i++ {
		if recoveries[i] != nil {
			e.mul(work[m+i], recoveries[i], errLocs[m+i])
		} else {
			memclr(work[m+i])
		}
	}
	for i := m + r; i < n; i++ {
		memclr(work[i])
	}

	// work <- IFFT(work, n, 0)
	e.ifft(work[:n], n, m+r, 0)

	// work <- FormalDerivative(work, n)
	formalDerivative(e, work, n)

	// work <- FFT(work, n, 0),只需要数据区间的输出
	if useBits {
		errorBits.fftDIT(e, work, k, n)
	} else {
		e.fft(work[:n], n, k, 0)
	}

	// 还原纠删,数据分片就在变换低位
	for i := 0; i < k; i++ {
		if originals[i] != nil {
			continue
		}
		e.mul(restored[i], work[i], modulus-errLocs[i])
	}
}
