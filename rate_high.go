package leopard16

// 高速率布局 (R <= K 的典型情形)。
// 变换宽度内恢复分片占据低位 [0, m),数据分片从 m 开始,
// m = ceilPow2(R)。编码的工作量随 (K+R)·log(m) 增长,
// 而不是整个变换宽度。

// encodeHighRate 计算恢复分片。
// originals 为 K 个数据分片,work 至少 2m 行;
// 结果写入 work 的前 R 行。
func encodeHighRate(e *engine, k, r int, originals, work [][]byte) {
	m := ceilPow2(r)

	// 第一组:IFFT 直接落在累加区
	mtrunc := m
	if k < mtrunc {
		mtrunc = k
	}
	ifftEncodeChunk(e, originals[:mtrunc], mtrunc, work[:m], nil, m, m)

	// 其余每组 m 个数据分片:work <- work xor IFFT(data[idx:], m, m*(j+1))
	idx := m
	skewDelta := 2 * m
	for idx+m <= k {
		ifftEncodeChunk(e, originals[idx:idx+m], m, work[m:2*m], work[:m], m, skewDelta)
		idx += m
		skewDelta += m
	}

	// 处理最后一组不完整的分片:
	if last := k - idx; last > 0 {
		ifftEncodeChunk(e, originals[idx:], last, work[m:2*m], work[:m], m, skewDelta)
	}

	// work <- FFT(work, m, 0),只需要前 R 个输出
	e.fft(work[:m], m, r, 0)
}

// ifftEncodeChunk 把一组数据分片复制进 chunk、零填充到 m,
// 做截断 IFFT,并视需要把谱累加进 xorOut。
func ifftEncodeChunk(e *engine, data [][]byte, mtrunc int, chunk, xorOut [][]byte, m, skewDelta int) {
	for i := 0; i < mtrunc; i++ {
		copy(chunk[i], data[i])
	}
	for i := mtrunc; i < m; i++ {
		memclr(chunk[i])
	}

	e.ifft(chunk, m, mtrunc, skewDelta)

	if xorOut != nil {
		e.slicesXor(xorOut[:m], chunk[:m])
	}
}

// decodeHighRate 从任意 K 个分片恢复缺失的数据分片。
// originals、recoveries 中缺失的位置为 nil;work 至少 n 行。
// 恢复出的数据分片写入 restored 中对应的行 (仅缺失位置)。
func decodeHighRate(e *engine, k, r int, originals, recoveries, restored, work [][]byte) {
	m := ceilPow2(r)
	n := ceilPow2(m + k)

	// 标记纠删位置。恢复区间 [r, m) 是从未传输过的填充位置,
	// 必须一并视为丢失。
	missing := 0
	var errorBits errorBitfield
	var errLocs [order]ffe
	for i := 0; i < r; i++ {
		if recoveries[i] == nil {
			errLocs[i] = 1
			missing++
		}
	}
	for i := r; i < m; i++ {
		errLocs[i] = 1
	}
	for i := 0; i < k; i++ {
		if originals[i] == nil {
			errLocs[m+i] = 1
			missing++
			errorBits.set(m + i)
		}
	}

	// 缺失很少时用位图跳过末段 FFT 中不需要的蝶形。
	useBits := missing <= r/4
	if useBits {
		errorBits.prepare()
	}

	// 求纠删定位多项式
	evalErrorLocator(&errLocs, m+k)

	// work <- 按定位值缩放的接收分片

	for i := 0; i < r; i++ {
		if recoveries[i] != nil {
			e.mul(work[i], recoveries[i], errLocs[i])
		} else {
			memclr(work[i])
		}
	}
	for i := r; i < m; i++ {
		memclr(work[i])
	}

	for i := 0; i < k; i++ {
		if originals[i] != nil {
			e.mul(work[m+i], originals[i], errLocs[m+i])
		} else {
			memclr(work[m+i])
		}
	}
	for i := m + k; i < n; i++ {
		memclr(work[i])
	}

	// work <- IFFT(work, n, 0)
	e.ifft(work[:n], n, m+k, 0)

	// work <- FormalDerivative(work, n)
	formalDerivative(e, work, n)

	// work <- FFT(work, n, 0),截断到 m + k 个输出
	outputCount := m + k
	if useBits {
		errorBits.fftDIT(e, work, outputCount, n)
	} else {
		e.fft(work[:n], n, outputCount, 0)
	}

	// 还原纠删:
	//
	//   Original = -ErrLocator * FFT( Derivative( IFFT( ErrLocator * ReceivedData ) ) )
	//
	// 内存布局: [恢复分片 (2 的幂 = m)] [数据分片 (k)] [零填充到 n]
	for i := 0; i < k; i++ {
		if originals[i] != nil {
			continue
		}
		e.mul(restored[i], work[m+i], modulus-errLocs[m+i])
	}
}
