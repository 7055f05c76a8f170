package leopard16

// Encoder 是编码累加器:按顺序收集 K 个数据分片,
// 在收齐后一次性计算 R 个恢复分片。
// 分片矩阵在构造时按引擎要求对齐分配,并在多次 Encode 间复用。
// Encoder 可以在两次调用之间转移到其他协程,但不能并发使用。
type Encoder struct {
	k          int // 数据分片数量,不应修改。
	r          int // 恢复分片数量,不应修改。
	shardBytes int // 每个分片的字节数。

	e        *engine
	highRate bool

	next int // 已添加的数据分片数量

	originals  [][]byte // k 行
	recoveries [][]byte // r 行
	work       [][]byte // 2m 行
}

// NewEncoder 创建编码累加器。
//
// 参数:
// - k: 数据分片数量,1..65535
// - r: 恢复分片数量,1..65535
// - shardBytes: 分片字节数,64 的正整数倍
// - opts: 可选参数,如 WithEngine
// 返回:
// - *Encoder: 新的编码器
// - error: (K, R) 或分片大小不受支持时返回错误
func NewEncoder(k, r, shardBytes int, opts ...Option) (*Encoder, error) {
	if err := checkShardCounts(k, r); err != nil {
		return nil, err
	}
	highRate, err := pickRate(k, r)
	if err != nil {
		logger.Errorf("不支持的形状: K=%d R=%d", k, r)
		return nil, err
	}
	if shardBytes <= 0 || shardBytes%64 != 0 {
		return nil, ErrInvalidShardSize
	}

	o := defaultOptions
	for _, opt := range opts {
		opt(&o)
	}
	e, err := newEngine(o.engineKind)
	if err != nil {
		return nil, err
	}
	logger.Debugf("编码器引擎: %s", e.kind)

	m := ceilPow2(r)
	if !highRate {
		m = ceilPow2(k)
	}

	return &Encoder{
		k:          k,
		r:          r,
		shardBytes: shardBytes,
		e:          e,
		highRate:   highRate,
		originals:  AllocAligned(k, shardBytes),
		recoveries: AllocAligned(r, shardBytes),
		work:       AllocAligned(2*m, shardBytes),
	}, nil
}

// DataShards 返回数据分片数量
func (e *Encoder) DataShards() int {
	return e.k
}

// RecoveryShards 返回恢复分片数量
func (e *Encoder) RecoveryShards() int {
	return e.r
}

// ShardBytes 返回分片字节数
func (e *Encoder) ShardBytes() int {
	return e.shardBytes
}

// AddOriginalShard 按顺序添加下一个数据分片。
// 分片内容被复制进内部矩阵,调用后 shard 可以复用。
func (e *Encoder) AddOriginalShard(shard []byte) error {
	if e.next >= e.k {
		return ErrIndexOutOfRange
	}
	if len(shard) != e.shardBytes {
		return ErrInvalidShardSize
	}
	copy(e.originals[e.next], shard)
	e.next++
	return nil
}

// Encode 在收齐 K 个数据分片后计算全部恢复分片。
// 返回的视图按索引顺序暴露恢复分片,底层缓冲归 Encoder 所有,
// 在下一次 Encode 或 Reset 之前有效。
func (e *Encoder) Encode() (RecoveryView, error) {
	if e.next != e.k {
		return nil, ErrNotEnoughOriginalShards
	}

	if e.highRate {
		encodeHighRate(e.e, e.k, e.r, e.originals, e.work)
		for i := 0; i < e.r; i++ {
			copy(e.recoveries[i], e.work[i])
		}
	} else {
		encodeLowRate(e.e, e.k, e.r, e.originals, e.recoveries, e.work)
	}

	return RecoveryView(e.recoveries), nil
}

// Reset 清空已添加的分片,保留全部内存,供下一轮编码复用。
func (e *Encoder) Reset() {
	e.next = 0
}

// RecoveryView 按索引顺序 (0..R-1) 暴露恢复分片。
type RecoveryView [][]byte

// Count 返回恢复分片数量。
func (v RecoveryView) Count() int {
	return len(v)
}

// Shard 返回索引 i 处的恢复分片。
func (v RecoveryView) Shard(i int) []byte {
	return v[i]
}
