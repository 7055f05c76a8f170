package leopard16

import (
	"github.com/bpfs/leopard16/bitset"
)

// Decoder 是解码累加器:以任意顺序收集收到的数据分片与恢复分片,
// 收到至少 K 个后重建缺失的数据分片。
// 分片矩阵与工作矩阵在构造时分配,并在多次 Decode 间复用。
type Decoder struct {
	k          int // 数据分片数量,不应修改。
	r          int // 恢复分片数量,不应修改。
	shardBytes int // 每个分片的字节数。

	e        *engine
	highRate bool

	originals  [][]byte // k 行
	recoveries [][]byte // r 行
	work       [][]byte // n 行

	origSet *bitset.BitSet
	recSet  *bitset.BitSet

	// Decode 的临时切片,避免每次调用重新分配
	origRef [][]byte
	recRef  [][]byte
	missing []int
}

// NewDecoder 创建解码累加器。
//
// 参数:
// - k: 数据分片数量,1..65535
// - r: 恢复分片数量,1..65535
// - shardBytes: 分片字节数,64 的正整数倍
// - opts: 可选参数,如 WithEngine
// 返回:
// - *Decoder: 新的解码器
// - error: (K, R) 或分片大小不受支持时返回错误
func NewDecoder(k, r, shardBytes int, opts ...Option) (*Decoder, error) {
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
	logger.Debugf("解码器引擎: %s", e.kind)

	var n int
	if highRate {
		n = ceilPow2(ceilPow2(r) + k)
	} else {
		n = ceilPow2(ceilPow2(k) + r)
	}

	return &Decoder{
		k:          k,
		r:          r,
		shardBytes: shardBytes,
		e:          e,
		highRate:   highRate,
		originals:  AllocAligned(k, shardBytes),
		recoveries: AllocAligned(r, shardBytes),
		work:       AllocAligned(n, shardBytes),
		origSet:    bitset.New(uint(k)),
		recSet:     bitset.New(uint(r)),
		origRef:    make([][]byte, k),
		recRef:     make([][]byte, r),
		missing:    make([]int, 0, k),
	}, nil
}

// DataShards 返回数据分片数量
func (d *Decoder) DataShards() int {
	return d.k
}

// RecoveryShards 返回恢复分片数量
func (d *Decoder) RecoveryShards() int {
	return d.r
}

// AddOriginalShard 添加索引为 index 的数据分片。
// 分片内容被复制进内部矩阵。
func (d *Decoder) AddOriginalShard(index int, shard []byte) error {
	if index < 0 || index >= d.k {
		return ErrIndexOutOfRange
	}
	if d.origSet.Test(uint(index)) {
		return ErrDuplicateShardIndex
	}
	if len(shard) != d.shardBytes {
		return ErrInvalidShardSize
	}
	copy(d.originals[index], shard)
	d.origSet.Set(uint(index))
	return nil
}

// AddRecoveryShard 添加索引为 index 的恢复分片。
func (d *Decoder) AddRecoveryShard(index int, shard []byte) error {
	if index < 0 || index >= d.r {
		return ErrIndexOutOfRange
	}
	if d.recSet.Test(uint(index)) {
		return ErrDuplicateShardIndex
	}
	if len(shard) != d.shardBytes {
		return ErrInvalidShardSize
	}
	copy(d.recoveries[index], shard)
	d.recSet.Set(uint(index))
	return nil
}

// Decode 重建缺失的数据分片。
// 已收到的分片总数必须不少于 K;全部数据分片都在时返回空视图。
// 返回的视图按索引顺序暴露恢复出的数据分片,底层缓冲归 Decoder
// 所有,在下一次 Decode 或 Reset 之前有效。
func (d *Decoder) Decode() (*RestoredView, error) {
	if d.origSet.Count()+d.recSet.Count() < d.k {
		return nil, ErrInsufficientShards
	}

	d.missing = d.missing[:0]
	for i := 0; i < d.k; i++ {
		if d.origSet.Test(uint(i)) {
			d.origRef[i] = d.originals[i]
		} else {
			d.origRef[i] = nil
			d.missing = append(d.missing, i)
		}
	}

	// 快速路径:没有缺失的数据分片。
	if len(d.missing) == 0 {
		return &RestoredView{}, nil
	}

	for i := 0; i < d.r; i++ {
		if d.recSet.Test(uint(i)) {
			d.recRef[i] = d.recoveries[i]
		} else {
			d.recRef[i] = nil
		}
	}

	if d.highRate {
		decodeHighRate(d.e, d.k, d.r, d.origRef, d.recRef, d.originals, d.work)
	} else {
		decodeLowRate(d.e, d.k, d.r, d.origRef, d.recRef, d.originals, d.work)
	}

	shards := make([][]byte, len(d.missing))
	for i, idx := range d.missing {
		shards[i] = d.originals[idx]
	}
	return &RestoredView{indices: d.missing, shards: shards}, nil
}

// Reset 清空已添加的分片,保留全部内存,供下一轮解码复用。
func (d *Decoder) Reset() {
	d.origSet.ClearAll()
	d.recSet.ClearAll()
}

// RestoredView 按索引顺序暴露一次解码恢复出的数据分片。
type RestoredView struct {
	indices []int
	shards  [][]byte
}

// Len 返回恢复出的分片数量。
func (v *RestoredView) Len() int {
	return len(v.indices)
}

// At 返回第 i 个恢复结果及其原始索引,按索引升序排列。
func (v *RestoredView) At(i int) (index int, shard []byte) {
	return v.indices[i], v.shards[i]
}

// Shard 按原始索引查找恢复出的分片。
func (v *RestoredView) Shard(index int) ([]byte, bool) {
	for i, idx := range v.indices {
		if idx == index {
			return v.shards[i], true
		}
	}
	return nil, false
}
