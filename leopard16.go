// Package leopard16 实现 GF(2^16) 上的系统性里德所罗门纠删码,
// 移植自 C++ 库 https://github.com/catid/leopard 的加法 FFT 构造,
// 编码与解码复杂度均为 O(n*log n)。
//
// 该实现基于论文:
//
// S.-J. Lin, T. Y. Al-Naffouri, Y. S. Han, 和 W.-H. Chung,
// "基于快速傅里叶变换的新型多项式基及其在里德所罗门纠删码中的应用"
// IEEE 信息理论汇刊, 第 6284-6299 页, 2016 年 11 月。
//
// 给定 K 个等长数据分片,编码器产出 R 个恢复分片,
// 使得 K+R 个分片中的任意 K 个都足以恢复全部数据分片。
// 分片长度必须是 64 的正整数倍。分片按 64 字节块解释为 16 位元素:
// 前 32 字节是 32 个元素的低字节,后 32 字节是对应的高字节;
// 这不是按小端字节序紧密排列的 16 位元素布局。
package leopard16

import (
	"bytes"
	"io"
)

// Encode 一次性编码:对 K 个数据分片计算 R 个恢复分片。
// originals 的长度必须等于 k,所有分片等长且为 64 的正整数倍。
// 返回的恢复分片由调用方持有。
//
// 参数:
// - k: 数据分片数量
// - r: 恢复分片数量
// - originals: K 个数据分片,按索引顺序
// - opts: 可选参数
// 返回:
// - [][]byte: R 个恢复分片,按索引顺序
// - error: 输入不合法时返回错误
func Encode(k, r int, originals [][]byte, opts ...Option) ([][]byte, error) {
	if len(originals) != k {
		return nil, ErrNotEnoughOriginalShards
	}
	shardBytes, err := checkShardSlice(originals)
	if err != nil {
		return nil, err
	}

	enc, err := NewEncoder(k, r, shardBytes, opts...)
	if err != nil {
		return nil, err
	}
	for _, shard := range originals {
		if err := enc.AddOriginalShard(shard); err != nil {
			return nil, err
		}
	}
	view, err := enc.Encode()
	if err != nil {
		return nil, err
	}

	out := make([][]byte, r)
	for i := range out {
		out[i] = append([]byte(nil), view.Shard(i)...)
	}
	return out, nil
}

// Decode 一次性解码:从任意 K 个分片中恢复缺失的数据分片。
// originals、recoveries 以索引为键;返回恢复出的数据分片,
// 同样以索引为键,由调用方持有。
//
// 参数:
// - k: 数据分片数量
// - r: 恢复分片数量
// - shardBytes: 分片字节数
// - originals: 收到的数据分片
// - recoveries: 收到的恢复分片
// - opts: 可选参数
// 返回:
// - map[int][]byte: 恢复出的数据分片
// - error: 分片不足或输入不合法时返回错误
func Decode(k, r, shardBytes int, originals, recoveries map[int][]byte, opts ...Option) (map[int][]byte, error) {
	dec, err := NewDecoder(k, r, shardBytes, opts...)
	if err != nil {
		return nil, err
	}
	for idx, shard := range originals {
		if err := dec.AddOriginalShard(idx, shard); err != nil {
			return nil, err
		}
	}
	for idx, shard := range recoveries {
		if err := dec.AddRecoveryShard(idx, shard); err != nil {
			return nil, err
		}
	}
	view, err := dec.Decode()
	if err != nil {
		return nil, err
	}

	restored := make(map[int][]byte, view.Len())
	for i := 0; i < view.Len(); i++ {
		idx, shard := view.At(i)
		restored[idx] = append([]byte(nil), shard...)
	}
	return restored, nil
}

// Verify 重新编码数据分片并与给定的恢复分片比较。
// 全部一致时返回 true。
func Verify(k, r int, originals, recoveries [][]byte, opts ...Option) (bool, error) {
	if len(recoveries) != r {
		return false, ErrInsufficientShards
	}
	encoded, err := Encode(k, r, originals, opts...)
	if err != nil {
		return false, err
	}
	for i := range encoded {
		if !bytes.Equal(encoded[i], recoveries[i]) {
			return false, nil
		}
	}
	return true, nil
}

// Split 将数据切分成 k 个等长分片,长度向上对齐到 64 的倍数,
// 不足的部分补零。最后的分片会包含零填充。
//
// 参数:
// - data: 待切分的数据
// - k: 分片数量
// 返回:
// - [][]byte: k 个分片
// - error: 数据为空时返回 ErrShortData
func Split(data []byte, k int) ([][]byte, error) {
	if len(data) == 0 {
		return nil, ErrShortData
	}
	if k <= 0 {
		return nil, ErrShardCountOutOfRange
	}

	// 每个分片的字节数,对齐到 64
	perShard := (len(data) + k - 1) / k
	perShard = ((perShard + 63) / 64) * 64

	dst := AllocAligned(k, perShard)
	for i := range dst {
		off := i * perShard
		if off >= len(data) {
			break
		}
		copy(dst[i], data[off:])
	}
	return dst, nil
}

// Join 将数据分片连接起来,把前 outSize 个字节写入 dst。
// 分片必须按索引顺序给出;遇到空分片返回 ErrReconstructRequired。
func Join(dst io.Writer, shards [][]byte, outSize int) error {
	// 有足够的数据吗?
	size := 0
	for _, shard := range shards {
		if shard == nil {
			return ErrReconstructRequired
		}
		size += len(shard)

		if size >= outSize {
			break
		}
	}
	if size < outSize {
		return ErrShortData
	}

	write := outSize
	for _, shard := range shards {
		if write < len(shard) {
			_, err := dst.Write(shard[:write])
			return err
		}
		n, err := dst.Write(shard)
		if err != nil {
			return err
		}
		write -= n
	}
	return nil
}

// checkShardSlice 校验一组分片等长且长度合法,返回分片字节数。
func checkShardSlice(shards [][]byte) (int, error) {
	if len(shards) == 0 {
		return 0, ErrInsufficientShards
	}
	shardBytes := len(shards[0])
	if shardBytes <= 0 || shardBytes%64 != 0 {
		return 0, ErrInvalidShardSize
	}
	for _, s := range shards[1:] {
		if len(s) != shardBytes {
			return 0, ErrShardSize
		}
	}
	return shardBytes, nil
}
