package leopard16

import (
	"unsafe"
)

// AllocAligned 分配 shards 个各 each 字节的缓冲区,
// 共享同一块底层内存,每行起始地址对齐到 64 字节。
// 对齐满足所有引擎变体的向量宽度要求 (AVX2 为 32 字节,其余 16 字节)。
//
// 参数:
// - shards: 缓冲区个数
// - each: 每个缓冲区的字节数
// 返回:
// - [][]byte: 对齐的缓冲区切片
func AllocAligned(shards, each int) [][]byte {
	eachAligned := ((each + 63) / 64) * 64
	total := make([]byte, eachAligned*shards+63)
	// 把起点推进到下一个 64 字节边界
	align := uint(uintptr(unsafe.Pointer(&total[0]))) & 63
	if align > 0 {
		total = total[64-align:]
	}
	res := make([][]byte, shards)
	for i := range res {
		res[i] = total[:each:eachAligned]
		total = total[eachAligned:]
	}
	return res
}
