// Package bitset 提供定长位图,用于记录分片矩阵中哪些位置已经就位。
package bitset

import (
	"math/bits"
)

const wordSize = 64

// BitSet 是一个定长位图。零值不可用,必须经 New 创建。
type BitSet struct {
	length uint
	set    []uint64
}

// New 创建一个能容纳 length 位的位图,所有位初始为 0。
// 参数:
// - length: 位图容量
// 返回:
// - *BitSet: 新的位图
func New(length uint) *BitSet {
	return &BitSet{
		length: length,
		set:    make([]uint64, (length+wordSize-1)/wordSize),
	}
}

// Len 返回位图容量。
func (b *BitSet) Len() uint {
	return b.length
}

// Test 报告第 i 位是否被置位。i 越界时返回 false。
func (b *BitSet) Test(i uint) bool {
	if i >= b.length {
		return false
	}
	return b.set[i/wordSize]&(1<<(i%wordSize)) != 0
}

// Set 置位第 i 位。i 越界时不做任何事。
func (b *BitSet) Set(i uint) {
	if i >= b.length {
		return
	}
	b.set[i/wordSize] |= 1 << (i % wordSize)
}

// Clear 清除第 i 位。
func (b *BitSet) Clear(i uint) {
	if i >= b.length {
		return
	}
	b.set[i/wordSize] &^= 1 << (i % wordSize)
}

// Count 返回被置位的位数。
func (b *BitSet) Count() int {
	n := 0
	for _, w := range b.set {
		n += bits.OnesCount64(w)
	}
	return n
}

// ClearAll 清除所有位。
func (b *BitSet) ClearAll() {
	for i := range b.set {
		b.set[i] = 0
	}
}

// All 报告是否所有位均被置位。
func (b *BitSet) All() bool {
	return b.Count() == int(b.length)
}
