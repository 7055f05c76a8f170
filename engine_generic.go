//go:build !amd64 && !arm64

package leopard16

// 没有向量内核的架构只保留标量引擎。

func newSsse3Engine() *engine {
	return nil
}

func newAvx2Engine() *engine {
	return nil
}

func newNeonEngine() *engine {
	return nil
}
