package leopard16

// options 汇总编解码器的可调参数。
type options struct {
	engineKind EngineKind
	streamBS   int
}

var defaultOptions = options{
	engineKind: EngineAuto,
}

// Option 用于修改编解码器的可选行为。
type Option func(*options)

// WithEngine 强制使用指定的引擎变体。
// 变体在当前 CPU 上不可用时构造函数返回 ErrEngineUnsupported。
func WithEngine(kind EngineKind) Option {
	return func(o *options) {
		o.engineKind = kind
	}
}

// WithNaive 强制使用逐元素查表的参考引擎,主要用于测试与排查。
func WithNaive() Option {
	return WithEngine(EngineNaive)
}

// WithNoSimd 强制使用标量拆分表引擎。
func WithNoSimd() Option {
	return WithEngine(EngineNoSimd)
}

// WithStreamBlockSize 设置流式编解码每块处理的字节数,
// 必须是 64 的正整数倍,默认 1MB。
func WithStreamBlockSize(n int) Option {
	return func(o *options) {
		o.streamBS = n
	}
}
