package leopard16

import (
	"errors"
)

// ErrInvalidShardSize 在分片长度不是 64 的正整数倍时返回。
var ErrInvalidShardSize = errors.New("分片大小无效,必须是 64 的正整数倍")

// ErrShardSize 在同一次调用中的分片长度不一致时返回。
var ErrShardSize = errors.New("分片大小不一致")

// ErrShardCountOutOfRange 在 K 或 R 不在 [1, 65535] 内时返回。
var ErrShardCountOutOfRange = errors.New("cannot create codec with shard counts outside [1, 65535]")

// ErrUnsupportedShape 在 (K, R) 落在两种速率布局都无法承载的区域时返回。
var ErrUnsupportedShape = errors.New("unsupported (K, R) shape for 16-bit codec")

// ErrDuplicateShardIndex 在重复添加同一索引的分片时返回。
var ErrDuplicateShardIndex = errors.New("重复的分片索引")

// ErrIndexOutOfRange 在分片索引越界时返回。
var ErrIndexOutOfRange = errors.New("分片索引越界")

// ErrInsufficientShards 在收到的分片总数少于 K 时由解码返回。
var ErrInsufficientShards = errors.New("分片数量不足,无法解码")

// ErrNotEnoughOriginalShards 在尚未添加全部 K 个数据分片就调用编码时返回。
var ErrNotEnoughOriginalShards = errors.New("尚未添加全部数据分片")

// ErrShortData 在 Split 收到空数据,或 Join 的分片总长不足 outSize 时返回。
var ErrShortData = errors.New("数据不足以填充请求的分片数量")

// ErrReconstructRequired 在需要的数据分片为空、必须先重建时由 Join 返回。
var ErrReconstructRequired = errors.New("需要重建,因为一个或多个必需的数据分片为空")

// ErrInvalidInput 在输入参数无效时返回此错误
var ErrInvalidInput = errors.New("invalid input")

// ErrEngineUnsupported 在当前 CPU 不支持所选引擎变体时返回。
var ErrEngineUnsupported = errors.New("engine variant not supported on this CPU")
