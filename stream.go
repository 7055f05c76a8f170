package leopard16

// 流式编解码:对 io.Reader/io.Writer 逐块应用编解码器,
// 适合体积超出内存预算的输入。块缓冲取自共享内存池。

import (
	"io"

	pool "github.com/libp2p/go-buffer-pool"
	"github.com/pkg/errors"
)

// defaultStreamBlockSize 是流式处理的默认块大小。
const defaultStreamBlockSize = 1 << 20

// StreamEncoder 对 K 路输入流逐块编码,产出 R 路恢复流。
type StreamEncoder struct {
	k, r      int
	blockSize int
	enc       *Encoder
}

// NewStreamEncoder 创建流式编码器。
//
// 参数:
// - k: 数据分片数量
// - r: 恢复分片数量
// - opts: 可选参数,块大小经 WithStreamBlockSize 设置
// 返回:
// - *StreamEncoder: 新的流式编码器
// - error: 参数不合法时返回错误
func NewStreamEncoder(k, r int, opts ...Option) (*StreamEncoder, error) {
	o := defaultOptions
	for _, opt := range opts {
		opt(&o)
	}
	blockSize := o.streamBS
	if blockSize == 0 {
		blockSize = defaultStreamBlockSize
	}
	if blockSize <= 0 || blockSize%64 != 0 {
		return nil, ErrInvalidShardSize
	}

	enc, err := NewEncoder(k, r, blockSize, opts...)
	if err != nil {
		logger.Errorf("创建流式编码器失败: %v", err)
		return nil, err
	}
	return &StreamEncoder{k: k, r: r, blockSize: blockSize, enc: enc}, nil
}

// Encode 读取 K 路输入流并把恢复流写入 outputs。
// 所有输入流必须等长;最后一个不完整的块按零填充编码,
// 恢复流总是写出完整的块。
func (s *StreamEncoder) Encode(inputs []io.Reader, outputs []io.Writer) error {
	if len(inputs) != s.k || len(outputs) != s.r {
		return ErrInvalidInput
	}

	buf := pool.Get(s.blockSize)
	defer pool.Put(buf)

	for {
		size := -1
		s.enc.Reset()
		for i, in := range inputs {
			n, err := readBlock(in, buf)
			if err != nil {
				return errors.Wrapf(err, "读取输入流 %d 失败", i)
			}
			if size == -1 {
				size = n
			} else if n != size {
				return ErrShardSize
			}
			if n == 0 {
				continue
			}
			memclr(buf[n:])
			if err := s.enc.AddOriginalShard(buf); err != nil {
				return err
			}
		}
		if size == 0 {
			// 所有输入流同时结束
			return nil
		}

		view, err := s.enc.Encode()
		if err != nil {
			return err
		}
		for i := 0; i < s.r; i++ {
			if _, err := outputs[i].Write(view.Shard(i)); err != nil {
				return errors.Wrapf(err, "写出恢复流 %d 失败", i)
			}
		}

		if size < s.blockSize {
			return nil
		}
	}
}

// StreamDecoder 对收到的分片流逐块重建缺失的数据流。
type StreamDecoder struct {
	k, r      int
	blockSize int
	dec       *Decoder
}

// NewStreamDecoder 创建流式解码器,参数与 NewStreamEncoder 相同。
func NewStreamDecoder(k, r int, opts ...Option) (*StreamDecoder, error) {
	o := defaultOptions
	for _, opt := range opts {
		opt(&o)
	}
	blockSize := o.streamBS
	if blockSize == 0 {
		blockSize = defaultStreamBlockSize
	}
	if blockSize <= 0 || blockSize%64 != 0 {
		return nil, ErrInvalidShardSize
	}

	dec, err := NewDecoder(k, r, blockSize, opts...)
	if err != nil {
		logger.Errorf("创建流式解码器失败: %v", err)
		return nil, err
	}
	return &StreamDecoder{k: k, r: r, blockSize: blockSize, dec: dec}, nil
}

// Reconstruct 逐块重建缺失的数据流。
// inputs 依次是 K 路数据流和 R 路恢复流,缺失的流为 nil;
// outputs 是 K 路数据流的写出目标,不需要的位置为 nil。
// 数据流允许以不完整的块结束;恢复流必须由 StreamEncoder
// 产出,总是完整的块。当收到的数据流给出了块长时,
// 重建的输出会裁剪到同样的长度。
func (s *StreamDecoder) Reconstruct(inputs []io.Reader, outputs []io.Writer) error {
	if len(inputs) != s.k+s.r || len(outputs) != s.k {
		return ErrInvalidInput
	}

	buf := pool.Get(s.blockSize)
	defer pool.Put(buf)

	for {
		dataSize := -1
		sawAny := false
		s.dec.Reset()
		for i, in := range inputs {
			if in == nil {
				continue
			}
			n, err := readBlock(in, buf)
			if err != nil {
				return errors.Wrapf(err, "读取输入流 %d 失败", i)
			}
			if i < s.k {
				if dataSize == -1 {
					dataSize = n
				} else if n != dataSize {
					return ErrShardSize
				}
			} else if n != 0 && n != s.blockSize {
				// 恢复流只能整块出现
				return ErrShardSize
			}
			if n == 0 {
				continue
			}
			sawAny = true
			memclr(buf[n:])
			if i < s.k {
				err = s.dec.AddOriginalShard(i, buf)
			} else {
				err = s.dec.AddRecoveryShard(i-s.k, buf)
			}
			if err != nil {
				return err
			}
		}
		if !sawAny {
			return nil
		}
		if dataSize == 0 {
			// 数据流已经结束,恢复流却还有数据
			return ErrShardSize
		}

		view, err := s.dec.Decode()
		if err != nil {
			return err
		}

		outSize := s.blockSize
		if dataSize > 0 {
			outSize = dataSize
		}
		for i := 0; i < s.k; i++ {
			if outputs[i] == nil {
				continue
			}
			shard, ok := view.Shard(i)
			if !ok {
				// 该位置本来就收到了
				shard = s.dec.originals[i]
			}
			if _, err := outputs[i].Write(shard[:outSize]); err != nil {
				return errors.Wrapf(err, "写出数据流 %d 失败", i)
			}
		}

		if dataSize >= 0 && dataSize < s.blockSize {
			return nil
		}
	}
}

// readBlock 尽量读满 buf,流结束时返回实际读到的字节数。
func readBlock(in io.Reader, buf []byte) (int, error) {
	n, err := io.ReadFull(in, buf)
	switch err {
	case nil, io.EOF, io.ErrUnexpectedEOF:
		return n, nil
	}
	return n, err
}
