package storage

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pierrec/lz4/v4"
)

// frames.lz4 layout, little endian:
//
//	"GFLD" | version u32 | count u32 | samples u32
//	then per sample: frame u32 | size u32 | block
//
// A block holds count column-major float32 matrices compressed with the lz4
// block codec. size 0 means the block was incompressible and is stored raw.
const (
	framesMagic   = "GFLD"
	framesVersion = 1
	matrixBytes   = 16 * 4

	// maxFrameCount bounds one sample to 64 MiB of matrices.
	maxFrameCount = 1 << 20
	// maxSampleCap limits the capacity reserved up front from the header.
	maxSampleCap = 1024
)

var ErrCorruptFrames = errors.New("storage: corrupt frame file")

func writeFrames(path string, count int, frames [][]mgl32.Mat4, index []int) error {
	if len(frames) != len(index) {
		return fmt.Errorf("storage: %d frames but %d indices", len(frames), len(index))
	}
	if count <= 0 || count > maxFrameCount {
		return fmt.Errorf("storage: cannot store %d particles per frame (max %d)", count, maxFrameCount)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	header := make([]byte, 16)
	copy(header, framesMagic)
	binary.LittleEndian.PutUint32(header[4:], framesVersion)
	binary.LittleEndian.PutUint32(header[8:], uint32(count))
	binary.LittleEndian.PutUint32(header[12:], uint32(len(frames)))
	if _, err := w.Write(header); err != nil {
		return err
	}

	raw := make([]byte, count*matrixBytes)
	packed := make([]byte, lz4.CompressBlockBound(len(raw)))
	var c lz4.Compressor
	for s, frame := range frames {
		if len(frame) != count {
			return fmt.Errorf("storage: sample %d has %d matrices, want %d", s, len(frame), count)
		}
		encodeMatrices(raw, frame)

		n, err := c.CompressBlock(raw, packed)
		if err != nil {
			return err
		}

		var rec [8]byte
		binary.LittleEndian.PutUint32(rec[0:], uint32(index[s]))
		binary.LittleEndian.PutUint32(rec[4:], uint32(n))
		if _, err := w.Write(rec[:]); err != nil {
			return err
		}
		block := packed[:n]
		if n == 0 {
			block = raw
		}
		if _, err := w.Write(block); err != nil {
			return err
		}
	}

	return w.Flush()
}

func encodeMatrices(dst []byte, ms []mgl32.Mat4) {
	off := 0
	for i := range ms {
		for _, v := range ms[i] {
			binary.LittleEndian.PutUint32(dst[off:], math.Float32bits(v))
			off += 4
		}
	}
}

func decodeMatrices(src []byte, count int) []mgl32.Mat4 {
	ms := make([]mgl32.Mat4, count)
	off := 0
	for i := range ms {
		for k := range ms[i] {
			ms[i][k] = math.Float32frombits(binary.LittleEndian.Uint32(src[off:]))
			off += 4
		}
	}
	return ms
}

// LoadFrames reads the sampled instance matrices of a run along with the
// frame number each sample was taken at.
func (s *Store) LoadFrames(runID string) ([][]mgl32.Mat4, []int, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, nil, err
	}
	defer f.Close()

	return readFrames(bufio.NewReader(f))
}

func readFrames(r io.Reader) ([][]mgl32.Mat4, []int, error) {
	header := make([]byte, 16)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, nil, fmt.Errorf("%w: header: %v", ErrCorruptFrames, err)
	}
	if string(header[:4]) != framesMagic {
		return nil, nil, fmt.Errorf("%w: bad magic %q", ErrCorruptFrames, header[:4])
	}
	if v := binary.LittleEndian.Uint32(header[4:]); v != framesVersion {
		return nil, nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptFrames, v)
	}
	count := int(binary.LittleEndian.Uint32(header[8:]))
	samples := int(binary.LittleEndian.Uint32(header[12:]))
	if count == 0 || count > maxFrameCount {
		return nil, nil, fmt.Errorf("%w: %d particles per frame", ErrCorruptFrames, count)
	}

	rawLen := count * matrixBytes
	raw := make([]byte, rawLen)
	packed := make([]byte, lz4.CompressBlockBound(rawLen))

	frames := make([][]mgl32.Mat4, 0, min(samples, maxSampleCap))
	index := make([]int, 0, min(samples, maxSampleCap))
	for s := 0; s < samples; s++ {
		var rec [8]byte
		if _, err := io.ReadFull(r, rec[:]); err != nil {
			return nil, nil, fmt.Errorf("%w: sample %d: %v", ErrCorruptFrames, s, err)
		}
		frame := int(binary.LittleEndian.Uint32(rec[0:]))
		size := int(binary.LittleEndian.Uint32(rec[4:]))

		switch {
		case size == 0:
			if _, err := io.ReadFull(r, raw); err != nil {
				return nil, nil, fmt.Errorf("%w: sample %d: %v", ErrCorruptFrames, s, err)
			}
		case size > len(packed):
			return nil, nil, fmt.Errorf("%w: sample %d block of %d bytes", ErrCorruptFrames, s, size)
		default:
			if _, err := io.ReadFull(r, packed[:size]); err != nil {
				return nil, nil, fmt.Errorf("%w: sample %d: %v", ErrCorruptFrames, s, err)
			}
			n, err := lz4.UncompressBlock(packed[:size], raw)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: sample %d: %v", ErrCorruptFrames, s, err)
			}
			if n != rawLen {
				return nil, nil, fmt.Errorf("%w: sample %d decoded %d bytes, want %d", ErrCorruptFrames, s, n, rawLen)
			}
		}

		frames = append(frames, decodeMatrices(raw, count))
		index = append(index, frame)
	}

	return frames, index, nil
}
