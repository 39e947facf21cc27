package waveform

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
)

const (
	wavHeaderSize = 44
	bitsPerSample = 16
)

// WriteWAV serializes buf as a 16-bit PCM RIFF/WAVE stream with interleaved
// channels.
func WriteWAV(w io.Writer, buf Buffer) error {
	frames := buf.Len()
	if frames == 0 {
		return ErrEmptyBuffer
	}
	if buf.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", buf.SampleRate)
	}
	channels := len(buf.Channels)
	for i, ch := range buf.Channels {
		if len(ch) != frames {
			return fmt.Errorf("channel %d has %d samples, want %d", i, len(ch), frames)
		}
	}

	blockAlign := channels * bitsPerSample / 8
	dataSize := frames * blockAlign

	header := struct {
		ChunkID       [4]byte
		ChunkSize     uint32
		Format        [4]byte
		Subchunk1ID   [4]byte
		Subchunk1Size uint32
		AudioFormat   uint16
		NumChannels   uint16
		SampleRate    uint32
		ByteRate      uint32
		BlockAlign    uint16
		BitsPerSample uint16
		Subchunk2ID   [4]byte
		Subchunk2Size uint32
	}{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     uint32(wavHeaderSize - 8 + dataSize),
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   1,
		NumChannels:   uint16(channels),
		SampleRate:    uint32(buf.SampleRate),
		ByteRate:      uint32(buf.SampleRate * blockAlign),
		BlockAlign:    uint16(blockAlign),
		BitsPerSample: bitsPerSample,
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: uint32(dataSize),
	}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("write wav header: %w", err)
	}

	pcm := make([]byte, dataSize)
	off := 0
	for i := 0; i < frames; i++ {
		for _, ch := range buf.Channels {
			binary.LittleEndian.PutUint16(pcm[off:], uint16(toPCM16(ch[i])))
			off += 2
		}
	}
	if _, err := w.Write(pcm); err != nil {
		return fmt.Errorf("write wav data: %w", err)
	}
	return nil
}

// EncodeWAV returns the WAV serialization of buf.
func EncodeWAV(buf Buffer) ([]byte, error) {
	var out bytes.Buffer
	out.Grow(wavHeaderSize + buf.Len()*len(buf.Channels)*2)
	if err := WriteWAV(&out, buf); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// DataURL encodes buf as a playable data: URL for renderers that only accept
// a source location.
func DataURL(buf Buffer) (string, error) {
	data, err := EncodeWAV(buf)
	if err != nil {
		return "", err
	}
	return "data:audio/wav;base64," + base64.StdEncoding.EncodeToString(data), nil
}

// toPCM16 scales negative samples by 0x8000 and positive ones by 0x7FFF so
// both ends of the range map exactly.
func toPCM16(s float32) int16 {
	if s > 1 {
		s = 1
	} else if s < -1 {
		s = -1
	}
	if s < 0 {
		return int16(s * 0x8000)
	}
	return int16(s * 0x7FFF)
}
