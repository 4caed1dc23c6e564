package audio_test

import (
	"bytes"
	"encoding/binary"
)

// pcmWAV builds a 16-bit mono PCM RIFF payload holding the given number of
// silent samples.
func pcmWAV(sampleRate, samples int) []byte {
	const (
		bitsPerSample = 16
		channels      = 1
		fmtChunkSize  = 16
		pcmFormatType = 1
	)

	blockAlign := channels * bitsPerSample / 8
	dataSize := samples * blockAlign

	var buf bytes.Buffer

	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(fmtChunkSize))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(pcmFormatType))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*blockAlign))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	buf.Write(make([]byte, dataSize))

	return buf.Bytes()
}
