// Package audio converts recorded raw PCM into the WAV container the backend
// expects for audio answers: mono, 16-bit, resampled to the configured rate.
package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	wavHeaderSize  = 44
	bytesPerSample = 2
)

// DecodePCM16 interprets raw bytes as little-endian 16-bit mono PCM samples.
func DecodePCM16(data []byte) ([]int16, error) {
	if len(data)%bytesPerSample != 0 {
		return nil, fmt.Errorf("odd PCM byte length %d", len(data))
	}

	samples := make([]int16, len(data)/bytesPerSample)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*bytesPerSample:]))
	}
	return samples, nil
}

// Resample converts samples from one sample rate to another using linear
// interpolation. Rates must be positive; equal rates return the input
// unchanged.
func Resample(samples []int16, from, to int) ([]int16, error) {
	if from <= 0 || to <= 0 {
		return nil, fmt.Errorf("invalid sample rates %d -> %d", from, to)
	}
	if from == to || len(samples) == 0 {
		return samples, nil
	}

	ratio := float64(from) / float64(to)
	outLen := int(float64(len(samples)) / ratio)
	if outLen == 0 {
		outLen = 1
	}

	out := make([]int16, outLen)
	for i := range out {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= len(samples)-1 {
			out[i] = samples[len(samples)-1]
			continue
		}
		frac := pos - float64(idx)
		a := float64(samples[idx])
		b := float64(samples[idx+1])
		out[i] = int16(a + (b-a)*frac)
	}
	return out, nil
}

// EncodeWAV wraps mono 16-bit samples in a RIFF/WAVE container.
func EncodeWAV(samples []int16, sampleRate int) []byte {
	dataSize := len(samples) * bytesPerSample
	buf := bytes.NewBuffer(make([]byte, 0, wavHeaderSize+dataSize))

	byteRate := sampleRate * bytesPerSample

	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16)) // fmt chunk size
	binary.Write(buf, binary.LittleEndian, uint16(1))  // PCM
	binary.Write(buf, binary.LittleEndian, uint16(1))  // mono
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(buf, binary.LittleEndian, uint16(bytesPerSample))   // block align
	binary.Write(buf, binary.LittleEndian, uint16(8*bytesPerSample)) // bits per sample

	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(dataSize))
	for _, s := range samples {
		binary.Write(buf, binary.LittleEndian, s)
	}

	return buf.Bytes()
}

// ConvertPCM is the full answer pipeline: raw PCM bytes in, WAV bytes out.
func ConvertPCM(data []byte, sourceRate, targetRate int) ([]byte, error) {
	samples, err := DecodePCM16(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode PCM: %w", err)
	}

	resampled, err := Resample(samples, sourceRate, targetRate)
	if err != nil {
		return nil, fmt.Errorf("failed to resample: %w", err)
	}

	return EncodeWAV(resampled, targetRate), nil
}
