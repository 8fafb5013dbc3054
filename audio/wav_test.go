package audio

import (
	"encoding/binary"
	"testing"
)

func TestDecodePCM16(t *testing.T) {
	samples, err := DecodePCM16([]byte{0x01, 0x00, 0xFF, 0xFF})
	if err != nil {
		t.Fatalf("DecodePCM16 failed: %v", err)
	}
	if len(samples) != 2 || samples[0] != 1 || samples[1] != -1 {
		t.Errorf("unexpected samples: %v", samples)
	}

	if _, err := DecodePCM16([]byte{0x01}); err == nil {
		t.Error("odd byte length accepted")
	}
}

func TestResample(t *testing.T) {
	tests := []struct {
		name      string
		inLen     int
		from, to  int
		expectLen int
		expectErr bool
	}{
		{name: "identity", inLen: 100, from: 16000, to: 16000, expectLen: 100},
		{name: "downsample to one third", inLen: 300, from: 48000, to: 16000, expectLen: 100},
		{name: "44.1k to 16k", inLen: 441, from: 44100, to: 16000, expectLen: 160},
		{name: "upsample doubles", inLen: 50, from: 8000, to: 16000, expectLen: 100},
		{name: "zero source rate", inLen: 10, from: 0, to: 16000, expectErr: true},
		{name: "negative target rate", inLen: 10, from: 16000, to: -1, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := make([]int16, tt.inLen)
			for i := range in {
				in[i] = int16(i)
			}

			out, err := Resample(in, tt.from, tt.to)
			if tt.expectErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Resample failed: %v", err)
			}
			if len(out) != tt.expectLen {
				t.Errorf("output length = %d, want %d", len(out), tt.expectLen)
			}
		})
	}
}

func TestResampleInterpolates(t *testing.T) {
	// Doubling the rate must place interpolated values between neighbors
	out, err := Resample([]int16{0, 100}, 8000, 16000)
	if err != nil {
		t.Fatalf("Resample failed: %v", err)
	}
	if len(out) != 4 {
		t.Fatalf("output length = %d, want 4", len(out))
	}
	if out[1] != 50 {
		t.Errorf("midpoint not interpolated: %v", out)
	}
}

func TestEncodeWAVHeader(t *testing.T) {
	samples := []int16{1, 2, 3, 4}
	wav := EncodeWAV(samples, 16000)

	if len(wav) != 44+len(samples)*2 {
		t.Fatalf("container length = %d, want %d", len(wav), 44+len(samples)*2)
	}

	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Error("RIFF/WAVE magic missing")
	}
	if string(wav[12:16]) != "fmt " || string(wav[36:40]) != "data" {
		t.Error("fmt/data chunk markers missing")
	}

	if ch := binary.LittleEndian.Uint16(wav[22:24]); ch != 1 {
		t.Errorf("channels = %d, want mono", ch)
	}
	if rate := binary.LittleEndian.Uint32(wav[24:28]); rate != 16000 {
		t.Errorf("sample rate = %d", rate)
	}
	if bits := binary.LittleEndian.Uint16(wav[34:36]); bits != 16 {
		t.Errorf("bits per sample = %d", bits)
	}
	if size := binary.LittleEndian.Uint32(wav[40:44]); size != uint32(len(samples)*2) {
		t.Errorf("data size = %d, want %d", size, len(samples)*2)
	}
}

func TestConvertPCM(t *testing.T) {
	pcm := make([]byte, 882) // 441 samples at 44.1kHz
	wav, err := ConvertPCM(pcm, 44100, 16000)
	if err != nil {
		t.Fatalf("ConvertPCM failed: %v", err)
	}

	size := binary.LittleEndian.Uint32(wav[40:44])
	if size != 160*2 {
		t.Errorf("resampled data size = %d, want %d", size, 160*2)
	}

	if _, err := ConvertPCM([]byte{0x01}, 44100, 16000); err == nil {
		t.Error("odd PCM input accepted")
	}
}
