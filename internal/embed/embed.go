// Package embed implements the embedding engine: a deterministic, 384-dim,
// L2-normalized sentence encoder facade over either a GPU or CPU device.
//
// The projection below is a deterministic stand-in built on crypto/sha256:
// it keeps the contract downstream code relies on (fixed dimension,
// determinism per input, cosine-ready normalization, thread safety) without
// hosting a model in-process. Swapping in a real encoder only means
// replacing embedOne and probeGPU.
package embed

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
	"sync"
)

// Dimension is the fixed output width of every vector this engine produces.
const Dimension = 384

// Device names the compute device a dry-run forward pass succeeded on.
type Device string

const (
	DeviceGPU Device = "gpu"
	DeviceCPU Device = "cpu"
)

// Engine embeds text into 384-dim, L2-normalized vectors. Safe for
// concurrent use — construction picks a device once and every call is a
// pure function of its input afterward.
type Engine struct {
	mu     sync.Mutex
	device Device
}

// New attempts to select a GPU device via a dry-run forward pass; any
// failure falls back to CPU. The "GPU attempt" is represented by probeGPU,
// which always reports unavailable on this platform and is the single seam
// a CUDA-backed implementation would replace.
func New() *Engine {
	device := DeviceCPU
	if probeGPU() {
		device = DeviceGPU
	}
	return &Engine{device: device}
}

// Device reports which device construction settled on.
func (e *Engine) Device() Device {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.device
}

// Embed returns the 384-dim, L2-normalized embedding of text.
func (e *Engine) Embed(text string) []float32 {
	return embedOne(text)
}

// BatchEmbed embeds every text, preserving order.
func (e *Engine) BatchEmbed(texts []string) [][]float32 {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = embedOne(t)
	}
	return out
}

// embedOne derives a deterministic 384-dim vector from text by expanding a
// SHA-256 digest into a stream of pseudo-random floats (simulating the
// first-token/CLS extraction step) and L2-normalizing the result.
func embedOne(text string) []float32 {
	vec := make([]float32, Dimension)
	stream := deterministicBytes([]byte(text), Dimension*4)

	for i := 0; i < Dimension; i++ {
		u := binary.LittleEndian.Uint32(stream[i*4 : i*4+4])
		vec[i] = float32(u)/float32(math.MaxUint32)*2 - 1
	}

	return l2Normalize(vec)
}

// deterministicBytes expands seed into n pseudo-random bytes by chaining
// SHA-256 over an incrementing counter, standing in for the forward pass
// of a real encoder.
func deterministicBytes(seed []byte, n int) []byte {
	out := make([]byte, 0, n+sha256.Size)
	var counter uint64
	block := seed
	for len(out) < n {
		h := sha256.New()
		h.Write(block)
		var ctr [8]byte
		binary.LittleEndian.PutUint64(ctr[:], counter)
		h.Write(ctr[:])
		sum := h.Sum(nil)
		out = append(out, sum...)
		block = sum
		counter++
	}
	return out[:n]
}

func l2Normalize(vec []float32) []float32 {
	var sumSq float64
	for _, v := range vec {
		sumSq += float64(v) * float64(v)
	}
	norm := math.Sqrt(sumSq)
	if norm == 0 {
		return vec
	}
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out
}

// probeGPU runs the dry-run forward pass that would select a GPU device.
// Always reports false: no GPU runtime is wired into this process.
func probeGPU() bool {
	return false
}
