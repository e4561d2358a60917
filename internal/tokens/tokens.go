// Package tokens counts LLM tokens so compaction savings can be reported in
// the unit that actually costs money.
package tokens

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

// charsPerToken is the rough ratio used when no codec is available.
const charsPerToken = 4

// DefaultEncoding is used when no encoding is configured.
const DefaultEncoding = tokenizer.Cl100kBase

// Counter reports the number of tokens in a piece of text.
type Counter interface {
	Count(text string) int
	Name() string
}

// Estimate returns a rough token count assuming ~4 characters per token.
func Estimate(text string) int {
	if text == "" {
		return 0
	}
	n := len(text) / charsPerToken
	if n == 0 {
		n = 1
	}
	return n
}

// EstimateCounter is a Counter backed by Estimate.
type EstimateCounter struct{}

// Count implements Counter.
func (EstimateCounter) Count(text string) int { return Estimate(text) }

// Name implements Counter.
func (EstimateCounter) Name() string { return "estimate" }

// TiktokenCounter counts tokens with a tiktoken codec.
type TiktokenCounter struct {
	encoding tokenizer.Encoding
	codec    tokenizer.Codec
}

var (
	codecCache = make(map[tokenizer.Encoding]tokenizer.Codec)
	cacheMu    sync.RWMutex
)

func getCodec(encoding tokenizer.Encoding) (tokenizer.Codec, error) {
	cacheMu.RLock()
	if cached, ok := codecCache[encoding]; ok {
		cacheMu.RUnlock()
		return cached, nil
	}
	cacheMu.RUnlock()

	codec, err := tokenizer.Get(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to get tokenizer encoding %q: %w", encoding, err)
	}

	cacheMu.Lock()
	codecCache[encoding] = codec
	cacheMu.Unlock()
	return codec, nil
}

// NewTiktoken returns a counter for the named encoding, e.g. "cl100k_base"
// or "o200k_base". An empty name selects DefaultEncoding.
func NewTiktoken(encoding string) (*TiktokenCounter, error) {
	enc := tokenizer.Encoding(strings.ToLower(strings.TrimSpace(encoding)))
	if enc == "" {
		enc = DefaultEncoding
	}
	codec, err := getCodec(enc)
	if err != nil {
		return nil, err
	}
	return &TiktokenCounter{encoding: enc, codec: codec}, nil
}

// Count implements Counter. Text the codec cannot encode falls back to
// Estimate.
func (c *TiktokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	ids, _, err := c.codec.Encode(text)
	if err != nil {
		return Estimate(text)
	}
	return len(ids)
}

// Name implements Counter.
func (c *TiktokenCounter) Name() string { return string(c.encoding) }

// New returns a tiktoken counter for encoding, or an EstimateCounter when
// the encoding is unknown.
func New(encoding string) Counter {
	c, err := NewTiktoken(encoding)
	if err != nil {
		return EstimateCounter{}
	}
	return c
}
