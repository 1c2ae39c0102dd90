package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"go-inventory-agent/internal/config"
	"go-inventory-agent/internal/logger"
	"go-inventory-agent/internal/metrics"

	"go.uber.org/zap"
)

// Compression is the outcome of one compression attempt. When Applied is
// false, Text is the input unchanged.
type Compression struct {
	Text             string  `json:"-"`
	Applied          bool    `json:"applied"`
	OriginalTokens   int     `json:"original_tokens"`
	CompressedTokens int     `json:"compressed_tokens"`
	Ratio            float64 `json:"compression_ratio"`
}

// Compressor shrinks assistant context through the Scaledown API. Every
// failure falls back to the original text; skips are counted, never surfaced.
type Compressor struct {
	cfg     config.ScaledownConfig
	client  *http.Client
	log     *zap.Logger
	metrics *metrics.Metrics
}

func NewCompressor(cfg config.ScaledownConfig, log *zap.Logger, m *metrics.Metrics) *Compressor {
	return &Compressor{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		log:     logger.OrNop(log),
		metrics: m,
	}
}

type compressRequest struct {
	Text             string `json:"text"`
	CompressionLevel string `json:"compression_level"`
}

type compressResponse struct {
	CompressedText   string   `json:"compressed_text"`
	OriginalTokens   *int     `json:"original_tokens"`
	CompressedTokens *int     `json:"compressed_tokens"`
	CompressionRatio *float64 `json:"compression_ratio"`
}

func (c *Compressor) Compress(ctx context.Context, text string) Compression {
	if c == nil || c.cfg.APIKey == "" {
		if c != nil {
			c.metrics.CompressionSkipped("no_key")
		}
		return Compression{Text: text}
	}

	out, err := c.call(ctx, text)
	if err != nil {
		reason := skipReason(err)
		c.log.Debug("context compression skipped", zap.String("reason", reason), zap.Error(err))
		c.metrics.CompressionSkipped(reason)
		return Compression{Text: text}
	}
	return out
}

type statusError int

func (e statusError) Error() string { return fmt.Sprintf("scaledown: unexpected status %d", int(e)) }

type decodeError struct{ err error }

func (e decodeError) Error() string { return "scaledown: decode: " + e.err.Error() }
func (e decodeError) Unwrap() error { return e.err }

func (c *Compressor) call(ctx context.Context, text string) (Compression, error) {
	body, err := json.Marshal(compressRequest{Text: text, CompressionLevel: c.cfg.Level})
	if err != nil {
		return Compression{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return Compression{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Compression{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Compression{}, statusError(resp.StatusCode)
	}

	var cr compressResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return Compression{}, decodeError{err}
	}

	out := Compression{Text: cr.CompressedText, Applied: true, Ratio: 1.0}
	if out.Text == "" {
		out.Text = text
	}
	out.OriginalTokens = len(strings.Fields(text))
	if cr.OriginalTokens != nil {
		out.OriginalTokens = *cr.OriginalTokens
	}
	out.CompressedTokens = len(strings.Fields(out.Text))
	if cr.CompressedTokens != nil {
		out.CompressedTokens = *cr.CompressedTokens
	}
	if cr.CompressionRatio != nil {
		out.Ratio = *cr.CompressionRatio
	}
	return out, nil
}

func skipReason(err error) string {
	var (
		se statusError
		de decodeError
		ne net.Error
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &ne) && ne.Timeout():
		return "timeout"
	case errors.As(err, &se):
		return "status"
	case errors.As(err, &de):
		return "decode"
	default:
		return "transport"
	}
}
