package snapshot

import (
	"fmt"

	"github.com/arloliu/gridverify/errs"
	"github.com/arloliu/gridverify/format"
	"github.com/arloliu/gridverify/internal/options"
)

// Config controls how a snapshot is written.
type Config struct {
	Compression format.CompressionType
	Encoding    format.EncodingType
	BigEndian   bool
}

// Option is a functional option for Config.
type Option = options.Option[*Config]

func defaultConfig() Config {
	return Config{Compression: format.CompressionZstd, Encoding: format.TypeRaw}
}

// WithCompression selects the payload codec. The default is Zstd.
func WithCompression(c format.CompressionType) Option {
	return options.Check(c, func(c format.CompressionType) error {
		if !c.Valid() {
			return fmt.Errorf("%w: 0x%02x", errs.ErrInvalidCompression, uint8(c))
		}

		return nil
	}, func(cfg *Config, c format.CompressionType) {
		cfg.Compression = c
	})
}

// WithEncoding selects the float column encoding. The default is TypeRaw;
// TypeGorilla usually shrinks converged series before compression.
func WithEncoding(e format.EncodingType) Option {
	return options.Check(e, func(e format.EncodingType) error {
		if !e.Valid() {
			return fmt.Errorf("%w: 0x%02x", errs.ErrInvalidEncoding, uint8(e))
		}

		return nil
	}, func(cfg *Config, e format.EncodingType) {
		cfg.Encoding = e
	})
}

// WithBigEndian writes the header and payload in big-endian byte order.
func WithBigEndian() Option {
	return options.NoError(func(cfg *Config) {
		cfg.BigEndian = true
	})
}
