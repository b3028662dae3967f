// Package log provides the structured logger the handshake driver logs
// through, grounded on the same GetLogger()/With*()/RelayLogger shape the
// teacher's core.GetChannelLogger/GetChannelPairLogger call.
package log

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// GetLogger returns the process-wide zap logger, building a sane
// production default the first time it's called.
func GetLogger() *RelayLogger {
	loggerOnce.Do(func() {
		l, err := zap.NewProduction()
		if err != nil {
			l = zap.NewNop()
		}
		logger = l
	})
	return &RelayLogger{l: logger}
}

// SetLogger overrides the process-wide logger, e.g. with a development
// config from cmd/.
func SetLogger(l *zap.Logger) {
	loggerOnce.Do(func() {})
	logger = l
}

// RelayLogger wraps a zap.Logger and accumulates structured fields that
// identify the channel (or channel pair) a log line concerns.
type RelayLogger struct {
	l      *zap.Logger
	module string
}

// WithModule tags subsequent log lines with the package/component they
// originate from.
func (r *RelayLogger) WithModule(module string) *RelayLogger {
	return &RelayLogger{l: r.l.With(zap.String("module", module)), module: module}
}

// WithChainID tags subsequent log lines with a single chain identity, for
// components (e.g. a concrete ChainHandle) that log outside the context of
// any particular channel.
func (r *RelayLogger) WithChainID(chainID string) *RelayLogger {
	return &RelayLogger{l: r.l.With(zap.String("chain_id", chainID)), module: r.module}
}

// WithChannel tags subsequent log lines with a single chain/port/channel
// identity.
func (r *RelayLogger) WithChannel(chainID, portID, channelID string) *RelayLogger {
	return &RelayLogger{
		l: r.l.With(
			zap.String("chain_id", chainID),
			zap.String("port_id", portID),
			zap.String("channel_id", channelID),
		),
		module: r.module,
	}
}

// WithChannelPair tags subsequent log lines with both sides of a channel
// handshake.
func (r *RelayLogger) WithChannelPair(srcChainID, srcPortID, srcChannelID, dstChainID, dstPortID, dstChannelID string) *RelayLogger {
	return &RelayLogger{
		l: r.l.With(
			zap.String("src_chain_id", srcChainID),
			zap.String("src_port_id", srcPortID),
			zap.String("src_channel_id", srcChannelID),
			zap.String("dst_chain_id", dstChainID),
			zap.String("dst_port_id", dstPortID),
			zap.String("dst_channel_id", dstChannelID),
		),
		module: r.module,
	}
}

func (r *RelayLogger) fields(kvs []interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(kvs)/2)
	for i := 0; i+1 < len(kvs); i += 2 {
		key, ok := kvs[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, kvs[i+1]))
	}
	return fields
}

// Info logs an info-level line with the accumulated fields plus kvs
// (alternating key, value).
func (r *RelayLogger) Info(msg string, kvs ...interface{}) {
	r.l.Info(msg, r.fields(kvs)...)
}

// Debug logs a debug-level line.
func (r *RelayLogger) Debug(msg string, kvs ...interface{}) {
	r.l.Debug(msg, r.fields(kvs)...)
}

// Error logs an error-level line. err, if non-nil, is attached as a field.
func (r *RelayLogger) Error(msg string, err error, kvs ...interface{}) {
	fields := r.fields(kvs)
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	r.l.Error(msg, fields...)
}
