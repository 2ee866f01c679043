package loki

import (
	"maps"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap/zapcore"
)

// Core is a zapcore.Core that ships entries to Loki as JSON lines.
type Core struct {
	zapcore.LevelEnabler

	pusher *Pusher
	fields map[string]any
}

// NewCore creates a Core backed by the pusher.
func NewCore(enabler zapcore.LevelEnabler, pusher *Pusher) *Core {
	return &Core{
		LevelEnabler: enabler,
		pusher:       pusher,
		fields:       make(map[string]any),
	}
}

// With returns a Core that adds the fields to every entry.
func (c *Core) With(fields []zapcore.Field) zapcore.Core {
	clone := &Core{
		LevelEnabler: c.LevelEnabler,
		pusher:       c.pusher,
		fields:       maps.Clone(c.fields),
	}

	enc := zapcore.NewMapObjectEncoder()
	for i := range fields {
		fields[i].AddTo(enc)
	}

	maps.Copy(clone.fields, enc.Fields)

	return clone
}

func (c *Core) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}

	return ce
}

// Write encodes the entry and queues it for the pusher.
func (c *Core) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	line, err := encodeEntry(ent, c.fields, fields)
	if err != nil {
		return err
	}

	c.pusher.AddEntry(logEntry{
		timestampNano: ent.Time.UnixNano(),
		line:          line,
	})

	return nil
}

// Sync is a no-op; the pusher flushes on its own schedule and on Stop.
func (c *Core) Sync() error {
	return nil
}

// encodeEntry renders the entry as a flat JSON object. Entry metadata wins over
// fields with the same key.
func encodeEntry(ent zapcore.Entry, base map[string]any, fields []zapcore.Field) (string, error) {
	enc := zapcore.NewMapObjectEncoder()
	for i := range fields {
		fields[i].AddTo(enc)
	}

	payload := make(map[string]any, len(base)+len(enc.Fields)+6)
	maps.Copy(payload, base)
	maps.Copy(payload, enc.Fields)

	payload["level"] = ent.Level.String()
	payload["ts"] = ent.Time.Format(time.RFC3339Nano)
	payload["msg"] = ent.Message

	if ent.LoggerName != "" {
		payload["logger"] = ent.LoggerName
	}

	if ent.Caller.Defined {
		payload["caller"] = ent.Caller.TrimmedPath()
	}

	if ent.Stack != "" {
		payload["stacktrace"] = ent.Stack
	}

	raw, err := sonic.Marshal(payload)
	if err != nil {
		return "", err
	}

	return string(raw), nil
}
