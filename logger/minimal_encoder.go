package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

// Everforest Dark palette, trimmed to what the CLI actually prints
const (
	colorReset  = "\x1b[0m"
	colorBold   = "\x1b[1m"
	colorFg     = "\x1b[38;5;223m" // Soft beige (#d3c6aa)
	colorTime   = "\x1b[38;5;107m" // Mid green (#83c092)
	colorName   = "\x1b[38;5;108m" // Bright green (#a7c080)
	colorKey    = "\x1b[38;5;65m"  // Deep green
	colorNumber = "\x1b[38;5;109m" // Blue-green (#7fbbb3)
	colorYellow = "\x1b[38;5;179m" // Soft yellow (#dbbc7f)
	colorRed    = "\x1b[38;5;167m" // Warm red (#e67e80)
	colorRedBg  = "\x1b[48;5;52m"
	colorYelBg  = "\x1b[48;5;58m"
)

var bufferPool = buffer.NewPool()

// minimalEncoder implements a calm, compact console encoder.
// Format: "13:04:35  WARN  t.schema  Unresolved table reference  table=teams"
type minimalEncoder struct {
	zapcore.Encoder // Embedded for the ObjectEncoder methods zap requires
	color           bool
}

func newMinimalEncoder() *minimalEncoder {
	return &minimalEncoder{
		Encoder: zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		color:   true,
	}
}

func (enc *minimalEncoder) Clone() zapcore.Encoder {
	return &minimalEncoder{
		Encoder: enc.Encoder.Clone(),
		color:   enc.color,
	}
}

func (enc *minimalEncoder) paint(color, s string) string {
	if !enc.color || s == "" {
		return s
	}
	return color + s + colorReset
}

func (enc *minimalEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	final := bufferPool.Get()

	final.AppendString(enc.paint(colorTime, ent.Time.Format("15:04:05")))

	// Level: only shown for WARN and above
	if ent.Level >= zapcore.WarnLevel {
		final.AppendString("  ")
		final.AppendString(enc.levelString(ent.Level))
	}

	if ent.LoggerName != "" {
		final.AppendString("  ")
		final.AppendString(enc.paint(colorName, abbreviateName(ent.LoggerName)))
	}

	final.AppendString("  ")
	final.AppendString(enc.paint(colorFg, ent.Message))

	if len(fields) > 0 {
		final.AppendString("  ")
		final.AppendString(enc.formatFields(fields))
	}

	final.AppendString("\n")
	return final, nil
}

func (enc *minimalEncoder) levelString(level zapcore.Level) string {
	if !enc.color {
		return level.CapitalString()
	}
	switch level {
	case zapcore.WarnLevel:
		return colorBold + colorYelBg + colorYellow + "WARN" + colorReset
	default:
		return colorBold + colorRedBg + colorRed + level.CapitalString() + colorReset
	}
}

// abbreviateName shortens component names: typegen.schema -> t.schema
func abbreviateName(name string) string {
	parts := strings.Split(name, ".")
	if len(parts) > 1 && parts[0] != "" {
		return string(parts[0][0]) + "." + strings.Join(parts[1:], ".")
	}
	return name
}

// formatFields renders every field as key=value in call order.
// No field is ever dropped.
func (enc *minimalEncoder) formatFields(fields []zapcore.Field) string {
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		m := zapcore.NewMapObjectEncoder()
		field.AddTo(m)
		value, ok := m.Fields[field.Key]
		if !ok {
			value = field.String
		}

		rendered := fmt.Sprintf("%v", value)
		switch value.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
			rendered = enc.paint(colorNumber, rendered)
		}
		parts = append(parts, enc.paint(colorKey, field.Key+"=")+rendered)
	}
	return strings.Join(parts, " ")
}
