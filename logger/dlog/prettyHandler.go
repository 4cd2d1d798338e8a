package dlog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/fatih/color"
)

const timeFormat = "[2006-01-02 15:04:05.000]"

var (
	debugColor = color.New(color.FgWhite)
	infoColor  = color.New(color.FgCyan)
	warnColor  = color.New(color.FgHiYellow)
	errorColor = color.New(color.FgHiRed)
	fatalColor = color.New(color.FgHiMagenta)
	timeColor  = color.New(color.FgHiBlack)
	msgColor   = color.New(color.FgHiWhite)
	attrsColor = color.New(color.FgGreen)
)

// Handler prints one human readable line per record, with the attributes as
// indented JSON. Attributes are rendered by an inner JSON handler writing to a
// shared buffer.
type Handler struct {
	h        slog.Handler
	r        func([]string, slog.Attr) slog.Attr
	b        *bytes.Buffer
	m        *sync.Mutex
	writer   io.Writer
	colorize bool
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.h.Enabled(ctx, level)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{h: h.h.WithAttrs(attrs), b: h.b, r: h.r, m: h.m, writer: h.writer, colorize: h.colorize}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{h: h.h.WithGroup(name), b: h.b, r: h.r, m: h.m, writer: h.writer, colorize: h.colorize}
}

func (h *Handler) computeAttrs(
	ctx context.Context,
	r slog.Record,
) (map[string]any, error) {
	h.m.Lock()
	defer func() {
		h.b.Reset()
		h.m.Unlock()
	}()
	if err := h.h.Handle(ctx, r); err != nil {
		return nil, fmt.Errorf("error when calling inner handler's Handle: %w", err)
	}

	var attrs map[string]any
	err := json.Unmarshal(h.b.Bytes(), &attrs)
	if err != nil {
		return nil, fmt.Errorf("error when unmarshaling inner handler's Handle result: %w", err)
	}
	return attrs, nil
}

func (h *Handler) paint(c *color.Color, value string) string {
	if !h.colorize {
		return value
	}
	return c.Sprint(value)
}

func levelColor(level slog.Level) *color.Color {
	switch {
	case level <= slog.LevelDebug:
		return debugColor
	case level < slog.LevelWarn:
		return infoColor
	case level < slog.LevelError:
		return warnColor
	case level <= slog.LevelError+1:
		return errorColor
	default:
		return fatalColor
	}
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	var level string
	levelAttr := slog.Attr{
		Key:   slog.LevelKey,
		Value: slog.AnyValue(r.Level),
	}
	if h.r != nil {
		levelAttr = h.r([]string{}, levelAttr)
	}
	if !levelAttr.Equal(slog.Attr{}) {
		level = h.paint(levelColor(r.Level), levelAttr.Value.String()+":")
	}

	var timestamp string
	timeAttr := slog.Attr{
		Key:   slog.TimeKey,
		Value: slog.StringValue(r.Time.Format(timeFormat)),
	}
	if h.r != nil {
		timeAttr = h.r([]string{}, timeAttr)
	}
	if !timeAttr.Equal(slog.Attr{}) {
		timestamp = h.paint(timeColor, timeAttr.Value.String())
	}

	var msg string
	msgAttr := slog.Attr{
		Key:   slog.MessageKey,
		Value: slog.StringValue(r.Message),
	}
	if h.r != nil {
		msgAttr = h.r([]string{}, msgAttr)
	}
	if !msgAttr.Equal(slog.Attr{}) {
		msg = h.paint(msgColor, msgAttr.Value.String())
	}

	attrs, err := h.computeAttrs(ctx, r)
	if err != nil {
		return err
	}
	var file string
	if source, ok := attrs[slog.SourceKey].(map[string]any); ok {
		if name, ok := source["file"].(string); ok {
			if line, ok := source["line"].(float64); ok {
				name += ":" + strconv.Itoa(int(line))
			}
			file = name
		}
		delete(attrs, slog.SourceKey)
	}

	var jsonBytes []byte
	if len(attrs) > 0 {
		jsonBytes, err = json.MarshalIndent(attrs, "", "  ")
		if err != nil {
			return fmt.Errorf("error when marshaling attrs: %w", err)
		}
	}

	out := strings.Builder{}
	for _, part := range []string{timestamp, level, file, msg} {
		if len(part) > 0 {
			out.WriteString(part)
			out.WriteString(" ")
		}
	}
	if len(jsonBytes) > 0 {
		out.WriteString(h.paint(attrsColor, string(jsonBytes)))
	}

	h.m.Lock()
	defer h.m.Unlock()
	_, err = io.WriteString(h.writer, strings.TrimRight(out.String(), " ")+"\n")
	return err
}

func suppressDefaults(
	next func([]string, slog.Attr) slog.Attr,
) func([]string, slog.Attr) slog.Attr {
	return func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.TimeKey ||
			a.Key == slog.LevelKey ||
			a.Key == slog.MessageKey {
			return slog.Attr{}
		}
		if next == nil {
			return a
		}
		return next(groups, a)
	}
}

func New(handlerOptions *slog.HandlerOptions, options ...Option) *Handler {
	if handlerOptions == nil {
		handlerOptions = &slog.HandlerOptions{}
	}

	buf := &bytes.Buffer{}
	handler := &Handler{
		b: buf,
		h: slog.NewJSONHandler(buf, &slog.HandlerOptions{
			Level:       handlerOptions.Level,
			AddSource:   handlerOptions.AddSource,
			ReplaceAttr: suppressDefaults(handlerOptions.ReplaceAttr),
		}),
		r:      handlerOptions.ReplaceAttr,
		m:      &sync.Mutex{},
		writer: io.Discard,
	}

	for _, opt := range options {
		opt(handler)
	}

	return handler
}

func NewHandler(writer io.Writer, opts *slog.HandlerOptions) *Handler {
	return New(opts, WithDestinationWriter(writer), WithColor())
}

type Option func(h *Handler)

func WithDestinationWriter(writer io.Writer) Option {
	return func(h *Handler) {
		h.writer = writer
	}
}

// WithColor enables colours. They stay off while color.NoColor is set.
func WithColor() Option {
	return func(h *Handler) {
		h.colorize = true
	}
}
