package logbus

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type Message struct {
	Type string `json:"type"`
	Time int64  `json:"time"`
	Data any    `json:"data"`
}

type LogData struct {
	Level  string         `json:"level"`
	Msg    string         `json:"msg"`
	Fields map[string]any `json:"fields,omitempty"`
}

// Bus keeps the most recent messages in memory and writes log lines
// through a logrus logger.
type Bus struct {
	mu     sync.RWMutex
	buf    []Message
	cap    int
	base   map[string]any
	out    *logrus.Logger
	closed bool
}

func New(capacity int, out *logrus.Logger) *Bus {
	if capacity <= 0 {
		capacity = 200
	}
	return &Bus{
		cap:  capacity,
		buf:  make([]Message, 0, capacity),
		base: make(map[string]any),
		out:  out,
	}
}

type appNameHook struct {
	appName string
}

func (h *appNameHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *appNameHook) Fire(entry *logrus.Entry) error {
	entry.Message = "[" + h.appName + "] " + entry.Message
	return nil
}

// NewLogger builds the text logger used by the bus. An unknown level falls
// back to info.
func NewLogger(appName, level string, w io.Writer) *logrus.Logger {
	if w == nil {
		w = os.Stdout
	}
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	lvl, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		l.Warnf("Invalid LOG_LEVEL '%s', defaulting to INFO", level)
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	if appName != "" {
		l.AddHook(&appNameHook{appName: appName})
	}
	return l
}

// SetField attaches a field to every later log line, e.g. a run id.
func (b *Bus) SetField(key string, value any) {
	b.mu.Lock()
	b.base[key] = value
	b.mu.Unlock()
}

func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	b.buf = nil
}

func (b *Bus) Snapshot() []Message {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Message, len(b.buf))
	copy(out, b.buf)
	return out
}

func (b *Bus) Publish(typ string, data any) {
	msg := Message{
		Type: typ,
		Time: time.Now().UnixMilli(),
		Data: data,
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	if len(b.buf) < b.cap {
		b.buf = append(b.buf, msg)
	} else if b.cap > 0 {
		copy(b.buf, b.buf[1:])
		b.buf[b.cap-1] = msg
	}
	b.mu.Unlock()
}

func (b *Bus) Log(level, message string, fields map[string]any) {
	b.mu.RLock()
	merged := make(map[string]any, len(b.base)+len(fields))
	for k, v := range b.base {
		merged[k] = v
	}
	b.mu.RUnlock()
	for k, v := range fields {
		merged[k] = v
	}

	b.Publish("log", LogData{Level: level, Msg: message, Fields: merged})
	if b.out == nil {
		return
	}
	b.out.WithFields(logrus.Fields(merged)).Log(parseLevel(level), message)
}

// Logs returns the buffered log entries at the given level ("" for all).
func (b *Bus) Logs(level string) []LogData {
	var out []LogData
	for _, m := range b.Snapshot() {
		d, ok := m.Data.(LogData)
		if !ok {
			continue
		}
		if level == "" || d.Level == level {
			out = append(out, d)
		}
	}
	return out
}

func parseLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
