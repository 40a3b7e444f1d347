package notify

import (
	"context"
	"fmt"

	"flzt_checkin/internal/logbus"
	"flzt_checkin/internal/model"
)

// Notifier delivers a titled plain-text message. It never fails from the
// caller's point of view; delivery problems are logged.
type Notifier interface {
	Notify(ctx context.Context, title, content string)
}

type Message struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Probe is one delivery channel. Deliver reports false with a nil error when
// the channel is not configured.
type Probe interface {
	Name() string
	Deliver(ctx context.Context, msg Message) (bool, error)
}

// Chain echoes every message to the log, then tries its probes in order and
// stops at the first one that delivers.
type Chain struct {
	bus    *logbus.Bus
	probes []Probe
}

func NewChain(bus *logbus.Bus, probes ...Probe) *Chain {
	return &Chain{bus: bus, probes: probes}
}

// FromSettings builds the default chain: Bark, Telegram, then e-mail.
func FromSettings(s model.NotifySettings, bus *logbus.Bus) *Chain {
	return NewChain(bus,
		NewBarkProbe(s.Bark),
		NewTelegramProbe(s.Telegram),
		NewEmailProbe(s.Email),
	)
}

func (c *Chain) Notify(ctx context.Context, title, content string) {
	msg := Message{Title: title, Content: content}
	c.log("info", "推送通知："+title, map[string]any{"content": content})

	for _, p := range c.probes {
		ok, err := deliver(ctx, p, msg)
		if err != nil {
			c.log("warn", "推送失败", map[string]any{"channel": p.Name(), "error": err.Error()})
			continue
		}
		if ok {
			c.log("info", "推送成功", map[string]any{"channel": p.Name()})
			return
		}
	}
	c.log("debug", "未配置可用的推送渠道，仅输出到日志", nil)
}

func deliver(ctx context.Context, p Probe, msg Message) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok, err = false, fmt.Errorf("panic: %v", r)
		}
	}()
	return p.Deliver(ctx, msg)
}

func (c *Chain) log(level, msg string, fields map[string]any) {
	if c.bus != nil {
		c.bus.Log(level, msg, fields)
	}
}

// Func adapts a plain function to Notifier.
type Func func(ctx context.Context, title, content string)

func (f Func) Notify(ctx context.Context, title, content string) { f(ctx, title, content) }
