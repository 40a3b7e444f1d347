package notify

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"flzt_checkin/internal/model"
)

const (
	defaultBarkServer = "https://api.day.app"
	pushTimeout       = 10 * time.Second
)

type BarkProbe struct {
	settings model.BarkSettings
	client   *resty.Client
}

func NewBarkProbe(s model.BarkSettings) *BarkProbe {
	return &BarkProbe{
		settings: s,
		client:   resty.New().SetTimeout(pushTimeout),
	}
}

func (p *BarkProbe) Name() string { return "bark" }

func (p *BarkProbe) Deliver(ctx context.Context, msg Message) (bool, error) {
	base := barkBase(p.settings.Push)
	if base == "" {
		return false, nil
	}
	u := base + "/" + url.PathEscape(msg.Title) + "/" + url.PathEscape(msg.Content)
	resp, err := p.client.R().SetContext(ctx).Get(u)
	if err != nil {
		return false, err
	}
	if resp.StatusCode() != 200 {
		return false, fmt.Errorf("bark: status %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	return true, nil
}

// barkBase accepts either a device key or a full URL that already ends in
// the key.
func barkBase(push string) string {
	push = strings.TrimSpace(push)
	if push == "" {
		return ""
	}
	if strings.HasPrefix(push, "http://") || strings.HasPrefix(push, "https://") {
		return strings.TrimRight(push, "/")
	}
	return defaultBarkServer + "/" + url.PathEscape(push)
}
