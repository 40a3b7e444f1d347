package standard

import (
	"context"
	"fmt"
	"net/http/cookiejar"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"flzt_checkin/internal/config"
	"flzt_checkin/internal/logbus"
	"flzt_checkin/internal/model"
	"flzt_checkin/internal/provider"
)

const (
	loginPath   = "/api/v1/passport/auth/login"
	checkInPath = "/api/v1/user/checkIn"
	infoPath    = "/api/v1/user/info"
	// the check-in endpoint doubles as the traffic conversion endpoint
	convertPath = "/api/v1/user/checkIn"
)

// StandardProvider keeps one resty client, and with it one cookie jar, for
// the lifetime of a run.
type StandardProvider struct {
	cfg     config.ProviderConfig
	bus     *logbus.Bus
	client  *resty.Client
	limiter *rate.Limiter
}

func New(cfg config.ProviderConfig, bus *logbus.Bus) (*StandardProvider, error) {
	p := &StandardProvider{cfg: cfg, bus: bus}
	client, err := p.newClient()
	if err != nil {
		return nil, err
	}
	p.client = client
	if d := cfg.MinInterval(); d > 0 {
		p.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
	return p, nil
}

func (p *StandardProvider) Name() string { return "standard" }

type loginData struct {
	AuthData string `json:"auth_data"`
}

func (p *StandardProvider) Login(ctx context.Context, creds model.Credentials) (string, error) {
	req, err := p.request(ctx, "")
	if err != nil {
		return "", err
	}
	resp, err := req.
		SetFormData(map[string]string{
			"email":    creds.Email,
			"password": creds.Password,
		}).
		Post(loginPath)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}

	body := resp.Body()
	env, err := decodeEnvelope(body)
	if err != nil {
		return "", provider.NewResponseError("login", resp.StatusCode(), body, "invalid json")
	}
	if !isObject(env.Data) {
		return "", provider.NewResponseError("login", resp.StatusCode(), body, "")
	}
	var data loginData
	if err := unmarshal(env.Data, &data); err != nil || strings.TrimSpace(data.AuthData) == "" {
		return "", provider.NewResponseError("login", resp.StatusCode(), body, "")
	}
	return data.AuthData, nil
}

func (p *StandardProvider) CheckIn(ctx context.Context, token string) (model.CheckInResult, error) {
	req, err := p.request(ctx, token)
	if err != nil {
		return model.CheckInResult{}, err
	}
	resp, err := req.Get(checkInPath)
	if err != nil {
		return model.CheckInResult{}, fmt.Errorf("check in: %w", err)
	}

	body := resp.Body()
	env, err := decodeEnvelope(body)
	if err != nil {
		return model.CheckInResult{}, provider.NewResponseError("check in", resp.StatusCode(), body, "invalid json")
	}
	return classifyCheckIn(env, body), nil
}

func classifyCheckIn(env envelope, body []byte) model.CheckInResult {
	raw := string(body)
	switch {
	case truthy(env.Data):
		return model.CheckInResult{
			Status:      model.CheckInSuccess,
			RewardBytes: rewardFromData(env.Data),
			Message:     env.Message,
			Raw:         raw,
		}
	case env.Status == "fail" && strings.Contains(strings.ToLower(env.Message), "already checked in"):
		return model.CheckInResult{Status: model.CheckInAlreadyDone, Message: env.Message, Raw: raw}
	default:
		return model.CheckInResult{Status: model.CheckInFailure, Message: env.Message, Raw: raw}
	}
}

// rewardFromData looks for a reward quantity in a check-in payload object.
// Any other payload carries no reward.
func rewardFromData(data []byte) int64 {
	if !isObject(data) {
		return 0
	}
	fields, err := objectFields(data)
	if err != nil {
		return 0
	}
	for _, key := range []string{"checkin_reward_traffic", "reward_traffic", "reward", "traffic"} {
		if v, ok, err := intField(fields, key); err == nil && ok {
			return v
		}
	}
	return 0
}

func (p *StandardProvider) UserInfo(ctx context.Context, token string) (model.UserInfo, error) {
	req, err := p.request(ctx, token)
	if err != nil {
		return model.UserInfo{}, err
	}
	resp, err := req.Get(infoPath)
	if err != nil {
		return model.UserInfo{}, fmt.Errorf("user info: %w", err)
	}

	body := resp.Body()
	env, err := decodeEnvelope(body)
	if err != nil {
		return model.UserInfo{}, provider.NewResponseError("user info", resp.StatusCode(), body, "invalid json")
	}
	if !truthy(env.Data) || !isObject(env.Data) {
		return model.UserInfo{}, provider.NewResponseError("user info", resp.StatusCode(), body, "no data")
	}
	fields, err := objectFields(env.Data)
	if err != nil {
		return model.UserInfo{}, provider.NewResponseError("user info", resp.StatusCode(), body, "invalid data")
	}

	var info model.UserInfo
	for _, f := range []struct {
		key string
		dst **int64
		// zero values count as absent for the total, as the service
		// reports 0 for accounts without a plan
		zeroAbsent bool
	}{
		{key: "transfer_enable", dst: &info.TransferEnable, zeroAbsent: true},
		{key: "used", dst: &info.Used},
		{key: "checkin_reward_traffic", dst: &info.RewardTraffic},
	} {
		v, ok, err := intField(fields, f.key)
		if err != nil {
			return model.UserInfo{}, provider.NewResponseError("user info", resp.StatusCode(), body, err.Error())
		}
		if !ok || (f.zeroAbsent && v == 0) {
			continue
		}
		n := v
		*f.dst = &n
	}
	return info, nil
}

func (p *StandardProvider) ConvertTraffic(ctx context.Context, token string, mb int64) error {
	req, err := p.request(ctx, token)
	if err != nil {
		return err
	}
	resp, err := req.
		SetFormData(map[string]string{"transfer": strconv.FormatInt(mb, 10)}).
		Post(convertPath)
	if err != nil {
		return fmt.Errorf("convert traffic: %w", err)
	}

	body := resp.Body()
	env, err := decodeEnvelope(body)
	if err != nil {
		return provider.NewResponseError("convert traffic", resp.StatusCode(), body, "invalid json")
	}
	if !truthy(env.Data) {
		return provider.NewResponseError("convert traffic", resp.StatusCode(), body, "")
	}
	return nil
}

func (p *StandardProvider) request(ctx context.Context, token string) (*resty.Request, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	req := p.client.R().SetContext(ctx)
	if token != "" {
		req.SetHeader("Authorization", token)
	}
	return req, nil
}

func (p *StandardProvider) newClient() (*resty.Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	client := resty.New().
		SetBaseURL(p.cfg.BaseURL).
		SetTimeout(p.cfg.Timeout()).
		SetCookieJar(jar).
		SetHeader("User-Agent", p.cfg.UserAgent)

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if p.bus != nil {
			p.bus.Log("debug", "http request", map[string]any{
				"method": req.Method,
				"url":    req.URL,
			})
		}
		return nil
	})
	client.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		if p.bus != nil {
			p.bus.Log("debug", "http response", map[string]any{
				"url":    resp.Request.URL,
				"status": resp.StatusCode(),
				"took":   resp.Time().String(),
			})
		}
		return nil
	})

	return client, nil
}
