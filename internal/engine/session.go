package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"flzt_checkin/internal/logbus"
	"flzt_checkin/internal/model"
	"flzt_checkin/internal/notify"
	"flzt_checkin/internal/provider"
	"flzt_checkin/internal/utils"
)

var (
	ErrAuth            = errors.New("login failed")
	ErrCheckIn         = errors.New("check-in failed")
	ErrInfoUnavailable = errors.New("user info unavailable")
	ErrConversion      = errors.New("traffic conversion failed")
)

const (
	titleLoginFailed   = "FLZT登录失败"
	titleCheckInFailed = "FLZT签到失败"
	titleDone          = "FLZT签到完成"
	titleDoneOK        = "FLZT签到完成 ✅"
	titleDoneWarn      = "FLZT签到完成 ⚠️"

	statusCheckedIn   = "签到成功"
	statusAlreadyDone = "今日已签到过"
)

type Stage string

const (
	StageLogin   Stage = "login"
	StageCheckIn Stage = "checkin"
	StageInfo    Stage = "info"
	StageDone    Stage = "done"
)

// Report describes how far a run got. Err is nil on full success; it wraps
// one of the Err* sentinels otherwise. None of them is fatal to the process.
type Report struct {
	Stage      Stage
	CheckIn    model.CheckInResult
	Info       *model.UserInfo
	Conversion *model.ConversionOutcome
	Err        error
}

type Options struct {
	Credentials model.Credentials
	// Defaults fill in whatever Credentials leaves blank.
	Defaults model.Credentials

	Provider provider.Provider
	Notifier notify.Notifier
	Bus      *logbus.Bus
	Convert  model.ConvertSettings
}

// Session runs the daily workflow for one account: login, check-in, then
// user info and the optional traffic conversion. It sends exactly one
// notification per run.
type Session struct {
	creds    model.Credentials
	account  string
	provider provider.Provider
	notifier notify.Notifier
	bus      *logbus.Bus
	convert  model.ConvertSettings

	token string
}

func New(opts Options) *Session {
	creds := opts.Credentials.WithDefaults(opts.Defaults)
	return &Session{
		creds:    creds,
		account:  utils.MaskEmail(creds.Email),
		provider: opts.Provider,
		notifier: opts.Notifier,
		bus:      opts.Bus,
		convert:  opts.Convert,
	}
}

// Account returns the masked account used in logs and notifications.
func (s *Session) Account() string { return s.account }

func (s *Session) Run(ctx context.Context) Report {
	s.log("info", "开始执行账号", nil)
	defer s.log("info", "账号执行完成", nil)

	token, err := s.provider.Login(ctx, s.creds)
	if err != nil {
		s.log("error", "登录失败", map[string]any{"error": err.Error()})
		s.notify(ctx, titleLoginFailed, fmt.Sprintf("账号: %s\n错误信息: %s", s.account, errorDetail(err)))
		return Report{Stage: StageLogin, Err: fmt.Errorf("%w: %w", ErrAuth, err)}
	}
	s.token = token
	s.log("info", "登录成功", nil)

	res, err := s.provider.CheckIn(ctx, s.token)
	if err != nil {
		res = model.CheckInResult{Status: model.CheckInFailure, Raw: errorDetail(err)}
	}
	if !res.Proceeds() {
		if err == nil {
			err = provider.NewResponseError("check in", 0, []byte(res.Raw), "")
		}
		s.log("error", "签到失败", map[string]any{"error": err.Error()})
		s.notify(ctx, titleCheckInFailed, fmt.Sprintf("账号: %s\n错误信息: %s\n状态: ❌ 失败", s.account, res.Raw))
		return Report{Stage: StageCheckIn, CheckIn: res, Err: fmt.Errorf("%w: %w", ErrCheckIn, err)}
	}

	status := statusCheckedIn
	if res.Status == model.CheckInAlreadyDone {
		status = statusAlreadyDone
		s.log("info", "今日已签到过", map[string]any{"message": res.Message})
	} else {
		s.log("info", "签到成功", map[string]any{"response": res.Raw})
	}
	return s.handleSuccess(ctx, res, status)
}

func (s *Session) handleSuccess(ctx context.Context, res model.CheckInResult, status string) (report Report) {
	report = Report{Stage: StageInfo, CheckIn: res}
	defer func() {
		if r := recover(); r != nil {
			s.log("error", "处理用户信息失败", map[string]any{"panic": fmt.Sprint(r)})
			s.notify(ctx, titleDone, fmt.Sprintf("账号: %s\n%s\n获取用户信息失败", s.account, status))
			report = Report{Stage: StageInfo, CheckIn: res, Err: fmt.Errorf("%w: %v", ErrInfoUnavailable, r)}
		}
	}()

	info, err := s.provider.UserInfo(ctx, s.token)
	if err != nil {
		s.log("warn", "获取用户信息失败", map[string]any{"error": err.Error()})
		s.sendSuccess(ctx, status, "")
		report.Err = fmt.Errorf("%w: %w", ErrInfoUnavailable, err)
		return report
	}
	report.Info = &info

	reward := info.RewardBytes()
	if info.RewardTraffic == nil {
		reward = res.RewardBytes
	}
	if reward > 0 {
		s.log("info", "签到奖励流量", map[string]any{"traffic": utils.AutoFormat(reward)})
	}
	display := s.buildUserInfo(info, status, reward)

	report.Stage = StageDone
	if !s.convert.Enabled || reward <= 0 {
		s.sendSuccess(ctx, status, display)
		return report
	}
	outcome, err := s.convertTraffic(ctx, reward, display)
	report.Conversion = &outcome
	report.Err = err
	return report
}

func (s *Session) buildUserInfo(info model.UserInfo, status string, reward int64) string {
	parts := []string{
		"账号: " + s.account,
		"状态: " + status,
	}
	if remaining, ok := info.Remaining(); ok {
		parts = append(parts,
			"总流量: "+utils.AutoFormat(*info.TransferEnable),
			"已用流量: "+utils.AutoFormat(info.UsedBytes()),
			"剩余流量: "+utils.AutoFormat(remaining),
		)
		if reward > 0 {
			parts = append(parts, "签到奖励: "+utils.AutoFormat(reward))
		}
	}
	return strings.Join(parts, "\n")
}

// PlanConversion decides how much reward traffic to convert. A positive
// fixedMB is capped at the reward; otherwise the whole reward is used. The
// endpoint takes whole MB, so the byte amount is floored.
func PlanConversion(reward, fixedMB int64) model.ConversionOutcome {
	out := model.ConversionOutcome{AmountBytes: reward, Description: "全部"}
	if fixedMB > 0 {
		// compared in MB so a huge fixedMB cannot overflow the byte count
		if fixedMB < utils.BytesToMB(reward) {
			out.AmountBytes = fixedMB * utils.MiB
		}
		out.Description = fmt.Sprintf("%dMB", fixedMB)
	}
	out.AmountMB = utils.BytesToMB(out.AmountBytes)
	return out
}

func (s *Session) convertTraffic(ctx context.Context, reward int64, display string) (model.ConversionOutcome, error) {
	out := PlanConversion(reward, s.convert.AmountMB)
	if out.AmountMB <= 0 {
		out.Status = model.ConversionSkipped
		out.Reason = "amount too small"
		s.log("info", "转换流量过少，跳过转换", map[string]any{"bytes": out.AmountBytes})
		s.notify(ctx, titleDone, display+"\n转换流量: 流量过少，未转换")
		return out, nil
	}

	err := s.provider.ConvertTraffic(ctx, s.token, out.AmountMB)
	if err == nil {
		out.Status = model.ConversionSuccess
		s.log("info", "转换流量成功", map[string]any{"mb": out.AmountMB, "amount": utils.ToUnit(out.AmountBytes, utils.MB)})
		s.notify(ctx, titleDoneOK, fmt.Sprintf("%s\n转换流量: %s (%s) 成功", display, out.Description, utils.AutoFormat(out.AmountBytes)))
		return out, nil
	}

	out.Status = model.ConversionFailure
	out.Reason = errorDetail(err)
	var respErr *provider.ResponseError
	if errors.As(err, &respErr) {
		s.log("warn", "转换流量可能失败", map[string]any{"error": err.Error()})
		s.notify(ctx, titleDoneWarn, fmt.Sprintf("%s\n转换流量: %s 失败\n错误信息: %s", display, out.Description, respErr.Body))
	} else {
		s.log("error", "转换流量失败", map[string]any{"error": err.Error()})
		s.notify(ctx, titleDoneWarn, fmt.Sprintf("%s\n转换流量: 失败\n错误信息: %s", display, err.Error()))
	}
	return out, fmt.Errorf("%w: %w", ErrConversion, err)
}

// sendSuccess falls back to a status-only body when no detail is available.
func (s *Session) sendSuccess(ctx context.Context, status, display string) {
	content := display
	if content == "" {
		content = fmt.Sprintf("账号: %s\n%s", s.account, status)
	}
	s.notify(ctx, titleDoneOK, content)
}

func (s *Session) notify(ctx context.Context, title, content string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, title, content)
}

func (s *Session) log(level, msg string, fields map[string]any) {
	if s.bus == nil {
		return
	}
	out := map[string]any{"account": s.account}
	for k, v := range fields {
		out[k] = v
	}
	s.bus.Log(level, msg, out)
}

// errorDetail prefers the raw response body so the user sees what the
// service actually said.
func errorDetail(err error) string {
	var respErr *provider.ResponseError
	if errors.As(err, &respErr) {
		return respErr.Body
	}
	return err.Error()
}
