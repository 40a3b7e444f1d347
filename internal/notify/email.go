package notify

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"net"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"flzt_checkin/internal/model"
)

type EmailProbe struct {
	settings model.EmailSettings
	send     func(d *gomail.Dialer, m ...*gomail.Message) error
}

func NewEmailProbe(s model.EmailSettings) *EmailProbe {
	return &EmailProbe{
		settings: s,
		send: func(d *gomail.Dialer, m ...*gomail.Message) error {
			return d.DialAndSend(m...)
		},
	}
}

func (p *EmailProbe) Name() string { return "email" }

func (p *EmailProbe) Deliver(ctx context.Context, msg Message) (bool, error) {
	s := p.settings
	if strings.TrimSpace(s.Email) == "" && strings.TrimSpace(s.AuthCode) == "" {
		return false, nil
	}
	if err := validateEmailSettings(s); err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	host, port, useSSL, err := smtpServer(s)
	if err != nil {
		return false, err
	}
	m, err := buildEmail(s, msg)
	if err != nil {
		return false, err
	}

	d := gomail.NewDialer(host, port, strings.TrimSpace(s.Email), strings.TrimSpace(s.AuthCode))
	d.SSL = useSSL
	if err := p.send(d, m); err != nil {
		return false, err
	}
	return true, nil
}

func validateEmailSettings(s model.EmailSettings) error {
	email := strings.TrimSpace(s.Email)
	if email == "" {
		return errors.New("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return errors.New("invalid email")
	}
	if strings.TrimSpace(s.AuthCode) == "" {
		return errors.New("authCode is required")
	}
	return nil
}

// smtpServer uses the configured "host:port" when present, otherwise it
// guesses the provider's server from the mailbox domain.
func smtpServer(s model.EmailSettings) (host string, port int, useSSL bool, err error) {
	server := strings.TrimSpace(s.Server)
	if server == "" {
		return smtpConfigForEmail(s.Email)
	}
	h, p, err := net.SplitHostPort(server)
	if err != nil {
		return server, 465, true, nil
	}
	port, err = strconv.Atoi(p)
	if err != nil {
		return "", 0, false, errors.New("invalid smtp port")
	}
	return h, port, s.SSL || port == 465, nil
}

type smtpHost struct {
	domains []string
	host    string
	port    int
	ssl     bool
}

var knownSMTPHosts = []smtpHost{
	{domains: []string{"qq.com", "foxmail.com"}, host: "smtp.qq.com", port: 465, ssl: true},
	{domains: []string{"163.com", "126.com", "yeah.net"}, host: "smtp.163.com", port: 465, ssl: true},
	{domains: []string{"gmail.com"}, host: "smtp.gmail.com", port: 587},
	{domains: []string{"outlook.com", "hotmail.com", "live.com"}, host: "smtp.office365.com", port: 587},
	{domains: []string{"aliyun.com"}, host: "smtp.aliyun.com", port: 465, ssl: true},
}

func smtpConfigForEmail(email string) (host string, port int, useSSL bool, err error) {
	_, domain, ok := strings.Cut(strings.TrimSpace(email), "@")
	domain = strings.ToLower(strings.TrimSpace(domain))
	if !ok || domain == "" || strings.Contains(domain, "@") {
		return "", 0, false, errors.New("invalid email format")
	}
	for _, h := range knownSMTPHosts {
		for _, d := range h.domains {
			if domain == d || strings.HasSuffix(domain, "."+d) {
				return h.host, h.port, h.ssl, nil
			}
		}
	}
	return "smtp." + domain, 465, true, nil
}

var emailHTMLTpl = template.Must(template.New("email").Parse(`<!doctype html>
<html lang="zh-CN">
<head><meta charset="utf-8" /><title>{{ .Title }}</title></head>
<body style="font-family:sans-serif;font-size:14px;line-height:1.7;">
<h3 style="margin:0 0 4px;">{{ .Title }}</h3>
<p style="margin:0 0 12px;color:#888;font-size:12px;">{{ .At }}</p>
{{ range .Lines }}<div>{{ . }}</div>{{ end }}
</body>
</html>
`))

func buildEmail(s model.EmailSettings, msg Message) (*gomail.Message, error) {
	data := struct {
		Title string
		At    string
		Lines []string
	}{
		Title: msg.Title,
		At:    time.Now().Format("2006-01-02 15:04:05"),
		Lines: strings.Split(msg.Content, "\n"),
	}
	var buf bytes.Buffer
	if err := emailHTMLTpl.Execute(&buf, data); err != nil {
		return nil, err
	}

	email := strings.TrimSpace(s.Email)
	name := strings.TrimSpace(s.Name)
	if name == "" {
		name = "签到助手"
	}
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(email, name))
	m.SetHeader("To", email)
	m.SetHeader("Subject", msg.Title)
	m.SetBody("text/plain", msg.Content)
	m.AddAlternative("text/html", buf.String())
	return m, nil
}
