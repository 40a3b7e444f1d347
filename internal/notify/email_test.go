package notify

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"flzt_checkin/internal/model"
)

func TestEmailProbe_NotConfigured(t *testing.T) {
	ok, err := NewEmailProbe(model.EmailSettings{}).Deliver(context.Background(), Message{Title: "t"})
	assert.False(t, ok)
	assert.NoError(t, err)
}

func TestEmailProbe_InvalidSettings(t *testing.T) {
	ok, err := NewEmailProbe(model.EmailSettings{Email: "not-an-address", AuthCode: "x"}).Deliver(context.Background(), Message{Title: "t"})
	assert.False(t, ok)
	assert.EqualError(t, err, "invalid email")

	_, err = NewEmailProbe(model.EmailSettings{Email: "me@qq.com"}).Deliver(context.Background(), Message{Title: "t"})
	assert.EqualError(t, err, "authCode is required")
}

func TestEmailProbe_Sends(t *testing.T) {
	var (
		dialer *gomail.Dialer
		body   bytes.Buffer
	)
	p := NewEmailProbe(model.EmailSettings{Email: "me@qq.com", AuthCode: "code", Name: "签到"})
	p.send = func(d *gomail.Dialer, m ...*gomail.Message) error {
		dialer = d
		require.Len(t, m, 1)
		_, err := m[0].WriteTo(&body)
		return err
	}

	ok, err := p.Deliver(context.Background(), Message{Title: "FLZT签到完成", Content: "账号: m***@qq.com\n状态: 签到成功"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "smtp.qq.com", dialer.Host)
	assert.Equal(t, 465, dialer.Port)
	assert.True(t, dialer.SSL)
	assert.Contains(t, body.String(), "To: me@qq.com")
}

func TestSMTPServer(t *testing.T) {
	host, port, ssl, err := smtpServer(model.EmailSettings{Server: "mail.example.com:587", Email: "a@b.c"})
	require.NoError(t, err)
	assert.Equal(t, "mail.example.com", host)
	assert.Equal(t, 587, port)
	assert.False(t, ssl)

	host, port, ssl, err = smtpServer(model.EmailSettings{Email: "a@gmail.com"})
	require.NoError(t, err)
	assert.Equal(t, "smtp.gmail.com", host)
	assert.Equal(t, 587, port)
	assert.False(t, ssl)

	host, _, ssl, err = smtpServer(model.EmailSettings{Email: "a@corp.example"})
	require.NoError(t, err)
	assert.Equal(t, "smtp.corp.example", host)
	assert.True(t, ssl)

	_, _, _, err = smtpServer(model.EmailSettings{Server: "mail.example.com:abc"})
	assert.Error(t, err)
}

func TestSMTPConfigForEmail(t *testing.T) {
	cases := []struct {
		email string
		host  string
		port  int
		ssl   bool
	}{
		{email: "a@Foxmail.com", host: "smtp.qq.com", port: 465, ssl: true},
		{email: "a@vip.126.com", host: "smtp.163.com", port: 465, ssl: true},
		{email: "a@hotmail.com", host: "smtp.office365.com", port: 587},
		{email: "a@aliyun.com", host: "smtp.aliyun.com", port: 465, ssl: true},
		{email: "a@notqq.com", host: "smtp.notqq.com", port: 465, ssl: true},
	}
	for _, tc := range cases {
		t.Run(tc.email, func(t *testing.T) {
			host, port, ssl, err := smtpConfigForEmail(tc.email)
			require.NoError(t, err)
			assert.Equal(t, tc.host, host)
			assert.Equal(t, tc.port, port)
			assert.Equal(t, tc.ssl, ssl)
		})
	}

	for _, bad := range []string{"", "nobody", "a@", "a@b@c"} {
		_, _, _, err := smtpConfigForEmail(bad)
		assert.Error(t, err, bad)
	}
}

func TestEmailHTMLRendersLines(t *testing.T) {
	var buf bytes.Buffer
	err := emailHTMLTpl.Execute(&buf, struct {
		Title string
		At    string
		Lines []string
	}{Title: "FLZT签到完成", At: "2024-01-02 03:04:05", Lines: []string{"账号: a***@x.com", "状态: 签到成功"}})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "<h3 style=\"margin:0 0 4px;\">FLZT签到完成</h3>")
	assert.Contains(t, buf.String(), "<div>状态: 签到成功</div>")
}
