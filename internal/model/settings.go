package model

// ConvertSettings controls the optional reward-to-quota conversion.
type ConvertSettings struct {
	Enabled bool `json:"enabled" yaml:"enabled"`

	// AmountMB 每次转换的固定额度（MB），0 表示转换全部签到奖励。
	AmountMB int64 `json:"amountMb" yaml:"amountMb"`
}

type BarkSettings struct {
	// Push is either a bare device key or a full server URL ending in the key.
	Push string `json:"push" yaml:"push"`
}

type TelegramSettings struct {
	BotToken string `json:"botToken" yaml:"botToken"`
	UserID   int64  `json:"userId" yaml:"userId"`

	// APIHost 自建的 Bot API 反代地址，留空使用官方地址。
	APIHost string `json:"apiHost,omitempty" yaml:"apiHost"`
}

type EmailSettings struct {
	Server   string `json:"server" yaml:"server"`
	SSL      bool   `json:"ssl" yaml:"ssl"`
	Email    string `json:"email" yaml:"email"`
	AuthCode string `json:"authCode,omitempty" yaml:"authCode"`
	Name     string `json:"name,omitempty" yaml:"name"`
}

type NotifySettings struct {
	Bark     BarkSettings     `json:"bark" yaml:"bark"`
	Telegram TelegramSettings `json:"telegram" yaml:"telegram"`
	Email    EmailSettings    `json:"email" yaml:"email"`
}
