package model

type CheckInStatus string

const (
	CheckInSuccess     CheckInStatus = "success"
	CheckInAlreadyDone CheckInStatus = "already_done"
	CheckInFailure     CheckInStatus = "failure"
)

// CheckInResult is the classified check-in response.
type CheckInResult struct {
	Status      CheckInStatus `json:"status"`
	RewardBytes int64         `json:"rewardBytes,omitempty"`
	Message     string        `json:"message,omitempty"`
	Raw         string        `json:"raw,omitempty"`
}

// Proceeds reports whether the run continues to the info step.
// An already-done check-in is treated the same as a fresh one.
func (r CheckInResult) Proceeds() bool {
	return r.Status == CheckInSuccess || r.Status == CheckInAlreadyDone
}

// UserInfo holds the quota fields of the info endpoint. Nil means absent.
type UserInfo struct {
	TransferEnable *int64 `json:"transferEnable,omitempty"`
	Used           *int64 `json:"used,omitempty"`
	RewardTraffic  *int64 `json:"rewardTraffic,omitempty"`
}

func (u UserInfo) UsedBytes() int64 {
	if u.Used == nil {
		return 0
	}
	return *u.Used
}

func (u UserInfo) RewardBytes() int64 {
	if u.RewardTraffic == nil {
		return 0
	}
	return *u.RewardTraffic
}

// Remaining returns total minus used; ok is false when the total is unknown.
func (u UserInfo) Remaining() (int64, bool) {
	if u.TransferEnable == nil {
		return 0, false
	}
	return *u.TransferEnable - u.UsedBytes(), true
}

type ConversionStatus string

const (
	ConversionSkipped ConversionStatus = "skipped"
	ConversionSuccess ConversionStatus = "success"
	ConversionFailure ConversionStatus = "failure"
)

type ConversionOutcome struct {
	Status      ConversionStatus `json:"status"`
	AmountBytes int64            `json:"amountBytes,omitempty"`
	AmountMB    int64            `json:"amountMb,omitempty"`
	Description string           `json:"description,omitempty"`
	Reason      string           `json:"reason,omitempty"`
}
