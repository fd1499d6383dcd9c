package templates

import "encoding/json"

// EmailData defines the fields available to email templates.
type EmailData struct {
	Nickname    string `json:"Nickname"`
	Email       string `json:"Email"`
	AppName     string `json:"AppName"`
	CompanyName string `json:"CompanyName"`
	SupportURL  string `json:"SupportURL"`
	VerifyURL   string `json:"VerifyURL"`
	Code        string `json:"Code"`
}

// Brand holds the company fields shared by every email.
type Brand struct {
	AppName     string
	CompanyName string
	SupportURL  string
}

type Option func(*EmailData)

func WithVerifyURL(url string) Option { return func(d *EmailData) { d.VerifyURL = url } }
func WithCode(code string) Option     { return func(d *EmailData) { d.Code = code } }

func NewEmailData(b Brand, nickname, email string, opts ...Option) EmailData {
	d := EmailData{
		Nickname:    nickname,
		Email:       email,
		AppName:     b.AppName,
		CompanyName: b.CompanyName,
		SupportURL:  b.SupportURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// ToMap converts EmailData to a map[string]any for EmailJob.Data
func ToMap(d EmailData) map[string]any {
	b, _ := json.Marshal(d)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}

func NewVerifyEmailData(b Brand, nickname, email, code, verifyURL string) map[string]any {
	return ToMap(NewEmailData(b, nickname, email, WithCode(code), WithVerifyURL(verifyURL)))
}
