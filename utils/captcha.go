package utils

import (
	"errors"
	"time"

	"lms/config"

	"github.com/go-resty/resty/v2"
)

type captchaVerifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// VerifyCaptcha проверяет токен капчи на стороне сервера.
// Если секрет не настроен, проверка пропускается (локальная разработка).
func VerifyCaptcha(cfg *config.Config, token string) error {
	if cfg.CaptchaSecret == "" {
		return nil
	}
	if token == "" {
		return errors.New("captcha token is required")
	}

	client := resty.New().SetTimeout(10 * time.Second)

	var result captchaVerifyResponse
	resp, err := client.R().
		SetFormData(map[string]string{
			"secret":   cfg.CaptchaSecret,
			"response": token,
		}).
		SetResult(&result).
		Post(cfg.CaptchaVerifyURL)
	if err != nil {
		return errors.New("captcha verification unavailable")
	}

	if !resp.IsSuccess() || !result.Success {
		return errors.New("captcha verification failed")
	}

	return nil
}
