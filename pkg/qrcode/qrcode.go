package qrcode

import (
	"fmt"
	"net/url"

	"github.com/skip2/go-qrcode"
)

// QRService renders invitation QR codes pointing at the public site.
type QRService struct {
	baseURL string
}

func NewQRService(baseURL string) *QRService {
	return &QRService{
		baseURL: baseURL,
	}
}

// InviteURL is the link encoded in the QR code. The access code is prefilled when given.
func (s *QRService) InviteURL(accessCode string) string {
	if accessCode == "" {
		return s.baseURL
	}
	return fmt.Sprintf("%s?code=%s", s.baseURL, url.QueryEscape(accessCode))
}

// GenerateInviteQR returns a PNG of size x size pixels.
func (s *QRService) GenerateInviteQR(accessCode string, size int) ([]byte, error) {
	png, err := qrcode.Encode(s.InviteURL(accessCode), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code PNG: %w", err)
	}
	return png, nil
}
