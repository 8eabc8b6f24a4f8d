package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/skip2/go-qrcode"

	"github.com/Adna-Araujo/Sistema-de-Reservas/internal/model"
)

// PassSigner produces the signed payload printed on a reservation's QR
// pass and checks payloads scanned back at the door.
type PassSigner struct {
	secret []byte
}

func NewPassSigner(secret string) PassSigner { return PassSigner{secret: []byte(secret)} }

// Payload returns "reservation:<id>|room:<id>|<start RFC3339>|<sig>".
func (p PassSigner) Payload(r model.Reservation) string {
	data := fmt.Sprintf("reservation:%d|room:%d|%s", r.ID, r.RoomID, r.StartTime.UTC().Format(time.RFC3339))
	return data + "|" + p.sign(data)
}

// Verify reports whether payload carries a valid signature.
func (p PassSigner) Verify(payload string) bool {
	i := strings.LastIndex(payload, "|")
	if i < 0 {
		return false
	}
	want := p.sign(payload[:i])
	return hmac.Equal([]byte(want), []byte(payload[i+1:]))
}

// PNG encodes the pass payload as a QR code image of size×size pixels.
func (p PassSigner) PNG(r model.Reservation, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	return qrcode.Encode(p.Payload(r), qrcode.Medium, size)
}

func (p PassSigner) sign(data string) string {
	h := hmac.New(sha256.New, p.secret)
	h.Write([]byte(data))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
