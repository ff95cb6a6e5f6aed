// Package upi builds UPI deep links and their QR codes. There is no
// gateway integration: the customer pays through any UPI app and the
// transaction is verified manually.
package upi

import (
	"encoding/base64"
	"net/url"

	"github.com/shopspring/decimal"
	qrcode "github.com/skip2/go-qrcode"
)

// LinkParams describes one payment request.
type LinkParams struct {
	PayeeVPA    string
	PayeeName   string
	Amount      decimal.Decimal
	ReferenceNo string
	Note        string
}

// BuildLink renders the upi://pay deep link for the params.
func BuildLink(p LinkParams) string {
	values := url.Values{}
	values.Set("pa", p.PayeeVPA)
	values.Set("pn", p.PayeeName)
	values.Set("am", p.Amount.StringFixed(2))
	values.Set("cu", "INR")
	if p.ReferenceNo != "" {
		values.Set("tr", p.ReferenceNo)
	}
	if p.Note != "" {
		values.Set("tn", p.Note)
	}
	return "upi://pay?" + values.Encode()
}

// BuildQR renders the deep link as a base64 PNG data URI suitable for
// an <img> tag.
func BuildQR(p LinkParams, size int) (string, error) {
	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(BuildLink(p), qrcode.Medium, size)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
