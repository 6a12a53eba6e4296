package services

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/diewo77/gleeful/internal/models"
	"github.com/phpdave11/gofpdf"
	"github.com/pkg/errors"
	"github.com/skip2/go-qrcode"
)

// ReceiptRenderer draws an order receipt as PDF. The core PDF fonts have no
// Cyrillic glyphs, so Russian text is transliterated.
type ReceiptRenderer struct {
	secret []byte
}

func NewReceiptRenderer(secret string) *ReceiptRenderer {
	return &ReceiptRenderer{secret: []byte(secret)}
}

// Payload is the signed reference printed in the QR code:
// gleeful-order|id|total|signature.
func (r *ReceiptRenderer) Payload(o models.Order) string {
	data := fmt.Sprintf("gleeful-order|%d|%s", o.ID, o.TotalPrice.StringFixed(2))
	return data + "|" + r.sign(data)
}

// Verify checks a payload produced by Payload.
func (r *ReceiptRenderer) Verify(payload string) bool {
	i := strings.LastIndex(payload, "|")
	if i < 0 {
		return false
	}
	return hmac.Equal([]byte(payload[i+1:]), []byte(r.sign(payload[:i])))
}

func (r *ReceiptRenderer) sign(data string) string {
	h := hmac.New(sha256.New, r.secret)
	h.Write([]byte(data))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

// Render writes the receipt of o, which should have User and Items.Service loaded.
func (r *ReceiptRenderer) Render(w io.Writer, o models.Order) error {
	qrPNG, err := qrcode.Encode(r.Payload(o), qrcode.Medium, 256)
	if err != nil {
		return errors.Wrap(err, "encode qr")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Gleeful order %d", o.ID), true)
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, "Gleeful")
	pdf.Ln(10)
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, fmt.Sprintf("Order #%d", o.ID))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	if o.User != nil {
		line(pdf, "Customer", o.User.Username)
	}
	line(pdf, "Status", string(o.Status))
	line(pdf, "Phone", o.ContactPhone)
	line(pdf, "Event date", o.EventDate.Format("02.01.2006"))
	line(pdf, "Placed", o.DateCreated.Format("02.01.2006 15:04"))
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(130, 8, "Service", "B", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, "Price, RUB", "B", 1, "R", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	for _, it := range o.Items {
		title := fmt.Sprintf("service #%d", it.ServiceID)
		if it.Service != nil {
			title = it.Service.Title
		}
		pdf.CellFormat(130, 8, Transliterate(title), "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 8, it.PriceAtMoment.StringFixed(2), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(130, 10, "Total", "T", 0, "L", false, 0, "")
	pdf.CellFormat(40, 10, o.TotalPrice.StringFixed(2), "T", 1, "R", false, 0, "")

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 20, 40, 40, false, opts, 0, "")

	if err := pdf.Output(w); err != nil {
		return errors.Wrap(err, "write pdf")
	}
	return nil
}

func line(pdf *gofpdf.Fpdf, label, value string) {
	pdf.Cell(35, 7, label+":")
	pdf.Cell(0, 7, Transliterate(value))
	pdf.Ln(7)
}

var translit = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "e",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "kh", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "shch",
	'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
}

// Transliterate maps Cyrillic to Latin and drops runes the core fonts
// cannot show.
func Transliterate(s string) string {
	var b strings.Builder
	for _, r := range s {
		lower := unicode.ToLower(r)
		if t, ok := translit[lower]; ok {
			if lower != r && t != "" {
				t = strings.ToUpper(t[:1]) + t[1:]
			}
			b.WriteString(t)
			continue
		}
		switch {
		case r < 0x80:
			b.WriteRune(r)
		case r == '«' || r == '»':
			b.WriteByte('"')
		case r == '—' || r == '–':
			b.WriteByte('-')
		}
	}
	return b.String()
}
