// Package receipt renders booking receipts as PDF documents on local disk.
package receipt

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"

	"github.com/iliyamo/campusnest/internal/model"
)

// ErrIO is wrapped by every error caused by writing the document.
var ErrIO = errors.New("receipt: write failed")

// Disclaimer is printed at the foot of every receipt.
const Disclaimer = "This is a demo receipt. No real payment was processed."

// Snapshot is the booking, seeker and PG data printed on a receipt, taken at
// the time the booking was created.
type Snapshot struct {
	BookingID   uint64
	SeekerName  string
	SeekerEmail string
	PGName      string
	PGArea      string
	Sharing     model.Sharing
	Months      int
	Amount      int64
	PaymentRef  string
}

// Generator writes receipts to Dir as <bookingID>.pdf.  BaseURL is the public
// prefix under which Dir is served.
type Generator struct {
	Dir     string
	BaseURL string
	now     func() time.Time
}

func NewGenerator(dir, baseURL string) *Generator {
	return &Generator{Dir: dir, BaseURL: baseURL, now: time.Now}
}

// FileName is the stable per-booking file name.
func FileName(bookingID uint64) string {
	return strconv.FormatUint(bookingID, 10) + ".pdf"
}

// URL returns the public locator of a receipt file.  BaseURL may be a path
// prefix ("/receipts") or an absolute URL ("https://cdn.example/receipts").
func (g *Generator) URL(fileName string) string {
	base := strings.TrimRight(g.BaseURL, "/")
	if !strings.Contains(base, "://") && !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	return base + "/" + fileName
}

// Generate renders s into Dir, overwriting an earlier receipt for the same
// booking.
func (g *Generator) Generate(s Snapshot) (model.Receipt, error) {
	if err := os.MkdirAll(g.Dir, 0o755); err != nil {
		return model.Receipt{}, fmt.Errorf("%w: %v", ErrIO, err)
	}
	return Write(s, filepath.Join(g.Dir, FileName(s.BookingID)), g.now().UTC())
}

// Write renders s to outPath.  The document is written to a temporary file
// in the same directory and renamed into place, so readers never see a
// partial receipt.
func Write(s Snapshot, outPath string, at time.Time) (model.Receipt, error) {
	rc := model.Receipt{
		BookingID:   s.BookingID,
		ReceiptNo:   uuid.NewString(),
		FileName:    filepath.Base(outPath),
		Amount:      s.Amount,
		PGName:      s.PGName,
		PGArea:      s.PGArea,
		Sharing:     s.Sharing,
		SeekerName:  s.SeekerName,
		SeekerEmail: s.SeekerEmail,
		GeneratedAt: at,
	}

	pdf := render(s, rc)
	if err := pdf.Error(); err != nil {
		return model.Receipt{}, fmt.Errorf("render: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(outPath), ".receipt-*.pdf")
	if err != nil {
		return model.Receipt{}, fmt.Errorf("%w: %v", ErrIO, err)
	}
	tmpName := tmp.Name()
	if err := pdf.Output(tmp); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return model.Receipt{}, fmt.Errorf("%w: %v", ErrIO, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return model.Receipt{}, fmt.Errorf("%w: %v", ErrIO, err)
	}
	if err := os.Rename(tmpName, outPath); err != nil {
		_ = os.Remove(tmpName)
		return model.Receipt{}, fmt.Errorf("%w: %v", ErrIO, err)
	}
	return rc, nil
}

func render(s Snapshot, rc model.Receipt) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Booking receipt "+strconv.FormatUint(s.BookingID, 10), false)
	pdf.SetCreationDate(rc.GeneratedAt)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, "CampusNest Booking Receipt", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	rows := [][2]string{
		{"Receipt No", rc.ReceiptNo},
		{"Booking ID", strconv.FormatUint(s.BookingID, 10)},
		{"Name", s.SeekerName},
		{"Email", s.SeekerEmail},
		{"PG", s.PGName},
		{"Area", s.PGArea},
		{"Sharing", string(s.Sharing)},
		{"Months", strconv.Itoa(s.Months)},
		{"Amount", "INR " + strconv.FormatInt(s.Amount, 10)},
		{"Generated", rc.GeneratedAt.Format(time.RFC1123)},
	}
	if s.PaymentRef != "" {
		rows = append(rows, [2]string{"Payment Ref", s.PaymentRef})
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("") // cp1252
	for _, r := range rows {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(40, 8, r[0], "1", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 8, tr(r[1]), "1", 1, "L", false, 0, "")
	}

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, Disclaimer, "", "L", false)
	return pdf
}
