package dashboard

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"fitpack_admin/internal/models"
)

// ExportHeader is the first row of every orders export
var ExportHeader = []string{"Order ID", "Customer", "Email", "Total Amount", "Status", "Order Date"}

const exportBatchSize = 200

// ExportFilename is orders_export_<YYYY-MM-DD>.csv for the given day
func ExportFilename(now time.Time) string {
	return "orders_export_" + now.Format("2006-01-02") + ".csv"
}

// WriteOrdersCSV streams every order as CSV and returns the number of
// data rows written.
func WriteOrdersCSV(ctx context.Context, w io.Writer, src OrderSource, currency string) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return 0, err
	}

	rows := 0
	err := src.EachOrder(ctx, exportBatchSize, func(batch []models.Order) error {
		for _, o := range batch {
			if err := cw.Write(exportRow(o, currency)); err != nil {
				return err
			}
			rows++
		}
		cw.Flush()
		return cw.Error()
	})
	if err != nil {
		return rows, err
	}

	cw.Flush()
	return rows, cw.Error()
}

func exportRow(o models.Order, currency string) []string {
	var name, email string
	if o.User != nil {
		name = o.User.Name
		email = o.User.Email
	}
	return []string{
		strconv.FormatUint(uint64(o.ID), 10),
		name,
		email,
		currency + FormatAmount(o.TotalAmount),
		TitleCase(string(o.Status)),
		o.CreatedAt.Format("Jan 02, 2006 15:04"),
	}
}

// FormatAmount renders d rounded to two decimals with English digit grouping
func FormatAmount(d decimal.Decimal) string {
	r := d.Round(2)
	_, frac, _ := strings.Cut(r.Abs().StringFixed(2), ".")

	sign := ""
	if r.IsNegative() {
		sign = "-"
	}
	// printers buffer internally and are not shared between goroutines
	return sign + message.NewPrinter(language.English).Sprintf("%d", r.Abs().IntPart()) + "." + frac
}

// TitleCase upper-cases the first letter of each word
func TitleCase(s string) string {
	return cases.Title(language.English, cases.NoLower).String(s)
}
