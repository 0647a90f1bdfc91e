package services

import (
	"encoding/csv"
	"io"
	"time"

	"campaign/internal/models"
)

// ReportDateLayout renders dates as "Mon D, YYYY".
const ReportDateLayout = "Jan 2, 2006"

// ReportColumns is the header of the exported campaign report.
var ReportColumns = []string{
	"Name", "Email", "PhoneNumber", "Location", "Country",
	"RegistrationDate", "VoucherCode", "VoucherWinDate",
}

// Reporter projects the ledger and voucher inventory for the admin dashboard.
// It never mutates either.
type Reporter struct {
	ledger    *AwardLedger
	inventory *VoucherInventory
	locations []models.Location
}

func NewReporter(ledger *AwardLedger, inventory *VoucherInventory, locations []models.Location) *Reporter {
	return &Reporter{ledger: ledger, inventory: inventory, locations: locations}
}

// Summarize counts participants per location and vouchers by redemption state.
func (r *Reporter) Summarize() models.Summary {
	entries := r.ledger.Entries()

	byLocation := make(map[string]int)
	for _, e := range entries {
		byLocation[e.Profile.LocationID]++
	}

	perLocation := make([]models.LocationCount, 0, len(r.locations))
	known := make(map[string]bool, len(r.locations))
	for _, loc := range r.locations {
		known[loc.ID] = true
		perLocation = append(perLocation, models.LocationCount{
			LocationID:   loc.ID,
			LocationName: loc.Name,
			Count:        byLocation[loc.ID],
		})
	}
	for _, e := range entries {
		id := e.Profile.LocationID
		if known[id] {
			continue
		}
		known[id] = true
		perLocation = append(perLocation, models.LocationCount{
			LocationID:   id,
			LocationName: e.Profile.LocationName,
			Count:        byLocation[id],
		})
	}

	var total, redeemed int
	if r.inventory != nil {
		total, redeemed = r.inventory.Counts()
	}
	var rate float64
	if total > 0 {
		rate = float64(redeemed) / float64(total)
	}

	return models.Summary{
		TotalParticipants: len(entries),
		PerLocation:       perLocation,
		TotalVouchers:     total,
		RedeemedVouchers:  redeemed,
		RedemptionRate:    rate,
	}
}

// ReportRows returns one export row per ledger entry, in grant order.
func (r *Reporter) ReportRows() []models.ReportRow {
	entries := r.ledger.Entries()
	rows := make([]models.ReportRow, 0, len(entries))
	for _, e := range entries {
		location := e.Profile.LocationName
		if location == "" {
			location = "Unknown"
		}
		country := e.Profile.Country
		if country == "" {
			country = "Unknown"
		}
		rows = append(rows, models.ReportRow{
			Name:             e.Profile.Name,
			Email:            e.Profile.Email,
			PhoneNumber:      e.Profile.Phone,
			Location:         location,
			Country:          country,
			RegistrationDate: e.Profile.CreatedAt,
			VoucherCode:      e.VoucherCode,
			VoucherWinDate:   e.Result.DrawnAt,
		})
	}
	return rows
}

// WriteReportCSV writes rows with a UTF-8 BOM so spreadsheet apps pick the right encoding.
// Fields containing commas are quoted by the csv writer.
func WriteReportCSV(w io.Writer, rows []models.ReportRow) error {
	if _, err := w.Write([]byte("\xef\xbb\xbf")); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(ReportColumns); err != nil {
		return err
	}
	for _, row := range rows {
		code := row.VoucherCode
		if code == "" {
			code = "N/A"
		}
		record := []string{
			row.Name,
			row.Email,
			row.PhoneNumber,
			row.Location,
			row.Country,
			formatReportDate(row.RegistrationDate),
			code,
			formatReportDate(row.VoucherWinDate),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatReportDate(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format(ReportDateLayout)
}
