package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"campaign/internal/models"

	"github.com/google/logger"
	"github.com/google/uuid"
)

// RequiredVoucherColumns is the exact, case-sensitive header a voucher CSV must carry.
var RequiredVoucherColumns = []string{"Country", "Location", "VoucherType", "RedeemCode", "Quantity"}

const (
	// MaxVoucherQuantity caps the Quantity of a single row.
	MaxVoucherQuantity = 10000
	// MaxVoucherBatch caps the vouchers one upload may create.
	MaxVoucherBatch = 100000
)

// VoucherBatch is a parsed upload: the header tokens and the data rows in file order.
type VoucherBatch struct {
	Header []string
	Rows   []models.VoucherBatchRow
}

// ParseVoucherCSV splits an uploaded file into a batch.
// Only the header schema is checked here; row values are checked by Ingest.
func ParseVoucherCSV(r io.Reader) (*VoucherBatch, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyBatch
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}
	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	batch := &VoucherBatch{Header: header}
	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			return nil, &RowFormatError{Row: row, Err: err}
		}
		if isBlank(record) {
			row--
			continue
		}
		if len(record) < len(header) {
			return nil, &RowFormatError{Row: row}
		}
		batch.Rows = append(batch.Rows, models.VoucherBatchRow{
			Country:      strings.TrimSpace(record[idx["Country"]]),
			LocationName: strings.TrimSpace(record[idx["Location"]]),
			VoucherType:  strings.TrimSpace(record[idx["VoucherType"]]),
			RedeemCode:   strings.TrimSpace(record[idx["RedeemCode"]]),
			Quantity:     strings.TrimSpace(record[idx["Quantity"]]),
		})
	}
	return batch, nil
}

// columnIndex maps every required column to its position in header.
func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(RequiredVoucherColumns))
	for i, h := range header {
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	var missing []string
	for _, col := range RequiredVoucherColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}
	return idx, nil
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// VoucherInventory owns every uploaded voucher, keyed by code.
type VoucherInventory struct {
	mu       sync.RWMutex
	vouchers map[string]*models.VoucherRecord
	order    []string
	now      func() time.Time
}

// NewVoucherInventory creates an empty inventory.
func NewVoucherInventory() *VoucherInventory {
	return &VoucherInventory{
		vouchers: make(map[string]*models.VoucherRecord),
		now:      time.Now,
	}
}

// Ingest validates a whole batch and commits it, or commits nothing.
// It returns the number of voucher records created.
func (inv *VoucherInventory) Ingest(batch *VoucherBatch) (int, error) {
	if batch == nil || len(batch.Rows) == 0 {
		return 0, ErrEmptyBatch
	}
	if _, err := columnIndex(batch.Header); err != nil {
		return 0, err
	}

	type pending struct {
		row   models.VoucherBatchRow
		codes []string
	}
	staged := make([]pending, 0, len(batch.Rows))
	total := 0
	for i, row := range batch.Rows {
		qty, err := strconv.Atoi(row.Quantity)
		if err != nil || qty <= 0 || qty > MaxVoucherQuantity {
			return 0, &RowFormatError{Row: i + 1, Column: "Quantity", Value: row.Quantity}
		}
		total += qty
		if total > MaxVoucherBatch {
			return 0, &RowFormatError{Row: i + 1, Column: "Quantity", Value: row.Quantity,
				Err: fmt.Errorf("batch exceeds %d vouchers", MaxVoucherBatch)}
		}
		if row.RedeemCode == "" {
			return 0, &RowFormatError{Row: i + 1, Column: "RedeemCode", Value: row.RedeemCode}
		}
		staged = append(staged, pending{row: row, codes: expandCodes(row.RedeemCode, qty)})
	}

	inv.mu.Lock()
	defer inv.mu.Unlock()

	inBatch := make(map[string]bool)
	for _, p := range staged {
		for _, code := range p.codes {
			if _, exists := inv.vouchers[code]; exists || inBatch[code] {
				logger.Warningf("voucher batch rejected: duplicate code %s", code)
				return 0, &DuplicateCodeError{Code: code}
			}
			inBatch[code] = true
		}
	}

	created := 0
	for _, p := range staged {
		for _, code := range p.codes {
			inv.vouchers[code] = &models.VoucherRecord{
				ID:           uuid.NewString(),
				Code:         code,
				Country:      p.row.Country,
				LocationName: p.row.LocationName,
				VoucherType:  p.row.VoucherType,
			}
			inv.order = append(inv.order, code)
			created++
		}
	}
	logger.Infof("voucher batch committed: %d rows, %d vouchers", len(staged), created)
	return created, nil
}

// expandCodes keeps a single voucher's code verbatim and suffixes -1..-n otherwise.
func expandCodes(code string, qty int) []string {
	if qty == 1 {
		return []string{code}
	}
	codes := make([]string, qty)
	for i := range codes {
		codes[i] = code + "-" + strconv.Itoa(i+1)
	}
	return codes
}

// Redeem marks code as consumed by sessionID. A second redemption always fails.
func (inv *VoucherInventory) Redeem(code, sessionID string) (models.VoucherRecord, error) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	v, ok := inv.vouchers[code]
	if !ok {
		return models.VoucherRecord{}, fmt.Errorf("%s: %w", code, ErrNotFound)
	}
	if v.IsRedeemed {
		return models.VoucherRecord{}, fmt.Errorf("%s: %w", code, ErrAlreadyRedeemed)
	}
	inv.markRedeemed(v, sessionID)
	return *v, nil
}

// Claim redeems the first unredeemed voucher of voucherType, preferring locationName.
// It returns ErrNotFound when none is left.
func (inv *VoucherInventory) Claim(voucherType, locationName, sessionID string) (models.VoucherRecord, error) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	var fallback *models.VoucherRecord
	for _, code := range inv.order {
		v := inv.vouchers[code]
		if v.IsRedeemed || !strings.EqualFold(v.VoucherType, voucherType) {
			continue
		}
		if strings.EqualFold(v.LocationName, locationName) {
			inv.markRedeemed(v, sessionID)
			return *v, nil
		}
		if fallback == nil {
			fallback = v
		}
	}
	if fallback == nil {
		return models.VoucherRecord{}, fmt.Errorf("%s voucher: %w", voucherType, ErrNotFound)
	}
	inv.markRedeemed(fallback, sessionID)
	return *fallback, nil
}

func (inv *VoucherInventory) markRedeemed(v *models.VoucherRecord, sessionID string) {
	at := inv.now()
	v.IsRedeemed = true
	v.RedeemedBySessionID = sessionID
	v.RedeemedAt = &at
	logger.Infof("voucher %s redeemed by %s", v.Code, sessionID)
}

// Get returns the voucher stored under code.
func (inv *VoucherInventory) Get(code string) (models.VoucherRecord, bool) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	v, ok := inv.vouchers[code]
	if !ok {
		return models.VoucherRecord{}, false
	}
	return *v, true
}

// Counts returns the total and redeemed voucher counts.
func (inv *VoucherInventory) Counts() (total, redeemed int) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	for _, v := range inv.vouchers {
		total++
		if v.IsRedeemed {
			redeemed++
		}
	}
	return total, redeemed
}
