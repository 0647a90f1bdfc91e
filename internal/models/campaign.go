package models

import "time"

// Category is the closed set of prize kinds the wheel can land on.
type Category string

const (
	CategoryStreamingA Category = "streaming-credit-A"
	CategoryStreamingB Category = "streaming-credit-B"
	CategoryVoucher    Category = "merchandise-voucher"
	CategorySticker    Category = "sticker"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryStreamingA, CategoryStreamingB, CategoryVoucher, CategorySticker:
		return true
	}
	return false
}

// VoucherType returns the voucher type uploaded for this category, or ""
// when the category is not fulfilled from the voucher inventory.
func (c Category) VoucherType() string {
	switch c {
	case CategoryStreamingA:
		return "netflix"
	case CategoryStreamingB:
		return "shahid"
	case CategoryVoucher:
		return "voucher"
	}
	return ""
}

// PrizeVariant is one slice of the wheel.
// Weight is relative; RemainingStock is decremented on every draw of the variant.
type PrizeVariant struct {
	ID             string   `json:"id" mapstructure:"id"`
	Name           string   `json:"name" mapstructure:"name"`
	Category       Category `json:"category" mapstructure:"category"`
	Weight         int      `json:"weight" mapstructure:"weight"`
	RemainingStock int      `json:"remainingStock" mapstructure:"stock"`
}

// DrawResult is the immutable outcome of one draw.
type DrawResult struct {
	ID        string    `json:"id"`
	PrizeID   string    `json:"prizeId"`
	PrizeName string    `json:"prizeName"`
	Category  Category  `json:"category"`
	DrawnAt   time.Time `json:"drawnAt"`
}

// Location is a physical venue where users register.
type Location struct {
	ID      string `json:"id" mapstructure:"id"`
	Name    string `json:"name" mapstructure:"name"`
	Country string `json:"country" mapstructure:"country"`
}

// SessionProfile is created once per registration and never mutated.
type SessionProfile struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	LocationID   string    `json:"locationId"`
	LocationName string    `json:"locationName"`
	Country      string    `json:"country"`
	CreatedAt    time.Time `json:"createdAt"`
}

// AwardLedgerEntry binds a profile to the prize it drew.
type AwardLedgerEntry struct {
	Profile     SessionProfile `json:"profile"`
	Result      DrawResult     `json:"result"`
	VoucherCode string         `json:"voucherCode,omitempty"`
}

// Session is the document kept in the session store under one session key.
type Session struct {
	Profile SessionProfile     `json:"profile"`
	Awards  []AwardLedgerEntry `json:"awards"`
}

// VoucherBatchRow is one data row of an uploaded voucher CSV.
type VoucherBatchRow struct {
	Country      string `json:"country"`
	LocationName string `json:"locationName"`
	VoucherType  string `json:"voucherType"`
	RedeemCode   string `json:"redeemCode"`
	Quantity     string `json:"quantity"`
}

// VoucherRecord is a single redeemable voucher.
type VoucherRecord struct {
	ID                  string     `json:"id"`
	Code                string     `json:"code"`
	Country             string     `json:"country"`
	LocationName        string     `json:"locationName"`
	VoucherType         string     `json:"voucherType"`
	IsRedeemed          bool       `json:"isRedeemed"`
	RedeemedBySessionID string     `json:"redeemedBySessionId,omitempty"`
	RedeemedAt          *time.Time `json:"redeemedAt,omitempty"`
}

// LocationCount is the number of participants registered at one location.
type LocationCount struct {
	LocationID   string `json:"locationId"`
	LocationName string `json:"locationName"`
	Count        int    `json:"count"`
}

// Summary is the admin overview.
type Summary struct {
	TotalParticipants int             `json:"totalParticipants"`
	PerLocation       []LocationCount `json:"perLocationCounts"`
	TotalVouchers     int             `json:"totalVouchers"`
	RedeemedVouchers  int             `json:"redeemedVouchers"`
	RedemptionRate    float64         `json:"redemptionRate"`
}

// ReportRow is one line of the exported campaign report.
type ReportRow struct {
	Name             string
	Email            string
	PhoneNumber      string
	Location         string
	Country          string
	RegistrationDate time.Time
	VoucherCode      string
	VoucherWinDate   time.Time
}
