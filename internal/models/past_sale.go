package models

import "time"

// SaleStatus discriminates which fields of a past sale are required
type SaleStatus string

const (
	SaleStatusSold      SaleStatus = "sold"
	SaleStatusWithdrawn SaleStatus = "withdrawn"
)

// IsValid checks if a sale status is recognized
func (s SaleStatus) IsValid() bool {
	return s == SaleStatusSold || s == SaleStatusWithdrawn
}

// PastSale represents one historical listing outcome for an agency team
type PastSale struct {
	ID      int64      `db:"id" json:"id"`
	TeamID  int        `db:"team_id" json:"team_id"`
	Address string     `db:"address" json:"address"`
	Suburb  *string    `db:"suburb" json:"suburb"`
	Status  SaleStatus `db:"status" json:"status"`

	AppraisalValueLow  *float64 `db:"appraisal_value_low" json:"appraisal_value_low"`
	AppraisalValueHigh *float64 `db:"appraisal_value_high" json:"appraisal_value_high"`
	ListingPrice       *float64 `db:"listing_price" json:"listing_price"`
	SaleValue          *float64 `db:"sale_value" json:"sale_value"`

	FirstContactDate  *time.Time `db:"first_contact_date" json:"first_contact_date"`
	AppraisalDate     *time.Time `db:"appraisal_date" json:"appraisal_date"`
	ListingSignedDate *time.Time `db:"listing_signed_date" json:"listing_signed_date"`
	ListingLiveDate   *time.Time `db:"listing_live_date" json:"listing_live_date"`
	UnconditionalDate *time.Time `db:"unconditional_date" json:"unconditional_date"`
	SettlementDate    *time.Time `db:"settlement_date" json:"settlement_date"`
	LostDate          *time.Time `db:"lost_date" json:"lost_date"`
	LostReason        *string    `db:"lost_reason" json:"lost_reason"`

	VendorName            *string `db:"vendor_name" json:"vendor_name"`
	VendorEmail           *string `db:"vendor_email" json:"vendor_email"`
	VendorPhone           *string `db:"vendor_phone" json:"vendor_phone"`
	VendorMovedTo         *string `db:"vendor_moved_to" json:"vendor_moved_to"`
	VendorReferralPartner bool    `db:"vendor_referral_partner" json:"vendor_referral_partner"`
	BuyerName             *string `db:"buyer_name" json:"buyer_name"`
	BuyerEmail            *string `db:"buyer_email" json:"buyer_email"`
	BuyerPhone            *string `db:"buyer_phone" json:"buyer_phone"`
	BuyerReferralPartner  bool    `db:"buyer_referral_partner" json:"buyer_referral_partner"`

	LeadSource *string `db:"lead_source" json:"lead_source"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
