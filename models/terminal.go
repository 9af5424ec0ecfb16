package models

// Terminal identifies a configured payment-acceptance point and the
// branch/merchant hierarchy it belongs to. Resolved through the merchant
// registry before an order may be created.
type Terminal struct {
	PosID      string `json:"pos_id"`
	BranchID   string `json:"branch_id"`
	MerchantID string `json:"merchant_id"`
	Name       string `json:"name,omitempty"`
}
