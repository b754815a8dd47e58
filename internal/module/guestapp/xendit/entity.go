package xendit

const (
	InvoiceStatusPaid    = "PAID"
	InvoiceStatusExpired = "EXPIRED"
)

type InvoiceCustomer struct {
	GivenNames   string `json:"given_names"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobile_number"`
}

type InvoiceItem struct {
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
	Price    int64  `json:"price"`
}

type CreateInvoiceRequest struct {
	ExternalID         string          `json:"external_id"`
	Amount             int64           `json:"amount"`
	Description        string          `json:"description"`
	Customer           InvoiceCustomer `json:"customer"`
	SuccessRedirectURL string          `json:"success_redirect_url"`
	FailureRedirectURL string          `json:"failure_redirect_url"`
	Currency           string          `json:"currency"`
	Items              []InvoiceItem   `json:"items"`
}

type CreateInvoiceResponse struct {
	ID         string `json:"id"`
	ExternalID string `json:"external_id"`
	Status     string `json:"status"`
	InvoiceURL string `json:"invoice_url"`
	ExpiryDate string `json:"expiry_date"`
}
