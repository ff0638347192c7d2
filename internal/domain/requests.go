package domain

type CheckoutLine struct {
	TreatmentID      string `json:"treatmentId"`
	VoucherCode      string `json:"voucherCode"`
	ManualDiscount   Amount `json:"manualDiscount"`
	TherapistID      string `json:"therapistId"`
	Name             string `json:"name" validate:"required"`
	Email            string `json:"email" validate:"omitempty,email"`
	Phone            string `json:"phone"`
	Nationality      string `json:"nationality"`
	Source           string `json:"source"`
	IsHotelGuest     bool   `json:"isHotelGuest"`
	Room             string `json:"room"`
	Time             string `json:"time"`
	SendConfirmation bool   `json:"sendConfirmation"`
}

type CheckoutRequest struct {
	Date          string         `json:"date" validate:"required"`
	SalesmanID    string         `json:"salesmanId"`
	PaymentMethod string         `json:"paymentMethod" validate:"required"`
	Lines         []CheckoutLine `json:"lines" validate:"required,min=1,dive"`
}

type CheckoutResponse struct {
	GroupID          string    `json:"groupId"`
	Bookings         []Booking `json:"bookings"`
	RedeemedVouchers []Voucher `json:"redeemedVouchers"`
	Revenue          Amount    `json:"revenue"`
}

type VoucherValidateRequest struct {
	Code string `json:"code" validate:"required"`
	// AppliedCodes are the codes already attached to other guests in the
	// same cart session.
	AppliedCodes []string `json:"appliedCodes"`
}

type VoucherIssueRequest struct {
	ClientID      string `json:"clientId" validate:"required"`
	TreatmentID   string `json:"treatmentId" validate:"required"`
	PricePaid     Amount `json:"pricePaid"`
	RecipientName string `json:"recipientName"`
	Validity      string `json:"validity" validate:"omitempty,oneof=1M 3M 6M 1Y CUSTOM"`
	CustomExpiry  string `json:"customExpiry"`
	Type          string `json:"type" validate:"omitempty,oneof=single package"`
	Credits       int    `json:"credits" validate:"gte=0"`
}

type VoucherStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=VOID REFUNDED"`
}

type ClientCreateRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone"`
	Notes string `json:"notes"`
}

type StaffUpsertRequest struct {
	ID             string `json:"id"`
	Name           string `json:"name" validate:"required"`
	Nickname       string `json:"nickname"`
	Role           string `json:"role" validate:"omitempty,oneof=sales therapist dual manager"`
	Active         *bool  `json:"active"`
	CommissionRate Rate   `json:"commissionRate" validate:"gte=0,lte=1"`
	BaseSalary     Amount `json:"baseSalary" validate:"gte=0"`
	HourlyRate     Amount `json:"hourlyRate" validate:"gte=0"`
	PhotoURL       string `json:"photoUrl"`
}

type TreatmentUpsertRequest struct {
	ID          string   `json:"id"`
	Title       string   `json:"title" validate:"required"`
	Category    string   `json:"category"`
	DurationMin int      `json:"duration_min" validate:"gte=0"`
	PriceTHB    Amount   `json:"price_thb" validate:"gte=0"`
	Description string   `json:"description"`
	Active      *bool    `json:"active"`
	Includes    []string `json:"includes"`
}

type ExpenseCreateRequest struct {
	Month    string `json:"month" validate:"required"`
	Title    string `json:"title" validate:"required"`
	Amount   Amount `json:"amount" validate:"gte=0"`
	Category string `json:"category"`
}

type OutsourceRateRequest struct {
	Rate Amount `json:"rate" validate:"gte=0"`
}

type SyncReport struct {
	UpdatedClients   int `json:"updatedClients"`
	CreditedVouchers int `json:"creditedVouchers"`
	Failed           int `json:"failed"`
}
