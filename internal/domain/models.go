package domain

import "strings"

const (
	CollectionBookings   = "bookings"
	CollectionVouchers   = "vouchers"
	CollectionClients    = "clients"
	CollectionStaff      = "salesmen"
	CollectionTreatments = "treatments"
	CollectionExpenses   = "expenses"
	CollectionSettings   = "settings"
)

const SettingsOutsourceID = "outsource"

const (
	BookingStatusConfirmed = "Confirmed"
	BookingStatusArrived   = "Arrived"
	BookingStatusInRitual  = "In Ritual"
	BookingStatusComplete  = "Complete"
	BookingStatusCancelled = "Cancelled"
	BookingStatusRedeemed  = "Redeemed"
	BookingStatusNoShow    = "No Show"
)

const (
	VoucherStatusIssued   = "ISSUED"
	VoucherStatusRedeemed = "REDEEMED"
	VoucherStatusVoid     = "VOID"
	VoucherStatusRefunded = "REFUNDED"
	// VoucherStatusExpired is a display state only and is never persisted.
	VoucherStatusExpired = "EXPIRED"
)

const (
	VoucherTypeSingle  = "single"
	VoucherTypePackage = "package"
)

const (
	RoleSales     = "sales"
	RoleTherapist = "therapist"
	RoleDual      = "dual"
	RoleManager   = "manager"
)

// OutsourceTherapistID marks a booking serviced by an external vendor.
const OutsourceTherapistID = "OUTSOURCE"

const PaymentMethodVoucher = "Voucher"

type Contact struct {
	Name        string `json:"name"`
	Method      string `json:"method,omitempty"`
	Handle      string `json:"handle"`
	Email       string `json:"email"`
	Nationality string `json:"nationality,omitempty"`
	Source      string `json:"source,omitempty"`
}

type BookingItem struct {
	Title       string `json:"title,omitempty"`
	Duration    Amount `json:"duration"`
	DurationMin Amount `json:"duration_min"`
}

type Booking struct {
	ID                    string        `json:"id,omitempty"`
	Guests                int           `json:"guests,omitempty"`
	Time                  string        `json:"time,omitempty"`
	Date                  string        `json:"date"`
	Status                string        `json:"status"`
	Treatment             string        `json:"treatment,omitempty"`
	Contact               Contact       `json:"contact"`
	Notes                 string        `json:"notes,omitempty"`
	IsWalkIn              bool          `json:"isWalkIn,omitempty"`
	GroupID               string        `json:"groupId,omitempty"`
	PriceSnapshot         Amount        `json:"priceSnapshot"`
	SalesmanID            string        `json:"salesmanId,omitempty"`
	CommissionSnapshot    Rate          `json:"commissionSnapshot"`
	CommissionAmount      Amount        `json:"commissionAmount"`
	TherapistID           string        `json:"therapistId,omitempty"`
	TherapistCostSnapshot Amount        `json:"therapistCostSnapshot"`
	PaymentMethod         string        `json:"paymentMethod,omitempty"`
	Items                 []BookingItem `json:"items,omitempty"`
}

func (b *Booking) SetID(id string) { b.ID = id }

func (b Booking) IsCancelled() bool { return b.Status == BookingStatusCancelled }

// ContactEmail is the normalized email used for every client match.
func (b Booking) ContactEmail() string { return NormalizeEmail(b.Contact.Email) }

type Voucher struct {
	ID               string `json:"id,omitempty"`
	Code             string `json:"code"`
	TreatmentID      string `json:"treatmentId"`
	TreatmentTitle   string `json:"treatmentTitle"`
	PricePaid        Amount `json:"pricePaid"`
	OriginalPrice    Amount `json:"originalPrice"`
	Status           string `json:"status"`
	Type             string `json:"type,omitempty"`
	CreditsTotal     int    `json:"creditsTotal,omitempty"`
	CreditsRemaining int    `json:"creditsRemaining,omitempty"`
	RecipientName    string `json:"recipientName,omitempty"`
	ClientID         string `json:"clientId,omitempty"`
	IssuedAt         string `json:"issuedAt,omitempty"`
	ExpiresAt        string `json:"expiresAt,omitempty"`
}

func (v *Voucher) SetID(id string) { v.ID = id }

// CountsTowardSpend reports whether the voucher's price paid is still money
// the business holds.
func (v Voucher) CountsTowardSpend() bool {
	return v.Status != VoucherStatusVoid && v.Status != VoucherStatusRefunded
}

type Client struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	Notes      string `json:"notes,omitempty"`
	TotalSpend Amount `json:"totalSpend"`
	VisitCount int    `json:"visitCount"`
	LastVisit  string `json:"lastVisit"`
	JoinedDate string `json:"joinedDate"`
}

func (c *Client) SetID(id string) { c.ID = id }

type Staff struct {
	ID             string `json:"id,omitempty"`
	Name           string `json:"name"`
	Nickname       string `json:"nickname"`
	Role           string `json:"role,omitempty"`
	Active         bool   `json:"active"`
	CommissionRate Rate   `json:"commissionRate"`
	BaseSalary     Amount `json:"baseSalary"`
	HourlyRate     Amount `json:"hourlyRate"`
	PhotoURL       string `json:"photoUrl,omitempty"`
}

func (s *Staff) SetID(id string) { s.ID = id }

// DisplayName prefers the nickname, as payroll and payslips do.
func (s Staff) DisplayName() string {
	if strings.TrimSpace(s.Nickname) != "" {
		return s.Nickname
	}
	return s.Name
}

type Treatment struct {
	ID          string   `json:"id,omitempty"`
	Title       string   `json:"title"`
	Category    string   `json:"category,omitempty"`
	DurationMin int      `json:"duration_min"`
	PriceTHB    Amount   `json:"price_thb"`
	Description string   `json:"description,omitempty"`
	Active      bool     `json:"active"`
	Includes    []string `json:"includes,omitempty"`
}

func (t *Treatment) SetID(id string) { t.ID = id }

type Expense struct {
	ID       string `json:"id,omitempty"`
	Month    string `json:"month"`
	Title    string `json:"title"`
	Amount   Amount `json:"amount"`
	Category string `json:"category,omitempty"`
}

func (e *Expense) SetID(id string) { e.ID = id }

type OutsourceSettings struct {
	ID   string `json:"id,omitempty"`
	Rate Amount `json:"rate"`
}

func (o *OutsourceSettings) SetID(id string) { o.ID = id }

// NormalizeEmail lowercases and trims an address for matching.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
