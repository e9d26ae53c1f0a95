package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Enumerations
const (
	RoleAdmin      UserRole = "admin"
	RoleManager    UserRole = "manager"
	RoleTechnician UserRole = "technician"

	StatusPending        JobOrderStatus = "Pending"
	StatusForApproval    JobOrderStatus = "For Approval"
	StatusRepairing      JobOrderStatus = "Repairing"
	StatusWaitingParts   JobOrderStatus = "Waiting Parts"
	StatusReadyForPickup JobOrderStatus = "Ready for Pickup"
	StatusCompleted      JobOrderStatus = "Completed"
	StatusCanceled       JobOrderStatus = "Canceled"
	StatusPullOut        JobOrderStatus = "Pull Out"

	LogInfo    ActivityLogType = "info"
	LogWarning ActivityLogType = "warning"
	LogError   ActivityLogType = "error"
)

type UserRole string
type JobOrderStatus string
type ActivityLogType string

// JobOrderStatuses lists every status a job order can be in, in lifecycle order.
var JobOrderStatuses = []JobOrderStatus{
	StatusPending,
	StatusForApproval,
	StatusRepairing,
	StatusWaitingParts,
	StatusReadyForPickup,
	StatusCompleted,
	StatusCanceled,
	StatusPullOut,
}

// ValidStatus reports whether s belongs to the fixed status vocabulary.
func ValidStatus(s JobOrderStatus) bool {
	for _, known := range JobOrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type Branch struct {
	ID        int64
	Name      string
	Location  string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

type User struct {
	ID           int64
	Name         string
	Email        string
	Phone        string
	BranchID     *int64
	Role         UserRole
	IsGoogle     bool
	PasswordHash *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

type Client struct {
	ID        int64
	BranchID  *int64
	Name      string
	Phone     string
	Email     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// JobOrder is one repair ticket. CompletedAt is set only while the order sits
// in the Completed status; deletion is a hard delete cascading to materials.
type JobOrder struct {
	ID          int64
	OrderNo     string
	ClientID    *int64
	ClientName  string
	BranchID    *int64
	MachineType string
	SerialNo    string
	Problem     string
	Technician  string
	Status      JobOrderStatus
	GrandTotal  decimal.Decimal
	NetSales    decimal.Decimal
	Downpayment decimal.Decimal
	Materials   []Material
	CreatedAt   time.Time
	CompletedAt *time.Time
	UpdatedAt   time.Time
}

// Material is a billed line item of a job order. A material marked Used is
// subtracted from the order's billed totals when computing revenue.
type Material struct {
	ID         int64
	JobOrderID int64
	Material   string
	Quantity   int
	UnitPrice  decimal.Decimal
	Used       bool
	CreatedAt  time.Time
}

// UsedMaterialValue sums quantity x unit price over materials flagged used.
func (o JobOrder) UsedMaterialValue() decimal.Decimal {
	total := decimal.Zero
	for _, m := range o.Materials {
		if m.Used {
			total = total.Add(m.UnitPrice.Mul(decimal.NewFromInt(int64(m.Quantity))))
		}
	}
	return total
}

type Expense struct {
	ID        int64
	BranchID  *int64
	BillName  string
	Amount    decimal.Decimal
	Date      time.Time
	CreatedAt time.Time
	DeletedAt *time.Time
}

type ActivityLog struct {
	ID        int64
	Title     string
	Message   string
	Actor     string
	Type      ActivityLogType
	LoggedAt  time.Time
	DeletedAt *time.Time
}

type ShopSettings struct {
	BusinessName    string
	BusinessAddress string
	BusinessPhone   string
	ReceiptFooter   string
	CurrencyCode    string
	WarrantyNote    string
	UpdatedAt       time.Time
}
