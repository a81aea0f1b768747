package domain

type ReservationStatus string

const (
	ReservationStatusReserved ReservationStatus = "Reservado"
	ReservationStatusPaid     ReservationStatus = "Pagado"
)

type Reservation struct {
	ID        string            `json:"id"`
	UserID    string            `json:"userId"`
	PackageID string            `json:"packageId"`
	Email     string            `json:"email"`
	Price     string            `json:"price"`
	Status    ReservationStatus `json:"status"`
}

// ReservationID is the document key for a user's reservation of a package.
// Reserving the same package again overwrites the earlier record.
func ReservationID(userID, packageID string) string {
	return userID + "_" + packageID
}

// SettlementPurchaseID is the purchase key created when a reservation is
// settled. Settling twice targets the same key.
func SettlementPurchaseID(reservationID string) string {
	return "reservation_" + reservationID
}
