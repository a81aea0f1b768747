package domain

// Purchase is a finalized, paid record. CardDigest is a one-way digest of the
// card number; raw card digits are never stored. Timestamp is unix millis.
type Purchase struct {
	ID            string `json:"id"`
	UserID        string `json:"userId"`
	PackageID     string `json:"packageId"`
	Email         string `json:"email"`
	Price         string `json:"price"`
	CardDigest    string `json:"encryptedCardDetails,omitempty"`
	ReservationID string `json:"reservationId,omitempty"`
	Timestamp     string `json:"timestamp"`
}
