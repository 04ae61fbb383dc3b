package models

// DayActivity groups transactions by calendar day key (YYYY-MM-DD).
type DayActivity struct {
	Date         string              `json:"date"`
	Count        int                 `json:"count"`
	Transactions []TransactionDetail `json:"transactions"`
}
