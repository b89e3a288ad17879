package domain

import "time"

type TrackedAccount struct {
	ID          int
	Username    string
	DisplayName string
	LastFetched *time.Time
	IsActive    bool
}

// AccountCategory is one row of the account-category join table.
type AccountCategory struct {
	AccountID  int
	CategoryID int
}
