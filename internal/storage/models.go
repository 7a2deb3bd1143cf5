package storage

// Sync states of a stored record with respect to the spreadsheet mirror.
const (
	SyncPending = "pending"
	SyncSynced  = "synced"
	SyncError   = "error"
)

// Entity names used in pending_deletions and PendingSync.
const (
	EntityTransaction = "transaction"
	EntityExpense     = "expense"
)

type TransactionRecord struct {
	ID         string
	Date       string
	Style      string
	PriceCents int64
	Notes      string
	SyncStatus string
	Version    int64
}

type ExpenseRecord struct {
	ID          string
	Date        string
	Type        string
	Description string
	AmountCents int64
	SyncStatus  string
	Version     int64
}

type PendingDeletion struct {
	Entity   string
	RecordID string
}
