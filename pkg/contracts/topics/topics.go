package topics

const (
	// Ledger
	BetLedgerEvents    = "bet_ledger_events"
	BetLedgerEventsDLQ = "bet_ledger_events_dlq"

	// Redis Pub/Sub usado pelo feed ao vivo
	BetLedgerBroadcast = "bet_ledger_broadcast"
)
