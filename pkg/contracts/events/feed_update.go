package events

// FeedUpdate é o envelope publicado no Redis Pub/Sub e repassado aos clientes WebSocket.
// OwnerID decide quais conexões recebem a atualização.
type FeedUpdate struct {
	OwnerID string         `json:"ownerId"`
	Payload BetLedgerEvent `json:"payload"`
}
