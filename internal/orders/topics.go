package orders

const (
	TopicOrderCreated   = "order.created"
	TopicOrderConfirmed = "order.confirmed"
	TopicOrderRejected  = "order.rejected"
	TopicRefundFailed   = "order.refund.failed"
)

// Partition key = session_id supaya semua event 1 order maintain urutan.
func PartitionKey(sessionID string) []byte { return []byte(sessionID) }
