package kafka

// TopicTransactionCompleted is the single topic every processed
// transaction (deposit, withdrawal, transfer) is published to. The
// consumer distinguishes the operation from the event payload's Type
// field rather than from separate per-operation topics.
const TopicTransactionCompleted = "ledger.transactions.completed"
