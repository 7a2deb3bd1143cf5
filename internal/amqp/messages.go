package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Entity names the kind of ledger record a message refers to.
type Entity string

const (
	EntityTransaction Entity = "transaction"
	EntityExpense     Entity = "expense"
)

// Op is the change applied to the record.
type Op string

const (
	OpUpsert Op = "upsert"
	OpDelete Op = "delete"
)

// RecordChangeMessage is a lightweight notification that a ledger record was
// written or removed. The worker fetches the current record from storage, so
// the message never carries record contents.
type RecordChangeMessage struct {
	Entity    Entity    `json:"entity"`
	ID        string    `json:"id"`
	Op        Op        `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecordChangeMessage(entity Entity, id string, op Op) *RecordChangeMessage {
	return &RecordChangeMessage{
		Entity:    entity,
		ID:        id,
		Op:        op,
		Timestamp: time.Now(),
	}
}

func (m *RecordChangeMessage) Validate() error {
	switch m.Entity {
	case EntityTransaction, EntityExpense:
	default:
		return fmt.Errorf("unknown entity %q", m.Entity)
	}
	switch m.Op {
	case OpUpsert, OpDelete:
	default:
		return fmt.Errorf("unknown op %q", m.Op)
	}
	if m.ID == "" {
		return fmt.Errorf("missing record id")
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *RecordChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordChangeMessageFromJSON decodes and validates a message.
func RecordChangeMessageFromJSON(data []byte) (*RecordChangeMessage, error) {
	var msg RecordChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
