package audit

import (
	"time"

	"github.com/google/uuid"
)

// Actor names the component that made a decision.
type Actor string

const (
	ActorApp       Actor = "app"
	ActorRegulator Actor = "regulator"
	ActorProxy     Actor = "proxy"
)

// Decision is the outcome recorded in the transaction log.
type Decision string

const (
	Allow Decision = "allow"
	Deny  Decision = "deny"
)

// Actions recorded in the transaction log.
const (
	ActionRead  = "read"
	ActionWrite = "write"
)

// Transaction is one authorization decision.
type Transaction struct {
	ID         uuid.UUID `json:"id"`
	Timestamp  time.Time `json:"ts"`
	Actor      Actor     `json:"actor"`
	InstanceID string    `json:"instance_id"`
	UserID     string    `json:"user_id"`
	Action     string    `json:"action"`
	PointID    string    `json:"point_id"`
	PointLabel string    `json:"point_label"`
	Value      *float64  `json:"value"`
	Decision   Decision  `json:"decision"`
	Reason     string    `json:"reason"`
}

// ShadowFinding is one failing shadow validator evaluation.
type ShadowFinding struct {
	ID            uuid.UUID `json:"id"`
	Timestamp     time.Time `json:"ts"`
	InstanceID    string    `json:"instance_id"`
	UserID        string    `json:"user_id"`
	PointID       string    `json:"point_id"`
	PointLabel    string    `json:"point_label"`
	Value         float64   `json:"value"`
	Class         string    `json:"resource_class"`
	ValidatorType string    `json:"vtype"`
	Reason        string    `json:"reason"`
}

// ShadowStat counts shadow findings per point, validator and reason.
type ShadowStat struct {
	PointLabel    string `json:"point_label"`
	ValidatorType string `json:"vtype"`
	Reason        string `json:"reason"`
	Count         int    `json:"count"`
}

// Kind tags an outbound envelope.
type Kind string

const (
	KindTransaction Kind = "transaction"
	KindShadow      Kind = "shadow"
)

// Envelope carries one record to an external sink.
type Envelope struct {
	Kind        Kind           `json:"kind"`
	Transaction *Transaction   `json:"transaction,omitempty"`
	Shadow      *ShadowFinding `json:"shadow,omitempty"`
}

// Key is the partitioning key for the envelope: the owning instance.
func (e Envelope) Key() string {
	if e.Transaction != nil {
		return e.Transaction.InstanceID
	}
	if e.Shadow != nil {
		return e.Shadow.InstanceID
	}
	return ""
}
