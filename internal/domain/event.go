package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EventType constants
const (
	EventTypeAccountOpened  = "AccountOpened"
	EventTypeBalanceUpdated = "BalanceUpdated"
)

// Event is a journal record describing a change to an account.
type Event interface {
	GetType() string
	GetAccountID() string
}

// EventEnvelope wraps an event with metadata for serialization
type EventEnvelope struct {
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// AccountOpened records the creation of an account with its initial balance.
type AccountOpened struct {
	AccountID string          `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
}

func (e AccountOpened) GetType() string      { return EventTypeAccountOpened }
func (e AccountOpened) GetAccountID() string { return e.AccountID }

// BalanceUpdated records a write-back of the full balance of an account.
type BalanceUpdated struct {
	AccountID string          `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
}

func (e BalanceUpdated) GetType() string      { return EventTypeBalanceUpdated }
func (e BalanceUpdated) GetAccountID() string { return e.AccountID }

// SerializeEvent converts an event to JSON bytes with envelope
func SerializeEvent(event Event) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	envelope := EventEnvelope{
		Type:      event.GetType(),
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	return json.Marshal(envelope)
}

// DeserializeEvent converts JSON bytes back to an Event
func DeserializeEvent(data []byte) (Event, error) {
	var envelope EventEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, err
	}

	switch envelope.Type {
	case EventTypeAccountOpened:
		var e AccountOpened
		if err := json.Unmarshal(envelope.Data, &e); err != nil {
			return nil, err
		}
		return e, nil
	case EventTypeBalanceUpdated:
		var e BalanceUpdated
		if err := json.Unmarshal(envelope.Data, &e); err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unknown event type: %s", envelope.Type)
	}
}
