package rpc

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/lumera-stats/lumerawatch/pkg/models"
)

// MessageKind identifies a known transaction message type.
type MessageKind string

const (
	MsgKindSend           MessageKind = "MsgSend"
	MsgKindDelegate       MessageKind = "MsgDelegate"
	MsgKindUndelegate     MessageKind = "MsgUndelegate"
	MsgKindWithdrawReward MessageKind = "MsgWithdrawDelegatorReward"
	MsgKindUnknown        MessageKind = "Unknown"
)

// messageKinds is the closed set of type URLs the decoder understands.
var messageKinds = map[string]MessageKind{
	"/cosmos.bank.v1beta1.MsgSend":                            MsgKindSend,
	"/cosmos.staking.v1beta1.MsgDelegate":                     MsgKindDelegate,
	"/cosmos.staking.v1beta1.MsgUndelegate":                   MsgKindUndelegate,
	"/cosmos.distribution.v1beta1.MsgWithdrawDelegatorReward": MsgKindWithdrawReward,
}

// KindOf maps a type URL to its MessageKind. Matching is exact.
func KindOf(typeURL string) MessageKind {
	if k, ok := messageKinds[typeURL]; ok {
		return k
	}
	return MsgKindUnknown
}

// Message is the interface all decoded transaction messages implement.
// Apply copies the message's queryable fields into a TransactionDetail.
type Message interface {
	Kind() MessageKind
	TypeURL() string
	Apply(detail *models.TransactionDetail, events []Event)
}

// SendMessage represents a bank transfer.
type SendMessage struct {
	Type        string        `json:"@type"`
	FromAddress string        `json:"from_address"`
	ToAddress   string        `json:"to_address"`
	Amount      []models.Coin `json:"amount"`
}

func (m *SendMessage) Kind() MessageKind { return MsgKindSend }
func (m *SendMessage) TypeURL() string   { return m.Type }
func (m *SendMessage) Apply(d *models.TransactionDetail, _ []Event) {
	d.From = m.FromAddress
	d.To = m.ToAddress
	if len(m.Amount) > 0 {
		d.Amount = m.Amount[0].Amount
		d.Denom = m.Amount[0].Denom
	}
}

// DelegateMessage represents a delegation or an undelegation, distinguished by Undelegate.
type DelegateMessage struct {
	Type             string      `json:"@type"`
	DelegatorAddress string      `json:"delegator_address"`
	ValidatorAddress string      `json:"validator_address"`
	Amount           models.Coin `json:"amount"`
	Undelegate       bool        `json:"-"`
}

func (m *DelegateMessage) Kind() MessageKind {
	if m.Undelegate {
		return MsgKindUndelegate
	}
	return MsgKindDelegate
}
func (m *DelegateMessage) TypeURL() string { return m.Type }
func (m *DelegateMessage) Apply(d *models.TransactionDetail, _ []Event) {
	d.From = m.DelegatorAddress
	d.ValidatorAddress = m.ValidatorAddress
	d.Amount = m.Amount.Amount
	d.Denom = m.Amount.Denom
}

// WithdrawRewardMessage represents a staking reward claim. The amount only exists in the events.
type WithdrawRewardMessage struct {
	Type             string `json:"@type"`
	DelegatorAddress string `json:"delegator_address"`
	ValidatorAddress string `json:"validator_address"`
}

// coinPattern matches the first coin of a "123ulume,4uatom" style amount.
var coinPattern = regexp.MustCompile(`^(\d+)([a-zA-Z][a-zA-Z0-9/:._-]*)`)

func (m *WithdrawRewardMessage) Kind() MessageKind { return MsgKindWithdrawReward }
func (m *WithdrawRewardMessage) TypeURL() string   { return m.Type }
func (m *WithdrawRewardMessage) Apply(d *models.TransactionDetail, events []Event) {
	d.From = m.DelegatorAddress
	d.ValidatorAddress = m.ValidatorAddress
	if v, ok := findAttribute(events, "withdraw_rewards", "amount"); ok {
		if match := coinPattern.FindStringSubmatch(v); match != nil {
			d.Amount = match[1]
			d.Denom = match[2]
		}
	}
}

// UnknownMessage carries any message outside the closed set. Its type URL is passed through.
type UnknownMessage struct {
	Type string `json:"@type"`
}

func (m *UnknownMessage) Kind() MessageKind                           { return MsgKindUnknown }
func (m *UnknownMessage) TypeURL() string                             { return m.Type }
func (m *UnknownMessage) Apply(_ *models.TransactionDetail, _ []Event) {}

// messageDecoders holds one typed decode function per known kind.
var messageDecoders = map[MessageKind]func(raw json.RawMessage) (Message, error){
	MsgKindSend: func(raw json.RawMessage) (Message, error) {
		var m SendMessage
		err := json.Unmarshal(raw, &m)
		return &m, err
	},
	MsgKindDelegate: func(raw json.RawMessage) (Message, error) {
		var m DelegateMessage
		err := json.Unmarshal(raw, &m)
		return &m, err
	},
	MsgKindUndelegate: func(raw json.RawMessage) (Message, error) {
		m := DelegateMessage{Undelegate: true}
		err := json.Unmarshal(raw, &m)
		return &m, err
	},
	MsgKindWithdrawReward: func(raw json.RawMessage) (Message, error) {
		var m WithdrawRewardMessage
		err := json.Unmarshal(raw, &m)
		return &m, err
	},
}

// DecodeMessage decodes one Any-encoded message into its typed variant.
func DecodeMessage(raw json.RawMessage) (Message, error) {
	var head struct {
		Type string `json:"@type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("decode message type: %w", err)
	}
	decode, ok := messageDecoders[KindOf(head.Type)]
	if !ok {
		return &UnknownMessage{Type: head.Type}, nil
	}
	msg, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", head.Type, err)
	}
	return msg, nil
}
