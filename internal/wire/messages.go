// Package wire is the thin binary protocol and TCP harness built on top of
// the engine/book core, adapted from the teacher's internal/net package
// (messages.go + server.go). It is intentionally dumb: it decodes a
// request into an engine.Op, calls OrderBook.Process, and encodes whatever
// comes back. None of the matching semantics the spec governs live here.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"lobforge/internal/engine"
	"lobforge/internal/sample"
)

var (
	ErrInvalidMessageType = errors.New("wire: invalid message type")
	ErrMessageTooShort    = errors.New("wire: message too short")
)

type MessageType uint16

const (
	Heartbeat MessageType = iota
	NewOrder
	CancelOrder
	ModifyOrder
	LogBook
)

type ReportMessageType uint8

const (
	ExecutionReport ReportMessageType = iota
	ErrorReport
)

type Message interface {
	GetType() MessageType
}

// Wire layout constants. Every message starts with a 2-byte BaseMessage
// header; the lengths below are the *body* lengths that follow it, mirroring
// the teacher's internal/net/messages.go split between
// BaseMessageHeaderLen and per-message header lengths.
const (
	BaseMessageHeaderLen        = 2
	uuidWireLen                 = 16
	NewOrderMessageHeaderLen    = 1 + 8 + 8 + 1 // side + price + qty + usernameLen
	CancelOrderMessageHeaderLen = uuidWireLen
	ModifyOrderMessageHeaderLen = uuidWireLen + 1 + 8 + 8 // id + side + price + qty
)

type BaseMessage struct {
	TypeOf MessageType
}

func (m BaseMessage) GetType() MessageType { return m.TypeOf }

func ParseMessage(msg []byte) (Message, error) {
	if len(msg) < BaseMessageHeaderLen {
		return nil, fmt.Errorf("%w: no room for header", ErrMessageTooShort)
	}
	typeOf := MessageType(binary.BigEndian.Uint16(msg[0:2]))
	body := msg[2:]
	switch typeOf {
	case NewOrder:
		return parseNewOrder(body)
	case CancelOrder:
		return parseCancelOrder(body)
	case ModifyOrder:
		return parseModifyOrder(body)
	case LogBook:
		return BaseMessage{TypeOf: LogBook}, nil
	default:
		return nil, ErrInvalidMessageType
	}
}

// NewOrderMessage requests a fresh resting/aggressing order.
type NewOrderMessage struct {
	BaseMessage
	Side      sample.Side
	TickPrice int64
	Quantity  uint64
	Username  string
}

func (m NewOrderMessage) Order() *sample.Order {
	return sample.New(m.Side, m.TickPrice, m.Quantity, m.Username)
}

func (m NewOrderMessage) Op() engine.Op[string, int64, uint64] {
	return engine.Insert[string, int64, uint64](m.Order())
}

func parseNewOrder(msg []byte) (NewOrderMessage, error) {
	if len(msg) < NewOrderMessageHeaderLen {
		return NewOrderMessage{}, ErrMessageTooShort
	}
	m := NewOrderMessage{BaseMessage: BaseMessage{TypeOf: NewOrder}}
	m.Side = sample.Side(msg[0])
	m.TickPrice = int64(binary.BigEndian.Uint64(msg[1:9]))
	m.Quantity = binary.BigEndian.Uint64(msg[9:17])
	usernameLen := int(msg[17])
	if len(msg) < NewOrderMessageHeaderLen+usernameLen {
		return NewOrderMessage{}, ErrMessageTooShort
	}
	m.Username = string(msg[18 : 18+usernameLen])
	return m, nil
}

// CancelOrderMessage requests removal of a resting order by id.
type CancelOrderMessage struct {
	BaseMessage
	OrderID string
}

func (m CancelOrderMessage) Op() engine.Op[string, int64, uint64] {
	return engine.Cancel[string, int64, uint64](m.OrderID)
}

func parseCancelOrder(msg []byte) (CancelOrderMessage, error) {
	if len(msg) < CancelOrderMessageHeaderLen {
		return CancelOrderMessage{}, ErrMessageTooShort
	}
	return CancelOrderMessage{
		BaseMessage: BaseMessage{TypeOf: CancelOrder},
		OrderID:     decodeUUID(msg[0:uuidWireLen]),
	}, nil
}

// ModifyOrderMessage requests the cancel-then-reinsert spec.md §4.5
// describes: OrderID is cancelled, and a replacement order carrying the
// same id is inserted with full remaining.
type ModifyOrderMessage struct {
	BaseMessage
	OrderID   string
	Side      sample.Side
	TickPrice int64
	Quantity  uint64
}

func (m ModifyOrderMessage) Op() engine.Op[string, int64, uint64] {
	replacement := &sample.Order{
		UUID:      m.OrderID,
		Side:      m.Side,
		TickPrice: m.TickPrice,
		Qty:       m.Quantity,
		Rem:       m.Quantity,
	}
	return engine.Modify[string, int64, uint64](m.OrderID, replacement)
}

func parseModifyOrder(msg []byte) (ModifyOrderMessage, error) {
	if len(msg) < ModifyOrderMessageHeaderLen {
		return ModifyOrderMessage{}, ErrMessageTooShort
	}
	return ModifyOrderMessage{
		BaseMessage: BaseMessage{TypeOf: ModifyOrder},
		OrderID:     decodeUUID(msg[0:uuidWireLen]),
		Side:        sample.Side(msg[uuidWireLen]),
		TickPrice:   int64(binary.BigEndian.Uint64(msg[uuidWireLen+1 : uuidWireLen+9])),
		Quantity:    binary.BigEndian.Uint64(msg[uuidWireLen+9 : uuidWireLen+17]),
	}, nil
}

// Report is the wire rendition of an engine.Match, or of an error
// encountered while handling a request — the teacher's execution/error
// report split (internal/net/messages.go) carried straight through.
type Report struct {
	Kind     ReportMessageType
	MakerID  string
	TakerID  string
	Price    int64
	Quantity uint64
	Err      string
}

const reportFixedHeaderLen = 1 + uuidWireLen + uuidWireLen + 8 + 8 + 4 // kind + maker + taker + price + qty + errLen

func (r Report) Serialize() []byte {
	buf := make([]byte, reportFixedHeaderLen+len(r.Err))
	buf[0] = byte(r.Kind)
	copy(buf[1:1+uuidWireLen], encodeUUID(r.MakerID))
	copy(buf[1+uuidWireLen:1+2*uuidWireLen], encodeUUID(r.TakerID))
	off := 1 + 2*uuidWireLen
	binary.BigEndian.PutUint64(buf[off:off+8], uint64(r.Price))
	binary.BigEndian.PutUint64(buf[off+8:off+16], r.Quantity)
	binary.BigEndian.PutUint32(buf[off+16:off+20], uint32(len(r.Err)))
	copy(buf[off+20:], r.Err)
	return buf
}

func ParseReport(buf []byte) (Report, error) {
	if len(buf) < reportFixedHeaderLen {
		return Report{}, ErrMessageTooShort
	}
	r := Report{Kind: ReportMessageType(buf[0])}
	r.MakerID = decodeUUID(buf[1 : 1+uuidWireLen])
	r.TakerID = decodeUUID(buf[1+uuidWireLen : 1+2*uuidWireLen])
	off := 1 + 2*uuidWireLen
	r.Price = int64(binary.BigEndian.Uint64(buf[off : off+8]))
	r.Quantity = binary.BigEndian.Uint64(buf[off+8 : off+16])
	errLen := binary.BigEndian.Uint32(buf[off+16 : off+20])
	if len(buf) < reportFixedHeaderLen+int(errLen) {
		return Report{}, ErrMessageTooShort
	}
	r.Err = string(buf[reportFixedHeaderLen : reportFixedHeaderLen+int(errLen)])
	return r, nil
}

func matchReport(m engine.Match[string, int64, uint64]) Report {
	return Report{Kind: ExecutionReport, MakerID: m.MakerID, TakerID: m.TakerID, Price: m.Price, Quantity: m.Quantity}
}

func errorReport(err error) Report {
	return Report{Kind: ErrorReport, Err: err.Error()}
}

// encodeUUID/decodeUUID pack a UUID string into (or out of) a fixed 16-byte
// field. Non-UUID ids (as used by some CLI helpers) are copied in as raw
// bytes, zero-padded on the right or truncated, rather than rejected, since the wire format only ever carries
// ids this package itself generated.
func encodeUUID(id string) []byte {
	parsed, err := uuid.Parse(id)
	if err != nil {
		buf := make([]byte, uuidWireLen)
		copy(buf, id)
		return buf
	}
	return parsed[:]
}

func decodeUUID(buf []byte) string {
	var u uuid.UUID
	copy(u[:], buf)
	return u.String()
}
