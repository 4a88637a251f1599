package events

import (
	"time"

	"matchbook/internal/common"

	"github.com/mailru/easyjson"
	"github.com/mailru/easyjson/jlexer"
	"github.com/mailru/easyjson/jwriter"
)

// Events and notifications are encoded with easyjson marshalers written by
// hand, since times travel as unix nanoseconds and order/trade snapshots are
// shared between both shapes.

var (
	_ easyjson.Marshaler   = Event{}
	_ easyjson.Unmarshaler = (*Event)(nil)
	_ easyjson.Marshaler   = Notification{}
	_ easyjson.Unmarshaler = (*Notification)(nil)
)

// ---- Event ----

func (v Event) MarshalJSON() ([]byte, error) {
	w := jwriter.Writer{}
	v.MarshalEasyJSON(&w)
	return w.Buffer.BuildBytes(), w.Error
}

func (v Event) MarshalEasyJSON(out *jwriter.Writer) {
	out.RawString(`{"seq":`)
	out.Uint64(v.Seq)
	out.RawString(`,"kind":`)
	out.Uint8(uint8(v.Kind))
	out.RawString(`,"time":`)
	encodeTime(out, v.Time)
	out.RawString(`,"side":`)
	out.Int(int(v.Side))
	out.RawString(`,"reason":`)
	out.Uint8(uint8(v.Reason))
	if v.Order != nil {
		out.RawString(`,"order":`)
		encodeOrder(out, *v.Order)
	}
	if v.Trade != nil {
		out.RawString(`,"trade":`)
		encodeTrade(out, *v.Trade)
	}
	if v.Bid != nil {
		out.RawString(`,"bid":`)
		encodeOrder(out, *v.Bid)
	}
	if v.Ask != nil {
		out.RawString(`,"ask":`)
		encodeOrder(out, *v.Ask)
	}
	out.RawByte('}')
}

func (v *Event) UnmarshalJSON(data []byte) error {
	r := jlexer.Lexer{Data: data}
	v.UnmarshalEasyJSON(&r)
	return r.Error()
}

func (v *Event) UnmarshalEasyJSON(in *jlexer.Lexer) {
	decodeObject(in, func(key string) {
		switch key {
		case "seq":
			v.Seq = in.Uint64()
		case "kind":
			v.Kind = Kind(in.Uint8())
		case "time":
			v.Time = decodeTime(in)
		case "side":
			v.Side = common.Side(in.Int())
		case "reason":
			v.Reason = Reason(in.Uint8())
		case "order":
			v.Order = new(common.Order)
			decodeOrder(in, v.Order)
		case "trade":
			v.Trade = new(common.Trade)
			decodeTrade(in, v.Trade)
		case "bid":
			v.Bid = new(common.Order)
			decodeOrder(in, v.Bid)
		case "ask":
			v.Ask = new(common.Order)
			decodeOrder(in, v.Ask)
		default:
			in.SkipRecursive()
		}
	})
}

// ---- Notification ----

func (v Notification) MarshalJSON() ([]byte, error) {
	w := jwriter.Writer{}
	v.MarshalEasyJSON(&w)
	return w.Buffer.BuildBytes(), w.Error
}

func (v Notification) MarshalEasyJSON(out *jwriter.Writer) {
	out.RawString(`{"owner":`)
	out.String(v.Owner)
	out.RawString(`,"side":`)
	out.Int(int(v.Side))
	out.RawString(`,"trade":`)
	encodeTrade(out, v.Trade)
	out.RawByte('}')
}

func (v *Notification) UnmarshalJSON(data []byte) error {
	r := jlexer.Lexer{Data: data}
	v.UnmarshalEasyJSON(&r)
	return r.Error()
}

func (v *Notification) UnmarshalEasyJSON(in *jlexer.Lexer) {
	decodeObject(in, func(key string) {
		switch key {
		case "owner":
			v.Owner = in.String()
		case "side":
			v.Side = common.Side(in.Int())
		case "trade":
			decodeTrade(in, &v.Trade)
		default:
			in.SkipRecursive()
		}
	})
}

// ---- Helpers ----

// decodeObject walks the fields of a JSON object, handing each non-null
// value to field.
func decodeObject(in *jlexer.Lexer, field func(key string)) {
	isTopLevel := in.IsStart()
	if in.IsNull() {
		if isTopLevel {
			in.Consumed()
		}
		in.Skip()
		return
	}
	in.Delim('{')
	for !in.IsDelim('}') {
		key := in.UnsafeFieldName(false)
		in.WantColon()
		if in.IsNull() {
			in.Skip()
			in.WantComma()
			continue
		}
		field(key)
		in.WantComma()
	}
	in.Delim('}')
	if isTopLevel {
		in.Consumed()
	}
}

func encodeTime(out *jwriter.Writer, t time.Time) {
	if t.IsZero() {
		out.Int64(0)
		return
	}
	out.Int64(t.UnixNano())
}

func decodeTime(in *jlexer.Lexer) time.Time {
	ns := in.Int64()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns).UTC()
}

func encodeOrder(out *jwriter.Writer, o common.Order) {
	out.RawString(`{"id":`)
	out.String(o.UUID)
	out.RawString(`,"side":`)
	out.Int(int(o.Side))
	out.RawString(`,"price":`)
	out.Int64(int64(o.Price))
	out.RawString(`,"size":`)
	out.Uint64(uint64(o.Size))
	out.RawString(`,"total_size":`)
	out.Uint64(uint64(o.TotalSize))
	out.RawString(`,"timestamp":`)
	encodeTime(out, o.Timestamp)
	out.RawString(`,"seq":`)
	out.Uint64(o.Seq)
	out.RawString(`,"owner":`)
	out.String(o.Owner)
	out.RawByte('}')
}

func decodeOrder(in *jlexer.Lexer, o *common.Order) {
	decodeObject(in, func(key string) {
		switch key {
		case "id":
			o.UUID = in.String()
		case "side":
			o.Side = common.Side(in.Int())
		case "price":
			o.Price = common.Price(in.Int64())
		case "size":
			o.Size = common.Quantity(in.Uint64())
		case "total_size":
			o.TotalSize = common.Quantity(in.Uint64())
		case "timestamp":
			o.Timestamp = decodeTime(in)
		case "seq":
			o.Seq = in.Uint64()
		case "owner":
			o.Owner = in.String()
		default:
			in.SkipRecursive()
		}
	})
}

func encodeTrade(out *jwriter.Writer, t common.Trade) {
	out.RawString(`{"id":`)
	out.Uint64(t.ID)
	out.RawString(`,"timestamp":`)
	encodeTime(out, t.Timestamp)
	out.RawString(`,"price":`)
	out.Int64(int64(t.Price))
	out.RawString(`,"size":`)
	out.Uint64(uint64(t.Size))
	out.RawString(`,"buyer":`)
	out.String(t.BuyerID)
	out.RawString(`,"seller":`)
	out.String(t.SellerID)
	out.RawString(`,"bid_order":`)
	out.String(t.BidOrderID)
	out.RawString(`,"ask_order":`)
	out.String(t.AskOrderID)
	out.RawString(`,"bid_price":`)
	out.Int64(int64(t.BidPrice))
	out.RawString(`,"ask_price":`)
	out.Int64(int64(t.AskPrice))
	out.RawString(`,"bid_left":`)
	out.Uint64(uint64(t.BidRemaining))
	out.RawString(`,"ask_left":`)
	out.Uint64(uint64(t.AskRemaining))
	out.RawByte('}')
}

func decodeTrade(in *jlexer.Lexer, t *common.Trade) {
	decodeObject(in, func(key string) {
		switch key {
		case "id":
			t.ID = in.Uint64()
		case "timestamp":
			t.Timestamp = decodeTime(in)
		case "price":
			t.Price = common.Price(in.Int64())
		case "size":
			t.Size = common.Quantity(in.Uint64())
		case "buyer":
			t.BuyerID = in.String()
		case "seller":
			t.SellerID = in.String()
		case "bid_order":
			t.BidOrderID = in.String()
		case "ask_order":
			t.AskOrderID = in.String()
		case "bid_price":
			t.BidPrice = common.Price(in.Int64())
		case "ask_price":
			t.AskPrice = common.Price(in.Int64())
		case "bid_left":
			t.BidRemaining = common.Quantity(in.Uint64())
		case "ask_left":
			t.AskRemaining = common.Quantity(in.Uint64())
		default:
			in.SkipRecursive()
		}
	})
}
