package txns

import (
	"bytes"
	"unicode/utf8"
)

// MemoSize is the fixed size of a shielded memo field.
const MemoSize = 512

// MemoKind classifies a memo per ZIP 302.
type MemoKind int

const (
	MemoEmpty     MemoKind = iota // 0xF6 followed by zeros
	MemoText                      // First byte <= 0xF4, UTF-8 text
	MemoArbitrary                 // 0xFF followed by 511 arbitrary bytes
	MemoFuture                    // Reserved or undecodable; kept verbatim
)

func (k MemoKind) String() string {
	switch k {
	case MemoEmpty:
		return "empty"
	case MemoText:
		return "text"
	case MemoArbitrary:
		return "arbitrary"
	default:
		return "future"
	}
}

// Memo is a decoded memo field. Raw always holds the stored bytes.
type Memo struct {
	Kind MemoKind
	Text string // Set for MemoText
	Raw  [MemoSize]byte
}

// ParseMemo decodes a memo. It never fails: encodings it cannot interpret
// are kept as MemoFuture.
func ParseMemo(raw [MemoSize]byte) Memo {
	m := Memo{Kind: MemoFuture, Raw: raw}
	switch first := raw[0]; {
	case first <= 0xf4:
		text := bytes.TrimRight(raw[:], "\x00")
		if utf8.Valid(text) {
			m.Kind = MemoText
			m.Text = string(text)
		}
	case first == 0xf6:
		if allZero(raw[1:]) {
			m.Kind = MemoEmpty
		}
	case first == 0xff:
		m.Kind = MemoArbitrary
	}
	return m
}

// Arbitrary returns the 511 payload bytes of a MemoArbitrary.
func (m *Memo) Arbitrary() []byte {
	if m.Kind != MemoArbitrary {
		return nil
	}
	return m.Raw[1:]
}

func allZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
