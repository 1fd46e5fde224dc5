package model

import (
	"strings"
	"time"
)

// NetworkEvent represents one synthetic packet observed by the stream
type NetworkEvent struct {
	ID            string    `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	SourceIP      string    `json:"source_ip"`
	DestinationIP string    `json:"destination_ip"`
	Protocol      Protocol  `json:"protocol"`
	Size          int       `json:"size"`
	Flags         []Flag    `json:"flags"`
}

// Clone returns a copy of e that shares no memory with it
func (e NetworkEvent) Clone() NetworkEvent {
	if e.Flags != nil {
		e.Flags = append(make([]Flag, 0, len(e.Flags)), e.Flags...)
	}
	return e
}

// HasFlag reports whether the event carries the given flag
func (e NetworkEvent) HasFlag(flag Flag) bool {
	for _, f := range e.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// FlagString joins the event flags, "NONE" when empty
func (e NetworkEvent) FlagString() string {
	if len(e.Flags) == 0 {
		return "NONE"
	}
	parts := make([]string, len(e.Flags))
	for i, f := range e.Flags {
		parts[i] = string(f)
	}
	return strings.Join(parts, ",")
}

// Protocol is the closed set of protocols a generated event may carry
type Protocol string

const (
	ProtocolTCP   Protocol = "TCP"
	ProtocolUDP   Protocol = "UDP"
	ProtocolHTTP  Protocol = "HTTP"
	ProtocolHTTPS Protocol = "HTTPS"
)

// Protocols lists every protocol in declaration order
var Protocols = []Protocol{ProtocolTCP, ProtocolUDP, ProtocolHTTP, ProtocolHTTPS}

func (p Protocol) String() string {
	return string(p)
}

// Valid reports whether p belongs to the closed protocol set
func (p Protocol) Valid() bool {
	for _, known := range Protocols {
		if p == known {
			return true
		}
	}
	return false
}

// Flag is a TCP-style control flag
type Flag string

const (
	FlagSYN Flag = "SYN"
	FlagACK Flag = "ACK"
	FlagFIN Flag = "FIN"
	FlagRST Flag = "RST"
	FlagPSH Flag = "PSH"
)

// Flags lists every flag in declaration order
var Flags = []Flag{FlagSYN, FlagACK, FlagFIN, FlagRST, FlagPSH}

func (f Flag) String() string {
	return string(f)
}

// Valid reports whether f belongs to the closed flag set
func (f Flag) Valid() bool {
	for _, known := range Flags {
		if f == known {
			return true
		}
	}
	return false
}
