package model

// This module defines the bandwidth measurements that flow from the feed to
// the render state

import (
	"time"
)

// Sample is one throughput observation for a single logical interface
type Sample struct {
	Interface string    `json:"interface"`
	RxKbps    float64   `json:"rx_kbps"`
	TxKbps    float64   `json:"tx_kbps"`
	At        time.Time `json:"at"`
}

// Mbps is used when reporting samples to humans
func Mbps(kbps float64) float64 {
	return kbps / 1000.0
}
