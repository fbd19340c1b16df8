package services

import "time"

// Config carries the economic knobs shared by the engine services.
type Config struct {
	// DefaultUnits is the balance granted to a newly registered user.
	DefaultUnits float64
	// PublishCost is the one-time fee debited when an app is published.
	PublishCost float64
	// DefaultCostPerUnit is the lease duration, in days bought per unit,
	// used when an app is registered without an explicit cost.
	DefaultCostPerUnit float64
	// WriterProfitFraction is the share of each lease renewal fee credited
	// to the app author when the app has no profit share of its own.
	WriterProfitFraction float64
	// AppRegistrationDays is how long an app registration stays current
	// before lease renewals start charging the author a renewal fee.
	AppRegistrationDays float64
	// HoldTime is how long a transfer stays claimable before the sender
	// may reclaim it.
	HoldTime time.Duration
}

// DefaultConfig mirrors the stock deployment values.
func DefaultConfig() Config {
	return Config{
		DefaultUnits:         5,
		PublishCost:          1,
		DefaultCostPerUnit:   10,
		WriterProfitFraction: 0.2,
		AppRegistrationDays:  365,
		HoldTime:             5 * time.Second,
	}
}

const msPerDay = 24 * 60 * 60 * 1000

// nowDays returns the current time as fractional days since the Unix epoch,
// the unit every lease expiry is stored in.
func nowDays(now time.Time) float64 {
	return float64(now.UnixMilli()) / msPerDay
}
