package service

import "fmt"

// Options controls a single sync run.
type Options struct {
	FullSync       bool // fetch everything, ignoring watermarks
	RecentOnlyDays int  // fetch only records updated within the last N days; 0 = unset
	Incremental    bool // fetch records updated since the last completed run
	BatchSize      int  // feed page size; 0 uses the entity kind's default
	RecordLimit    int  // stop fetching once this many records are accumulated; 0 = unlimited
}

// DefaultOptions returns the options used by the recurring trigger:
// incremental sync with kind-default page sizes and no record cap.
func DefaultOptions() Options {
	return Options{Incremental: true}
}

// Validate rejects malformed options before any remote fetch happens
func (o Options) Validate() error {
	if o.RecentOnlyDays < 0 {
		return fmt.Errorf("recentOnlyDays must not be negative, got %d", o.RecentOnlyDays)
	}
	if o.BatchSize < 0 {
		return fmt.Errorf("batchSize must not be negative, got %d", o.BatchSize)
	}
	if o.RecordLimit < 0 {
		return fmt.Errorf("recordLimit must not be negative, got %d", o.RecordLimit)
	}
	return nil
}
