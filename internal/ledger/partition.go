package ledger

import "time"

const partitionKeyLayout = "2006-01"

// PartitionKey resolves the partition a transaction date belongs in: its
// calendar month, formatted "YYYY-MM". Two dates resolve to the same key iff
// they share year and month.
func PartitionKey(date time.Time) string {
	return date.Format(partitionKeyLayout)
}

// ParsePartitionKey parses a "YYYY-MM" key into the first day of that month.
// It is how non-month partitions (settings, scratch sheets) are told apart
// from transaction partitions.
func ParsePartitionKey(key string) (time.Time, error) {
	return time.Parse(partitionKeyLayout, key)
}
