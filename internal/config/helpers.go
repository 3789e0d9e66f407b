package config

func stringPtr(s string) *string { return &s }
func intPtr(n int) *int          { return &n }
func int64Ptr(n int64) *int64    { return &n }

// String returns a pointer to s, for building overrides.
func String(s string) *string { return stringPtr(s) }

// Int returns a pointer to n, for building overrides.
func Int(n int) *int { return intPtr(n) }

// Int64 returns a pointer to n, for building overrides.
func Int64(n int64) *int64 { return int64Ptr(n) }
