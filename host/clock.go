package host

import "time"

// WallClock reports Unix time in milliseconds.
type WallClock struct{}

func (WallClock) Now() int64 {
	return time.Now().UnixMilli()
}

// MonotonicClock reports milliseconds elapsed since it was created.
type MonotonicClock struct {
	start time.Time
}

// NewMonotonicClock starts a clock at zero.
func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{start: time.Now()}
}

func (c *MonotonicClock) Now() int64 {
	return time.Since(c.start).Milliseconds()
}

// ConstantClock always reports the same instant. Degraded hosts without a
// trusted time source use ConstantClock(0).
type ConstantClock int64

func (c ConstantClock) Now() int64 {
	return int64(c)
}
