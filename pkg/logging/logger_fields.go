package logging

import (
	"time"
)

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Domain field helpers

func Component(name string) Field {
	return String("component", name)
}

// NodeID is the hardware ID being calculated.
func NodeID(id int) Field {
	return Int("hardware_id", id)
}

func RevisionID(id int) Field {
	return Int("revision_id", id)
}

// Method is an allocation or similar-item method name.
func Method(name string) Field {
	return String("method", name)
}

// Measure is a goal measure name.
func Measure(name string) Field {
	return String("measure", name)
}

func Reason(r string) Field {
	return String("reason", r)
}

func Topic(name string) Field {
	return String("topic", name)
}

func Slot(n int) Field {
	return Int("slot", n)
}

func Operation(op string) Field {
	return String("operation", op)
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}

func Count(n int) Field {
	return Int("count", n)
}

func Path(p string) Field {
	return String("path", p)
}
