package client

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// zerologAdapter routes retryablehttp's leveled logging into zerolog.
type zerologAdapter struct{}

func (zerologAdapter) Error(msg string, kv ...interface{}) { emit(log.Error(), msg, kv) }
func (zerologAdapter) Warn(msg string, kv ...interface{})  { emit(log.Warn(), msg, kv) }
func (zerologAdapter) Info(msg string, kv ...interface{})  { emit(log.Debug(), msg, kv) }
func (zerologAdapter) Debug(msg string, kv ...interface{}) { emit(log.Trace(), msg, kv) }

func emit(event *zerolog.Event, msg string, kv []interface{}) {
	event = event.Str("component", "client")
	for i := 0; i+1 < len(kv); i += 2 {
		if key, ok := kv[i].(string); ok {
			event = event.Interface(key, kv[i+1])
		}
	}
	event.Msg(msg)
}
