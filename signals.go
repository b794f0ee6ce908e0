package stencil

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for mapping events.
var (
	SignalEngineCreated   = capitan.NewSignal("stencil.engine.created", "Engine instantiated")
	SignalMapStart        = capitan.NewSignal("stencil.map.start", "Mapping pass beginning")
	SignalMapComplete     = capitan.NewSignal("stencil.map.complete", "Mapping pass finished")
	SignalFieldRejected   = capitan.NewSignal("stencil.field.rejected", "Validator rejected a field value")
	SignalCollectComplete = capitan.NewSignal("stencil.collect.complete", "Collect operation finished")
)

// Keys for typed event data.
var (
	KeyTypeName  = capitan.NewStringKey("type_name")
	KeyMode      = capitan.NewStringKey("mode")
	KeyField     = capitan.NewStringKey("field")
	KeyValidator = capitan.NewStringKey("validator")
	KeyItems     = capitan.NewIntKey("items")
	KeyFieldsSet = capitan.NewIntKey("fields_set")
	KeyDuration  = capitan.NewDurationKey("duration")
	KeyError     = capitan.NewErrorKey("error")
)

// Mapping modes reported under KeyMode.
const (
	modeSingle = "single"
	modeList   = "list"
)

// emitEngineCreated emits an event when an engine is created.
func emitEngineCreated(ctx context.Context, typeName string) {
	capitan.Emit(ctx, SignalEngineCreated,
		KeyTypeName.Field(typeName),
	)
}

// emitMapStart emits an event when a mapping pass begins.
func emitMapStart(ctx context.Context, typeName, mode string) {
	capitan.Emit(ctx, SignalMapStart,
		KeyTypeName.Field(typeName),
		KeyMode.Field(mode),
	)
}

// emitMapComplete emits an event when a mapping pass finishes.
func emitMapComplete(ctx context.Context, typeName, mode string, items, fieldsSet int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyTypeName.Field(typeName),
		KeyMode.Field(mode),
		KeyItems.Field(items),
		KeyFieldsSet.Field(fieldsSet),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalMapComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalMapComplete, fields...)
	}
}

// emitFieldRejected emits an event when a validator rejects a value.
func emitFieldRejected(ctx context.Context, typeName, field, validator string) {
	capitan.Emit(ctx, SignalFieldRejected,
		KeyTypeName.Field(typeName),
		KeyField.Field(field),
		KeyValidator.Field(validator),
	)
}

// emitCollectComplete emits an event when Collect or CollectList finishes.
func emitCollectComplete(ctx context.Context, typeName string, items int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyTypeName.Field(typeName),
		KeyItems.Field(items),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalCollectComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalCollectComplete, fields...)
	}
}
