package wailsapp

import (
	"context"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// runtimeHandle adapts the Wails runtime to the bridge's publishing surface.
// EventsEmit is goroutine-safe and silently drops events with no frontend
// subscriber, which matches the fire-and-forget delivery model.
type runtimeHandle struct {
	ctx context.Context
}

func (h runtimeHandle) Emit(name string, payload interface{}) {
	wailsruntime.EventsEmit(h.ctx, name, payload)
}
