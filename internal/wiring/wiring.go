// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/knot/internal/adapters/cas"
	_ "go.trai.ch/knot/internal/adapters/config"
	_ "go.trai.ch/knot/internal/adapters/fs"
	_ "go.trai.ch/knot/internal/adapters/logger"
	_ "go.trai.ch/knot/internal/adapters/script"
	_ "go.trai.ch/knot/internal/adapters/telemetry/progrock"
	_ "go.trai.ch/knot/internal/adapters/unitstore"
	// Register app and engine nodes.
	_ "go.trai.ch/knot/internal/app"
	_ "go.trai.ch/knot/internal/engine/compiler"
	_ "go.trai.ch/knot/internal/engine/loader"
)
