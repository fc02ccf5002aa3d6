package converter

import "go.uber.org/fx"

// Module provides the converter
var Module = fx.Provide(New)
