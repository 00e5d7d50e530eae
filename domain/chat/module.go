package chat

import (
	"go.uber.org/fx"
)

// Module provides chat dependencies
var Module = fx.Module("chat",
	fx.Provide(
		NewRepository,
		fx.Annotate(NewService, fx.As(new(Store))),
		NewHandler,
	),
	fx.Invoke(RegisterRoutes),
)
