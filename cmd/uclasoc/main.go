package main

import (
	"context"
	"uclasoc/cmd/uclasoc/commands"
	"uclasoc/lib/serviceutil"
	"uclasoc/lib/telemetry"
)

func main() {
	ctx := serviceutil.SignalContext()

	// telemetry config is optional for a local CLI run
	tel, err := telemetry.SetupFromEnv(ctx, "uclasoc")
	if err == nil {
		defer tel.Shutdown(context.Background())
	}

	commands.ExecuteContext(ctx)
}
