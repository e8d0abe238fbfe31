package e2e

import (
	"context"

	"github.com/cucumber/godog"

	"signup/e2e/steps/users"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.Reset()
		return c, nil
	})

	users.RegisterSteps(ctx, tc)
}
