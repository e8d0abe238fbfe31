package users

import (
	"context"
	"fmt"
	"time"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}) error
	GET(path string, headers map[string]string) error
	StatusCode() int
	DecodeResponse(v interface{}) error
	GetResponseField(field string) (interface{}, error)
	ResponseContains(field string) bool
}

// RegisterSteps registers registration-related step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &userSteps{tc: tc}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		steps.runID = fmt.Sprintf("%d", time.Now().UnixNano())
		steps.emails = map[string]string{}
		return ctx, nil
	})

	// Request steps
	ctx.Step(`^I register "([^"]*)" with email alias "([^"]*)"$`, steps.register)
	ctx.Step(`^I register "([^"]*)" with email alias "([^"]*)" and phone "([^"]*)"$`, steps.registerWithPhone)
	ctx.Step(`^I list users$`, steps.listUsers)
	ctx.Step(`^I check health$`, steps.checkHealth)

	// Assertion steps
	ctx.Step(`^the response status should be (\d+)$`, steps.statusShouldBe)
	ctx.Step(`^the response should have field "([^"]*)" equal to "([^"]*)"$`, steps.fieldShouldEqual)
	ctx.Step(`^the response should reject field "([^"]*)"$`, steps.shouldRejectField)
	ctx.Step(`^the response should have a null "([^"]*)"$`, steps.fieldShouldBeNull)
	ctx.Step(`^the user list should show alias "([^"]*)" before alias "([^"]*)"$`, steps.listOrder)
}

type userSteps struct {
	tc     TestContext
	runID  string
	emails map[string]string
}

// email maps a scenario alias to an address unique to this run, so scenarios
// can be replayed against a long-lived database.
func (s *userSteps) email(alias string) string {
	if e, ok := s.emails[alias]; ok {
		return e
	}
	e := fmt.Sprintf("%s+%s@example.com", alias, s.runID)
	s.emails[alias] = e
	return e
}

func (s *userSteps) register(ctx context.Context, name, alias string) error {
	return s.tc.POST("/api/users/", map[string]interface{}{
		"name":  name,
		"email": s.email(alias),
	})
}

func (s *userSteps) registerWithPhone(ctx context.Context, name, alias, phone string) error {
	return s.tc.POST("/api/users/", map[string]interface{}{
		"name":  name,
		"email": s.email(alias),
		"phone": phone,
	})
}

func (s *userSteps) listUsers(ctx context.Context) error {
	return s.tc.GET("/api/users/", nil)
}

func (s *userSteps) checkHealth(ctx context.Context) error {
	return s.tc.GET("/health", nil)
}

func (s *userSteps) statusShouldBe(ctx context.Context, want int) error {
	if got := s.tc.StatusCode(); got != want {
		return fmt.Errorf("expected status %d, got %d", want, got)
	}
	return nil
}

func (s *userSteps) fieldShouldEqual(ctx context.Context, field, want string) error {
	v, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(v); got != want {
		return fmt.Errorf("expected %s=%q, got %q", field, want, got)
	}
	return nil
}

func (s *userSteps) shouldRejectField(ctx context.Context, field string) error {
	var fields map[string][]string
	if err := s.tc.DecodeResponse(&fields); err != nil {
		return err
	}
	if len(fields[field]) == 0 {
		return fmt.Errorf("expected validation messages for %q, got %v", field, fields)
	}
	return nil
}

func (s *userSteps) fieldShouldBeNull(ctx context.Context, field string) error {
	v, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if v != nil {
		return fmt.Errorf("expected %s to be null, got %v", field, v)
	}
	return nil
}

func (s *userSteps) listOrder(ctx context.Context, first, second string) error {
	var users []struct {
		Email string `json:"email"`
	}
	if err := s.tc.DecodeResponse(&users); err != nil {
		return err
	}
	pos := map[string]int{}
	for i, u := range users {
		pos[u.Email] = i
	}
	a, okA := pos[s.email(first)]
	b, okB := pos[s.email(second)]
	if !okA || !okB {
		return fmt.Errorf("expected both %q and %q in the list", first, second)
	}
	if a > b {
		return fmt.Errorf("expected %q before %q", first, second)
	}
	return nil
}
