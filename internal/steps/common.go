package steps

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"apibdd/internal/validate"
)

func (s *Steps) registerCommon(sc *godog.ScenarioContext) {
	sc.Given(`^the API is available$`, s.theAPIIsAvailable)
	sc.Given(`^I am authenticated as "([^"]*)" with password "([^"]*)"$`, s.iAmAuthenticatedAs)
	sc.Given(`^I am authenticated as a valid user$`, s.iAmAuthenticatedAsValidUser)
	sc.Given(`^I am not authenticated$`, s.iAmNotAuthenticated)
	sc.Given(`^I use invalid credentials$`, s.iUseInvalidCredentials)

	sc.When(`^I send a (GET|DELETE) request to "([^"]*)"$`, s.iSendARequestTo)
	sc.When(`^I send a (POST|PUT|PATCH) request to "([^"]*)" with body:$`, s.iSendARequestWithBody)
	sc.When(`^I wait for (\d+) seconds?$`, s.iWaitForSeconds)

	sc.Then(`^the response status code should be (\d+)$`, s.theResponseStatusCodeShouldBe)
	sc.Then(`^the response should be successful$`, s.theResponseShouldBeSuccessful)
	sc.Then(`^the response time should be less than (\d+) milliseconds$`, s.theResponseTimeShouldBeLessThan)
	sc.Then(`^the response should be valid JSON$`, s.theResponseShouldBeValidJSON)
	sc.Then(`^the response body should not be empty$`, s.theResponseBodyShouldNotBeEmpty)
	sc.Then(`^the response body should contain "([^"]*)"$`, s.theResponseBodyShouldContain)
	sc.Then(`^the response body should not contain "([^"]*)"$`, s.theResponseBodyShouldNotContain)
	sc.Then(`^the response header "([^"]*)" should be "([^"]*)"$`, s.theResponseHeaderShouldBe)
	sc.Then(`^the response field "([^"]*)" should be "([^"]*)"$`, s.theResponseFieldShouldBe)
	sc.Then(`^the response field "([^"]*)" should exist$`, s.theResponseFieldShouldExist)
	sc.Then(`^the response should contain an error message$`, s.theResponseShouldContainAnErrorMessage)
	sc.Then(`^the error message should contain "([^"]*)"$`, s.theErrorMessageShouldContain)
}

func (s *Steps) theAPIIsAvailable(ctx context.Context) error {
	resp, err := s.client.Get(ctx, "/health")
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return validate.Response(resp).StatusCode(200).Err()
}

func (s *Steps) iAmAuthenticatedAs(ctx context.Context, username, password string) error {
	return s.auth.Authenticate(ctx, username, password)
}

// iAmAuthenticatedAsValidUser authenticates with the validUser fixture,
// falling back to the environment credentials when no fixture is shipped.
func (s *Steps) iAmAuthenticatedAsValidUser(ctx context.Context) error {
	username := s.deps.Environment.Auth.Username
	password := s.deps.Environment.Auth.Password
	if s.deps.Data != nil {
		if user, err := s.deps.Data.User("validUser"); err == nil {
			if v, ok := user["username"].(string); ok {
				username = v
			}
			if v, ok := user["password"].(string); ok {
				password = v
			}
		}
	}
	if username == "" {
		return fmt.Errorf("no credentials available: set auth username in config or provide a validUser fixture")
	}
	return s.auth.Authenticate(ctx, username, password)
}

func (s *Steps) iAmNotAuthenticated() error {
	s.auth.Clear()
	return nil
}

func (s *Steps) iUseInvalidCredentials() error {
	s.auth.AuthenticateBasic("invalid-user-"+uniqueSuffix(), "wrong-password")
	return nil
}

func (s *Steps) iSendARequestTo(ctx context.Context, method, endpoint string) error {
	return s.send(ctx, method, endpoint, nil)
}

func (s *Steps) iSendARequestWithBody(ctx context.Context, method, endpoint string, body *godog.DocString) error {
	var decoded interface{}
	if err := json.Unmarshal([]byte(body.Content), &decoded); err != nil {
		return fmt.Errorf("step body is not valid JSON: %w", err)
	}
	return s.send(ctx, method, endpoint, decoded)
}

func (s *Steps) iWaitForSeconds(ctx context.Context, seconds int) error {
	select {
	case <-time.After(time.Duration(seconds) * time.Second):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Steps) theResponseStatusCodeShouldBe(expected int) error {
	resp, err := s.ctx.RequireResponse()
	if err != nil {
		return err
	}
	return validate.Response(resp).StatusCode(expected).Err()
}

func (s *Steps) theResponseShouldBeSuccessful() error {
	resp, err := s.ctx.RequireResponse()
	if err != nil {
		return err
	}
	return validate.Response(resp).StatusSuccess().Err()
}

func (s *Steps) theResponseTimeShouldBeLessThan(milliseconds int) error {
	resp, err := s.ctx.RequireResponse()
	if err != nil {
		return err
	}
	return validate.Response(resp).MaxDuration(time.Duration(milliseconds) * time.Millisecond).Err()
}

func (s *Steps) theResponseShouldBeValidJSON() error {
	resp, err := s.ctx.RequireResponse()
	if err != nil {
		return err
	}
	return validate.Response(resp).ValidJSON().Err()
}

func (s *Steps) theResponseBodyShouldNotBeEmpty() error {
	resp, err := s.ctx.RequireResponse()
	if err != nil {
		return err
	}
	return validate.Response(resp).BodyNotEmpty().Err()
}

func (s *Steps) theResponseBodyShouldContain(substring string) error {
	resp, err := s.ctx.RequireResponse()
	if err != nil {
		return err
	}
	return validate.Response(resp).BodyContains(substring).Err()
}

func (s *Steps) theResponseBodyShouldNotContain(substring string) error {
	resp, err := s.ctx.RequireResponse()
	if err != nil {
		return err
	}
	return validate.Response(resp).BodyNotContains(substring).Err()
}

func (s *Steps) theResponseHeaderShouldBe(name, expected string) error {
	resp, err := s.ctx.RequireResponse()
	if err != nil {
		return err
	}
	return validate.Response(resp).HeaderEquals(name, expected).Err()
}

func (s *Steps) theResponseFieldShouldBe(path, expected string) error {
	resp, err := s.ctx.RequireResponse()
	if err != nil {
		return err
	}
	return validate.Response(resp).JSONPathEquals(path, expected).Err()
}

func (s *Steps) theResponseFieldShouldExist(path string) error {
	resp, err := s.ctx.RequireResponse()
	if err != nil {
		return err
	}
	return validate.Response(resp).JSONPathExists(path).Err()
}

func (s *Steps) theResponseShouldContainAnErrorMessage() error {
	resp, err := s.ctx.RequireResponse()
	if err != nil {
		return err
	}
	return validate.Response(resp).ValidJSON().JSONPathExists("error").Err()
}

func (s *Steps) theErrorMessageShouldContain(substring string) error {
	resp, err := s.ctx.RequireResponse()
	if err != nil {
		return err
	}
	message := resp.JSONPath("error").String()
	if !strings.Contains(message, substring) {
		return fmt.Errorf("expected error message to contain %q, got %q", substring, message)
	}
	return nil
}
