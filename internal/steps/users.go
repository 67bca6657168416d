package steps

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"

	"apibdd/internal/client"
	"apibdd/internal/data"
	"apibdd/internal/testctx"
	"apibdd/internal/validate"
)

const (
	usersEndpoint    = "/api/users"
	userByIDEndpoint = "/api/users/{userId}"
	// nonExistentUserID is a well-formed id no fixture ever creates.
	nonExistentUserID = "usr-999999"
)

func (s *Steps) registerUsers(sc *godog.ScenarioContext) {
	sc.Given(`^I have valid user data$`, s.iHaveValidUserData)
	sc.Given(`^I have user data with missing required fields$`, s.iHaveUserDataWithMissingFields)
	sc.Given(`^I have user data for "([^"]*)"$`, s.iHaveUserDataFor)
	sc.Given(`^a user exists$`, s.aUserExists)
	sc.Given(`^(\d+) users exist with role "([^"]*)"$`, s.usersExistWithRole)

	sc.When(`^I create the user$`, s.iCreateTheUser)
	sc.When(`^I retrieve the user$`, s.iRetrieveTheUser)
	sc.When(`^I retrieve a non-existent user$`, s.iRetrieveANonExistentUser)
	sc.When(`^I update the user's email to "([^"]*)"$`, s.iUpdateTheUsersEmail)
	sc.When(`^I replace the user with updated data$`, s.iReplaceTheUser)
	sc.When(`^I delete the user$`, s.iDeleteTheUser)
	sc.When(`^I search for users with role "([^"]*)"$`, s.iSearchForUsersWithRole)
	sc.When(`^I request page (\d+) of users with page size (\d+)$`, s.iRequestUserPage)

	sc.Then(`^the created user should have a user ID$`, s.theCreatedUserShouldHaveAUserID)
	sc.Then(`^the user's email should be "([^"]*)"$`, s.theUsersEmailShouldBe)
	sc.Then(`^the user list should contain (\d+) users?$`, s.theUserListShouldContain)
	sc.Then(`^the total user count should be at least (\d+)$`, s.theTotalUserCountShouldBeAtLeast)
}

// iHaveValidUserData builds a creation payload with unique username and
// email, seeded from the validUser fixture when available.
func (s *Steps) iHaveValidUserData() error {
	suffix := uniqueSuffix()
	generated := map[string]interface{}{
		"username":  "user" + suffix,
		"email":     fmt.Sprintf("user%s@example.com", suffix),
		"password":  "Secret123!",
		"firstName": "Test",
		"lastName":  "User",
		"role":      "user",
	}
	if s.deps.Data != nil {
		if fixture, err := s.deps.Data.User("validUser"); err == nil {
			merged := data.Merge(fixture, generated)
			s.pendingUser = merged
			return nil
		}
	}
	s.pendingUser = generated
	return nil
}

func (s *Steps) iHaveUserDataWithMissingFields() error {
	s.pendingUser = map[string]interface{}{
		"firstName": "Incomplete",
	}
	return nil
}

func (s *Steps) iHaveUserDataFor(name string) error {
	if s.deps.Data == nil {
		return fmt.Errorf("no test data directory configured")
	}
	fixture, err := s.deps.Data.User(name)
	if err != nil {
		return err
	}
	s.pendingUser = fixture
	return nil
}

func (s *Steps) iCreateTheUser(ctx context.Context) error {
	if s.pendingUser == nil {
		return fmt.Errorf("no user data prepared, use a Given step first")
	}
	if err := s.send(ctx, "POST", usersEndpoint, s.pendingUser); err != nil {
		return err
	}
	if id := s.ctx.Response().JSONPath("userId").String(); id != "" {
		s.ctx.Set(testctx.KeyUserID, id)
	}
	return nil
}

// aUserExists creates a throwaway user and stores its id.
func (s *Steps) aUserExists(ctx context.Context) error {
	if err := s.iHaveValidUserData(); err != nil {
		return err
	}
	if err := s.iCreateTheUser(ctx); err != nil {
		return err
	}
	if err := validate.Response(s.ctx.Response()).StatusCode(201).Err(); err != nil {
		return fmt.Errorf("user setup failed: %w", err)
	}
	return nil
}

func (s *Steps) usersExistWithRole(ctx context.Context, count int, role string) error {
	for i := 0; i < count; i++ {
		if err := s.iHaveValidUserData(); err != nil {
			return err
		}
		s.pendingUser["role"] = role
		if err := s.iCreateTheUser(ctx); err != nil {
			return err
		}
		if err := validate.Response(s.ctx.Response()).StatusCode(201).Err(); err != nil {
			return fmt.Errorf("user %d setup failed: %w", i+1, err)
		}
	}
	return nil
}

func (s *Steps) currentUserID() (string, error) {
	id := s.ctx.GetString(testctx.KeyUserID)
	if id == "" {
		return "", fmt.Errorf("no user ID in scenario context, create a user first")
	}
	return id, nil
}

func (s *Steps) iRetrieveTheUser(ctx context.Context) error {
	id, err := s.currentUserID()
	if err != nil {
		return err
	}
	return s.sendUserRequest(ctx, "GET", id, nil)
}

func (s *Steps) iRetrieveANonExistentUser(ctx context.Context) error {
	return s.sendUserRequest(ctx, "GET", nonExistentUserID, nil)
}

func (s *Steps) iUpdateTheUsersEmail(ctx context.Context, email string) error {
	id, err := s.currentUserID()
	if err != nil {
		return err
	}
	return s.sendUserRequest(ctx, "PATCH", id, map[string]interface{}{"email": email})
}

func (s *Steps) iReplaceTheUser(ctx context.Context) error {
	id, err := s.currentUserID()
	if err != nil {
		return err
	}
	suffix := uniqueSuffix()
	return s.sendUserRequest(ctx, "PUT", id, map[string]interface{}{
		"username":  "replaced" + suffix,
		"email":     fmt.Sprintf("replaced%s@example.com", suffix),
		"firstName": "Replaced",
		"lastName":  "User",
	})
}

func (s *Steps) iDeleteTheUser(ctx context.Context) error {
	id, err := s.currentUserID()
	if err != nil {
		return err
	}
	return s.sendUserRequest(ctx, "DELETE", id, nil)
}

func (s *Steps) sendUserRequest(ctx context.Context, method, userID string, body interface{}) error {
	builder := s.client.NewRequest().
		Endpoint(userByIDEndpoint).
		PathParam("userId", userID)
	if body != nil {
		builder.Body(body)
	}

	var (
		resp *client.Response
		err  error
	)
	switch method {
	case "GET":
		resp, err = builder.Get(ctx)
	case "PUT":
		resp, err = builder.Put(ctx)
	case "PATCH":
		resp, err = builder.Patch(ctx)
	case "DELETE":
		resp, err = builder.Delete(ctx)
	default:
		return fmt.Errorf("unsupported HTTP method %q", method)
	}
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, userByIDEndpoint, err)
	}
	s.ctx.SetResponse(userByIDEndpoint, body, resp)
	return nil
}

func (s *Steps) iSearchForUsersWithRole(ctx context.Context, role string) error {
	resp, err := s.client.NewRequest().
		Endpoint(usersEndpoint).
		QueryParam("role", role).
		Get(ctx)
	if err != nil {
		return fmt.Errorf("GET %s: %w", usersEndpoint, err)
	}
	s.ctx.SetResponse(usersEndpoint, nil, resp)
	return nil
}

func (s *Steps) iRequestUserPage(ctx context.Context, page, pageSize int) error {
	resp, err := s.client.NewRequest().
		Endpoint(usersEndpoint).
		QueryParam("page", page).
		QueryParam("pageSize", pageSize).
		Get(ctx)
	if err != nil {
		return fmt.Errorf("GET %s: %w", usersEndpoint, err)
	}
	s.ctx.SetResponse(usersEndpoint, nil, resp)
	return nil
}

func (s *Steps) theCreatedUserShouldHaveAUserID() error {
	resp, err := s.ctx.RequireResponse()
	if err != nil {
		return err
	}
	return validate.Response(resp).JSONPathMatches("userId", `^usr-\d+$`).Err()
}

func (s *Steps) theUsersEmailShouldBe(email string) error {
	resp, err := s.ctx.RequireResponse()
	if err != nil {
		return err
	}
	return validate.Response(resp).JSONPathEquals("email", email).Err()
}

func (s *Steps) theUserListShouldContain(count int) error {
	resp, err := s.ctx.RequireResponse()
	if err != nil {
		return err
	}
	return validate.Response(resp).JSONArrayLen("users", count).Err()
}

func (s *Steps) theTotalUserCountShouldBeAtLeast(minimum int) error {
	resp, err := s.ctx.RequireResponse()
	if err != nil {
		return err
	}
	total := resp.JSONPath("total").Int()
	if total < int64(minimum) {
		return fmt.Errorf("expected total user count of at least %d, got %d", minimum, total)
	}
	return nil
}
