package steps

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cucumber/godog"

	"apibdd/internal/client"
	"apibdd/internal/validate"
)

const (
	initiateEndpoint    = "/payment-initiation/initiate"
	paymentsEndpoint    = "/payment-initiation"
	paymentByIDEndpoint = "/payment-initiation/{paymentId}"
	// keyPaymentID tracks the payment under test in the scenario context.
	keyPaymentID = "payment_id"
	// nonExistentPaymentID is a well-formed id the mock never issues.
	nonExistentPaymentID = "pay-999999"
)

func (s *Steps) registerPayments(sc *godog.ScenarioContext) {
	sc.When(`^I check the service health$`, s.iCheckTheServiceHealth)
	sc.When(`^I request the service information$`, s.iRequestTheServiceInformation)

	sc.Given(`^I have an NPP payment of ([0-9.]+) "([A-Z]{3})"$`, s.iHaveAnNPPPayment)
	sc.Given(`^I have a BECS payment of ([0-9.]+) "([A-Z]{3})"$`, s.iHaveABECSPayment)
	sc.Given(`^the payment is addressed to PayID "([^"]*)"$`, s.thePaymentIsAddressedToPayID)
	sc.Given(`^the payment has debtor account "([^"]*)"$`, s.thePaymentHasDebtorAccount)
	sc.Given(`^the payment has creditor account "([^"]*)"$`, s.thePaymentHasCreditorAccount)
	sc.Given(`^the payment has no (amount|currency|debtor account)$`, s.thePaymentHasNoField)
	sc.Given(`^I have the "([^"]*)" payment fixture$`, s.iHaveThePaymentFixture)
	sc.Given(`^a payment has been initiated$`, s.aPaymentHasBeenInitiated)
	sc.Given(`^a payment of ([0-9.]+) "([A-Z]{3})" has been initiated$`, s.aPaymentOfAmountHasBeenInitiated)

	sc.When(`^I initiate the payment$`, s.iInitiateThePayment)
	sc.When(`^I retrieve the payment$`, s.iRetrieveThePayment)
	sc.When(`^I retrieve a non-existent payment$`, s.iRetrieveANonExistentPayment)
	sc.When(`^I update the payment amount to ([0-9.]+)$`, s.iUpdateThePaymentAmount)
	sc.When(`^I submit the payment$`, s.iSubmitThePayment)
	sc.When(`^I approve the payment$`, s.iApproveThePayment)
	sc.When(`^I cancel the payment$`, s.iCancelThePayment)
	sc.When(`^I suspend the payment$`, s.iSuspendThePayment)
	sc.When(`^I resume the payment$`, s.iResumeThePayment)
	sc.When(`^I list payments with status "([^"]*)"$`, s.iListPaymentsWithStatus)
	sc.When(`^I request page (\d+) of payments with page size (\d+)$`, s.iRequestPaymentPage)

	sc.Then(`^the payment status should be "([^"]*)"$`, s.thePaymentStatusShouldBe)
	sc.Then(`^the rejection code should be "([^"]*)"$`, s.theRejectionCodeShouldBe)
	sc.Then(`^the payment list should contain (\d+) payments?$`, s.thePaymentListShouldContain)
	sc.Then(`^the payment list should not be empty$`, s.thePaymentListShouldNotBeEmpty)
}

func (s *Steps) iCheckTheServiceHealth(ctx context.Context) error {
	return s.send(ctx, "GET", "/health", nil)
}

func (s *Steps) iRequestTheServiceInformation(ctx context.Context) error {
	return s.send(ctx, "GET", "/service-info", nil)
}

func (s *Steps) preparePayment(paymentType string, amount float64, currency string) {
	s.pendingPayment = map[string]interface{}{
		"paymentType":     paymentType,
		"amount":          amount,
		"currency":        currency,
		"debtorAccount":   "123456789",
		"creditorAccount": "987654321",
		"remittanceInfo":  "apibdd scenario payment",
	}
}

func (s *Steps) iHaveAnNPPPayment(amount, currency string) error {
	value, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	s.preparePayment("NPP", value, currency)
	return nil
}

func (s *Steps) iHaveABECSPayment(amount, currency string) error {
	value, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	s.preparePayment("BECS", value, currency)
	return nil
}

func (s *Steps) requirePendingPayment() error {
	if s.pendingPayment == nil {
		return fmt.Errorf("no payment prepared, use a Given step first")
	}
	return nil
}

func (s *Steps) thePaymentIsAddressedToPayID(payID string) error {
	if err := s.requirePendingPayment(); err != nil {
		return err
	}
	s.pendingPayment["payId"] = payID
	delete(s.pendingPayment, "creditorAccount")
	return nil
}

func (s *Steps) thePaymentHasDebtorAccount(account string) error {
	if err := s.requirePendingPayment(); err != nil {
		return err
	}
	s.pendingPayment["debtorAccount"] = account
	return nil
}

func (s *Steps) thePaymentHasCreditorAccount(account string) error {
	if err := s.requirePendingPayment(); err != nil {
		return err
	}
	s.pendingPayment["creditorAccount"] = account
	return nil
}

func (s *Steps) thePaymentHasNoField(field string) error {
	if err := s.requirePendingPayment(); err != nil {
		return err
	}
	switch field {
	case "amount":
		delete(s.pendingPayment, "amount")
	case "currency":
		delete(s.pendingPayment, "currency")
	case "debtor account":
		delete(s.pendingPayment, "debtorAccount")
	}
	return nil
}

func (s *Steps) iHaveThePaymentFixture(name string) error {
	if s.deps.Data == nil {
		return fmt.Errorf("no test data directory configured")
	}
	fixture, err := s.deps.Data.Scenario("payments.json", name)
	if err != nil {
		return err
	}
	s.pendingPayment = fixture
	return nil
}

func (s *Steps) iInitiateThePayment(ctx context.Context) error {
	if err := s.requirePendingPayment(); err != nil {
		return err
	}
	if err := s.send(ctx, "POST", initiateEndpoint, s.pendingPayment); err != nil {
		return err
	}
	if id := s.ctx.Response().JSONPath("paymentId").String(); id != "" {
		s.ctx.Set(keyPaymentID, id)
	}
	return nil
}

func (s *Steps) aPaymentHasBeenInitiated(ctx context.Context) error {
	return s.aPaymentOfAmountHasBeenInitiated(ctx, "250.75", "AUD")
}

func (s *Steps) aPaymentOfAmountHasBeenInitiated(ctx context.Context, amount, currency string) error {
	if err := s.iHaveAnNPPPayment(amount, currency); err != nil {
		return err
	}
	if err := s.iInitiateThePayment(ctx); err != nil {
		return err
	}
	if err := validate.Response(s.ctx.Response()).StatusCode(201).Err(); err != nil {
		return fmt.Errorf("payment setup failed: %w", err)
	}
	return nil
}

func (s *Steps) currentPaymentID() (string, error) {
	id := s.ctx.GetString(keyPaymentID)
	if id == "" {
		return "", fmt.Errorf("no payment ID in scenario context, initiate a payment first")
	}
	return id, nil
}

func (s *Steps) iRetrieveThePayment(ctx context.Context) error {
	id, err := s.currentPaymentID()
	if err != nil {
		return err
	}
	return s.sendPaymentRequest(ctx, "GET", id, "", nil)
}

func (s *Steps) iRetrieveANonExistentPayment(ctx context.Context) error {
	return s.sendPaymentRequest(ctx, "GET", nonExistentPaymentID, "", nil)
}

func (s *Steps) iUpdateThePaymentAmount(ctx context.Context, amount string) error {
	id, err := s.currentPaymentID()
	if err != nil {
		return err
	}
	value, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return s.sendPaymentRequest(ctx, "PUT", id, "update", map[string]interface{}{"amount": value})
}

func (s *Steps) iSubmitThePayment(ctx context.Context) error {
	return s.paymentAction(ctx, "submit")
}

func (s *Steps) iApproveThePayment(ctx context.Context) error {
	return s.paymentAction(ctx, "approve")
}

func (s *Steps) iCancelThePayment(ctx context.Context) error {
	return s.paymentAction(ctx, "cancel")
}

func (s *Steps) iSuspendThePayment(ctx context.Context) error {
	return s.paymentAction(ctx, "suspend")
}

func (s *Steps) iResumeThePayment(ctx context.Context) error {
	return s.paymentAction(ctx, "resume")
}

func (s *Steps) paymentAction(ctx context.Context, action string) error {
	id, err := s.currentPaymentID()
	if err != nil {
		return err
	}
	return s.sendPaymentRequest(ctx, "POST", id, action, nil)
}

// sendPaymentRequest targets /payment-initiation/{paymentId}[/action].
func (s *Steps) sendPaymentRequest(ctx context.Context, method, paymentID, action string, body interface{}) error {
	endpoint := paymentByIDEndpoint
	if action != "" {
		endpoint += "/" + action
	}
	builder := s.client.NewRequest().
		Endpoint(endpoint).
		PathParam("paymentId", paymentID)
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
	case "POST":
		resp, err = builder.Post(ctx)
	default:
		return fmt.Errorf("unsupported HTTP method %q", method)
	}
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	s.ctx.SetResponse(endpoint, body, resp)
	return nil
}

func (s *Steps) iListPaymentsWithStatus(ctx context.Context, status string) error {
	resp, err := s.client.NewRequest().
		Endpoint(paymentsEndpoint).
		QueryParam("status", status).
		Get(ctx)
	if err != nil {
		return fmt.Errorf("GET %s: %w", paymentsEndpoint, err)
	}
	s.ctx.SetResponse(paymentsEndpoint, nil, resp)
	return nil
}

func (s *Steps) iRequestPaymentPage(ctx context.Context, page, pageSize int) error {
	resp, err := s.client.NewRequest().
		Endpoint(paymentsEndpoint).
		QueryParam("page", page).
		QueryParam("pageSize", pageSize).
		Get(ctx)
	if err != nil {
		return fmt.Errorf("GET %s: %w", paymentsEndpoint, err)
	}
	s.ctx.SetResponse(paymentsEndpoint, nil, resp)
	return nil
}

func (s *Steps) thePaymentStatusShouldBe(status string) error {
	resp, err := s.ctx.RequireResponse()
	if err != nil {
		return err
	}
	return validate.Response(resp).JSONPathEquals("status", status).Err()
}

func (s *Steps) theRejectionCodeShouldBe(code string) error {
	resp, err := s.ctx.RequireResponse()
	if err != nil {
		return err
	}
	return validate.Response(resp).StatusCode(422).JSONPathEquals("code", code).Err()
}

func (s *Steps) thePaymentListShouldContain(count int) error {
	resp, err := s.ctx.RequireResponse()
	if err != nil {
		return err
	}
	return validate.Response(resp).JSONArrayLen("payments", count).Err()
}

func (s *Steps) thePaymentListShouldNotBeEmpty() error {
	resp, err := s.ctx.RequireResponse()
	if err != nil {
		return err
	}
	return validate.Response(resp).JSONArrayNotEmpty("payments").Err()
}
