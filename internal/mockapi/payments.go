package mockapi

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

// Payment lifecycle states.
const (
	PaymentInitiated            = "INITIATED"
	PaymentPendingAuthorization = "PENDING_AUTHORIZATION"
	PaymentSubmitted            = "SUBMITTED"
	PaymentCompleted            = "COMPLETED"
	PaymentCancelled            = "CANCELLED"
	PaymentSuspended            = "SUSPENDED"
	PaymentRejected             = "REJECTED"
)

// Payment types.
const (
	TypeNPP  = "NPP"
	TypeBECS = "BECS"
)

// Amounts above approvalThreshold need authorization before submission,
// amounts above fundsLimit are rejected outright.
const (
	approvalThreshold = 10000.0
	fundsLimit        = 100000.0
)

var (
	accountPattern  = regexp.MustCompile(`^\d{6,17}$`)
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
	phonePattern    = regexp.MustCompile(`^\+\d{8,15}$`)
)

type payment struct {
	PaymentID       string    `json:"paymentId"`
	PaymentType     string    `json:"paymentType"`
	Amount          float64   `json:"amount"`
	Currency        string    `json:"currency"`
	DebtorAccount   string    `json:"debtorAccount"`
	CreditorAccount string    `json:"creditorAccount,omitempty"`
	PayID           string    `json:"payId,omitempty"`
	RemittanceInfo  string    `json:"remittanceInfo,omitempty"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`

	// statusBeforeSuspend allows resume to restore the prior state.
	statusBeforeSuspend string
}

type paymentRequest struct {
	PaymentType     string  `json:"paymentType"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
	DebtorAccount   string  `json:"debtorAccount"`
	CreditorAccount string  `json:"creditorAccount"`
	PayID           string  `json:"payId"`
	RemittanceInfo  string  `json:"remittanceInfo"`
}

func (s *Server) handleInitiatePayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if errs := validatePaymentRequest(req); len(errs) > 0 {
		writeValidationError(w, errs)
		return
	}

	if !accountPattern.MatchString(req.DebtorAccount) {
		writePaymentRejection(w, "INVALID_ACCOUNT", "debtor account is invalid")
		return
	}
	if req.CreditorAccount != "" && !accountPattern.MatchString(req.CreditorAccount) {
		writePaymentRejection(w, "INVALID_ACCOUNT", "creditor account is invalid")
		return
	}
	if req.PayID != "" && !validPayID(req.PayID) {
		writePaymentRejection(w, "INVALID_PAYID", "payId must be an email address or phone number")
		return
	}
	if req.Amount > fundsLimit {
		writePaymentRejection(w, "INSUFFICIENT_FUNDS", "insufficient funds in debtor account")
		return
	}

	status := PaymentInitiated
	if req.Amount > approvalThreshold {
		status = PaymentPendingAuthorization
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.paySeq++
	now := time.Now()
	created := &payment{
		PaymentID:       fmt.Sprintf("pay-%06d", s.paySeq),
		PaymentType:     req.PaymentType,
		Amount:          req.Amount,
		Currency:        req.Currency,
		DebtorAccount:   req.DebtorAccount,
		CreditorAccount: req.CreditorAccount,
		PayID:           req.PayID,
		RemittanceInfo:  req.RemittanceInfo,
		Status:          status,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.payments[created.PaymentID] = created
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[chi.URLParam(r, "paymentId")]
	if !ok {
		writeError(w, http.StatusNotFound, "payment not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdatePayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[chi.URLParam(r, "paymentId")]
	if !ok {
		writeError(w, http.StatusNotFound, "payment not found")
		return
	}
	if p.Status != PaymentInitiated && p.Status != PaymentPendingAuthorization {
		writeError(w, http.StatusConflict, fmt.Sprintf("payment in status %s cannot be updated", p.Status))
		return
	}

	if req.Amount > 0 {
		if req.Amount > fundsLimit {
			writePaymentRejection(w, "INSUFFICIENT_FUNDS", "insufficient funds in debtor account")
			return
		}
		p.Amount = req.Amount
	}
	if req.RemittanceInfo != "" {
		p.RemittanceInfo = req.RemittanceInfo
	}
	if req.CreditorAccount != "" {
		if !accountPattern.MatchString(req.CreditorAccount) {
			writePaymentRejection(w, "INVALID_ACCOUNT", "creditor account is invalid")
			return
		}
		p.CreditorAccount = req.CreditorAccount
	}
	if p.Amount > approvalThreshold {
		p.Status = PaymentPendingAuthorization
	}
	p.UpdatedAt = time.Now()
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleSubmitPayment(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[chi.URLParam(r, "paymentId")]
	if !ok {
		writeError(w, http.StatusNotFound, "payment not found")
		return
	}

	switch p.Status {
	case PaymentInitiated:
		// NPP settles in real time, BECS batches overnight.
		if p.PaymentType == TypeNPP {
			p.Status = PaymentCompleted
		} else {
			p.Status = PaymentSubmitted
		}
		p.UpdatedAt = time.Now()
		writeJSON(w, http.StatusOK, p)
	case PaymentPendingAuthorization:
		writeError(w, http.StatusConflict, "payment requires authorization before submission")
	default:
		writeError(w, http.StatusConflict, fmt.Sprintf("payment in status %s cannot be submitted", p.Status))
	}
}

func (s *Server) handleApprovePayment(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[chi.URLParam(r, "paymentId")]
	if !ok {
		writeError(w, http.StatusNotFound, "payment not found")
		return
	}
	if p.Status != PaymentPendingAuthorization {
		writeError(w, http.StatusConflict, fmt.Sprintf("payment in status %s does not need approval", p.Status))
		return
	}
	p.Status = PaymentInitiated
	p.UpdatedAt = time.Now()
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleCancelPayment(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[chi.URLParam(r, "paymentId")]
	if !ok {
		writeError(w, http.StatusNotFound, "payment not found")
		return
	}
	if p.Status == PaymentCompleted || p.Status == PaymentCancelled {
		writeError(w, http.StatusConflict, fmt.Sprintf("payment in status %s cannot be cancelled", p.Status))
		return
	}
	p.Status = PaymentCancelled
	p.UpdatedAt = time.Now()
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleSuspendPayment(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[chi.URLParam(r, "paymentId")]
	if !ok {
		writeError(w, http.StatusNotFound, "payment not found")
		return
	}
	if p.Status != PaymentInitiated && p.Status != PaymentSubmitted && p.Status != PaymentPendingAuthorization {
		writeError(w, http.StatusConflict, fmt.Sprintf("payment in status %s cannot be suspended", p.Status))
		return
	}
	p.statusBeforeSuspend = p.Status
	p.Status = PaymentSuspended
	p.UpdatedAt = time.Now()
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleResumePayment(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[chi.URLParam(r, "paymentId")]
	if !ok {
		writeError(w, http.StatusNotFound, "payment not found")
		return
	}
	if p.Status != PaymentSuspended {
		writeError(w, http.StatusConflict, fmt.Sprintf("payment in status %s cannot be resumed", p.Status))
		return
	}
	p.Status = p.statusBeforeSuspend
	p.statusBeforeSuspend = ""
	p.UpdatedAt = time.Now()
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	paymentType := r.URL.Query().Get("paymentType")
	page, pageSize := paginationParams(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]*payment, 0, len(s.payments))
	for _, p := range s.payments {
		if status != "" && p.Status != status {
			continue
		}
		if paymentType != "" && p.PaymentType != paymentType {
			continue
		}
		matched = append(matched, p)
	}
	sortByID(matched, func(p *payment) string { return p.PaymentID })

	total := len(matched)
	pageItems := paginate(matched, page, pageSize)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"payments": pageItems,
		"page":     page,
		"pageSize": pageSize,
		"total":    total,
	})
}

func validatePaymentRequest(req paymentRequest) []string {
	var errs []string
	if req.PaymentType == "" {
		errs = append(errs, "paymentType is required")
	} else if req.PaymentType != TypeNPP && req.PaymentType != TypeBECS {
		errs = append(errs, "paymentType must be NPP or BECS")
	}
	if req.Amount <= 0 {
		errs = append(errs, "amount must be positive")
	}
	if req.Currency == "" {
		errs = append(errs, "currency is required")
	} else if !currencyPattern.MatchString(req.Currency) {
		errs = append(errs, "currency must be a 3-letter ISO code")
	}
	if req.DebtorAccount == "" {
		errs = append(errs, "debtorAccount is required")
	}
	if req.CreditorAccount == "" && req.PayID == "" {
		errs = append(errs, "creditorAccount or payId is required")
	}
	return errs
}

func validPayID(payID string) bool {
	return strings.Contains(payID, "@") || phonePattern.MatchString(payID)
}

// writePaymentRejection reports a business rejection distinct from a
// validation error.
func writePaymentRejection(w http.ResponseWriter, code, message string) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
		"error": message,
		"code":  code,
	})
}
