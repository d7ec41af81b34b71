package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/splitbook/backend/internal/service"
)

// RecordHandler serves ledger endpoints: expenses, payments, verification
// and payment history.
type RecordHandler struct {
	ledger *service.LedgerService
}

// NewRecordHandler creates a record handler.
func NewRecordHandler(ledger *service.LedgerService) *RecordHandler {
	return &RecordHandler{ledger: ledger}
}

type splitRequest struct {
	UserID string  `json:"userId"`
	Email  string  `json:"email"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

func toSplitInputs(reqs []splitRequest) []service.SplitInput {
	out := make([]service.SplitInput, len(reqs))
	for i, s := range reqs {
		out[i] = service.SplitInput{UserID: s.UserID, Email: s.Email, Name: s.Name, Amount: s.Amount}
	}
	return out
}

type createExpenseRequest struct {
	GroupID      string         `json:"groupId" validate:"required"`
	Description  string         `json:"description" validate:"required"`
	Amount       float64        `json:"amount"`
	Date         int64          `json:"date"`
	CategoryID   string         `json:"categoryId"`
	ReceiptImage string         `json:"receiptImage"`
	Splits       []splitRequest `json:"splits" validate:"required,min=1"`
}

// CreateExpense handles POST /api/expenses.
func (h *RecordHandler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	rec, err := h.ledger.CreateExpense(r.Context(), service.ExpenseInput{
		GroupID:      req.GroupID,
		Description:  req.Description,
		Amount:       req.Amount,
		Date:         req.Date,
		CategoryID:   req.CategoryID,
		ReceiptImage: req.ReceiptImage,
		Splits:       toSplitInputs(req.Splits),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRecordView(rec))
}

// Get handles GET /api/records/{recordID}.
func (h *RecordHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.ledger.Get(r.Context(), chi.URLParam(r, "recordID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDetailView(detail))
}

type updateExpenseRequest struct {
	Description  *string        `json:"description"`
	Amount       *float64       `json:"amount"`
	Date         *int64         `json:"date"`
	CategoryID   *string        `json:"categoryId"`
	ReceiptImage *string        `json:"receiptImage"`
	Splits       []splitRequest `json:"splits"`
}

// UpdateExpense handles PUT /api/records/{recordID}.
func (h *RecordHandler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	var req updateExpenseRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	in := service.UpdateExpenseInput{
		Description:  req.Description,
		Amount:       req.Amount,
		Date:         req.Date,
		CategoryID:   req.CategoryID,
		ReceiptImage: req.ReceiptImage,
	}
	if req.Splits != nil {
		in.Splits = toSplitInputs(req.Splits)
	}

	rec, err := h.ledger.UpdateExpense(r.Context(), chi.URLParam(r, "recordID"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordView(rec))
}

// Delete handles DELETE /api/records/{recordID}.
func (h *RecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.Delete(r.Context(), chi.URLParam(r, "recordID")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// ListByGroup handles GET /api/groups/{groupID}/records?kind=EXPENSE|PAYMENT.
func (h *RecordHandler) ListByGroup(w http.ResponseWriter, r *http.Request) {
	recs, err := h.ledger.ListByGroup(r.Context(), chi.URLParam(r, "groupID"), r.URL.Query().Get("kind"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordViews(recs))
}

// ListForUser handles GET /api/records.
func (h *RecordHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	recs, err := h.ledger.ListForUser(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordViews(recs))
}

type settleUpRequest struct {
	GroupID       string  `json:"groupId" validate:"required"`
	PayerID       string  `json:"payerId" validate:"required"`
	ReceiverID    string  `json:"receiverId" validate:"required"`
	Amount        float64 `json:"amount"`
	Method        string  `json:"method"`
	TransactionID string  `json:"transactionId"`
	Remarks       string  `json:"remarks"`
	Date          int64   `json:"date"`
	ReceiptImage  string  `json:"receiptImage"`
}

// SettleUp handles POST /api/payments.
func (h *RecordHandler) SettleUp(w http.ResponseWriter, r *http.Request) {
	var req settleUpRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	rec, err := h.ledger.SettleUp(r.Context(), service.PaymentInput{
		GroupID:       req.GroupID,
		PayerID:       req.PayerID,
		ReceiverID:    req.ReceiverID,
		Amount:        req.Amount,
		Method:        req.Method,
		TransactionID: req.TransactionID,
		Remarks:       req.Remarks,
		Date:          req.Date,
		ReceiptImage:  req.ReceiptImage,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRecordView(rec))
}

type verifyRequest struct {
	Decision string `json:"decision" validate:"required"`
}

// Verify handles POST /api/payments/{recordID}/verify.
func (h *RecordHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	rec, err := h.ledger.VerifyPayment(r.Context(), chi.URLParam(r, "recordID"), req.Decision)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordView(rec))
}

type remarksRequest struct {
	Remarks string `json:"remarks"`
}

// UpdateRemarks handles PUT /api/payments/{recordID}/remarks.
func (h *RecordHandler) UpdateRemarks(w http.ResponseWriter, r *http.Request) {
	var req remarksRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	rec, err := h.ledger.UpdateRemarks(r.Context(), chi.URLParam(r, "recordID"), req.Remarks)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordView(rec))
}

type paymentsSummaryResponse struct {
	Payments      []recordView `json:"payments"`
	Net           float64      `json:"net"`
	TotalPayments int          `json:"totalPayments"`
}

// PaymentsBetween handles GET /api/payments/with/{userID}?groupId=...
func (h *RecordHandler) PaymentsBetween(w http.ResponseWriter, r *http.Request) {
	summary, err := h.ledger.PaymentsBetween(r.Context(),
		chi.URLParam(r, "userID"), r.URL.Query().Get("groupId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, paymentsSummaryResponse{
		Payments:      toRecordViews(summary.Payments),
		Net:           summary.Net,
		TotalPayments: summary.TotalPayments,
	})
}
