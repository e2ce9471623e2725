package rest

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/JoeShih716/go-accounts-ledger/internal/app/core/adapter/in/request"
	"github.com/JoeShih716/go-accounts-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-accounts-ledger/internal/app/core/usecase"
)

// Handler 將 HTTP 請求轉成帳本操作
type Handler struct {
	core   usecase.Ledger
	logger *zap.Logger
}

// ErrorDetail 錯誤回應中的單一錯誤
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse 錯誤回應
type ErrorResponse struct {
	Status int           `json:"status"`
	Errors []ErrorDetail `json:"errors"`
}

// statusOf 錯誤類別對應 HTTP 狀態碼
func statusOf(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.KindOf(err)
	status := statusOf(kind)
	if status == http.StatusInternalServerError {
		h.logger.Error("ledger operation failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
	}
	respond(w, r, status, ErrorResponse{
		Status: status,
		Errors: []ErrorDetail{{Code: kind.String(), Message: err.Error()}},
	})
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	respond(w, r, http.StatusNotFound, ErrorResponse{
		Status: http.StatusNotFound,
		Errors: []ErrorDetail{{Code: domain.KindNotFound.String(), Message: r.Method + " not supported for " + r.URL.RequestURI()}},
	})
}

func respond(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

// body 解析 JSON body；空 body 視為沒有參數
func body(r *http.Request) (request.Fields, error) {
	f := request.Fields{}
	if err := render.DecodeJSON(r.Body, &f); err != nil && !errors.Is(err, io.EOF) {
		return nil, domain.Validation("request body: %v", err)
	}
	return f, nil
}

// pathFields 路徑參數 accountId 以 id 的名稱傳給 request 解碼器
func pathFields(r *http.Request) request.Fields {
	f := request.Fields{}
	if id := chi.URLParam(r, "accountId"); id != "" {
		f["id"] = id
	}
	if act := chi.URLParam(r, "actId"); act != "" {
		f["actId"] = act
	}
	return f
}

func (h *Handler) createAccount(w http.ResponseWriter, r *http.Request) {
	f, err := body(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	req, err := request.DecodeCreateAccount(f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := h.core.CreateAccount(r.Context(), req.HolderID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Location", child(requestURL(r), id))
	respond(w, r, http.StatusCreated, map[string]any{"id": id})
}

func (h *Handler) getAccount(w http.ResponseWriter, r *http.Request) {
	req, err := request.DecodeGetAccountInfo(pathFields(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	info, err := h.core.GetAccountInfo(r.Context(), req.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, Envelope{
		Result: request.AccountInfoFields(info),
		Links:  []Link{selfLink(requestURL(r).String())},
	})
}

func (h *Handler) searchAccounts(w http.ResponseWriter, r *http.Request) {
	req, err := request.DecodeSearchAccounts(request.FromQuery(r.URL.Query()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page, err := h.core.SearchAccounts(r.Context(), req.Filter, req.Page)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	base := requestURL(r)
	items := make([]Envelope, 0, len(page.Items))
	for _, a := range page.Items {
		items = append(items, Envelope{
			Result: request.AccountFields(a),
			Links:  []Link{selfLink(child(base, a.ID))},
		})
	}
	respond(w, r, http.StatusOK, ListEnvelope{Result: items, Links: pagingLinks(r, page)})
}

func (h *Handler) recordTransaction(w http.ResponseWriter, r *http.Request) {
	f, err := body(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	req, err := request.DecodeRecordTransaction(request.Merge(f, pathFields(r)))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	id, err := h.core.RecordTransaction(r.Context(), req.AccountID, req.AmountCents, req.Date, req.Memo)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Location", child(requestURL(r), id))
	respond(w, r, http.StatusCreated, map[string]any{"id": id})
}

func (h *Handler) queryTransactions(w http.ResponseWriter, r *http.Request) {
	req, err := request.DecodeQueryTransactions(request.Merge(request.FromQuery(r.URL.Query()), pathFields(r)))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page, err := h.core.QueryTransactions(r.Context(), req.AccountID, req.Filter, req.Page)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	base := requestURL(r)
	items := make([]Envelope, 0, len(page.Items))
	for _, tx := range page.Items {
		items = append(items, Envelope{
			Result: request.TransactionFields(tx),
			Links:  []Link{selfLink(child(base, tx.ID))},
		})
	}
	respond(w, r, http.StatusOK, ListEnvelope{Result: items, Links: pagingLinks(r, page)})
}

// getTransaction 以交易 ID 篩選查詢，找不到時回 404
func (h *Handler) getTransaction(w http.ResponseWriter, r *http.Request) {
	req, err := request.DecodeQueryTransactions(pathFields(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page, err := h.core.QueryTransactions(r.Context(), req.AccountID, req.Filter, domain.PageRequest{Count: 1})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if len(page.Items) == 0 {
		h.fail(w, r, domain.NotFound("no transaction for ID %s in account %s", *req.Filter.TransactionID, req.AccountID))
		return
	}
	respond(w, r, http.StatusOK, Envelope{
		Result: request.TransactionFields(page.Items[0]),
		Links:  []Link{selfLink(requestURL(r).String())},
	})
}

func (h *Handler) statement(w http.ResponseWriter, r *http.Request) {
	req, err := request.DecodeGenerateStatement(request.Merge(request.FromQuery(r.URL.Query()), pathFields(r)))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	entries, err := h.core.GenerateStatement(r.Context(), req.AccountID, req.From, req.To)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	// 每筆連到 /accounts/{id}/transactions/{txId}
	account := requestURL(r)
	account.Path = strings.TrimSuffix(account.Path, "/statement")
	items := make([]Envelope, 0, len(entries))
	for _, e := range entries {
		items = append(items, Envelope{
			Result: request.StatementFields(e),
			Links:  []Link{selfLink(child(account, "transactions", e.ID))},
		})
	}
	self := requestURL(r)
	self.RawQuery = r.URL.RawQuery
	respond(w, r, http.StatusOK, ListEnvelope{Result: items, Links: []Link{selfLink(self.String())}})
}
