package public

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/dairydrop/internal/http/response"
	"github.com/dairydrop/internal/service"
)

// mappedHandlerError binds one business error to its API response.
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

var slotErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidShift, code: response.CodeBadRequest, msg: "invalid delivery shift"},
	{target: service.ErrEveningUnavailable, code: response.CodeBadRequest, msg: "evening delivery is not available yet"},
	{target: service.ErrSameDayDelivery, code: response.CodeBadRequest, msg: "same-day delivery is not available"},
	{target: service.ErrSlotOutOfRange, code: response.CodeBadRequest, msg: "delivery date is outside the booking window"},
	{target: service.ErrSlotCutoffPassed, code: response.CodeBadRequest, msg: "the cutoff for this slot has passed"},
}

var orderCreateErrorRules = append([]mappedHandlerError{
	{target: service.ErrEmptyOrder, code: response.CodeBadRequest, msg: "order has no items"},
	{target: service.ErrInvalidQuantity, code: response.CodeBadRequest, msg: "invalid item quantity"},
	{target: service.ErrInvalidPaymentMethod, code: response.CodeBadRequest, msg: "unsupported payment method"},
	{target: service.ErrAddressIncomplete, code: response.CodeBadRequest, msg: "delivery address is incomplete"},
	{target: service.ErrProductNotFound, code: response.CodeBadRequest, msg: "product not found"},
	{target: service.ErrProductInactive, code: response.CodeBadRequest, msg: "product is not available"},
	{target: service.ErrInsufficientStock, code: response.CodeBadRequest, msg: "insufficient stock"},
	{target: service.ErrCartEmpty, code: response.CodeBadRequest, msg: "cart is empty"},
	{target: service.ErrUserNotFound, code: response.CodeUnauthorized, msg: "unauthorized"},
	{target: service.ErrOrderNoConflict, code: response.CodeInternal, msg: "order number conflict, please retry"},
}, slotErrorRules...)

var orderCancelErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, msg: "order not found"},
	{target: service.ErrOrderNotCancellable, code: response.CodeBadRequest, msg: "order can no longer be cancelled"},
	{target: service.ErrCancelWindowClosed, code: response.CodeBadRequest, msg: "the cancellation window for this slot has closed"},
}

var paymentCreateErrorRules = []mappedHandlerError{
	{target: service.ErrNoPayableOrders, code: response.CodeBadRequest, msg: "no payable orders in the request"},
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, msg: "order not found"},
	{target: service.ErrUPINotConfigured, code: response.CodeInternal, msg: "UPI payments are not configured"},
}

var paymentCompleteErrorRules = []mappedHandlerError{
	{target: service.ErrPaymentNotFound, code: response.CodeNotFound, msg: "payment session not found"},
	{target: service.ErrPaymentExpired, code: response.CodeBadRequest, msg: "payment session has expired"},
	{target: service.ErrPaymentNotPending, code: response.CodeBadRequest, msg: "payment session is not pending"},
	{target: service.ErrMissingTransactionID, code: response.CodeBadRequest, msg: "UPI transaction id is required"},
}

var subscriptionErrorRules = []mappedHandlerError{
	{target: service.ErrProductNotFound, code: response.CodeBadRequest, msg: "product not found"},
	{target: service.ErrProductInactive, code: response.CodeBadRequest, msg: "product is not available"},
	{target: service.ErrInvalidQuantity, code: response.CodeBadRequest, msg: "invalid quantity"},
	{target: service.ErrInvalidFrequency, code: response.CodeBadRequest, msg: "invalid delivery frequency"},
	{target: service.ErrInvalidShift, code: response.CodeBadRequest, msg: "invalid delivery shift"},
	{target: service.ErrSubscriptionNotFound, code: response.CodeNotFound, msg: "subscription not found"},
	{target: service.ErrInvalidTransition, code: response.CodeBadRequest, msg: "invalid subscription state change"},
}
