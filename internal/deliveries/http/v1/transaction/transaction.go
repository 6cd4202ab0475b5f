package transaction

import (
	"errors"
	"net/http"

	"github.com/francois202/gigabanksystem1-sub000/internal/common"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/validation"
	"github.com/francois202/gigabanksystem1-sub000/internal/models"
	"github.com/francois202/gigabanksystem1-sub000/internal/services"

	commonhttp "github.com/francois202/gigabanksystem1-sub000/internal/common/http"

	"github.com/labstack/echo/v4"
)

type transactionHandler struct {
	generator services.EventGenerator
}

// New transaction handler will initialize the transactions/ resources endpoint
func New(app *echo.Group, generator services.EventGenerator) {
	handler := transactionHandler{generator: generator}
	transactions := app.Group("/transactions")
	transactions.POST("/generate", handler.generateTransactions())
}

// generateTransactions API generate synthetic transaction events
// @Summary Generate transaction events
// @Description Publish count random deposit and withdrawal events with the given delivery mode
// @Tags Transaction
// @Accept  json
// @Produce  json
// @Param 	payload body models.GenerateTransactionsRequest true "A JSON object containing the generate payload"
// @Success 202 {object} models.GenerateTransactionsResponse
// @Failure 400 {object} http.RestErrorResponseModel
// @Failure 422 {object} http.RestErrorValidationResponseModel{errors=[]validation.ErrorValidateResponse}
// @Failure 500 {object} http.RestErrorResponseModel
// @Router /v1/transactions/generate [post]
func (th *transactionHandler) generateTransactions() echo.HandlerFunc {
	return func(c echo.Context) error {
		var req models.GenerateTransactionsRequest
		if err := c.Bind(&req); err != nil {
			return commonhttp.RestErrorResponse(c, http.StatusBadRequest, err)
		}

		if err := validation.ValidateStruct(req); err != nil {
			return commonhttp.RestErrorValidationResponse(c, err)
		}

		result, err := th.generator.Generate(c.Request().Context(), req)
		if err != nil {
			if errors.Is(err, common.ErrValidation) {
				return commonhttp.RestErrorValidationResponse(c, err)
			}
			return commonhttp.RestErrorResponse(c, commonhttp.StatusCode(err), err)
		}

		return commonhttp.RestSuccessResponse(c, http.StatusAccepted, models.GenerateTransactionsResponse{
			Kind:                       "generateTransactions",
			GenerateTransactionsResult: result,
		})
	}
}
