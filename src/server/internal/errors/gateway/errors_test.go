package gateway_test

import (
	"net/http/httptest"

	"github.com/cockroachdb/errors"
	"github.com/hymnbook/hymnbook-be/src/server/internal/errors/api"
	"github.com/hymnbook/hymnbook-be/src/server/internal/errors/gateway"
	"github.com/hymnbook/hymnbook-be/src/shared/testing"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Errors", func() {
	Describe("HTTP status code handling for ErrorCodes", func() {
		for _, errorCode := range allErrorCodes {
			errorCode := errorCode
			It("processes ErrorCode "+string(errorCode), func() {
				apiError := &api.Error{
					ErrorCode:     errorCode,
					UserMessage:   "Something failed",
					InternalError: errors.New("Our DB blew up"),
				}

				request := testing.RequestFactory{Method: "GET", Target: "/"}.MakeFake()
				response := httptest.NewRecorder()
				c := testing.PrepareEchoContext(request, response)

				runTest := func() {
					_ = gateway.ErrorResponse(c, apiError)
				}
				Expect(runTest).NotTo(Panic())

				statusCode, ok := gateway.StatusCode(errorCode)
				Expect(ok).To(BeTrue())
				Expect(response.Code).To(Equal(statusCode))

				resErr := testing.DecodeJSONError(response.Body)
				Expect(resErr.Code).To(BeEquivalentTo(errorCode))
				Expect(resErr.Msg).To(Equal("Something failed"))
			})
		}
	})
})
