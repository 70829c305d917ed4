package authtest

import (
	"net/http"
	"net/http/httptest"

	"github.com/hymnbook/hymnbook-be/src/server/internal/errors/api"
	"github.com/hymnbook/hymnbook-be/src/server/internal/errors/auth"
	"github.com/hymnbook/hymnbook-be/src/server/internal/user/dummy"
	"github.com/hymnbook/hymnbook-be/src/server/internal/user/entity"
	"github.com/hymnbook/hymnbook-be/src/shared/testing"
	"github.com/labstack/echo/v4"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// Suites using these shared tests set Endpoint in a BeforeEach, and JSONBody
// when the endpoint reads one. Both are cleared after every test.
var (
	Endpoint func(c echo.Context) error
	JSONBody any
)

// SeededUserStore holds the same users a freshly reset test DB does
func SeededUserStore() *dummy.UserStore {
	users := []userentity.User{}
	for _, u := range testing.UsersInDB() {
		users = append(users, userentity.User{
			ID:       u.ID,
			Name:     u.Name,
			Email:    u.Email,
			Verified: u.Verified,
			Role:     userentity.Role(u.Role),
		})
	}

	return dummy.NewDummyUserStore(users...)
}

type rejection struct {
	description string
	mods        testing.RequestModifiers
	code        api.ErrorCode
	status      int
}

func ItRejectsUnpermittedRequests(method string, path string, tooLowRoles ...testing.User) {
	ItRejectsUnauthorizedRequests(method, path)

	rejections := []rejection{}
	for _, user := range tooLowRoles {
		rejections = append(rejections, rejection{
			description: "from a user with the " + user.Role + " role",
			mods:        testing.RequestModifiers{testing.WithUserCred(user)},
			code:        auth.InsufficientRoleCode,
			status:      http.StatusForbidden,
		})
	}

	if len(rejections) > 0 {
		Describe("Requests from a role that's too low", func() {
			itRejects(method, path, rejections)
		})
	}
}

func ItRejectsUnauthorizedRequests(method string, path string) {
	Describe("Unauthorized requests", func() {
		itRejects(method, path, []rejection{
			{
				description: "with no auth header",
				code:        auth.BadAuthorizationHeaderCode,
				status:      http.StatusBadRequest,
			},
			{
				description: "with a token that isn't a bearer header",
				mods:        testing.RequestModifiers{testing.WithAuthHeader(testing.TokenForUserID(testing.AdminUser.ID))},
				code:        auth.BadAuthorizationHeaderCode,
				status:      http.StatusBadRequest,
			},
			{
				description: "with a token Google doesn't accept",
				mods:        testing.RequestModifiers{testing.WithUserCred(testing.GoogleUnauthorizedUser)},
				code:        auth.NotGoogleAuthorizedCode,
				status:      http.StatusUnauthorized,
			},
			{
				description: "from a user that never logged in",
				mods:        testing.RequestModifiers{testing.WithUserCred(testing.NoAccountUser)},
				code:        auth.NoAccountCode,
				status:      http.StatusUnauthorized,
			},
			{
				description: "from a user that hasn't been verified",
				mods:        testing.RequestModifiers{testing.WithUserCred(testing.UnverifiedUserInDB)},
				code:        auth.UnvalidatedAccountCode,
				status:      http.StatusUnauthorized,
			},
		})
	})
}

func itRejects(method string, path string, rejections []rejection) {
	AfterEach(func() {
		Endpoint = nil
		JSONBody = nil
	})

	for _, r := range rejections {
		r := r

		It("rejects requests "+r.description, func() {
			Expect(Endpoint).NotTo(BeNil())

			request := testing.RequestFactory{
				Method:  method,
				Target:  path,
				JSONObj: JSONBody,
				Mods:    r.mods,
			}.MakeFake()
			response := httptest.NewRecorder()

			err := Endpoint(testing.PrepareEchoContext(request, response))
			Expect(err).NotTo(HaveOccurred())

			Expect(response.Code).To(Equal(r.status))
			Expect(testing.DecodeJSONError(response.Body).Code).To(BeEquivalentTo(r.code))
		})
	}
}
