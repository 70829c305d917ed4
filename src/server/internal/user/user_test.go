package user_test

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/hymnbook/hymnbook-be/src/server/internal/errors/api"
	"github.com/hymnbook/hymnbook-be/src/server/internal/errors/auth"
	"github.com/hymnbook/hymnbook-be/src/server/internal/shared_tests/auth"
	"github.com/hymnbook/hymnbook-be/src/server/internal/user/dummy"
	"github.com/hymnbook/hymnbook-be/src/server/internal/user/entity"
	"github.com/hymnbook/hymnbook-be/src/server/internal/user/gateway"
	"github.com/hymnbook/hymnbook-be/src/server/internal/user/usecase"
	"github.com/hymnbook/hymnbook-be/src/shared/testing"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("User", func() {
	var (
		userStore   *dummy.UserStore
		userUsecase userusecase.Usecase
		userGateway usergateway.Gateway
	)

	BeforeEach(func() {
		userStore = authtest.SeededUserStore()
		userUsecase = userusecase.NewUsecase(userStore, testing.Validator{})
		userGateway = usergateway.NewGateway(userUsecase)
	})

	Describe("Login", func() {
		Describe("Unauthorized", func() {
			BeforeEach(func() {
				authtest.Endpoint = userGateway.Login
			})

			authtest.ItRejectsUnauthorizedRequests("POST", "/login")
		})

		var login = func(user testing.User) *httptest.ResponseRecorder {
			request := testing.RequestFactory{
				Method:  "POST",
				Target:  "/login",
				JSONObj: nil,
				Mods:    testing.RequestModifiers{testing.WithUserCred(user)},
			}.MakeFake()
			response := httptest.NewRecorder()

			c := testing.PrepareEchoContext(request, response)
			err := userGateway.Login(c)
			Expect(err).NotTo(HaveOccurred())

			return response
		}

		Describe("For a Google validated user without an account", func() {
			var response *httptest.ResponseRecorder

			BeforeEach(func() {
				response = login(testing.UnverifiedUserNotInDB)
			})

			It("returns 401", func() {
				Expect(response.Code).To(Equal(http.StatusUnauthorized))
			})

			It("commits the user to DB as unverified", func() {
				committedUser, err := userStore.GetUser(context.Background(), testing.UnverifiedUserNotInDB.ID)
				Expect(err).NotTo(HaveOccurred())

				Expect(committedUser.ID).To(Equal(testing.UnverifiedUserNotInDB.ID))
				Expect(committedUser.Name).To(Equal(testing.UnverifiedUserNotInDB.Name))
				Expect(committedUser.Email).To(Equal(testing.UnverifiedUserNotInDB.Email))
				Expect(committedUser.Verified).To(BeFalse())
				Expect(committedUser.Role).To(Equal(userentity.UserRole))
			})

			It("still refuses the user on the next login", func() {
				response = login(testing.UnverifiedUserNotInDB)
				resErr := testing.DecodeJSONError(response.Body)
				Expect(resErr.Code).To(BeEquivalentTo(auth.UnvalidatedAccountCode))
			})
		})

		Describe("For an authorized user", func() {
			var response *httptest.ResponseRecorder

			BeforeEach(func() {
				response = login(testing.EditorUser)
			})

			It("succeeds", func() {
				Expect(response.Code).To(Equal(http.StatusOK))
			})

			It("returns the correct user", func() {
				userResponse := testing.DecodeJSON[userentity.User](response.Body)

				Expect(userResponse.ID).To(Equal(testing.EditorUser.ID))
				Expect(userResponse.Name).To(Equal(testing.EditorUser.Name))
				Expect(userResponse.Email).To(Equal(testing.EditorUser.Email))
				Expect(userResponse.Role).To(Equal(userentity.EditorRole))
			})
		})

		Describe("When the user store is down", func() {
			var response *httptest.ResponseRecorder

			BeforeEach(func() {
				userStore.Unavailable = true
				response = login(testing.EditorUser)
			})

			It("fails with the right error code", func() {
				resErr := testing.DecodeJSONError(response.Body)
				Expect(resErr.Code).To(BeEquivalentTo(api.DefaultErrorCode))
			})

			It("fails with the right status code", func() {
				Expect(response.Code).To(Equal(http.StatusInternalServerError))
			})
		})
	})

	Describe("Authorize", func() {
		var header = func(user testing.User) string {
			return "Bearer " + testing.TokenForUserID(user.ID)
		}

		DescribeTable("the role ladder",
			func(user testing.User, required userentity.Role, allowed bool) {
				authorized, apiErr := userUsecase.Authorize(context.Background(), header(user), required)
				if allowed {
					Expect(apiErr).To(BeNil())
					Expect(authorized.ID).To(Equal(user.ID))
				} else {
					Expect(apiErr).NotTo(BeNil())
					Expect(apiErr.ErrorCode).To(Equal(auth.InsufficientRoleCode))
				}
			},
			Entry("admin passes the admin gate", testing.AdminUser, userentity.AdminRole, true),
			Entry("admin passes the editor gate", testing.AdminUser, userentity.EditorRole, true),
			Entry("editor passes the editor gate", testing.EditorUser, userentity.EditorRole, true),
			Entry("editor is stopped at the admin gate", testing.EditorUser, userentity.AdminRole, false),
			Entry("reader passes the user gate", testing.ReaderUser, userentity.UserRole, true),
			Entry("reader is stopped at the editor gate", testing.ReaderUser, userentity.EditorRole, false),
		)

		It("doesn't create accounts for unknown users", func() {
			_, apiErr := userUsecase.Authorize(context.Background(), header(testing.NoAccountUser), userentity.EditorRole)
			Expect(apiErr).NotTo(BeNil())
			Expect(apiErr.ErrorCode).To(Equal(auth.NoAccountCode))

			_, ok := userStore.Users[testing.NoAccountUser.ID]
			Expect(ok).To(BeFalse())
		})

		It("checks verification before the role", func() {
			_, apiErr := userUsecase.Authorize(context.Background(), header(testing.UnverifiedUserInDB), userentity.UserRole)
			Expect(apiErr).NotTo(BeNil())
			Expect(apiErr.ErrorCode).To(Equal(auth.UnvalidatedAccountCode))
		})
	})

	Describe("Identities", func() {
		It("resolves every distinct user", func() {
			ids := []string{testing.AdminUser.ID, testing.EditorUser.ID, testing.AdminUser.ID, ""}
			identities, apiErr := userUsecase.Identities(context.Background(), ids)
			Expect(apiErr).To(BeNil())

			Expect(identities).To(HaveLen(2))
			Expect(identities[testing.AdminUser.ID].Name).To(Equal(testing.AdminUser.Name))
			Expect(identities[testing.EditorUser.ID].Role).To(Equal(userentity.EditorRole))
		})

		It("leaves out users that don't exist", func() {
			ids := []string{testing.EditorUser.ID, "deleted-user-id"}
			identities, apiErr := userUsecase.Identities(context.Background(), ids)
			Expect(apiErr).To(BeNil())

			Expect(identities).To(HaveLen(1))
			Expect(identities).To(HaveKey(testing.EditorUser.ID))
		})

		It("fails when the store is down", func() {
			userStore.Unavailable = true
			_, apiErr := userUsecase.Identities(context.Background(), []string{testing.EditorUser.ID})
			Expect(apiErr).NotTo(BeNil())
			Expect(apiErr.ErrorCode).To(Equal(api.DefaultErrorCode))
		})
	})
})
