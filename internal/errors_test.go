package internal_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/frahmantamala/cardtracker/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("AppError", func() {
	It("matches sentinels through wrapping", func() {
		wrapped := fmt.Errorf("lookup: %w", internal.ErrCardNotFound)
		Expect(errors.Is(wrapped, internal.ErrCardNotFound)).To(BeTrue())

		appErr, ok := internal.IsAppError(wrapped)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(http.StatusNotFound))
	})

	It("copies on WithCause so sentinels stay untouched", func() {
		cause := errors.New("unexpected EOF")
		err := internal.ErrInvalidRequestBody.WithCause(cause)

		Expect(errors.Is(err, cause)).To(BeTrue())
		Expect(errors.Is(err, internal.ErrInvalidRequestBody)).To(BeTrue())
		Expect(internal.ErrInvalidRequestBody.Cause).To(BeNil())
	})

	It("wraps storage causes as 500", func() {
		err := internal.NewStorageError("Failed to save card", errors.New("disk full"))
		Expect(err.StatusCode).To(Equal(http.StatusInternalServerError))
		Expect(err.Error()).To(ContainSubstring("disk full"))
	})

	It("serializes without status or cause", func() {
		status, body := internal.NewStorageError("Failed to save card", errors.New("disk full")).ToHTTPResponse()
		Expect(status).To(Equal(http.StatusInternalServerError))

		raw, err := json.Marshal(body)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(raw)).To(Equal(`{"error":{"type":"STORAGE_ERROR","code":"STORAGE_FAILURE","message":"Failed to save card"}}`))
	})

	It("reports the first field error as its message", func() {
		err := internal.NewValidationFieldError("dueDate", "dueDate must be between 1 and 31", internal.ErrCodeInvalidDayOfMonth)
		Expect(err.Error()).To(Equal("dueDate must be between 1 and 31"))
		Expect(err.StatusCode).To(Equal(http.StatusBadRequest))
	})
})
