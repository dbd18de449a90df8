package internal_test

import (
	"context"
	"time"

	"github.com/frahmantamala/cardtracker/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("WithTimeout", func() {
	It("falls back to the default timeout", func() {
		ctx, cancel := internal.WithTimeout(context.Background(), 0)
		defer cancel()

		deadline, ok := ctx.Deadline()
		Expect(ok).To(BeTrue())
		Expect(time.Until(deadline)).To(BeNumerically("~", internal.DefaultTimeout, time.Second))
	})

	It("honours an explicit timeout", func() {
		ctx, cancel := internal.WithTimeout(context.Background(), time.Millisecond)
		defer cancel()
		Eventually(ctx.Done()).Should(BeClosed())
	})
})
