package testing

import (
	"os"

	"github.com/hymnbook/hymnbook-be/src/shared/config/envvar"
	. "github.com/onsi/gomega"
)

func SetTestEnv() {
	err := os.Setenv(envvar.ENVIRONMENT, "test")
	ExpectWithOffset(1, err).NotTo(HaveOccurred())
}
